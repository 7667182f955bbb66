// Package migrations writes the run history schema to migration files
// for the supported store backends.
package migrations

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/dbops/repart/store/mysql"
	"github.com/dbops/repart/store/postgres"
	"github.com/dbops/repart/store/sqlite"
)

var identifierRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// validateIdentifier ensures an identifier contains only safe characters for SQL.
// Returns an error if the identifier contains characters that could be used for SQL injection.
func validateIdentifier(name, fieldName string) error {
	if name == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	if !identifierRegex.MatchString(name) {
		return fmt.Errorf("%s must start with a letter and contain only letters, numbers, and underscores (got: %s)", fieldName, name)
	}
	return nil
}

// validateConfig validates all configuration values to prevent SQL injection.
func validateConfig(config *Config) error {
	if err := validateIdentifier(config.RunsTable, "RunsTable"); err != nil {
		return err
	}
	if err := validateIdentifier(config.OutcomesTable, "OutcomesTable"); err != nil {
		return err
	}
	return nil
}

// Config configures migration generation for the run history tables.
type Config struct {
	// OutputFolder is the directory where the migration file will be written
	OutputFolder string

	// OutputFilename is the name of the migration file
	OutputFilename string

	// RunsTable is the name of the run history table
	RunsTable string

	// OutcomesTable is the name of the per-table outcomes table
	OutcomesTable string
}

// DefaultConfig returns the default configuration for run history migrations.
func DefaultConfig() Config {
	timestamp := time.Now().Format("20060102150405")
	defaults := postgres.DefaultTableConfig()
	return Config{
		OutputFolder:   "migrations",
		OutputFilename: fmt.Sprintf("%s_init_run_history.sql", timestamp),
		RunsTable:      defaults.RunsTable,
		OutcomesTable:  defaults.OutcomesTable,
	}
}

// GeneratePostgres generates a PostgreSQL migration file.
func GeneratePostgres(config *Config) error {
	sql := postgres.MigrationUp(postgres.TableConfig{
		RunsTable:     config.RunsTable,
		OutcomesTable: config.OutcomesTable,
	})
	return writeMigration(config, "PostgreSQL", sql)
}

// GenerateMySQL generates a MySQL/MariaDB migration file.
func GenerateMySQL(config *Config) error {
	sql := mysql.MigrationUp(mysql.TableConfig{
		RunsTable:     config.RunsTable,
		OutcomesTable: config.OutcomesTable,
	})
	return writeMigration(config, "MySQL/MariaDB", sql)
}

// GenerateSQLite generates a SQLite migration file.
func GenerateSQLite(config *Config) error {
	sql := sqlite.MigrationUp(sqlite.TableConfig{
		RunsTable:     config.RunsTable,
		OutcomesTable: config.OutcomesTable,
	})
	return writeMigration(config, "SQLite", sql)
}

func writeMigration(config *Config, database, sql string) error {
	// Validate configuration to prevent SQL injection
	if err := validateConfig(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Ensure output folder exists
	if err := os.MkdirAll(config.OutputFolder, 0o755); err != nil {
		return fmt.Errorf("failed to create output folder: %w", err)
	}

	header := fmt.Sprintf("-- Run History Migration\n-- Generated: %s\n-- Database: %s\n\n",
		time.Now().Format(time.RFC3339), database)

	outputPath := filepath.Join(config.OutputFolder, config.OutputFilename)
	if err := os.WriteFile(outputPath, []byte(header+sql), 0o600); err != nil {
		return fmt.Errorf("failed to write migration file: %w", err)
	}

	return nil
}
