package migrations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "migrations", config.OutputFolder)
	assert.Equal(t, "repart_runs", config.RunsTable)
	assert.Equal(t, "repart_run_outcomes", config.OutcomesTable)
	assert.Regexp(t, `^\d{14}_init_run_history\.sql$`, config.OutputFilename)
}

func TestGeneratePostgres(t *testing.T) {
	config := DefaultConfig()
	config.OutputFolder = t.TempDir()
	config.OutputFilename = "init.sql"

	require.NoError(t, GeneratePostgres(&config))

	content, err := os.ReadFile(filepath.Join(config.OutputFolder, "init.sql"))
	require.NoError(t, err)

	sql := string(content)
	assert.Contains(t, sql, "-- Run History Migration")
	assert.Contains(t, sql, "-- Database: PostgreSQL")
	assert.Contains(t, sql, "repart_runs")
	assert.Contains(t, sql, "repart_run_outcomes")
}

func TestGenerateMySQL(t *testing.T) {
	config := DefaultConfig()
	config.OutputFolder = t.TempDir()
	config.OutputFilename = "init.sql"

	require.NoError(t, GenerateMySQL(&config))

	content, err := os.ReadFile(filepath.Join(config.OutputFolder, "init.sql"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "-- Database: MySQL/MariaDB")
}

func TestGenerateSQLite(t *testing.T) {
	config := DefaultConfig()
	config.OutputFolder = t.TempDir()
	config.OutputFilename = "init.sql"

	require.NoError(t, GenerateSQLite(&config))

	content, err := os.ReadFile(filepath.Join(config.OutputFolder, "init.sql"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "-- Database: SQLite")
}

func TestGenerate_CustomTableNames(t *testing.T) {
	config := DefaultConfig()
	config.OutputFolder = t.TempDir()
	config.OutputFilename = "init.sql"
	config.RunsTable = "history_runs"
	config.OutcomesTable = "history_outcomes"

	require.NoError(t, GeneratePostgres(&config))

	content, err := os.ReadFile(filepath.Join(config.OutputFolder, "init.sql"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "history_runs")
	assert.Contains(t, string(content), "history_outcomes")
	assert.NotContains(t, string(content), "repart_runs")
}

func TestGenerate_RejectsUnsafeIdentifiers(t *testing.T) {
	tests := []struct {
		name          string
		runsTable     string
		outcomesTable string
	}{
		{"empty runs table", "", "repart_run_outcomes"},
		{"hyphenated runs table", "bad-name", "repart_run_outcomes"},
		{"injection attempt", "runs; DROP TABLE users", "repart_run_outcomes"},
		{"leading digit outcomes table", "repart_runs", "1outcomes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			config.OutputFolder = t.TempDir()
			config.OutputFilename = "init.sql"
			config.RunsTable = tt.runsTable
			config.OutcomesTable = tt.outcomesTable

			assert.Error(t, GeneratePostgres(&config))
		})
	}
}
