package mysql

import "fmt"

// TableConfig configures the table names used for run history.
type TableConfig struct {
	// RunsTable is the name of the table storing run metadata.
	RunsTable string

	// OutcomesTable is the name of the table storing per-table outcomes.
	OutcomesTable string
}

// DefaultTableConfig returns the default table configuration.
func DefaultTableConfig() TableConfig {
	return TableConfig{
		RunsTable:     "repart_runs",
		OutcomesTable: "repart_run_outcomes",
	}
}

// MigrationUp returns the SQL to create the run history tables.
func MigrationUp(config TableConfig) string {
	return fmt.Sprintf(`-- Create run history table
CREATE TABLE IF NOT EXISTS %s (
    id CHAR(36) PRIMARY KEY,
    schema_name VARCHAR(255) NOT NULL,
    status VARCHAR(16) NOT NULL,
    started_at TIMESTAMP(6) NOT NULL,
    finished_at TIMESTAMP(6) NOT NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;

-- Index for finding the most recent runs for a schema
CREATE INDEX idx_runs_schema ON %s(schema_name, started_at DESC);

-- Create per-table outcomes table
CREATE TABLE IF NOT EXISTS %s (
    run_id CHAR(36) NOT NULL,
    position INT NOT NULL,
    owner VARCHAR(128) NOT NULL,
    table_name VARCHAR(128) NOT NULL,
    status VARCHAR(16) NOT NULL,
    err TEXT NOT NULL,
    results MEDIUMTEXT NOT NULL,
    PRIMARY KEY (run_id, position),
    FOREIGN KEY (run_id) REFERENCES %s(id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
`, config.RunsTable, config.RunsTable, config.OutcomesTable, config.RunsTable)
}

// MigrationDown returns the SQL to drop the run history tables.
func MigrationDown(config TableConfig) string {
	return fmt.Sprintf(`-- Drop outcomes table (must be dropped first due to foreign key)
DROP TABLE IF EXISTS %s;

-- Drop run history table
DROP TABLE IF EXISTS %s;
`, config.OutcomesTable, config.RunsTable)
}
