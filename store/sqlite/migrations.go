package sqlite

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
    id TEXT PRIMARY KEY,
    schema_name TEXT NOT NULL,
    status TEXT NOT NULL,
    started_at DATETIME NOT NULL,
    finished_at DATETIME NOT NULL
);

-- Index for finding the most recent runs for a schema
CREATE INDEX IF NOT EXISTS idx_runs_schema ON %s(schema_name, started_at DESC);

-- Create per-table outcomes table
CREATE TABLE IF NOT EXISTS %s (
    run_id TEXT NOT NULL REFERENCES %s(id),
    position INTEGER NOT NULL,
    owner TEXT NOT NULL,
    table_name TEXT NOT NULL,
    status TEXT NOT NULL,
    err TEXT NOT NULL DEFAULT '',
    results TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (run_id, position)
);

-- Index for finding outcomes by run
CREATE INDEX IF NOT EXISTS idx_outcomes_run ON %s(run_id);
`, config.RunsTable, config.RunsTable, config.OutcomesTable, config.RunsTable, config.OutcomesTable)
}

// MigrationDown returns the SQL to drop the run history tables.
func MigrationDown(config TableConfig) string {
	return fmt.Sprintf(`-- Drop outcomes table (must be dropped first due to foreign key)
DROP TABLE IF EXISTS %s;

-- Drop run history table
DROP TABLE IF EXISTS %s;
`, config.OutcomesTable, config.RunsTable)
}
