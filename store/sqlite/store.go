// Package sqlite implements RunStore on SQLite via mattn/go-sqlite3.
// It suits single-operator use where run history should survive restarts
// without standing up a database server.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dbops/repart"
	"github.com/dbops/repart/store"
	"gopkg.in/yaml.v3"
)

// Store is a SQLite implementation of RunStore.
type Store struct {
	db            *sql.DB
	runsTable     string
	outcomesTable string
}

// New creates a new SQLite store with default table names.
func New(db *sql.DB) *Store {
	config := DefaultTableConfig()
	return NewWithConfig(db, config)
}

// NewWithConfig creates a new SQLite store with custom table names.
func NewWithConfig(db *sql.DB, config TableConfig) *Store {
	return &Store{
		db:            db,
		runsTable:     config.RunsTable,
		outcomesTable: config.OutcomesTable,
	}
}

// Init creates the run history tables if they do not exist.
func (s *Store) Init(ctx context.Context) error {
	ddl := MigrationUp(TableConfig{RunsTable: s.runsTable, OutcomesTable: s.outcomesTable})
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to initialize run history tables: %w", err)
	}
	return nil
}

// SaveRun persists a run report with all its outcomes in one transaction.
// Saving a report with an ID that already exists replaces it.
func (s *Store) SaveRun(ctx context.Context, report repart.RunReport) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	deleteOutcomes := fmt.Sprintf(`DELETE FROM %s WHERE run_id = ?`, s.outcomesTable)
	if _, err := tx.ExecContext(ctx, deleteOutcomes, report.ID); err != nil {
		return fmt.Errorf("failed to clear previous outcomes: %w", err)
	}

	upsertRun := fmt.Sprintf(`
		INSERT OR REPLACE INTO %s (id, schema_name, status, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?)
	`, s.runsTable)
	if _, err := tx.ExecContext(ctx, upsertRun,
		report.ID, report.Schema, string(report.Status()), report.StartedAt, report.FinishedAt); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	insertOutcome := fmt.Sprintf(`
		INSERT INTO %s (run_id, position, owner, table_name, status, err, results)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, s.outcomesTable)
	for i, outcome := range report.Outcomes {
		results, err := yaml.Marshal(outcome.Results)
		if err != nil {
			return fmt.Errorf("failed to encode results: %w", err)
		}
		if _, err := tx.ExecContext(ctx, insertOutcome,
			report.ID, i, outcome.Owner, outcome.TableName,
			string(outcome.Status), outcome.Err, string(results)); err != nil {
			return fmt.Errorf("failed to save outcome: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	return nil
}

// GetRun returns a run report by ID, outcomes included.
// Returns store.ErrRunNotFound if no run with the ID exists.
func (s *Store) GetRun(ctx context.Context, id string) (repart.RunReport, error) {
	query := fmt.Sprintf(`
		SELECT id, schema_name, started_at, finished_at
		FROM %s
		WHERE id = ?
	`, s.runsTable)

	var report repart.RunReport
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&report.ID,
		&report.Schema,
		&report.StartedAt,
		&report.FinishedAt,
	)
	if err == sql.ErrNoRows {
		return repart.RunReport{}, store.ErrRunNotFound
	}
	if err != nil {
		return repart.RunReport{}, fmt.Errorf("failed to get run: %w", err)
	}

	outcomes, err := s.outcomesForRun(ctx, id)
	if err != nil {
		return repart.RunReport{}, err
	}
	report.Outcomes = outcomes

	return report, nil
}

// LatestRun returns the most recently started run for a schema.
// Returns store.ErrRunNotFound if the schema has no runs.
func (s *Store) LatestRun(ctx context.Context, schema string) (repart.RunReport, error) {
	query := fmt.Sprintf(`
		SELECT id
		FROM %s
		WHERE schema_name = ?
		ORDER BY started_at DESC
		LIMIT 1
	`, s.runsTable)

	var id string
	err := s.db.QueryRowContext(ctx, query, schema).Scan(&id)
	if err == sql.ErrNoRows {
		return repart.RunReport{}, store.ErrRunNotFound
	}
	if err != nil {
		return repart.RunReport{}, fmt.Errorf("failed to get latest run: %w", err)
	}

	return s.GetRun(ctx, id)
}

// ListRuns returns up to limit runs for a schema, most recent first,
// without per-table outcomes.
func (s *Store) ListRuns(ctx context.Context, schema string, limit int) ([]repart.RunReport, error) {
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`
		SELECT id, schema_name, started_at, finished_at
		FROM %s
		WHERE schema_name = ?
		ORDER BY started_at DESC
		LIMIT ?
	`, s.runsTable)

	rows, err := s.db.QueryContext(ctx, query, schema, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var reports []repart.RunReport
	for rows.Next() {
		var report repart.RunReport
		if err := rows.Scan(&report.ID, &report.Schema, &report.StartedAt, &report.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}

	return reports, nil
}

// DeleteRun removes a run and its outcomes.
// Returns store.ErrRunNotFound if no run with the ID exists.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	deleteOutcomes := fmt.Sprintf(`DELETE FROM %s WHERE run_id = ?`, s.outcomesTable)
	if _, err := tx.ExecContext(ctx, deleteOutcomes, id); err != nil {
		return fmt.Errorf("failed to delete outcomes: %w", err)
	}

	deleteRun := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, s.runsTable)
	result, err := tx.ExecContext(ctx, deleteRun, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return store.ErrRunNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}

	return nil
}

func (s *Store) outcomesForRun(ctx context.Context, runID string) ([]repart.TableOutcome, error) {
	query := fmt.Sprintf(`
		SELECT owner, table_name, status, err, results
		FROM %s
		WHERE run_id = ?
		ORDER BY position
	`, s.outcomesTable)

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []repart.TableOutcome
	for rows.Next() {
		var outcome repart.TableOutcome
		var status, results string
		if err := rows.Scan(&outcome.Owner, &outcome.TableName, &status, &outcome.Err, &results); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		outcome.Status = repart.ValidationStatus(status)
		if err := yaml.Unmarshal([]byte(results), &outcome.Results); err != nil {
			return nil, fmt.Errorf("failed to decode results: %w", err)
		}
		outcomes = append(outcomes, outcome)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read outcomes: %w", err)
	}

	return outcomes, nil
}

// Compile-time check that Store implements RunStore.
var _ store.RunStore = (*Store)(nil)
