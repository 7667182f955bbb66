package store

import (
	"context"

	"github.com/dbops/repart"
)

// RunStore provides persistence for batch run reports.
// Implementations must be safe for concurrent access.
type RunStore interface {
	// SaveRun persists a completed run report with all its outcomes.
	// Saving a report with an ID that already exists replaces it.
	SaveRun(ctx context.Context, report repart.RunReport) error

	// GetRun returns a run report by ID, outcomes included.
	// Returns ErrRunNotFound if no run with the ID exists.
	GetRun(ctx context.Context, id string) (repart.RunReport, error)

	// LatestRun returns the most recently started run for a schema.
	// Returns ErrRunNotFound if the schema has no runs.
	LatestRun(ctx context.Context, schema string) (repart.RunReport, error)

	// ListRuns returns up to limit runs for a schema, most recent first.
	// The returned reports omit per-table outcomes; use GetRun for those.
	// Returns an empty slice if the schema has no runs.
	ListRuns(ctx context.Context, schema string, limit int) ([]repart.RunReport, error)

	// DeleteRun removes a run and its outcomes.
	// Returns ErrRunNotFound if no run with the ID exists.
	DeleteRun(ctx context.Context, id string) error
}
