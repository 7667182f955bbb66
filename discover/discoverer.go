// Package discover builds TableConfig snapshots for every table in a
// schema by reading the catalog. Individual table failures are collected
// and reported; they never abort the batch.
package discover

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sync"

	"github.com/dbops/repart"
	"github.com/dbops/repart/catalog"
	"github.com/dbops/repart/plan"
)

// Config configures the Discoverer.
type Config struct {
	// Catalog is the metadata source (required).
	Catalog catalog.Catalog

	// Include restricts discovery to tables matching any of these glob
	// patterns. Empty means all tables.
	Include []string

	// Exclude removes tables matching any of these glob patterns.
	Exclude []string

	// Concurrency is the number of tables discovered in parallel
	// (default: 4). Size the catalog connection pool to match.
	Concurrency int

	// Logger is an optional logger for observability.
	Logger *slog.Logger
}

// TableError is a discovery failure scoped to one table.
type TableError struct {
	// Table is the table the failure applies to.
	Table string

	// Err is the underlying error.
	Err error
}

func (e TableError) Error() string {
	return fmt.Sprintf("discovery failed for %s: %v", e.Table, e.Err)
}

// Unwrap returns the underlying error.
func (e TableError) Unwrap() error {
	return e.Err
}

// Discoverer enumerates a schema and snapshots each table's structure.
type Discoverer struct {
	config Config
}

// New creates a new Discoverer with the given configuration.
// It applies a default Concurrency of 4 if unset.
func New(cfg Config) *Discoverer {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}

	return &Discoverer{config: cfg}
}

// Discover returns one TableConfig per discovered table, with
// current_state populated and target_configuration filled by default
// inference. Per-table failures are returned alongside the successful
// configs. The returned error is non-nil only when the catalog cannot
// enumerate the schema at all (repart.ErrCatalogUnavailable).
func (d *Discoverer) Discover(ctx context.Context, owner string) ([]repart.TableConfig, []TableError, error) {
	tables, err := d.config.Catalog.ListTables(ctx, owner)
	if err != nil {
		return nil, nil, err
	}

	tables = d.filter(tables)
	if len(tables) == 0 {
		return nil, nil, nil
	}

	type slot struct {
		config repart.TableConfig
		err    error
	}
	slots := make([]slot, len(tables))

	sem := make(chan struct{}, d.config.Concurrency)
	var wg sync.WaitGroup
	for i, table := range tables {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, table string) {
			defer wg.Done()
			defer func() { <-sem }()

			cfg, err := d.discoverTable(ctx, owner, table)
			slots[i] = slot{config: cfg, err: err}
		}(i, table)
	}
	wg.Wait()

	var configs []repart.TableConfig
	var tableErrs []TableError
	for i, s := range slots {
		if s.err != nil {
			if d.config.Logger != nil {
				d.config.Logger.Warn("table discovery failed", "table", tables[i], "error", s.err)
			}
			tableErrs = append(tableErrs, TableError{Table: tables[i], Err: s.err})
			continue
		}
		configs = append(configs, s.config)
	}

	return configs, tableErrs, nil
}

// filter applies the include and exclude glob patterns.
func (d *Discoverer) filter(tables []string) []string {
	var kept []string
	for _, table := range tables {
		if len(d.config.Include) > 0 && !matchAny(d.config.Include, table) {
			continue
		}
		if matchAny(d.config.Exclude, table) {
			continue
		}
		kept = append(kept, table)
	}
	return kept
}

func matchAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if ok, err := path.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// discoverTable snapshots one table's structure and infers target
// defaults for it.
func (d *Discoverer) discoverTable(ctx context.Context, owner, table string) (repart.TableConfig, error) {
	cat := d.config.Catalog

	columns, err := cat.Columns(ctx, owner, table)
	if err != nil {
		return repart.TableConfig{}, fmt.Errorf("reading columns: %w", err)
	}

	constraints, err := cat.Constraints(ctx, owner, table)
	if err != nil {
		return repart.TableConfig{}, fmt.Errorf("reading constraints: %w", err)
	}

	indexes, err := cat.Indexes(ctx, owner, table)
	if err != nil {
		return repart.TableConfig{}, fmt.Errorf("reading indexes: %w", err)
	}

	lobs, err := cat.LobStorage(ctx, owner, table)
	if err != nil {
		return repart.TableConfig{}, fmt.Errorf("reading lob storage: %w", err)
	}

	stats, err := cat.TableStats(ctx, owner, table)
	if err != nil {
		return repart.TableConfig{}, fmt.Errorf("reading table stats: %w", err)
	}

	partInfo, err := cat.PartitionInfo(ctx, owner, table)
	if err != nil {
		return repart.TableConfig{}, fmt.Errorf("reading partition info: %w", err)
	}

	state := repart.CurrentState{
		IsPartitioned: partInfo.Partitioned,
		PartitionType: partInfo.Type,
		Columns:       columns,
		Constraints:   constraints,
		Indexes:       indexes,
		LobStorage:    lobs,
		RowCount:      stats.RowCount,
		SizeBytes:     stats.SizeBytes,
	}

	// Best-effort date range for the interval inference. A scan failure
	// leaves the range empty and the inference falls back to MONTH.
	if col := plan.DefaultPartitionColumn(state); col != "" {
		minDate, maxDate, err := cat.DateRange(ctx, owner, table, col)
		if err == nil {
			state.DataMin = minDate
			state.DataMax = maxDate
		} else if d.config.Logger != nil {
			d.config.Logger.Debug("date range scan failed", "table", table, "column", col, "error", err)
		}
	}

	cfg := repart.TableConfig{
		Enabled:      true,
		Owner:        owner,
		TableName:    table,
		CurrentState: state,
	}
	plan.ApplyDefaults(&cfg)

	return cfg, nil
}
