package catalog

import (
	"context"
	"time"

	"github.com/dbops/repart"
)

// TableStats holds the size statistics the catalog keeps for a table.
type TableStats struct {
	// RowCount is the catalog's row count statistic. It may lag the live
	// count; use RowCount on the Catalog for an exact count.
	RowCount int64

	// SizeBytes is the total segment size of the table.
	SizeBytes int64
}

// PartitionInfo describes the partitioning the catalog records for a table.
type PartitionInfo struct {
	// Partitioned reports whether the table is partitioned at all.
	Partitioned bool

	// Type is the table-level partitioning scheme.
	Type repart.PartitionType

	// PartitionCount is the number of partitions currently materialized.
	PartitionCount int

	// SubpartitionType is the secondary scheme, NONE when absent.
	SubpartitionType repart.SubpartitionType

	// SubpartitionCount is the per-partition subpartition count.
	SubpartitionCount int
}

// Row is one sampled row, keyed by column name with values rendered as text.
type Row map[string]string

// Catalog is the abstract metadata source the pipeline reads from.
// Implementations must be safe for concurrent use; discovery fans out
// across tables sharing one Catalog.
//
// Methods return repart.ErrTableNotFound or repart.ErrTablespaceNotFound
// for missing objects and wrap repart.ErrCatalogUnavailable when the
// connection itself cannot serve the query.
type Catalog interface {
	// ListTables returns the table names owned by the schema.
	ListTables(ctx context.Context, owner string) ([]string, error)

	// TableExists reports whether the table exists.
	TableExists(ctx context.Context, owner, table string) (bool, error)

	// Columns returns the table's columns in catalog order.
	Columns(ctx context.Context, owner, table string) ([]repart.ColumnInfo, error)

	// Constraints returns the table's own constraints.
	Constraints(ctx context.Context, owner, table string) ([]repart.ConstraintInfo, error)

	// ReferencingConstraints returns enabled foreign keys on other tables
	// that reference this table.
	ReferencingConstraints(ctx context.Context, owner, table string) ([]repart.ConstraintInfo, error)

	// Indexes returns the table's indexes.
	Indexes(ctx context.Context, owner, table string) ([]repart.IndexInfo, error)

	// LobStorage returns storage descriptors for the table's LOB columns.
	LobStorage(ctx context.Context, owner, table string) ([]repart.LobInfo, error)

	// TableStats returns the catalog's size statistics for the table.
	TableStats(ctx context.Context, owner, table string) (TableStats, error)

	// PartitionInfo returns the table's recorded partitioning scheme.
	PartitionInfo(ctx context.Context, owner, table string) (PartitionInfo, error)

	// DateRange returns the minimum and maximum value of a date column.
	DateRange(ctx context.Context, owner, table, column string) (time.Time, time.Time, error)

	// RowCount returns the live row count of the table.
	RowCount(ctx context.Context, owner, table string) (int64, error)

	// PartitionRowCounts returns the live row count per partition,
	// keyed by partition name.
	PartitionRowCounts(ctx context.Context, owner, table string) (map[string]int64, error)

	// SampleRows returns up to sampleSize rows sampled deterministically
	// by taking every k-th row in keyColumn order.
	SampleRows(ctx context.Context, owner, table, keyColumn string, sampleSize int) ([]Row, error)

	// TablespaceExists reports whether the tablespace exists.
	TablespaceExists(ctx context.Context, name string) (bool, error)

	// TablespaceFreeBytes returns the free space in the tablespace.
	TablespaceFreeBytes(ctx context.Context, name string) (int64, error)

	// ActiveSessionCount returns the number of sessions currently holding
	// the table open, excluding the caller's own session.
	ActiveSessionCount(ctx context.Context, owner, table string) (int, error)
}
