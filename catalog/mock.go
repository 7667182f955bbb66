package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/dbops/repart"
)

// Mock is a configurable mock implementation of Catalog for use in
// tests. It allows setting up expected return values, tracking method
// calls, and injecting errors for testing error paths.
type Mock struct {
	mu sync.Mutex

	// ListTablesFunc is called by ListTables if set.
	ListTablesFunc func(ctx context.Context, owner string) ([]string, error)

	// TableExistsFunc is called by TableExists if set.
	TableExistsFunc func(ctx context.Context, owner, table string) (bool, error)

	// ColumnsFunc is called by Columns if set.
	ColumnsFunc func(ctx context.Context, owner, table string) ([]repart.ColumnInfo, error)

	// ConstraintsFunc is called by Constraints if set.
	ConstraintsFunc func(ctx context.Context, owner, table string) ([]repart.ConstraintInfo, error)

	// ReferencingConstraintsFunc is called by ReferencingConstraints if set.
	ReferencingConstraintsFunc func(ctx context.Context, owner, table string) ([]repart.ConstraintInfo, error)

	// IndexesFunc is called by Indexes if set.
	IndexesFunc func(ctx context.Context, owner, table string) ([]repart.IndexInfo, error)

	// LobStorageFunc is called by LobStorage if set.
	LobStorageFunc func(ctx context.Context, owner, table string) ([]repart.LobInfo, error)

	// TableStatsFunc is called by TableStats if set.
	TableStatsFunc func(ctx context.Context, owner, table string) (TableStats, error)

	// PartitionInfoFunc is called by PartitionInfo if set.
	PartitionInfoFunc func(ctx context.Context, owner, table string) (PartitionInfo, error)

	// DateRangeFunc is called by DateRange if set.
	DateRangeFunc func(ctx context.Context, owner, table, column string) (time.Time, time.Time, error)

	// RowCountFunc is called by RowCount if set.
	RowCountFunc func(ctx context.Context, owner, table string) (int64, error)

	// PartitionRowCountsFunc is called by PartitionRowCounts if set.
	PartitionRowCountsFunc func(ctx context.Context, owner, table string) (map[string]int64, error)

	// SampleRowsFunc is called by SampleRows if set.
	SampleRowsFunc func(ctx context.Context, owner, table, keyColumn string, sampleSize int) ([]Row, error)

	// TablespaceExistsFunc is called by TablespaceExists if set.
	TablespaceExistsFunc func(ctx context.Context, name string) (bool, error)

	// TablespaceFreeBytesFunc is called by TablespaceFreeBytes if set.
	TablespaceFreeBytesFunc func(ctx context.Context, name string) (int64, error)

	// ActiveSessionCountFunc is called by ActiveSessionCount if set.
	ActiveSessionCountFunc func(ctx context.Context, owner, table string) (int, error)

	// Call tracking
	ListTablesCalls             []TableCall
	TableExistsCalls            []TableCall
	ColumnsCalls                []TableCall
	ConstraintsCalls            []TableCall
	ReferencingConstraintsCalls []TableCall
	IndexesCalls                []TableCall
	LobStorageCalls             []TableCall
	TableStatsCalls             []TableCall
	PartitionInfoCalls          []TableCall
	DateRangeCalls              []ColumnCall
	RowCountCalls               []TableCall
	PartitionRowCountsCalls     []TableCall
	SampleRowsCalls             []SampleRowsCall
	TablespaceExistsCalls       []TablespaceCall
	TablespaceFreeBytesCalls    []TablespaceCall
	ActiveSessionCountCalls     []TableCall
}

// TableCall records an owner/table-scoped catalog call.
type TableCall struct {
	Owner string
	Table string
}

// ColumnCall records a column-scoped catalog call.
type ColumnCall struct {
	Owner  string
	Table  string
	Column string
}

// SampleRowsCall records a SampleRows invocation.
type SampleRowsCall struct {
	Owner      string
	Table      string
	KeyColumn  string
	SampleSize int
}

// TablespaceCall records a tablespace-scoped catalog call.
type TablespaceCall struct {
	Name string
}

// Compile-time check that Mock implements Catalog.
var _ Catalog = (*Mock)(nil)

// NewMock creates a new mock catalog.
func NewMock() *Mock {
	return &Mock{}
}

// ListTables implements Catalog.
func (m *Mock) ListTables(ctx context.Context, owner string) ([]string, error) {
	m.mu.Lock()
	m.ListTablesCalls = append(m.ListTablesCalls, TableCall{Owner: owner})
	m.mu.Unlock()

	if m.ListTablesFunc != nil {
		return m.ListTablesFunc(ctx, owner)
	}
	return nil, nil
}

// TableExists implements Catalog.
func (m *Mock) TableExists(ctx context.Context, owner, table string) (bool, error) {
	m.mu.Lock()
	m.TableExistsCalls = append(m.TableExistsCalls, TableCall{Owner: owner, Table: table})
	m.mu.Unlock()

	if m.TableExistsFunc != nil {
		return m.TableExistsFunc(ctx, owner, table)
	}
	return false, nil
}

// Columns implements Catalog.
func (m *Mock) Columns(ctx context.Context, owner, table string) ([]repart.ColumnInfo, error) {
	m.mu.Lock()
	m.ColumnsCalls = append(m.ColumnsCalls, TableCall{Owner: owner, Table: table})
	m.mu.Unlock()

	if m.ColumnsFunc != nil {
		return m.ColumnsFunc(ctx, owner, table)
	}
	return nil, repart.ErrTableNotFound
}

// Constraints implements Catalog.
func (m *Mock) Constraints(ctx context.Context, owner, table string) ([]repart.ConstraintInfo, error) {
	m.mu.Lock()
	m.ConstraintsCalls = append(m.ConstraintsCalls, TableCall{Owner: owner, Table: table})
	m.mu.Unlock()

	if m.ConstraintsFunc != nil {
		return m.ConstraintsFunc(ctx, owner, table)
	}
	return nil, nil
}

// ReferencingConstraints implements Catalog.
func (m *Mock) ReferencingConstraints(ctx context.Context, owner, table string) ([]repart.ConstraintInfo, error) {
	m.mu.Lock()
	m.ReferencingConstraintsCalls = append(m.ReferencingConstraintsCalls, TableCall{Owner: owner, Table: table})
	m.mu.Unlock()

	if m.ReferencingConstraintsFunc != nil {
		return m.ReferencingConstraintsFunc(ctx, owner, table)
	}
	return nil, nil
}

// Indexes implements Catalog.
func (m *Mock) Indexes(ctx context.Context, owner, table string) ([]repart.IndexInfo, error) {
	m.mu.Lock()
	m.IndexesCalls = append(m.IndexesCalls, TableCall{Owner: owner, Table: table})
	m.mu.Unlock()

	if m.IndexesFunc != nil {
		return m.IndexesFunc(ctx, owner, table)
	}
	return nil, nil
}

// LobStorage implements Catalog.
func (m *Mock) LobStorage(ctx context.Context, owner, table string) ([]repart.LobInfo, error) {
	m.mu.Lock()
	m.LobStorageCalls = append(m.LobStorageCalls, TableCall{Owner: owner, Table: table})
	m.mu.Unlock()

	if m.LobStorageFunc != nil {
		return m.LobStorageFunc(ctx, owner, table)
	}
	return nil, nil
}

// TableStats implements Catalog.
func (m *Mock) TableStats(ctx context.Context, owner, table string) (TableStats, error) {
	m.mu.Lock()
	m.TableStatsCalls = append(m.TableStatsCalls, TableCall{Owner: owner, Table: table})
	m.mu.Unlock()

	if m.TableStatsFunc != nil {
		return m.TableStatsFunc(ctx, owner, table)
	}
	return TableStats{}, nil
}

// PartitionInfo implements Catalog.
func (m *Mock) PartitionInfo(ctx context.Context, owner, table string) (PartitionInfo, error) {
	m.mu.Lock()
	m.PartitionInfoCalls = append(m.PartitionInfoCalls, TableCall{Owner: owner, Table: table})
	m.mu.Unlock()

	if m.PartitionInfoFunc != nil {
		return m.PartitionInfoFunc(ctx, owner, table)
	}
	return PartitionInfo{Type: repart.PartitionNone, SubpartitionType: repart.SubpartitionNone}, nil
}

// DateRange implements Catalog.
func (m *Mock) DateRange(ctx context.Context, owner, table, column string) (time.Time, time.Time, error) {
	m.mu.Lock()
	m.DateRangeCalls = append(m.DateRangeCalls, ColumnCall{Owner: owner, Table: table, Column: column})
	m.mu.Unlock()

	if m.DateRangeFunc != nil {
		return m.DateRangeFunc(ctx, owner, table, column)
	}
	return time.Time{}, time.Time{}, nil
}

// RowCount implements Catalog.
func (m *Mock) RowCount(ctx context.Context, owner, table string) (int64, error) {
	m.mu.Lock()
	m.RowCountCalls = append(m.RowCountCalls, TableCall{Owner: owner, Table: table})
	m.mu.Unlock()

	if m.RowCountFunc != nil {
		return m.RowCountFunc(ctx, owner, table)
	}
	return 0, nil
}

// PartitionRowCounts implements Catalog.
func (m *Mock) PartitionRowCounts(ctx context.Context, owner, table string) (map[string]int64, error) {
	m.mu.Lock()
	m.PartitionRowCountsCalls = append(m.PartitionRowCountsCalls, TableCall{Owner: owner, Table: table})
	m.mu.Unlock()

	if m.PartitionRowCountsFunc != nil {
		return m.PartitionRowCountsFunc(ctx, owner, table)
	}
	return nil, nil
}

// SampleRows implements Catalog.
func (m *Mock) SampleRows(ctx context.Context, owner, table, keyColumn string, sampleSize int) ([]Row, error) {
	m.mu.Lock()
	m.SampleRowsCalls = append(m.SampleRowsCalls, SampleRowsCall{
		Owner:      owner,
		Table:      table,
		KeyColumn:  keyColumn,
		SampleSize: sampleSize,
	})
	m.mu.Unlock()

	if m.SampleRowsFunc != nil {
		return m.SampleRowsFunc(ctx, owner, table, keyColumn, sampleSize)
	}
	return nil, nil
}

// TablespaceExists implements Catalog.
func (m *Mock) TablespaceExists(ctx context.Context, name string) (bool, error) {
	m.mu.Lock()
	m.TablespaceExistsCalls = append(m.TablespaceExistsCalls, TablespaceCall{Name: name})
	m.mu.Unlock()

	if m.TablespaceExistsFunc != nil {
		return m.TablespaceExistsFunc(ctx, name)
	}
	return false, nil
}

// TablespaceFreeBytes implements Catalog.
func (m *Mock) TablespaceFreeBytes(ctx context.Context, name string) (int64, error) {
	m.mu.Lock()
	m.TablespaceFreeBytesCalls = append(m.TablespaceFreeBytesCalls, TablespaceCall{Name: name})
	m.mu.Unlock()

	if m.TablespaceFreeBytesFunc != nil {
		return m.TablespaceFreeBytesFunc(ctx, name)
	}
	return 0, nil
}

// ActiveSessionCount implements Catalog.
func (m *Mock) ActiveSessionCount(ctx context.Context, owner, table string) (int, error) {
	m.mu.Lock()
	m.ActiveSessionCountCalls = append(m.ActiveSessionCountCalls, TableCall{Owner: owner, Table: table})
	m.mu.Unlock()

	if m.ActiveSessionCountFunc != nil {
		return m.ActiveSessionCountFunc(ctx, owner, table)
	}
	return 0, nil
}
