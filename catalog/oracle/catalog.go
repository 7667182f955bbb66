// Package oracle implements catalog.Catalog against an Oracle data
// dictionary using database/sql. The driver (github.com/sijms/go-ora/v2)
// is registered by the caller.
package oracle

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"github.com/dbops/repart"
	"github.com/dbops/repart/catalog"
)

var identifierRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_$#]*$`)

// validateIdentifier ensures an identifier contains only safe characters
// before it is interpolated into a statement. Bind variables cannot be
// used for object names.
func validateIdentifier(name, fieldName string) error {
	if name == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	if !identifierRegex.MatchString(name) {
		return fmt.Errorf("%s must start with a letter and contain only letters, numbers, underscores, $ and # (got: %s)", fieldName, name)
	}
	return nil
}

// Catalog reads table metadata from the ALL_*/DBA_* dictionary views.
// It is safe for concurrent use; callers size the underlying pool to the
// desired discovery concurrency.
type Catalog struct {
	db *sql.DB
}

// Compile-time check that Catalog implements catalog.Catalog.
var _ catalog.Catalog = (*Catalog)(nil)

// New creates a catalog over an open Oracle connection pool.
func New(db *sql.DB) *Catalog {
	return &Catalog{db: db}
}

// ListTables returns the table names owned by the schema.
// Wraps repart.ErrCatalogUnavailable when the dictionary cannot be read.
func (c *Catalog) ListTables(ctx context.Context, owner string) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT table_name
		FROM all_tables
		WHERE owner = :1
		ORDER BY table_name`, owner)
	if err != nil {
		return nil, fmt.Errorf("%w: listing tables for %s: %v", repart.ErrCatalogUnavailable, owner, err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating tables for %s: %v", repart.ErrCatalogUnavailable, owner, err)
	}

	return tables, nil
}

// TableExists reports whether the table exists.
func (c *Catalog) TableExists(ctx context.Context, owner, table string) (bool, error) {
	var count int
	err := c.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM all_tables
		WHERE owner = :1 AND table_name = :2`, owner, table).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check table existence: %w", err)
	}
	return count > 0, nil
}

// Columns returns the table's columns in dictionary order. Data types
// are composed with their length or precision (VARCHAR2(100),
// NUMBER(10,2)) so they can be replayed into a CREATE TABLE verbatim.
// Returns repart.ErrTableNotFound when the table has no columns at all.
func (c *Catalog) Columns(ctx context.Context, owner, table string) ([]repart.ColumnInfo, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT column_name, data_type, char_length, data_precision, data_scale, nullable
		FROM all_tab_columns
		WHERE owner = :1 AND table_name = :2
		ORDER BY column_id`, owner, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	var columns []repart.ColumnInfo
	for rows.Next() {
		var col repart.ColumnInfo
		var dataType, nullable string
		var charLength sql.NullInt64
		var precision, scale sql.NullInt64
		if err := rows.Scan(&col.Name, &dataType, &charLength, &precision, &scale, &nullable); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		col.DataType = composeType(dataType, charLength, precision, scale)
		col.Nullable = nullable == "Y"
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns: %w", err)
	}

	if len(columns) == 0 {
		return nil, repart.ErrTableNotFound
	}
	return columns, nil
}

// Constraints returns the table's own P, U, R and C constraints.
func (c *Catalog) Constraints(ctx context.Context, owner, table string) ([]repart.ConstraintInfo, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT constraint_name, constraint_type, status
		FROM all_constraints
		WHERE owner = :1 AND table_name = :2
		  AND constraint_type IN ('P', 'U', 'R', 'C')
		ORDER BY constraint_name`, owner, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query constraints: %w", err)
	}
	defer rows.Close()

	return scanConstraints(rows)
}

// ReferencingConstraints returns enabled foreign keys on other tables
// that reference this table's keys.
func (c *Catalog) ReferencingConstraints(ctx context.Context, owner, table string) ([]repart.ConstraintInfo, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT fk.constraint_name, fk.constraint_type, fk.status
		FROM all_constraints fk
		JOIN all_constraints pk
		  ON fk.r_owner = pk.owner AND fk.r_constraint_name = pk.constraint_name
		WHERE pk.owner = :1 AND pk.table_name = :2
		  AND fk.constraint_type = 'R'
		  AND fk.status = 'ENABLED'
		ORDER BY fk.constraint_name`, owner, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query referencing constraints: %w", err)
	}
	defer rows.Close()

	return scanConstraints(rows)
}

func scanConstraints(rows *sql.Rows) ([]repart.ConstraintInfo, error) {
	var constraints []repart.ConstraintInfo
	for rows.Next() {
		var con repart.ConstraintInfo
		var conType string
		if err := rows.Scan(&con.Name, &conType, &con.Status); err != nil {
			return nil, fmt.Errorf("failed to scan constraint: %w", err)
		}
		con.Type = repart.ConstraintType(conType)
		constraints = append(constraints, con)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating constraints: %w", err)
	}
	return constraints, nil
}

// Indexes returns the table's indexes with their column lists.
func (c *Catalog) Indexes(ctx context.Context, owner, table string) ([]repart.IndexInfo, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT i.index_name, i.uniqueness, NVL(i.tablespace_name, ' '), ic.column_name
		FROM all_indexes i
		JOIN all_ind_columns ic
		  ON ic.index_owner = i.owner AND ic.index_name = i.index_name
		WHERE i.table_owner = :1 AND i.table_name = :2
		ORDER BY i.index_name, ic.column_position`, owner, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query indexes: %w", err)
	}
	defer rows.Close()

	var indexes []repart.IndexInfo
	for rows.Next() {
		var name, uniqueness, tablespace, column string
		if err := rows.Scan(&name, &uniqueness, &tablespace, &column); err != nil {
			return nil, fmt.Errorf("failed to scan index column: %w", err)
		}
		if tablespace == " " {
			tablespace = ""
		}
		if n := len(indexes); n > 0 && indexes[n-1].Name == name {
			indexes[n-1].Columns = append(indexes[n-1].Columns, column)
			continue
		}
		indexes = append(indexes, repart.IndexInfo{
			Name:       name,
			Columns:    []string{column},
			Unique:     uniqueness == "UNIQUE",
			Tablespace: tablespace,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating indexes: %w", err)
	}

	return indexes, nil
}

// LobStorage returns storage descriptors for the table's LOB columns.
func (c *Catalog) LobStorage(ctx context.Context, owner, table string) ([]repart.LobInfo, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT column_name, segment_name, NVL(tablespace_name, ' ')
		FROM all_lobs
		WHERE owner = :1 AND table_name = :2
		ORDER BY column_name`, owner, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query lob storage: %w", err)
	}
	defer rows.Close()

	var lobs []repart.LobInfo
	for rows.Next() {
		var lob repart.LobInfo
		if err := rows.Scan(&lob.Column, &lob.SegmentBase, &lob.TablespaceBase); err != nil {
			return nil, fmt.Errorf("failed to scan lob: %w", err)
		}
		if lob.TablespaceBase == " " {
			lob.TablespaceBase = ""
		}
		lobs = append(lobs, lob)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lobs: %w", err)
	}

	return lobs, nil
}

// TableStats returns the dictionary's row count statistic and the summed
// segment size for the table.
func (c *Catalog) TableStats(ctx context.Context, owner, table string) (catalog.TableStats, error) {
	var stats catalog.TableStats
	err := c.db.QueryRowContext(ctx, `
		SELECT NVL(num_rows, 0)
		FROM all_tables
		WHERE owner = :1 AND table_name = :2`, owner, table).Scan(&stats.RowCount)
	if err == sql.ErrNoRows {
		return catalog.TableStats{}, repart.ErrTableNotFound
	}
	if err != nil {
		return catalog.TableStats{}, fmt.Errorf("failed to query table stats: %w", err)
	}

	err = c.db.QueryRowContext(ctx, `
		SELECT NVL(SUM(bytes), 0)
		FROM dba_segments
		WHERE owner = :1 AND segment_name = :2`, owner, table).Scan(&stats.SizeBytes)
	if err != nil {
		return catalog.TableStats{}, fmt.Errorf("failed to query segment size: %w", err)
	}

	return stats, nil
}

// PartitionInfo returns the partitioning recorded in ALL_PART_TABLES,
// or an unpartitioned result when the table has no entry there.
func (c *Catalog) PartitionInfo(ctx context.Context, owner, table string) (catalog.PartitionInfo, error) {
	info := catalog.PartitionInfo{
		Type:             repart.PartitionNone,
		SubpartitionType: repart.SubpartitionNone,
	}

	var partType, subType string
	var interval sql.NullString
	err := c.db.QueryRowContext(ctx, `
		SELECT partitioning_type, subpartitioning_type, partition_count,
		       NVL(def_subpartition_count, 0), interval
		FROM all_part_tables
		WHERE owner = :1 AND table_name = :2`, owner, table).Scan(
		&partType,
		&subType,
		&info.PartitionCount,
		&info.SubpartitionCount,
		&interval,
	)
	if err == sql.ErrNoRows {
		return info, nil
	}
	if err != nil {
		return catalog.PartitionInfo{}, fmt.Errorf("failed to query partition info: %w", err)
	}

	info.Partitioned = true
	info.Type = repart.PartitionType(partType)
	// The dictionary reports interval-partitioned tables as RANGE with a
	// non-null interval expression.
	if info.Type == repart.PartitionRange && interval.Valid && interval.String != "" {
		info.Type = repart.PartitionInterval
	}
	if subType != "NONE" && subType != "" {
		info.SubpartitionType = repart.SubpartitionType(subType)
	}

	return info, nil
}

// DateRange returns the minimum and maximum value of a date column.
func (c *Catalog) DateRange(ctx context.Context, owner, table, column string) (time.Time, time.Time, error) {
	if err := validateQualified(owner, table); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if err := validateIdentifier(column, "column"); err != nil {
		return time.Time{}, time.Time{}, err
	}

	var minVal, maxVal sql.NullTime
	query := fmt.Sprintf(`SELECT MIN(%s), MAX(%s) FROM %s.%s`, column, column, owner, table)
	if err := c.db.QueryRowContext(ctx, query).Scan(&minVal, &maxVal); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("failed to query date range: %w", err)
	}
	if !minVal.Valid || !maxVal.Valid {
		return time.Time{}, time.Time{}, nil
	}

	return minVal.Time, maxVal.Time, nil
}

// RowCount returns the live row count of the table.
func (c *Catalog) RowCount(ctx context.Context, owner, table string) (int64, error) {
	if err := validateQualified(owner, table); err != nil {
		return 0, err
	}

	var count int64
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s.%s`, owner, table)
	if err := c.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return count, nil
}

// PartitionRowCounts returns the live row count of each partition.
func (c *Catalog) PartitionRowCounts(ctx context.Context, owner, table string) (map[string]int64, error) {
	if err := validateQualified(owner, table); err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT partition_name
		FROM all_tab_partitions
		WHERE table_owner = :1 AND table_name = :2
		ORDER BY partition_position`, owner, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query partitions: %w", err)
	}

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan partition name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating partitions: %w", err)
	}
	rows.Close()

	counts := make(map[string]int64, len(names))
	for _, name := range names {
		if err := validateIdentifier(name, "partition"); err != nil {
			return nil, err
		}
		var count int64
		query := fmt.Sprintf(`SELECT COUNT(*) FROM %s.%s PARTITION (%s)`, owner, table, name)
		if err := c.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
			return nil, fmt.Errorf("failed to count partition %s: %w", name, err)
		}
		counts[name] = count
	}

	return counts, nil
}

// SampleRows returns up to sampleSize rows, taking every k-th row in
// keyColumn order where k spreads the sample across the whole table.
// The same table state and key always yield the same sample.
func (c *Catalog) SampleRows(ctx context.Context, owner, table, keyColumn string, sampleSize int) ([]catalog.Row, error) {
	if err := validateQualified(owner, table); err != nil {
		return nil, err
	}
	if err := validateIdentifier(keyColumn, "key column"); err != nil {
		return nil, err
	}
	if sampleSize <= 0 {
		return nil, fmt.Errorf("sample size must be positive (got %d)", sampleSize)
	}

	total, err := c.RowCount(ctx, owner, table)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, nil
	}

	step := total / int64(sampleSize)
	if step < 1 {
		step = 1
	}

	query := fmt.Sprintf(`
		SELECT * FROM (
			SELECT t.*, ROW_NUMBER() OVER (ORDER BY %s) AS sample_rn
			FROM %s.%s t
		)
		WHERE MOD(sample_rn - 1, :1) = 0
		FETCH FIRST :2 ROWS ONLY`, keyColumn, owner, table)

	rows, err := c.db.QueryContext(ctx, query, step, sampleSize)
	if err != nil {
		return nil, fmt.Errorf("failed to sample rows: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read sample columns: %w", err)
	}

	var sample []catalog.Row
	values := make([]sql.NullString, len(cols))
	scanArgs := make([]any, len(cols))
	for i := range values {
		scanArgs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, fmt.Errorf("failed to scan sample row: %w", err)
		}
		row := make(catalog.Row, len(cols)-1)
		for i, col := range cols {
			if col == "SAMPLE_RN" {
				continue
			}
			row[col] = values[i].String
		}
		sample = append(sample, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sample: %w", err)
	}

	return sample, nil
}

// TablespaceExists reports whether the tablespace exists.
func (c *Catalog) TablespaceExists(ctx context.Context, name string) (bool, error) {
	var count int
	err := c.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM dba_tablespaces
		WHERE tablespace_name = :1`, name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check tablespace existence: %w", err)
	}
	return count > 0, nil
}

// TablespaceFreeBytes returns the free space in the tablespace.
// Returns repart.ErrTablespaceNotFound when the tablespace is unknown.
func (c *Catalog) TablespaceFreeBytes(ctx context.Context, name string) (int64, error) {
	exists, err := c.TablespaceExists(ctx, name)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, repart.ErrTablespaceNotFound
	}

	var free int64
	err = c.db.QueryRowContext(ctx, `
		SELECT NVL(SUM(bytes), 0)
		FROM dba_free_space
		WHERE tablespace_name = :1`, name).Scan(&free)
	if err != nil {
		return 0, fmt.Errorf("failed to query free space: %w", err)
	}
	return free, nil
}

// ActiveSessionCount returns the number of sessions holding locks on the
// table. A non-zero count means a long-running session could block DDL.
func (c *Catalog) ActiveSessionCount(ctx context.Context, owner, table string) (int, error) {
	var count int
	err := c.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT lo.session_id)
		FROM v$locked_object lo
		JOIN dba_objects o ON o.object_id = lo.object_id
		WHERE o.owner = :1 AND o.object_name = :2`, owner, table).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active sessions: %w", err)
	}
	return count, nil
}

// composeType renders a dictionary type with its length or precision so
// it is valid in a column definition.
func composeType(dataType string, charLength, precision, scale sql.NullInt64) string {
	switch dataType {
	case "VARCHAR2", "NVARCHAR2", "CHAR", "NCHAR", "RAW":
		if charLength.Valid && charLength.Int64 > 0 {
			return fmt.Sprintf("%s(%d)", dataType, charLength.Int64)
		}
	case "NUMBER":
		if precision.Valid {
			if scale.Valid && scale.Int64 > 0 {
				return fmt.Sprintf("NUMBER(%d,%d)", precision.Int64, scale.Int64)
			}
			return fmt.Sprintf("NUMBER(%d)", precision.Int64)
		}
	}
	return dataType
}

func validateQualified(owner, table string) error {
	if err := validateIdentifier(owner, "owner"); err != nil {
		return err
	}
	return validateIdentifier(table, "table")
}
