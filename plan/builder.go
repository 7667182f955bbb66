// Package plan merges discovered metadata with user intent. It owns the
// default-inference heuristics and the persisted configuration document.
package plan

import (
	"strings"

	"github.com/dbops/repart"
)

// partitionColumnPreference is the ordered list of column names tried
// first when inferring the partition column.
var partitionColumnPreference = []string{
	"CREATED_DATE",
	"CREATE_DATE",
	"CREATED_AT",
	"CREATION_DATE",
}

// hashColumnSuffixes mark columns that follow an identifier convention.
var hashColumnSuffixes = []string{"_ID", "_NO", "_NUM", "_KEY"}

const (
	// rowsPerSubpartition is the target bucket size the default
	// subpartition count aims for.
	rowsPerSubpartition = 1_000_000

	minSubpartitions = 2
	maxSubpartitions = 128

	// Row-density thresholds (rows per day) for interval inference.
	hourlyDensity = 1_000_000
	dailyDensity  = 1_000
)

// isDateType reports whether an Oracle data type can key a range
// partition on time.
func isDateType(dataType string) bool {
	return dataType == "DATE" || strings.HasPrefix(dataType, "TIMESTAMP")
}

// isNumericType reports whether an Oracle data type is numeric. Types
// carry their precision, e.g. NUMBER(10,2), so this matches on prefix.
func isNumericType(dataType string) bool {
	for _, prefix := range []string{"NUMBER", "INTEGER", "FLOAT", "BINARY_FLOAT", "BINARY_DOUBLE"} {
		if strings.HasPrefix(dataType, prefix) {
			return true
		}
	}
	return false
}

// hasIdentifierSuffix reports whether the column name follows an
// ID-like naming convention.
func hasIdentifierSuffix(name string) bool {
	upper := strings.ToUpper(name)
	for _, suffix := range hashColumnSuffixes {
		if strings.HasSuffix(upper, suffix) {
			return true
		}
	}
	return false
}

// DefaultPartitionColumn picks the partition column for a table: the
// highest-priority name from the preference list, falling back to the
// first date or timestamp column. Returns "" when no candidate exists.
func DefaultPartitionColumn(state repart.CurrentState) string {
	for _, preferred := range partitionColumnPreference {
		if col, ok := state.Column(preferred); ok && isDateType(col.DataType) {
			return col.Name
		}
	}
	for _, col := range state.Columns {
		if isDateType(col.DataType) {
			return col.Name
		}
	}
	return ""
}

// DefaultHashColumn picks the hash subpartition column: the first
// numeric column following an identifier convention, falling back to
// any numeric column, then to a fixed-length CHAR identifier.
// Returns "" when no candidate exists.
func DefaultHashColumn(state repart.CurrentState) string {
	for _, col := range state.Columns {
		if isNumericType(col.DataType) && hasIdentifierSuffix(col.Name) {
			return col.Name
		}
	}
	for _, col := range state.Columns {
		if isNumericType(col.DataType) {
			return col.Name
		}
	}
	for _, col := range state.Columns {
		if strings.HasPrefix(col.DataType, "CHAR") && hasIdentifierSuffix(col.Name) {
			return col.Name
		}
	}
	return ""
}

// InferIntervalType infers the partition interval from row density over
// the discovered date range: at least a million rows per day gets HOUR,
// at least a thousand gets DAY, everything else MONTH. Without a usable
// date range the answer is MONTH.
func InferIntervalType(state repart.CurrentState) repart.IntervalType {
	if state.DataMin.IsZero() || state.DataMax.IsZero() || state.RowCount == 0 {
		return repart.IntervalMonth
	}

	days := state.DataMax.Sub(state.DataMin).Hours() / 24
	if days < 1 {
		days = 1
	}
	density := float64(state.RowCount) / days

	switch {
	case density >= hourlyDensity:
		return repart.IntervalHour
	case density >= dailyDensity:
		return repart.IntervalDay
	default:
		return repart.IntervalMonth
	}
}

// DefaultSubpartitionCount returns the smallest power of two that keeps
// subpartitions at or under a million rows each, clamped to [2, 128].
func DefaultSubpartitionCount(rowCount int64) int {
	buckets := rowCount / rowsPerSubpartition
	if rowCount%rowsPerSubpartition != 0 {
		buckets++
	}

	count := minSubpartitions
	for int64(count) < buckets && count < maxSubpartitions {
		count *= 2
	}
	return count
}

// ApplyDefaults fills every zero-valued target field with the inferred
// default. Explicitly configured fields are never overwritten.
func ApplyDefaults(cfg *repart.TableConfig) {
	target := &cfg.TargetConfiguration
	state := cfg.CurrentState

	if target.PartitionType == "" {
		target.PartitionType = repart.PartitionInterval
	}
	if target.PartitionColumn == "" {
		target.PartitionColumn = DefaultPartitionColumn(state)
	}
	if target.IntervalType == "" {
		target.IntervalType = InferIntervalType(state)
	}
	if target.IntervalValue == 0 {
		target.IntervalValue = 1
	}
	if target.SubpartitionType == "" {
		if DefaultHashColumn(state) != "" {
			target.SubpartitionType = repart.SubpartitionHash
		} else {
			target.SubpartitionType = repart.SubpartitionNone
		}
	}
	if target.SubpartitionType == repart.SubpartitionHash {
		if target.SubpartitionColumn == "" {
			target.SubpartitionColumn = DefaultHashColumn(state)
		}
		if target.SubpartitionCount == 0 {
			target.SubpartitionCount = DefaultSubpartitionCount(state.RowCount)
		}
	}
	if target.ParallelDegree == 0 {
		target.ParallelDegree = 4
	}

	if cfg.MigrationSettings.LobTablespaceCount == 0 {
		cfg.MigrationSettings.LobTablespaceCount = 4
	}
}
