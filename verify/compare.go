package verify

import (
	"context"

	"github.com/dbops/repart"
	"github.com/dbops/repart/catalog"
)

// DefaultSampleSize is the number of rows CompareData samples when the
// caller passes zero.
const DefaultSampleSize = 1000

// skewFactor is the largest-to-average partition row ratio tolerated
// before the distribution counts as skewed.
const skewFactor = 2.0

// compareKey picks the stable ordering column the sample is keyed on:
// a single-column unique index when one exists, else the hash column,
// else the partition column.
func compareKey(cfg repart.TableConfig) string {
	for _, idx := range cfg.CurrentState.Indexes {
		if idx.Unique && len(idx.Columns) == 1 {
			return idx.Columns[0]
		}
	}
	if col := cfg.TargetConfiguration.SubpartitionColumn; col != "" {
		return col
	}
	return cfg.TargetConfiguration.PartitionColumn
}

// CompareData compares the source table against the rebuilt one: total
// row counts first, then a deterministic sample of field values, then
// the partition column's MIN/MAX, and finally the per-partition row
// distribution of the rebuilt table for skew.
func CompareData(ctx context.Context, cfg repart.TableConfig, cat catalog.Catalog, sampleSize int) []repart.ValidationResult {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}

	var results []repart.ValidationResult
	source := cfg.TableName
	rebuilt := cfg.NewName()

	srcCount, err := cat.RowCount(ctx, cfg.Owner, source)
	if err != nil {
		return append(results, unreachable(cfg, "source row count", err))
	}
	newCount, err := cat.RowCount(ctx, cfg.Owner, rebuilt)
	if err != nil {
		return append(results, unreachable(cfg, "rebuilt row count", err))
	}
	if srcCount != newCount {
		results = append(results, result(cfg, repart.StatusFailed,
			"row counts differ: source %d, rebuilt %d", srcCount, newCount))
	} else {
		results = append(results, result(cfg, repart.StatusPassed, "row counts match (%d)", srcCount))
	}

	key := compareKey(cfg)
	if key == "" {
		results = append(results, result(cfg, repart.StatusWarning, "no stable ordering column; sample comparison skipped"))
	} else {
		results = append(results, compareSamples(ctx, cfg, cat, key, sampleSize))
	}

	results = append(results, compareRange(ctx, cfg, cat))
	results = append(results, checkSkew(ctx, cfg, cat))

	return results
}

// compareSamples draws the same deterministic sample from both tables
// and compares field values row by row.
func compareSamples(ctx context.Context, cfg repart.TableConfig, cat catalog.Catalog, key string, sampleSize int) repart.ValidationResult {
	srcRows, err := cat.SampleRows(ctx, cfg.Owner, cfg.TableName, key, sampleSize)
	if err != nil {
		return unreachable(cfg, "source sample", err)
	}
	newRows, err := cat.SampleRows(ctx, cfg.Owner, cfg.NewName(), key, sampleSize)
	if err != nil {
		return unreachable(cfg, "rebuilt sample", err)
	}

	if len(srcRows) != len(newRows) {
		return result(cfg, repart.StatusFailed,
			"sample sizes differ: source %d rows, rebuilt %d", len(srcRows), len(newRows))
	}

	mismatches := 0
	for i := range srcRows {
		if !rowsEqual(srcRows[i], newRows[i]) {
			mismatches++
		}
	}
	if mismatches > 0 {
		return result(cfg, repart.StatusFailed,
			"%d of %d sampled rows differ (keyed on %s)", mismatches, len(srcRows), key)
	}
	return result(cfg, repart.StatusPassed, "%d sampled rows match (keyed on %s)", len(srcRows), key)
}

func rowsEqual(a, b catalog.Row) bool {
	if len(a) != len(b) {
		return false
	}
	for col, val := range a {
		other, ok := b[col]
		if !ok || other != val {
			return false
		}
	}
	return true
}

// compareRange compares MIN/MAX of the partition column between the
// source and rebuilt tables.
func compareRange(ctx context.Context, cfg repart.TableConfig, cat catalog.Catalog) repart.ValidationResult {
	column := cfg.TargetConfiguration.PartitionColumn
	if column == "" {
		return result(cfg, repart.StatusWarning, "no partition column; range comparison skipped")
	}

	srcMin, srcMax, err := cat.DateRange(ctx, cfg.Owner, cfg.TableName, column)
	if err != nil {
		return unreachable(cfg, "source range", err)
	}
	newMin, newMax, err := cat.DateRange(ctx, cfg.Owner, cfg.NewName(), column)
	if err != nil {
		return unreachable(cfg, "rebuilt range", err)
	}

	if !srcMin.Equal(newMin) || !srcMax.Equal(newMax) {
		return result(cfg, repart.StatusFailed,
			"%s range differs: source [%s, %s], rebuilt [%s, %s]",
			column, srcMin, srcMax, newMin, newMax)
	}
	return result(cfg, repart.StatusPassed, "%s range matches [%s, %s]", column, srcMin, srcMax)
}

// checkSkew inspects the rebuilt table's per-partition row counts and
// flags a distribution whose largest partition exceeds twice the average.
func checkSkew(ctx context.Context, cfg repart.TableConfig, cat catalog.Catalog) repart.ValidationResult {
	counts, err := cat.PartitionRowCounts(ctx, cfg.Owner, cfg.NewName())
	if err != nil {
		return unreachable(cfg, "partition distribution", err)
	}
	if len(counts) == 0 {
		return result(cfg, repart.StatusInfo, "no partitions materialized yet")
	}

	var total, largest int64
	var largestName string
	for name, count := range counts {
		total += count
		if count > largest {
			largest = count
			largestName = name
		}
	}
	average := float64(total) / float64(len(counts))
	if average > 0 && float64(largest) > skewFactor*average {
		return result(cfg, repart.StatusWarning,
			"partition %s holds %d rows against an average of %.0f; distribution is skewed",
			largestName, largest, average)
	}
	return result(cfg, repart.StatusInfo,
		"%d partitions, %d rows total, largest partition %d rows", len(counts), total, largest)
}
