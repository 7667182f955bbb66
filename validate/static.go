// Package validate checks repartitioning plans. The static pass needs
// nothing but the config itself; the dynamic pass confirms the plan
// against the live catalog. Validators only report; they never mutate
// the config, and a FAILED result excludes the table from generation
// without aborting sibling tables.
package validate

import (
	"fmt"
	"strings"

	"github.com/dbops/repart"
)

const (
	minSubpartitions = 2
	maxSubpartitions = 128
)

// isPowerOfTwo reports whether n is a positive power of two.
func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// isDateType reports whether a data type can key a time range partition.
func isDateType(dataType string) bool {
	return dataType == "DATE" || strings.HasPrefix(dataType, "TIMESTAMP")
}

// isHashableType reports whether a data type can key a hash
// subpartition: numeric, or a fixed-length identifier. Types carry
// their precision, e.g. NUMBER(10), so this matches on prefix.
func isHashableType(dataType string) bool {
	for _, prefix := range []string{"NUMBER", "INTEGER", "FLOAT", "BINARY_FLOAT", "BINARY_DOUBLE", "CHAR"} {
		if strings.HasPrefix(dataType, prefix) {
			return true
		}
	}
	return false
}

func failed(cfg repart.TableConfig, format string, args ...any) repart.ValidationResult {
	return repart.ValidationResult{
		Status:   repart.StatusFailed,
		Message:  fmt.Sprintf(format, args...),
		TableRef: cfg.QualifiedName(),
	}
}

// Static checks the schema shape of a plan: required fields, enum
// values, the power-of-two subpartition count, and that the configured
// columns exist in the discovered snapshot with compatible types. It
// runs with no external dependency and fails fast on malformed plans.
func Static(cfg repart.TableConfig) []repart.ValidationResult {
	var results []repart.ValidationResult
	target := cfg.TargetConfiguration

	if cfg.Owner == "" || cfg.TableName == "" {
		results = append(results, failed(cfg, "owner and table_name are required"))
	}

	switch target.PartitionType {
	case repart.PartitionRange, repart.PartitionInterval:
	default:
		results = append(results, failed(cfg, "target partition type %q is not supported; expected RANGE or INTERVAL", target.PartitionType))
	}

	if target.PartitionColumn == "" {
		results = append(results, failed(cfg, "partition_column is required"))
	} else if col, ok := cfg.CurrentState.Column(target.PartitionColumn); !ok {
		results = append(results, failed(cfg, "partition column %s not present in discovered columns", target.PartitionColumn))
	} else if !isDateType(col.DataType) {
		results = append(results, failed(cfg, "partition column %s has type %s; expected DATE or TIMESTAMP", col.Name, col.DataType))
	}

	if target.PartitionType == repart.PartitionInterval {
		if !target.IntervalType.Valid() {
			results = append(results, failed(cfg, "interval_type %q is not one of HOUR, DAY, WEEK, MONTH", target.IntervalType))
		}
		if target.IntervalValue < 1 {
			results = append(results, failed(cfg, "interval_value must be at least 1 (got %d)", target.IntervalValue))
		}
	}

	switch target.SubpartitionType {
	case repart.SubpartitionNone, "":
	case repart.SubpartitionHash:
		if !isPowerOfTwo(target.SubpartitionCount) ||
			target.SubpartitionCount < minSubpartitions ||
			target.SubpartitionCount > maxSubpartitions {
			results = append(results, failed(cfg, "subpartition_count must be a power of two in [%d, %d] (got %d)",
				minSubpartitions, maxSubpartitions, target.SubpartitionCount))
		}
		if target.SubpartitionColumn == "" {
			results = append(results, failed(cfg, "subpartition_column is required for HASH subpartitioning"))
		} else if col, ok := cfg.CurrentState.Column(target.SubpartitionColumn); !ok {
			results = append(results, failed(cfg, "subpartition column %s not present in discovered columns", target.SubpartitionColumn))
		} else if !isHashableType(col.DataType) {
			results = append(results, failed(cfg, "subpartition column %s has type %s; expected numeric or fixed-length identifier", col.Name, col.DataType))
		}
	default:
		results = append(results, failed(cfg, "subpartition_type %q is not one of NONE, HASH", target.SubpartitionType))
	}

	if len(results) == 0 {
		results = append(results, repart.ValidationResult{
			Status:   repart.StatusPassed,
			Message:  "static validation passed",
			TableRef: cfg.QualifiedName(),
		})
	}

	return results
}

// Passed reports whether a result set contains no FAILED or ERROR entry.
func Passed(results []repart.ValidationResult) bool {
	for _, r := range results {
		if r.Status == repart.StatusFailed || r.Status == repart.StatusError {
			return false
		}
	}
	return true
}
