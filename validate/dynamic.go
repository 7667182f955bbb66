package validate

import (
	"context"
	"errors"
	"fmt"

	"github.com/dbops/repart"
	"github.com/dbops/repart/catalog"
)

// headroomFactor is the multiple of the current table size the target
// tablespace must have free.
const headroomFactor = 2

// Dynamic confirms a plan against the live catalog: configured columns
// exist with compatible types, the target tablespace exists, and the
// projected space headroom is at least twice the current table size.
// Callers bound the work with a per-table context deadline; when the
// catalog cannot answer in time the pass degrades to a WARNING instead
// of blocking the batch.
func Dynamic(ctx context.Context, cfg repart.TableConfig, cat catalog.Catalog) []repart.ValidationResult {
	var results []repart.ValidationResult
	target := cfg.TargetConfiguration

	columns, err := cat.Columns(ctx, cfg.Owner, cfg.TableName)
	if err != nil {
		if errors.Is(err, repart.ErrTableNotFound) {
			return append(results, failed(cfg, "table not found in catalog"))
		}
		return append(results, unreachable(cfg, err))
	}

	byName := make(map[string]repart.ColumnInfo, len(columns))
	for _, col := range columns {
		byName[col.Name] = col
	}

	if col, ok := byName[target.PartitionColumn]; !ok {
		results = append(results, failed(cfg, "partition column %s does not exist in catalog", target.PartitionColumn))
	} else if !isDateType(col.DataType) {
		results = append(results, failed(cfg, "partition column %s has catalog type %s; expected DATE or TIMESTAMP", col.Name, col.DataType))
	}

	if target.SubpartitionType == repart.SubpartitionHash {
		if col, ok := byName[target.SubpartitionColumn]; !ok {
			results = append(results, failed(cfg, "subpartition column %s does not exist in catalog", target.SubpartitionColumn))
		} else if !isHashableType(col.DataType) {
			results = append(results, failed(cfg, "subpartition column %s has catalog type %s; expected numeric or fixed-length identifier", col.Name, col.DataType))
		}
	}

	if target.Tablespace != "" {
		free, err := cat.TablespaceFreeBytes(ctx, target.Tablespace)
		switch {
		case errors.Is(err, repart.ErrTablespaceNotFound):
			results = append(results, failed(cfg, "target tablespace %s does not exist", target.Tablespace))
		case err != nil:
			results = append(results, unreachable(cfg, err))
		default:
			needed := headroomFactor * cfg.CurrentState.SizeBytes
			if free < needed {
				results = append(results, failed(cfg, "tablespace %s has %d bytes free; need %d (%dx current size)",
					target.Tablespace, free, needed, headroomFactor))
			}
		}
	}

	if len(results) == 0 {
		results = append(results, repart.ValidationResult{
			Status:   repart.StatusPassed,
			Message:  "dynamic validation passed",
			TableRef: cfg.QualifiedName(),
		})
	}

	return results
}

// unreachable records a catalog connectivity problem as a WARNING so the
// rest of the batch keeps moving.
func unreachable(cfg repart.TableConfig, err error) repart.ValidationResult {
	return repart.ValidationResult{
		Status:   repart.StatusWarning,
		Message:  fmt.Sprintf("catalog unreachable: %v", err),
		TableRef: cfg.QualifiedName(),
	}
}
