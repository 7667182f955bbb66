package verify

import (
	"context"

	"github.com/dbops/repart"
	"github.com/dbops/repart/catalog"
)

// PostCheck runs the structural acceptance checks after the swap: the
// table exists with the declared partitioning, its row count covers the
// pre-migration count, and every required index is present.
func PostCheck(ctx context.Context, cfg repart.TableConfig, cat catalog.Catalog) []repart.ValidationResult {
	var results []repart.ValidationResult
	target := cfg.TargetConfiguration

	exists, err := cat.TableExists(ctx, cfg.Owner, cfg.TableName)
	switch {
	case err != nil:
		return append(results, unreachable(cfg, "table existence", err))
	case !exists:
		return append(results, result(cfg, repart.StatusFailed, "migrated table does not exist"))
	}

	info, err := cat.PartitionInfo(ctx, cfg.Owner, cfg.TableName)
	switch {
	case err != nil:
		results = append(results, unreachable(cfg, "partition structure", err))
	case !info.Partitioned:
		results = append(results, result(cfg, repart.StatusFailed, "migrated table is not partitioned"))
	case info.Type != target.PartitionType:
		results = append(results, result(cfg, repart.StatusFailed,
			"partition type is %s; expected %s", info.Type, target.PartitionType))
	case target.SubpartitionType == repart.SubpartitionHash && info.SubpartitionType != repart.SubpartitionHash:
		results = append(results, result(cfg, repart.StatusFailed, "hash subpartitioning is missing"))
	case target.SubpartitionType == repart.SubpartitionHash && info.SubpartitionCount != target.SubpartitionCount:
		results = append(results, result(cfg, repart.StatusFailed,
			"subpartition count is %d; expected %d", info.SubpartitionCount, target.SubpartitionCount))
	default:
		results = append(results, result(cfg, repart.StatusPassed, "partition structure matches the plan"))
	}

	count, err := cat.RowCount(ctx, cfg.Owner, cfg.TableName)
	expected := cfg.CurrentState.RowCount
	switch {
	case err != nil:
		results = append(results, unreachable(cfg, "row count", err))
	case cfg.MigrationSettings.EnableDeltaLoad && count < expected:
		results = append(results, result(cfg, repart.StatusFailed,
			"row count is %d; expected at least %d", count, expected))
	case !cfg.MigrationSettings.EnableDeltaLoad && count != expected:
		results = append(results, result(cfg, repart.StatusFailed,
			"row count is %d; expected %d", count, expected))
	default:
		results = append(results, result(cfg, repart.StatusPassed, "row count covers the pre-migration count (%d)", count))
	}

	indexes, err := cat.Indexes(ctx, cfg.Owner, cfg.TableName)
	if err != nil {
		results = append(results, unreachable(cfg, "indexes", err))
		return results
	}
	present := make(map[string]bool, len(indexes))
	for _, idx := range indexes {
		present[idx.Name] = true
	}
	var missing []string
	for _, idx := range cfg.CurrentState.Indexes {
		if !present[idx.Name] {
			missing = append(missing, idx.Name)
		}
	}
	if len(missing) > 0 {
		results = append(results, result(cfg, repart.StatusFailed, "required indexes missing: %v", missing))
	} else {
		results = append(results, result(cfg, repart.StatusPassed, "all required indexes exist"))
	}

	return results
}
