// Package verify runs the migration readiness and acceptance checks.
// Every check reports a ValidationResult and nothing raises: whether a
// WARNING is fatal is the operator's call, not this package's.
package verify

import (
	"context"
	"fmt"

	"github.com/dbops/repart"
	"github.com/dbops/repart/catalog"
)

// headroomFactor is the multiple of the current table size the target
// tablespace must have free before migration starts.
const headroomFactor = 2

func result(cfg repart.TableConfig, status repart.ValidationStatus, format string, args ...any) repart.ValidationResult {
	return repart.ValidationResult{
		Status:   status,
		Message:  fmt.Sprintf(format, args...),
		TableRef: cfg.QualifiedName(),
	}
}

func unreachable(cfg repart.TableConfig, check string, err error) repart.ValidationResult {
	return result(cfg, repart.StatusWarning, "%s: catalog unreachable: %v", check, err)
}

// PreCheck runs the readiness checks before any DDL executes: the table
// is reachable, nothing holds it open, the declared columns still match
// the live catalog, the target tablespace has headroom, and no enabled
// foreign keys elsewhere would break at swap time.
func PreCheck(ctx context.Context, cfg repart.TableConfig, cat catalog.Catalog) []repart.ValidationResult {
	var results []repart.ValidationResult

	exists, err := cat.TableExists(ctx, cfg.Owner, cfg.TableName)
	switch {
	case err != nil:
		return append(results, unreachable(cfg, "table reachability", err))
	case !exists:
		return append(results, result(cfg, repart.StatusFailed, "table does not exist"))
	default:
		results = append(results, result(cfg, repart.StatusPassed, "table is reachable"))
	}

	sessions, err := cat.ActiveSessionCount(ctx, cfg.Owner, cfg.TableName)
	switch {
	case err != nil:
		results = append(results, unreachable(cfg, "active sessions", err))
	case sessions > 0:
		results = append(results, result(cfg, repart.StatusWarning, "%d active session(s) hold the table; DDL may block", sessions))
	default:
		results = append(results, result(cfg, repart.StatusPassed, "no active sessions hold the table"))
	}

	results = append(results, checkColumns(ctx, cfg, cat))

	if ts := cfg.TargetConfiguration.Tablespace; ts != "" {
		free, err := cat.TablespaceFreeBytes(ctx, ts)
		needed := headroomFactor * cfg.CurrentState.SizeBytes
		switch {
		case err != nil:
			results = append(results, unreachable(cfg, "tablespace headroom", err))
		case free < needed:
			results = append(results, result(cfg, repart.StatusFailed,
				"tablespace %s has %d bytes free; need %d", ts, free, needed))
		default:
			results = append(results, result(cfg, repart.StatusPassed, "tablespace %s has sufficient headroom", ts))
		}
	}

	refs, err := cat.ReferencingConstraints(ctx, cfg.Owner, cfg.TableName)
	switch {
	case err != nil:
		results = append(results, unreachable(cfg, "foreign key dependents", err))
	case len(refs) > 0:
		names := make([]string, len(refs))
		for i, r := range refs {
			names[i] = r.Name
		}
		results = append(results, result(cfg, repart.StatusWarning,
			"%d enabled foreign key(s) reference this table and must be handled before the swap: %v", len(refs), names))
	default:
		results = append(results, result(cfg, repart.StatusPassed, "no foreign key dependents"))
	}

	return results
}

// checkColumns confirms the declared column snapshot still matches the
// live catalog. A drifted table means the plan was built from stale
// metadata and must be rediscovered.
func checkColumns(ctx context.Context, cfg repart.TableConfig, cat catalog.Catalog) repart.ValidationResult {
	live, err := cat.Columns(ctx, cfg.Owner, cfg.TableName)
	if err != nil {
		return unreachable(cfg, "column match", err)
	}

	liveByName := make(map[string]repart.ColumnInfo, len(live))
	for _, col := range live {
		liveByName[col.Name] = col
	}

	var missing, changed []string
	for _, col := range cfg.CurrentState.Columns {
		liveCol, ok := liveByName[col.Name]
		if !ok {
			missing = append(missing, col.Name)
			continue
		}
		if liveCol.DataType != col.DataType {
			changed = append(changed, fmt.Sprintf("%s (%s -> %s)", col.Name, col.DataType, liveCol.DataType))
		}
	}

	switch {
	case len(missing) > 0:
		return result(cfg, repart.StatusFailed, "declared columns missing from catalog: %v", missing)
	case len(changed) > 0:
		return result(cfg, repart.StatusFailed, "declared column types drifted: %v", changed)
	case len(live) != len(cfg.CurrentState.Columns):
		return result(cfg, repart.StatusWarning,
			"catalog has %d columns, plan declares %d; rediscover before migrating", len(live), len(cfg.CurrentState.Columns))
	default:
		return result(cfg, repart.StatusPassed, "declared columns match the catalog")
	}
}
