package ddl

import (
	"fmt"
	"strings"
	"time"

	"github.com/dbops/repart"
)

// Phase names. Artifact sequence numbers follow the same order.
const (
	PhaseCreateTable        = "create_table"
	PhaseDisableConstraints = "disable_constraints"
	PhaseBulkLoad           = "initial_bulk_load"
	PhaseIndexRebuild       = "index_rebuild"
	PhaseDeltaLoad          = "incremental_delta_load"
	PhaseEnableConstraints  = "enable_constraints"
	PhaseSwap               = "atomic_swap"
	PhaseGrants             = "restore_grants"
	PhaseDropOld            = "drop_old_table"
)

// Fixed physical attributes for rebuilt tables.
const (
	pctFree  = 10
	iniTrans = 4
	maxTrans = 255
)

// Compile turns a validated TableConfig into its ordered artifact set.
// A missing required input aborts generation for this table with a
// *repart.GenerationError; the caller continues with sibling tables.
func Compile(cfg repart.TableConfig) (repart.ArtifactSet, error) {
	set := repart.ArtifactSet{
		Owner:     cfg.Owner,
		TableName: cfg.TableName,
	}

	createBody, err := createTable(cfg)
	if err != nil {
		return repart.ArtifactSet{}, err
	}

	seq := 0
	add := func(name, body string) {
		seq += 10
		set.Artifacts = append(set.Artifacts, repart.Artifact{
			Sequence: seq,
			Name:     fmt.Sprintf("%03d_%s", seq, name),
			Body:     body,
		})
	}

	hasConstraints := len(cfg.CurrentState.Constraints) > 0

	add(PhaseCreateTable, createBody)
	if hasConstraints {
		add(PhaseDisableConstraints, constraintPhase(cfg, false))
	}
	add(PhaseBulkLoad, bulkLoad(cfg))
	add(PhaseIndexRebuild, indexRebuild(cfg))
	if cfg.MigrationSettings.EnableDeltaLoad {
		body, err := deltaLoad(cfg)
		if err != nil {
			return repart.ArtifactSet{}, err
		}
		add(PhaseDeltaLoad, body)
	}
	if hasConstraints {
		add(PhaseEnableConstraints, constraintPhase(cfg, true))
	}
	add(PhaseSwap, atomicSwap(cfg))
	add(PhaseGrants, restoreGrants(cfg))

	// The drop artifact exists for the operator but is never sequenced
	// by the orchestrator.
	add(PhaseDropOld, dropOld(cfg))

	set.Orchestrator = orchestrator(cfg, set.Artifacts)

	return set, nil
}

func generationError(cfg repart.TableConfig, phase, format string, args ...any) error {
	return &repart.GenerationError{
		Table:  cfg.QualifiedName(),
		Phase:  phase,
		Detail: fmt.Sprintf(format, args...),
	}
}

// createTable renders the CREATE TABLE statement for the rebuilt table.
// The physical clause order is owned by the ClauseList.
func createTable(cfg repart.TableConfig) (string, error) {
	state := cfg.CurrentState
	target := cfg.TargetConfiguration

	if len(state.Columns) == 0 {
		return "", generationError(cfg, PhaseCreateTable, "no columns discovered")
	}
	if target.PartitionColumn == "" {
		return "", generationError(cfg, PhaseCreateTable, "partition column is not set")
	}

	var clauses ClauseList
	mustAdd := func(kind ClauseKind, text string) {
		// Each kind is added exactly once below; a duplicate is a bug.
		if err := clauses.Add(kind, text); err != nil {
			panic(err)
		}
	}

	mustAdd(KindCompress, "COMPRESS")
	if target.Tablespace != "" {
		mustAdd(KindTablespace, fmt.Sprintf("TABLESPACE %s", target.Tablespace))
	}
	mustAdd(KindPctfree, fmt.Sprintf("PCTFREE %d", pctFree))
	mustAdd(KindInitrans, fmt.Sprintf("INITRANS %d", iniTrans))
	mustAdd(KindMaxtrans, fmt.Sprintf("MAXTRANS %d", maxTrans))
	mustAdd(KindStorage, "STORAGE (INITIAL 64K NEXT 1M BUFFER_POOL DEFAULT)")
	mustAdd(KindPartitionByRange, fmt.Sprintf("PARTITION BY RANGE (%s)", target.PartitionColumn))

	if target.PartitionType == repart.PartitionInterval {
		expr, err := intervalExpr(cfg)
		if err != nil {
			return "", err
		}
		mustAdd(KindInterval, fmt.Sprintf("INTERVAL (%s)", expr))
	}

	if target.SubpartitionType == repart.SubpartitionHash {
		if target.SubpartitionColumn == "" {
			return "", generationError(cfg, PhaseCreateTable, "subpartition column is not set")
		}
		if target.SubpartitionCount < 1 {
			return "", generationError(cfg, PhaseCreateTable, "subpartition count is not set")
		}
		mustAdd(KindSubpartitionByHash, fmt.Sprintf("SUBPARTITION BY HASH (%s)", target.SubpartitionColumn))

		// A table with LOB storage gets a template distributing each
		// LOB's segments; otherwise the simple count form. Never both.
		if len(state.LobStorage) > 0 {
			lobTablespaces := cfg.MigrationSettings.LobTablespaceCount
			if lobTablespaces < 1 {
				lobTablespaces = 4
			}
			mustAdd(KindSubpartitionSpec, subpartitionTemplate(state.LobStorage, target.SubpartitionCount, lobTablespaces))
		} else {
			mustAdd(KindSubpartitionSpec, fmt.Sprintf("SUBPARTITIONS %d", target.SubpartitionCount))
		}
	}

	mustAdd(KindInitialPartition, fmt.Sprintf("(PARTITION P_INITIAL VALUES LESS THAN (%s))", initialBoundary(cfg)))
	mustAdd(KindRowMovement, "ENABLE ROW MOVEMENT")

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s.%s (\n", cfg.Owner, cfg.NewName())
	for i, col := range state.Columns {
		b.WriteString("  " + col.Name + " " + col.DataType)
		if !col.Nullable {
			b.WriteString(" NOT NULL")
		}
		if i < len(state.Columns)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(")\n")
	b.WriteString(clauses.Render())
	b.WriteString(";\n")

	return b.String(), nil
}

// intervalExpr renders the INTERVAL argument for the configured width.
func intervalExpr(cfg repart.TableConfig) (string, error) {
	target := cfg.TargetConfiguration
	value := target.IntervalValue
	if value < 1 {
		value = 1
	}

	switch target.IntervalType {
	case repart.IntervalHour:
		return fmt.Sprintf("NUMTODSINTERVAL(%d, 'HOUR')", value), nil
	case repart.IntervalDay:
		return fmt.Sprintf("NUMTODSINTERVAL(%d, 'DAY')", value), nil
	case repart.IntervalWeek:
		return fmt.Sprintf("NUMTODSINTERVAL(%d, 'DAY')", 7*value), nil
	case repart.IntervalMonth:
		return fmt.Sprintf("NUMTOYMINTERVAL(%d, 'MONTH')", value), nil
	}
	return "", generationError(cfg, PhaseCreateTable, "interval type %q is not valid", target.IntervalType)
}

// initialBoundary anchors the first range partition: the first of the
// month the oldest discovered row falls in, or a fixed epoch when the
// data range is unknown.
func initialBoundary(cfg repart.TableConfig) string {
	anchor := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	if min := cfg.CurrentState.DataMin; !min.IsZero() {
		anchor = time.Date(min.Year(), min.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return fmt.Sprintf("TO_DATE('%s', 'YYYY-MM-DD')", anchor.Format("2006-01-02"))
}

// constraintPhase renders the disable or enable statements. Disabling
// goes R, C, U, P so nothing is disabled while a dependent constraint
// still references it; enabling is the exact reverse.
func constraintPhase(cfg repart.TableConfig, enable bool) string {
	var ordered []repart.ConstraintInfo
	verb := "DISABLE"
	if enable {
		ordered = SortForEnable(cfg.CurrentState.Constraints)
		verb = "ENABLE"
	} else {
		ordered = SortForDisable(cfg.CurrentState.Constraints)
	}

	var b strings.Builder
	for _, con := range ordered {
		fmt.Fprintf(&b, "ALTER TABLE %s.%s %s CONSTRAINT %s;\n", cfg.Owner, cfg.TableName, verb, con.Name)
	}
	return b.String()
}

func parallelDegree(cfg repart.TableConfig) int {
	if d := cfg.TargetConfiguration.ParallelDegree; d > 0 {
		return d
	}
	return 1
}

func bulkLoad(cfg repart.TableConfig) string {
	return fmt.Sprintf(`ALTER SESSION ENABLE PARALLEL DML;

INSERT /*+ APPEND PARALLEL(%d) */ INTO %s.%s
SELECT * FROM %s.%s;

COMMIT;
`, parallelDegree(cfg), cfg.Owner, cfg.NewName(), cfg.Owner, cfg.TableName)
}

// indexRebuild recreates the table's indexes on the rebuilt table under
// interim names; the swap phase renames them back. Non-unique indexes
// become LOCAL to follow the new partitioning.
func indexRebuild(cfg repart.TableConfig) string {
	var b strings.Builder
	for _, idx := range cfg.CurrentState.Indexes {
		unique := ""
		locality := " LOCAL"
		if idx.Unique {
			unique = "UNIQUE "
			locality = ""
		}
		tablespace := ""
		if idx.Tablespace != "" {
			tablespace = fmt.Sprintf(" TABLESPACE %s", idx.Tablespace)
		}
		fmt.Fprintf(&b, "CREATE %sINDEX %s.%s%s ON %s.%s (%s)%s%s PARALLEL %d;\n",
			unique,
			cfg.Owner, idx.Name, cfg.MigrationSettings.NewSuffixOrDefault(),
			cfg.Owner, cfg.NewName(),
			strings.Join(idx.Columns, ", "),
			locality,
			tablespace,
			parallelDegree(cfg),
		)
	}
	if b.Len() == 0 {
		b.WriteString("-- no indexes to rebuild\n")
	}
	return b.String()
}

func deltaLoad(cfg repart.TableConfig) (string, error) {
	column := cfg.MigrationSettings.DeltaColumn
	if column == "" {
		return "", generationError(cfg, PhaseDeltaLoad, "delta_column is required when enable_delta_load is set")
	}

	return fmt.Sprintf(`INSERT /*+ APPEND PARALLEL(%d) */ INTO %s.%s
SELECT * FROM %s.%s src
WHERE src.%s > (SELECT MAX(%s) FROM %s.%s);

COMMIT;
`, parallelDegree(cfg), cfg.Owner, cfg.NewName(),
		cfg.Owner, cfg.TableName,
		column, column, cfg.Owner, cfg.NewName()), nil
}

// atomicSwap issues the two renames as two independent statements; DDL
// auto-commits, so no transaction spans them. If the second rename
// fails the table is left in the SwapIncomplete state, which the swap
// classifier detects on the next run.
func atomicSwap(cfg repart.TableConfig) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ALTER TABLE %s.%s RENAME TO %s;\n", cfg.Owner, cfg.TableName, cfg.BackupName())
	fmt.Fprintf(&b, "ALTER TABLE %s.%s RENAME TO %s;\n", cfg.Owner, cfg.NewName(), cfg.TableName)

	suffix := cfg.MigrationSettings.NewSuffixOrDefault()
	for _, idx := range cfg.CurrentState.Indexes {
		fmt.Fprintf(&b, "ALTER INDEX %s.%s%s RENAME TO %s;\n", cfg.Owner, idx.Name, suffix, idx.Name)
	}
	return b.String()
}

// restoreGrants re-issues every grant recorded against the backup table
// onto the swapped-in table.
func restoreGrants(cfg repart.TableConfig) string {
	return fmt.Sprintf(`BEGIN
  FOR g IN (
    SELECT grantee, privilege, grantable
    FROM dba_tab_privs
    WHERE owner = '%s' AND table_name = '%s'
  ) LOOP
    EXECUTE IMMEDIATE 'GRANT ' || g.privilege || ' ON %s.%s TO ' || g.grantee ||
      CASE WHEN g.grantable = 'YES' THEN ' WITH GRANT OPTION' ELSE '' END;
  END LOOP;
END;
/
`, cfg.Owner, cfg.BackupName(), cfg.Owner, cfg.TableName)
}

func dropOld(cfg repart.TableConfig) string {
	return fmt.Sprintf(`-- Run manually once the retention window for %s.%s has elapsed.
DROP TABLE %s.%s PURGE;
`, cfg.Owner, cfg.BackupName(), cfg.Owner, cfg.BackupName())
}

// orchestrator sequences the phase artifacts conditionally on the
// table's migration settings. The load and constraint phases run only
// when data is migrated; the drop-old artifact is never sequenced.
func orchestrator(cfg repart.TableConfig, artifacts []repart.Artifact) repart.Artifact {
	migrate := cfg.MigrationSettings.MigrateData

	var b strings.Builder
	fmt.Fprintf(&b, "-- Repartitioning run for %s\n", cfg.QualifiedName())
	b.WriteString("-- Stop on the first failure; rerun after resolving it.\n")
	b.WriteString("WHENEVER SQLERROR EXIT FAILURE\n\n")

	for _, a := range artifacts {
		phase := a.Name[4:]
		switch phase {
		case PhaseDropOld:
			continue
		case PhaseDisableConstraints, PhaseBulkLoad, PhaseDeltaLoad, PhaseEnableConstraints:
			if !migrate {
				continue
			}
		}
		fmt.Fprintf(&b, "@@%s.sql\n", a.Name)
	}

	return repart.Artifact{
		Sequence: 0,
		Name:     "000_orchestrator",
		Body:     b.String(),
	}
}
