package ddl

import (
	"strings"
	"testing"
	"time"

	"github.com/dbops/repart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func employeesConfig() repart.TableConfig {
	return repart.TableConfig{
		Enabled:   true,
		Owner:     "HR",
		TableName: "EMPLOYEES",
		CurrentState: repart.CurrentState{
			Columns: []repart.ColumnInfo{
				{Name: "EMPLOYEE_ID", DataType: "NUMBER(10)"},
				{Name: "LAST_NAME", DataType: "VARCHAR2(50)", Nullable: true},
				{Name: "HIRE_DATE", DataType: "DATE"},
			},
			Constraints: []repart.ConstraintInfo{
				{Name: "PK_EMPLOYEES", Type: repart.ConstraintPrimary, Status: "ENABLED"},
			},
			Indexes: []repart.IndexInfo{
				{Name: "IDX_EMP_HIRE", Columns: []string{"HIRE_DATE"}},
			},
			RowCount: 5000,
			DataMin:  time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC),
			DataMax:  time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
		},
		TargetConfiguration: repart.TargetConfiguration{
			PartitionType:      repart.PartitionInterval,
			PartitionColumn:    "HIRE_DATE",
			IntervalType:       repart.IntervalDay,
			IntervalValue:      1,
			SubpartitionType:   repart.SubpartitionHash,
			SubpartitionColumn: "EMPLOYEE_ID",
			SubpartitionCount:  4,
			Tablespace:         "USERS_NEW",
			ParallelDegree:     4,
		},
		MigrationSettings: repart.MigrationSettings{
			MigrateData: true,
		},
	}
}

// assertOrderedOnce checks that each needle appears exactly once and in
// the given order.
func assertOrderedOnce(t *testing.T, body string, needles ...string) {
	t.Helper()
	last := -1
	for _, needle := range needles {
		assert.Equal(t, 1, strings.Count(body, needle), "expected exactly one %q", needle)
		pos := strings.Index(body, needle)
		assert.Greater(t, pos, last, "%q out of order", needle)
		last = pos
	}
}

func TestCompile_CreateTable(t *testing.T) {
	set, err := Compile(employeesConfig())
	require.NoError(t, err)

	require.NotEmpty(t, set.Artifacts)
	create := set.Artifacts[0]
	assert.Equal(t, 10, create.Sequence)
	assert.Equal(t, "010_create_table", create.Name)

	t.Run("physical clauses in fixed order", func(t *testing.T) {
		assertOrderedOnce(t, create.Body,
			"CREATE TABLE HR.EMPLOYEES_NEW (",
			"COMPRESS",
			"TABLESPACE USERS_NEW",
			"PCTFREE 10",
			"INITRANS 4",
			"MAXTRANS 255",
			"STORAGE (INITIAL 64K NEXT 1M BUFFER_POOL DEFAULT)",
			"PARTITION BY RANGE (HIRE_DATE)",
			"INTERVAL (NUMTODSINTERVAL(1, 'DAY'))",
			"SUBPARTITION BY HASH (EMPLOYEE_ID)",
			"SUBPARTITIONS 4",
			"PARTITION P_INITIAL VALUES LESS THAN",
			"ENABLE ROW MOVEMENT",
		)
	})

	t.Run("no template without lob storage", func(t *testing.T) {
		assert.NotContains(t, create.Body, "SUBPARTITION TEMPLATE")
	})

	t.Run("initial boundary anchors at the oldest month", func(t *testing.T) {
		assert.Contains(t, create.Body, "TO_DATE('2024-06-01', 'YYYY-MM-DD')")
	})

	t.Run("column list has no trailing comma", func(t *testing.T) {
		assert.Contains(t, create.Body, "EMPLOYEE_ID NUMBER(10) NOT NULL,")
		assert.Contains(t, create.Body, "LAST_NAME VARCHAR2(50),")
		assert.Contains(t, create.Body, "HIRE_DATE DATE NOT NULL\n")
		assert.NotContains(t, create.Body, "NOT NULL,\n)")
	})
}

func TestCompile_LobTemplate(t *testing.T) {
	cfg := employeesConfig()
	cfg.CurrentState.LobStorage = []repart.LobInfo{
		{Column: "RESUME", SegmentBase: "LOB_EMP_RESUME", TablespaceBase: "LOB_TS"},
	}
	cfg.MigrationSettings.LobTablespaceCount = 2

	set, err := Compile(cfg)
	require.NoError(t, err)

	body := set.Artifacts[0].Body
	assert.Contains(t, body, "SUBPARTITION TEMPLATE (")
	assert.NotContains(t, body, "SUBPARTITIONS 4\n")

	// Four subpartitions distributed over two tablespaces.
	assert.Contains(t, body, "LOB (RESUME) STORE AS LOB_EMP_RESUME_0 (TABLESPACE LOB_TS01)")
	assert.Contains(t, body, "LOB (RESUME) STORE AS LOB_EMP_RESUME_1 (TABLESPACE LOB_TS02)")
	assert.Contains(t, body, "LOB (RESUME) STORE AS LOB_EMP_RESUME_2 (TABLESPACE LOB_TS01)")
	assert.Contains(t, body, "LOB (RESUME) STORE AS LOB_EMP_RESUME_3 (TABLESPACE LOB_TS02)")
}

func TestCompile_ArtifactSequence(t *testing.T) {
	set, err := Compile(employeesConfig())
	require.NoError(t, err)

	var names []string
	for i, a := range set.Artifacts {
		names = append(names, a.Name)
		assert.Equal(t, (i+1)*10, a.Sequence)
	}
	assert.Equal(t, []string{
		"010_create_table",
		"020_disable_constraints",
		"030_initial_bulk_load",
		"040_index_rebuild",
		"050_enable_constraints",
		"060_atomic_swap",
		"070_restore_grants",
		"080_drop_old_table",
	}, names)
}

func TestCompile_DeltaLoad(t *testing.T) {
	t.Run("delta phase appears when enabled", func(t *testing.T) {
		cfg := employeesConfig()
		cfg.MigrationSettings.EnableDeltaLoad = true
		cfg.MigrationSettings.DeltaColumn = "HIRE_DATE"

		set, err := Compile(cfg)
		require.NoError(t, err)

		var found bool
		for _, a := range set.Artifacts {
			if strings.HasSuffix(a.Name, PhaseDeltaLoad) {
				found = true
				assert.Contains(t, a.Body, "WHERE src.HIRE_DATE > (SELECT MAX(HIRE_DATE)")
			}
		}
		assert.True(t, found)
	})

	t.Run("missing delta column aborts the table", func(t *testing.T) {
		cfg := employeesConfig()
		cfg.MigrationSettings.EnableDeltaLoad = true

		_, err := Compile(cfg)

		var genErr *repart.GenerationError
		require.ErrorAs(t, err, &genErr)
		assert.Equal(t, "HR.EMPLOYEES", genErr.Table)
		assert.Equal(t, PhaseDeltaLoad, genErr.Phase)
	})
}

func TestCompile_MissingInputs(t *testing.T) {
	t.Run("no columns", func(t *testing.T) {
		cfg := employeesConfig()
		cfg.CurrentState.Columns = nil

		_, err := Compile(cfg)

		var genErr *repart.GenerationError
		require.ErrorAs(t, err, &genErr)
	})

	t.Run("no partition column", func(t *testing.T) {
		cfg := employeesConfig()
		cfg.TargetConfiguration.PartitionColumn = ""

		_, err := Compile(cfg)

		var genErr *repart.GenerationError
		require.ErrorAs(t, err, &genErr)
	})
}

func TestCompile_Swap(t *testing.T) {
	set, err := Compile(employeesConfig())
	require.NoError(t, err)

	var swap repart.Artifact
	for _, a := range set.Artifacts {
		if strings.HasSuffix(a.Name, PhaseSwap) {
			swap = a
		}
	}
	require.NotEmpty(t, swap.Body)

	assertOrderedOnce(t, swap.Body,
		"ALTER TABLE HR.EMPLOYEES RENAME TO EMPLOYEES_BK;",
		"ALTER TABLE HR.EMPLOYEES_NEW RENAME TO EMPLOYEES;",
		"ALTER INDEX HR.IDX_EMP_HIRE_NEW RENAME TO IDX_EMP_HIRE;",
	)
}

func TestCompile_IndexRebuild(t *testing.T) {
	cfg := employeesConfig()
	cfg.CurrentState.Indexes = []repart.IndexInfo{
		{Name: "IDX_EMP_HIRE", Columns: []string{"HIRE_DATE"}},
		{Name: "UQ_EMP_EMAIL", Columns: []string{"EMAIL"}, Unique: true, Tablespace: "IDX_TS"},
	}

	set, err := Compile(cfg)
	require.NoError(t, err)

	var rebuild repart.Artifact
	for _, a := range set.Artifacts {
		if strings.HasSuffix(a.Name, PhaseIndexRebuild) {
			rebuild = a
		}
	}
	require.NotEmpty(t, rebuild.Body)

	assert.Contains(t, rebuild.Body,
		"CREATE INDEX HR.IDX_EMP_HIRE_NEW ON HR.EMPLOYEES_NEW (HIRE_DATE) LOCAL PARALLEL 4;")
	assert.Contains(t, rebuild.Body,
		"CREATE UNIQUE INDEX HR.UQ_EMP_EMAIL_NEW ON HR.EMPLOYEES_NEW (EMAIL) TABLESPACE IDX_TS PARALLEL 4;")
}

func TestOrchestrator(t *testing.T) {
	t.Run("sequences every phase when migrating data", func(t *testing.T) {
		set, err := Compile(employeesConfig())
		require.NoError(t, err)

		orch := set.Orchestrator
		assert.Equal(t, "000_orchestrator", orch.Name)
		assert.Contains(t, orch.Body, "WHENEVER SQLERROR EXIT FAILURE")
		assertOrderedOnce(t, orch.Body,
			"@@010_create_table.sql",
			"@@020_disable_constraints.sql",
			"@@030_initial_bulk_load.sql",
			"@@040_index_rebuild.sql",
			"@@050_enable_constraints.sql",
			"@@060_atomic_swap.sql",
			"@@070_restore_grants.sql",
		)
	})

	t.Run("never sequences the drop", func(t *testing.T) {
		set, err := Compile(employeesConfig())
		require.NoError(t, err)

		assert.NotContains(t, set.Orchestrator.Body, "drop_old_table")
	})

	t.Run("skips load and constraint phases without data migration", func(t *testing.T) {
		cfg := employeesConfig()
		cfg.MigrationSettings.MigrateData = false

		set, err := Compile(cfg)
		require.NoError(t, err)

		body := set.Orchestrator.Body
		assert.Contains(t, body, "create_table.sql")
		assert.Contains(t, body, "atomic_swap.sql")
		assert.NotContains(t, body, "bulk_load")
		assert.NotContains(t, body, "disable_constraints")
		assert.NotContains(t, body, "enable_constraints")
	})
}

func TestIntervalExpr(t *testing.T) {
	tests := []struct {
		intervalType  repart.IntervalType
		intervalValue int
		want          string
	}{
		{repart.IntervalHour, 1, "NUMTODSINTERVAL(1, 'HOUR')"},
		{repart.IntervalDay, 1, "NUMTODSINTERVAL(1, 'DAY')"},
		{repart.IntervalWeek, 1, "NUMTODSINTERVAL(7, 'DAY')"},
		{repart.IntervalWeek, 2, "NUMTODSINTERVAL(14, 'DAY')"},
		{repart.IntervalMonth, 3, "NUMTOYMINTERVAL(3, 'MONTH')"},
	}

	for _, tt := range tests {
		t.Run(string(tt.intervalType), func(t *testing.T) {
			cfg := employeesConfig()
			cfg.TargetConfiguration.IntervalType = tt.intervalType
			cfg.TargetConfiguration.IntervalValue = tt.intervalValue

			expr, err := intervalExpr(cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, expr)
		})
	}

	t.Run("invalid interval type errors", func(t *testing.T) {
		cfg := employeesConfig()
		cfg.TargetConfiguration.IntervalType = "FORTNIGHT"

		_, err := intervalExpr(cfg)
		assert.Error(t, err)
	})
}
