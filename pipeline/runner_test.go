package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dbops/repart"
	"github.com/dbops/repart/catalog"
	"github.com/dbops/repart/store"
	"github.com/dbops/repart/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableConfig(name string) repart.TableConfig {
	return repart.TableConfig{
		Enabled:   true,
		Owner:     "HR",
		TableName: name,
		CurrentState: repart.CurrentState{
			Columns: []repart.ColumnInfo{
				{Name: "EMPLOYEE_ID", DataType: "NUMBER(10)"},
				{Name: "HIRE_DATE", DataType: "DATE"},
			},
			RowCount: 5000,
		},
		TargetConfiguration: repart.TargetConfiguration{
			PartitionType:      repart.PartitionInterval,
			PartitionColumn:    "HIRE_DATE",
			IntervalType:       repart.IntervalDay,
			IntervalValue:      1,
			SubpartitionType:   repart.SubpartitionHash,
			SubpartitionColumn: "EMPLOYEE_ID",
			SubpartitionCount:  4,
		},
		MigrationSettings: repart.MigrationSettings{MigrateData: true},
	}
}

func document(tables ...repart.TableConfig) *repart.Document {
	return &repart.Document{
		Metadata: repart.DocumentMetadata{Schema: "HR"},
		Tables:   tables,
	}
}

func liveMock() *catalog.Mock {
	mock := catalog.NewMock()
	mock.ColumnsFunc = func(ctx context.Context, owner, table string) ([]repart.ColumnInfo, error) {
		return []repart.ColumnInfo{
			{Name: "EMPLOYEE_ID", DataType: "NUMBER(10)"},
			{Name: "HIRE_DATE", DataType: "DATE"},
		}, nil
	}
	return mock
}

func TestRun_GeneratesArtifacts(t *testing.T) {
	dir := t.TempDir()
	r := New(Config{Catalog: liveMock(), OutputDir: dir})

	report, err := r.Run(context.Background(), document(tableConfig("EMPLOYEES")))
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "HR", report.Schema)
	assert.Equal(t, repart.StatusPassed, report.Status())
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, repart.StatusPassed, report.Outcomes[0].Status)

	tableDir := filepath.Join(dir, "HR.EMPLOYEES")
	entries, err := os.ReadDir(tableDir)
	require.NoError(t, err)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	assert.Contains(t, names, "000_orchestrator.sql")
	assert.Contains(t, names, "010_create_table.sql")
}

func TestRun_DisabledTableSkipped(t *testing.T) {
	cfg := tableConfig("EMPLOYEES")
	cfg.Enabled = false
	r := New(Config{Catalog: liveMock()})

	report, err := r.Run(context.Background(), document(cfg))
	require.NoError(t, err)

	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, repart.StatusInfo, report.Outcomes[0].Status)
	assert.Equal(t, repart.StatusPassed, report.Status())
}

func TestRun_FailedTableNeverBlocksSiblings(t *testing.T) {
	good := tableConfig("EMPLOYEES")
	bad := tableConfig("ORDERS")
	bad.TargetConfiguration.SubpartitionCount = 5 // not a power of two

	r := New(Config{Catalog: liveMock(), Concurrency: 1})

	report, err := r.Run(context.Background(), document(good, bad))
	require.NoError(t, err)

	require.Len(t, report.Outcomes, 2)
	assert.Equal(t, repart.StatusPassed, report.Outcomes[0].Status)
	assert.Equal(t, repart.StatusFailed, report.Outcomes[1].Status)
	assert.Equal(t, repart.StatusFailed, report.Status())
}

func TestRun_GenerationErrorRecorded(t *testing.T) {
	cfg := tableConfig("EMPLOYEES")
	cfg.MigrationSettings.EnableDeltaLoad = true // delta column missing

	r := New(Config{Catalog: liveMock()})

	report, err := r.Run(context.Background(), document(cfg))
	require.NoError(t, err)

	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, repart.StatusError, report.Outcomes[0].Status)
	assert.Contains(t, report.Outcomes[0].Err, "delta_column")
}

func TestRun_OfflineSkipsDynamicValidation(t *testing.T) {
	r := New(Config{}) // no catalog

	report, err := r.Run(context.Background(), document(tableConfig("EMPLOYEES")))
	require.NoError(t, err)

	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, repart.StatusPassed, report.Outcomes[0].Status)
}

func TestRun_PersistsReport(t *testing.T) {
	history := memory.New()
	r := New(Config{Catalog: liveMock(), Store: history})

	report, err := r.Run(context.Background(), document(tableConfig("EMPLOYEES")))
	require.NoError(t, err)

	saved, err := history.GetRun(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.ID, saved.ID)
	assert.Len(t, saved.Outcomes, 1)
}

func TestRun_StoreFailureNeverFailsRun(t *testing.T) {
	mockStore := store.NewMockRunStore()
	mockStore.SaveRunFunc = func(ctx context.Context, report repart.RunReport) error {
		return assert.AnError
	}
	r := New(Config{Catalog: liveMock(), Store: mockStore})

	report, err := r.Run(context.Background(), document(tableConfig("EMPLOYEES")))

	require.NoError(t, err)
	assert.Equal(t, repart.StatusPassed, report.Status())
	assert.Len(t, mockStore.SaveRunCalls, 1)
}

func TestRun_NilDocument(t *testing.T) {
	r := New(Config{})

	_, err := r.Run(context.Background(), nil)

	assert.Error(t, err)
}
