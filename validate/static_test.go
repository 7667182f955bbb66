package validate

import (
	"fmt"
	"testing"

	"github.com/dbops/repart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() repart.TableConfig {
	return repart.TableConfig{
		Enabled:   true,
		Owner:     "HR",
		TableName: "EMPLOYEES",
		CurrentState: repart.CurrentState{
			Columns: []repart.ColumnInfo{
				{Name: "EMPLOYEE_ID", DataType: "NUMBER(10)"},
				{Name: "HIRE_DATE", DataType: "DATE"},
			},
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
	}
}

func TestStatic_ValidConfig(t *testing.T) {
	results := Static(validConfig())

	require.Len(t, results, 1)
	assert.Equal(t, repart.StatusPassed, results[0].Status)
	assert.True(t, Passed(results))
}

func TestStatic_SubpartitionCount(t *testing.T) {
	tests := []struct {
		count int
		valid bool
	}{
		{1, false},
		{2, true},
		{3, false},
		{4, true},
		{6, false},
		{64, true},
		{128, true},
		{256, false},
		{0, false},
		{-4, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("count %d", tt.count), func(t *testing.T) {
			cfg := validConfig()
			cfg.TargetConfiguration.SubpartitionCount = tt.count

			assert.Equal(t, tt.valid, Passed(Static(cfg)))
		})
	}
}

func TestStatic_Failures(t *testing.T) {
	t.Run("missing identity", func(t *testing.T) {
		cfg := validConfig()
		cfg.Owner = ""

		results := Static(cfg)
		assert.False(t, Passed(results))
	})

	t.Run("unsupported partition type", func(t *testing.T) {
		cfg := validConfig()
		cfg.TargetConfiguration.PartitionType = repart.PartitionList

		assert.False(t, Passed(Static(cfg)))
	})

	t.Run("partition column absent from snapshot", func(t *testing.T) {
		cfg := validConfig()
		cfg.TargetConfiguration.PartitionColumn = "NO_SUCH_COLUMN"

		assert.False(t, Passed(Static(cfg)))
	})

	t.Run("partition column must be a date", func(t *testing.T) {
		cfg := validConfig()
		cfg.TargetConfiguration.PartitionColumn = "EMPLOYEE_ID"

		assert.False(t, Passed(Static(cfg)))
	})

	t.Run("timestamp columns are accepted", func(t *testing.T) {
		cfg := validConfig()
		cfg.CurrentState.Columns = append(cfg.CurrentState.Columns,
			repart.ColumnInfo{Name: "UPDATED_TS", DataType: "TIMESTAMP(6)"})
		cfg.TargetConfiguration.PartitionColumn = "UPDATED_TS"

		assert.True(t, Passed(Static(cfg)))
	})

	t.Run("interval type required for interval partitioning", func(t *testing.T) {
		cfg := validConfig()
		cfg.TargetConfiguration.IntervalType = ""

		assert.False(t, Passed(Static(cfg)))
	})

	t.Run("range partitioning needs no interval", func(t *testing.T) {
		cfg := validConfig()
		cfg.TargetConfiguration.PartitionType = repart.PartitionRange
		cfg.TargetConfiguration.IntervalType = ""
		cfg.TargetConfiguration.IntervalValue = 0

		assert.True(t, Passed(Static(cfg)))
	})

	t.Run("hash column must be hashable", func(t *testing.T) {
		cfg := validConfig()
		cfg.CurrentState.Columns = append(cfg.CurrentState.Columns,
			repart.ColumnInfo{Name: "NOTE", DataType: "VARCHAR2(200)"})
		cfg.TargetConfiguration.SubpartitionColumn = "NOTE"

		assert.False(t, Passed(Static(cfg)))
	})

	t.Run("every failure is reported individually", func(t *testing.T) {
		cfg := validConfig()
		cfg.TargetConfiguration.PartitionColumn = "NO_SUCH_COLUMN"
		cfg.TargetConfiguration.SubpartitionCount = 5

		results := Static(cfg)
		assert.Len(t, results, 2)
		for _, res := range results {
			assert.Equal(t, repart.StatusFailed, res.Status)
			assert.Equal(t, "HR.EMPLOYEES", res.TableRef)
		}
	})
}

func TestPassed(t *testing.T) {
	assert.True(t, Passed(nil))
	assert.True(t, Passed([]repart.ValidationResult{{Status: repart.StatusWarning}}))
	assert.False(t, Passed([]repart.ValidationResult{{Status: repart.StatusFailed}}))
	assert.False(t, Passed([]repart.ValidationResult{
		{Status: repart.StatusPassed},
		{Status: repart.StatusError},
	}))
}
