package plan

import (
	"testing"
	"time"

	"github.com/dbops/repart"
	"github.com/stretchr/testify/assert"
)

func TestDefaultPartitionColumn(t *testing.T) {
	t.Run("prefers conventional names over column order", func(t *testing.T) {
		state := repart.CurrentState{Columns: []repart.ColumnInfo{
			{Name: "UPDATED_AT", DataType: "DATE"},
			{Name: "CREATED_DATE", DataType: "DATE"},
		}}

		assert.Equal(t, "CREATED_DATE", DefaultPartitionColumn(state))
	})

	t.Run("conventional name with non-date type is skipped", func(t *testing.T) {
		state := repart.CurrentState{Columns: []repart.ColumnInfo{
			{Name: "CREATED_DATE", DataType: "VARCHAR2(20)"},
			{Name: "ORDER_TS", DataType: "TIMESTAMP(6)"},
		}}

		assert.Equal(t, "ORDER_TS", DefaultPartitionColumn(state))
	})

	t.Run("falls back to the first date column", func(t *testing.T) {
		state := repart.CurrentState{Columns: []repart.ColumnInfo{
			{Name: "ORDER_ID", DataType: "NUMBER(10)"},
			{Name: "SHIP_DATE", DataType: "DATE"},
			{Name: "DELIVERY_DATE", DataType: "DATE"},
		}}

		assert.Equal(t, "SHIP_DATE", DefaultPartitionColumn(state))
	})

	t.Run("no date column means no candidate", func(t *testing.T) {
		state := repart.CurrentState{Columns: []repart.ColumnInfo{
			{Name: "ORDER_ID", DataType: "NUMBER(10)"},
		}}

		assert.Equal(t, "", DefaultPartitionColumn(state))
	})
}

func TestDefaultHashColumn(t *testing.T) {
	t.Run("numeric identifier wins", func(t *testing.T) {
		state := repart.CurrentState{Columns: []repart.ColumnInfo{
			{Name: "AMOUNT", DataType: "NUMBER(12,2)"},
			{Name: "CUSTOMER_ID", DataType: "NUMBER(10)"},
		}}

		assert.Equal(t, "CUSTOMER_ID", DefaultHashColumn(state))
	})

	t.Run("any numeric column beats a char identifier", func(t *testing.T) {
		state := repart.CurrentState{Columns: []repart.ColumnInfo{
			{Name: "REGION_KEY", DataType: "CHAR(8)"},
			{Name: "AMOUNT", DataType: "NUMBER(12,2)"},
		}}

		assert.Equal(t, "AMOUNT", DefaultHashColumn(state))
	})

	t.Run("char identifier is the last resort", func(t *testing.T) {
		state := repart.CurrentState{Columns: []repart.ColumnInfo{
			{Name: "NOTE", DataType: "VARCHAR2(100)"},
			{Name: "REGION_KEY", DataType: "CHAR(8)"},
		}}

		assert.Equal(t, "REGION_KEY", DefaultHashColumn(state))
	})

	t.Run("no candidate returns empty", func(t *testing.T) {
		state := repart.CurrentState{Columns: []repart.ColumnInfo{
			{Name: "NOTE", DataType: "VARCHAR2(100)"},
		}}

		assert.Equal(t, "", DefaultHashColumn(state))
	})
}

func TestInferIntervalType(t *testing.T) {
	base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	t.Run("no data range falls back to month", func(t *testing.T) {
		state := repart.CurrentState{RowCount: 5_000_000}
		assert.Equal(t, repart.IntervalMonth, InferIntervalType(state))
	})

	t.Run("a million rows per day gets hourly partitions", func(t *testing.T) {
		state := repart.CurrentState{
			RowCount: 10_000_000,
			DataMin:  base,
			DataMax:  base.AddDate(0, 0, 10),
		}
		assert.Equal(t, repart.IntervalHour, InferIntervalType(state))
	})

	t.Run("a thousand rows per day gets daily partitions", func(t *testing.T) {
		state := repart.CurrentState{
			RowCount: 100_000,
			DataMin:  base,
			DataMax:  base.AddDate(0, 0, 100),
		}
		assert.Equal(t, repart.IntervalDay, InferIntervalType(state))
	})

	t.Run("sparse data gets monthly partitions", func(t *testing.T) {
		state := repart.CurrentState{
			RowCount: 10_000,
			DataMin:  base,
			DataMax:  base.AddDate(1, 0, 0),
		}
		assert.Equal(t, repart.IntervalMonth, InferIntervalType(state))
	})
}

func TestDefaultSubpartitionCount(t *testing.T) {
	tests := []struct {
		rowCount int64
		want     int
	}{
		{0, 2},
		{5_000, 2},
		{2_000_000, 2},
		{2_000_001, 4},
		{7_500_000, 8},
		{100_000_000, 128},
		{1_000_000_000, 128},
	}

	for _, tt := range tests {
		got := DefaultSubpartitionCount(tt.rowCount)

		assert.Equal(t, tt.want, got, "rowCount=%d", tt.rowCount)
		assert.Zero(t, got&(got-1), "count must be a power of two")
	}
}

func TestApplyDefaults(t *testing.T) {
	t.Run("fills every zero field", func(t *testing.T) {
		cfg := repart.TableConfig{
			Owner:     "HR",
			TableName: "EMPLOYEES",
			CurrentState: repart.CurrentState{
				RowCount: 3_000_000,
				Columns: []repart.ColumnInfo{
					{Name: "EMPLOYEE_ID", DataType: "NUMBER(10)"},
					{Name: "HIRE_DATE", DataType: "DATE"},
				},
			},
		}

		ApplyDefaults(&cfg)

		target := cfg.TargetConfiguration
		assert.Equal(t, repart.PartitionInterval, target.PartitionType)
		assert.Equal(t, "HIRE_DATE", target.PartitionColumn)
		assert.Equal(t, repart.IntervalMonth, target.IntervalType)
		assert.Equal(t, 1, target.IntervalValue)
		assert.Equal(t, repart.SubpartitionHash, target.SubpartitionType)
		assert.Equal(t, "EMPLOYEE_ID", target.SubpartitionColumn)
		assert.Equal(t, 4, target.SubpartitionCount)
		assert.Equal(t, 4, target.ParallelDegree)
		assert.Equal(t, 4, cfg.MigrationSettings.LobTablespaceCount)
	})

	t.Run("never overwrites explicit configuration", func(t *testing.T) {
		cfg := repart.TableConfig{
			Owner:     "HR",
			TableName: "EMPLOYEES",
			CurrentState: repart.CurrentState{
				Columns: []repart.ColumnInfo{
					{Name: "EMPLOYEE_ID", DataType: "NUMBER(10)"},
					{Name: "HIRE_DATE", DataType: "DATE"},
				},
			},
			TargetConfiguration: repart.TargetConfiguration{
				PartitionType:    repart.PartitionRange,
				PartitionColumn:  "HIRE_DATE",
				SubpartitionType: repart.SubpartitionNone,
				ParallelDegree:   8,
			},
		}

		ApplyDefaults(&cfg)

		target := cfg.TargetConfiguration
		assert.Equal(t, repart.PartitionRange, target.PartitionType)
		assert.Equal(t, repart.SubpartitionNone, target.SubpartitionType)
		assert.Empty(t, target.SubpartitionColumn)
		assert.Zero(t, target.SubpartitionCount)
		assert.Equal(t, 8, target.ParallelDegree)
	})

	t.Run("no hash candidate disables subpartitioning", func(t *testing.T) {
		cfg := repart.TableConfig{
			CurrentState: repart.CurrentState{
				Columns: []repart.ColumnInfo{
					{Name: "NOTE", DataType: "VARCHAR2(100)"},
					{Name: "CREATED_DATE", DataType: "DATE"},
				},
			},
		}

		ApplyDefaults(&cfg)

		assert.Equal(t, repart.SubpartitionNone, cfg.TargetConfiguration.SubpartitionType)
	})
}
