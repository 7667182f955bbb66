package plan

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dbops/repart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() *repart.Document {
	return &repart.Document{
		Metadata: repart.DocumentMetadata{
			Schema:      "HR",
			GeneratedAt: time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC),
			GeneratedBy: "dba",
		},
		Tables: []repart.TableConfig{
			{
				Enabled:   true,
				Owner:     "HR",
				TableName: "EMPLOYEES",
				CurrentState: repart.CurrentState{
					PartitionType: repart.PartitionNone,
					Columns: []repart.ColumnInfo{
						{Name: "EMPLOYEE_ID", DataType: "NUMBER(10)"},
						{Name: "HIRE_DATE", DataType: "DATE", Nullable: true},
					},
					Constraints: []repart.ConstraintInfo{
						{Name: "PK_EMPLOYEES", Type: repart.ConstraintPrimary, Status: "ENABLED"},
					},
					RowCount:  5000,
					SizeBytes: 1 << 20,
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
				MigrationSettings: repart.MigrationSettings{
					MigrateData:        true,
					LobTablespaceCount: 4,
				},
			},
		},
	}
}

func TestParse_RoundTrip(t *testing.T) {
	doc := sampleDocument()

	data, err := Serialize(doc)
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, doc, parsed)
}

func TestParse_SchemaErrors(t *testing.T) {
	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Parse([]byte("tables: [\n"))

		var schemaErr *repart.ConfigSchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, "document", schemaErr.Field)
	})

	t.Run("missing owner", func(t *testing.T) {
		_, err := Parse([]byte(`
tables:
  - table_name: EMPLOYEES
`))

		var schemaErr *repart.ConfigSchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, "tables[0].owner", schemaErr.Field)
	})

	t.Run("unknown interval type carries a field path", func(t *testing.T) {
		_, err := Parse([]byte(`
tables:
  - owner: HR
    table_name: A
  - owner: HR
    table_name: B
    target_configuration:
      partition_type: INTERVAL
      interval_type: FORTNIGHT
`))

		var schemaErr *repart.ConfigSchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, "tables[1].target_configuration.interval_type", schemaErr.Field)
		assert.Contains(t, schemaErr.Detail, "FORTNIGHT")
	})

	t.Run("unknown constraint type", func(t *testing.T) {
		_, err := Parse([]byte(`
tables:
  - owner: HR
    table_name: EMPLOYEES
    current_state:
      constraints:
        - name: BAD
          type: Z
`))

		var schemaErr *repart.ConfigSchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, "tables[0].current_state.constraints[0].type", schemaErr.Field)
	})
}

func TestLoadSaveDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yml")
	doc := sampleDocument()

	require.NoError(t, SaveDocument(path, doc))

	loaded, err := LoadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, doc, loaded)
}

func TestLoadDocument_Missing(t *testing.T) {
	_, err := LoadDocument(filepath.Join(t.TempDir(), "absent.yml"))

	assert.Error(t, err)
	var schemaErr *repart.ConfigSchemaError
	assert.False(t, errors.As(err, &schemaErr), "a read failure is not a schema error")
}
