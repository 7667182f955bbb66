package repart

import (
	"fmt"
	"time"
)

// PartitionType identifies a table-level partitioning scheme.
type PartitionType string

const (
	// PartitionNone indicates the table is not partitioned.
	PartitionNone PartitionType = "NONE"

	// PartitionRange indicates range partitioning on fixed boundaries.
	PartitionRange PartitionType = "RANGE"

	// PartitionList indicates list partitioning on discrete values.
	PartitionList PartitionType = "LIST"

	// PartitionHash indicates hash partitioning across a fixed bucket count.
	PartitionHash PartitionType = "HASH"

	// PartitionInterval indicates range partitioning with automatic
	// partition creation as data arrives past the last boundary.
	PartitionInterval PartitionType = "INTERVAL"
)

// Valid reports whether p is one of the known partition types.
func (p PartitionType) Valid() bool {
	switch p {
	case PartitionNone, PartitionRange, PartitionList, PartitionHash, PartitionInterval:
		return true
	}
	return false
}

// IntervalType identifies the width of automatically created range partitions.
type IntervalType string

const (
	IntervalHour  IntervalType = "HOUR"
	IntervalDay   IntervalType = "DAY"
	IntervalWeek  IntervalType = "WEEK"
	IntervalMonth IntervalType = "MONTH"
)

// Valid reports whether i is one of the known interval types.
func (i IntervalType) Valid() bool {
	switch i {
	case IntervalHour, IntervalDay, IntervalWeek, IntervalMonth:
		return true
	}
	return false
}

// SubpartitionType identifies the secondary partitioning scheme.
type SubpartitionType string

const (
	// SubpartitionNone indicates no secondary partitioning.
	SubpartitionNone SubpartitionType = "NONE"

	// SubpartitionHash distributes rows across N buckets via a column hash.
	SubpartitionHash SubpartitionType = "HASH"
)

// Valid reports whether s is one of the known subpartition types.
func (s SubpartitionType) Valid() bool {
	return s == SubpartitionNone || s == SubpartitionHash
}

// ConstraintType is the single-letter catalog code for a constraint kind.
type ConstraintType string

const (
	// ConstraintPrimary is a primary key constraint.
	ConstraintPrimary ConstraintType = "P"

	// ConstraintUnique is a unique constraint.
	ConstraintUnique ConstraintType = "U"

	// ConstraintForeign is a referential (foreign key) constraint.
	ConstraintForeign ConstraintType = "R"

	// ConstraintCheck is a check constraint.
	ConstraintCheck ConstraintType = "C"
)

// Valid reports whether c is one of the known constraint types.
func (c ConstraintType) Valid() bool {
	switch c {
	case ConstraintPrimary, ConstraintUnique, ConstraintForeign, ConstraintCheck:
		return true
	}
	return false
}

// ValidationStatus is the outcome vocabulary shared by every validator
// and check in the pipeline.
type ValidationStatus string

const (
	StatusPassed    ValidationStatus = "PASSED"
	StatusFailed    ValidationStatus = "FAILED"
	StatusWarning   ValidationStatus = "WARNING"
	StatusError     ValidationStatus = "ERROR"
	StatusCompleted ValidationStatus = "COMPLETED"
	StatusInfo      ValidationStatus = "INFO"
)

// Valid reports whether v is one of the known statuses.
func (v ValidationStatus) Valid() bool {
	switch v {
	case StatusPassed, StatusFailed, StatusWarning, StatusError, StatusCompleted, StatusInfo:
		return true
	}
	return false
}

// ExitCode maps a status to the process exit code used by CLI consumers.
// PASSED, COMPLETED and INFO map to 0, FAILED and ERROR to 1, WARNING to 2.
func (v ValidationStatus) ExitCode() int {
	switch v {
	case StatusFailed, StatusError:
		return 1
	case StatusWarning:
		return 2
	default:
		return 0
	}
}

// ValidationResult is one finding from a validator or check.
type ValidationResult struct {
	// Status is the outcome of the check.
	Status ValidationStatus `yaml:"status"`

	// Message describes what was checked and what was found.
	Message string `yaml:"message"`

	// TableRef is the OWNER.TABLE_NAME the finding applies to.
	TableRef string `yaml:"table_ref"`
}

// ColumnInfo describes one column of the source table.
type ColumnInfo struct {
	Name     string `yaml:"name"`
	DataType string `yaml:"type"`
	Nullable bool   `yaml:"nullable"`
}

// ConstraintInfo describes one constraint on the source table.
type ConstraintInfo struct {
	Name   string         `yaml:"name"`
	Type   ConstraintType `yaml:"type"`
	Status string         `yaml:"status"`
}

// IndexInfo describes one index on the source table.
type IndexInfo struct {
	Name       string   `yaml:"name"`
	Columns    []string `yaml:"columns"`
	Unique     bool     `yaml:"unique"`
	Tablespace string   `yaml:"tablespace,omitempty"`
}

// LobInfo describes the storage of one large-object column.
type LobInfo struct {
	// Column is the LOB column name.
	Column string `yaml:"column"`

	// SegmentBase is the base name for generated per-subpartition segments.
	SegmentBase string `yaml:"segment_base"`

	// TablespaceBase is the base name the per-subpartition tablespace
	// suffix is appended to.
	TablespaceBase string `yaml:"tablespace_base"`
}

// CurrentState is the discovered structural snapshot of a table.
// It is created by the discoverer and never mutated afterwards.
type CurrentState struct {
	IsPartitioned bool             `yaml:"is_partitioned"`
	PartitionType PartitionType    `yaml:"partition_type"`
	Columns       []ColumnInfo     `yaml:"columns"`
	Constraints   []ConstraintInfo `yaml:"constraints,omitempty"`
	Indexes       []IndexInfo      `yaml:"indexes,omitempty"`
	LobStorage    []LobInfo        `yaml:"lob_storage,omitempty"`
	RowCount      int64            `yaml:"row_count"`
	SizeBytes     int64            `yaml:"size_bytes"`

	// DataMin and DataMax bound the values observed in the candidate
	// partition column when the discoverer could sample them. They feed
	// the interval-type inference and are best effort.
	DataMin time.Time `yaml:"data_min,omitempty"`
	DataMax time.Time `yaml:"data_max,omitempty"`
}

// Column returns the column with the given name, if present.
func (s CurrentState) Column(name string) (ColumnInfo, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnInfo{}, false
}

// TargetConfiguration is the desired partitioning scheme for a table.
// Fields left at their zero value are filled in by default inference.
type TargetConfiguration struct {
	PartitionType      PartitionType    `yaml:"partition_type"`
	PartitionColumn    string           `yaml:"partition_column"`
	IntervalType       IntervalType     `yaml:"interval_type,omitempty"`
	IntervalValue      int              `yaml:"interval_value,omitempty"`
	SubpartitionType   SubpartitionType `yaml:"subpartition_type,omitempty"`
	SubpartitionColumn string           `yaml:"subpartition_column,omitempty"`
	SubpartitionCount  int              `yaml:"subpartition_count,omitempty"`
	Tablespace         string           `yaml:"tablespace,omitempty"`
	ParallelDegree     int              `yaml:"parallel_degree,omitempty"`
}

// MigrationSettings controls which phases the orchestrator sequences and
// how generated objects are named.
type MigrationSettings struct {
	// MigrateData enables the bulk-load phases. Constraint disable and
	// enable phases are sequenced only when this is true.
	MigrateData bool `yaml:"migrate_data"`

	// EnableDeltaLoad adds the incremental delta-load phase.
	EnableDeltaLoad bool `yaml:"enable_delta_load,omitempty"`

	// DeltaColumn is the column the delta load filters on.
	DeltaColumn string `yaml:"delta_column,omitempty"`

	// LobTablespaceCount is the number of LOB tablespaces generated
	// segments are distributed over (default 4).
	LobTablespaceCount int `yaml:"lob_tablespace_count,omitempty"`

	// BackupSuffix is appended to the original name at swap time (default _BK).
	BackupSuffix string `yaml:"backup_suffix,omitempty"`

	// NewSuffix names the freshly built table before the swap (default _NEW).
	NewSuffix string `yaml:"new_suffix,omitempty"`
}

// BackupSuffixOrDefault returns the configured backup suffix or _BK.
func (m MigrationSettings) BackupSuffixOrDefault() string {
	if m.BackupSuffix != "" {
		return m.BackupSuffix
	}
	return "_BK"
}

// NewSuffixOrDefault returns the configured new-table suffix or _NEW.
func (m MigrationSettings) NewSuffixOrDefault() string {
	if m.NewSuffix != "" {
		return m.NewSuffix
	}
	return "_NEW"
}

// TableConfig is the full repartitioning plan for one table. It is
// assembled by the discoverer and plan builder, annotated by the
// validators, and treated as immutable once validated.
type TableConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Owner     string `yaml:"owner"`
	TableName string `yaml:"table_name"`

	CurrentState        CurrentState        `yaml:"current_state"`
	TargetConfiguration TargetConfiguration `yaml:"target_configuration"`
	MigrationSettings   MigrationSettings   `yaml:"migration_settings"`
}

// QualifiedName returns OWNER.TABLE_NAME.
func (c TableConfig) QualifiedName() string {
	return fmt.Sprintf("%s.%s", c.Owner, c.TableName)
}

// BackupName returns the name the original table is renamed to at swap time.
func (c TableConfig) BackupName() string {
	return c.TableName + c.MigrationSettings.BackupSuffixOrDefault()
}

// NewName returns the name the rebuilt table carries before the swap.
func (c TableConfig) NewName() string {
	return c.TableName + c.MigrationSettings.NewSuffixOrDefault()
}

// Artifact is one ordered, named text unit produced by the compiler.
type Artifact struct {
	// Sequence orders artifacts within a table's set.
	Sequence int `yaml:"sequence"`

	// Name identifies the phase, e.g. "020_disable_constraints".
	Name string `yaml:"name"`

	// Body is the rendered statement text.
	Body string `yaml:"body"`
}

// ArtifactSet groups the artifacts generated for one table together with
// the orchestrator artifact that sequences them.
type ArtifactSet struct {
	Owner     string
	TableName string

	// Artifacts are the phase artifacts in execution order. The
	// drop-old-table artifact is included here but deliberately not
	// referenced by the orchestrator.
	Artifacts []Artifact

	// Orchestrator sequences the phases conditionally on the table's
	// migration settings.
	Orchestrator Artifact
}

// DocumentMetadata describes the provenance of a configuration document.
type DocumentMetadata struct {
	Schema      string    `yaml:"schema"`
	GeneratedAt time.Time `yaml:"generated_at"`
	GeneratedBy string    `yaml:"generated_by,omitempty"`
}

// Document is the persisted, human-editable configuration document.
// It round-trips losslessly through YAML.
type Document struct {
	Metadata DocumentMetadata `yaml:"metadata"`
	Tables   []TableConfig    `yaml:"tables"`
}
