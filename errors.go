package repart

import (
	"errors"
	"fmt"
)

var (
	// ErrCatalogUnavailable indicates the catalog connection could not
	// enumerate metadata at all. Discovery aborts the whole batch on it;
	// per-table failures are reported individually instead.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrTableNotFound indicates the referenced table does not exist in
	// the catalog.
	ErrTableNotFound = errors.New("table not found")

	// ErrTablespaceNotFound indicates the target tablespace does not
	// exist in the catalog.
	ErrTablespaceNotFound = errors.New("tablespace not found")

	// ErrSwapAmbiguousState indicates the swap classifier could not
	// determine a safe recommendation. Always surfaced for manual
	// handling, never auto-resolved.
	ErrSwapAmbiguousState = errors.New("ambiguous swap state")
)

// ConfigSchemaError reports a malformed configuration document. It is
// document-level and fatal: no table in the document reaches generation.
type ConfigSchemaError struct {
	// Field locates the offending value, e.g. "tables[2].target_configuration.interval_type".
	Field string

	// Detail describes what is wrong with the value.
	Detail string
}

func (e *ConfigSchemaError) Error() string {
	return fmt.Sprintf("config schema error at %s: %s", e.Field, e.Detail)
}

// CatalogMismatchError reports that dynamic validation found the live
// catalog disagreeing with the configuration (missing column, missing
// tablespace, incompatible type). The table is excluded from generation;
// the batch continues.
type CatalogMismatchError struct {
	// Table is the OWNER.TABLE_NAME being validated.
	Table string

	// Object names the missing or mismatched catalog object.
	Object string

	// Detail describes the mismatch.
	Detail string
}

func (e *CatalogMismatchError) Error() string {
	return fmt.Sprintf("catalog mismatch for %s: %s: %s", e.Table, e.Object, e.Detail)
}

// GenerationError reports that the compiler could not render a required
// clause or phase for a table. That table's artifacts are discarded; the
// batch continues.
type GenerationError struct {
	// Table is the OWNER.TABLE_NAME being compiled.
	Table string

	// Phase is the artifact phase that failed, empty when the failure
	// precedes phase assembly.
	Phase string

	// Detail describes the missing or invalid input.
	Detail string
}

func (e *GenerationError) Error() string {
	if e.Phase == "" {
		return fmt.Sprintf("generation failed for %s: %s", e.Table, e.Detail)
	}
	return fmt.Sprintf("generation failed for %s in phase %s: %s", e.Table, e.Phase, e.Detail)
}
