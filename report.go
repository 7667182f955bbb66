package repart

import "time"

// TableOutcome is the final disposition of one table within a run.
type TableOutcome struct {
	// Owner and TableName identify the table.
	Owner     string
	TableName string

	// Status summarizes the table's disposition: PASSED when artifacts
	// were generated, FAILED when validation excluded the table, ERROR
	// when discovery or generation errored, WARNING for degraded runs.
	Status ValidationStatus

	// Results are the individual validator findings for the table.
	Results []ValidationResult

	// Err carries the table-scoped error text, if any.
	Err string
}

// RunReport collects the per-table outcomes of one batch run. One bad
// table never blocks the rest; the report is how the rest is accounted for.
type RunReport struct {
	// ID is the unique identifier for this run (UUID).
	ID string

	// Schema is the owner/schema the run targeted.
	Schema string

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time
	FinishedAt time.Time

	// Outcomes holds one entry per table considered by the run.
	Outcomes []TableOutcome
}

// Status reduces the report to a single status: ERROR or FAILED if any
// table ended there, else WARNING if any table warned, else PASSED.
func (r RunReport) Status() ValidationStatus {
	status := StatusPassed
	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusError, StatusFailed:
			return StatusFailed
		case StatusWarning:
			status = StatusWarning
		}
	}
	return status
}
