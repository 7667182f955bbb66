// Package swap classifies the three-table existence state left behind
// by the rename-pattern cutover and recommends a recovery action. The
// classifier is a pure function: it never mutates anything, and it
// never invents an automated recovery for states that need a human.
package swap

// State is the classification of the original/backup/new object triple.
type State string

const (
	// StateNotStarted indicates only the original exists; no swap has begun.
	StateNotStarted State = "NotStarted"

	// StateAllExist indicates all three objects exist, typically a swap
	// re-attempted without cleaning up the previous run.
	StateAllExist State = "AllExist"

	// StateSwapIncomplete indicates the first rename completed and the
	// second failed: the backup and new objects exist, the original is gone.
	StateSwapIncomplete State = "SwapIncomplete"

	// StatePartialSwap indicates original and new exist without a
	// backup, which no normal swap sequence produces.
	StatePartialSwap State = "PartialSwap"

	// StateSwapSuccess indicates the swap completed: original and backup
	// exist and the new name is gone.
	StateSwapSuccess State = "SwapSuccess"

	// StateUnknown covers every other combination.
	StateUnknown State = "Unknown"
)

// Action is the recommended recovery for a classified state.
type Action string

const (
	// ActionNone means no recovery is needed.
	ActionNone Action = "none"

	// ActionDropNewRestoreBackup recovers a re-attempted swap: drop the
	// new object, then rename backup back to original.
	ActionDropNewRestoreBackup Action = "drop new, rename backup to original"

	// ActionRestoreBackupDropNew recovers an interrupted swap: rename
	// backup back to original, then drop the new object.
	ActionRestoreBackupDropNew Action = "rename backup to original, drop new"

	// ActionManualReview means no automatic recovery is safe; a human
	// must inspect the objects.
	ActionManualReview Action = "manual investigation"
)

// Classification pairs the detected state with its recommended action.
type Classification struct {
	State             State
	RecommendedAction Action
}

// Classify maps the existence of the original, backup and new objects to
// a recovery recommendation. It only recommends; issuing the recovery
// statements is the operator's decision.
func Classify(existsOriginal, existsBackup, existsNew bool) Classification {
	switch {
	case existsOriginal && existsBackup && existsNew:
		return Classification{State: StateAllExist, RecommendedAction: ActionDropNewRestoreBackup}

	case !existsOriginal && existsBackup && existsNew:
		return Classification{State: StateSwapIncomplete, RecommendedAction: ActionRestoreBackupDropNew}

	case existsOriginal && !existsBackup && existsNew:
		// No rename sequence leaves this combination behind; guessing a
		// recovery here could destroy the wrong object.
		return Classification{State: StatePartialSwap, RecommendedAction: ActionManualReview}

	case existsOriginal && existsBackup && !existsNew:
		return Classification{State: StateSwapSuccess, RecommendedAction: ActionNone}

	case existsOriginal && !existsBackup && !existsNew:
		return Classification{State: StateNotStarted, RecommendedAction: ActionNone}

	default:
		return Classification{State: StateUnknown, RecommendedAction: ActionManualReview}
	}
}

// ExitCode maps a state to the process exit code used by CLI consumers:
// healthy states exit 0, recoverable or unknown states exit 2.
func (s State) ExitCode() int {
	switch s {
	case StateNotStarted, StateSwapSuccess:
		return 0
	default:
		return 2
	}
}
