package swap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name           string
		existsOriginal bool
		existsBackup   bool
		existsNew      bool
		wantState      State
		wantAction     Action
	}{
		{
			name:           "only original exists means not started",
			existsOriginal: true,
			wantState:      StateNotStarted,
			wantAction:     ActionNone,
		},
		{
			name:           "all three exist means a retried swap",
			existsOriginal: true,
			existsBackup:   true,
			existsNew:      true,
			wantState:      StateAllExist,
			wantAction:     ActionDropNewRestoreBackup,
		},
		{
			name:         "backup and new without original means an interrupted swap",
			existsBackup: true,
			existsNew:    true,
			wantState:    StateSwapIncomplete,
			wantAction:   ActionRestoreBackupDropNew,
		},
		{
			name:           "original and new without backup needs a human",
			existsOriginal: true,
			existsNew:      true,
			wantState:      StatePartialSwap,
			wantAction:     ActionManualReview,
		},
		{
			name:           "original and backup without new means success",
			existsOriginal: true,
			existsBackup:   true,
			wantState:      StateSwapSuccess,
			wantAction:     ActionNone,
		},
		{
			name:       "nothing exists is unknown",
			wantState:  StateUnknown,
			wantAction: ActionManualReview,
		},
		{
			name:         "only backup exists is unknown",
			existsBackup: true,
			wantState:    StateUnknown,
			wantAction:   ActionManualReview,
		},
		{
			name:      "only new exists is unknown",
			existsNew: true,
			wantState: StateUnknown,
			wantAction: ActionManualReview,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.existsOriginal, tt.existsBackup, tt.existsNew)

			assert.Equal(t, tt.wantState, got.State)
			assert.Equal(t, tt.wantAction, got.RecommendedAction)
		})
	}
}

func TestState_ExitCode(t *testing.T) {
	t.Run("healthy states exit zero", func(t *testing.T) {
		assert.Equal(t, 0, StateNotStarted.ExitCode())
		assert.Equal(t, 0, StateSwapSuccess.ExitCode())
	})

	t.Run("states needing attention exit two", func(t *testing.T) {
		assert.Equal(t, 2, StateAllExist.ExitCode())
		assert.Equal(t, 2, StateSwapIncomplete.ExitCode())
		assert.Equal(t, 2, StatePartialSwap.ExitCode())
		assert.Equal(t, 2, StateUnknown.ExitCode())
	})
}
