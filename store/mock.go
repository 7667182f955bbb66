package store

import (
	"context"
	"sync"

	"github.com/dbops/repart"
)

// MockRunStore is a configurable mock implementation of RunStore for use
// in tests. It allows setting up expected return values, tracking method
// calls, and injecting errors for testing error paths.
type MockRunStore struct {
	mu sync.RWMutex

	// SaveRunFunc is called by SaveRun if set.
	SaveRunFunc func(ctx context.Context, report repart.RunReport) error

	// GetRunFunc is called by GetRun if set.
	GetRunFunc func(ctx context.Context, id string) (repart.RunReport, error)

	// LatestRunFunc is called by LatestRun if set.
	LatestRunFunc func(ctx context.Context, schema string) (repart.RunReport, error)

	// ListRunsFunc is called by ListRuns if set.
	ListRunsFunc func(ctx context.Context, schema string, limit int) ([]repart.RunReport, error)

	// DeleteRunFunc is called by DeleteRun if set.
	DeleteRunFunc func(ctx context.Context, id string) error

	// Call tracking
	SaveRunCalls   []SaveRunCall
	GetRunCalls    []GetRunCall
	LatestRunCalls []LatestRunCall
	ListRunsCalls  []ListRunsCall
	DeleteRunCalls []DeleteRunCall
}

// Call tracking structs
type SaveRunCall struct {
	Report repart.RunReport
}

type GetRunCall struct {
	ID string
}

type LatestRunCall struct {
	Schema string
}

type ListRunsCall struct {
	Schema string
	Limit  int
}

type DeleteRunCall struct {
	ID string
}

// NewMockRunStore creates a new mock run store.
func NewMockRunStore() *MockRunStore {
	return &MockRunStore{}
}

// SaveRun records the call and delegates to SaveRunFunc if set.
func (m *MockRunStore) SaveRun(ctx context.Context, report repart.RunReport) error {
	m.mu.Lock()
	m.SaveRunCalls = append(m.SaveRunCalls, SaveRunCall{Report: report})
	m.mu.Unlock()

	if m.SaveRunFunc != nil {
		return m.SaveRunFunc(ctx, report)
	}
	return nil
}

// GetRun records the call and delegates to GetRunFunc if set.
func (m *MockRunStore) GetRun(ctx context.Context, id string) (repart.RunReport, error) {
	m.mu.Lock()
	m.GetRunCalls = append(m.GetRunCalls, GetRunCall{ID: id})
	m.mu.Unlock()

	if m.GetRunFunc != nil {
		return m.GetRunFunc(ctx, id)
	}
	return repart.RunReport{}, ErrRunNotFound
}

// LatestRun records the call and delegates to LatestRunFunc if set.
func (m *MockRunStore) LatestRun(ctx context.Context, schema string) (repart.RunReport, error) {
	m.mu.Lock()
	m.LatestRunCalls = append(m.LatestRunCalls, LatestRunCall{Schema: schema})
	m.mu.Unlock()

	if m.LatestRunFunc != nil {
		return m.LatestRunFunc(ctx, schema)
	}
	return repart.RunReport{}, ErrRunNotFound
}

// ListRuns records the call and delegates to ListRunsFunc if set.
func (m *MockRunStore) ListRuns(ctx context.Context, schema string, limit int) ([]repart.RunReport, error) {
	m.mu.Lock()
	m.ListRunsCalls = append(m.ListRunsCalls, ListRunsCall{Schema: schema, Limit: limit})
	m.mu.Unlock()

	if m.ListRunsFunc != nil {
		return m.ListRunsFunc(ctx, schema, limit)
	}
	return nil, nil
}

// DeleteRun records the call and delegates to DeleteRunFunc if set.
func (m *MockRunStore) DeleteRun(ctx context.Context, id string) error {
	m.mu.Lock()
	m.DeleteRunCalls = append(m.DeleteRunCalls, DeleteRunCall{ID: id})
	m.mu.Unlock()

	if m.DeleteRunFunc != nil {
		return m.DeleteRunFunc(ctx, id)
	}
	return nil
}

// Compile-time check that MockRunStore implements RunStore.
var _ RunStore = (*MockRunStore)(nil)
