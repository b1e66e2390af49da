package execution

import (
	"context"
	"sync"
)

// MockLauncher is a scripted [Launcher] for testing. Each call returns the
// next queued Result; the last one repeats once the queue is exhausted.
type MockLauncher struct {
	mu       sync.Mutex
	results  []Result
	requests []Request
}

// NewMockLauncher creates a launcher that replays results in order.
func NewMockLauncher(results ...Result) *MockLauncher {
	return &MockLauncher{results: results}
}

func (m *MockLauncher) Launch(ctx context.Context, req Request) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	if len(m.results) == 0 {
		return Result{}
	}
	res := m.results[0]
	if len(m.results) > 1 {
		m.results = m.results[1:]
	}
	return res
}

// Requests returns a copy of every request seen so far.
func (m *MockLauncher) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}
