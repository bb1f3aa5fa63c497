package analysis

import (
	"context"
	"sync"
	"time"
)

// Mock implements Analyzer for testing.
type Mock struct {
	// AnalyzeFunc is called when Analyze is invoked.
	AnalyzeFunc func(ctx context.Context, image []byte) (*Result, error)

	// CloseFunc is called when Close is invoked.
	CloseFunc func() error

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records a method invocation.
type MockCall struct {
	Method string
	Bytes  int
	Time   time.Time
}

// NewMock creates a mock that reports two bottles and one can.
func NewMock() *Mock {
	return &Mock{
		AnalyzeFunc: func(ctx context.Context, image []byte) (*Result, error) {
			return &Result{Bottles: 2, Cans: 1, Analyzer: "mock"}, nil
		},
	}
}

// WithError returns a mock whose Analyze always fails with err.
func WithError(err error) *Mock {
	return &Mock{
		AnalyzeFunc: func(ctx context.Context, image []byte) (*Result, error) {
			return nil, err
		},
	}
}

// Analyze calls AnalyzeFunc and records the call.
func (m *Mock) Analyze(ctx context.Context, image []byte) (*Result, error) {
	m.record("Analyze", len(image))
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, image)
	}
	return nil, WrapError("mock", ErrUnavailable)
}

// Name identifies the mock for logging.
func (m *Mock) Name() string {
	return "mock"
}

// Close calls CloseFunc and records the call.
func (m *Mock) Close() error {
	m.record("Close", 0)
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

func (m *Mock) record(method string, bytes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{
		Method: method,
		Bytes:  bytes,
		Time:   time.Now(),
	})
}

// Calls returns all recorded method calls.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]MockCall, len(m.calls))
	copy(result, m.calls)
	return result
}

// CallCount returns the number of times a method was called.
func (m *Mock) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.calls {
		if c.Method == method {
			count++
		}
	}
	return count
}

// Reset clears all recorded calls.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// Verify Mock implements Analyzer at compile time.
var _ Analyzer = (*Mock)(nil)
