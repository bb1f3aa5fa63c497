package camera

import (
	"context"
	"sync"
)

// Mock implements Source for testing.
type Mock struct {
	mu    sync.Mutex
	ready bool
	frame []byte

	// SnapshotFunc overrides the default snapshot behavior.
	SnapshotFunc func(ctx context.Context) ([]byte, error)

	snapshots int
}

// NewMock creates a mock source that is not yet ready.
func NewMock() *Mock {
	return &Mock{}
}

// SetReady flips readiness and optionally installs a canned frame.
func (m *Mock) SetReady(ready bool, frame []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ready = ready
	m.frame = frame
}

// Ready reports the configured readiness.
func (m *Mock) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

// Snapshot returns the canned frame or calls SnapshotFunc.
func (m *Mock) Snapshot(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	m.snapshots++
	fn := m.SnapshotFunc
	ready := m.ready
	frame := m.frame
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	if !ready {
		return nil, ErrNotReady
	}
	if len(frame) == 0 {
		return nil, ErrNoFrame
	}
	return frame, nil
}

// SnapshotCount returns how many snapshots were requested.
func (m *Mock) SnapshotCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshots
}

// Close marks the mock not ready.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ready = false
	return nil
}

// Verify Mock implements Source at compile time.
var _ Source = (*Mock)(nil)
