package camera

import (
	"context"
	"log/slog"
	"sync"
)

// Remote is a Source fed by frames uploaded from a browser.
//
// The browser owns device permissions and frame extraction via
// getUserMedia; the widget posts each preview frame here. The source
// becomes ready on the first frame and stays ready until closed, and
// Snapshot hands out the most recent frame.
type Remote struct {
	mu     sync.Mutex
	frame  []byte
	ready  bool
	closed bool
	logger *slog.Logger

	// OnReady is invoked once, on the not-ready to ready edge.
	// Wiring code points this at the session's readiness input.
	OnReady func()
}

// NewRemote creates a browser-fed frame source.
func NewRemote(logger *slog.Logger) *Remote {
	return &Remote{
		logger: logger.With("component", "camera.remote"),
	}
}

// Submit stores the latest browser frame and marks the source ready.
func (r *Remote) Submit(frame []byte) error {
	if len(frame) == 0 {
		return ErrNoFrame
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	r.frame = frame
	firstFrame := !r.ready
	r.ready = true
	onReady := r.OnReady
	r.mu.Unlock()

	if firstFrame {
		r.logger.Info("camera ready", "frame_bytes", len(frame))
		if onReady != nil {
			onReady()
		}
	}
	return nil
}

// Ready reports whether at least one frame has arrived.
func (r *Remote) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ready && !r.closed
}

// Snapshot returns a copy of the most recent uploaded frame.
func (r *Remote) Snapshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	if !r.ready {
		return nil, ErrNotReady
	}
	if len(r.frame) == 0 {
		return nil, ErrNoFrame
	}

	out := make([]byte, len(r.frame))
	copy(out, r.frame)
	return out, nil
}

// Close drops the buffered frame and rejects further use.
func (r *Remote) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.ready = false
	r.frame = nil
	return nil
}

// Verify Remote implements Source at compile time.
var _ Source = (*Remote)(nil)
