// Package session owns the capture-widget state machine.
//
// A Session walks one path: Idle -> Capturing -> Captured -> Processing
// -> Result -> (reset) Idle. Mutual exclusion is by state gating, not
// by callers holding locks: a capture is refused unless the session is
// Capturing and the camera has signaled ready, and a second capture
// cannot start while analysis is in flight.
//
// Analysis is a single-settlement asynchronous call. Every capture
// cycle is tagged with a fresh ID; a settlement that arrives after a
// reset or a newer capture carries a stale tag and is discarded, so a
// late analyzer can never overwrite the current cycle. A failed
// analysis settles through the fallback estimator instead of erroring
// out, which keeps the user flow alive at the cost of accuracy.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bottlebank/depositcam/pkg/analysis"
	"github.com/bottlebank/depositcam/pkg/camera"
	"github.com/bottlebank/depositcam/pkg/deposit"
)

// Sentinel errors for refused operations.
var (
	// ErrInvalidTransition is returned when an operation is not legal
	// in the current state. The state is left unchanged.
	ErrInvalidTransition = errors.New("session: invalid transition")

	// ErrCameraNotReady is returned by Capture before the camera
	// source has signaled readiness. The state is left unchanged.
	ErrCameraNotReady = errors.New("session: camera not ready")
)

// DefaultAnalysisTimeout bounds one analysis settlement.
const DefaultAnalysisTimeout = 60 * time.Second

// Session is the capture state machine.
type Session struct {
	source   camera.Source
	analyzer analysis.Analyzer
	fallback *analysis.Fallback
	rates    deposit.Rates
	logger   *slog.Logger
	timeout  time.Duration

	mu          sync.Mutex
	state       State
	cameraReady bool
	cycle       uuid.UUID
	image       []byte
	result      *analysis.Result
	cents       int
	subscribers []func(Snapshot)
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithFallback replaces the default deterministic fallback estimator.
func WithFallback(f *analysis.Fallback) Option {
	return func(s *Session) { s.fallback = f }
}

// WithAnalysisTimeout bounds the in-flight analysis call.
func WithAnalysisTimeout(d time.Duration) Option {
	return func(s *Session) { s.timeout = d }
}

// New creates an idle session with the given collaborators.
// Rates are fixed for the lifetime of the session.
func New(source camera.Source, analyzer analysis.Analyzer, rates deposit.Rates, opts ...Option) (*Session, error) {
	if source == nil {
		return nil, errors.New("session: camera source required")
	}
	if analyzer == nil {
		return nil, errors.New("session: analyzer required")
	}
	if err := rates.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		source:   source,
		analyzer: analyzer,
		fallback: analysis.NewFallback(),
		rates:    rates,
		logger:   slog.Default(),
		timeout:  DefaultAnalysisTimeout,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "session")
	return s, nil
}

// Subscribe registers a snapshot observer. Every committed state
// change publishes exactly one snapshot to every subscriber, in
// registration order, from the goroutine that committed the change.
func (s *Session) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// SetCameraReady records the camera source's readiness signal.
// Readiness only gates Capture; it does not move the state machine.
func (s *Session) SetCameraReady(ready bool) {
	s.mu.Lock()
	if s.cameraReady == ready {
		s.mu.Unlock()
		return
	}
	s.cameraReady = ready
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Info("camera readiness changed", "ready", ready)
	s.publish(snap)
}

// StartCamera moves Idle to Capturing, clearing any prior image and
// result.
func (s *Session) StartCamera() error {
	s.mu.Lock()
	if s.state != StateIdle {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: start camera from %s", ErrInvalidTransition, state)
	}
	s.state = StateCapturing
	s.clearCycleLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
	return nil
}

// Cancel moves Capturing back to Idle. It has no effect in any other
// state; in particular it cannot abort an in-flight analysis.
func (s *Session) Cancel() error {
	s.mu.Lock()
	if s.state != StateCapturing {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: cancel from %s", ErrInvalidTransition, state)
	}
	s.state = StateIdle
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
	return nil
}

// Capture takes one still from the camera source and starts exactly
// one analysis cycle. It is a no-op (state unchanged) unless the
// session is Capturing and the camera has signaled readiness.
func (s *Session) Capture(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateCapturing {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: capture from %s", ErrInvalidTransition, state)
	}
	if !s.cameraReady {
		s.mu.Unlock()
		return ErrCameraNotReady
	}
	s.mu.Unlock()

	image, err := s.source.Snapshot(ctx)
	if err != nil {
		// The source was ready but produced nothing. The session stays
		// in Capturing so the user can simply try again.
		return fmt.Errorf("session: snapshot: %w", err)
	}

	s.mu.Lock()
	if s.state != StateCapturing {
		// A concurrent transition won the race; drop this frame.
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: capture from %s", ErrInvalidTransition, state)
	}
	cycle := uuid.New()
	s.cycle = cycle
	s.image = image
	s.result = nil
	s.cents = 0
	s.state = StateCaptured
	captured := s.snapshotLocked()
	s.state = StateProcessing
	processing := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(captured)
	s.publish(processing)

	s.logger.Info("capture committed",
		"cycle", cycle.String(),
		"image_bytes", len(image),
	)

	go s.analyze(cycle, image)
	return nil
}

// analyze runs the single-settlement analysis call for one cycle and
// commits its outcome. Runs detached from the capture caller so a
// closed HTTP request cannot cancel a committed cycle.
func (s *Session) analyze(cycle uuid.UUID, image []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	result, err := s.analyzer.Analyze(ctx, image)
	if err != nil {
		// Availability over accuracy: a failed analysis settles with a
		// degraded estimate instead of a user-facing error.
		s.logger.Warn("analysis failed, using fallback estimate",
			"cycle", cycle.String(),
			"error", err,
		)
		estimate := s.fallback.Estimate()
		result = &estimate
	}

	s.commit(cycle, result.Clamped())
}

// commit stores the detection result for cycle. A settlement whose
// cycle tag no longer matches the session's current cycle is stale
// (reset or a newer capture happened) and is discarded.
func (s *Session) commit(cycle uuid.UUID, result analysis.Result) {
	s.mu.Lock()
	if s.cycle != cycle || s.state != StateProcessing {
		state := s.state
		s.mu.Unlock()
		s.logger.Info("stale analysis settlement discarded",
			"cycle", cycle.String(),
			"state", state.String(),
		)
		return
	}

	s.result = &result
	s.cents = s.rates.Value(result.Bottles, result.Cans)
	s.state = StateResult
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Info("result committed",
		"cycle", cycle.String(),
		"bottles", result.Bottles,
		"cans", result.Cans,
		"deposit_cents", snap.DepositCents,
		"degraded", result.Degraded,
	)
	s.publish(snap)
}

// Reset returns to Idle from any state, discarding the captured image
// and result. If an analysis is still outstanding its settlement will
// carry a stale cycle tag and be ignored.
func (s *Session) Reset() {
	s.mu.Lock()
	s.state = StateIdle
	s.clearCycleLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
}

// Snapshot returns the current read-only state view.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Image returns a copy of the captured frame, or nil outside the
// Captured, Processing and Result states.
func (s *Session) Image() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.image) == 0 {
		return nil
	}
	out := make([]byte, len(s.image))
	copy(out, s.image)
	return out
}

// Rates returns the injected deposit rates.
func (s *Session) Rates() deposit.Rates {
	return s.rates
}

func (s *Session) clearCycleLocked() {
	s.cycle = uuid.Nil
	s.image = nil
	s.result = nil
	s.cents = 0
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:       s.state,
		DepositText: deposit.Format(0),
		Processing:  s.state == StateProcessing,
		CameraReady: s.cameraReady,
		HasImage:    len(s.image) > 0,
	}
	if s.cycle != uuid.Nil {
		snap.CaptureID = s.cycle.String()
	}
	if s.state == StateResult && s.result != nil {
		snap.BottleCount = s.result.Bottles
		snap.CanCount = s.result.Cans
		snap.Degraded = s.result.Degraded
		snap.DepositCents = s.cents
		snap.DepositText = deposit.Format(s.cents)
	}
	return snap
}

func (s *Session) publish(snap Snapshot) {
	s.mu.Lock()
	subs := make([]func(Snapshot), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
