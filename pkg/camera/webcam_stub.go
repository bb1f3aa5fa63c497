//go:build !gocv
// +build !gocv

package camera

import (
	"context"
	"fmt"
	"log/slog"
)

// Webcam is a stub in builds without the gocv tag. Kiosk mode needs
// the real device capture; everything else runs on the Remote source.
type Webcam struct {
	config Config
	logger *slog.Logger

	// OnReady matches the device-backed implementation. Never invoked.
	OnReady func()
}

// NewWebcam creates the stub source.
func NewWebcam(cfg Config, logger *slog.Logger) (*Webcam, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("camera: validation failed: %v", errs)
	}
	return &Webcam{
		config: cfg,
		logger: logger.With("component", "camera.webcam"),
	}, nil
}

// Open reports device capture as unavailable.
func (w *Webcam) Open() error {
	return ErrUnavailable
}

// Ready is always false for the stub.
func (w *Webcam) Ready() bool {
	return false
}

// Snapshot reports device capture as unavailable.
func (w *Webcam) Snapshot(ctx context.Context) ([]byte, error) {
	return nil, ErrUnavailable
}

// Frames returns immediately; there is no device to pump from.
func (w *Webcam) Frames(ctx context.Context, fn func(jpeg []byte)) {
	_ = fn
}

// Close releases nothing.
func (w *Webcam) Close() error {
	return nil
}

// Verify Webcam implements Source at compile time.
var _ Source = (*Webcam)(nil)
