// Package camera provides still-frame sources for the capture session.
//
// A Source owns device access and frame extraction; the session only
// asks two things of it: is it ready, and give me one encoded still.
// Readiness is an edge-triggered external signal, so sources accept an
// OnReady callback that wiring code connects to the session.
package camera

import (
	"context"
	"errors"
)

// Sentinel errors for common conditions.
var (
	// ErrNotReady is returned when a snapshot is requested before the
	// source has signaled readiness.
	ErrNotReady = errors.New("camera: source not ready")

	// ErrNoFrame is returned when the source is ready but has no frame
	// to hand out.
	ErrNoFrame = errors.New("camera: no frame available")

	// ErrClosed is returned when using a closed source.
	ErrClosed = errors.New("camera: source closed")

	// ErrUnavailable is returned by device-backed sources in builds
	// without the gocv tag.
	ErrUnavailable = errors.New("camera: device capture unavailable")
)

// Source is a still-frame camera.
type Source interface {
	// Ready reports whether the source can produce a snapshot.
	Ready() bool

	// Snapshot yields one encoded still image.
	Snapshot(ctx context.Context) ([]byte, error)

	// Close releases the device or buffered frames.
	Close() error
}
