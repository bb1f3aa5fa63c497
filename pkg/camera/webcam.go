//go:build gocv
// +build gocv

package camera

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Webcam captures stills from a local video device via gocv.
// Used in kiosk deployments where the service machine owns the camera
// and the browser only renders state.
type Webcam struct {
	config Config
	logger *slog.Logger

	mu  sync.Mutex
	cap *gocv.VideoCapture

	// OnReady is invoked once, after the device opens.
	OnReady func()
}

// NewWebcam creates a device-backed source. Call Open before use.
func NewWebcam(cfg Config, logger *slog.Logger) (*Webcam, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("camera: validation failed: %v", errs)
	}
	return &Webcam{
		config: cfg,
		logger: logger.With("component", "camera.webcam"),
	}, nil
}

// Open acquires the capture device and signals readiness.
func (w *Webcam) Open() error {
	w.mu.Lock()
	cap, err := gocv.VideoCaptureDevice(w.config.DeviceID)
	if err != nil {
		w.mu.Unlock()
		return fmt.Errorf("camera: open device %d: %w", w.config.DeviceID, err)
	}

	cap.Set(gocv.VideoCaptureFrameWidth, float64(w.config.Width))
	cap.Set(gocv.VideoCaptureFrameHeight, float64(w.config.Height))

	w.cap = cap
	onReady := w.OnReady
	w.mu.Unlock()

	w.logger.Info("camera ready",
		"device", w.config.DeviceID,
		"width", w.config.Width,
		"height", w.config.Height,
	)

	if onReady != nil {
		onReady()
	}
	return nil
}

// Ready reports whether the device is open.
func (w *Webcam) Ready() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cap != nil && w.cap.IsOpened()
}

// Snapshot grabs one frame and encodes it as JPEG.
func (w *Webcam) Snapshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cap == nil {
		return nil, ErrNotReady
	}

	frame := gocv.NewMat()
	defer frame.Close()

	if ok := w.cap.Read(&frame); !ok || frame.Empty() {
		return nil, ErrNoFrame
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, frame,
		[]int{gocv.IMWriteJpegQuality, w.config.Quality})
	if err != nil {
		return nil, fmt.Errorf("camera: encode frame: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

// Frames pumps preview frames to fn at the configured rate until ctx
// is done. Snapshot errors are logged and skipped; the pump keeps
// going so a transient device hiccup does not kill the preview.
func (w *Webcam) Frames(ctx context.Context, fn func(jpeg []byte)) {
	interval := time.Second / time.Duration(w.config.PreviewFPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			frame, err := w.Snapshot(ctx)
			if err != nil {
				w.logger.Debug("preview frame skipped", "error", err)
				continue
			}
			fn(frame)
		}
	}
}

// Close releases the capture device.
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cap == nil {
		return nil
	}
	err := w.cap.Close()
	w.cap = nil
	return err
}

// Verify Webcam implements Source at compile time.
var _ Source = (*Webcam)(nil)
