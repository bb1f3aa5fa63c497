//go:build gocv
// +build gocv

package analysis

import (
	"context"
	"image"
	"log/slog"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

const analyzerHeuristic = "heuristic"

// Heuristic counts container-shaped contours without a trained model.
//
// It is a deliberately simple stand-in for real detection: edge contours
// are filtered by area and split into bottles and cans by aspect ratio.
// Accuracy is rough; the point is a local, dependency-free-at-runtime
// backend that keeps the capture flow usable offline.
type Heuristic struct {
	// MinAreaRatio filters contours smaller than this share of the frame.
	MinAreaRatio float64

	// BottleAspect is the height/width ratio above which a contour
	// counts as a bottle; squatter contours count as cans.
	BottleAspect float64

	// MaxAspect rejects implausibly thin contours (edges, reflections).
	MaxAspect float64

	// MaxSide is the resize bound applied before edge detection so area
	// thresholds stay stable across input resolutions.
	MaxSide int

	logger *slog.Logger
	mu     sync.Mutex // gocv mats are not safe for concurrent use
}

// NewHeuristic creates a contour-count analyzer with standard thresholds.
func NewHeuristic(opts ...Option) *Heuristic {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	return &Heuristic{
		MinAreaRatio: 0.005,
		BottleAspect: 1.8,
		MaxAspect:    8.0,
		MaxSide:      1024,
		logger:       cfg.Logger.With("component", "analysis.heuristic"),
	}
}

// Analyze counts container-shaped contours in the frame.
func (h *Heuristic) Analyze(ctx context.Context, imageData []byte) (*Result, error) {
	if len(imageData) == 0 {
		return nil, WrapError(analyzerHeuristic, ErrNoImage)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	start := time.Now()

	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err != nil || mat.Empty() {
		if !mat.Empty() {
			mat.Close()
		}
		return nil, WrapError(analyzerHeuristic, ErrDecodeFailure)
	}
	defer mat.Close()

	// Normalize size so the area threshold means the same thing for
	// phone photos and webcam frames.
	if mat.Cols() > h.MaxSide || mat.Rows() > h.MaxSide {
		longest := mat.Cols()
		if mat.Rows() > longest {
			longest = mat.Rows()
		}
		scale := float64(h.MaxSide) / float64(longest)
		resized := gocv.NewMat()
		gocv.Resize(mat, &resized, image.Pt(
			int(float64(mat.Cols())*scale),
			int(float64(mat.Rows())*scale),
		), 0, 0, gocv.InterpolationArea)
		mat.Close()
		mat = resized
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	blur := gocv.NewMat()
	defer blur.Close()
	gocv.GaussianBlur(gray, &blur, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blur, &edges, 50, 150)

	contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	minArea := int(float64(mat.Cols()*mat.Rows()) * h.MinAreaRatio)
	result := &Result{Analyzer: analyzerHeuristic}
	for i := 0; i < contours.Size(); i++ {
		rect := gocv.BoundingRect(contours.At(i))
		if rect.Dx()*rect.Dy() < minArea || rect.Dx() == 0 {
			continue
		}
		aspect := float64(rect.Dy()) / float64(rect.Dx())
		switch {
		case aspect > h.MaxAspect || aspect < 1/h.MaxAspect:
			continue
		case aspect >= h.BottleAspect:
			result.Bottles++
		default:
			result.Cans++
		}
	}

	result.LatencyMs = time.Since(start).Milliseconds()

	h.logger.Debug("contour count complete",
		"bottles", result.Bottles,
		"cans", result.Cans,
		"latency_ms", result.LatencyMs,
	)

	return result, nil
}

// Name identifies the backend for logging.
func (h *Heuristic) Name() string {
	return analyzerHeuristic
}

// Close releases resources. The heuristic holds none between calls.
func (h *Heuristic) Close() error {
	return nil
}

// Verify Heuristic implements Analyzer at compile time.
var _ Analyzer = (*Heuristic)(nil)
