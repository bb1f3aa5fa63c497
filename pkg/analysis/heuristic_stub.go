//go:build !gocv
// +build !gocv

package analysis

import (
	"context"
	"log/slog"
)

const analyzerHeuristic = "heuristic"

// Heuristic is a stub in builds without the gocv tag.
// Analyze always fails, which pushes a chain to its next backend.
type Heuristic struct {
	MinAreaRatio float64
	BottleAspect float64
	MaxAspect    float64
	MaxSide      int

	logger *slog.Logger
}

// NewHeuristic creates the stub analyzer.
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

// Analyze reports the backend as unavailable.
func (h *Heuristic) Analyze(ctx context.Context, imageData []byte) (*Result, error) {
	_ = imageData
	return nil, WrapError(analyzerHeuristic, ErrUnavailable)
}

// Name identifies the backend for logging.
func (h *Heuristic) Name() string {
	return analyzerHeuristic
}

// Close releases resources. The stub holds none.
func (h *Heuristic) Close() error {
	return nil
}

// Verify Heuristic implements Analyzer at compile time.
var _ Analyzer = (*Heuristic)(nil)
