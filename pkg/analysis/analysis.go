// Package analysis counts refundable containers in captured frames.
//
// The package abstracts the image-analysis step behind a single Analyzer
// interface so the capture session never depends on a concrete backend.
// Backends include a remote Gemini vision analyzer, a local contour
// heuristic (build tag "gocv"), a fallback chain across backends, and a
// mock for tests.
//
// Example usage:
//
//	gemini, _ := analysis.NewGemini(ctx,
//	    analysis.WithAPIKey(os.Getenv("GEMINI_API_KEY")),
//	)
//	defer gemini.Close()
//
//	result, err := gemini.Analyze(ctx, jpegFrame)
package analysis

import "context"

// Result is the outcome of analyzing a single frame.
// Counts are non-negative after Clamped; a Result is never mutated
// once committed to a capture cycle.
type Result struct {
	// Bottles is the number of refundable bottles detected.
	Bottles int `json:"bottles"`

	// Cans is the number of refundable cans detected.
	Cans int `json:"cans"`

	// Degraded marks results produced by the fallback estimator
	// rather than a real analysis pass.
	Degraded bool `json:"degraded,omitempty"`

	// Analyzer names the backend that produced the result.
	Analyzer string `json:"analyzer,omitempty"`

	// LatencyMs is the analysis time in milliseconds.
	LatencyMs int64 `json:"latency_ms,omitempty"`
}

// Clamped returns a copy with negative counts raised to zero.
// Backends that parse counts from free-form model output use this to
// guarantee the non-negativity contract.
func (r Result) Clamped() Result {
	if r.Bottles < 0 {
		r.Bottles = 0
	}
	if r.Cans < 0 {
		r.Cans = 0
	}
	return r
}

// Total returns the combined container count.
func (r Result) Total() int {
	return r.Bottles + r.Cans
}

// Analyzer is the contract for image-analysis backends.
//
// Analyze is a single-settlement operation: it returns exactly one
// result or one error per call, never both, never multiple callbacks.
// Latency is unbounded from the caller's perspective; cancellation is
// delivered through ctx.
type Analyzer interface {
	// Analyze counts containers in an encoded still image.
	Analyze(ctx context.Context, image []byte) (*Result, error)

	// Name identifies the backend for logging.
	Name() string

	// Close releases any resources held by the backend.
	Close() error
}
