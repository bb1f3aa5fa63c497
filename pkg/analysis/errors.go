package analysis

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	// ErrNoAPIKey is returned when an API key is required but missing.
	ErrNoAPIKey = errors.New("analysis: API key required")

	// ErrNoImage is returned when the input image is empty.
	ErrNoImage = errors.New("analysis: empty image")

	// ErrDecodeFailure is returned when the image cannot be decoded.
	ErrDecodeFailure = errors.New("analysis: image decode failed")

	// ErrUnavailable is returned when a backend cannot run,
	// e.g. the local heuristic in a build without the gocv tag.
	ErrUnavailable = errors.New("analysis: backend unavailable")

	// ErrBadResponse is returned when a remote backend replies with
	// something that does not contain container counts.
	ErrBadResponse = errors.New("analysis: unparseable backend response")
)

// AnalyzerError wraps an error with backend context.
type AnalyzerError struct {
	Analyzer string
	Err      error
}

// Error implements the error interface.
func (e *AnalyzerError) Error() string {
	return fmt.Sprintf("analysis [%s]: %v", e.Analyzer, e.Err)
}

// Unwrap returns the underlying error.
func (e *AnalyzerError) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with backend context.
func WrapError(analyzer string, err error) error {
	if err == nil {
		return nil
	}
	return &AnalyzerError{Analyzer: analyzer, Err: err}
}

// ChainError aggregates errors from all backends in a chain.
type ChainError struct {
	Errors []error
}

// Error implements the error interface.
func (e *ChainError) Error() string {
	if len(e.Errors) == 0 {
		return "analysis chain: no errors recorded"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("analysis chain: %v", e.Errors[0])
	}
	return fmt.Sprintf("analysis chain: all %d backends failed, last error: %v",
		len(e.Errors), e.Errors[len(e.Errors)-1])
}

// Unwrap returns the last error in the chain.
func (e *ChainError) Unwrap() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[len(e.Errors)-1]
}
