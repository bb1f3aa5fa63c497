package analysis

import (
	"context"
	"log/slog"
)

// Chain tries multiple backends in order until one succeeds.
//
// The session treats the chain as a single Analyzer: one Analyze call,
// one settlement. A backend failure inside the chain is an internal
// retry, not a second settlement.
type Chain struct {
	analyzers []Analyzer
	logger    *slog.Logger
}

// NewChain creates a backend chain.
// At least one backend is required.
func NewChain(analyzers ...Analyzer) (*Chain, error) {
	if len(analyzers) == 0 {
		return nil, ErrUnavailable
	}
	return &Chain{
		analyzers: analyzers,
		logger:    slog.Default().With("component", "analysis.chain"),
	}, nil
}

// NewChainWithLogger creates a backend chain with a custom logger.
func NewChainWithLogger(logger *slog.Logger, analyzers ...Analyzer) (*Chain, error) {
	chain, err := NewChain(analyzers...)
	if err != nil {
		return nil, err
	}
	chain.logger = logger.With("component", "analysis.chain")
	return chain, nil
}

// Analyze tries each backend until one succeeds.
func (c *Chain) Analyze(ctx context.Context, image []byte) (*Result, error) {
	var errs []error

	for i, a := range c.analyzers {
		result, err := a.Analyze(ctx, image)
		if err == nil {
			if i > 0 {
				c.logger.Info("fallback backend succeeded",
					"analyzer", a.Name(),
					"index", i,
				)
			}
			return result, nil
		}

		errs = append(errs, err)
		c.logger.Warn("backend failed, trying next",
			"analyzer", a.Name(),
			"index", i,
			"error", err,
		)

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, &ChainError{Errors: errs}
}

// Name identifies the chain for logging.
func (c *Chain) Name() string {
	return "chain"
}

// Close closes all backends.
func (c *Chain) Close() error {
	var lastErr error
	for _, a := range c.analyzers {
		if err := a.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Analyzers returns the backends in the chain.
func (c *Chain) Analyzers() []Analyzer {
	return c.analyzers
}

// Verify Chain implements Analyzer at compile time.
var _ Analyzer = (*Chain)(nil)
