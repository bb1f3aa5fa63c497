package analysis

import (
	"math/rand"
	"sync"
)

// Fallback produces a degraded count estimate when every real backend
// has failed. The capture flow commits its estimate as an ordinary
// result so the user always reaches a usable state; the Degraded flag
// tells the renderer to present it honestly.
//
// By default the estimate is deterministic (one bottle, zero cans).
// Seeded mode produces a randomized guess that stays replayable from
// the seed.
type Fallback struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewFallback creates a deterministic fallback estimator.
func NewFallback() *Fallback {
	return &Fallback{}
}

// NewSeededFallback creates a randomized estimator driven by seed.
// The same seed yields the same estimate sequence.
func NewSeededFallback(seed int64) *Fallback {
	return &Fallback{rng: rand.New(rand.NewSource(seed))}
}

// Estimate returns the degraded count for one capture cycle.
// The bottle count is always at least one and no count is ever
// negative, so a fallback result still yields a visible refund.
func (f *Fallback) Estimate() Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := Result{Bottles: 1, Cans: 0}
	if f.rng != nil {
		result.Bottles = 1 + f.rng.Intn(3)
		result.Cans = f.rng.Intn(3)
	}
	result.Degraded = true
	result.Analyzer = "fallback"
	return result
}
