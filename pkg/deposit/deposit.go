// Package deposit computes container-deposit refund values.
//
// All amounts are integer minor currency units (cents) to avoid
// floating-point rounding in money math. Rates are fixed at startup
// and injected into the capture session; they are never mutated.
package deposit

import "fmt"

// Default per-container refunds in cents.
const (
	DefaultBottleCents = 5
	DefaultCanCents    = 5
)

// Rates holds the per-container refund amounts in cents.
type Rates struct {
	BottleCents int
	CanCents    int
}

// DefaultRates returns the standard five-cent bottle and can rates.
func DefaultRates() Rates {
	return Rates{
		BottleCents: DefaultBottleCents,
		CanCents:    DefaultCanCents,
	}
}

// Validate checks that the rates are usable.
func (r Rates) Validate() error {
	if r.BottleCents < 0 {
		return fmt.Errorf("deposit: bottle rate must be non-negative, got %d", r.BottleCents)
	}
	if r.CanCents < 0 {
		return fmt.Errorf("deposit: can rate must be non-negative, got %d", r.CanCents)
	}
	return nil
}

// Value returns the refund for the given container counts in cents.
// Negative counts are treated as zero so a bad detection can never
// produce a negative refund.
func (r Rates) Value(bottles, cans int) int {
	if bottles < 0 {
		bottles = 0
	}
	if cans < 0 {
		cans = 0
	}
	return bottles*r.BottleCents + cans*r.CanCents
}

// Format renders a cent amount as a dollar string, e.g. 25 -> "$0.25".
func Format(cents int) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
