// Package rotation computes token rotation epochs and grace windows.
//
// Time never enters the registry or the authority directly: both receive
// instants from an injected Clock and epoch arithmetic from a Policy, so
// rotation boundaries can be simulated in tests without waiting on real
// clocks.
package rotation

import (
	"fmt"
	"time"
)

// Policy defines how wall-clock time maps to rotation epochs.
type Policy struct {
	// Reference is the instant of epoch 0. Instants before it map to
	// negative epochs.
	Reference time.Time

	// Period is the length of one epoch. Must be positive.
	Period time.Duration

	// Grace is the span after a rotation during which the previous
	// epoch's token remains acceptable, absorbing clock skew and
	// in-flight rotation propagation.
	Grace time.Duration
}

// DefaultPeriod is one week.
const DefaultPeriod = 7 * 24 * time.Hour

// Validate checks that the policy is usable.
func (p Policy) Validate() error {
	if p.Period <= 0 {
		return fmt.Errorf("rotation period must be positive, got %v", p.Period)
	}
	if p.Grace < 0 {
		return fmt.Errorf("grace window must not be negative, got %v", p.Grace)
	}
	if p.Reference.IsZero() {
		return fmt.Errorf("reference instant is required")
	}
	return nil
}

// EpochOf returns the epoch containing t: floor((t - Reference) / Period).
func (p Policy) EpochOf(t time.Time) int64 {
	d := t.Sub(p.Reference)
	e := int64(d / p.Period)
	if d < 0 && d%p.Period != 0 {
		e--
	}
	return e
}

// GraceWindow returns the configured grace duration.
func (p Policy) GraceWindow() time.Duration {
	return p.Grace
}
