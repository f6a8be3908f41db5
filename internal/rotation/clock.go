package rotation

import "time"

// Clock abstracts the time source so epoch computation is testable.
type Clock interface {
	// Now returns the current instant.
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns a Clock backed by the real wall clock (UTC).
func SystemClock() Clock {
	return systemClock{}
}
