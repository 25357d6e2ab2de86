package services

import "time"

// Clock supplies the current time to the submission guard. Injected so the
// timing-window checks are deterministic under test.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// NewRealClock returns a Clock backed by the system time in UTC.
func NewRealClock() Clock {
	return realClock{}
}
