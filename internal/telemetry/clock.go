package telemetry

import "time"

// Clock supplies the current time. Cache expiry runs against a Clock so
// tests can simulate TTL windows without sleeping.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }
