package mysensors

import "time"

// TimeProvider is the clock injected into the node core. Every blocking wait
// in the core paces itself through this interface so tests can run the
// cooperative loops against a mock clock.
type TimeProvider interface {
	// Now returns the current time.
	Now() time.Time
	// Sleep pauses the calling goroutine for d.
	Sleep(d time.Duration)
}

// RealTimeProvider implements TimeProvider using the system clock.
type RealTimeProvider struct{}

// Now returns the current system time.
func (RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Sleep pauses using the standard library.
func (RealTimeProvider) Sleep(d time.Duration) {
	time.Sleep(d)
}
