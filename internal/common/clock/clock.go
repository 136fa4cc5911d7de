package clock

import "time"

//go:generate mockgen -package=mocks -destination=mocks/mock_clock.go github.com/KirkDiggler/blacksheep/internal/common/clock Clock
type Clock interface {
	Now() time.Time

	// AfterFunc runs f in its own goroutine once d has elapsed
	AfterFunc(d time.Duration, f func())
}

// DefaultClock implements the Clock interface using the system clock
type DefaultClock struct{}

// New returns the system clock
func New() *DefaultClock {
	return &DefaultClock{}
}

// Now returns the current time
func (c *DefaultClock) Now() time.Time {
	return time.Now()
}

// AfterFunc schedules f on a runtime timer. The timer is never stopped.
func (c *DefaultClock) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}
