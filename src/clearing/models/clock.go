package models

import (
	"time"
)

// Clock supplies the current time for expiry checks. Ledgers never read the
// wall clock directly so tests and simulations can drive time themselves.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

// SimulatedClock is a manually advanced clock.
type SimulatedClock struct {
	CurrentTime time.Time
}

func NewSimulatedClock(startTime time.Time) *SimulatedClock {
	return &SimulatedClock{
		CurrentTime: startTime,
	}
}

func (c *SimulatedClock) Now() time.Time {
	return c.CurrentTime
}

func (c *SimulatedClock) Add(timeToAdd time.Duration) {
	c.CurrentTime = c.CurrentTime.Add(timeToAdd)
}
