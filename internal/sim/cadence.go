package sim

import "time"

// Cadence gates a periodic action on the simulated clock.
type Cadence struct {
	interval time.Duration
	last     time.Time
	fired    bool
}

// NewCadence fires at most rate times per second.
func NewCadence(rate int) *Cadence {
	if rate <= 0 {
		rate = DefaultNetworkRate
	}
	return &Cadence{interval: time.Second / time.Duration(rate)}
}

func (c *Cadence) Interval() time.Duration {
	return c.interval
}

// Due reports whether at least one interval has passed since the last firing
// and records now as the new firing when it has. The first call is always due.
func (c *Cadence) Due(now time.Time) bool {
	if c.fired && now.Sub(c.last) < c.interval {
		return false
	}
	c.fired = true
	c.last = now
	return true
}

// Reset makes the next call to Due fire.
func (c *Cadence) Reset() {
	c.fired = false
	c.last = time.Time{}
}
