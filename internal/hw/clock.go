package hw

import (
	"sync"
	"time"
)

// OffsetClock reports a base clock shifted by the correction from the last
// Set, in a fixed display zone.
type OffsetClock struct {
	mu     sync.Mutex
	base   func() time.Time
	offset time.Duration
	zone   *time.Location
}

// NewOffsetClock wraps base (time.Now when nil) and reports times in zone
// (UTC when nil).
func NewOffsetClock(base func() time.Time, zone *time.Location) *OffsetClock {
	if base == nil {
		base = time.Now
	}
	if zone == nil {
		zone = time.UTC
	}
	return &OffsetClock{base: base, zone: zone}
}

// Now returns the corrected time in the display zone.
func (c *OffsetClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.base().Add(c.offset).In(c.zone)
}

// Set records t as the current time.
func (c *OffsetClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = t.Sub(c.base())
}

// Offset returns the correction applied to the base clock.
func (c *OffsetClock) Offset() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offset
}

// Zone returns the display zone.
func (c *OffsetClock) Zone() *time.Location { return c.zone }
