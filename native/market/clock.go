package market

import "sync/atomic"

// Clock reports the ledger's current slot.
type Clock interface {
	Slot() uint64
}

// ManualClock is a Clock moved explicitly by its owner.
type ManualClock struct {
	slot atomic.Uint64
}

// NewManualClock starts a clock at slot.
func NewManualClock(slot uint64) *ManualClock {
	c := &ManualClock{}
	c.slot.Store(slot)
	return c
}

// Slot implements Clock.
func (c *ManualClock) Slot() uint64 { return c.slot.Load() }

// Set moves the clock to slot.
func (c *ManualClock) Set(slot uint64) { c.slot.Store(slot) }

// Advance moves the clock forward by n slots and returns the new slot.
func (c *ManualClock) Advance(n uint64) uint64 { return c.slot.Add(n) }
