package device

import "sync/atomic"

// EdgeFlag is the one datum shared between interrupt context and the poll loop.
// The interrupt side only calls Set; the poll loop only calls TakeAndClear.
type EdgeFlag struct {
	pressed atomic.Bool
}

// Set marks that a rising edge happened. Safe to call from an interrupt handler.
func (f *EdgeFlag) Set() {
	f.pressed.Store(true)
}

// TakeAndClear atomically reads and resets the flag.
func (f *EdgeFlag) TakeAndClear() bool {
	return f.pressed.Swap(false)
}
