// Package scheduler owns the alarm time and the adjustment lock.
//
// It validates adjustment requests against the locked window before the
// alarm, and commits the next occurrence to the clock's alarm register once
// per suspend cycle.
package scheduler
