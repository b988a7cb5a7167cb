// Package sim provides host implementations of the device collaborators:
// a file-backed real-time clock, a front panel with buttons and a token
// reader, a logging tone and a standby that waits for a simulated wakeup.
//
// The panel is driven remotely through the panel gRPC API, so the alarm
// core can be exercised end to end without the bedside hardware.
package sim
