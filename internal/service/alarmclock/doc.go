// Package alarmclock runs the bedside alarm on a host.
//
// Run wires the simulated hardware, the counter store and the panel gRPC
// server, then repeats wake sessions: each session reads the wake cause,
// drives the state machine at a fixed poll period and ends in standby.
package alarmclock
