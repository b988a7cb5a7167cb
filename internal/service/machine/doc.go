// Package machine implements the ringing and snooze state machine.
//
// A Machine is driven by one Step call per poll tick. It owns the runtime
// state, the active snooze session and a cached copy of the escalation
// counter; the alarm time itself stays with the scheduler.Engine.
package machine
