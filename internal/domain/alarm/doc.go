// Package alarm contains the core domain types of the bedside alarm.
//
// It defines the wake cause reported at boot, the runtime state variant with
// its snooze payload, control button identifiers, wake sources armed before
// standby, and the tunable limits that drive snooze escalation.
package alarm
