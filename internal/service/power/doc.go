// Package power decides when the device may enter standby and performs the
// hand-off: commit the alarm, arm wake sources, suspend.
package power
