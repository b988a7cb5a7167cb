package alarm

import (
	"errors"
	"fmt"
	"strings"
)

// WakeCause is the hardware-reported reason the device resumed.
type WakeCause int

const (
	// WakeColdBoot means power-on or an unknown wake reason.
	WakeColdBoot WakeCause = iota
	// WakeTimerMatch means the clock alarm register matched.
	WakeTimerMatch
	// WakeManualButton means a control button woke the device.
	WakeManualButton
)

// errUnknownWakeCause is returned when a wake cause name cannot be parsed.
var errUnknownWakeCause = errors.New("unknown wake cause")

// String returns the short name used in logs, config and CLI flags.
func (w WakeCause) String() string {
	switch w {
	case WakeTimerMatch:
		return "timer"
	case WakeManualButton:
		return "button"
	default:
		return "cold"
	}
}

// ParseWakeCause converts a CLI or state-file value into a WakeCause.
// An empty string is a cold boot.
func ParseWakeCause(s string) (WakeCause, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cold", "coldboot":
		return WakeColdBoot, nil
	case "timer", "timermatch":
		return WakeTimerMatch, nil
	case "button", "manualbutton":
		return WakeManualButton, nil
	default:
		return WakeColdBoot, fmt.Errorf("%q: %w", s, errUnknownWakeCause)
	}
}

// WakeSources is a set of sources armed before standby.
type WakeSources uint8

const (
	// WakeOnTimer arms the clock alarm-match interrupt.
	WakeOnTimer WakeSources = 1 << iota
	// WakeOnButtons arms every control button as an OR-wakeup source.
	WakeOnButtons
)

// Has reports whether all sources in other are armed.
func (s WakeSources) Has(other WakeSources) bool {
	return s&other == other
}

// String lists the armed sources, e.g. "timer+buttons".
func (s WakeSources) String() string {
	var parts []string

	if s.Has(WakeOnTimer) {
		parts = append(parts, "timer")
	}

	if s.Has(WakeOnButtons) {
		parts = append(parts, "buttons")
	}

	if len(parts) == 0 {
		return "none"
	}

	return strings.Join(parts, "+")
}
