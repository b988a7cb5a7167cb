package alarm

import (
	"errors"
	"fmt"
)

// ButtonID identifies one of the three control buttons.
type ButtonID int

const (
	// Button1 is the left button, it moves the alarm earlier.
	Button1 ButtonID = iota + 1
	// Button2 is the middle button: long snooze, alarm disable.
	Button2
	// Button3 is the right button, it moves the alarm later.
	Button3
)

// errUnknownButton is returned for identifiers outside 1..3.
var errUnknownButton = errors.New("unknown button")

// AllButtons returns every control button in order.
func AllButtons() []ButtonID {
	return []ButtonID{Button1, Button2, Button3}
}

// ParseButton validates a numeric button identifier.
func ParseButton(n int) (ButtonID, error) {
	id := ButtonID(n)
	if id < Button1 || id > Button3 {
		return 0, fmt.Errorf("button %d: %w", n, errUnknownButton)
	}

	return id, nil
}

// String returns "button-N".
func (b ButtonID) String() string {
	return fmt.Sprintf("button-%d", int(b))
}
