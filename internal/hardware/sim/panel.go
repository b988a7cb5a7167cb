package sim

import (
	"sync"

	"github.com/oshokin/bedside-alarm/internal/device"
	domain "github.com/oshokin/bedside-alarm/internal/domain/alarm"
)

// Panel is the simulated front panel: three buttons and a token reader.
// It is written by the panel API and read by the poll loop.
type Panel struct {
	mu      sync.Mutex
	pressed map[domain.ButtonID]bool
	armed   map[domain.ButtonID]*device.EdgeFlag
	token   string
	// presses counts rising edges on any button.
	presses uint64
	// changed is closed and replaced on every input change.
	changed chan struct{}
}

// NewPanel returns a panel with every button released and no token.
func NewPanel() *Panel {
	return &Panel{
		pressed: make(map[domain.ButtonID]bool, len(domain.AllButtons())),
		armed:   make(map[domain.ButtonID]*device.EdgeFlag, len(domain.AllButtons())),
		changed: make(chan struct{}),
	}
}

// IsPressed implements device.Buttons.
func (p *Panel) IsPressed(id domain.ButtonID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.pressed[id]
}

// OnRisingEdge implements device.Buttons.
func (p *Panel) OnRisingEdge(id domain.ButtonID, flag *device.EdgeFlag) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.armed[id] = flag
}

// Detach implements device.Buttons.
func (p *Panel) Detach(id domain.ButtonID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.armed, id)
}

// Press pushes a button down. A rising edge sets the armed flag, if any.
func (p *Panel) Press(id domain.ButtonID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pressed[id] {
		return
	}

	p.pressed[id] = true
	p.presses++

	if flag := p.armed[id]; flag != nil {
		flag.Set()
	}

	p.notify()
}

// Release lets a button go.
func (p *Panel) Release(id domain.ButtonID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.pressed[id] {
		return
	}

	p.pressed[id] = false
	p.notify()
}

// PresentToken places a token with the given UID on the reader.
func (p *Panel) PresentToken(uid string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.token = uid
	p.notify()
}

// RemoveToken takes the token off the reader.
func (p *Panel) RemoveToken() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.token = ""
	p.notify()
}

// Token returns the UID on the reader.
func (p *Panel) Token() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.token, p.token != ""
}

// Pressed returns the buttons currently held, in order.
func (p *Panel) Pressed() []domain.ButtonID {
	p.mu.Lock()
	defer p.mu.Unlock()

	var held []domain.ButtonID

	for _, id := range domain.AllButtons() {
		if p.pressed[id] {
			held = append(held, id)
		}
	}

	return held
}

// Presses returns the number of rising edges seen so far.
func (p *Panel) Presses() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.presses
}

// Changed returns a channel closed on the next input change.
func (p *Panel) Changed() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.changed
}

// notify wakes the waiters of Changed; callers hold mu.
func (p *Panel) notify() {
	close(p.changed)
	p.changed = make(chan struct{})
}
