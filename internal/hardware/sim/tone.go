package sim

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Tone logs the alarm sound. One play lasts length, after which IsActive
// turns false as if the clip had ended.
type Tone struct {
	log    *zap.SugaredLogger
	length time.Duration
	now    func() time.Time

	mu        sync.Mutex
	playing   bool
	startedAt time.Time
	plays     int
}

// NewTone creates a tone that reports through log.
func NewTone(log *zap.SugaredLogger, length time.Duration) *Tone {
	return &Tone{
		log:    log,
		length: length,
		now:    time.Now,
	}
}

// Start implements device.Tone.
func (t *Tone) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.playing = true
	t.startedAt = t.now()
	t.plays++

	t.log.Infow("Alarm tone playing", "play", t.plays)
}

// Stop implements device.Tone.
func (t *Tone) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.playing {
		return
	}

	t.playing = false

	t.log.Info("Alarm tone stopped")
}

// IsActive implements device.Tone.
func (t *Tone) IsActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.playing && t.now().Sub(t.startedAt) < t.length
}

// Plays returns how many times the clip was started.
func (t *Tone) Plays() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.plays
}
