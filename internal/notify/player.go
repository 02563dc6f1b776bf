package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/gen2brain/beeep"
	"go.uber.org/zap"
)

// Player loops alarm audio until stopped
type Player interface {
	PlayLoop(sound Sound) error
	Stop()
}

// NopPlayer plays nothing
type NopPlayer struct{}

func (NopPlayer) PlayLoop(Sound) error { return nil }
func (NopPlayer) Stop()                {}

// beepFunc matches beeep.Beep
type beepFunc func(freq float64, duration int) error

const (
	defaultToneMillis   = 400
	defaultBeepInterval = 1500 * time.Millisecond
)

// BeepPlayer loops the ringtone's tone on the host speaker.
// Only one loop runs at a time. Playing another ringtone replaces the running loop.
type BeepPlayer struct {
	mu       sync.Mutex
	current  string
	stop     chan struct{}
	done     chan struct{}
	beep     beepFunc
	interval time.Duration
	toneMs   int
	logger   *zap.Logger
}

// NewBeepPlayer creates a player backed by the system beeper
func NewBeepPlayer(logger *zap.Logger) *BeepPlayer {
	return &BeepPlayer{
		beep:     beeep.Beep,
		interval: defaultBeepInterval,
		toneMs:   defaultToneMillis,
		logger:   logger,
	}
}

// PlayLoop starts looping sound. Calling it again with the playing ringtone is a no-op.
func (p *BeepPlayer) PlayLoop(sound Sound) error {
	if sound.Frequency <= 0 {
		return fmt.Errorf("ringtone %q has no tone", sound.Key)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stop != nil && p.current == sound.Key {
		return nil
	}
	p.stopLocked()

	p.current = sound.Key
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go p.loop(sound, p.stop, p.done)

	return nil
}

// Stop ends the running loop, if any
func (p *BeepPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// Playing returns the key of the looping ringtone, or an empty string
func (p *BeepPlayer) Playing() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop == nil {
		return ""
	}
	return p.current
}

func (p *BeepPlayer) stopLocked() {
	if p.stop == nil {
		return
	}
	close(p.stop)
	<-p.done
	p.stop = nil
	p.done = nil
	p.current = ""
}

func (p *BeepPlayer) loop(sound Sound, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	failed := false
	for {
		if err := p.beep(sound.Frequency, p.toneMs); err != nil && !failed {
			// logged once per loop, the speaker rarely recovers mid-alarm
			failed = true
			p.logger.Warn("alarm tone playback failed",
				zap.String("ringtone", sound.Key),
				zap.Error(err),
			)
		}

		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}
