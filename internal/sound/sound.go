// Package sound plays short tones for game events.
package sound

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"

	"github.com/amalg/go-snake/internal/game"
)

const sampleRate = beep.SampleRate(44100)

// Tone is a sine beep.
type Tone struct {
	Freq     float64
	Duration time.Duration
}

var (
	eatTone  = Tone{Freq: 880, Duration: 50 * time.Millisecond}
	winTone  = Tone{Freq: 1320, Duration: 400 * time.Millisecond}
	loseTone = Tone{Freq: 220, Duration: 300 * time.Millisecond}
)

// ToneFor returns the tone that belongs to a frame, if any.
func ToneFor(f game.Frame) (Tone, bool) {
	switch {
	case f.Reset:
		return Tone{}, false
	case f.Status == game.StatusWon:
		return winTone, true
	case f.Status == game.StatusLost:
		return loseTone, true
	case f.Ate:
		return eatTone, true
	}
	return Tone{}, false
}

// Streamer builds a finite streamer for the tone.
func (t Tone) Streamer() (beep.Streamer, error) {
	sine, err := generators.SineTone(sampleRate, t.Freq)
	if err != nil {
		return nil, err
	}
	return beep.Take(sampleRate.N(t.Duration), sine), nil
}

// Player is a game.Observer that beeps on the speaker.
type Player struct {
	mu    sync.Mutex
	ready bool
	play  func(beep.Streamer)
}

// NewPlayer initialises the speaker. A missing audio device is not fatal:
// the returned player stays silent and the error is reported.
func NewPlayer() (*Player, error) {
	play, err := openSpeaker()
	if err != nil {
		return &Player{}, err
	}
	return &Player{ready: true, play: play}, nil
}

// ObserveFrame implements game.Observer.
func (p *Player) ObserveFrame(f game.Frame, _ time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready {
		return
	}
	tone, ok := ToneFor(f)
	if !ok {
		return
	}
	s, err := tone.Streamer()
	if err != nil {
		return
	}
	p.play(s)
}

// Close releases the speaker.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ready {
		closeSpeaker()
		p.ready = false
	}
}
