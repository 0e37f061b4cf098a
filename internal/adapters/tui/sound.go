package tui

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Sound reacts to game events. The zero Silent value plays nothing.
type Sound interface {
	Match()
	Victory()
	Defeat()
	Close()
}

type Silent struct{}

func (Silent) Match()   {}
func (Silent) Victory() {}
func (Silent) Defeat()  {}
func (Silent) Close()   {}

// Beeper plays short sine tones through the system speaker.
type Beeper struct {
	mu    sync.Mutex
	mixer *beep.Mixer
}

// NewBeeper opens the speaker. Callers fall back to Silent on error.
func NewBeeper() (*Beeper, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, err
	}
	b := &Beeper{mixer: &beep.Mixer{}}
	speaker.Play(b.mixer)
	return b, nil
}

func (b *Beeper) tones(d time.Duration, freqs ...float64) {
	parts := make([]beep.Streamer, 0, len(freqs))
	for _, f := range freqs {
		sine, err := generators.SineTone(sampleRate, f)
		if err != nil {
			continue
		}
		parts = append(parts, beep.Take(sampleRate.N(d), sine))
	}
	if len(parts) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	speaker.Lock()
	b.mixer.Add(beep.Seq(parts...))
	speaker.Unlock()
}

func (b *Beeper) Match()   { b.tones(60*time.Millisecond, 880) }
func (b *Beeper) Victory() { b.tones(120*time.Millisecond, 523.25, 659.25, 783.99) }
func (b *Beeper) Defeat()  { b.tones(250*time.Millisecond, 220, 196) }

func (b *Beeper) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	speaker.Lock()
	b.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
}
