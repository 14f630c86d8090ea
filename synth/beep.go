package synth

import (
	"sync"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"

	"go-chordbox/config"
	"go-chordbox/debug"
)

var (
	speakerMu          sync.Mutex
	speakerInitialized bool
)

// Beep plays notes on the default audio device through the beep speaker.
type Beep struct {
	sr beep.SampleRate

	mu    sync.Mutex
	level float64
}

// NewBeep opens the speaker. The speaker is process-wide and initialized once;
// later calls reuse the first sample rate.
func NewBeep(cfg config.SynthConfig) (*Beep, error) {
	speakerMu.Lock()
	defer speakerMu.Unlock()

	sr := beep.SampleRate(cfg.SampleRate)
	if !speakerInitialized {
		if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
			return nil, fault.Wrap(err, fmsg.WithDesc("init speaker", "Could not open the audio device"))
		}
		speakerInitialized = true
		debug.Log("synth", "speaker init sr=%d", cfg.SampleRate)
	}

	return &Beep{sr: sr, level: cfg.Volume}, nil
}

// TriggerNote schedules freq to start at at and ring for dur
func (b *Beep) TriggerNote(freq float64, dur time.Duration, at time.Time) {
	b.mu.Lock()
	level := b.level
	b.mu.Unlock()

	v, err := newVoice(b.sr, freq, dur, time.Until(at), level)
	if err != nil {
		debug.Log("synth", "voice %.2fHz: %v", freq, err)
		return
	}
	speaker.Play(v)
}

// Cancel silences every sounding and pending note
func (b *Beep) Cancel() {
	speaker.Clear()
}

// SetVolume changes the level of notes triggered from now on (0.0 to 1.0)
func (b *Beep) SetVolume(level float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.level = min(max(level, 0), 1)
}

// Volume returns the current level
func (b *Beep) Volume() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.level
}

// Close silences and releases the audio device
func (b *Beep) Close() error {
	speakerMu.Lock()
	defer speakerMu.Unlock()

	speaker.Clear()
	if speakerInitialized {
		speaker.Close()
		speakerInitialized = false
	}
	return nil
}
