package synth

import (
	"math"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/generators"
)

// Envelope shape. Roughly a plucked pad: fast attack, short decay, long sustain.
const (
	attackTime  = 5 * time.Millisecond
	decayTime   = 100 * time.Millisecond
	releaseTime = 250 * time.Millisecond
	sustain     = 0.5

	// up to five notes of a chord overlap, keep the sum under full scale
	voiceGain = 0.25
)

// newVoice builds one note: delay samples of silence, then dur of an enveloped
// sine at freq. level is 0.0-1.0.
func newVoice(sr beep.SampleRate, freq float64, dur, delay time.Duration, level float64) (beep.Streamer, error) {
	tone, err := generators.SineTone(sr, freq)
	if err != nil {
		return nil, err
	}

	n := sr.N(dur)
	note := &effects.Volume{
		Streamer: newEnvelope(beep.Take(n, tone), sr, n),
		Base:     2,
		Volume:   levelToVolume(level),
		Silent:   level <= 0,
	}

	if delay <= 0 {
		return note, nil
	}
	return beep.Seq(beep.Silence(sr.N(delay)), note), nil
}

// levelToVolume maps 0.0-1.0 onto beep's base-2 scale: 1.0 -> 0, 0.5 -> -1
func levelToVolume(level float64) float64 {
	switch {
	case level <= 0:
		return -10
	case level >= 1:
		return 0
	}
	return math.Log2(level)
}

type envelope struct {
	s     beep.Streamer
	pos   int
	total int

	attack  int
	decay   int
	release int
}

func newEnvelope(s beep.Streamer, sr beep.SampleRate, total int) *envelope {
	return &envelope{
		s:       s,
		total:   total,
		attack:  max(1, sr.N(attackTime)),
		decay:   max(1, sr.N(decayTime)),
		release: max(1, min(sr.N(releaseTime), total/4)),
	}
}

func (e *envelope) Stream(samples [][2]float64) (int, bool) {
	n, ok := e.s.Stream(samples)
	for i := range samples[:n] {
		g := e.gain(e.pos)
		samples[i][0] *= g
		samples[i][1] *= g
		e.pos++
	}
	return n, ok
}

func (e *envelope) Err() error {
	return e.s.Err()
}

func (e *envelope) gain(pos int) float64 {
	var g float64
	switch {
	case pos < e.attack:
		g = float64(pos) / float64(e.attack)
	case pos < e.attack+e.decay:
		g = 1 - (1-sustain)*float64(pos-e.attack)/float64(e.decay)
	default:
		g = sustain
	}

	if left := e.total - pos; left < e.release {
		g *= float64(left) / float64(e.release)
	}
	return g * voiceGain
}
