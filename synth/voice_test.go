package synth

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRate = beep.SampleRate(44100)

func render(t *testing.T, s beep.Streamer) [][2]float64 {
	t.Helper()
	var out [][2]float64
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			break
		}
		require.Less(t, len(out), int(testRate)*10, "streamer never ended")
	}
	require.NoError(t, s.Err())
	return out
}

func peak(samples [][2]float64) float64 {
	var p float64
	for _, s := range samples {
		p = max(p, math.Abs(s[0]), math.Abs(s[1]))
	}
	return p
}

func TestVoiceLength(t *testing.T) {
	v, err := newVoice(testRate, 440, 100*time.Millisecond, 50*time.Millisecond, 1)
	require.NoError(t, err)

	out := render(t, v)

	assert.Len(t, out, testRate.N(150*time.Millisecond))
	assert.Zero(t, peak(out[:testRate.N(50*time.Millisecond)]), "delay must be silent")
}

func TestVoiceWithoutDelay(t *testing.T) {
	v, err := newVoice(testRate, 440, 100*time.Millisecond, -20*time.Millisecond, 1)
	require.NoError(t, err)

	out := render(t, v)

	assert.Len(t, out, testRate.N(100*time.Millisecond))
}

func TestVoiceAmplitude(t *testing.T) {
	v, err := newVoice(testRate, 261.63, time.Second, 0, 1)
	require.NoError(t, err)

	out := render(t, v)

	p := peak(out)
	assert.LessOrEqual(t, p, voiceGain+1e-9)
	assert.Greater(t, p, voiceGain*0.9)
	assert.InDelta(t, 0, out[0][0], 1e-9)
	assert.Less(t, peak(out[len(out)-10:]), 0.01, "tail must release")
}

func TestVoiceSilentAtZeroLevel(t *testing.T) {
	v, err := newVoice(testRate, 440, 50*time.Millisecond, 0, 0)
	require.NoError(t, err)

	assert.Zero(t, peak(render(t, v)))
}

func TestVoiceRejectsFrequencyAboveNyquist(t *testing.T) {
	_, err := newVoice(testRate, 30000, time.Second, 0, 1)
	assert.Error(t, err)
}

func TestLevelToVolume(t *testing.T) {
	tests := []struct {
		level float64
		want  float64
	}{
		{1, 0},
		{2, 0},
		{0.5, -1},
		{0.25, -2},
		{0, -10},
		{-1, -10},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, levelToVolume(tt.level), 1e-9, "level %v", tt.level)
	}
}

func TestEnvelopeShape(t *testing.T) {
	total := testRate.N(time.Second)
	e := newEnvelope(nil, testRate, total)

	assert.Zero(t, e.gain(0))
	assert.InDelta(t, voiceGain, e.gain(e.attack), 1e-9)
	assert.InDelta(t, voiceGain*sustain, e.gain(e.attack+e.decay), 1e-9)
	assert.InDelta(t, voiceGain*sustain, e.gain(total/2), 1e-9)
	assert.Less(t, e.gain(total-1), voiceGain*sustain*0.01)
}

func TestEnvelopeReleaseFitsShortNotes(t *testing.T) {
	e := newEnvelope(nil, testRate, 400)

	assert.Equal(t, 100, e.release)
}
