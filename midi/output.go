package midi

import (
	"math"
	"sync"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-chordbox/debug"
)

const (
	defaultVelocity uint8 = 100
	ccAllNotesOff   uint8 = 123

	// synths default to a bend range of +/-2 semitones
	bendPerSemitone = 4096
)

// Output plays notes on an external synth. Frequencies are sent as the nearest
// key plus channel pitch bend.
type Output struct {
	port    drivers.Out
	send    func(gomidi.Message) error
	channel uint8

	mu       sync.Mutex
	timers   map[*time.Timer]struct{}
	on       map[uint8]int // sounding keys, by number of overlapping notes
	bend     int16
	gen      uint64
	velocity uint8
}

// NewOutput opens port and sends on channel 1-16
func NewOutput(port drivers.Out, channel int) (*Output, error) {
	send, err := gomidi.SendTo(port)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.WithDesc("open "+port.String(), "Could not open MIDI output "+port.String()))
	}
	o := newOutput(send, channel)
	o.port = port
	debug.Log("midi", "output %s ch=%d", port.String(), channel)
	return o, nil
}

func newOutput(send func(gomidi.Message) error, channel int) *Output {
	return &Output{
		send:     send,
		channel:  uint8(min(max(channel, 1), 16) - 1),
		timers:   make(map[*time.Timer]struct{}),
		on:       make(map[uint8]int),
		velocity: defaultVelocity,
	}
}

// NoteFor converts a frequency to the nearest MIDI key and the pitch bend that
// corrects the remainder.
func NoteFor(freq float64) (key uint8, bend int16) {
	n := 69 + 12*math.Log2(freq/440)
	k := math.Round(n)
	switch {
	case k < 0:
		return 0, 0
	case k > 127:
		return 127, 0
	}
	return uint8(k), int16(math.Round((n - k) * bendPerSemitone))
}

func (o *Output) TriggerNote(freq float64, dur time.Duration, at time.Time) {
	key, bend := NoteFor(freq)
	delay := max(time.Until(at), 0)

	o.mu.Lock()
	defer o.mu.Unlock()

	gen, vel := o.gen, o.velocity
	o.schedule(delay, func() { o.noteOn(gen, key, bend, vel) })
	o.schedule(delay+dur, func() { o.noteOff(gen, key) })
}

// schedule must be called with o.mu held; fn runs with o.mu held
func (o *Output) schedule(d time.Duration, fn func()) {
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.timers, t)
		fn()
	})
	o.timers[t] = struct{}{}
}

func (o *Output) noteOn(gen uint64, key uint8, bend int16, vel uint8) {
	if gen != o.gen {
		return
	}
	if bend != o.bend {
		o.write(gomidi.Pitchbend(o.channel, bend))
		o.bend = bend
	}
	o.write(gomidi.NoteOn(o.channel, key, vel))
	o.on[key]++
}

func (o *Output) noteOff(gen uint64, key uint8) {
	if gen != o.gen || o.on[key] == 0 {
		return
	}
	o.on[key]--
	if o.on[key] == 0 {
		delete(o.on, key)
		o.write(gomidi.NoteOff(o.channel, key))
	}
}

func (o *Output) write(msg gomidi.Message) {
	if err := o.send(msg); err != nil {
		debug.Log("midi", "send %s: %v", msg, err)
	}
}

// SetVolume scales the velocity of notes triggered from now on. Level 0 still
// sends velocity 1, since velocity 0 means note off.
func (o *Output) SetVolume(level float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.velocity = uint8(max(math.Round(min(max(level, 0), 1)*127), 1))
}

// Volume returns the velocity as a level
func (o *Output) Volume() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return float64(o.velocity) / 127
}

// Cancel drops pending notes and releases sounding ones
func (o *Output) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.gen++
	for t := range o.timers {
		t.Stop()
	}
	clear(o.timers)

	for key := range o.on {
		o.write(gomidi.NoteOff(o.channel, key))
	}
	clear(o.on)
	o.write(gomidi.ControlChange(o.channel, ccAllNotesOff, 0))
}

// Close cancels and closes the port
func (o *Output) Close() error {
	o.Cancel()
	if o.port != nil {
		return o.port.Close()
	}
	return nil
}
