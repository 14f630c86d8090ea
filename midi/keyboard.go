package midi

import (
	"sync"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-chordbox/theory"
)

// NoteEvent is sent when a key is pressed on a keyboard
type NoteEvent struct {
	Note     uint8
	Velocity uint8
	Channel  uint8
}

// Root is the pitch class of the key; octave is ignored
func (e NoteEvent) Root() theory.Note {
	return theory.Note(e.Note % theory.NumNotes)
}

// Keyboard turns note-on messages from an input port into NoteEvents
type Keyboard struct {
	id       string
	stopFunc func()

	mu       sync.Mutex
	closed   bool
	noteChan chan NoteEvent
}

// OpenKeyboard starts listening on inPort
func OpenKeyboard(inPort drivers.In) (*Keyboard, error) {
	kb := newKeyboard(inPort.String())

	stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
		kb.handle(msg)
	})
	if err != nil {
		return nil, fault.Wrap(err, fmsg.WithDesc("listen "+kb.id, "Could not open MIDI input "+kb.id))
	}
	kb.stopFunc = stop

	return kb, nil
}

func newKeyboard(id string) *Keyboard {
	return &Keyboard{
		id:       id,
		noteChan: make(chan NoteEvent, 32),
	}
}

func (kb *Keyboard) handle(msg gomidi.Message) {
	var channel, note, vel uint8
	if !msg.GetNoteOn(&channel, &note, &vel) || vel == 0 {
		return
	}

	kb.mu.Lock()
	defer kb.mu.Unlock()
	if kb.closed {
		return
	}
	select {
	case kb.noteChan <- NoteEvent{Note: note, Velocity: vel, Channel: channel}:
	default:
	}
}

// ID is the port name
func (kb *Keyboard) ID() string {
	return kb.id
}

// Notes delivers key presses until Close
func (kb *Keyboard) Notes() <-chan NoteEvent {
	return kb.noteChan
}

func (kb *Keyboard) Close() error {
	if kb.stopFunc != nil {
		kb.stopFunc()
	}

	kb.mu.Lock()
	defer kb.mu.Unlock()
	if !kb.closed {
		kb.closed = true
		close(kb.noteChan)
	}
	return nil
}
