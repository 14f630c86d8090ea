package sequencer

import (
	"sync"

	"go-chordbox/theory"
)

const eventBufferSize = 16

// EventKind identifies what changed
type EventKind int

const (
	EventNowPlaying      EventKind = iota // a chord was just triggered
	EventStopped                          // playback stopped, nothing is highlighted
	EventFinished                         // last chord triggered with repeat off
	EventSequenceChanged                  // a chord was added or removed
	EventTypeSelected                     // the selected chord type changed
	EventRepeatChanged                    // repeat was toggled
)

var eventNames = map[EventKind]string{
	EventNowPlaying:      "now_playing",
	EventStopped:         "stopped",
	EventFinished:        "finished",
	EventSequenceChanged: "sequence_changed",
	EventTypeSelected:    "type_selected",
	EventRepeatChanged:   "repeat_changed",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown"
}

// MarshalText lets events serialize with readable kinds
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Event is a notification for front ends. Only the fields relevant to Kind are set.
type Event struct {
	Kind   EventKind        `json:"kind"`
	Index  int              `json:"index"`           // now playing position, -1 when none
	Entry  *Entry           `json:"entry,omitempty"` // now playing / added entry
	Type   theory.ChordType `json:"type,omitempty"`  // selected type
	Repeat bool             `json:"repeat"`          // repeat flag after the change
	Length int              `json:"length"`          // sequence length after the change
}

// Subscription delivers events to one subscriber.
type Subscription struct {
	Events <-chan Event
	Done   <-chan struct{}

	eventCh chan Event
	doneCh  chan struct{}
}

func newSubscription() *Subscription {
	s := &Subscription{
		eventCh: make(chan Event, eventBufferSize),
		doneCh:  make(chan struct{}),
	}
	s.Events = s.eventCh
	s.Done = s.doneCh
	return s
}

// send is non-blocking; a slow subscriber loses events rather than stalling playback
func (s *Subscription) send(e Event) {
	select {
	case s.eventCh <- e:
	default:
	}
}

// hub fans events out to subscribers
type hub struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[*Subscription]struct{})}
}

func (h *hub) subscribe() *Subscription {
	s := newSubscription()
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	return s
}

func (h *hub) unsubscribe(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; !ok {
		return
	}
	delete(h.subs, s)
	close(s.doneCh)
}

func (h *hub) publish(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		s.send(e)
	}
}
