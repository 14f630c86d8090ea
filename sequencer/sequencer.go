package sequencer

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"go-chordbox/debug"
	"go-chordbox/theory"
)

// Playback timing. Tempo is fixed.
const (
	MeasureLength = 1500 * time.Millisecond // one chord per measure
	ArpeggioDelay = 50 * time.Millisecond   // stagger between notes of a chord
	NoteLength    = MeasureLength * 9 / 8   // notes ring into the next chord
)

// State is a snapshot of playback
type State struct {
	Playing bool `json:"playing"`
	Repeat  bool `json:"repeat"`
	Cursor  int  `json:"cursor"`  // next position to trigger, -1 when stopped
	Current int  `json:"current"` // position in the played sequence, -1 when none
	Length  int  `json:"length"`  // length of the sequence being played

	// CurrentID identifies the sounding entry. Edits made after a natural
	// finish shift positions, so front ends highlight by ID.
	CurrentID uuid.UUID `json:"current_id"`
}

// Sequencer plays a list of chords, one per measure, arpeggiated.
type Sequencer struct {
	inst Instrument
	hub  *hub

	mu       sync.Mutex
	entries  []Entry
	freqs    [][]float64
	cursor   int
	current  int
	playing  bool
	finished bool // last chord rang out naturally, highlight still shown
	repeat   bool
	gen      uint64 // bumped on every start/stop; stale ticks compare against it
	loop     *Loop
}

// NewSequencer creates a stopped sequencer driving inst
func NewSequencer(inst Instrument) *Sequencer {
	return &Sequencer{
		inst:    inst,
		hub:     newHub(),
		cursor:  -1,
		current: -1,
	}
}

// Subscribe returns a subscription to playback events
func (s *Sequencer) Subscribe() *Subscription {
	return s.hub.subscribe()
}

// Unsubscribe stops delivery and closes sub.Done
func (s *Sequencer) Unsubscribe(sub *Subscription) {
	s.hub.unsubscribe(sub)
}

// Start begins playback of entries. It is a no-op when already playing or
// when entries is empty. The entries are copied; later edits do not affect playback.
func (s *Sequencer) Start(entries []Entry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.playing || len(entries) == 0 {
		return false
	}

	s.entries = make([]Entry, len(entries))
	copy(s.entries, entries)
	s.freqs = make([][]float64, len(entries))
	for i, e := range entries {
		s.freqs[i] = e.Frequencies()
	}

	s.playing = true
	s.finished = false
	s.cursor = 0
	s.current = -1
	s.gen++
	gen := s.gen
	s.loop = StartLoop(MeasureLength, func(at time.Time) bool {
		return s.tick(gen, at)
	})

	debug.Log("seq", "start len=%d repeat=%v", len(entries), s.repeat)
	return true
}

// tick triggers the chord under the cursor and advances. Returns false when
// the loop should end.
func (s *Sequencer) tick(gen uint64, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.playing || s.gen != gen {
		return false
	}

	idx := s.cursor
	for j, f := range s.freqs[idx] {
		s.inst.TriggerNote(f, NoteLength, at.Add(time.Duration(j)*ArpeggioDelay))
	}
	s.current = idx

	entry := s.entries[idx]
	s.hub.publish(Event{
		Kind:   EventNowPlaying,
		Index:  idx,
		Entry:  &entry,
		Repeat: s.repeat,
		Length: len(s.entries),
	})
	debug.Log("seq", "tick idx=%d chord=%s", idx, entry.Chord)

	n := len(s.entries)
	switch {
	case s.repeat:
		s.cursor = (idx + 1) % n
		return true
	case idx+1 < n:
		s.cursor = idx + 1
		return true
	}

	// Final chord with repeat off: stop scheduling, let the notes ring.
	s.playing = false
	s.finished = true
	s.cursor = -1
	s.loop = nil
	s.hub.publish(Event{Kind: EventFinished, Index: idx, Repeat: s.repeat, Length: n})
	debug.Log("seq", "finished after idx=%d", idx)
	return false
}

// Stop cancels playback and silences the instrument. Safe to call any time;
// once it returns no further notes are triggered.
func (s *Sequencer) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inst.Cancel()

	if !s.playing && !s.finished {
		return false
	}

	wasPlaying := s.playing
	s.playing = false
	s.finished = false
	s.gen++
	if s.loop != nil {
		s.loop.Cancel()
		s.loop = nil
	}
	s.cursor = -1
	s.current = -1

	s.hub.publish(Event{Kind: EventStopped, Index: -1, Repeat: s.repeat, Length: len(s.entries)})
	debug.Log("seq", "stop (was playing=%v)", wasPlaying)
	return wasPlaying
}

// SetRepeat changes the repeat flag. Ignored while playing.
func (s *Sequencer) SetRepeat(on bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setRepeatLocked(on)
}

// ToggleRepeat flips the repeat flag. Ignored while playing.
func (s *Sequencer) ToggleRepeat() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setRepeatLocked(!s.repeat)
}

func (s *Sequencer) setRepeatLocked(on bool) bool {
	if s.playing {
		return false
	}
	if s.repeat != on {
		s.repeat = on
		s.hub.publish(Event{Kind: EventRepeatChanged, Index: s.current, Repeat: on, Length: len(s.entries)})
	}
	return true
}

// IsPlaying reports whether the loop is running
func (s *Sequencer) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Repeat returns the repeat flag
func (s *Sequencer) Repeat() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repeat
}

// State returns a snapshot of playback
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		Playing: s.playing,
		Repeat:  s.repeat,
		Cursor:  s.cursor,
		Current: s.current,
	}
	if s.playing || s.finished {
		st.Length = len(s.entries)
	}
	if s.current >= 0 && s.current < len(s.entries) {
		st.CurrentID = s.entries[s.current].ID
	}
	return st
}

// Playing returns the chords of the running (or just finished) playback
func (s *Sequencer) Playing() []theory.Chord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing && !s.finished {
		return nil
	}
	return chordsOf(s.entries)
}
