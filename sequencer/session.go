package sequencer

import (
	"sync"

	"go-chordbox/debug"
	"go-chordbox/theory"
)

// Session is the editing surface front ends drive: the chord list, the
// selected chord type and the sequencer that plays them. Every edit is
// refused while the sequencer is playing.
type Session struct {
	seq *Sequencer
	gen *theory.Generator

	mu       sync.Mutex
	entries  []Entry
	selected theory.ChordType
}

// Snapshot is the whole session state at one instant
type Snapshot struct {
	Entries  []Entry          `json:"entries"`
	Selected theory.ChordType `json:"selected"`
	State    State            `json:"state"`
}

// NewSession creates an empty session. gen may be nil for a randomly seeded generator.
func NewSession(seq *Sequencer, gen *theory.Generator) *Session {
	if gen == nil {
		gen = theory.NewGenerator()
	}
	return &Session{
		seq:      seq,
		gen:      gen,
		selected: theory.DefaultType,
	}
}

// Sequencer returns the sequencer the session plays through
func (s *Session) Sequencer() *Sequencer {
	return s.seq
}

// Subscribe returns a subscription to session and playback events
func (s *Session) Subscribe() *Subscription {
	return s.seq.Subscribe()
}

// Unsubscribe stops delivery to sub
func (s *Session) Unsubscribe(sub *Subscription) {
	s.seq.Unsubscribe(sub)
}

// AddChord appends root with the selected chord type
func (s *Session) AddChord(root theory.Note) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.appendLocked(theory.Chord{Root: root.Wrap(), Type: s.selected})
	return ok
}

// AddChordOf appends an explicit chord
func (s *Session) AddChordOf(c theory.Chord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.Root = c.Root.Wrap()
	_, ok := s.appendLocked(c)
	return ok
}

// AddRandom appends a generated chord that follows the last one, and selects
// its type the way a user pick would.
func (s *Session) AddRandom() (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seq.IsPlaying() {
		return Entry{}, false
	}

	c := s.gen.Next(chordsOf(s.entries))
	s.selectLocked(c.Type)
	return s.appendLocked(c)
}

func (s *Session) appendLocked(c theory.Chord) (Entry, bool) {
	if s.seq.IsPlaying() {
		debug.Log("edit", "add %s ignored while playing", c)
		return Entry{}, false
	}

	e := NewEntry(c)
	s.entries = append(s.entries, e)
	s.seq.hub.publish(Event{
		Kind:   EventSequenceChanged,
		Index:  len(s.entries) - 1,
		Entry:  &e,
		Length: len(s.entries),
	})
	debug.Log("edit", "add %s at %d", c, len(s.entries)-1)
	return e, true
}

// RemoveChordAt deletes the entry at position i. Out of range positions are ignored.
func (s *Session) RemoveChordAt(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seq.IsPlaying() || i < 0 || i >= len(s.entries) {
		return false
	}

	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	s.seq.hub.publish(Event{Kind: EventSequenceChanged, Index: i, Length: len(s.entries)})
	debug.Log("edit", "remove %d", i)
	return true
}

// Clear removes every entry
func (s *Session) Clear() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seq.IsPlaying() {
		return false
	}
	s.entries = nil
	s.seq.hub.publish(Event{Kind: EventSequenceChanged, Index: -1})
	return true
}

// SelectType changes the type used by AddChord
func (s *Session) SelectType(t theory.ChordType) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seq.IsPlaying() {
		return false
	}
	s.selectLocked(t)
	return true
}

func (s *Session) selectLocked(t theory.ChordType) {
	if t == s.selected {
		return
	}
	s.selected = t
	s.seq.hub.publish(Event{Kind: EventTypeSelected, Index: -1, Type: t, Length: len(s.entries)})
}

// Play starts the sequencer on the current entries
func (s *Session) Play() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq.Start(s.entries)
}

// Stop stops playback
func (s *Session) Stop() bool {
	return s.seq.Stop()
}

// ToggleRepeat flips repeat; ignored while playing
func (s *Session) ToggleRepeat() bool {
	return s.seq.ToggleRepeat()
}

// SetRepeat sets repeat; ignored while playing
func (s *Session) SetRepeat(on bool) bool {
	return s.seq.SetRepeat(on)
}

// Entries returns a copy of the sequence
func (s *Session) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of entries
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Selected returns the selected chord type
func (s *Session) Selected() theory.ChordType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Snapshot returns entries, selection and playback state together
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	entries := make([]Entry, len(s.entries))
	copy(entries, s.entries)
	selected := s.selected
	s.mu.Unlock()

	return Snapshot{
		Entries:  entries,
		Selected: selected,
		State:    s.seq.State(),
	}
}
