package sequencer

import (
	"github.com/google/uuid"

	"go-chordbox/theory"
)

// Entry is one slot of the sequence. Entries are never modified after creation.
type Entry struct {
	ID uuid.UUID `json:"id"`
	theory.Chord
}

// NewEntry wraps a chord with a fresh identity
func NewEntry(c theory.Chord) Entry {
	return Entry{ID: uuid.New(), Chord: c}
}

func chordsOf(entries []Entry) []theory.Chord {
	out := make([]theory.Chord, len(entries))
	for i, e := range entries {
		out[i] = e.Chord
	}
	return out
}
