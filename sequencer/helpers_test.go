package sequencer

import (
	"sync"
	"time"

	"go-chordbox/theory"
)

type triggered struct {
	freq float64
	dur  time.Duration
	at   time.Time
}

// fakeInstrument records every call
type fakeInstrument struct {
	mu      sync.Mutex
	notes   []triggered
	cancels int
}

func (f *fakeInstrument) TriggerNote(freq float64, dur time.Duration, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes = append(f.notes, triggered{freq: freq, dur: dur, at: at})
}

func (f *fakeInstrument) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
}

func (f *fakeInstrument) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.notes)
}

func (f *fakeInstrument) snapshot() []triggered {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]triggered, len(f.notes))
	copy(out, f.notes)
	return out
}

func entriesOf(chords ...theory.Chord) []Entry {
	out := make([]Entry, len(chords))
	for i, c := range chords {
		out[i] = NewEntry(c)
	}
	return out
}

// drain returns every event currently buffered
func drain(sub *Subscription) []Event {
	var out []Event
	for {
		select {
		case e := <-sub.Events:
			out = append(out, e)
		default:
			return out
		}
	}
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

func nowPlayingIndexes(events []Event) []int {
	var out []int
	for _, e := range events {
		if e.Kind == EventNowPlaying {
			out = append(out, e.Index)
		}
	}
	return out
}
