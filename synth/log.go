package synth

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"go-chordbox/debug"
)

// Log is a silent instrument that prints every trigger. Used for --output log
// and on machines without an audio device.
type Log struct {
	mu    sync.Mutex
	w     io.Writer
	start time.Time
}

// NewLog writes triggers to w. A nil w only writes to the debug log.
func NewLog(w io.Writer) *Log {
	return &Log{w: w}
}

func (l *Log) TriggerNote(freq float64, dur time.Duration, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.start.IsZero() {
		l.start = at
	}
	offset := at.Sub(l.start).Round(time.Millisecond)

	debug.Log("synth", "note %.2fHz dur=%s at=+%s", freq, dur, offset)
	if l.w != nil {
		fmt.Fprintf(l.w, "+%-8s %8s Hz  %s\n", offset, humanize.FtoaWithDigits(freq, 2), dur)
	}
}

// Cancel resets the time origin; the next trigger prints as +0s
func (l *Log) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.start.IsZero() && l.w != nil {
		fmt.Fprintln(l.w, "-- cancel")
	}
	l.start = time.Time{}
	debug.Log("synth", "cancel")
}
