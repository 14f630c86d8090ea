package sequencer

import "time"

// Instrument sounds notes for the sequencer. TriggerNote must not block and
// must not call back into the sequencer; it is invoked with the sequencer locked.
type Instrument interface {
	// TriggerNote schedules freq to start at at and ring for dur.
	TriggerNote(freq float64, dur time.Duration, at time.Time)
	// Cancel drops every scheduled or sounding note.
	Cancel()
}
