package cmd

import (
	"context"
	"io"

	"go-chordbox/config"
	"go-chordbox/debug"
	"go-chordbox/midi"
	"go-chordbox/sequencer"
	"go-chordbox/synth"
)

// openInstrument opens the configured output. logOut receives triggers for
// the log output. The returned func releases the device.
func openInstrument(ctx context.Context, c *config.Config, logOut io.Writer) (sequencer.Instrument, func(), error) {
	switch c.Output {
	case config.OutputMIDI:
		port, err := midi.FindOut(ctx, c.MIDI.OutPort)
		if err != nil {
			return nil, nil, err
		}
		out, err := midi.NewOutput(port, c.MIDI.Channel)
		if err != nil {
			return nil, nil, err
		}
		return out, func() {
			out.Close()
			midi.CloseDriver()
		}, nil

	case config.OutputLog:
		return synth.NewLog(logOut), func() {}, nil

	default:
		b, err := synth.NewBeep(c.Synth)
		if err != nil {
			return nil, nil, err
		}
		return b, func() { b.Close() }, nil
	}
}

// openInstrumentOrLog falls back to a silent instrument so the UI still works
// without an audio device. The error is returned for display.
func openInstrumentOrLog(ctx context.Context, c *config.Config) (sequencer.Instrument, func(), error) {
	inst, closeFn, err := openInstrument(ctx, c, nil)
	if err != nil {
		debug.Log("cmd", "instrument %s: %v, falling back to log", c.Output, err)
		return synth.NewLog(nil), func() {}, err
	}
	return inst, closeFn, nil
}
