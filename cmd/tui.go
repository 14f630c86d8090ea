package cmd

import (
	"context"

	"github.com/Southclaws/fault/fmsg"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"go-chordbox/midi"
	"go-chordbox/sequencer"
	"go-chordbox/theme"
	"go-chordbox/tui"
)

func runTUI(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	th, err := theme.Load(cfg.Theme.Palette)
	if err != nil {
		return err
	}

	inst, closeInst, instErr := openInstrumentOrLog(ctx, cfg)
	defer closeInst()

	seq := sequencer.NewSequencer(inst)
	seq.SetRepeat(cfg.Repeat)
	session := sequencer.NewSession(seq, nil)

	// keyboard hot-plug only when a port is configured
	var deviceMgr *midi.DeviceManager
	status := ""
	if cfg.MIDI.InPort != "" {
		if _, err := midi.FindIn(ctx, cfg.MIDI.InPort); err != nil {
			status = fmsg.GetIssue(err) + ", watching for it"
		}
		deviceMgr = midi.NewDeviceManager(cfg.MIDI.InPort)
		go deviceMgr.Run(ctx)
	}
	if instErr != nil {
		status = fmsg.GetIssue(instErr) + " (silent)"
	}

	m := tui.NewModel(session, deviceMgr, th)
	if vc, ok := inst.(tui.VolumeControl); ok {
		m = m.WithVolume(vc)
	}
	if status != "" {
		m = m.WithStatus(status)
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	session.Stop()
	return err
}
