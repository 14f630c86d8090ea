package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/Southclaws/fault/fmsg"
	"github.com/spf13/cobra"

	"go-chordbox/api"
	"go-chordbox/debug"
	"go-chordbox/midi"
	"go-chordbox/sequencer"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the session over HTTP",
	Long: `Serve a session over a JSON API with a server-sent event stream at
/api/events. A configured MIDI keyboard adds chords to the same session.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		logger := requestLogger(cmd.ErrOrStderr())

		inst, closeInst, err := openInstrument(ctx, cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer closeInst()

		seq := sequencer.NewSequencer(inst)
		seq.SetRepeat(cfg.Repeat)
		session := sequencer.NewSession(seq, nil)
		defer session.Stop()

		if cfg.MIDI.InPort != "" {
			if _, err := midi.FindIn(ctx, cfg.MIDI.InPort); err != nil {
				logger.Warn("keyboard not connected yet, watching for it", "in_port", cfg.MIDI.InPort, "err", fmsg.GetIssue(err))
			}
			dm := midi.NewDeviceManager(cfg.MIDI.InPort)
			go dm.Run(ctx)
			go forwardKeyboard(ctx, dm, session, logger)
		}

		addr := serveAddr
		if addr == "" {
			addr = cfg.Server.Addr
		}
		return api.New(session, cfg.Server, logger).ListenAndServe(ctx, addr)
	},
}

// requestLogger writes to w, or into the debug log when it is enabled
func requestLogger(w io.Writer) *slog.Logger {
	if debug.Enabled() {
		return debug.Logger().With("cat", "api")
	}
	return slog.New(slog.NewTextHandler(w, nil))
}

// forwardKeyboard adds a chord for every key pressed on a watched keyboard
func forwardKeyboard(ctx context.Context, dm *midi.DeviceManager, session *sequencer.Session, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-dm.Events():
			if !ok {
				return
			}
			logger.Info("keyboard", "event", e.Type.String(), "id", e.ID)
		case n := <-dm.Notes():
			if !session.AddChord(n.Root()) {
				logger.Debug("key ignored while playing", "note", n.Note)
			}
		}
	}
}
