package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/spf13/cobra"

	"go-chordbox/sequencer"
	"go-chordbox/theory"
)

var (
	playRepeat    bool
	playCatalogue bool
)

func init() {
	playCmd.Flags().BoolVarP(&playRepeat, "repeat", "r", false, "loop until interrupted")
	playCmd.Flags().BoolVar(&playCatalogue, "catalogue", false, "play every chord type over one root")
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play <chord>...",
	Short: "Play a progression without the UI",
	Long: `Play chords given as root or root:type, one per measure.

  chordbox play c:maj7 a:m7 d:m9 g:m7
  chordbox play --catalogue eb`,
	Args: func(cmd *cobra.Command, args []string) error {
		if playCatalogue {
			return cobra.ExactArgs(1)(cmd, args)
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		var entries []sequencer.Entry
		var err error
		if playCatalogue {
			entries, err = catalogueEntries(args[0])
		} else {
			entries, err = parseEntries(args)
		}
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		inst, closeInst, err := openInstrument(ctx, cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer closeInst()

		seq := sequencer.NewSequencer(inst)
		seq.SetRepeat(playRepeat || cfg.Repeat)
		return runProgression(ctx, seq, entries, cmd.OutOrStdout())
	},
}

func parseEntries(args []string) ([]sequencer.Entry, error) {
	entries := make([]sequencer.Entry, 0, len(args))
	for _, a := range args {
		c, err := theory.ParseChord(a)
		if err != nil {
			return nil, err
		}
		entries = append(entries, sequencer.NewEntry(c))
	}
	return entries, nil
}

// catalogueEntries is every chord type over root, in display order
func catalogueEntries(root string) ([]sequencer.Entry, error) {
	n, err := theory.ParseNote(root)
	if err != nil {
		return nil, err
	}
	types := theory.ChordTypes()
	entries := make([]sequencer.Entry, len(types))
	for i, t := range types {
		entries[i] = sequencer.NewEntry(theory.Chord{Root: n, Type: t})
	}
	return entries, nil
}

// runProgression plays entries on seq and prints each chord as it sounds.
// It returns once the last chord has rung out, or when ctx is done.
func runProgression(ctx context.Context, seq *sequencer.Sequencer, entries []sequencer.Entry, out io.Writer) error {
	sub := seq.Subscribe()
	defer seq.Unsubscribe(sub)

	if !seq.Start(entries) {
		return fault.New("nothing to play",
			fmsg.WithDesc("start", "No chords to play"),
			ftag.With(ftag.InvalidArgument))
	}
	defer seq.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-sub.Events:
			switch e.Kind {
			case sequencer.EventNowPlaying:
				fmt.Fprintf(out, "%d/%d  %s\n", e.Index+1, e.Length, e.Entry.Chord)
			case sequencer.EventFinished:
				select {
				case <-time.After(sequencer.NoteLength):
				case <-ctx.Done():
				}
				return nil
			}
		}
	}
}
