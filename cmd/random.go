package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"go-chordbox/sequencer"
	"go-chordbox/theory"
)

var (
	randomCount int
	randomSeed  uint64
	randomPlay  bool
)

func init() {
	randomCmd.Flags().IntVarP(&randomCount, "count", "n", 4, "number of chords")
	randomCmd.Flags().Uint64Var(&randomSeed, "seed", 0, "fixed seed, 0 for a random one")
	randomCmd.Flags().BoolVar(&randomPlay, "play", false, "play the progression")
	rootCmd.AddCommand(randomCmd)
}

var randomCmd = &cobra.Command{
	Use:   "random",
	Short: "Generate a random progression",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		chords := randomProgression(randomCount, randomSeed)

		if !randomPlay {
			for _, c := range chords {
				fmt.Fprintf(cmd.OutOrStdout(), "%s:%s\n", c.Root, c.Type)
			}
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		inst, closeInst, err := openInstrument(ctx, cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer closeInst()

		entries := make([]sequencer.Entry, len(chords))
		for i, c := range chords {
			entries[i] = sequencer.NewEntry(c)
		}
		seq := sequencer.NewSequencer(inst)
		seq.SetRepeat(cfg.Repeat)
		return runProgression(ctx, seq, entries, cmd.OutOrStdout())
	},
}

func randomProgression(n int, seed uint64) []theory.Chord {
	gen := theory.NewGenerator()
	if seed != 0 {
		gen = theory.NewSeededGenerator(seed)
	}
	return gen.Progression(max(n, 0))
}
