package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"go-chordbox/theory"
)

var resolveJSON bool

func init() {
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "print JSON")
	rootCmd.AddCommand(resolveCmd)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <root> [type]",
	Short: "Print the notes and frequencies of a chord",
	Long: `Print the notes of a chord and their frequencies. Unknown types
resolve to the root alone.

  chordbox resolve eb minor 7th`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := theory.ParseNote(args[0])
		if err != nil {
			return err
		}
		c := theory.Chord{Root: root, Type: theory.ParseChordType(strings.Join(args[1:], " "))}
		if len(args) == 1 {
			c.Type = theory.DefaultType
		}
		return printResolved(cmd.OutOrStdout(), c, resolveJSON)
	},
}

type resolvedNote struct {
	Note theory.Note `json:"note"`
	Freq float64     `json:"freq"`
}

type resolvedChord struct {
	Chord string         `json:"chord"`
	Root  theory.Note    `json:"root"`
	Type  string         `json:"type"`
	Notes []resolvedNote `json:"notes"`
}

func resolveChord(c theory.Chord) resolvedChord {
	freqs := c.Frequencies()
	r := resolvedChord{
		Chord: c.String(),
		Root:  c.Root,
		Type:  c.Type.String(),
		Notes: make([]resolvedNote, len(freqs)),
	}
	for i, k := range c.Type.Intervals() {
		r.Notes[i] = resolvedNote{Note: c.Root.Transpose(k), Freq: freqs[i]}
	}
	return r
}

func printResolved(w io.Writer, c theory.Chord, asJSON bool) error {
	r := resolveChord(c)
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	fmt.Fprintln(w, r.Chord)
	for _, n := range r.Notes {
		fmt.Fprintf(w, "  %-3s %8s Hz\n", n.Note.Label(), humanize.FtoaWithDigits(n.Freq, 2))
	}
	return nil
}
