package cmd

import (
	"fmt"

	"github.com/Southclaws/fault/fmsg"
	"github.com/spf13/cobra"

	"go-chordbox/midi"
)

func init() {
	rootCmd.AddCommand(portsCmd)
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI ports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		defer midi.CloseDriver()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "(waiting up to %s...)\n", midi.PortTimeout)

		ins, outs, err := midi.Ports(cmd.Context())
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), fmsg.GetIssue(err))
			return err
		}

		fmt.Fprintln(out, "=== MIDI Input Ports ===")
		for i, p := range ins {
			fmt.Fprintf(out, "  %d: %s\n", i, p.String())
		}
		fmt.Fprintln(out, "\n=== MIDI Output Ports ===")
		for i, p := range outs {
			fmt.Fprintf(out, "  %d: %s\n", i, p.String())
		}
		return nil
	},
}
