package cmd

import (
	"github.com/spf13/cobra"

	"go-chordbox/config"
	"go-chordbox/debug"
)

var (
	cfgFile    string
	debugFlag  bool
	outputFlag string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "chordbox",
	Short: "Build chord progressions and hear them arpeggiated",
	Long: `chordbox builds a list of chords from a root and a chord type and plays
them one per measure, arpeggiated. Without a subcommand it opens the
terminal UI.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "extra config file, read after "+config.Paths()[0])
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "write a debug log")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "", "instrument: beep, midi or log")
}

func Execute() {
	err := rootCmd.Execute()
	debug.Disable()
	cobra.CheckErr(err)
}

func setup(cmd *cobra.Command, args []string) error {
	c, err := loadConfig()
	if err != nil {
		return err
	}

	if outputFlag != "" {
		o, err := config.ParseOutput(outputFlag)
		if err != nil {
			return err
		}
		c.Output = o
	}
	cfg = c

	if debugFlag || cfg.Debug {
		if err := debug.Enable(cfg.DebugLog); err != nil {
			return err
		}
	}
	debug.Log("cmd", "%s output=%s", cmd.Name(), cfg.Output)
	return nil
}

func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Load()
	}
	return config.LoadFrom(append(config.Paths(), cfgFile)...)
}
