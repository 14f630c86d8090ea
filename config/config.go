package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v11"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "go-chordbox"

// Output selects the instrument playback goes to
type Output string

const (
	OutputBeep Output = "beep" // built-in synth on the default audio device
	OutputMIDI Output = "midi" // external synth over a MIDI port
	OutputLog  Output = "log"  // no sound, triggers go to the debug log
)

// ParseOutput validates an output name from a flag
func ParseOutput(name string) (Output, error) {
	o := Output(strings.ToLower(strings.TrimSpace(name)))
	switch o {
	case OutputBeep, OutputMIDI, OutputLog:
		return o, nil
	}
	return "", fault.New("unknown output "+name,
		fmsg.WithDesc("parse output", "Output must be beep, midi or log"),
		ftag.With(ftag.InvalidArgument))
}

// SynthConfig tunes the built-in synth
type SynthConfig struct {
	SampleRate int     `koanf:"sample_rate" env:"CHORDBOX_SAMPLE_RATE"`
	Volume     float64 `koanf:"volume" env:"CHORDBOX_VOLUME"` // 0.0-1.0
}

// MIDIConfig selects MIDI ports
type MIDIConfig struct {
	OutPort string `koanf:"out_port" env:"CHORDBOX_MIDI_OUT"`    // substring match, empty = first port
	InPort  string `koanf:"in_port" env:"CHORDBOX_MIDI_IN"`      // keyboard to watch, empty = none
	Channel int    `koanf:"channel" env:"CHORDBOX_MIDI_CHANNEL"` // 1-16
}

// ThemeConfig stores UI preferences
type ThemeConfig struct {
	Palette string `koanf:"palette" env:"CHORDBOX_PALETTE"` // GIMP .gpl file, empty = built-in
}

// ServerConfig configures the HTTP control surface
type ServerConfig struct {
	Addr           string   `koanf:"addr" env:"CHORDBOX_ADDR"`
	AllowedOrigins []string `koanf:"allowed_origins" env:"CHORDBOX_ALLOWED_ORIGINS" envSeparator:","`
}

// Config is the main configuration structure
type Config struct {
	Output   Output       `koanf:"output" env:"CHORDBOX_OUTPUT"`
	Repeat   bool         `koanf:"repeat" env:"CHORDBOX_REPEAT"`
	Debug    bool         `koanf:"debug" env:"CHORDBOX_DEBUG"`
	DebugLog string       `koanf:"debug_log" env:"CHORDBOX_DEBUG_LOG"`
	Synth    SynthConfig  `koanf:"synth"`
	MIDI     MIDIConfig   `koanf:"midi"`
	Theme    ThemeConfig  `koanf:"theme"`
	Server   ServerConfig `koanf:"server"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Output: OutputBeep,
		Synth: SynthConfig{
			SampleRate: 44100,
			Volume:     0.5,
		},
		MIDI: MIDIConfig{
			Channel: 1,
		},
		Server: ServerConfig{
			Addr:           "localhost:8080",
			AllowedOrigins: []string{"*"},
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, appName)
}

// Paths returns the config files read by Load, lowest priority first
func Paths() []string {
	return []string{
		filepath.Join(ConfigDir(), "config.toml"),
		"chordbox.toml",
	}
}

// Load reads config files, then environment overrides, then fills defaults
func Load() (*Config, error) {
	return LoadFrom(Paths()...)
}

// LoadFrom is Load with explicit file paths. Missing files are skipped.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fault.Wrap(err, fmsg.WithDesc("load "+path, "Could not read config file "+path))
		}
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fault.Wrap(err, fmsg.WithDesc("decode config", "Config file has an invalid value"))
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fault.Wrap(err, fmsg.WithDesc("parse env", "Invalid CHORDBOX_* environment variable"))
	}

	cfg.normalize()
	return cfg, nil
}

// normalize clamps out-of-range values back to defaults
func (c *Config) normalize() {
	def := DefaultConfig()

	if o, err := ParseOutput(string(c.Output)); err == nil {
		c.Output = o
	} else {
		c.Output = def.Output
	}

	if c.Synth.SampleRate <= 0 {
		c.Synth.SampleRate = def.Synth.SampleRate
	}
	if c.Synth.Volume < 0 {
		c.Synth.Volume = 0
	}
	if c.Synth.Volume > 1 {
		c.Synth.Volume = 1
	}
	if c.MIDI.Channel < 1 || c.MIDI.Channel > 16 {
		c.MIDI.Channel = def.MIDI.Channel
	}
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = def.Server.AllowedOrigins
	}
	c.Theme.Palette = expandPath(c.Theme.Palette)
	c.DebugLog = expandPath(c.DebugLog)
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
