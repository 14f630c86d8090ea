package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Southclaws/fault/ftag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadDefaultsWhenNoFiles(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadLaterFileWins(t *testing.T) {
	dir := t.TempDir()
	global := writeFile(t, dir, "global.toml", `
output = "midi"
repeat = true

[midi]
out_port = "FluidSynth"
channel = 3
`)
	local := writeFile(t, dir, "local.toml", `
[midi]
channel = 5

[server]
addr = ":9000"
allowed_origins = ["http://localhost:3000"]
`)

	cfg, err := LoadFrom(global, local)
	require.NoError(t, err)

	assert.Equal(t, OutputMIDI, cfg.Output)
	assert.True(t, cfg.Repeat)
	assert.Equal(t, "FluidSynth", cfg.MIDI.OutPort)
	assert.Equal(t, 5, cfg.MIDI.Channel)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 44100, cfg.Synth.SampleRate)
}

func TestLoadEnvOverridesFiles(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", `output = "midi"`)
	t.Setenv("CHORDBOX_OUTPUT", "log")
	t.Setenv("CHORDBOX_MIDI_IN", "Keystation")
	t.Setenv("CHORDBOX_DEBUG", "true")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, OutputLog, cfg.Output)
	assert.Equal(t, "Keystation", cfg.MIDI.InPort)
	assert.True(t, cfg.Debug)
}

func TestLoadBadEnvValue(t *testing.T) {
	t.Setenv("CHORDBOX_MIDI_CHANNEL", "ten")

	_, err := LoadFrom()
	assert.Error(t, err)
}

func TestLoadBadToml(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", `output = [`)

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		in    Config
		check func(t *testing.T, c *Config)
	}{
		{
			name: "unknown output falls back to beep",
			in:   Config{Output: "speakers"},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, OutputBeep, c.Output)
			},
		},
		{
			name: "output is case insensitive",
			in:   Config{Output: " MIDI "},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, OutputMIDI, c.Output)
			},
		},
		{
			name: "volume clamped",
			in:   Config{Synth: SynthConfig{Volume: 3}},
			check: func(t *testing.T, c *Config) {
				assert.InDelta(t, 1.0, c.Synth.Volume, 1e-9)
			},
		},
		{
			name: "channel out of range",
			in:   Config{MIDI: MIDIConfig{Channel: 17}},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, 1, c.MIDI.Channel)
			},
		},
		{
			name: "empty server fields",
			in:   Config{},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "localhost:8080", c.Server.Addr)
				assert.Equal(t, []string{"*"}, c.Server.AllowedOrigins)
				assert.Equal(t, 44100, c.Synth.SampleRate)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.in
			c.normalize()
			tt.check(t, &c)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	assert.Equal(t, filepath.Join(home, "palettes/plasma.gpl"), expandPath("~/palettes/plasma.gpl"))
	assert.Equal(t, "/abs/path", expandPath("/abs/path"))
	assert.Equal(t, "", expandPath(""))
}

func TestPaths(t *testing.T) {
	paths := Paths()

	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(ConfigDir(), "config.toml"), paths[0])
	assert.Equal(t, "chordbox.toml", paths[1])
}

func TestParseOutput(t *testing.T) {
	tests := []struct {
		in      string
		want    Output
		wantErr bool
	}{
		{"beep", OutputBeep, false},
		{" MIDI ", OutputMIDI, false},
		{"log", OutputLog, false},
		{"speaker", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOutput(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, ftag.InvalidArgument, ftag.Get(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
