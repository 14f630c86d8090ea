package midi

import (
	"slices"
	"testing"

	"github.com/Southclaws/fault/ftag"
	"github.com/stretchr/testify/assert"
)

type fakePort string

func (p fakePort) String() string { return string(p) }

func TestFindPort(t *testing.T) {
	ports := []fakePort{"Midi Through Port-0", "Arturia KeyStep 32:0", "FluidSynth virtual port"}

	tests := []struct {
		name  string
		want  string
		found fakePort
		ok    bool
	}{
		{"empty picks first", "", "Midi Through Port-0", true},
		{"substring", "keystep", "Arturia KeyStep 32:0", true},
		{"case insensitive", "FLUIDSYNTH", "FluidSynth virtual port", true},
		{"trimmed", "  fluid ", "FluidSynth virtual port", true},
		{"missing", "launchpad", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := findPort(ports, tt.want)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.found, p)
		})
	}
}

func TestPortNotFoundIsTagged(t *testing.T) {
	err := portNotFound("output", "fluid")

	assert.Equal(t, ftag.NotFound, ftag.Get(err))
	assert.Contains(t, err.Error(), "fluid")
}

func TestDiffPorts(t *testing.T) {
	tests := []struct {
		name    string
		known   []string
		seen    []string
		match   string
		added   []string
		removed []string
	}{
		{
			name:  "empty match watches nothing",
			seen:  []string{"KeyStep"},
			match: "",
		},
		{
			name:  "new keyboard",
			seen:  []string{"Midi Through", "KeyStep 32"},
			match: "keystep",
			added: []string{"KeyStep 32"},
		},
		{
			name:  "already connected",
			known: []string{"KeyStep 32"},
			seen:  []string{"KeyStep 32"},
			match: "keystep",
		},
		{
			name:    "unplugged",
			known:   []string{"KeyStep 32"},
			seen:    []string{"Midi Through"},
			match:   "keystep",
			removed: []string{"KeyStep 32"},
		},
		{
			name:  "duplicate names added once",
			seen:  []string{"KeyStep", "KeyStep"},
			match: "key",
			added: []string{"KeyStep"},
		},
		{
			name:    "two matching, one swapped",
			known:   []string{"Keys A", "Keys B"},
			seen:    []string{"Keys B", "Keys C"},
			match:   "keys",
			added:   []string{"Keys C"},
			removed: []string{"Keys A"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			known := make(map[string]bool)
			for _, k := range tt.known {
				known[k] = true
			}

			added, removed := diffPorts(known, tt.seen, tt.match)
			slices.Sort(removed)

			assert.Equal(t, tt.added, added)
			assert.Equal(t, tt.removed, removed)
		})
	}
}
