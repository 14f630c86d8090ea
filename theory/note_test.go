package theory

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteNames(t *testing.T) {
	want := []string{"c", "db", "d", "eb", "e", "f", "gb", "g", "ab", "a", "bb", "b"}
	for i, n := range Notes() {
		assert.Equal(t, want[i], n.String())
	}
	assert.Equal(t, "Bb", Bb.Label())
}

func TestParseNote(t *testing.T) {
	tests := []struct {
		in   string
		want Note
	}{
		{"c", C},
		{"C", C},
		{" eb ", Eb},
		{"c#", Db},
		{"A#", Bb},
		{"b", B},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseNote(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseNote("e#")
	assert.Error(t, err)
}

func TestTransposeWraps(t *testing.T) {
	assert.Equal(t, Eb, A.Transpose(6))
	assert.Equal(t, B, C.Transpose(-1))
	assert.Equal(t, C, Note(24).Wrap())
}

func TestNoteJSON(t *testing.T) {
	data, err := json.Marshal(Chord{Root: Ab, Type: Sus2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"root":"ab","type":"sus2"}`, string(data))

	var c Chord
	require.NoError(t, json.Unmarshal([]byte(`{"root":"F#","type":"minor"}`), &c))
	assert.Equal(t, Chord{Root: Gb, Type: Minor}, c)
}
