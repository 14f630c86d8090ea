package theory

import (
	"math"
	"strings"
)

// Interval sizes in semitones
const (
	Root       = 0
	Major2nd   = 2
	Minor3rd   = 3
	Major3rd   = 4
	Perfect4th = 5
	Dim5th     = 6
	Perfect5th = 7
	Aug5th     = 8
	Minor6th   = 8
	Major6th   = 9
	Dim7th     = 9
	Minor7th   = 10
	Major7th   = 11
	Major9th   = 14
)

// ReferenceFreq is middle C in Hz, the frequency of offset 0
const ReferenceFreq = 261.63

// ChordType names an interval pattern. Names are lowercase.
type ChordType string

const (
	Major       ChordType = "major"
	Minor       ChordType = "minor"
	Major7      ChordType = "major 7th"
	Minor7      ChordType = "minor 7th"
	Diminished  ChordType = "diminished"
	Augmented   ChordType = "augmented"
	Diminished7 ChordType = "diminished 7th"
	MinorMajor  ChordType = "minor-major"
	Major9      ChordType = "major 9th"
	Minor9      ChordType = "minor 9th"
	Sus2        ChordType = "sus2"
	Sus4        ChordType = "sus4"
	RootOnly    ChordType = "root-only"
)

// DefaultType is selected until the user picks another
const DefaultType = Major

var intervals = map[ChordType][]int{
	Major:       {Root, Major3rd, Perfect5th},
	Minor:       {Root, Minor3rd, Perfect5th},
	Major7:      {Root, Major3rd, Perfect5th, Major7th},
	Minor7:      {Root, Minor3rd, Perfect5th, Minor7th},
	Diminished:  {Root, Minor3rd, Dim5th},
	Augmented:   {Root, Major3rd, Aug5th},
	Diminished7: {Root, Minor3rd, Dim5th, Dim7th},
	MinorMajor:  {Root, Minor3rd, Perfect5th, Major7th},
	Major9:      {Root, Major3rd, Perfect5th, Major7th, Major9th},
	Minor9:      {Root, Minor3rd, Perfect5th, Minor7th, Major9th},
	Sus2:        {Root, Major2nd, Perfect5th},
	Sus4:        {Root, Perfect4th, Perfect5th},
	RootOnly:    {Root},
}

// display order, matches the chord type grid
var chordTypes = []ChordType{
	Major, Minor, Major7, Minor7,
	Diminished, Augmented, Diminished7, MinorMajor,
	Major9, Minor9, Sus2, Sus4,
	RootOnly,
}

var labels = map[ChordType]string{
	Major:       "Major",
	Minor:       "Minor",
	Major7:      "Major 7th",
	Minor7:      "Minor 7th",
	Diminished:  "Diminished",
	Augmented:   "Augmented",
	Diminished7: "Diminished 7th",
	MinorMajor:  "Minor-Major",
	Major9:      "Major 9th",
	Minor9:      "Minor 9th",
	Sus2:        "Sus2",
	Sus4:        "Sus4",
	RootOnly:    "No Chord",
}

var aliases = map[string]ChordType{
	"maj":      Major,
	"m":        Minor,
	"min":      Minor,
	"maj7":     Major7,
	"m7":       Minor7,
	"min7":     Minor7,
	"dim":      Diminished,
	"aug":      Augmented,
	"dim7":     Diminished7,
	"mmaj7":    MinorMajor,
	"minmaj":   MinorMajor,
	"maj9":     Major9,
	"m9":       Minor9,
	"min9":     Minor9,
	"none":     RootOnly,
	"no chord": RootOnly,
	"":         RootOnly,
}

// ChordTypes returns the known types in display order
func ChordTypes() []ChordType {
	out := make([]ChordType, len(chordTypes))
	copy(out, chordTypes)
	return out
}

// ParseChordType normalizes a user-supplied name. Unknown names come back
// unchanged (lowercased) and resolve to the root-only pattern.
func ParseChordType(name string) ChordType {
	key := strings.ToLower(strings.TrimSpace(name))
	if t, ok := aliases[key]; ok {
		return t
	}
	return ChordType(key)
}

// Known reports whether t has its own interval pattern.
func (t ChordType) Known() bool {
	_, ok := intervals[t.normalized()]
	return ok
}

// Intervals returns the semitone offsets of t; unknown types fall back to the root alone.
func (t ChordType) Intervals() []int {
	pattern, ok := intervals[t.normalized()]
	if !ok {
		pattern = intervals[RootOnly]
	}
	out := make([]int, len(pattern))
	copy(out, pattern)
	return out
}

// Label is the display name ("Major 7th")
func (t ChordType) Label() string {
	if l, ok := labels[t.normalized()]; ok {
		return l
	}
	return labels[RootOnly]
}

func (t ChordType) String() string {
	return string(t)
}

func (t ChordType) normalized() ChordType {
	return ChordType(strings.ToLower(string(t)))
}

// Frequency converts a semitone offset from middle C to Hz.
func Frequency(offset int) float64 {
	return ReferenceFreq * math.Pow(2, float64(offset)/NumNotes)
}

// Resolve maps a root and chord type to the frequencies of its notes, lowest
// first. Offsets are not reduced modulo 12 so extensions sound above the root.
func Resolve(root Note, t ChordType) []float64 {
	pattern := t.Intervals()
	freqs := make([]float64, len(pattern))
	for i, k := range pattern {
		freqs[i] = Frequency(int(root.Wrap()) + k)
	}
	return freqs
}

// Chord is a root plus a chord type
type Chord struct {
	Root Note      `json:"root"`
	Type ChordType `json:"type"`
}

// Frequencies resolves the chord
func (c Chord) Frequencies() []float64 {
	return Resolve(c.Root, c.Type)
}

// String is the display form: "Eb Minor 7th"
func (c Chord) String() string {
	return c.Root.Label() + " " + c.Type.Label()
}

// ParseChord reads "root:type" or "root type" forms, e.g. "eb:m7", "c major 7th", "a".
func ParseChord(s string) (Chord, error) {
	s = strings.TrimSpace(s)
	rootPart, typePart := s, ""
	if i := strings.IndexAny(s, ": "); i >= 0 {
		rootPart, typePart = s[:i], s[i+1:]
	}
	root, err := ParseNote(rootPart)
	if err != nil {
		return Chord{}, err
	}
	t := DefaultType
	if strings.TrimSpace(typePart) != "" {
		t = ParseChordType(typePart)
	}
	return Chord{Root: root, Type: t}, nil
}
