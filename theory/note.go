package theory

import (
	"fmt"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

// NumNotes is the number of pitch classes in an octave
const NumNotes = 12

// Note is a pitch class, an offset 0-11 from C
type Note int

const (
	C Note = iota
	Db
	D
	Eb
	E
	F
	Gb
	G
	Ab
	A
	Bb
	B
)

var noteNames = [NumNotes]string{"c", "db", "d", "eb", "e", "f", "gb", "g", "ab", "a", "bb", "b"}

// sharp spellings map onto the flat names above
var sharpNames = map[string]Note{
	"c#": Db, "d#": Eb, "f#": Gb, "g#": Ab, "a#": Bb,
}

// Notes returns all pitch classes in order from C
func Notes() []Note {
	notes := make([]Note, NumNotes)
	for i := range notes {
		notes[i] = Note(i)
	}
	return notes
}

// String returns the canonical lowercase name
func (n Note) String() string {
	return noteNames[n.Wrap()]
}

// Label is the display form: "Eb", "C"
func (n Note) Label() string {
	s := n.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

// Wrap reduces n into 0-11.
func (n Note) Wrap() Note {
	m := n % NumNotes
	if m < 0 {
		m += NumNotes
	}
	return m
}

// Transpose moves n by semitones and wraps to a pitch class
func (n Note) Transpose(semitones int) Note {
	return (n + Note(semitones)).Wrap()
}

// ParseNote accepts "c", "Eb", "f#" etc.
func ParseNote(name string) (Note, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, n := range noteNames {
		if n == key {
			return Note(i), nil
		}
	}
	if n, ok := sharpNames[key]; ok {
		return n, nil
	}
	return 0, fault.Wrap(
		fault.New(fmt.Sprintf("unknown note %q", name)),
		fmsg.WithDesc("parse note", "Unknown note name "+name+", use c, db, d ... bb, b"),
		ftag.With(ftag.InvalidArgument),
	)
}

// MarshalText encodes the note by name so JSON and TOML carry "eb", not 3.
func (n Note) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

func (n *Note) UnmarshalText(text []byte) error {
	parsed, err := ParseNote(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
