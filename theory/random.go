package theory

import "math/rand/v2"

// NiceJumps are the root movements a random progression may take
var NiceJumps = []int{Minor3rd, Major3rd, Perfect4th, Perfect5th, Minor6th, Major6th}

// NiceTypes are the chord types a random progression draws from
var NiceTypes = []ChordType{Major7, Minor7, Major9, Minor9, Sus2, Sus4}

// Generator draws pleasant-sounding random chords. Not safe for concurrent use.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a generator seeded from the runtime's random source
func NewGenerator() *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeededGenerator returns a generator with a fixed sequence, for tests and --seed.
func NewSeededGenerator(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// First picks any root and a nice chord type.
func (g *Generator) First() Chord {
	return Chord{
		Root: Note(g.rng.IntN(NumNotes)),
		Type: g.niceType(),
	}
}

// After picks a nice chord whose root is a nice jump away from prev.
func (g *Generator) After(prev Note) Chord {
	jump := NiceJumps[g.rng.IntN(len(NiceJumps))]
	return Chord{
		Root: prev.Transpose(jump),
		Type: g.niceType(),
	}
}

// Next continues a progression: After the last chord, or First when empty.
func (g *Generator) Next(progression []Chord) Chord {
	if len(progression) == 0 {
		return g.First()
	}
	return g.After(progression[len(progression)-1].Root)
}

// Progression draws n chords, each following the last
func (g *Generator) Progression(n int) []Chord {
	var out []Chord
	for range n {
		out = append(out, g.Next(out))
	}
	return out
}

func (g *Generator) niceType() ChordType {
	return NiceTypes[g.rng.IntN(len(NiceTypes))]
}
