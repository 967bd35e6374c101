package melody

import (
	"fmt"
	"maps"
	"slices"
)

// Phrase is a melody placed at an offset into a track.
type Phrase struct {
	Notes   []Note
	StartMs int64
}

var presets = map[string]Phrase{
	"funk": {
		Notes: repeat(2,
			Note{60, 300}, Note{62, 300}, Note{64, 300}, Note{62, 300},
			Note{60, 400}, Note{59, 200}, Note{60, 200}, Note{60, 400},
		),
		StartMs: 2000,
	},
	"pop": {
		Notes: []Note{
			{64, 400}, {64, 400}, {65, 400}, {67, 600}, {65, 200}, {64, 400},
			{62, 400}, {60, 400}, {62, 400}, {64, 400}, {64, 800}, {62, 800},
		},
	},
	"scale": {
		Notes: []Note{
			{60, 500}, {62, 500}, {64, 500}, {65, 500},
			{67, 500}, {69, 500}, {71, 500}, {72, 500},
		},
	},
}

func repeat(n int, notes ...Note) []Note {
	out := make([]Note, 0, n*len(notes))
	for range n {
		out = append(out, notes...)
	}
	return out
}

// Preset returns a built-in phrase by name.
func Preset(name string) (Phrase, error) {
	p, ok := presets[name]
	if !ok {
		return Phrase{}, fmt.Errorf("melody: unknown preset %q", name)
	}
	p.Notes = slices.Clone(p.Notes)
	return p, nil
}

// Presets returns the names of the built-in phrases.
func Presets() []string {
	return slices.Sorted(maps.Keys(presets))
}
