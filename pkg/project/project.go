// Package project describes a whole song in one YAML or JSON file: tempo,
// section layout, custom patterns, mixer settings, melody and vocal layers,
// and the export target.
package project

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/haivivi/beatforge/pkg/audio/pcm"
	"github.com/haivivi/beatforge/pkg/cli"
	"github.com/haivivi/beatforge/pkg/composer"
	"github.com/haivivi/beatforge/pkg/melody"
	"github.com/haivivi/beatforge/pkg/pattern"
	"github.com/haivivi/beatforge/pkg/timeline"
)

// Project is the file schema.
type Project struct {
	Name       string             `json:"name,omitempty" yaml:"name,omitempty"`
	Tempo      float64            `json:"tempo" yaml:"tempo"`
	SampleRate string             `json:"sample_rate,omitempty" yaml:"sample_rate,omitempty"`
	Patterns   []PatternSpec      `json:"patterns,omitempty" yaml:"patterns,omitempty"`
	Mixer      MixerSpec          `json:"mixer,omitempty" yaml:"mixer,omitempty"`
	Sections   []composer.Section `json:"sections" yaml:"sections"`
	Melody     *MelodySpec        `json:"melody,omitempty" yaml:"melody,omitempty"`
	Vocals     []VocalSpec        `json:"vocals,omitempty" yaml:"vocals,omitempty"`
	Export     ExportSpec         `json:"export,omitempty" yaml:"export,omitempty"`
}

// PatternSpec defines a custom style as a cycle of bars.
type PatternSpec struct {
	Style string    `json:"style" yaml:"style"`
	Bars  []BarSpec `json:"bars" yaml:"bars"`
}

// BarSpec maps instrument names to their onsets in one bar.
type BarSpec map[string][]OnsetSpec

// OnsetSpec is one hit.
type OnsetSpec struct {
	Beat     float64 `json:"beat" yaml:"beat"`
	Velocity uint8   `json:"velocity" yaml:"velocity"`
	Pitch    uint8   `json:"pitch,omitempty" yaml:"pitch,omitempty"`
	Length   float64 `json:"length,omitempty" yaml:"length,omitempty"`
}

// MixerSpec overrides mixer defaults. Nil fields keep the default.
type MixerSpec struct {
	MaxAttenuationDB *float64 `json:"max_attenuation_db,omitempty" yaml:"max_attenuation_db,omitempty"`
	CeilingDB        *float64 `json:"ceiling_db,omitempty" yaml:"ceiling_db,omitempty"`
	Dynamics         *bool    `json:"dynamics,omitempty" yaml:"dynamics,omitempty"`
}

// MelodySpec is a synthesized melody layer: a preset or explicit notes.
type MelodySpec struct {
	Preset  string     `json:"preset,omitempty" yaml:"preset,omitempty"`
	Notes   []NoteSpec `json:"notes,omitempty" yaml:"notes,omitempty"`
	StartMs *int64     `json:"start_ms,omitempty" yaml:"start_ms,omitempty"`
	GainDB  float64    `json:"gain_db,omitempty" yaml:"gain_db,omitempty"`
	// Harmony adds voices this many semitones from the melody.
	Harmony []int `json:"harmony,omitempty" yaml:"harmony,omitempty"`
}

// NoteSpec is a MIDI note or a rest (pitch -1).
type NoteSpec struct {
	Pitch int   `json:"pitch" yaml:"pitch"`
	DurMs int64 `json:"dur_ms" yaml:"dur_ms"`
}

// VocalSpec places a spoken or recorded clip.
type VocalSpec struct {
	Text   string  `json:"text,omitempty" yaml:"text,omitempty"`
	Lang   string  `json:"lang,omitempty" yaml:"lang,omitempty"`
	File   string  `json:"file,omitempty" yaml:"file,omitempty"`
	AtMs   int64   `json:"at_ms" yaml:"at_ms"`
	GainDB float64 `json:"gain_db,omitempty" yaml:"gain_db,omitempty"`
	Echo   bool    `json:"echo,omitempty" yaml:"echo,omitempty"`
	Chop   *Chop   `json:"chop,omitempty" yaml:"chop,omitempty"`
}

// Chop repeats short slices of a clip.
type Chop struct {
	Ms   int64 `json:"ms" yaml:"ms"`
	Reps int   `json:"reps" yaml:"reps"`
}

// ExportSpec names the output file.
type ExportSpec struct {
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Format  string `json:"format,omitempty" yaml:"format,omitempty"`
	Bitrate int    `json:"bitrate,omitempty" yaml:"bitrate,omitempty"`
}

// DefaultMelodyGainDB places melodies under the drums.
const DefaultMelodyGainDB = -6

// Default returns the standard six-part song in one style, with the
// matching melody preset when there is one.
func Default(style pattern.Style, tempo float64) *Project {
	p := &Project{
		Name:     "beatforge-" + string(style),
		Tempo:    tempo,
		Sections: composer.DefaultStructure(style),
		Export:   ExportSpec{Format: "wav"},
	}
	if slices.Contains(melody.Presets(), string(style)) {
		p.Melody = &MelodySpec{Preset: string(style), GainDB: DefaultMelodyGainDB}
	}
	return p
}

// Load reads a project file; "-" reads stdin.
func Load(path string) (*Project, error) {
	var p Project
	if err := cli.LoadRequest(path, &p); err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}
	return &p, nil
}

// Validate reports every problem in p at once.
func (p *Project) Validate() error {
	var errs []error
	cfg := func(field string, value any, reason string) {
		errs = append(errs, &timeline.ConfigError{Field: field, Value: value, Reason: reason})
	}

	if err := timeline.Tempo(p.Tempo).Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := p.Format(); err != nil {
		cfg("sample_rate", p.SampleRate, err.Error())
	}

	lib, err := p.Library()
	if err != nil {
		errs = append(errs, err)
		lib = pattern.NewLibrary()
	}
	if len(p.Sections) == 0 {
		cfg("sections", 0, "at least one section is required")
	}
	for i, s := range p.Sections {
		if _, err := lib.Lookup(s.Style); err != nil {
			cfg(fmt.Sprintf("sections[%d].style", i), s.Style, "unknown style")
		}
	}

	if m := p.Melody; m != nil {
		switch {
		case m.Preset != "" && len(m.Notes) > 0:
			cfg("melody", m.Preset, "set either preset or notes")
		case m.Preset != "":
			if _, err := melody.Preset(m.Preset); err != nil {
				cfg("melody.preset", m.Preset, "unknown preset")
			}
		case len(m.Notes) == 0:
			cfg("melody", nil, "preset or notes is required")
		}
		for i, n := range m.Notes {
			if n.DurMs <= 0 || n.Pitch < melody.Rest || n.Pitch > 127 {
				cfg(fmt.Sprintf("melody.notes[%d]", i), n, "needs pitch -1..127 and a positive duration")
			}
		}
		if m.StartMs != nil && *m.StartMs < 0 {
			cfg("melody.start_ms", *m.StartMs, "must not be negative")
		}
	}

	for i, v := range p.Vocals {
		field := func(name string) string { return fmt.Sprintf("vocals[%d]%s", i, name) }
		if (v.Text == "") == (v.File == "") {
			cfg(field(""), v.Text+v.File, "set exactly one of text or file")
		}
		if v.AtMs < 0 {
			cfg(field(".at_ms"), v.AtMs, "must not be negative")
		}
		if math.IsNaN(v.GainDB) || math.IsInf(v.GainDB, 0) {
			cfg(field(".gain_db"), v.GainDB, "must be finite")
		}
		if v.Chop != nil && (v.Chop.Ms <= 0 || v.Chop.Reps <= 0) {
			cfg(field(".chop"), *v.Chop, "ms and reps must be positive")
		}
	}

	switch strings.ToLower(p.Export.Format) {
	case "", "wav", "mp3", "pcm":
	default:
		cfg("export.format", p.Export.Format, "must be wav, mp3 or pcm")
	}
	if p.Export.Bitrate < 0 {
		cfg("export.bitrate", p.Export.Bitrate, "must not be negative")
	}
	return errors.Join(errs...)
}

// Format returns the engine format for SampleRate, 44.1 kHz by default.
func (p *Project) Format() (pcm.Format, error) {
	return pcm.ParseFormat(p.SampleRate)
}

// DurationMs is the total length of the sections.
func (p *Project) DurationMs() int64 {
	var total int64
	for _, s := range p.Sections {
		total += s.DurationMs
	}
	return total
}
