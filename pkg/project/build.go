package project

import (
	"fmt"

	"github.com/haivivi/beatforge/pkg/melody"
	"github.com/haivivi/beatforge/pkg/mixer"
	"github.com/haivivi/beatforge/pkg/pattern"
)

// Library returns the built-in patterns plus the project's custom ones.
func (p *Project) Library() (*pattern.Library, error) {
	lib := pattern.NewLibrary()
	for i, ps := range p.Patterns {
		style, err := pattern.ParseStyle(ps.Style)
		if err != nil {
			return nil, fmt.Errorf("project: patterns[%d]: %w", i, err)
		}
		bars := make([]pattern.Template, 0, len(ps.Bars))
		for j, bs := range ps.Bars {
			onsets := make(map[pattern.Instrument][]pattern.Onset, len(bs))
			for name, list := range bs {
				inst, err := pattern.ParseInstrument(name)
				if err != nil {
					return nil, fmt.Errorf("project: patterns[%d].bars[%d]: %w", i, j, err)
				}
				for _, o := range list {
					onsets[inst] = append(onsets[inst], pattern.Onset{
						Beat: o.Beat, Velocity: o.Velocity, Pitch: o.Pitch, Length: o.Length,
					})
				}
			}
			t, err := pattern.NewTemplate(style, onsets)
			if err != nil {
				return nil, fmt.Errorf("project: patterns[%d].bars[%d]: %w", i, j, err)
			}
			bars = append(bars, t)
		}
		c, err := pattern.NewCustom(style, bars...)
		if err != nil {
			return nil, fmt.Errorf("project: patterns[%d]: %w", i, err)
		}
		if err := lib.Register(c); err != nil {
			return nil, fmt.Errorf("project: patterns[%d]: %w", i, err)
		}
	}
	return lib, nil
}

// MixerOptions translates the mixer overrides.
func (p *Project) MixerOptions() ([]mixer.Option, error) {
	f, err := p.Format()
	if err != nil {
		return nil, err
	}
	opts := []mixer.Option{mixer.WithFormat(f)}
	if v := p.Mixer.MaxAttenuationDB; v != nil {
		opts = append(opts, mixer.WithMaxAttenuation(*v))
	}
	if v := p.Mixer.CeilingDB; v != nil {
		opts = append(opts, mixer.WithCeiling(*v))
	}
	if v := p.Mixer.Dynamics; v != nil && !*v {
		opts = append(opts, mixer.WithoutDynamics())
	}
	return opts, nil
}

// Phrase resolves the melody layer.
func (m *MelodySpec) Phrase() (melody.Phrase, error) {
	var ph melody.Phrase
	if m.Preset != "" {
		var err error
		if ph, err = melody.Preset(m.Preset); err != nil {
			return ph, err
		}
	}
	for _, n := range m.Notes {
		ph.Notes = append(ph.Notes, melody.Note{Pitch: n.Pitch, DurMs: n.DurMs})
	}
	if m.StartMs != nil {
		ph.StartMs = *m.StartMs
	}
	return ph, nil
}
