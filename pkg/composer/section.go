package composer

import (
	"fmt"
	"math"

	"github.com/haivivi/beatforge/pkg/pattern"
	"github.com/haivivi/beatforge/pkg/timeline"
)

// Section is one part of a song structure.
type Section struct {
	Name       string        `json:"name" yaml:"name"`
	DurationMs int64         `json:"duration_ms" yaml:"duration_ms"`
	Style      pattern.Style `json:"style" yaml:"style"`
	// GainDB is applied after the fades.
	GainDB    float64 `json:"gain_db,omitempty" yaml:"gain_db,omitempty"`
	FadeInMs  int64   `json:"fade_in_ms,omitempty" yaml:"fade_in_ms,omitempty"`
	FadeOutMs int64   `json:"fade_out_ms,omitempty" yaml:"fade_out_ms,omitempty"`
}

func (s Section) validate(index int) error {
	field := func(name string) string {
		return fmt.Sprintf("sections[%d].%s", index, name)
	}
	switch {
	case s.DurationMs <= 0:
		return &timeline.ConfigError{Field: field("duration_ms"), Value: s.DurationMs, Reason: "must be positive"}
	case s.FadeInMs < 0:
		return &timeline.ConfigError{Field: field("fade_in_ms"), Value: s.FadeInMs, Reason: "must not be negative"}
	case s.FadeOutMs < 0:
		return &timeline.ConfigError{Field: field("fade_out_ms"), Value: s.FadeOutMs, Reason: "must not be negative"}
	case math.IsNaN(s.GainDB) || math.IsInf(s.GainDB, 0):
		return &timeline.ConfigError{Field: field("gain_db"), Value: s.GainDB, Reason: "must be finite"}
	case s.Style == "":
		return &timeline.ConfigError{Field: field("style"), Value: "", Reason: "is required"}
	}
	return nil
}

// DefaultStructure returns the standard six-part song layout in one style:
// intro, verse, chorus, verse, chorus, outro. Choruses are lifted by 2 dB,
// the intro fades in and the outro fades out.
func DefaultStructure(style pattern.Style) []Section {
	return []Section{
		{Name: "intro", DurationMs: 8000, Style: style, FadeInMs: 2000},
		{Name: "verse1", DurationMs: 16000, Style: style},
		{Name: "chorus", DurationMs: 16000, Style: style, GainDB: 2},
		{Name: "verse2", DurationMs: 16000, Style: style},
		{Name: "chorus2", DurationMs: 16000, Style: style, GainDB: 2},
		{Name: "outro", DurationMs: 8000, Style: style, FadeOutMs: 3000},
	}
}
