package timeline

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"

	"github.com/haivivi/beatforge/pkg/pattern"
)

// epsilon absorbs float error when flooring event times, so that an onset
// computed as 499.99999999 ms lands on 500.
const epsilon = 1e-9

// MaxTempo is the fastest accepted tempo.
const MaxTempo Tempo = 1000

// MaxDurationMs is the longest accepted timeline, one hour.
const MaxDurationMs = 60 * 60 * 1000

// MaxEvents caps the events one Schedule call may produce.
const MaxEvents = 1 << 20

// Tempo is a tempo in beats per minute.
type Tempo float64

// Validate returns a *ConfigError unless the tempo is in (0, MaxTempo].
func (t Tempo) Validate() error {
	bpm := float64(t)
	if math.IsNaN(bpm) || math.IsInf(bpm, 0) || bpm <= 0 {
		return &ConfigError{Field: "tempo", Value: bpm, Reason: "must be a positive number of beats per minute"}
	}
	if t > MaxTempo {
		return &ConfigError{Field: "tempo", Value: bpm, Reason: fmt.Sprintf("must be at most %g beats per minute", float64(MaxTempo))}
	}
	return nil
}

// BeatDurationMs returns the length of one beat in milliseconds.
func (t Tempo) BeatDurationMs() float64 { return 60000 / float64(t) }

// BarDurationMs returns the length of one 4/4 bar in milliseconds.
func (t Tempo) BarDurationMs() float64 { return 4 * t.BeatDurationMs() }

// ValidateDuration returns a *ConfigError unless ms is in (0, MaxDurationMs].
func ValidateDuration(ms int64) error {
	if ms <= 0 {
		return &ConfigError{Field: "duration", Value: ms, Reason: "must be positive"}
	}
	if ms > MaxDurationMs {
		return &ConfigError{Field: "duration", Value: ms, Reason: fmt.Sprintf("must be at most %d ms", MaxDurationMs)}
	}
	return nil
}

// Event is one scheduled hit.
type Event struct {
	Instrument pattern.Instrument
	// TimeMs is the start time from the beginning of the timeline.
	TimeMs int64
	// Beat is the exact start position in beats from the beginning of the
	// timeline, kept for MIDI export.
	Beat     float64
	Velocity uint8
	// Pitch is the resolved MIDI note.
	Pitch uint8
	// Length is the note length in beats.
	Length float64
}

// Timeline is the result of Schedule. It is read-only.
type Timeline struct {
	tempo      Tempo
	durationMs int64
	style      pattern.Style
	bars       int
	events     []Event
	dropped    int
}

// Validate checks everything Schedule checks, without scheduling: the
// tempo, the duration, and that expanding p over durationMs stays within
// MaxEvents.
func Validate(tempo Tempo, p pattern.Pattern, durationMs int64) error {
	if err := tempo.Validate(); err != nil {
		return err
	}
	if err := ValidateDuration(durationMs); err != nil {
		return err
	}
	if p == nil {
		return &ConfigError{Field: "pattern", Value: nil, Reason: "is required"}
	}
	bars := math.Ceil(float64(durationMs) / tempo.BarDurationMs())
	if n := bars * float64(max(onsetsPerBar(p), 1)); n > MaxEvents {
		return &ConfigError{
			Field:  "duration",
			Value:  durationMs,
			Reason: fmt.Sprintf("schedules about %.0f events at %g bpm, limit is %d", n, float64(tempo), MaxEvents),
		}
	}
	return nil
}

// onsetsPerBar returns the largest onset count of any bar in p's cycle.
func onsetsPerBar(p pattern.Pattern) int {
	most := 0
	for b := range max(p.Cycle(), 1) {
		tpl := p.Bar(b)
		n := 0
		for _, inst := range tpl.Instruments() {
			n += tpl.Count(inst)
		}
		most = max(most, n)
	}
	return most
}

// Schedule expands p over the bars needed to cover durationMs at tempo and
// returns the events that start inside [0, durationMs).
func Schedule(tempo Tempo, p pattern.Pattern, durationMs int64) (*Timeline, error) {
	if err := Validate(tempo, p, durationMs); err != nil {
		return nil, err
	}

	beatMs := tempo.BeatDurationMs()
	barMs := tempo.BarDurationMs()
	bars := int(math.Ceil(float64(durationMs) / barMs))

	tl := &Timeline{
		tempo:      tempo,
		durationMs: durationMs,
		style:      p.Style(),
		bars:       bars,
	}
	for b := range bars {
		tpl := p.Bar(b)
		for _, inst := range tpl.Instruments() {
			for _, o := range tpl.Onsets(inst) {
				at := float64(b)*barMs + o.Beat*beatMs
				ms := int64(math.Floor(at + epsilon))
				if ms >= durationMs {
					tl.dropped++
					continue
				}
				tl.events = append(tl.events, Event{
					Instrument: inst,
					TimeMs:     ms,
					Beat:       float64(b)*4 + o.Beat,
					Velocity:   o.Velocity,
					Pitch:      o.Note(inst),
					Length:     o.Length,
				})
			}
		}
	}

	slices.SortStableFunc(tl.events, func(a, b Event) int {
		if d := a.Instrument.Order() - b.Instrument.Order(); d != 0 {
			return d
		}
		if a.TimeMs != b.TimeMs {
			if a.TimeMs < b.TimeMs {
				return -1
			}
			return 1
		}
		return int(a.Pitch) - int(b.Pitch)
	})

	if tl.dropped > 0 {
		slog.Debug("timeline: dropped events past section end",
			"style", tl.style, "duration_ms", durationMs, "dropped", tl.dropped)
	}
	return tl, nil
}

// Tempo returns the tempo the timeline was scheduled at.
func (tl *Timeline) Tempo() Tempo { return tl.tempo }

// DurationMs returns the target duration.
func (tl *Timeline) DurationMs() int64 { return tl.durationMs }

// Style returns the style of the scheduled pattern.
func (tl *Timeline) Style() pattern.Style { return tl.style }

// Bars returns how many bars were expanded, including a partial last bar.
func (tl *Timeline) Bars() int { return tl.bars }

// Len returns the number of events.
func (tl *Timeline) Len() int { return len(tl.events) }

// Events returns a copy of all events, grouped by instrument in canonical
// order and sorted by time within each group.
func (tl *Timeline) Events() []Event { return slices.Clone(tl.events) }

// Instrument returns the events for one instrument in time order.
func (tl *Timeline) Instrument(i pattern.Instrument) []Event {
	var out []Event
	for _, e := range tl.events {
		if e.Instrument == i {
			out = append(out, e)
		}
	}
	return out
}

// Count returns the number of events for instrument i.
func (tl *Timeline) Count(i pattern.Instrument) int {
	n := 0
	for _, e := range tl.events {
		if e.Instrument == i {
			n++
		}
	}
	return n
}

// Dropped returns how many pattern onsets fell at or after the target
// duration and were discarded.
func (tl *Timeline) Dropped() int { return tl.dropped }

// Summary returns a one-line description such as
// "kick=8 snare=4 hihat=16 bass=8 dropped=0".
func (tl *Timeline) Summary() string {
	var sb strings.Builder
	for _, i := range pattern.Instruments() {
		fmt.Fprintf(&sb, "%s=%d ", i, tl.Count(i))
	}
	fmt.Fprintf(&sb, "dropped=%d", tl.dropped)
	return sb.String()
}
