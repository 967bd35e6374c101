package pattern

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

var (
	// ErrUnknownStyle is returned when a style has no registered pattern.
	ErrUnknownStyle = errors.New("pattern: unknown style")

	// ErrDuplicateStyle is returned when registering a style twice.
	ErrDuplicateStyle = errors.New("pattern: duplicate style")

	// ErrInvalidPattern is returned when registering a nil pattern or one
	// without a style name.
	ErrInvalidPattern = errors.New("pattern: invalid pattern")

	// ErrInvalidOnset is returned for an onset outside the bar or with an
	// out-of-range velocity.
	ErrInvalidOnset = errors.New("pattern: invalid onset")
)

// Instrument identifies one voice of the drum kit.
type Instrument string

const (
	Kick  Instrument = "kick"
	Snare Instrument = "snare"
	Hihat Instrument = "hihat"
	Bass  Instrument = "bass"
)

var instruments = []Instrument{Kick, Snare, Hihat, Bass}

// Instruments returns every instrument in canonical order.
func Instruments() []Instrument {
	return slices.Clone(instruments)
}

// ParseInstrument parses an instrument name, ignoring case.
func ParseInstrument(s string) (Instrument, error) {
	i := Instrument(strings.ToLower(strings.TrimSpace(s)))
	if i.Order() < 0 {
		return "", fmt.Errorf("pattern: unknown instrument %q", s)
	}
	return i, nil
}

// Order returns the instrument's position in the canonical order
// (kick, snare, hihat, bass), or -1 for an unknown instrument.
func (i Instrument) Order() int {
	return slices.Index(instruments, i)
}

// DefaultPitch returns the General MIDI note for a drum instrument. Bass has
// no default; its onsets carry their own pitch.
func (i Instrument) DefaultPitch() uint8 {
	switch i {
	case Kick:
		return 36
	case Snare:
		return 38
	case Hihat:
		return 42
	}
	return 0
}

// Style names a pattern family.
type Style string

const (
	StyleFunk Style = "funk"
	StylePop  Style = "pop"
)

// ParseStyle normalizes a style name. Matching is case-insensitive.
func ParseStyle(s string) (Style, error) {
	st := Style(strings.ToLower(strings.TrimSpace(s)))
	if st == "" {
		return "", fmt.Errorf("%w: empty name", ErrUnknownStyle)
	}
	return st, nil
}

// Onset is a single hit inside a bar.
type Onset struct {
	// Beat is the offset from the start of the bar in beats, 0 <= Beat < 4.
	Beat float64
	// Velocity is the MIDI velocity, 0..127.
	Velocity uint8
	// Pitch is the MIDI note. Zero selects the instrument's default.
	Pitch uint8
	// Length is the note length in beats, used when writing MIDI.
	Length float64
}

// Note returns the onset's MIDI note for instrument i.
func (o Onset) Note(i Instrument) uint8 {
	if o.Pitch != 0 {
		return o.Pitch
	}
	return i.DefaultPitch()
}

func (o Onset) validate() error {
	switch {
	case math.IsNaN(o.Beat) || o.Beat < 0 || o.Beat >= 4:
		return fmt.Errorf("%w: beat %v outside [0, 4)", ErrInvalidOnset, o.Beat)
	case o.Velocity > 127:
		return fmt.Errorf("%w: velocity %d > 127", ErrInvalidOnset, o.Velocity)
	case o.Pitch > 127:
		return fmt.Errorf("%w: pitch %d > 127", ErrInvalidOnset, o.Pitch)
	case math.IsNaN(o.Length) || o.Length < 0:
		return fmt.Errorf("%w: length %v", ErrInvalidOnset, o.Length)
	}
	return nil
}

// Template is one bar of a pattern: a style tag plus ordered onsets for each
// instrument. The zero Template is an empty bar.
type Template struct {
	style  Style
	onsets map[Instrument][]Onset
}

// NewTemplate validates onsets and returns a Template. Onsets are copied and
// sorted by beat; equal beats keep their input order.
func NewTemplate(style Style, onsets map[Instrument][]Onset) (Template, error) {
	t := Template{style: style, onsets: make(map[Instrument][]Onset, len(onsets))}
	for inst, list := range onsets {
		if inst.Order() < 0 {
			return Template{}, fmt.Errorf("pattern: unknown instrument %q", inst)
		}
		if len(list) == 0 {
			continue
		}
		for _, o := range list {
			if err := o.validate(); err != nil {
				return Template{}, fmt.Errorf("%s: %w", inst, err)
			}
		}
		sorted := slices.Clone(list)
		slices.SortStableFunc(sorted, func(a, b Onset) int {
			switch {
			case a.Beat < b.Beat:
				return -1
			case a.Beat > b.Beat:
				return 1
			}
			return 0
		})
		t.onsets[inst] = sorted
	}
	return t, nil
}

func mustTemplate(style Style, onsets map[Instrument][]Onset) Template {
	t, err := NewTemplate(style, onsets)
	if err != nil {
		panic(err)
	}
	return t
}

// Style returns the template's style tag.
func (t Template) Style() Style { return t.style }

// Onsets returns a copy of the onsets for instrument i in beat order.
func (t Template) Onsets(i Instrument) []Onset {
	return slices.Clone(t.onsets[i])
}

// Count returns the number of onsets for instrument i.
func (t Template) Count(i Instrument) int {
	return len(t.onsets[i])
}

// Instruments returns the instruments that have onsets, in canonical order.
func (t Template) Instruments() []Instrument {
	var out []Instrument
	for _, i := range instruments {
		if len(t.onsets[i]) > 0 {
			out = append(out, i)
		}
	}
	return out
}

func (t Template) withStyle(style Style) Template {
	return Template{style: style, onsets: t.onsets}
}

// Pattern produces the template for any bar of a song. Implementations must
// be deterministic: the same bar index always yields the same template.
type Pattern interface {
	// Style returns the style this pattern is registered under.
	Style() Style
	// Cycle returns how many distinct bars the pattern has before it repeats.
	Cycle() int
	// Bar returns the template for bar index (0-based).
	Bar(index int) Template
}

// Accent sets the hihat velocities on even (strong) and odd (weak)
// subdivisions.
type Accent struct {
	Strong uint8
	Weak   uint8
}

func (a Accent) velocity(subdivision int) uint8 {
	if subdivision%2 == 0 {
		return a.Strong
	}
	return a.Weak
}

// Option configures the built-in patterns.
type Option func(*options)

type options struct {
	accent *Accent
}

// WithHihatAccent overrides the hihat accent of the built-in patterns.
func WithHihatAccent(a Accent) Option {
	return func(o *options) { o.accent = &a }
}

func applyOptions(opts []Option, def Accent) Accent {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.accent != nil {
		return *o.accent
	}
	return def
}

func cycleIndex(index, n int) int {
	return ((index % n) + n) % n
}
