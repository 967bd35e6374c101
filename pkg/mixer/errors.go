package mixer

import (
	"errors"
	"fmt"

	"github.com/haivivi/beatforge/pkg/pattern"
)

var (
	// ErrMissingSample matches every *MissingSampleError via errors.Is.
	ErrMissingSample = errors.New("mixer: missing sample")

	// ErrFormatMismatch is wrapped by a *MissingSampleError when the bank
	// returns a sample in a different format than the mixer renders.
	ErrFormatMismatch = errors.New("mixer: sample format mismatch")

	// ErrNilTimeline is returned by Render for a nil timeline.
	ErrNilTimeline = errors.New("mixer: nil timeline")
)

// MissingSampleError reports an instrument whose events were skipped because
// no usable sample was available.
type MissingSampleError struct {
	Instrument pattern.Instrument
	// Events is the number of skipped events.
	Events int
	Err    error
}

func (e *MissingSampleError) Error() string {
	return fmt.Sprintf("mixer: missing sample for %s (%d events skipped): %v", e.Instrument, e.Events, e.Err)
}

func (e *MissingSampleError) Unwrap() error { return e.Err }

// Is reports whether target is ErrMissingSample.
func (e *MissingSampleError) Is(target error) bool {
	return target == ErrMissingSample
}

// MissingInstruments extracts the instruments named by every
// *MissingSampleError in err, including joined errors.
func MissingInstruments(err error) []pattern.Instrument {
	var out []pattern.Instrument
	walk(err, func(e error) {
		if m, ok := e.(*MissingSampleError); ok {
			out = append(out, m.Instrument)
		}
	})
	return out
}

func walk(err error, fn func(error)) {
	if err == nil {
		return
	}
	fn(err)
	switch x := err.(type) {
	case interface{ Unwrap() []error }:
		for _, e := range x.Unwrap() {
			walk(e, fn)
		}
	case interface{ Unwrap() error }:
		walk(x.Unwrap(), fn)
	}
}
