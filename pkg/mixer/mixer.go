package mixer

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/haivivi/beatforge/pkg/audio/dsp"
	"github.com/haivivi/beatforge/pkg/audio/pcm"
	"github.com/haivivi/beatforge/pkg/pattern"
	"github.com/haivivi/beatforge/pkg/timeline"
)

// SampleBank supplies the one-shot sample for each instrument.
type SampleBank interface {
	Lookup(pattern.Instrument) (*pcm.Buffer, error)
}

// Mixer renders timelines. A Mixer holds only configuration, so one value can
// serve any number of concurrent Render calls.
type Mixer struct {
	format         pcm.Format
	maxAttenuation float64
	ceiling        float64
	compressor     dsp.Compressor
	dynamics       bool
	logger         *slog.Logger
}

// NewMixer returns a mixer with the given options applied over the defaults.
func NewMixer(opts ...Option) *Mixer {
	mx := &Mixer{
		format:         pcm.L16Mono44K,
		maxAttenuation: -20,
		ceiling:        -0.3,
		compressor:     dsp.DefaultCompressor(),
		dynamics:       true,
	}
	for _, opt := range opts {
		opt.apply(mx)
	}
	if mx.logger == nil {
		mx.logger = slog.Default()
	}
	return mx
}

// Format returns the output format.
func (mx *Mixer) Format() pcm.Format { return mx.format }

// Settings describes the parameters that affect rendered output.
type Settings struct {
	Format         pcm.Format
	MaxAttenuation float64
	Ceiling        float64
	Dynamics       bool
	Compressor     dsp.Compressor
}

// Settings returns the mixer's output-affecting configuration.
func (mx *Mixer) Settings() Settings {
	return Settings{
		Format:         mx.format,
		MaxAttenuation: mx.maxAttenuation,
		Ceiling:        mx.ceiling,
		Dynamics:       mx.dynamics,
		Compressor:     mx.compressor,
	}
}

// VelocityGainDB maps a MIDI velocity onto [maxAttenuation, 0] dB linearly.
func (mx *Mixer) VelocityGainDB(velocity uint8) float64 {
	v := min(float64(velocity), 127)
	return mx.maxAttenuation * (1 - v/127)
}

// Render mixes every event of tl into a new buffer as long as tl's duration.
//
// Events whose instrument has no usable sample are skipped; for each such
// instrument a *MissingSampleError is joined into the returned error. The
// buffer is non-nil whenever tl is, so callers can keep a partial render.
func (mx *Mixer) Render(tl *timeline.Timeline, bank SampleBank) (*pcm.Buffer, error) {
	if tl == nil {
		return nil, ErrNilTimeline
	}
	if bank == nil {
		return nil, errors.New("mixer: nil sample bank")
	}

	out := make([]float32, mx.format.SamplesInMillis(tl.DurationMs()))
	samples := make(map[pattern.Instrument]*pcm.Buffer)
	missing := make(map[pattern.Instrument]*MissingSampleError)
	var order []pattern.Instrument

	for _, ev := range tl.Events() {
		if m, ok := missing[ev.Instrument]; ok {
			m.Events++
			continue
		}
		s, ok := samples[ev.Instrument]
		if !ok {
			var err error
			s, err = mx.lookup(bank, ev.Instrument)
			if err != nil {
				missing[ev.Instrument] = &MissingSampleError{Instrument: ev.Instrument, Events: 1, Err: err}
				order = append(order, ev.Instrument)
				continue
			}
			samples[ev.Instrument] = s
		}
		at := int(mx.format.SampleIndex(ev.TimeMs))
		s.MixInto(out, at, dsp.DBToGain(mx.VelocityGainDB(ev.Velocity)))
	}

	if mx.dynamics {
		dsp.Normalize(out, mx.ceiling)
		mx.compressor.Process(out, mx.format.SampleRate())
	}

	var errs []error
	for _, inst := range order {
		m := missing[inst]
		mx.logger.Warn("mixer: skipped events without sample",
			"instrument", inst, "events", m.Events, "err", m.Err)
		errs = append(errs, m)
	}
	mx.logger.Debug("mixer: rendered timeline",
		"style", tl.Style(), "duration_ms", tl.DurationMs(),
		"events", tl.Len(), "samples", len(out))

	return pcm.Adopt(mx.format, out), errors.Join(errs...)
}

func (mx *Mixer) lookup(bank SampleBank, inst pattern.Instrument) (*pcm.Buffer, error) {
	s, err := bank.Lookup(inst)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("mixer: bank returned no sample for %s", inst)
	}
	if s.Format() != mx.format {
		return nil, fmt.Errorf("%w: %s is %v, mixer renders %v", ErrFormatMismatch, inst, s.Format(), mx.format)
	}
	return s, nil
}
