package mixer

import (
	"log/slog"

	"github.com/haivivi/beatforge/pkg/audio/dsp"
	"github.com/haivivi/beatforge/pkg/audio/pcm"
)

// Option is an option for configuring a Mixer.
type Option interface {
	apply(*Mixer)
}

type formatOption struct {
	format pcm.Format
}

func (o formatOption) apply(mx *Mixer) {
	mx.format = o.format
}

// WithFormat sets the output format. Defaults to pcm.L16Mono44K.
func WithFormat(f pcm.Format) Option {
	return formatOption{format: f}
}

type maxAttenuationOption struct {
	db float64
}

func (o maxAttenuationOption) apply(mx *Mixer) {
	mx.maxAttenuation = o.db
}

// WithMaxAttenuation sets the gain, in dB, applied to a velocity-0 event.
// Velocity 127 always plays at 0 dB. Defaults to -20.
func WithMaxAttenuation(db float64) Option {
	return maxAttenuationOption{db: db}
}

type ceilingOption struct {
	db float64
}

func (o ceilingOption) apply(mx *Mixer) {
	mx.ceiling = o.db
}

// WithCeiling sets the peak normalization target in dBFS. Defaults to -0.3.
func WithCeiling(db float64) Option {
	return ceilingOption{db: db}
}

type compressorOption struct {
	c dsp.Compressor
}

func (o compressorOption) apply(mx *Mixer) {
	mx.compressor = o.c
	mx.dynamics = true
}

// WithCompressor replaces the default compressor settings.
func WithCompressor(c dsp.Compressor) Option {
	return compressorOption{c: c}
}

type noDynamicsOption struct{}

func (noDynamicsOption) apply(mx *Mixer) {
	mx.dynamics = false
}

// WithoutDynamics disables normalization and compression; Render returns the
// raw sum of the overlaid samples.
func WithoutDynamics() Option {
	return noDynamicsOption{}
}

type loggerOption struct {
	logger *slog.Logger
}

func (o loggerOption) apply(mx *Mixer) {
	mx.logger = o.logger
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return loggerOption{logger: l}
}
