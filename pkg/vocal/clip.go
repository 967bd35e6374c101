package vocal

import (
	"context"
	"os"

	"github.com/haivivi/beatforge/pkg/audio/codec/wav"
	"github.com/haivivi/beatforge/pkg/audio/dsp"
	"github.com/haivivi/beatforge/pkg/audio/pcm"
)

// Echo defaults: a single repeat 100 ms later, 12 dB down.
const (
	EchoDelayMs = 100
	EchoGainDB  = -12
)

// LoadClip decodes a WAV file into format f.
func LoadClip(path string, f pcm.Format) (*pcm.Buffer, error) {
	return wav.DecodeFile(path, f)
}

// Speak synthesizes text and loads the result, removing the temporary file.
func Speak(ctx context.Context, s Synthesizer, text, lang string, f pcm.Format) (*pcm.Buffer, error) {
	path, err := s.Synthesize(ctx, text, lang)
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)
	return LoadClip(path, f)
}

// Overlay returns a copy of base with clip added at atMs, scaled by gainDB.
// The result keeps base's length; the part of clip past the end is dropped.
func Overlay(base, clip *pcm.Buffer, atMs int64, gainDB float64) *pcm.Buffer {
	at := int(base.Format().SampleIndex(atMs))
	return base.Transform(func(s []float32) {
		clip.MixInto(s, at, dsp.DBToGain(gainDB))
	})
}

// WithEcho mixes a delayed, attenuated copy of clip into itself.
func WithEcho(clip *pcm.Buffer, delayMs int64, gainDB float64) *pcm.Buffer {
	return Overlay(clip, clip, delayMs, gainDB)
}

// Prepare normalizes clip to ceilingDB and adds the default echo.
func Prepare(clip *pcm.Buffer, ceilingDB float64) *pcm.Buffer {
	n := clip.Transform(func(s []float32) { dsp.Normalize(s, ceilingDB) })
	return WithEcho(n, EchoDelayMs, EchoGainDB)
}

// Chop cuts reps consecutive slices of chopMs from clip, wrapping around its
// start, gives each a 10 ms fade at both ends and joins them with 50 ms of
// silence after each slice.
func Chop(clip *pcm.Buffer, chopMs int64, reps int) *pcm.Buffer {
	f := clip.Format()
	size := min(int(f.SamplesInMillis(chopMs)), clip.Len())
	gap := make([]float32, f.SamplesInMillis(50))
	fade := int(f.SamplesInMillis(10))

	var out []float32
	if size <= 0 {
		return pcm.Adopt(f, out)
	}
	for i := range reps {
		start := (i * size) % clip.Len()
		piece := clip.Slice(start, start+size).Samples()
		dsp.FadeIn(piece, fade)
		dsp.FadeOut(piece, fade)
		out = append(out, piece...)
		out = append(out, gap...)
	}
	return pcm.Adopt(f, out)
}
