package samplebank

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/haivivi/beatforge/pkg/audio/dsp"
	"github.com/haivivi/beatforge/pkg/audio/pcm"
	"github.com/haivivi/beatforge/pkg/melody"
	"github.com/haivivi/beatforge/pkg/pattern"
)

// SynthID is the bank ID of the synthesized kit.
const SynthID = "synth-v1"

// noiseSeed fixes the noise so that synthesized kits are bit-identical
// across runs.
const noiseSeed = 0x6265617466

// Synth returns the synthesized kit in format f.
func Synth(f pcm.Format) *Bank {
	b := New(fmt.Sprintf("%s@%d", SynthID, f.SampleRate()))
	rng := rand.New(rand.NewPCG(noiseSeed, noiseSeed))
	b.Set(pattern.Kick, Kick808(f))
	b.Set(pattern.Snare, Snare(f, rng))
	b.Set(pattern.Hihat, Hihat(f, rng))
	b.Set(pattern.Bass, Bass(f, 36))
	return b
}

// Kick808 is a 500 ms sine sweeping down from 60 Hz with an exponential
// decay.
func Kick808(f pcm.Format) *pcm.Buffer {
	rate := float64(f.SampleRate())
	s := make([]float32, f.SamplesInMillis(500))
	var phase float64
	for i := range s {
		t := float64(i) / rate
		freq := 60 * math.Exp(-8*t)
		phase += 2 * math.Pi * freq / rate
		s[i] = float32(math.Sin(phase) * math.Exp(-5*t))
	}
	return pcm.Adopt(f, s)
}

// Snare is a 200 ms 200 Hz tone plus noise, faded out over its last 150 ms.
func Snare(f pcm.Format, rng *rand.Rand) *pcm.Buffer {
	rate := float64(f.SampleRate())
	s := make([]float32, f.SamplesInMillis(200))
	for i := range s {
		t := float64(i) / rate
		s[i] = float32(0.5*math.Sin(2*math.Pi*200*t) + 0.3*noise(rng))
	}
	dsp.FadeOut(s, int(f.SamplesInMillis(150)))
	return pcm.Adopt(f, s)
}

// Hihat is 50 ms of quiet noise, faded out over its last 30 ms.
func Hihat(f pcm.Format, rng *rand.Rand) *pcm.Buffer {
	s := make([]float32, f.SamplesInMillis(50))
	for i := range s {
		s[i] = float32(0.15 * noise(rng))
	}
	dsp.FadeOut(s, int(f.SamplesInMillis(30)))
	return pcm.Adopt(f, s)
}

// Bass is a 400 ms sine at MIDI note with a short attack and release.
func Bass(f pcm.Format, note uint8) *pcm.Buffer {
	rate := float64(f.SampleRate())
	freq := melody.MIDIToHz(float64(note))
	s := make([]float32, f.SamplesInMillis(400))
	for i := range s {
		t := float64(i) / rate
		s[i] = float32(0.6 * math.Sin(2*math.Pi*freq*t))
	}
	dsp.FadeIn(s, int(f.SamplesInMillis(10)))
	dsp.FadeOut(s, int(f.SamplesInMillis(100)))
	return pcm.Adopt(f, s)
}

// noise returns uniform noise in [-1, 1).
func noise(rng *rand.Rand) float64 {
	return rng.Float64()*2 - 1
}
