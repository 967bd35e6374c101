// Package melody synthesizes simple melodic lines from MIDI notes.
//
// Notes are rendered back to back as harmonic tones with a short attack and
// release, the way a lead synth line is laid over a drum track:
//
//	line := melody.FromBeats(128,
//		melody.B(60, melody.Quarter), melody.B(62, melody.Quarter),
//		melody.B(64, melody.Half),
//	)
//	buf := melody.Render(line, pcm.L16Mono44K, 0.8)
package melody

import (
	"math"

	"github.com/haivivi/beatforge/pkg/audio/dsp"
	"github.com/haivivi/beatforge/pkg/audio/pcm"
)

// Rest is the pitch of a silent note.
const Rest = -1

// Note is a pitch held for a duration.
type Note struct {
	// Pitch is a MIDI note number, or Rest.
	Pitch int   `json:"pitch" yaml:"pitch"`
	DurMs int64 `json:"dur_ms" yaml:"dur_ms"`
}

// Note values in beats, quarter note = 1.
const (
	Whole      = 4.0
	Half       = 2.0
	Quarter    = 1.0
	Eighth     = 0.5
	Sixteenth  = 0.25
	DotHalf    = 3.0
	DotQuarter = 1.5
	DotEighth  = 0.75
)

// BeatNote is a note whose length is given in beats.
type BeatNote struct {
	Pitch int
	Beats float64
}

// B is a shorthand constructor for BeatNote.
func B(pitch int, beats float64) BeatNote {
	return BeatNote{Pitch: pitch, Beats: beats}
}

// FromBeats converts beat-valued notes to millisecond durations at bpm.
func FromBeats(bpm float64, notes ...BeatNote) []Note {
	out := make([]Note, len(notes))
	for i, n := range notes {
		out[i] = Note{Pitch: n.Pitch, DurMs: int64(n.Beats * 60000 / bpm)}
	}
	return out
}

// MIDIToHz converts a MIDI note number to a frequency (A4 = 69 = 440 Hz).
func MIDIToHz(note float64) float64 {
	return 440 * math.Pow(2, (note-69)/12)
}

// HzToMIDI returns the MIDI note at or below frequency hz.
func HzToMIDI(hz float64) int {
	return int(math.Floor(69 + 12*math.Log2(hz/440) + 1e-9))
}

// DurationMs returns the total length of notes.
func DurationMs(notes []Note) int64 {
	var d int64
	for _, n := range notes {
		d += max(n.DurMs, 0)
	}
	return d
}

// harmonics is a bright lead timbre: partial ratio, amplitude, decay rate.
var harmonics = []struct {
	ratio, amp, decay float64
}{
	{1, 1.0, 1.0},
	{2, 0.5, 1.4},
	{3, 0.25, 1.9},
	{4, 0.12, 2.5},
}

// Render synthesizes notes back to back into a buffer in format f. volume is
// the linear peak amplitude of a sustained note.
func Render(notes []Note, f pcm.Format, volume float64) *pcm.Buffer {
	out := make([]float32, 0, f.SamplesInMillis(DurationMs(notes)))
	for _, n := range notes {
		if n.DurMs <= 0 {
			continue
		}
		out = append(out, tone(n, f, volume)...)
	}
	return pcm.Adopt(f, out)
}

func tone(n Note, f pcm.Format, volume float64) []float32 {
	s := make([]float32, f.SamplesInMillis(n.DurMs))
	if n.Pitch == Rest {
		return s
	}

	rate := float64(f.SampleRate())
	freq := MIDIToHz(float64(n.Pitch))
	length := float64(len(s)) / rate
	var norm float64
	for _, h := range harmonics {
		norm += h.amp
	}
	for i := range s {
		t := float64(i) / rate
		var v float64
		for _, h := range harmonics {
			if freq*h.ratio >= rate/2 {
				continue
			}
			v += h.amp * math.Exp(-t/length*h.decay) * math.Sin(2*math.Pi*freq*h.ratio*t)
		}
		s[i] = float32(volume * v / norm)
	}

	attack := min(50, n.DurMs/4)
	release := min(100, n.DurMs/4)
	dsp.FadeIn(s, int(f.SamplesInMillis(attack)))
	dsp.FadeOut(s, int(f.SamplesInMillis(release)))
	return s
}

// RenderHarmony renders notes once per interval (in semitones) and sums
// the voices; every voice after the first is 3 dB quieter than the one
// before it.
func RenderHarmony(notes []Note, f pcm.Format, volume float64, intervals ...int) *pcm.Buffer {
	if len(intervals) == 0 {
		intervals = []int{0}
	}
	var out []float32
	gain := 1.0
	for i, iv := range intervals {
		shifted := make([]Note, len(notes))
		for j, n := range notes {
			shifted[j] = n
			if n.Pitch != Rest {
				shifted[j].Pitch += iv
			}
		}
		voice := Render(shifted, f, volume)
		if i == 0 {
			out = voice.Samples()
			continue
		}
		gain *= dsp.DBToGain(-3)
		voice.MixInto(out, 0, gain)
	}
	return pcm.Adopt(f, out)
}
