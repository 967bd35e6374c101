package project

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/haivivi/beatforge/pkg/audio/codec/wav"
	"github.com/haivivi/beatforge/pkg/audio/pcm"
	"github.com/haivivi/beatforge/pkg/composer"
	"github.com/haivivi/beatforge/pkg/mixer"
	"github.com/haivivi/beatforge/pkg/pattern"
	"github.com/haivivi/beatforge/pkg/samplebank"
	"github.com/haivivi/beatforge/pkg/timeline"
	"github.com/haivivi/beatforge/pkg/vocal"
)

const projectYAML = `
name: demo
tempo: 120
sample_rate: 16k
patterns:
  - style: halftime
    bars:
      - kick: [{beat: 0, velocity: 110}]
        snare: [{beat: 2, velocity: 100}]
        hihat: [{beat: 0, velocity: 70}, {beat: 1, velocity: 70}, {beat: 2, velocity: 70}, {beat: 3, velocity: 70}]
mixer:
  dynamics: false
sections:
  - {name: intro, duration_ms: 1000, style: halftime, fade_in_ms: 200}
  - {name: groove, duration_ms: 2000, style: funk, gain_db: 1}
melody:
  notes: [{pitch: 60, dur_ms: 250}, {pitch: -1, dur_ms: 250}, {pitch: 67, dur_ms: 500}]
  start_ms: 500
  gain_db: -6
  harmony: [4]
export:
  name: demo
  format: mp3
  bitrate: 192
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAndValidate(t *testing.T) {
	p, err := Load(writeFile(t, "song.yaml", projectYAML))
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}
	if p.Tempo != 120 || len(p.Sections) != 2 || p.Sections[0].FadeInMs != 200 {
		t.Errorf("project = %+v", p)
	}
	if p.Export.Bitrate != 192 || p.DurationMs() != 3000 {
		t.Errorf("export = %+v, duration = %d", p.Export, p.DurationMs())
	}
	f, err := p.Format()
	if err != nil || f != pcm.L16Mono16K {
		t.Errorf("Format() = %v, %v", f, err)
	}

	lib, err := p.Library()
	if err != nil {
		t.Fatal(err)
	}
	bar, err := lib.PatternFor("halftime", 0)
	if err != nil {
		t.Fatal(err)
	}
	if bar.Count(pattern.Hihat) != 4 || bar.Count(pattern.Bass) != 0 {
		t.Errorf("halftime bar counts: hihat=%d bass=%d", bar.Count(pattern.Hihat), bar.Count(pattern.Bass))
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "song.json", `{"tempo": 95, "sections": [{"name": "a", "duration_ms": 4000, "style": "pop"}]}`)
	p, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	p := &Project{
		Tempo:      0,
		SampleRate: "22k",
		Sections:   []composer.Section{{Name: "x", DurationMs: 1000, Style: "jazz"}},
		Melody:     &MelodySpec{Preset: "nope"},
		Vocals:     []VocalSpec{{AtMs: -1}},
		Export:     ExportSpec{Format: "ogg"},
	}
	err := p.Validate()
	if !errors.Is(err, timeline.ErrConfig) {
		t.Fatalf("err = %v", err)
	}
	for _, want := range []string{"tempo", "sample_rate", "sections[0].style", "melody.preset", "vocals[0]", "vocals[0].at_ms", "export.format"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error does not mention %s: %v", want, err)
		}
	}
}

func TestValidateBadCustomPattern(t *testing.T) {
	p := Default(pattern.StyleFunk, 100)
	p.Patterns = []PatternSpec{{Style: "odd", Bars: []BarSpec{{"cowbell": {{Beat: 0, Velocity: 90}}}}}}
	if err := p.Validate(); err == nil || !strings.Contains(err.Error(), "cowbell") {
		t.Errorf("err = %v", err)
	}
	p.Patterns = []PatternSpec{{Style: "odd", Bars: []BarSpec{{"kick": {{Beat: 4, Velocity: 90}}}}}}
	if err := p.Validate(); !errors.Is(err, pattern.ErrInvalidOnset) {
		t.Errorf("err = %v", err)
	}
	p.Patterns = []PatternSpec{{Style: "funk", Bars: []BarSpec{{"kick": {{Beat: 0, Velocity: 90}}}}}}
	if err := p.Validate(); !errors.Is(err, pattern.ErrDuplicateStyle) {
		t.Errorf("err = %v", err)
	}
}

func TestDefault(t *testing.T) {
	p := Default(pattern.StylePop, 110)
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}
	if p.DurationMs() != 80000 || len(p.Sections) != 6 {
		t.Errorf("sections = %+v", p.Sections)
	}
	if p.Melody == nil || p.Melody.Preset != "pop" || p.Melody.GainDB != DefaultMelodyGainDB {
		t.Errorf("melody = %+v", p.Melody)
	}
}

func TestMixerOptions(t *testing.T) {
	off := false
	ceil := -3.0
	p := &Project{SampleRate: "48k", Mixer: MixerSpec{Dynamics: &off, CeilingDB: &ceil}}
	opts, err := p.MixerOptions()
	if err != nil {
		t.Fatal(err)
	}
	s := mixer.NewMixer(opts...).Settings()
	if s.Format != pcm.L16Mono48K || s.Dynamics || s.Ceiling != -3 {
		t.Errorf("settings = %+v", s)
	}
}

func TestRender(t *testing.T) {
	p, err := Load(writeFile(t, "song.yaml", projectYAML))
	if err != nil {
		t.Fatal(err)
	}
	res, err := Render(context.Background(), p, Env{Bank: samplebank.Synth(pcm.L16Mono16K)})
	if err != nil {
		t.Fatal(err)
	}
	if res.Layers != 1 {
		t.Errorf("Layers = %d", res.Layers)
	}
	if res.Buffer.DurationMs() != 3000 || res.Buffer.Len() != res.Song.Buffer.Len() {
		t.Errorf("duration = %d", res.Buffer.DurationMs())
	}
	if res.Buffer.Format() != pcm.L16Mono16K {
		t.Errorf("format = %v", res.Buffer.Format())
	}
}

func TestRenderVocalFileAndMissingSynth(t *testing.T) {
	dir := t.TempDir()
	samples := make([]float32, 1600)
	for i := range samples {
		samples[i] = 0.5 * float32(i%40) / 40
	}
	clip := pcm.NewBuffer(pcm.L16Mono16K, samples)
	f, err := os.Create(filepath.Join(dir, "hey.wav"))
	if err != nil {
		t.Fatal(err)
	}
	if err := wav.Encode(f, clip); err != nil {
		t.Fatal(err)
	}
	f.Close()

	p := &Project{
		Tempo:      120,
		SampleRate: "16k",
		Sections:   []composer.Section{{Name: "a", DurationMs: 2000, Style: "pop"}},
		Vocals:     []VocalSpec{{File: "hey.wav", AtMs: 500, Echo: true, Chop: &Chop{Ms: 50, Reps: 2}}},
	}
	res, err := Render(context.Background(), p, Env{Bank: samplebank.Synth(pcm.L16Mono16K), BaseDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if res.Layers != 1 {
		t.Errorf("Layers = %d", res.Layers)
	}

	p.Vocals = []VocalSpec{{Text: "hello", AtMs: 0}}
	if _, err := Render(context.Background(), p, Env{Bank: samplebank.Synth(pcm.L16Mono16K)}); err == nil {
		t.Error("text vocal rendered without a synthesizer")
	}

	var spoken string
	synth := vocal.SynthesizerFunc(func(_ context.Context, text, _ string) (string, error) {
		spoken = text
		out := filepath.Join(t.TempDir(), "tts.wav")
		w, err := os.Create(out)
		if err != nil {
			return "", err
		}
		defer w.Close()
		return out, wav.Encode(w, clip)
	})
	if _, err := Render(context.Background(), p, Env{Bank: samplebank.Synth(pcm.L16Mono16K), Synthesizer: synth}); err != nil {
		t.Fatal(err)
	}
	if spoken != "hello" {
		t.Errorf("spoken = %q", spoken)
	}
}

func TestRenderMissingSamples(t *testing.T) {
	bank := samplebank.New("partial")
	kit := samplebank.Synth(pcm.L16Mono44K)
	kick, _ := kit.Lookup(pattern.Kick)
	bank.Set(pattern.Kick, kick)

	p := &Project{Tempo: 120, Sections: []composer.Section{{Name: "a", DurationMs: 2000, Style: "funk"}}}
	res, err := Render(context.Background(), p, Env{Bank: bank})
	if res == nil {
		t.Fatalf("no result: %v", err)
	}
	if !errors.Is(err, mixer.ErrMissingSample) {
		t.Errorf("err = %v", err)
	}
	if res.Buffer.Peak() == 0 {
		t.Error("kick energy missing")
	}
}
