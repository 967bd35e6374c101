package mixer

import (
	"errors"
	"math"
	"testing"

	"github.com/haivivi/beatforge/pkg/audio/dsp"
	"github.com/haivivi/beatforge/pkg/audio/pcm"
	"github.com/haivivi/beatforge/pkg/pattern"
	"github.com/haivivi/beatforge/pkg/timeline"
)

var errNoSample = errors.New("no sample")

type fakeBank struct {
	samples map[pattern.Instrument]*pcm.Buffer
	lookups map[pattern.Instrument]int
}

func newFakeBank(f pcm.Format, n int, level float32, insts ...pattern.Instrument) *fakeBank {
	b := &fakeBank{
		samples: make(map[pattern.Instrument]*pcm.Buffer),
		lookups: make(map[pattern.Instrument]int),
	}
	for _, inst := range insts {
		s := make([]float32, n)
		for i := range s {
			s[i] = level
		}
		b.samples[inst] = pcm.Adopt(f, s)
	}
	return b
}

func (b *fakeBank) Lookup(inst pattern.Instrument) (*pcm.Buffer, error) {
	b.lookups[inst]++
	s, ok := b.samples[inst]
	if !ok {
		return nil, errNoSample
	}
	return s, nil
}

func schedule(t *testing.T, p pattern.Pattern, bpm timeline.Tempo, ms int64) *timeline.Timeline {
	t.Helper()
	tl, err := timeline.Schedule(bpm, p, ms)
	if err != nil {
		t.Fatal(err)
	}
	return tl
}

func custom(t *testing.T, onsets map[pattern.Instrument][]pattern.Onset) pattern.Pattern {
	t.Helper()
	bar, err := pattern.NewTemplate("test", onsets)
	if err != nil {
		t.Fatal(err)
	}
	p, err := pattern.NewCustom("test", bar)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestRenderLength(t *testing.T) {
	bank := newFakeBank(pcm.L16Mono44K, 100, 0.5, pattern.Instruments()...)
	tl := schedule(t, pattern.NewFunk(), 120, 2000)
	buf, err := NewMixer().Render(tl, bank)
	if err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 88200 {
		t.Errorf("Len = %d, want 88200", buf.Len())
	}
	if buf.Format() != pcm.L16Mono44K {
		t.Errorf("Format = %v", buf.Format())
	}
}

func TestRenderVelocityGain(t *testing.T) {
	p := custom(t, map[pattern.Instrument][]pattern.Onset{
		pattern.Kick:  {{Beat: 0, Velocity: 127}},
		pattern.Snare: {{Beat: 1, Velocity: 0}},
	})
	bank := newFakeBank(pcm.L16Mono44K, 4, 0.5, pattern.Kick, pattern.Snare)
	buf, err := NewMixer(WithoutDynamics()).Render(schedule(t, p, 120, 2000), bank)
	if err != nil {
		t.Fatal(err)
	}
	if got := buf.At(0); got != 0.5 {
		t.Errorf("velocity 127 sample = %v, want 0.5", got)
	}
	if got := buf.At(22050); math.Abs(float64(got)-0.05) > 1e-6 {
		t.Errorf("velocity 0 sample = %v, want 0.05", got)
	}
	if buf.At(4) != 0 || buf.At(22049) != 0 {
		t.Error("energy outside event windows")
	}
}

func TestVelocityGainDB(t *testing.T) {
	mx := NewMixer()
	tests := []struct {
		v    uint8
		want float64
	}{
		{127, 0},
		{0, -20},
		{100, -20 * 27.0 / 127},
		{200, 0},
	}
	for _, tt := range tests {
		if got := mx.VelocityGainDB(tt.v); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("VelocityGainDB(%d) = %v, want %v", tt.v, got, tt.want)
		}
	}
	if got := NewMixer(WithMaxAttenuation(-30)).VelocityGainDB(0); got != -30 {
		t.Errorf("custom attenuation = %v", got)
	}
}

func TestRenderOverlayIsAdditive(t *testing.T) {
	p := custom(t, map[pattern.Instrument][]pattern.Onset{
		pattern.Kick:  {{Beat: 0, Velocity: 127}},
		pattern.Snare: {{Beat: 0, Velocity: 127}},
	})
	bank := newFakeBank(pcm.L16Mono44K, 10, 0.3, pattern.Kick, pattern.Snare)
	buf, err := NewMixer(WithoutDynamics()).Render(schedule(t, p, 120, 500), bank)
	if err != nil {
		t.Fatal(err)
	}
	if got := buf.At(5); math.Abs(float64(got)-0.6) > 1e-6 {
		t.Errorf("overlapping sample = %v, want 0.6", got)
	}
}

func TestRenderTruncatesAtEnd(t *testing.T) {
	p := custom(t, map[pattern.Instrument][]pattern.Onset{
		pattern.Kick: {{Beat: 3.99, Velocity: 127}},
	})
	bank := newFakeBank(pcm.L16Mono44K, 44100, 0.5, pattern.Kick)
	buf, err := NewMixer(WithoutDynamics()).Render(schedule(t, p, 120, 2000), bank)
	if err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 88200 {
		t.Errorf("Len = %d, want 88200", buf.Len())
	}
	if buf.At(buf.Len()-1) != 0.5 {
		t.Errorf("last sample = %v", buf.At(buf.Len()-1))
	}
}

func TestRenderMissingHihat(t *testing.T) {
	bank := newFakeBank(pcm.L16Mono44K, 200, 0.5, pattern.Kick, pattern.Snare, pattern.Bass)
	tl := schedule(t, pattern.NewPop(), 120, 2000)
	buf, err := NewMixer().Render(tl, bank)
	if buf == nil {
		t.Fatal("Render returned nil buffer")
	}
	if !errors.Is(err, ErrMissingSample) {
		t.Fatalf("err = %v, want ErrMissingSample", err)
	}
	if !errors.Is(err, errNoSample) {
		t.Errorf("err does not wrap the bank error: %v", err)
	}

	var mse *MissingSampleError
	if !errors.As(err, &mse) {
		t.Fatal("errors.As MissingSampleError failed")
	}
	if mse.Instrument != pattern.Hihat || mse.Events != 8 {
		t.Errorf("MissingSampleError = %+v", mse)
	}
	if got := MissingInstruments(err); len(got) != 1 || got[0] != pattern.Hihat {
		t.Errorf("MissingInstruments = %v", got)
	}

	// Kick and snare are still rendered.
	for _, ms := range []int64{0, 500} {
		at := int(pcm.L16Mono44K.SampleIndex(ms))
		var energy float64
		for i := at; i < at+200; i++ {
			energy += float64(buf.At(i) * buf.At(i))
		}
		if energy == 0 {
			t.Errorf("no energy at %d ms", ms)
		}
	}
}

func TestRenderMemoizesLookups(t *testing.T) {
	bank := newFakeBank(pcm.L16Mono44K, 10, 0.5, pattern.Kick, pattern.Snare, pattern.Bass)
	_, _ = NewMixer().Render(schedule(t, pattern.NewFunk(), 120, 8000), bank)
	for _, inst := range pattern.Instruments() {
		if bank.lookups[inst] != 1 {
			t.Errorf("%s looked up %d times", inst, bank.lookups[inst])
		}
	}
}

func TestRenderFormatMismatch(t *testing.T) {
	bank := newFakeBank(pcm.L16Mono16K, 10, 0.5, pattern.Instruments()...)
	buf, err := NewMixer().Render(schedule(t, pattern.NewPop(), 120, 2000), bank)
	if buf == nil {
		t.Fatal("nil buffer")
	}
	if !errors.Is(err, ErrFormatMismatch) || !errors.Is(err, ErrMissingSample) {
		t.Errorf("err = %v", err)
	}
	if got := MissingInstruments(err); len(got) != 4 {
		t.Errorf("MissingInstruments = %v", got)
	}
}

func TestRenderNormalizesToCeiling(t *testing.T) {
	bank := newFakeBank(pcm.L16Mono44K, 500, 0.9, pattern.Instruments()...)
	buf, err := NewMixer(WithCeiling(-1)).Render(schedule(t, pattern.NewFunk(), 120, 2000), bank)
	if err != nil {
		t.Fatal(err)
	}
	ceiling := float32(dsp.DBToGain(-1))
	if buf.Peak() > ceiling+1e-6 {
		t.Errorf("peak %v above ceiling %v", buf.Peak(), ceiling)
	}
	if buf.Peak() == 0 {
		t.Error("silent render")
	}
}

func TestRenderNilTimeline(t *testing.T) {
	buf, err := NewMixer().Render(nil, newFakeBank(pcm.L16Mono44K, 1, 0))
	if buf != nil || !errors.Is(err, ErrNilTimeline) {
		t.Errorf("Render(nil) = %v, %v", buf, err)
	}
}
