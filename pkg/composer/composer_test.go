package composer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/haivivi/beatforge/pkg/audio/dsp"
	"github.com/haivivi/beatforge/pkg/audio/pcm"
	"github.com/haivivi/beatforge/pkg/mixer"
	"github.com/haivivi/beatforge/pkg/pattern"
	"github.com/haivivi/beatforge/pkg/timeline"
)

type testBank struct {
	mu      sync.Mutex
	id      string
	skip    map[pattern.Instrument]bool
	lookups int
}

func (b *testBank) Lookup(inst pattern.Instrument) (*pcm.Buffer, error) {
	b.mu.Lock()
	b.lookups++
	b.mu.Unlock()
	if b.skip[inst] {
		return nil, errors.New("not in kit")
	}
	s := make([]float32, 300)
	for i := range s {
		s[i] = float32(math.Sin(float64(i) / 5))
	}
	return pcm.Adopt(pcm.L16Mono44K, s), nil
}

func (b *testBank) ID() string { return b.id }

type mapCache struct {
	mu   sync.Mutex
	data map[string]*pcm.Buffer
	puts int
}

func (c *mapCache) Get(_ context.Context, key CacheKey) (*pcm.Buffer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key.String()], nil
}

func (c *mapCache) Put(_ context.Context, key CacheKey, buf *pcm.Buffer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key.String()] = buf
	c.puts++
	return nil
}

func newComposer(bank mixer.SampleBank, opts ...Option) *Composer {
	return New(pattern.NewLibrary(), mixer.NewMixer(), bank, opts...)
}

func TestComposeDefaultStructureLength(t *testing.T) {
	c := newComposer(&testBank{})
	sections := DefaultStructure(pattern.StylePop)
	song, err := c.Compose(context.Background(), sections, 120)
	if err != nil {
		t.Fatal(err)
	}
	var want int64
	for _, s := range sections {
		want += s.DurationMs
	}
	if song.DurationMs() != want || want != 80000 {
		t.Errorf("DurationMs = %d, want %d", song.DurationMs(), want)
	}
	if got := song.Buffer.DurationMs(); got != want {
		t.Errorf("buffer duration = %d ms, want %d", got, want)
	}
	if song.ID == "" {
		t.Error("empty song ID")
	}
	for i, rs := range song.Sections {
		if rs.Section.Name != sections[i].Name {
			t.Errorf("section %d = %q, want %q", i, rs.Section.Name, sections[i].Name)
		}
	}
}

func TestComposeSumOfArbitraryDurations(t *testing.T) {
	tests := []struct {
		name      string
		durations []int64
	}{
		{"mixed", []int64{1234, 777, 3001}},
		{"odd milliseconds", []int64{1001, 1001, 1001, 1001, 1001, 1001, 1001, 1001, 1001, 1001}},
		{"short sections", []int64{13, 7, 29, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newComposer(&testBank{}, WithWorkers(2))
			var sections []Section
			var sum int64
			for i, d := range tt.durations {
				style := pattern.StyleFunk
				if i%2 == 1 {
					style = pattern.StylePop
				}
				sections = append(sections, Section{Name: fmt.Sprintf("s%d", i), DurationMs: d, Style: style})
				sum += d
			}
			song, err := c.Compose(context.Background(), sections, 97)
			if err != nil {
				t.Fatal(err)
			}
			if song.DurationMs() != sum {
				t.Errorf("DurationMs = %d, want %d", song.DurationMs(), sum)
			}
			if want := pcm.L16Mono44K.SamplesInMillis(sum); int64(song.Buffer.Len()) != want {
				t.Errorf("Len = %d, want %d", song.Buffer.Len(), want)
			}
			if got := song.Buffer.DurationMs(); got != sum {
				t.Errorf("buffer duration = %d ms, want %d", got, sum)
			}
		})
	}
}

func TestComposeOrderMatchesInput(t *testing.T) {
	c := newComposer(&testBank{}, WithWorkers(4))
	sections := []Section{
		{Name: "funk", DurationMs: 2000, Style: pattern.StyleFunk},
		{Name: "pop", DurationMs: 2000, Style: pattern.StylePop},
	}
	song, err := c.Compose(context.Background(), sections, 120)
	if err != nil {
		t.Fatal(err)
	}
	n := song.Sections[0].Buffer.Len()
	for i, s := range sections {
		tl, err := timeline.Schedule(120, mustLookup(t, s.Style), s.DurationMs)
		if err != nil {
			t.Fatal(err)
		}
		direct, err := mixer.NewMixer().Render(tl, &testBank{})
		if err != nil {
			t.Fatal(err)
		}
		for k := 0; k < direct.Len(); k += 997 {
			if song.Buffer.At(i*n+k) != direct.At(k) {
				t.Fatalf("section %d sample %d differs from direct render", i, k)
			}
		}
	}
}

func mustLookup(t *testing.T, s pattern.Style) pattern.Pattern {
	t.Helper()
	p, err := pattern.NewLibrary().Lookup(s)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestComposeFadesAndGain(t *testing.T) {
	c := newComposer(&testBank{})
	sections := []Section{
		{Name: "plain", DurationMs: 2000, Style: pattern.StylePop},
		{Name: "in", DurationMs: 2000, Style: pattern.StylePop, FadeInMs: 1000},
		{Name: "loud", DurationMs: 2000, Style: pattern.StylePop, GainDB: 2},
		{Name: "out", DurationMs: 2000, Style: pattern.StylePop, FadeOutMs: 5000},
	}
	song, err := c.Compose(context.Background(), sections, 120)
	if err != nil {
		t.Fatal(err)
	}
	plain := song.Sections[0].Buffer
	in := song.Sections[1].Buffer
	if in.At(0) != 0 {
		t.Errorf("fade-in first sample = %v", in.At(0))
	}
	if in.Peak() > plain.Peak() {
		t.Errorf("fade-in raised the peak: %v > %v", in.Peak(), plain.Peak())
	}
	loud := song.Sections[2].Buffer
	ratio := float64(loud.Peak()) / float64(plain.Peak())
	if math.Abs(ratio-dsp.DBToGain(2)) > 1e-3 {
		t.Errorf("gain ratio = %v, want %v", ratio, dsp.DBToGain(2))
	}
	out := song.Sections[3].Buffer
	if out.At(out.Len()-1) != 0 {
		t.Errorf("fade-out last sample = %v", out.At(out.Len()-1))
	}
}

func TestComposeInvalidTempo(t *testing.T) {
	for _, bpm := range []timeline.Tempo{0, timeline.MaxTempo + 1, 1e300} {
		bank := &testBank{}
		song, err := newComposer(bank).Compose(context.Background(), DefaultStructure(pattern.StyleFunk), bpm)
		if song != nil {
			t.Errorf("got a song for bpm %g", float64(bpm))
		}
		var cfg *timeline.ConfigError
		if !errors.As(err, &cfg) || cfg.Field != "tempo" {
			t.Errorf("bpm %g: err = %v", float64(bpm), err)
		}
		if bank.lookups != 0 {
			t.Errorf("bank used %d times before validation failed", bank.lookups)
		}
	}
}

func TestComposeValidatesEverySectionFirst(t *testing.T) {
	tests := []struct {
		name    string
		section Section
		target  error
	}{
		{"zero duration", Section{Name: "x", Style: pattern.StylePop}, timeline.ErrConfig},
		{"negative fade", Section{Name: "x", DurationMs: 10, Style: pattern.StylePop, FadeInMs: -1}, timeline.ErrConfig},
		{"unknown style", Section{Name: "x", DurationMs: 10, Style: "polka"}, pattern.ErrUnknownStyle},
		{"nan gain", Section{Name: "x", DurationMs: 10, Style: pattern.StylePop, GainDB: math.NaN()}, timeline.ErrConfig},
		{"too long", Section{Name: "x", DurationMs: timeline.MaxDurationMs + 1, Style: pattern.StylePop}, timeline.ErrConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bank := &testBank{}
			sections := []Section{{Name: "ok", DurationMs: 1000, Style: pattern.StyleFunk}, tt.section}
			song, err := newComposer(bank).Compose(context.Background(), sections, 120)
			if song != nil || !errors.Is(err, tt.target) {
				t.Errorf("Compose = %v, %v; want %v", song, err, tt.target)
			}
			if bank.lookups != 0 {
				t.Errorf("rendering started before validation: %d lookups", bank.lookups)
			}
		})
	}

	if _, err := newComposer(&testBank{}).Compose(context.Background(), nil, 120); !errors.Is(err, timeline.ErrConfig) {
		t.Errorf("empty sections: %v", err)
	}
}

func TestComposeMissingSampleKeepsSong(t *testing.T) {
	bank := &testBank{skip: map[pattern.Instrument]bool{pattern.Hihat: true}}
	sections := []Section{
		{Name: "a", DurationMs: 2000, Style: pattern.StylePop},
		{Name: "b", DurationMs: 2000, Style: pattern.StyleFunk},
	}
	song, err := newComposer(bank).Compose(context.Background(), sections, 120)
	if song == nil {
		t.Fatal("nil song")
	}
	if !errors.Is(err, mixer.ErrMissingSample) {
		t.Fatalf("err = %v", err)
	}
	got := mixer.MissingInstruments(err)
	if len(got) != 2 || got[0] != pattern.Hihat || got[1] != pattern.Hihat {
		t.Errorf("MissingInstruments = %v", got)
	}
	if song.Buffer.Peak() == 0 {
		t.Error("song is silent")
	}
}

func TestComposeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	song, err := newComposer(&testBank{}).Compose(ctx, DefaultStructure(pattern.StylePop), 120)
	if song != nil || !errors.Is(err, context.Canceled) {
		t.Errorf("Compose = %v, %v", song, err)
	}
}

func TestComposeCache(t *testing.T) {
	cache := &mapCache{data: make(map[string]*pcm.Buffer)}
	bank := &testBank{id: "test-kit"}
	c := newComposer(bank, WithCache(cache))
	sections := []Section{
		{Name: "a", DurationMs: 2000, Style: pattern.StylePop},
		{Name: "b", DurationMs: 2000, Style: pattern.StylePop, GainDB: 2},
	}

	first, err := c.Compose(context.Background(), sections[:1], 120)
	if err != nil {
		t.Fatal(err)
	}
	if first.Sections[0].Cached || cache.puts != 1 {
		t.Fatalf("first render: cached=%v puts=%d", first.Sections[0].Cached, cache.puts)
	}

	second, err := c.Compose(context.Background(), sections, 120)
	if err != nil {
		t.Fatal(err)
	}
	for i, rs := range second.Sections {
		if !rs.Cached {
			t.Errorf("section %d not served from cache", i)
		}
	}
	a, b := first.Sections[0].Buffer, second.Sections[0].Buffer
	for i := 0; i < a.Len(); i += 101 {
		if a.At(i) != b.At(i) {
			t.Fatalf("cached render differs at %d", i)
		}
	}
	if second.Sections[1].Buffer.Peak() <= second.Sections[0].Buffer.Peak() {
		t.Error("gain not applied on top of cached render")
	}
}

func TestComposeCacheSkipsAnonymousBank(t *testing.T) {
	cache := &mapCache{data: make(map[string]*pcm.Buffer)}
	c := newComposer(&testBank{}, WithCache(cache))
	if _, err := c.Compose(context.Background(), DefaultStructure(pattern.StyleFunk)[:1], 120); err != nil {
		t.Fatal(err)
	}
	if cache.puts != 0 {
		t.Errorf("puts = %d, want 0", cache.puts)
	}
}

func TestCacheKeyString(t *testing.T) {
	k := CacheKey{Fingerprint: "abc", Tempo: 120, DurationMs: 1000, BankID: "synth", Mixer: mixer.NewMixer().Settings()}
	if k.String() != k.String() {
		t.Error("unstable key")
	}
	k2 := k
	k2.Tempo = 121
	if k.String() == k2.String() {
		t.Error("tempo not part of key")
	}
	k3 := k
	k3.Mixer.Ceiling = -1
	if k.String() == k3.String() {
		t.Error("mixer settings not part of key")
	}
}
