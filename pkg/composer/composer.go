package composer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/google/uuid"

	"github.com/haivivi/beatforge/pkg/audio/dsp"
	"github.com/haivivi/beatforge/pkg/audio/pcm"
	"github.com/haivivi/beatforge/pkg/mixer"
	"github.com/haivivi/beatforge/pkg/pattern"
	"github.com/haivivi/beatforge/pkg/timeline"
)

// Option configures a Composer.
type Option func(*Composer)

// WithWorkers bounds how many sections render at once. Values below 1 mean
// runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(c *Composer) { c.workers = n }
}

// WithCache enables the section render cache.
func WithCache(cache Cache) Option {
	return func(c *Composer) { c.cache = cache }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Composer) { c.logger = l }
}

// Composer turns section lists into songs.
type Composer struct {
	lib     *pattern.Library
	mixer   *mixer.Mixer
	bank    mixer.SampleBank
	workers int
	cache   Cache
	logger  *slog.Logger
}

// New returns a composer drawing patterns from lib, rendering with mx and
// samples from bank.
func New(lib *pattern.Library, mx *mixer.Mixer, bank mixer.SampleBank, opts ...Option) *Composer {
	c := &Composer{lib: lib, mixer: mx, bank: bank}
	for _, opt := range opts {
		opt(c)
	}
	if c.workers < 1 {
		c.workers = runtime.GOMAXPROCS(0)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// RenderedSection is a section together with its timeline and final audio.
type RenderedSection struct {
	Section  Section
	Timeline *timeline.Timeline
	Buffer   *pcm.Buffer
	// Cached reports whether the raw render came from the cache.
	Cached bool
}

// Song is a composed song.
type Song struct {
	ID       string
	Tempo    timeline.Tempo
	Sections []RenderedSection
	Buffer   *pcm.Buffer
}

// DurationMs returns the sum of the section durations.
func (s *Song) DurationMs() int64 {
	var d int64
	for _, sec := range s.Sections {
		d += sec.Section.DurationMs
	}
	return d
}

type job struct {
	index   int
	section Section
	pattern pattern.Pattern
	// samples is the section's share of the song buffer, measured between
	// cumulative section boundaries.
	samples int
}

type result struct {
	rendered RenderedSection
	// missing holds *mixer.MissingSampleError values; the render is usable.
	missing error
	err     error
}

// Compose renders sections at tempo and concatenates them in order.
//
// Every section is validated before any rendering starts. If some samples
// are missing the song is still returned, together with the joined
// *mixer.MissingSampleError values. Any other failure returns a nil song.
func (c *Composer) Compose(ctx context.Context, sections []Section, tempo timeline.Tempo) (*Song, error) {
	jobs, err := c.plan(sections, tempo)
	if err != nil {
		return nil, err
	}

	results := make([]result, len(jobs))
	sem := make(chan struct{}, c.workers)
	var wg sync.WaitGroup
	for _, j := range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results[j.index] = result{err: ctx.Err()}
				return
			}
			defer func() { <-sem }()
			if err := ctx.Err(); err != nil {
				results[j.index] = result{err: err}
				return
			}
			results[j.index] = c.renderSection(ctx, j, tempo)
		}()
	}
	wg.Wait()

	song := &Song{
		ID:       uuid.NewString(),
		Tempo:    tempo,
		Sections: make([]RenderedSection, len(results)),
	}
	bufs := make([]*pcm.Buffer, len(results))
	var missing []error
	for i, r := range results {
		if r.err != nil {
			return nil, fmt.Errorf("composer: section %q: %w", jobs[i].section.Name, r.err)
		}
		if r.missing != nil {
			missing = append(missing, fmt.Errorf("composer: section %q: %w", jobs[i].section.Name, r.missing))
		}
		song.Sections[i] = r.rendered
		bufs[i] = r.rendered.Buffer
	}
	song.Buffer, err = pcm.Concat(c.mixer.Format(), bufs...)
	if err != nil {
		return nil, fmt.Errorf("composer: %w", err)
	}

	c.logger.Info("composer: song composed",
		"id", song.ID, "sections", len(song.Sections),
		"duration_ms", song.DurationMs(), "tempo", float64(tempo))
	return song, errors.Join(missing...)
}

func (c *Composer) plan(sections []Section, tempo timeline.Tempo) ([]job, error) {
	if err := tempo.Validate(); err != nil {
		return nil, err
	}
	if len(sections) == 0 {
		return nil, &timeline.ConfigError{Field: "sections", Value: 0, Reason: "need at least one section"}
	}
	f := c.mixer.Format()
	var startMs int64
	jobs := make([]job, len(sections))
	for i, s := range sections {
		if err := s.validate(i); err != nil {
			return nil, err
		}
		p, err := c.lib.Lookup(s.Style)
		if err != nil {
			return nil, fmt.Errorf("composer: section %q: %w", s.Name, err)
		}
		if err := timeline.Validate(tempo, p, s.DurationMs); err != nil {
			return nil, fmt.Errorf("composer: section %q: %w", s.Name, err)
		}
		endMs := startMs + s.DurationMs
		jobs[i] = job{
			index:   i,
			section: s,
			pattern: p,
			samples: int(f.SamplesInMillis(endMs) - f.SamplesInMillis(startMs)),
		}
		startMs = endMs
	}
	return jobs, nil
}

func (c *Composer) renderSection(ctx context.Context, j job, tempo timeline.Tempo) result {
	s := j.section
	tl, err := timeline.Schedule(tempo, j.pattern, s.DurationMs)
	if err != nil {
		return result{err: err}
	}

	key, cacheable := c.cacheKey(j.pattern, tempo, s.DurationMs)
	var raw *pcm.Buffer
	cached := false
	if cacheable {
		raw, err = c.cache.Get(ctx, key)
		if err != nil {
			c.logger.Warn("composer: cache read failed", "section", s.Name, "err", err)
		}
		cached = raw != nil
	}

	var missing error
	if raw == nil {
		raw, missing = c.mixer.Render(tl, c.bank)
		if raw == nil {
			return result{err: missing}
		}
		if missing == nil && cacheable {
			if err := c.cache.Put(ctx, key, raw); err != nil {
				c.logger.Warn("composer: cache write failed", "section", s.Name, "err", err)
			}
		}
	}

	f := raw.Format()
	buf := raw.Fit(j.samples).Transform(func(samples []float32) {
		dsp.FadeIn(samples, int(f.SamplesInMillis(s.FadeInMs)))
		dsp.FadeOut(samples, int(f.SamplesInMillis(s.FadeOutMs)))
		dsp.ApplyGain(samples, s.GainDB)
	})

	c.logger.Debug("composer: section rendered",
		"section", s.Name, "style", s.Style, "cached", cached, "events", tl.Summary())
	return result{
		rendered: RenderedSection{Section: s, Timeline: tl, Buffer: buf, Cached: cached},
		missing:  missing,
	}
}

func (c *Composer) cacheKey(p pattern.Pattern, tempo timeline.Tempo, durationMs int64) (CacheKey, bool) {
	if c.cache == nil {
		return CacheKey{}, false
	}
	ib, ok := c.bank.(IdentifiedBank)
	if !ok || ib.ID() == "" {
		return CacheKey{}, false
	}
	return CacheKey{
		Fingerprint: pattern.Fingerprint(p),
		Tempo:       float64(tempo),
		DurationMs:  durationMs,
		BankID:      ib.ID(),
		Mixer:       c.mixer.Settings(),
	}, true
}
