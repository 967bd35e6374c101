package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/haivivi/beatforge/pkg/audio/pcm"
	"github.com/haivivi/beatforge/pkg/composer"
	"github.com/haivivi/beatforge/pkg/melody"
	"github.com/haivivi/beatforge/pkg/mixer"
	"github.com/haivivi/beatforge/pkg/timeline"
	"github.com/haivivi/beatforge/pkg/vocal"
)

// melodyVolume is the peak amplitude of rendered melody notes before the
// layer gain.
const melodyVolume = 0.5

// vocalCeilingDB is the level clips are normalized to before their gain.
const vocalCeilingDB = -1

// Env holds what a render needs beyond the project file.
type Env struct {
	Bank mixer.SampleBank
	// Cache is optional.
	Cache composer.Cache
	// Synthesizer speaks text vocals; projects with text vocals fail
	// without one.
	Synthesizer vocal.Synthesizer
	// BaseDir resolves relative vocal file paths.
	BaseDir string
	Workers int
	Logger  *slog.Logger
}

// Result is a rendered project.
type Result struct {
	Song *composer.Song
	// Buffer is the song with melody and vocal layers mixed in.
	Buffer *pcm.Buffer
	Layers int
}

// Render composes the sections and mixes the layers on top. Like
// composer.Compose, missing samples produce a Result together with the
// joined *mixer.MissingSampleError values.
func Render(ctx context.Context, p *Project, env Env) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	log := env.Logger
	if log == nil {
		log = slog.Default()
	}

	lib, err := p.Library()
	if err != nil {
		return nil, err
	}
	mopts, err := p.MixerOptions()
	if err != nil {
		return nil, err
	}
	mopts = append(mopts, mixer.WithLogger(log))
	copts := []composer.Option{composer.WithLogger(log)}
	if env.Cache != nil {
		copts = append(copts, composer.WithCache(env.Cache))
	}
	if env.Workers > 0 {
		copts = append(copts, composer.WithWorkers(env.Workers))
	}

	c := composer.New(lib, mixer.NewMixer(mopts...), env.Bank, copts...)
	song, missing := c.Compose(ctx, p.Sections, timeline.Tempo(p.Tempo))
	if song == nil {
		return nil, missing
	}

	res := &Result{Song: song, Buffer: song.Buffer}
	if m := p.Melody; m != nil {
		ph, err := m.Phrase()
		if err != nil {
			return nil, fmt.Errorf("project: melody: %w", err)
		}
		line := melody.RenderHarmony(ph.Notes, res.Buffer.Format(), melodyVolume, append([]int{0}, m.Harmony...)...)
		res.Buffer = vocal.Overlay(res.Buffer, line, ph.StartMs, m.GainDB)
		res.Layers++
		log.Debug("project: melody layer", "notes", len(ph.Notes), "start_ms", ph.StartMs, "gain_db", m.GainDB)
	}

	for i, v := range p.Vocals {
		clip, err := loadVocal(ctx, v, env, res.Buffer.Format())
		if err != nil {
			return nil, fmt.Errorf("project: vocals[%d]: %w", i, err)
		}
		if v.Chop != nil {
			clip = vocal.Chop(clip, v.Chop.Ms, v.Chop.Reps)
		}
		if v.Echo {
			clip = vocal.Prepare(clip, vocalCeilingDB)
		}
		if v.AtMs >= res.Buffer.DurationMs() {
			log.Warn("project: vocal starts after the song ends", "index", i, "at_ms", v.AtMs)
		}
		res.Buffer = vocal.Overlay(res.Buffer, clip, v.AtMs, v.GainDB)
		res.Layers++
	}
	return res, missing
}

func loadVocal(ctx context.Context, v VocalSpec, env Env, f pcm.Format) (*pcm.Buffer, error) {
	if v.File != "" {
		path := v.File
		if !filepath.IsAbs(path) && env.BaseDir != "" {
			path = filepath.Join(env.BaseDir, path)
		}
		return vocal.LoadClip(path, f)
	}
	if env.Synthesizer == nil {
		return nil, errors.New("text vocal needs a speech synthesizer")
	}
	return vocal.Speak(ctx, env.Synthesizer, v.Text, v.Lang, f)
}
