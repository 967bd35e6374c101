package commands

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haivivi/beatforge/pkg/audio/dsp"
	"github.com/haivivi/beatforge/pkg/cli"
	"github.com/haivivi/beatforge/pkg/midifile"
	"github.com/haivivi/beatforge/pkg/mixer"
	"github.com/haivivi/beatforge/pkg/pattern"
	"github.com/haivivi/beatforge/pkg/project"
	"github.com/haivivi/beatforge/pkg/vocal"
)

type sectionInfo struct {
	Name     string `json:"name" yaml:"name"`
	Style    string `json:"style" yaml:"style"`
	Duration string `json:"duration" yaml:"duration"`
	GainDB   string `json:"gain" yaml:"gain"`
	Cached   bool   `json:"cached" yaml:"cached"`
}

type songResult struct {
	ID       string        `json:"id" yaml:"id"`
	Location string        `json:"location" yaml:"location"`
	MIDI     string        `json:"midi,omitempty" yaml:"midi,omitempty"`
	Format   string        `json:"format" yaml:"format"`
	Tempo    float64       `json:"tempo" yaml:"tempo"`
	Duration string        `json:"duration" yaml:"duration"`
	Layers   int           `json:"layers" yaml:"layers"`
	Peak     string        `json:"peak" yaml:"peak"`
	Sections []sectionInfo `json:"sections" yaml:"sections"`
	Missing  []string      `json:"missing_samples,omitempty" yaml:"missing_samples,omitempty"`
}

func (r songResult) Header() []string {
	return []string{"section", "style", "duration", "gain", "cached"}
}

func (r songResult) Rows() [][]string {
	rows := make([][]string, 0, len(r.Sections))
	for _, s := range r.Sections {
		cached := ""
		if s.Cached {
			cached = "yes"
		}
		rows = append(rows, []string{s.Name, s.Style, s.Duration, s.GainDB, cached})
	}
	return rows
}

var songFlags struct {
	style      string
	bpm        float64
	noCache    bool
	samplesDir string
	tts        string
	workers    int
	midi       bool
	export     exportFlags
}

var songCmd = &cobra.Command{
	Use:   "song",
	Short: "Render a structured song or project file",
	Long: `Render a multi-section song and export it.

Without -f the song is the standard six-part structure (intro, verse,
chorus, verse, chorus, outro) in one style, with the style's melody.
With -f the project file defines tempo, sections, custom patterns, mixer
settings, melody and vocal layers, and the export target.

Sections are cached in the render cache unless --no-cache is given.

Example:
  beatforge song --style pop --bpm 110
  beatforge song -f song.yaml --midi
  beatforge song -f song.yaml --tts "espeak-ng -v {lang} -w {out} {text}"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := &songFlags
		ctx, err := getContext()
		if err != nil {
			return err
		}

		var p *project.Project
		env := project.Env{Workers: f.workers, Logger: slog.Default()}
		if inputFile != "" {
			p, err = project.Load(inputFile)
			if err != nil {
				return err
			}
			if inputFile != "-" {
				env.BaseDir = filepath.Dir(inputFile)
			}
		} else {
			style, err := pattern.ParseStyle(f.style)
			if err != nil {
				return err
			}
			p = project.Default(style, f.bpm)
		}

		format, bitrate, err := f.export.resolve(ctx, p.Export.Format, p.Export.Bitrate)
		if err != nil {
			return err
		}
		pf, err := p.Format()
		if err != nil {
			return err
		}
		if env.Bank, err = loadBank(ctx, f.samplesDir, pf); err != nil {
			return err
		}
		if f.tts != "" {
			env.Synthesizer = &vocal.CommandSynthesizer{Command: strings.Fields(f.tts)}
		}
		if !f.noCache {
			cache, store, err := openCache(ctx)
			if err != nil {
				return err
			}
			defer store.Close()
			env.Cache = cache
			defer func() {
				st := cache.Stats()
				slog.Debug("render cache", "hits", st.Hits, "misses", st.Misses, "puts", st.Puts)
			}()
		}

		res, missing := project.Render(commandContext(cmd), p, env)
		if res == nil {
			return missing
		}
		if err := warnMissing(missing); err != nil {
			return err
		}

		exp, err := f.export.exporter(ctx)
		if err != nil {
			return err
		}
		name := f.export.name
		if name == "" {
			name = p.Export.Name
		}
		if name == "" {
			name = p.Name
		}
		if name == "" {
			name = "beatforge-" + res.Song.ID
		}
		loc, err := exp.Export(commandContext(cmd), name, res.Buffer, format, bitrate)
		if err != nil {
			return err
		}

		out := songResult{
			ID:       res.Song.ID,
			Location: loc,
			Format:   string(format),
			Tempo:    p.Tempo,
			Duration: durationString(res.Song.DurationMs()),
			Layers:   res.Layers,
			Peak:     cli.FormatDB(dsp.GainToDB(float64(res.Buffer.Peak()))),
			Missing:  instrumentNames(mixer.MissingInstruments(missing)),
		}
		var parts []midifile.Part
		var offset int64
		for _, s := range res.Song.Sections {
			out.Sections = append(out.Sections, sectionInfo{
				Name:     s.Section.Name,
				Style:    string(s.Section.Style),
				Duration: cli.FormatDuration(s.Section.DurationMs),
				GainDB:   cli.FormatDB(s.Section.GainDB),
				Cached:   s.Cached,
			})
			parts = append(parts, midifile.Part{OffsetMs: offset, Timeline: s.Timeline})
			offset += s.Section.DurationMs
		}
		if f.midi {
			if out.MIDI, err = exp.ExportMIDI(commandContext(cmd), name, res.Song.Tempo, parts...); err != nil {
				return err
			}
		}

		if outputJSON || outputFile != "" {
			return outputResult(out)
		}
		fmt.Println(cli.RenderTable(out, cli.DefaultStyles))
		cli.PrintSuccess("Rendered %s song (%d layers) to %s", cli.FormatDuration(res.Song.DurationMs()), res.Layers, loc)
		if out.MIDI != "" {
			cli.PrintSuccess("Wrote MIDI to %s", out.MIDI)
		}
		return nil
	},
}

func init() {
	f := songCmd.Flags()
	f.StringVar(&songFlags.style, "style", string(pattern.StylePop), "style of the default structure (ignored with -f)")
	f.Float64Var(&songFlags.bpm, "bpm", 120, "tempo of the default structure (ignored with -f)")
	f.BoolVar(&songFlags.noCache, "no-cache", false, "render every section without the render cache")
	f.StringVar(&songFlags.samplesDir, "samples", "", "sample directory (default from context)")
	f.StringVar(&songFlags.tts, "tts", "", "speech command for text vocals, with {text}, {lang} and {out} placeholders")
	f.IntVar(&songFlags.workers, "workers", 0, "sections rendered at once (default: GOMAXPROCS)")
	f.BoolVar(&songFlags.midi, "midi", false, "also write the drum parts as a MIDI file")
	songFlags.export.register(songCmd)
}
