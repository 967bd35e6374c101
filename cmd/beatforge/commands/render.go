package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/haivivi/beatforge/pkg/audio/dsp"
	"github.com/haivivi/beatforge/pkg/audio/pcm"
	"github.com/haivivi/beatforge/pkg/cli"
	"github.com/haivivi/beatforge/pkg/mixer"
	"github.com/haivivi/beatforge/pkg/pattern"
	"github.com/haivivi/beatforge/pkg/timeline"
)

// renderResult is printed after an export.
type renderResult struct {
	Location string         `json:"location" yaml:"location"`
	Format   string         `json:"format" yaml:"format"`
	Style    string         `json:"style,omitempty" yaml:"style,omitempty"`
	Tempo    float64        `json:"tempo" yaml:"tempo"`
	Duration string         `json:"duration" yaml:"duration"`
	Bars     int            `json:"bars,omitempty" yaml:"bars,omitempty"`
	Events   map[string]int `json:"events,omitempty" yaml:"events,omitempty"`
	Peak     string         `json:"peak" yaml:"peak"`
	Missing  []string       `json:"missing_samples,omitempty" yaml:"missing_samples,omitempty"`
}

var renderFlags struct {
	style      string
	bpm        float64
	durationMs int64
	samplesDir string
	rate       string
	export     exportFlags
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render one style to an audio file",
	Long: `Schedule one pattern style at a tempo, mix it and export it.

Samples come from --samples (or the context's samples_dir); instruments
without a file use the synthesized kit.

Example:
  beatforge render --style funk --bpm 120 --duration 8000
  beatforge render --style pop --bpm 96 --duration 16000 --format mp3 --bitrate 192`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := &renderFlags
		ctx, err := getContext()
		if err != nil {
			return err
		}
		format, bitrate, err := f.export.resolve(ctx, "", 0)
		if err != nil {
			return err
		}
		pf, err := pcm.ParseFormat(f.rate)
		if err != nil {
			return err
		}

		lib, err := loadLibrary()
		if err != nil {
			return err
		}
		style, err := pattern.ParseStyle(f.style)
		if err != nil {
			return err
		}
		p, err := lib.Lookup(style)
		if err != nil {
			return err
		}
		tl, err := timeline.Schedule(timeline.Tempo(f.bpm), p, f.durationMs)
		if err != nil {
			return err
		}
		slog.Debug("scheduled", "summary", tl.Summary())

		bank, err := loadBank(ctx, f.samplesDir, pf)
		if err != nil {
			return err
		}
		mx := mixer.NewMixer(mixer.WithFormat(pf), mixer.WithLogger(slog.Default()))
		buf, missing := mx.Render(tl, bank)
		if buf == nil {
			return missing
		}
		if err := warnMissing(missing); err != nil {
			return err
		}

		exp, err := f.export.exporter(ctx)
		if err != nil {
			return err
		}
		loc, err := exp.Export(commandContext(cmd), f.export.name, buf, format, bitrate)
		if err != nil {
			return err
		}

		res := renderResult{
			Location: loc,
			Format:   string(format),
			Style:    string(style),
			Tempo:    f.bpm,
			Duration: durationString(tl.DurationMs()),
			Bars:     tl.Bars(),
			Events:   make(map[string]int),
			Peak:     cli.FormatDB(dsp.GainToDB(float64(buf.Peak()))),
			Missing:  instrumentNames(mixer.MissingInstruments(missing)),
		}
		for _, inst := range pattern.Instruments() {
			res.Events[string(inst)] = tl.Count(inst)
		}
		if !outputJSON && outputFile == "" {
			cli.PrintSuccess("Rendered %s %s at %g bpm to %s", cli.FormatDuration(tl.DurationMs()), style, f.bpm, loc)
			return nil
		}
		return outputResult(res)
	},
}

func instrumentNames(insts []pattern.Instrument) []string {
	if len(insts) == 0 {
		return nil
	}
	names := make([]string, len(insts))
	for i, inst := range insts {
		names[i] = string(inst)
	}
	return names
}

func init() {
	f := renderCmd.Flags()
	f.StringVar(&renderFlags.style, "style", string(pattern.StyleFunk), "pattern style")
	f.Float64Var(&renderFlags.bpm, "bpm", 120, "tempo in beats per minute")
	f.Int64Var(&renderFlags.durationMs, "duration", 8000, "length in milliseconds")
	f.StringVar(&renderFlags.samplesDir, "samples", "", "sample directory (default from context)")
	f.StringVar(&renderFlags.rate, "sample-rate", "44k", "engine sample rate: 16k, 24k, 44k, 48k")
	renderFlags.export.register(renderCmd)
}

func durationString(ms int64) string {
	return fmt.Sprintf("%s (%d ms)", cli.FormatDuration(ms), ms)
}
