package commands

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/spf13/cobra"

	"github.com/haivivi/beatforge/pkg/cli"
	"github.com/haivivi/beatforge/pkg/export"
	"github.com/haivivi/beatforge/pkg/midifile"
	"github.com/haivivi/beatforge/pkg/pattern"
	"github.com/haivivi/beatforge/pkg/timeline"
)

var midiFlags struct {
	style      string
	bpm        float64
	bars       int
	durationMs int64
	name       string
	outDir     string
}

var midiCmd = &cobra.Command{
	Use:   "midi",
	Short: "Write a pattern as a Standard MIDI File",
	Long: `Schedule a pattern and write it as a type 1 Standard MIDI File with one
track per instrument. Drums use General MIDI channel 10, bass channel 1.

Example:
  beatforge midi --style funk --bpm 100 --bars 8
  beatforge midi --style pop --duration 30000 --name groove`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := &midiFlags
		ctx, err := getContext()
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

		tempo := timeline.Tempo(f.bpm)
		if err := tempo.Validate(); err != nil {
			return err
		}
		durationMs := f.durationMs
		if !cmd.Flags().Changed("duration") {
			if f.bars <= 0 {
				return fmt.Errorf("--bars must be positive")
			}
			durationMs = int64(math.Round(float64(f.bars) * tempo.BarDurationMs()))
		}
		tl, err := timeline.Schedule(tempo, p, durationMs)
		if err != nil {
			return err
		}

		store, err := openStore(ctx, f.outDir)
		if err != nil {
			return err
		}
		name := f.name
		if name == "" {
			name = fmt.Sprintf("%s-%gbpm", style, f.bpm)
		}
		exp := export.New(store, export.WithLogger(slog.Default()))
		loc, err := exp.ExportMIDI(commandContext(cmd), name, tempo, midifile.Part{Timeline: tl})
		if err != nil {
			return err
		}

		if outputJSON || outputFile != "" {
			return outputResult(renderResult{
				Location: loc,
				Format:   "mid",
				Style:    string(style),
				Tempo:    f.bpm,
				Duration: durationString(tl.DurationMs()),
				Bars:     tl.Bars(),
				Peak:     "n/a",
			})
		}
		cli.PrintSuccess("Wrote %d bars of %s (%s) to %s", tl.Bars(), style, tl.Summary(), loc)
		return nil
	},
}

func init() {
	f := midiCmd.Flags()
	f.StringVar(&midiFlags.style, "style", string(pattern.StyleFunk), "pattern style")
	f.Float64Var(&midiFlags.bpm, "bpm", 120, "tempo in beats per minute")
	f.IntVar(&midiFlags.bars, "bars", 4, "length in bars")
	f.Int64Var(&midiFlags.durationMs, "duration", 0, "length in milliseconds (overrides --bars)")
	f.StringVar(&midiFlags.name, "name", "", "file name without extension (default: <style>-<bpm>bpm)")
	f.StringVar(&midiFlags.outDir, "out-dir", "", "output directory (default from context, else current dir)")
}
