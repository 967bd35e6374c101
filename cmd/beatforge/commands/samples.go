package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/beatforge/pkg/audio/dsp"
	"github.com/haivivi/beatforge/pkg/audio/pcm"
	"github.com/haivivi/beatforge/pkg/cli"
	"github.com/haivivi/beatforge/pkg/pattern"
	"github.com/haivivi/beatforge/pkg/samplebank"
)

var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "Inspect and export drum samples",
}

var samplesRate string

type sampleInfo struct {
	Instrument string `json:"instrument" yaml:"instrument"`
	File       string `json:"file" yaml:"file"`
	Duration   string `json:"duration" yaml:"duration"`
	Peak       string `json:"peak" yaml:"peak"`
	Source     string `json:"source" yaml:"source"`
}

type sampleList []sampleInfo

func (l sampleList) Header() []string {
	return []string{"instrument", "file", "duration", "peak", "source"}
}

func (l sampleList) Rows() [][]string {
	rows := make([][]string, len(l))
	for i, s := range l {
		rows[i] = []string{s.Instrument, s.File, s.Duration, s.Peak, s.Source}
	}
	return rows
}

var samplesListCmd = &cobra.Command{
	Use:   "list [dir]",
	Short: "List the samples a render would use",
	Long: `List the sample of every instrument: from the given directory (or the
context's samples_dir) when it has one, else from the synthesized kit.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := getContext()
		if err != nil {
			return err
		}
		f, err := pcm.ParseFormat(samplesRate)
		if err != nil {
			return err
		}
		dir := ctx.SamplesDir
		if len(args) > 0 {
			dir = args[0]
		}
		var loaded *samplebank.Bank
		if dir != "" {
			if loaded, err = samplebank.LoadDir(dir, f); err != nil {
				return err
			}
		}
		synth := samplebank.Synth(f)

		var list sampleList
		for _, inst := range pattern.Instruments() {
			src := dir
			var buf *pcm.Buffer
			if loaded != nil {
				buf, _ = loaded.Lookup(inst)
			}
			if buf == nil {
				src = synth.ID()
				if buf, err = synth.Lookup(inst); err != nil {
					return err
				}
			}
			list = append(list, sampleInfo{
				Instrument: string(inst),
				File:       samplebank.FileName(inst),
				Duration:   cli.FormatDuration(buf.DurationMs()),
				Peak:       cli.FormatDB(dsp.GainToDB(float64(buf.Peak()))),
				Source:     src,
			})
		}
		return outputResult(list)
	},
}

var samplesExportCmd = &cobra.Command{
	Use:   "export <dir>",
	Short: "Write the synthesized kit as WAV files",
	Long: `Write the synthesized kick, snare, hihat and bass as WAV files, ready
to be edited and used as a samples directory.

Example:
  beatforge samples export ./kit --sample-rate 48k`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := pcm.ParseFormat(samplesRate)
		if err != nil {
			return err
		}
		written, err := samplebank.WriteDir(samplebank.Synth(f), args[0])
		if err != nil {
			return err
		}
		for _, path := range written {
			fmt.Println(path)
		}
		cli.PrintSuccess("Wrote %d samples at %d Hz to %s", len(written), f.SampleRate(), args[0])
		return nil
	},
}

func init() {
	samplesCmd.PersistentFlags().StringVar(&samplesRate, "sample-rate", "44k", "sample rate: 16k, 24k, 44k, 48k")

	samplesCmd.AddCommand(samplesListCmd)
	samplesCmd.AddCommand(samplesExportCmd)
}
