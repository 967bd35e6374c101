package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/haivivi/beatforge/pkg/audio/pcm"
	"github.com/haivivi/beatforge/pkg/cli"
	"github.com/haivivi/beatforge/pkg/export"
	"github.com/haivivi/beatforge/pkg/kv"
	"github.com/haivivi/beatforge/pkg/mixer"
	"github.com/haivivi/beatforge/pkg/rendercache"
	"github.com/haivivi/beatforge/pkg/samplebank"
	"github.com/haivivi/beatforge/pkg/storage"
)

// loadBank returns the synthesized kit, overlaid by the WAV files in dir
// (or the context's samples dir) when one is given.
func loadBank(ctx *cli.Context, dir string, f pcm.Format) (mixer.SampleBank, error) {
	if dir == "" {
		dir = ctx.SamplesDir
	}
	synth := samplebank.Synth(f)
	if dir == "" {
		return synth, nil
	}
	b, err := samplebank.LoadDir(dir, f)
	if err != nil {
		return nil, err
	}
	slog.Debug("using sample directory", "dir", dir, "instruments", b.Instruments())
	return samplebank.Fallback(b, synth), nil
}

// openStore returns the export destination: the context's S3 bucket, or a
// local directory.
func openStore(ctx *cli.Context, outDir string) (storage.FileStore, error) {
	if outDir == "" && ctx.S3 != nil {
		client, err := storage.NewS3Client(*ctx.S3)
		if err != nil {
			return nil, err
		}
		return storage.NewS3(client, ctx.S3.Bucket, ctx.S3.Prefix), nil
	}
	if outDir == "" {
		outDir = ctx.OutDirOr(".")
	}
	return storage.NewLocal(outDir)
}

// openCache opens the render cache in the context's cache dir. The caller
// closes the returned store.
func openCache(ctx *cli.Context) (*rendercache.Cache, kv.Store, error) {
	dir := ctx.CacheDir
	if dir == "" {
		paths, err := cli.NewPaths(appName)
		if err != nil {
			return nil, nil, err
		}
		if err := paths.EnsureCacheDir(); err != nil {
			return nil, nil, fmt.Errorf("failed to create cache dir: %w", err)
		}
		dir = paths.CacheDir()
	}
	store, err := kv.OpenBadger(kv.BadgerOptions{Dir: dir, Logger: slog.Default()})
	if err != nil {
		return nil, nil, err
	}
	return rendercache.New(store, rendercache.WithLogger(slog.Default())), store, nil
}

// exportFlags are the encoding flags shared by render and song.
type exportFlags struct {
	name    string
	format  string
	bitrate int
	outDir  string
	raw     bool
}

func (f *exportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "output file name without extension (default: generated)")
	cmd.Flags().StringVar(&f.format, "format", "", "export format: wav, mp3, pcm (default from context, else wav)")
	cmd.Flags().IntVar(&f.bitrate, "bitrate", -1, "MP3 bitrate in kbps, 0 for VBR (default from context)")
	cmd.Flags().StringVar(&f.outDir, "out-dir", "", "output directory (default from context, else current dir)")
	cmd.Flags().BoolVar(&f.raw, "no-normalize", false, "skip the final normalization")
}

// resolve fills unset flags from the context and the project's export spec.
func (f *exportFlags) resolve(ctx *cli.Context, fallbackFormat string, fallbackBitrate int) (export.Format, int, error) {
	name := f.format
	if name == "" {
		name = fallbackFormat
	}
	if name == "" {
		name = ctx.FormatOr(string(export.WAV))
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		return "", 0, err
	}
	bitrate := f.bitrate
	if bitrate < 0 {
		bitrate = fallbackBitrate
		if bitrate == 0 {
			bitrate = ctx.Bitrate
		}
	}
	return format, bitrate, nil
}

func (f *exportFlags) exporter(ctx *cli.Context) (*export.Exporter, error) {
	store, err := openStore(ctx, f.outDir)
	if err != nil {
		return nil, err
	}
	opts := []export.Option{export.WithLogger(slog.Default())}
	if f.raw {
		opts = append(opts, export.WithoutNormalize())
	}
	return export.New(store, opts...), nil
}

// warnMissing reports missing samples and returns any other error.
func warnMissing(err error) error {
	if err == nil {
		return nil
	}
	if !errors.Is(err, mixer.ErrMissingSample) {
		return err
	}
	for _, inst := range mixer.MissingInstruments(err) {
		cli.PrintWarning("no sample for %s; its events are silent", inst)
	}
	return nil
}

// commandContext returns the command's context, or a background one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
