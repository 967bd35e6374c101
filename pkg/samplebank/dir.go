package samplebank

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/haivivi/beatforge/pkg/audio/codec/wav"
	"github.com/haivivi/beatforge/pkg/audio/pcm"
	"github.com/haivivi/beatforge/pkg/pattern"
)

// fileNames lists the accepted file names per instrument, in preference
// order.
var fileNames = map[pattern.Instrument][]string{
	pattern.Kick:  {"kick.wav", "kick_808.wav"},
	pattern.Snare: {"snare.wav"},
	pattern.Hihat: {"hihat.wav", "hi_hat.wav"},
	pattern.Bass:  {"bass.wav"},
}

// LoadDir reads instrument samples from dir and converts them to f. Missing
// files are not an error; their instruments are simply absent from the bank.
func LoadDir(dir string, f pcm.Format) (*Bank, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("samplebank: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("samplebank: %s is not a directory", dir)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}

	b := New(fmt.Sprintf("dir:%s@%d", abs, f.SampleRate()))
	for _, inst := range pattern.Instruments() {
		for _, name := range fileNames[inst] {
			path := filepath.Join(dir, name)
			buf, err := wav.DecodeFile(path, f)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("samplebank: %w", err)
			}
			b.Set(inst, buf)
			slog.Debug("samplebank: loaded sample", "instrument", inst, "path", path, "samples", buf.Len())
			break
		}
	}
	return b, nil
}

// FileName returns the preferred WAV file name for inst.
func FileName(inst pattern.Instrument) string {
	if names := fileNames[inst]; len(names) > 0 {
		return names[0]
	}
	return string(inst) + ".wav"
}

// WriteDir writes every sample of b into dir as WAV files named by FileName.
func WriteDir(b *Bank, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("samplebank: %w", err)
	}
	var written []string
	for _, inst := range b.Instruments() {
		buf, err := b.Lookup(inst)
		if err != nil {
			return written, err
		}
		path := filepath.Join(dir, FileName(inst))
		if err := writeFile(path, buf); err != nil {
			return written, fmt.Errorf("samplebank: %w", err)
		}
		written = append(written, path)
	}
	return written, nil
}

func writeFile(path string, buf *pcm.Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := wav.Encode(f, buf); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
