// Package export writes finished audio to a storage.FileStore as WAV, MP3 or
// raw 16-bit PCM, and timelines as MIDI files.
//
// The buffer handed to Export is never modified: the final peak
// normalization runs on a copy.
package export

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/haivivi/beatforge/pkg/audio/codec/wav"
	"github.com/haivivi/beatforge/pkg/audio/dsp"
	"github.com/haivivi/beatforge/pkg/audio/pcm"
	"github.com/haivivi/beatforge/pkg/midifile"
	"github.com/haivivi/beatforge/pkg/storage"
	"github.com/haivivi/beatforge/pkg/timeline"
)

// Format is an output container.
type Format string

const (
	WAV Format = "wav"
	MP3 Format = "mp3"
	PCM Format = "pcm"
)

// DefaultCeilingDB is the peak level of exported audio.
const DefaultCeilingDB = -0.3

// ExportError describes a failed export.
type ExportError struct {
	Format Format
	Path   string
	Reason string
	Err    error
}

func (e *ExportError) Error() string {
	var b strings.Builder
	b.WriteString("export")
	if e.Format != "" {
		b.WriteString(" " + string(e.Format))
	}
	if e.Path != "" {
		b.WriteString(" " + e.Path)
	}
	b.WriteString(": " + e.Reason)
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *ExportError) Unwrap() error { return e.Err }

type codec struct {
	encode   func(w io.Writer, buf *pcm.Buffer, bitrateKbps int) error
	validate func(bitrateKbps int) error
}

var codecs = map[Format]codec{
	WAV: {encode: func(w io.Writer, buf *pcm.Buffer, _ int) error { return wav.Encode(w, buf) }},
	PCM: {encode: func(w io.Writer, buf *pcm.Buffer, _ int) error {
		_, err := buf.Chunk().WriteTo(w)
		return err
	}},
}

// Formats returns the formats this build can write.
func Formats() []Format {
	var fs []Format
	for f := range codecs {
		fs = append(fs, f)
	}
	slices.Sort(fs)
	return fs
}

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	if _, ok := codecs[f]; !ok {
		return "", &ExportError{Format: f, Reason: "unsupported format"}
	}
	return f, nil
}

// Exporter writes files into a store.
type Exporter struct {
	store     storage.FileStore
	normalize bool
	ceilingDB float64
	log       *slog.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithNormalize sets the peak ceiling in dBFS.
func WithNormalize(ceilingDB float64) Option {
	return func(e *Exporter) {
		e.normalize = true
		e.ceilingDB = ceilingDB
	}
}

// WithoutNormalize writes samples as they are.
func WithoutNormalize() Option {
	return func(e *Exporter) { e.normalize = false }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Exporter) { e.log = l }
}

// New returns an exporter writing to store.
func New(store storage.FileStore, opts ...Option) *Exporter {
	e := &Exporter{store: store, normalize: true, ceilingDB: DefaultCeilingDB}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	return e
}

// FileName returns name with the extension of f. An empty name becomes a
// random "beatforge-<uuid>" name.
func FileName(name string, f Format) string {
	if name == "" {
		name = "beatforge-" + uuid.NewString()
	}
	ext := "." + string(f)
	if strings.EqualFold(path.Ext(name), ext) {
		return name
	}
	return name + ext
}

// Export encodes buf as format into the store under name and returns the
// location of the written file. bitrateKbps only applies to MP3, where 0
// selects VBR.
func (e *Exporter) Export(ctx context.Context, name string, buf *pcm.Buffer, format Format, bitrateKbps int) (string, error) {
	c, ok := codecs[format]
	if !ok {
		return "", &ExportError{Format: format, Reason: "unsupported format"}
	}
	p := FileName(name, format)
	if _, err := storage.Clean(p); err != nil {
		return "", &ExportError{Format: format, Path: p, Reason: "invalid path", Err: err}
	}
	if buf == nil || buf.Len() == 0 {
		return "", &ExportError{Format: format, Path: p, Reason: "empty buffer"}
	}
	if c.validate != nil {
		if err := c.validate(bitrateKbps); err != nil {
			return "", &ExportError{Format: format, Path: p, Reason: "invalid bitrate", Err: err}
		}
	}

	out := buf
	if e.normalize {
		out = buf.Transform(func(s []float32) { dsp.Normalize(s, e.ceilingDB) })
	}
	err := storage.Put(ctx, e.store, p, func(w io.Writer) error {
		return c.encode(w, out, bitrateKbps)
	})
	if err != nil {
		return "", &ExportError{Format: format, Path: p, Reason: "write failed", Err: err}
	}

	loc := e.store.Location(p)
	e.log.Info("export: wrote file", "format", format, "location", loc,
		"duration_ms", out.DurationMs(), "peak_db", dsp.GainToDB(float64(out.Peak())))
	return loc, nil
}

// ExportMIDI writes timelines placed at their offsets as a Standard MIDI
// File.
func (e *Exporter) ExportMIDI(ctx context.Context, name string, tempo timeline.Tempo, parts ...midifile.Part) (string, error) {
	const f = Format("mid")
	p := FileName(name, f)
	if len(parts) == 0 {
		return "", &ExportError{Format: f, Path: p, Reason: "no timelines"}
	}
	err := storage.Put(ctx, e.store, p, func(w io.Writer) error {
		return midifile.WriteParts(w, tempo, parts...)
	})
	if err != nil {
		reason := "write failed"
		if errors.Is(err, timeline.ErrConfig) {
			reason = "invalid tempo"
		}
		return "", &ExportError{Format: f, Path: p, Reason: reason, Err: err}
	}
	loc := e.store.Location(p)
	e.log.Info("export: wrote midi", "location", loc, "parts", len(parts))
	return loc, nil
}
