package pcm

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Format is one of the engine's audio configurations. Every format is
// 16-bit little-endian mono; they differ only in sample rate.
type Format int

const (
	// L16Mono16K represents audio/L16; rate=16000; channels=1
	L16Mono16K Format = iota
	// L16Mono24K represents audio/L16; rate=24000; channels=1
	L16Mono24K
	// L16Mono44K represents audio/L16; rate=44100; channels=1
	L16Mono44K
	// L16Mono48K represents audio/L16; rate=48000; channels=1
	L16Mono48K
)

type formatSpec struct {
	rate  int
	names []string
}

var formats = [...]formatSpec{
	L16Mono16K: {16000, []string{"16k", "16000"}},
	L16Mono24K: {24000, []string{"24k", "24000"}},
	L16Mono44K: {44100, []string{"44k", "44.1k", "44100", ""}},
	L16Mono48K: {48000, []string{"48k", "48000"}},
}

func (f Format) spec() formatSpec {
	if f < 0 || int(f) >= len(formats) {
		panic("pcm: invalid audio type")
	}
	return formats[f]
}

// ParseFormat parses a short format name such as "44k" or "16000". The
// empty string selects L16Mono44K.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for f, spec := range formats {
		for _, name := range spec.names {
			if s == name {
				return Format(f), nil
			}
		}
	}
	return 0, fmt.Errorf("pcm: unknown format %q", s)
}

// SampleRate returns the sample rate in Hz.
func (f Format) SampleRate() int { return f.spec().rate }

// Channels is always 1.
func (f Format) Channels() int {
	f.spec()
	return 1
}

// Depth is the bit depth, always 16.
func (f Format) Depth() int {
	f.spec()
	return 16
}

// BytesRate returns the number of bytes in one second of audio.
func (f Format) BytesRate() int {
	return f.SampleRate() * f.Channels() * f.Depth() / 8
}

// Samples returns the number of samples in the given number of bytes.
func (f Format) Samples(bytes int64) int64 {
	return bytes * 8 / int64(f.Channels()) / int64(f.Depth())
}

// SamplesInMillis returns the number of samples in ms milliseconds,
// truncated.
func (f Format) SamplesInMillis(ms int64) int64 {
	return ms * int64(f.SampleRate()) / 1000
}

// SampleIndex returns the sample index nearest to the instant ms
// milliseconds after the start of a buffer.
func (f Format) SampleIndex(ms int64) int64 {
	rate := int64(f.SampleRate())
	return (ms*rate + 500) / 1000
}

// BytesInDuration returns the number of bytes in d.
func (f Format) BytesInDuration(d time.Duration) int64 {
	samples := int64(time.Duration(f.SampleRate()) * d / time.Second)
	return samples * int64(f.Channels()) * int64(f.Depth()) / 8
}

// Duration returns the duration of the given number of bytes.
func (f Format) Duration(bytes int64) time.Duration {
	return time.Duration(f.Samples(bytes)) * time.Second / time.Duration(f.SampleRate())
}

// String returns the MIME form, e.g. "audio/L16; rate=44100; channels=1".
func (f Format) String() string {
	return fmt.Sprintf("audio/L16; rate=%d; channels=%d", f.SampleRate(), f.Channels())
}

// Chunk is encoded audio data.
type Chunk interface {
	Len() int64
	Format() Format
	WriteTo(w io.Writer) (int64, error)
}

// DataChunk is L16 little-endian audio held in memory.
type DataChunk struct {
	Data []byte
	fmt  Format
}

var _ Chunk = (*DataChunk)(nil)

// Len returns the length of the audio data in bytes.
func (c *DataChunk) Len() int64 { return int64(len(c.Data)) }

// Format returns the audio format of this chunk.
func (c *DataChunk) Format() Format { return c.fmt }

// WriteTo writes the audio data to w.
func (c *DataChunk) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(c.Data)
	return int64(n), err
}
