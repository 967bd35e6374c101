package pcm

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/haivivi/beatforge/pkg/audio/dsp"
)

// Buffer is an immutable block of mono float32 samples in a fixed Format.
// Samples are nominally in [-1, 1]. A Buffer may be shared freely between
// goroutines; every operation that changes audio returns a new Buffer.
type Buffer struct {
	fmt     Format
	samples []float32
}

// NewBuffer returns a Buffer holding a copy of samples.
func NewBuffer(f Format, samples []float32) *Buffer {
	return &Buffer{fmt: f, samples: append([]float32(nil), samples...)}
}

// Adopt returns a Buffer that takes ownership of samples without copying.
// The caller must not modify samples afterwards.
func Adopt(f Format, samples []float32) *Buffer {
	return &Buffer{fmt: f, samples: samples}
}

// Silence returns a zeroed Buffer lasting ms milliseconds.
func Silence(f Format, ms int64) *Buffer {
	return Adopt(f, make([]float32, f.SamplesInMillis(ms)))
}

// DecodeL16 converts little-endian signed 16-bit PCM into a Buffer. A trailing
// odd byte is ignored.
func DecodeL16(f Format, data []byte) *Buffer {
	n := len(data) / 2
	samples := make([]float32, n)
	for i := range n {
		v := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = float32(v) / 32768.0
	}
	return Adopt(f, samples)
}

// Format returns the buffer's audio format.
func (b *Buffer) Format() Format { return b.fmt }

// Len returns the number of samples.
func (b *Buffer) Len() int { return len(b.samples) }

// At returns sample i.
func (b *Buffer) At(i int) float32 { return b.samples[i] }

// Samples returns a copy of the sample data.
func (b *Buffer) Samples() []float32 {
	return append([]float32(nil), b.samples...)
}

// Duration returns the playing time of the buffer.
func (b *Buffer) Duration() time.Duration {
	return time.Duration(len(b.samples)) * time.Second / time.Duration(b.fmt.SampleRate())
}

// DurationMs returns the playing time rounded to the nearest millisecond.
// It inverts Format.SamplesInMillis.
func (b *Buffer) DurationMs() int64 {
	rate := int64(b.fmt.SampleRate())
	return (int64(len(b.samples))*1000 + rate/2) / rate
}

// Peak returns the maximum absolute sample value.
func (b *Buffer) Peak() float32 { return dsp.Peak(b.samples) }

// Slice returns a copy of samples [from, to). Bounds are clamped.
func (b *Buffer) Slice(from, to int) *Buffer {
	from = max(0, min(from, len(b.samples)))
	to = max(from, min(to, len(b.samples)))
	return NewBuffer(b.fmt, b.samples[from:to])
}

// Fit returns the buffer resized to n samples, truncated or padded with
// silence. The buffer itself is returned when it already has n samples.
func (b *Buffer) Fit(n int) *Buffer {
	n = max(n, 0)
	if n == len(b.samples) {
		return b
	}
	out := make([]float32, n)
	copy(out, b.samples)
	return Adopt(b.fmt, out)
}

// Transform copies the buffer, applies fn to the copy and returns it.
func (b *Buffer) Transform(fn func(samples []float32)) *Buffer {
	s := b.Samples()
	fn(s)
	return Adopt(b.fmt, s)
}

// Gain returns a copy of the buffer with its level changed by db decibels.
func (b *Buffer) Gain(db float64) *Buffer {
	return b.Transform(func(s []float32) { dsp.ApplyGain(s, db) })
}

// MixInto adds the buffer, scaled by gain, into dst starting at sample at.
// It returns the number of samples written; the tail past len(dst) is
// dropped.
func (b *Buffer) MixInto(dst []float32, at int, gain float64) int {
	return dsp.Overlay(dst, b.samples, at, gain)
}

// Chunk encodes the buffer as 16-bit little-endian PCM. Samples outside
// [-1, 1] are clipped.
func (b *Buffer) Chunk() *DataChunk {
	data := make([]byte, len(b.samples)*2)
	for i, s := range b.samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(toInt16(s)))
	}
	return &DataChunk{Data: data, fmt: b.fmt}
}

// Int16s returns the samples converted to clipped 16-bit integers.
func (b *Buffer) Int16s() []int16 {
	out := make([]int16, len(b.samples))
	for i, s := range b.samples {
		out[i] = toInt16(s)
	}
	return out
}

func toInt16(s float32) int16 {
	v := s * 32767.0
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

// Concat joins buffers end to end. All buffers must share the same format.
func Concat(f Format, bufs ...*Buffer) (*Buffer, error) {
	total := 0
	for i, b := range bufs {
		if b.fmt != f {
			return nil, fmt.Errorf("pcm: concat: buffer %d has format %v, want %v", i, b.fmt, f)
		}
		total += len(b.samples)
	}
	out := make([]float32, 0, total)
	for _, b := range bufs {
		out = append(out, b.samples...)
	}
	return Adopt(f, out), nil
}
