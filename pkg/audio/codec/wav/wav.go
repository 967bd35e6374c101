// Package wav reads and writes RIFF WAVE files as pcm.Buffers using
// github.com/youpy/go-wav.
package wav

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	gowav "github.com/youpy/go-wav"

	"github.com/haivivi/beatforge/pkg/audio/pcm"
	"github.com/haivivi/beatforge/pkg/audio/resampler"
)

// Source is what go-wav needs to parse a file: sequential and random access.
type Source interface {
	io.Reader
	io.ReaderAt
}

// Decode reads a WAV stream, mixes all channels down to mono and converts
// the result to dst.
func Decode(r Source, dst pcm.Format) (*pcm.Buffer, error) {
	wr := gowav.NewReader(r)
	f, err := wr.Format()
	if err != nil {
		return nil, fmt.Errorf("wav: %w", err)
	}
	if f.NumChannels == 0 || f.SampleRate == 0 {
		return nil, errors.New("wav: invalid header")
	}
	channels := uint(min(f.NumChannels, 2))

	var mono []float32
	for {
		samples, err := wr.ReadSamples()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("wav: %w", err)
		}
		for _, s := range samples {
			var sum float64
			for ch := range channels {
				sum += wr.FloatValue(s, ch)
			}
			mono = append(mono, float32(sum/float64(channels)))
		}
	}

	if int(f.SampleRate) == dst.SampleRate() {
		return pcm.Adopt(dst, mono), nil
	}
	src := pcm.Adopt(pcm.L16Mono44K, mono).Chunk().Data
	return resampler.Decode(bytes.NewReader(src), resampler.Format{SampleRate: int(f.SampleRate)}, dst)
}

// DecodeFile opens path and decodes it with Decode.
func DecodeFile(path string, dst pcm.Format) (*pcm.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf, err := Decode(f, dst)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return buf, nil
}

// Encode writes buf as a 16-bit mono WAV file.
func Encode(w io.Writer, buf *pcm.Buffer) error {
	f := buf.Format()
	ww := gowav.NewWriter(w, uint32(buf.Len()), uint16(f.Channels()), uint32(f.SampleRate()), uint16(f.Depth()))
	ints := buf.Int16s()
	const block = 4096
	samples := make([]gowav.Sample, 0, block)
	for start := 0; start < len(ints); start += block {
		samples = samples[:0]
		for _, v := range ints[start:min(start+block, len(ints))] {
			samples = append(samples, gowav.Sample{Values: [2]int{int(v)}})
		}
		if err := ww.WriteSamples(samples); err != nil {
			return fmt.Errorf("wav: %w", err)
		}
	}
	return nil
}
