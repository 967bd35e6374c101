package resampler

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"

	resampling "github.com/tphakala/go-audio-resampling"

	"github.com/haivivi/beatforge/pkg/audio/pcm"
)

// ErrClosed is returned by Read after Close.
var ErrClosed = errors.New("resampler: closed")

// Stream wraps an io.Reader of 16-bit PCM in src format and yields the same
// audio in dst format. Channel conversion averages (stereo to mono) or
// duplicates (mono to stereo); rate conversion uses a high-quality polyphase
// filter.
type Stream struct {
	src    io.Reader
	srcFmt Format
	dstFmt Format

	mu       sync.Mutex
	closeErr error
	rs       resampling.Resampler
	readBuf  []byte
	leftover []byte
}

// New returns a Stream converting src from srcFmt to dstFmt.
func New(src io.Reader, srcFmt, dstFmt Format) (*Stream, error) {
	if srcFmt.SampleRate <= 0 || dstFmt.SampleRate <= 0 {
		return nil, fmt.Errorf("resampler: invalid sample rate %d -> %d", srcFmt.SampleRate, dstFmt.SampleRate)
	}
	s := &Stream{
		src:    newFrameReader(src, srcFmt.frameBytes()),
		srcFmt: srcFmt,
		dstFmt: dstFmt,
	}
	if srcFmt.SampleRate != dstFmt.SampleRate {
		rs, err := resampling.New(&resampling.Config{
			InputRate:  float64(srcFmt.SampleRate),
			OutputRate: float64(dstFmt.SampleRate),
			Channels:   dstFmt.channels(),
			Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
		})
		if err != nil {
			return nil, fmt.Errorf("resampler: %w", err)
		}
		s.rs = rs
	}
	return s, nil
}

// Read fills p with converted audio. p is truncated to whole frames of the
// destination format.
func (s *Stream) Read(p []byte) (int, error) {
	fb := s.dstFmt.frameBytes()
	if len(p) == 0 {
		return 0, nil
	}
	if len(p) < fb {
		return 0, io.ErrShortBuffer
	}
	p = p[:len(p)/fb*fb]

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.leftover) > 0 {
		n := copy(p, s.leftover)
		s.leftover = s.leftover[n:]
		return n, nil
	}
	if s.closeErr != nil {
		return 0, s.closeErr
	}
	if s.rs == nil {
		return s.readChannels(p)
	}
	return s.readResampled(p)
}

func (s *Stream) readResampled(p []byte) (int, error) {
	ratio := float64(s.srcFmt.SampleRate) / float64(s.dstFmt.SampleRate)
	want := int(float64(len(p))*ratio) + 4*s.dstFmt.frameBytes()
	want -= want % s.dstFmt.frameBytes()

	n, readErr := s.fill(want)
	if n == 0 {
		if readErr == nil {
			readErr = io.EOF
		}
		return 0, readErr
	}

	input := make([]float64, n/2)
	for i := range input {
		input[i] = float64(int16(binary.LittleEndian.Uint16(s.readBuf[i*2:]))) / 32768.0
	}
	output, err := s.rs.Process(input)
	if err != nil {
		return 0, fmt.Errorf("resampler: %w", err)
	}
	if len(output) == 0 {
		return 0, readErr
	}

	out := make([]byte, len(output)*2)
	for i, v := range output {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(clip16(v)))
	}
	out = out[:len(out)/s.dstFmt.frameBytes()*s.dstFmt.frameBytes()]

	copied := copy(p, out)
	if copied < len(out) {
		s.leftover = append(s.leftover, out[copied:]...)
	}
	return copied, readErr
}

func (s *Stream) readChannels(p []byte) (int, error) {
	n, err := s.fill(len(p))
	if n == 0 {
		return 0, err
	}
	copy(p, s.readBuf[:n])
	return n, err
}

// fill reads source frames and converts their channel layout, leaving up to
// dstLen bytes in readBuf.
func (s *Stream) fill(dstLen int) (int, error) {
	srcLen := dstLen
	switch {
	case s.srcFmt.Stereo && !s.dstFmt.Stereo:
		srcLen = dstLen * 2
	case !s.srcFmt.Stereo && s.dstFmt.Stereo:
		srcLen = dstLen / 2
	}
	if cap(s.readBuf) < max(srcLen, dstLen) {
		s.readBuf = make([]byte, max(srcLen, dstLen))
	}
	s.readBuf = s.readBuf[:cap(s.readBuf)]

	n, err := s.src.Read(s.readBuf[:srcLen])
	if n == 0 {
		return 0, err
	}
	switch {
	case s.srcFmt.Stereo && !s.dstFmt.Stereo:
		n = downmix(s.readBuf[:n])
	case !s.srcFmt.Stereo && s.dstFmt.Stereo:
		n = upmix(s.readBuf[:n*2])
	}
	return n, err
}

// Close releases the resampler. Subsequent reads return ErrClosed.
func (s *Stream) Close() error {
	return s.CloseWithError(ErrClosed)
}

// CloseWithError is like Close but makes subsequent reads return err.
func (s *Stream) CloseWithError(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closeErr == nil {
		s.closeErr = err
	}
	s.rs = nil
	return nil
}

// Decode reads all of r as PCM in src format and returns it as a mono buffer
// in dst format.
func Decode(r io.Reader, src Format, dst pcm.Format) (*pcm.Buffer, error) {
	s, err := New(r, src, FromPCM(dst))
	if err != nil {
		return nil, err
	}
	defer s.Close()
	data, err := io.ReadAll(s)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	return pcm.DecodeL16(dst, data), nil
}

func clip16(v float64) int16 {
	v = math.Round(v * 32767)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// downmix averages interleaved stereo frames into mono, in place.
func downmix(b []byte) int {
	frames := len(b) / 4
	for i := range frames {
		l := int16(binary.LittleEndian.Uint16(b[i*4:]))
		r := int16(binary.LittleEndian.Uint16(b[i*4+2:]))
		binary.LittleEndian.PutUint16(b[i*2:], uint16(int16((int32(l)+int32(r))/2)))
	}
	return frames * 2
}

// upmix duplicates mono samples into stereo frames, in place. b must have
// room for twice the mono data.
func upmix(b []byte) int {
	samples := len(b) / 4
	for i := samples - 1; i >= 0; i-- {
		lo, hi := b[i*2], b[i*2+1]
		b[i*4], b[i*4+1] = lo, hi
		b[i*4+2], b[i*4+3] = lo, hi
	}
	return samples * 4
}
