package mp3

/*
#cgo darwin CFLAGS: -I/opt/homebrew/include
#cgo darwin LDFLAGS: -L/opt/homebrew/lib -lmp3lame
#cgo linux pkg-config: mp3lame
#include <lame/lame.h>
#include <stdlib.h>

static int lame_encode_interleaved(lame_global_flags* gf, const short* pcm, int num_samples, unsigned char* mp3buf, int mp3buf_size) {
    return lame_encode_buffer_interleaved(gf, (short*)pcm, num_samples, mp3buf, mp3buf_size);
}
*/
import "C"
import (
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"unsafe"

	"github.com/haivivi/beatforge/pkg/audio/pcm"
)

// ErrClosed is returned when writing to a closed encoder.
var ErrClosed = errors.New("mp3: encoder is closed")

// Quality is a LAME VBR quality level, 0 (best) to 9 (smallest).
type Quality int

const (
	QualityBest   Quality = 0 // ~245 kbps
	QualityHigh   Quality = 2 // ~190 kbps
	QualityMedium Quality = 5 // ~130 kbps
	QualityLow    Quality = 7 // ~100 kbps
	QualityWorst  Quality = 9 // ~65 kbps
)

// Bitrates lists the constant bitrates (kbps) MPEG-1 Layer III allows.
var Bitrates = []int{32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320}

// ValidBitrate reports whether kbps is 0 (VBR) or one of Bitrates.
func ValidBitrate(kbps int) bool {
	return kbps == 0 || slices.Contains(Bitrates, kbps)
}

// Encoder encodes interleaved 16-bit little-endian PCM to MP3.
type Encoder struct {
	w io.Writer

	mu         sync.Mutex
	gf         *C.lame_global_flags
	sampleRate int
	channels   int
	quality    Quality
	bitrate    int
	closed     bool
	out        []byte
}

// EncoderOption configures the encoder.
type EncoderOption func(*Encoder)

// WithQuality sets the VBR quality. Ignored when a bitrate is set.
func WithQuality(q Quality) EncoderOption {
	return func(e *Encoder) {
		e.quality = q
	}
}

// WithBitrate selects constant bitrate mode at kbps. 0 keeps VBR.
func WithBitrate(kbps int) EncoderOption {
	return func(e *Encoder) {
		e.bitrate = kbps
	}
}

// NewEncoder returns an encoder writing MP3 frames to w. LAME is initialized
// lazily on the first write.
func NewEncoder(w io.Writer, sampleRate, channels int, opts ...EncoderOption) (*Encoder, error) {
	if channels != 1 && channels != 2 {
		return nil, errors.New("mp3: channels must be 1 or 2")
	}
	e := &Encoder{
		w:          w,
		sampleRate: sampleRate,
		channels:   channels,
		quality:    QualityMedium,
		out:        make([]byte, 8192),
	}
	for _, opt := range opts {
		opt(e)
	}
	if !ValidBitrate(e.bitrate) {
		return nil, fmt.Errorf("mp3: unsupported bitrate %d kbps", e.bitrate)
	}
	return e, nil
}

func (e *Encoder) setup() error {
	if e.gf != nil {
		return nil
	}
	gf := C.lame_init()
	if gf == nil {
		return errors.New("mp3: lame_init failed")
	}
	C.lame_set_in_samplerate(gf, C.int(e.sampleRate))
	C.lame_set_num_channels(gf, C.int(e.channels))
	if e.channels == 1 {
		C.lame_set_mode(gf, C.MONO)
	} else {
		C.lame_set_mode(gf, C.JOINT_STEREO)
	}
	if e.bitrate > 0 {
		C.lame_set_VBR(gf, C.vbr_off)
		C.lame_set_brate(gf, C.int(e.bitrate))
	} else {
		C.lame_set_VBR(gf, C.vbr_default)
		C.lame_set_VBR_quality(gf, C.float(e.quality))
	}
	if C.lame_init_params(gf) < 0 {
		C.lame_close(gf)
		return errors.New("mp3: lame_init_params failed")
	}
	e.gf = gf
	return nil
}

// Write encodes data, which must hold whole interleaved int16 frames.
func (e *Encoder) Write(data []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return 0, ErrClosed
	}
	if err := e.setup(); err != nil {
		return 0, err
	}

	frames := len(data) / (2 * e.channels)
	if frames == 0 {
		return len(data), nil
	}
	// LAME's worst case is 1.25 * frames + 7200 bytes.
	if need := frames*5/4 + 7200; len(e.out) < need {
		e.out = make([]byte, need)
	}

	var n C.int
	if e.channels == 2 {
		n = C.lame_encode_interleaved(e.gf,
			(*C.short)(unsafe.Pointer(&data[0])), C.int(frames),
			(*C.uchar)(unsafe.Pointer(&e.out[0])), C.int(len(e.out)))
	} else {
		n = C.lame_encode_buffer(e.gf,
			(*C.short)(unsafe.Pointer(&data[0])), nil, C.int(frames),
			(*C.uchar)(unsafe.Pointer(&e.out[0])), C.int(len(e.out)))
	}
	if n < 0 {
		return 0, fmt.Errorf("mp3: encode failed (%d)", int(n))
	}
	if n > 0 {
		if _, err := e.w.Write(e.out[:n]); err != nil {
			return 0, err
		}
	}
	return len(data), nil
}

// Flush writes the frames LAME still buffers. Call it once after the last
// Write.
func (e *Encoder) Flush() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.gf == nil || e.closed {
		return nil
	}
	n := C.lame_encode_flush(e.gf, (*C.uchar)(unsafe.Pointer(&e.out[0])), C.int(len(e.out)))
	if n > 0 {
		if _, err := e.w.Write(e.out[:n]); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the LAME handle. It does not flush.
func (e *Encoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	if e.gf != nil {
		C.lame_close(e.gf)
		e.gf = nil
	}
	return nil
}

// EncodeBuffer encodes a mono buffer to w and flushes.
func EncodeBuffer(w io.Writer, buf *pcm.Buffer, opts ...EncoderOption) error {
	enc, err := NewEncoder(w, buf.Format().SampleRate(), buf.Format().Channels(), opts...)
	if err != nil {
		return err
	}
	defer enc.Close()

	if _, err := buf.Chunk().WriteTo(enc); err != nil {
		return err
	}
	return enc.Flush()
}
