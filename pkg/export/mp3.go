//go:build cgo

package export

import (
	"fmt"
	"io"

	"github.com/haivivi/beatforge/pkg/audio/codec/mp3"
	"github.com/haivivi/beatforge/pkg/audio/pcm"
)

func init() {
	codecs[MP3] = codec{
		encode: func(w io.Writer, buf *pcm.Buffer, kbps int) error {
			return mp3.EncodeBuffer(w, buf, mp3.WithBitrate(kbps))
		},
		validate: func(kbps int) error {
			if !mp3.ValidBitrate(kbps) {
				return fmt.Errorf("%d kbps is not an MP3 bitrate", kbps)
			}
			return nil
		},
	}
}
