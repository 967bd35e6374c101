package resampler

import "github.com/haivivi/beatforge/pkg/audio/pcm"

// Format describes interleaved 16-bit signed PCM.
type Format struct {
	// SampleRate is the sample rate in Hz (e.g., 44100, 48000).
	SampleRate int

	// Stereo indicates stereo (2 channels) if true, mono (1 channel) if false.
	Stereo bool
}

// FromPCM returns the resampler format matching a mono pcm.Format.
func FromPCM(f pcm.Format) Format {
	return Format{SampleRate: f.SampleRate(), Stereo: f.Channels() == 2}
}

func (f Format) channels() int {
	if f.Stereo {
		return 2
	}
	return 1
}

// frameBytes is the size of one sample frame across all channels.
func (f Format) frameBytes() int {
	return 2 * f.channels()
}
