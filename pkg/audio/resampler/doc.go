// Package resampler converts 16-bit PCM between sample rates and channel
// layouts. It is used to bring user-supplied WAV samples and vocal clips into
// the engine's fixed render format.
//
// Conversion runs in pure Go on top of github.com/tphakala/go-audio-resampling
// and is exposed both as a streaming io.Reader and as a one-shot decode into a
// pcm.Buffer:
//
//	src := resampler.Format{SampleRate: 48000, Stereo: true}
//	buf, err := resampler.Decode(wavData, src, pcm.L16Mono44K)
//	if err != nil {
//	    return err
//	}
package resampler
