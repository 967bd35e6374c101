// Package audio is the umbrella for beatforge's audio sub-packages:
//
//   - pcm: formats, chunks and the float32 Buffer every stage works on
//   - dsp: gain, fades, normalization and the dynamics compressor
//   - resampler: sample rate and channel conversion
//   - codec/wav, codec/mp3: file encoders and decoders
//
// Example usage:
//
//	import "github.com/haivivi/beatforge/pkg/audio/pcm"
//
//	buf := pcm.Silence(pcm.L16Mono44K, 500)
//	chunk := buf.Chunk()
package audio
