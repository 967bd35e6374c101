// Package pcm provides types and utilities for working with PCM (Pulse Code Modulation) audio data.
//
// The package defines audio formats for common configurations (16-bit mono at various sample rates),
// chunks of encoded audio, and Buffer, the immutable float32 sample block that the
// rendering pipeline passes between stages.
//
// Key types:
//   - Format: Represents audio format (sample rate, channels, bit depth)
//   - Chunk: Interface for audio data chunks
//   - DataChunk: L16 audio held in memory
//   - Buffer: Read-only mono float32 samples plus their Format
//
// Example usage:
//
//	format := pcm.L16Mono44K
//
//	// Samples needed for a 500ms drum hit
//	n := format.SamplesInMillis(500)
//
//	// Wrap rendered samples without copying, then encode to L16
//	buf := pcm.Adopt(format, samples)
//	chunk := buf.Chunk()
//	chunk.WriteTo(w)
package pcm
