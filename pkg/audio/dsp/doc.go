// Package dsp provides the sample-level building blocks used to assemble
// percussion renders: decibel/gain conversion, additive overlay, linear fades,
// peak normalization and a soft-knee dynamic range compressor.
//
// All functions operate in place on mono []float32 slices holding samples in
// the nominal range [-1, 1]. None of them allocate or keep references to the
// slices they are given.
//
// Example usage:
//
//	dst := make([]float32, 44100)
//	dsp.Overlay(dst, kick, 0, dsp.DBToGain(-6))
//	dsp.Normalize(dst, -0.3)
//	dsp.DefaultCompressor().Process(dst, 44100)
package dsp
