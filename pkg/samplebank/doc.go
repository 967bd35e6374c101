// Package samplebank provides the drum and bass samples the mixer overlays.
//
// Synth builds a deterministic kit from simple synthesis (pitched-sine 808
// kick, tone-plus-noise snare, noise hihat, sine bass). LoadDir reads WAV
// files from a directory. Fallback chains two banks so that a partial sample
// directory can be completed by the synthesized kit.
package samplebank
