// Package vocal places spoken or sung clips over a rendered track.
//
// Speech comes from a Synthesizer, usually a CommandSynthesizer wrapping an
// external text-to-speech program that writes a WAV file. Clips are loaded
// into the track format, optionally given a short slap-back echo, and
// overlaid at a time offset.
package vocal
