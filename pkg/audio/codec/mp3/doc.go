// Package mp3 encodes 16-bit PCM to MP3 with libmp3lame (cgo).
//
// Building requires the LAME headers and library (pkg-config mp3lame on
// Linux, Homebrew on macOS).
package mp3
