// Package pattern holds the rhythm patterns that drive rendering.
//
// A Pattern is a finite cycle of one-bar Templates. Each Template lists, per
// instrument, the onsets inside a 4/4 bar: a beat offset in [0, 4), a MIDI
// velocity and optionally a pitch and note length. Templates are validated and
// sorted on construction and never change afterwards, so they can be shared
// between concurrent renders.
//
// Two styles are built in:
//
//	Funk  1-bar cycle  kick 8 eighths, snare on 2 and 4, hihat 16 sixteenths, bass eighths
//	Pop   2-bar cycle  kick on every beat, snare on 2 and 4, hihat 8 eighths, bass quarters
//
// User styles are added with NewCustom and Library.Register:
//
//	lib := pattern.NewLibrary()
//	bar, err := pattern.NewTemplate("shuffle", map[pattern.Instrument][]pattern.Onset{
//		pattern.Kick:  {{Beat: 0, Velocity: 110}, {Beat: 2.5, Velocity: 90}},
//		pattern.Snare: {{Beat: 1, Velocity: 100}, {Beat: 3, Velocity: 100}},
//	})
//	if err != nil {
//		return err
//	}
//	shuffle, _ := pattern.NewCustom("shuffle", bar)
//	lib.Register(shuffle)
package pattern
