// Package composer renders a list of sections into a song.
//
// Each section names a style and a length. The composer schedules the style's
// pattern, renders it through a mixer, applies the section's fades and gain
// offset and concatenates the results in order:
//
//	c := composer.New(pattern.NewLibrary(), mixer.NewMixer(), samplebank.Synth(pcm.L16Mono44K))
//	song, err := c.Compose(ctx, composer.DefaultStructure(pattern.StylePop), 120)
//
// Sections are independent, so they render in parallel on a bounded pool.
// Section boundaries are butt-joined without a cross-fade.
package composer
