// Package mixer renders a timeline into a single audio buffer.
//
// Unlike a streaming mixer, Render is an offline builder: it allocates a
// silent buffer covering the whole timeline, overlays one sample per event at
// a velocity-dependent gain, then peak-normalizes and compresses the result.
//
//	mx := mixer.NewMixer(mixer.WithMaxAttenuation(-24))
//	buf, err := mx.Render(tl, bank)
//	if errors.Is(err, mixer.ErrMissingSample) {
//		// buf still holds every instrument that had a sample
//	}
//
// Samples are fetched through the SampleBank interface; substitution policy
// for missing samples belongs to the bank, not the mixer.
package mixer
