package dsp

// Normalize scales s so that its peak sits exactly at ceilingDB dBFS and
// returns the linear gain that was applied. A silent slice is left untouched
// and reports a gain of 1.
func Normalize(s []float32, ceilingDB float64) float64 {
	peak := Peak(s)
	if peak == 0 {
		return 1
	}
	gain := DBToGain(ceilingDB) / float64(peak)
	Scale(s, gain)
	return gain
}
