package dsp

import "math"

// silenceDB is the level reported for a zero sample.
const silenceDB = -180.0

// DBToGain converts a decibel value to a linear amplitude factor.
func DBToGain(db float64) float64 {
	return math.Pow(10, db/20)
}

// GainToDB converts a linear amplitude factor to decibels. Non-positive gains
// map to a floor of -180 dB.
func GainToDB(gain float64) float64 {
	if gain <= 0 {
		return silenceDB
	}
	return 20 * math.Log10(gain)
}

// Peak returns the maximum absolute sample value.
func Peak(s []float32) float32 {
	var peak float32
	for _, v := range s {
		if v > peak {
			peak = v
		} else if -v > peak {
			peak = -v
		}
	}
	return peak
}

// Scale multiplies every sample by gain.
func Scale(s []float32, gain float64) {
	if gain == 1 {
		return
	}
	g := float32(gain)
	for i := range s {
		s[i] *= g
	}
}

// ApplyGain changes the level of s by db decibels.
func ApplyGain(s []float32, db float64) {
	if db == 0 {
		return
	}
	Scale(s, DBToGain(db))
}

// Overlay adds src, scaled by gain, into dst starting at index at. Samples
// that would land past the end of dst are dropped. It returns the number of
// samples mixed.
func Overlay(dst, src []float32, at int, gain float64) int {
	if at < 0 {
		if -at >= len(src) {
			return 0
		}
		src = src[-at:]
		at = 0
	}
	if at >= len(dst) {
		return 0
	}
	n := min(len(src), len(dst)-at)
	g := float32(gain)
	out := dst[at : at+n]
	for i, v := range src[:n] {
		out[i] += v * g
	}
	return n
}
