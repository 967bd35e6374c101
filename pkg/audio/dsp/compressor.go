package dsp

import "math"

// Compressor is a feed-forward, soft-knee dynamic range compressor. Gain
// reduction follows a peak detector smoothed with separate attack and release
// times. It only ever attenuates, so it cannot push a sample past the level it
// came in with.
type Compressor struct {
	// ThresholdDB is the level above which gain reduction starts.
	ThresholdDB float64
	// Ratio is the input/output slope above the threshold. Values below 1
	// are treated as 1 (no compression).
	Ratio float64
	// AttackMs is how fast reduction is applied.
	AttackMs float64
	// ReleaseMs is how fast reduction is released.
	ReleaseMs float64
	// KneeDB is the width of the soft knee around the threshold.
	KneeDB float64
}

// DefaultCompressor returns the settings used for drum renders: -20 dBFS
// threshold, 4:1, 5 ms attack, 50 ms release and a 6 dB knee.
func DefaultCompressor() Compressor {
	return Compressor{
		ThresholdDB: -20,
		Ratio:       4,
		AttackMs:    5,
		ReleaseMs:   50,
		KneeDB:      6,
	}
}

// Reduction returns the static gain reduction in dB (>= 0) for an input level.
func (c Compressor) Reduction(levelDB float64) float64 {
	ratio := c.Ratio
	if ratio < 1 {
		ratio = 1
	}
	slope := 1 - 1/ratio
	over := levelDB - c.ThresholdDB
	knee := c.KneeDB
	switch {
	case knee > 0 && 2*math.Abs(over) <= knee:
		x := over + knee/2
		return slope * x * x / (2 * knee)
	case over <= 0:
		return 0
	default:
		return slope * over
	}
}

// Process compresses s in place. sampleRate is needed to turn the attack and
// release times into per-sample smoothing coefficients.
func (c Compressor) Process(s []float32, sampleRate int) {
	if len(s) == 0 || sampleRate <= 0 {
		return
	}
	attack := smoothing(c.AttackMs, sampleRate)
	release := smoothing(c.ReleaseMs, sampleRate)

	var env float64
	for i, v := range s {
		level := math.Abs(float64(v))
		levelDB := silenceDB
		if level > 1e-9 {
			levelDB = 20 * math.Log10(level)
		}
		target := c.Reduction(levelDB)
		if target > env {
			env = attack*env + (1-attack)*target
		} else {
			env = release*env + (1-release)*target
		}
		if env > 0 {
			s[i] = float32(float64(v) * DBToGain(-env))
		}
	}
}

// smoothing returns the one-pole coefficient for a time constant in ms.
func smoothing(ms float64, sampleRate int) float64 {
	if ms <= 0 {
		return 0
	}
	return math.Exp(-1 / (ms / 1000 * float64(sampleRate)))
}
