package dsp

// FadeIn ramps the first n samples of s linearly up from silence.
// n is clamped to len(s).
func FadeIn(s []float32, n int) {
	n = min(n, len(s))
	if n <= 0 {
		return
	}
	for i := 0; i < n; i++ {
		s[i] *= float32(i) / float32(n)
	}
}

// FadeOut ramps the last n samples of s linearly down to silence.
// n is clamped to len(s).
func FadeOut(s []float32, n int) {
	n = min(n, len(s))
	if n <= 0 {
		return
	}
	start := len(s) - n
	for i := 0; i < n; i++ {
		s[start+i] *= float32(n-1-i) / float32(n)
	}
}
