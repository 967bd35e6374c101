package cli

import (
	"math"
	"testing"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0ms"},
		{999, "999ms"},
		{2000, "2.0s"},
		{59900, "59.9s"},
		{123000, "2m3.0s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.ms); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}

func TestFormatDB(t *testing.T) {
	if got := FormatDB(-0.3); got != "-0.3 dB" {
		t.Errorf("FormatDB(-0.3) = %q", got)
	}
	if got := FormatDB(math.Inf(-1)); got != "-inf dB" {
		t.Errorf("FormatDB(-Inf) = %q", got)
	}
}
