package cli

import (
	"fmt"
	"math"
)

// FormatDuration formats milliseconds as "850ms", "12.5s" or "2m3.0s".
func FormatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	secs := float64(ms) / 1000
	if secs < 60 {
		return fmt.Sprintf("%.1fs", secs)
	}
	mins := int(secs / 60)
	secs -= float64(mins * 60)
	return fmt.Sprintf("%dm%.1fs", mins, secs)
}

// FormatDB formats a level in dBFS.
func FormatDB(db float64) string {
	if math.IsInf(db, -1) || db <= -180 {
		return "-inf dB"
	}
	return fmt.Sprintf("%.1f dB", db)
}
