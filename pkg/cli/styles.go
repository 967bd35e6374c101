package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/haivivi/beatforge/pkg/pattern"
)

// Theme is the color scheme of terminal output.
type Theme struct {
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Dim     lipgloss.Color
}

// DefaultTheme is green on dark.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Accent:  lipgloss.Color("#ffb000"),
	Dim:     lipgloss.Color("#6e7681"),
}

// Styles derive from a Theme.
type Styles struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	Border lipgloss.Style
	Header lipgloss.Style
	Cell   lipgloss.Style
	Strong lipgloss.Style
	Weak   lipgloss.Style
	Rest   lipgloss.Style
}

// NewStyles builds styles from t.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Label:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Width(6),
		Border: lipgloss.NewStyle().Foreground(t.Primary),
		Header: lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Padding(0, 1),
		Cell:   lipgloss.NewStyle().Padding(0, 1),
		Strong: lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		Weak:   lipgloss.NewStyle().Foreground(t.Primary),
		Rest:   lipgloss.NewStyle().Foreground(t.Dim),
	}
}

// DefaultStyles uses DefaultTheme.
var DefaultStyles = NewStyles(DefaultTheme)

// StepsPerBar is the grid resolution: sixteenth notes in 4/4.
const StepsPerBar = 16

// strongVelocity marks accented hits in the grid.
const strongVelocity = 90

// GridRow returns the sixteenth-note cells of inst in bar: 'X' for an
// accented hit, 'x' for a hit and '.' for a rest. Hits off the grid snap
// to the nearest step.
func GridRow(bar pattern.Template, inst pattern.Instrument) []rune {
	cells := []rune(strings.Repeat(".", StepsPerBar))
	for _, o := range bar.Onsets(inst) {
		step := int(math.Round(o.Beat * StepsPerBar / 4))
		if step >= StepsPerBar {
			continue
		}
		c := 'x'
		if o.Velocity >= strongVelocity {
			c = 'X'
		}
		if cells[step] != 'X' {
			cells[step] = c
		}
	}
	return cells
}

// RenderGrid draws one bar as a drum-machine grid, one row per instrument,
// with a bar line every beat.
func RenderGrid(title string, bar pattern.Template, s Styles) string {
	var b strings.Builder
	b.WriteString(s.Title.Render(title))
	b.WriteByte('\n')
	for _, inst := range pattern.Instruments() {
		b.WriteString(s.Label.Render(string(inst)))
		for i, c := range GridRow(bar, inst) {
			if i%4 == 0 {
				b.WriteString(s.Border.Render("|"))
			}
			switch c {
			case 'X':
				b.WriteString(s.Strong.Render(string(c)))
			case 'x':
				b.WriteString(s.Weak.Render(string(c)))
			default:
				b.WriteString(s.Rest.Render(string(c)))
			}
		}
		b.WriteString(s.Border.Render("|"))
		if n := bar.Count(inst); n > 0 {
			fmt.Fprintf(&b, " %d", n)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
