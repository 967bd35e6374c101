package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/goccy/go-yaml"
)

// OutputFormat selects how results are printed.
type OutputFormat string

const (
	FormatYAML  OutputFormat = "yaml"
	FormatJSON  OutputFormat = "json"
	FormatTable OutputFormat = "table"
)

// Tabular is implemented by results that can print as a table.
type Tabular interface {
	Header() []string
	Rows() [][]string
}

// OutputOptions configures Output.
type OutputOptions struct {
	Format OutputFormat

	// File is the output path; empty means Writer, or stdout.
	File string

	Writer io.Writer
}

// Output prints result. FormatTable requires a Tabular result and falls
// back to YAML otherwise.
func Output(result any, opts OutputOptions) error {
	var w io.Writer = os.Stdout
	if opts.Writer != nil {
		w = opts.Writer
	} else if opts.File != "" {
		f, err := os.Create(opts.File)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch opts.Format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case FormatTable:
		if t, ok := result.(Tabular); ok {
			_, err := fmt.Fprintln(w, RenderTable(t, DefaultStyles))
			return err
		}
		return outputYAML(w, result)
	case FormatYAML, "":
		return outputYAML(w, result)
	}
	return fmt.Errorf("unsupported output format: %s", opts.Format)
}

func outputYAML(w io.Writer, result any) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// RenderTable draws t with a rounded border.
func RenderTable(t Tabular, s Styles) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(s.Border).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.Header
			}
			return s.Cell
		}).
		Headers(t.Header()...).
		Rows(t.Rows()...).
		String()
}

// PrintSuccess prints a check-marked line to stdout.
func PrintSuccess(format string, args ...any) {
	fmt.Printf("✓ "+format+"\n", args...)
}

// PrintError prints an error line to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// PrintWarning prints a warning line to stderr.
func PrintWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "⚠ "+format+"\n", args...)
}
