package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/haivivi/beatforge/pkg/pattern"
)

type rows [][]string

func (rows) Header() []string   { return []string{"style", "bars"} }
func (r rows) Rows() [][]string { return r }

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Output(map[string]any{"bpm": 120}, OutputOptions{Format: FormatJSON, Writer: &buf}); err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got["bpm"] != float64(120) {
		t.Errorf("bpm = %v", got["bpm"])
	}
}

func TestOutputYAMLToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := Output(map[string]string{"style": "funk"}, OutputOptions{File: path}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "style: funk") {
		t.Errorf("file = %q", data)
	}
}

func TestOutputTable(t *testing.T) {
	var buf bytes.Buffer
	if err := Output(rows{{"funk", "1"}, {"pop", "2"}}, OutputOptions{Format: FormatTable, Writer: &buf}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"style", "funk", "pop"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := Output(map[string]int{"n": 1}, OutputOptions{Format: FormatTable, Writer: &buf}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "n: 1") {
		t.Errorf("non-tabular fallback = %q", buf.String())
	}
}

func TestOutputUnknownFormat(t *testing.T) {
	if err := Output(1, OutputOptions{Format: "xml", Writer: &bytes.Buffer{}}); err == nil {
		t.Error("xml accepted")
	}
}

func TestGridRow(t *testing.T) {
	bar := pattern.NewFunk().Bar(0)
	tests := []struct {
		inst pattern.Instrument
		want string
	}{
		{pattern.Kick, "X.X.X.X.X.X.X.X."},
		{pattern.Snare, "....X.......X..."},
		{pattern.Hihat, "xxxxxxxxxxxxxxxx"},
		{pattern.Bass, "x.x.x.x.x.x.x.x."},
	}
	for _, tt := range tests {
		if got := string(GridRow(bar, tt.inst)); got != tt.want {
			t.Errorf("GridRow(%s) = %s, want %s", tt.inst, got, tt.want)
		}
	}
}

func TestRenderGrid(t *testing.T) {
	out := RenderGrid("pop bar 1", pattern.NewPop().Bar(0), DefaultStyles)
	if !strings.Contains(out, "pop bar 1") {
		t.Errorf("missing title:\n%s", out)
	}
	if lines := strings.Split(strings.TrimSpace(out), "\n"); len(lines) != 5 {
		t.Errorf("got %d lines:\n%s", len(lines), out)
	}
}
