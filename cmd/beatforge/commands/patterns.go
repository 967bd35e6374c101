package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/haivivi/beatforge/pkg/cli"
	"github.com/haivivi/beatforge/pkg/pattern"
	"github.com/haivivi/beatforge/pkg/project"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List and show drum patterns",
	Long: `List and show the built-in drum patterns, plus the custom patterns of
a project file given with -f.`,
}

// patternInfo summarizes one style.
type patternInfo struct {
	Style       string         `json:"style" yaml:"style"`
	Cycle       int            `json:"cycle" yaml:"cycle"`
	Hits        map[string]int `json:"hits_per_cycle" yaml:"hits_per_cycle"`
	Fingerprint string         `json:"fingerprint" yaml:"fingerprint"`
}

type patternList []patternInfo

func (l patternList) Header() []string {
	h := []string{"style", "bars"}
	for _, inst := range pattern.Instruments() {
		h = append(h, string(inst))
	}
	return append(h, "fingerprint")
}

func (l patternList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, p := range l {
		row := []string{p.Style, strconv.Itoa(p.Cycle)}
		for _, inst := range pattern.Instruments() {
			row = append(row, strconv.Itoa(p.Hits[string(inst)]))
		}
		rows = append(rows, append(row, p.Fingerprint[:12]))
	}
	return rows
}

func describePattern(p pattern.Pattern) patternInfo {
	info := patternInfo{
		Style:       string(p.Style()),
		Cycle:       p.Cycle(),
		Hits:        make(map[string]int),
		Fingerprint: pattern.Fingerprint(p),
	}
	for i := range p.Cycle() {
		bar := p.Bar(i)
		for _, inst := range pattern.Instruments() {
			info.Hits[string(inst)] += bar.Count(inst)
		}
	}
	return info
}

// loadLibrary returns the built-in library, extended by the project file
// given with -f.
func loadLibrary() (*pattern.Library, error) {
	if inputFile == "" {
		return pattern.NewLibrary(), nil
	}
	p, err := project.Load(inputFile)
	if err != nil {
		return nil, err
	}
	return p.Library()
}

var patternsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pattern styles",
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := loadLibrary()
		if err != nil {
			return err
		}
		var list patternList
		for _, style := range lib.Styles() {
			p, err := lib.Lookup(style)
			if err != nil {
				return err
			}
			list = append(list, describePattern(p))
		}
		return outputResult(list)
	},
}

var showBar int

var patternsShowCmd = &cobra.Command{
	Use:   "show <style>",
	Short: "Draw a pattern as a step grid",
	Long: `Draw every bar of a pattern's cycle as a sixteenth-note grid.
X marks an accented hit, x a hit and . a rest.

Example:
  beatforge patterns show funk
  beatforge patterns show pop --bar 1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := loadLibrary()
		if err != nil {
			return err
		}
		style, err := pattern.ParseStyle(args[0])
		if err != nil {
			return err
		}
		p, err := lib.Lookup(style)
		if err != nil {
			return err
		}
		if outputJSON || outputFile != "" {
			return outputResult(describePattern(p))
		}

		bars := make([]int, 0, p.Cycle())
		if cmd.Flags().Changed("bar") {
			if showBar < 0 {
				return fmt.Errorf("--bar must not be negative")
			}
			bars = append(bars, showBar)
		} else {
			for i := range p.Cycle() {
				bars = append(bars, i)
			}
		}
		for _, i := range bars {
			title := fmt.Sprintf("%s bar %d/%d", style, i%p.Cycle()+1, p.Cycle())
			fmt.Print(cli.RenderGrid(title, p.Bar(i), cli.DefaultStyles))
		}
		return nil
	},
}

func init() {
	patternsShowCmd.Flags().IntVar(&showBar, "bar", 0, "bar index to show (default: the whole cycle)")

	patternsCmd.AddCommand(patternsListCmd)
	patternsCmd.AddCommand(patternsShowCmd)
}
