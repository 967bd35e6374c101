package pattern

import "errors"

// Custom is a user-defined pattern that cycles through a fixed list of bars.
type Custom struct {
	style Style
	bars  []Template
}

// NewCustom returns a pattern for style that plays bars in order and then
// repeats. Each bar is re-tagged with style.
func NewCustom(style Style, bars ...Template) (*Custom, error) {
	if style == "" {
		return nil, errors.New("pattern: custom pattern needs a style name")
	}
	if len(bars) == 0 {
		return nil, errors.New("pattern: custom pattern needs at least one bar")
	}
	c := &Custom{style: style, bars: make([]Template, len(bars))}
	for i, b := range bars {
		c.bars[i] = b.withStyle(style)
	}
	return c, nil
}

func (c *Custom) Style() Style { return c.style }

func (c *Custom) Cycle() int { return len(c.bars) }

func (c *Custom) Bar(index int) Template { return c.bars[cycleIndex(index, len(c.bars))] }
