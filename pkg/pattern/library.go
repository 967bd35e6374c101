package pattern

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"sync"
)

// Library maps styles to patterns. It is safe for concurrent use.
type Library struct {
	mu       sync.RWMutex
	patterns map[Style]Pattern
}

// NewLibrary returns a library with the built-in Funk and Pop patterns.
// Options are passed to both.
func NewLibrary(opts ...Option) *Library {
	return &Library{patterns: map[Style]Pattern{
		StyleFunk: NewFunk(opts...),
		StylePop:  NewPop(opts...),
	}}
}

// Register adds p under p.Style().
func (l *Library) Register(p Pattern) error {
	if p == nil {
		return fmt.Errorf("%w: nil", ErrInvalidPattern)
	}
	style := p.Style()
	if style == "" {
		return fmt.Errorf("%w: empty style", ErrInvalidPattern)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.patterns[style]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateStyle, style)
	}
	l.patterns[style] = p
	return nil
}

// Lookup returns the pattern registered for style.
func (l *Library) Lookup(style Style) (Pattern, error) {
	l.mu.RLock()
	p, ok := l.patterns[style]
	l.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStyle, style)
	}
	return p, nil
}

// PatternFor returns the template for bar barIndex of style.
func (l *Library) PatternFor(style Style, barIndex int) (Template, error) {
	p, err := l.Lookup(style)
	if err != nil {
		return Template{}, err
	}
	return p.Bar(barIndex), nil
}

// Styles returns the registered styles in sorted order.
func (l *Library) Styles() []Style {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Sorted(maps.Keys(l.patterns))
}

// Fingerprint returns a stable hex digest of every bar in p's cycle. Two
// patterns with the same fingerprint schedule identical events.
func Fingerprint(p Pattern) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s/%d\n", p.Style(), p.Cycle())
	for b := range p.Cycle() {
		bar := p.Bar(b)
		fmt.Fprintf(h, "bar %d\n", b)
		for _, inst := range instruments {
			for _, o := range bar.onsets[inst] {
				fmt.Fprintf(h, "%s %s %d %d %s\n", inst,
					strconv.FormatFloat(o.Beat, 'g', -1, 64), o.Velocity, o.Pitch,
					strconv.FormatFloat(o.Length, 'g', -1, 64))
			}
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
