package samplebank

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/haivivi/beatforge/pkg/audio/pcm"
	"github.com/haivivi/beatforge/pkg/pattern"
)

// ErrNotFound is returned by Lookup for an instrument without a sample.
var ErrNotFound = errors.New("samplebank: sample not found")

// Bank is an in-memory sample bank. It is safe for concurrent use.
type Bank struct {
	id string

	mu      sync.RWMutex
	samples map[pattern.Instrument]*pcm.Buffer
}

// New returns an empty bank identified by id. The id names the bank in render
// cache keys, so two banks with different content must not share one.
func New(id string) *Bank {
	return &Bank{id: id, samples: make(map[pattern.Instrument]*pcm.Buffer)}
}

// ID returns the bank identifier.
func (b *Bank) ID() string { return b.id }

// Set stores the sample for inst, replacing any previous one.
func (b *Bank) Set(inst pattern.Instrument, s *pcm.Buffer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples[inst] = s
}

// Lookup returns the sample for inst or an error wrapping ErrNotFound.
func (b *Bank) Lookup(inst pattern.Instrument) (*pcm.Buffer, error) {
	b.mu.RLock()
	s, ok := b.samples[inst]
	b.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", ErrNotFound, inst, b.id)
	}
	return s, nil
}

// Instruments returns the instruments that have samples, in canonical order.
func (b *Bank) Instruments() []pattern.Instrument {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.SortedFunc(maps.Keys(b.samples), func(x, y pattern.Instrument) int {
		return x.Order() - y.Order()
	})
}

// Source is any sample bank.
type Source interface {
	Lookup(pattern.Instrument) (*pcm.Buffer, error)
}

type fallback struct {
	primary, secondary Source
}

// Fallback returns a bank that serves from primary and falls back to
// secondary for instruments primary does not have. Errors other than
// ErrNotFound from primary are returned as is.
func Fallback(primary, secondary Source) Source {
	return &fallback{primary: primary, secondary: secondary}
}

func (f *fallback) Lookup(inst pattern.Instrument) (*pcm.Buffer, error) {
	s, err := f.primary.Lookup(inst)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return f.secondary.Lookup(inst)
}

// ID combines the identifiers of both banks, or returns "" if either has
// none.
func (f *fallback) ID() string {
	p, ok1 := f.primary.(interface{ ID() string })
	s, ok2 := f.secondary.(interface{ ID() string })
	if !ok1 || !ok2 || p.ID() == "" || s.ID() == "" {
		return ""
	}
	return strings.Join([]string{p.ID(), s.ID()}, "+")
}
