package kv

import (
	"bytes"
	"context"
	"iter"
	"slices"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process Store.
type Memory struct {
	mu   sync.RWMutex
	data map[string]memEntry
	now  func() time.Time
}

type memEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e memEntry) live(now time.Time) bool {
	return e.expiresAt.IsZero() || now.Before(e.expiresAt)
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]memEntry), now: time.Now}
}

func (m *Memory) Get(_ context.Context, key Key) ([]byte, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	e, ok := m.data[key.String()]
	m.mu.RUnlock()
	if !ok || !e.live(m.now()) {
		return nil, ErrNotFound
	}
	return bytes.Clone(e.value), nil
}

func (m *Memory) Set(_ context.Context, key Key, value []byte, ttl time.Duration) error {
	if err := key.Validate(); err != nil {
		return err
	}
	e := memEntry{value: bytes.Clone(value)}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.data[key.String()] = e
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, key Key) error {
	if err := key.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.data, key.String())
	m.mu.Unlock()
	return nil
}

func (m *Memory) matching(prefix Key) []string {
	p := string(prefix.prefix())
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, p) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

func (m *Memory) List(_ context.Context, prefix Key) iter.Seq2[Entry, error] {
	now := m.now()
	m.mu.RLock()
	var entries []Entry
	for _, k := range m.matching(prefix) {
		e := m.data[k]
		if e.live(now) {
			entries = append(entries, Entry{Key: decode([]byte(k)), Value: bytes.Clone(e.value), ExpiresAt: e.expiresAt})
		}
	}
	m.mu.RUnlock()

	return func(yield func(Entry, error) bool) {
		for _, e := range entries {
			if !yield(e, nil) {
				return
			}
		}
	}
}

func (m *Memory) DeletePrefix(_ context.Context, prefix Key) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := m.matching(prefix)
	for _, k := range keys {
		delete(m.data, k)
	}
	return len(keys), nil
}

func (m *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
