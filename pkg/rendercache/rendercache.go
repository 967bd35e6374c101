// Package rendercache keeps raw section renders in a kv.Store so that
// re-rendering an unchanged section is a lookup. Entries are encoded with
// msgpack and keyed by composer.CacheKey digests.
package rendercache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/haivivi/beatforge/pkg/audio/pcm"
	"github.com/haivivi/beatforge/pkg/composer"
	"github.com/haivivi/beatforge/pkg/kv"
)

// version is bumped whenever the entry layout or the render output changes.
const version = "v1"

// DefaultPrefix is the first key segment of every entry.
const DefaultPrefix = "render"

type entry struct {
	SampleRate  int       `msgpack:"rate"`
	Samples     []float32 `msgpack:"samples"`
	Fingerprint string    `msgpack:"fingerprint"`
	BankID      string    `msgpack:"bank"`
	Tempo       float64   `msgpack:"tempo"`
	DurationMs  int64     `msgpack:"duration_ms"`
	CreatedAt   time.Time `msgpack:"created_at"`
}

// Info describes a cached render without its samples.
type Info struct {
	Key         string
	Fingerprint string
	BankID      string
	Tempo       float64
	DurationMs  int64
	Samples     int
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Stats counts lookups since the cache was created.
type Stats struct {
	Hits, Misses, Puts int64
}

// Cache implements composer.Cache.
type Cache struct {
	store  kv.Store
	prefix string
	ttl    time.Duration
	log    *slog.Logger
	now    func() time.Time

	hits, misses, puts atomic.Int64
}

// Option configures a Cache.
type Option func(*Cache)

// WithPrefix changes the key prefix.
func WithPrefix(p string) Option {
	return func(c *Cache) { c.prefix = p }
}

// WithTTL makes entries expire after d. Zero keeps them forever.
func WithTTL(d time.Duration) Option {
	return func(c *Cache) { c.ttl = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.log = l }
}

// New returns a cache over store. The store is not closed by the cache.
func New(store kv.Store, opts ...Option) *Cache {
	c := &Cache{store: store, prefix: DefaultPrefix, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c
}

func (c *Cache) key(k composer.CacheKey) kv.Key {
	return kv.Key{c.prefix, version, k.String()}
}

// Get returns the cached render for key. Misses, undecodable entries and
// entries of another sample rate or length all return nil and no error.
// Undecodable and wrong-length entries are removed.
func (c *Cache) Get(ctx context.Context, key composer.CacheKey) (*pcm.Buffer, error) {
	k := c.key(key)
	data, err := c.store.Get(ctx, k)
	if errors.Is(err, kv.ErrNotFound) {
		c.misses.Add(1)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("rendercache: %w", err)
	}

	var e entry
	if err := msgpack.Unmarshal(data, &e); err != nil {
		c.drop(ctx, k, "undecodable entry", "error", err)
		return nil, nil
	}
	f := key.Mixer.Format
	if e.SampleRate != f.SampleRate() {
		c.misses.Add(1)
		return nil, nil
	}
	if want := f.SamplesInMillis(key.DurationMs); int64(len(e.Samples)) != want {
		c.drop(ctx, k, "entry of wrong length", "samples", len(e.Samples), "want", want)
		return nil, nil
	}
	c.hits.Add(1)
	c.log.Debug("rendercache: hit", "key", k.String(), "samples", len(e.Samples))
	return pcm.Adopt(f, e.Samples), nil
}

// drop deletes a bad entry and counts the lookup as a miss.
func (c *Cache) drop(ctx context.Context, k kv.Key, reason string, args ...any) {
	c.log.Warn("rendercache: dropping "+reason, append([]any{"key", k.String()}, args...)...)
	if err := c.store.Delete(ctx, k); err != nil {
		c.log.Warn("rendercache: delete failed", "key", k.String(), "error", err)
	}
	c.misses.Add(1)
}

// Put stores buf under key.
func (c *Cache) Put(ctx context.Context, key composer.CacheKey, buf *pcm.Buffer) error {
	data, err := msgpack.Marshal(&entry{
		SampleRate:  buf.Format().SampleRate(),
		Samples:     buf.Samples(),
		Fingerprint: key.Fingerprint,
		BankID:      key.BankID,
		Tempo:       key.Tempo,
		DurationMs:  key.DurationMs,
		CreatedAt:   c.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("rendercache: encode: %w", err)
	}
	if err := c.store.Set(ctx, c.key(key), data, c.ttl); err != nil {
		return fmt.Errorf("rendercache: %w", err)
	}
	c.puts.Add(1)
	return nil
}

// List describes every live entry.
func (c *Cache) List(ctx context.Context) ([]Info, error) {
	var out []Info
	for kve, err := range c.store.List(ctx, kv.Key{c.prefix, version}) {
		if err != nil {
			return out, fmt.Errorf("rendercache: %w", err)
		}
		var e entry
		if err := msgpack.Unmarshal(kve.Value, &e); err != nil {
			continue
		}
		out = append(out, Info{
			Key:         kve.Key[len(kve.Key)-1],
			Fingerprint: e.Fingerprint,
			BankID:      e.BankID,
			Tempo:       e.Tempo,
			DurationMs:  e.DurationMs,
			Samples:     len(e.Samples),
			CreatedAt:   e.CreatedAt,
			ExpiresAt:   kve.ExpiresAt,
		})
	}
	return out, nil
}

// Clear removes every entry, including those of older layouts.
func (c *Cache) Clear(ctx context.Context) (int, error) {
	n, err := c.store.DeletePrefix(ctx, kv.Key{c.prefix})
	if err != nil {
		return n, fmt.Errorf("rendercache: %w", err)
	}
	return n, nil
}

// Stats returns the lookup counters.
func (c *Cache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Puts: c.puts.Load()}
}

var _ composer.Cache = (*Cache)(nil)
