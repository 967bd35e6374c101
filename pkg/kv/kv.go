// Package kv is a small key-value store with colon-joined path keys and
// optional expiry. It backs the render cache.
//
// Badger persists to disk (or memory) with github.com/dgraph-io/badger/v4;
// Memory is a map for tests and one-shot runs.
package kv

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned by Get for a missing or expired key.
	ErrNotFound = errors.New("kv: not found")

	// ErrInvalidKey is returned for empty keys and segments that are empty
	// or contain the separator.
	ErrInvalidKey = errors.New("kv: invalid key")
)

// Separator joins key segments.
const Separator = ':'

// Key is a hierarchical key such as Key{"render", "v1", "3fa2..."}.
type Key []string

func (k Key) String() string { return strings.Join(k, string(Separator)) }

// Validate reports whether k can be stored.
func (k Key) Validate() error {
	if len(k) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	for _, seg := range k {
		if seg == "" || strings.IndexByte(seg, Separator) >= 0 {
			return fmt.Errorf("%w: segment %q", ErrInvalidKey, seg)
		}
	}
	return nil
}

func (k Key) encode() []byte { return []byte(k.String()) }

// prefix returns the encoded scan prefix. A trailing separator keeps
// "a:b" from matching "a:bc"; an empty key scans everything.
func (k Key) prefix() []byte {
	if len(k) == 0 {
		return nil
	}
	return append(k.encode(), Separator)
}

func decode(b []byte) Key {
	return Key(strings.Split(string(b), string(Separator)))
}

// Entry is a stored pair.
type Entry struct {
	Key   Key
	Value []byte
	// ExpiresAt is zero for entries without a TTL.
	ExpiresAt time.Time
}

// Store is implemented by Memory and Badger. Implementations are safe for
// concurrent use.
type Store interface {
	// Get returns the value of key or ErrNotFound.
	Get(ctx context.Context, key Key) ([]byte, error)

	// Set stores value under key. A positive ttl makes the entry expire.
	Set(ctx context.Context, key Key, value []byte, ttl time.Duration) error

	// Delete removes key; a missing key is not an error.
	Delete(ctx context.Context, key Key) error

	// List yields live entries under prefix in key order.
	List(ctx context.Context, prefix Key) iter.Seq2[Entry, error]

	// DeletePrefix removes every entry under prefix and returns how many
	// were removed.
	DeletePrefix(ctx context.Context, prefix Key) (int, error)

	Close() error
}
