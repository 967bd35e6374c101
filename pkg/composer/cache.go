package composer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/haivivi/beatforge/pkg/audio/pcm"
	"github.com/haivivi/beatforge/pkg/mixer"
)

// Cache stores section renders before fades and gain are applied.
type Cache interface {
	// Get returns the cached buffer for key, or nil and no error on a miss.
	Get(ctx context.Context, key CacheKey) (*pcm.Buffer, error)
	// Put stores buf under key.
	Put(ctx context.Context, key CacheKey, buf *pcm.Buffer) error
}

// IdentifiedBank is a sample bank with a stable identity. Renders are only
// cached for banks that implement it.
type IdentifiedBank interface {
	mixer.SampleBank
	ID() string
}

// CacheKey identifies a raw section render.
type CacheKey struct {
	Fingerprint string
	Tempo       float64
	DurationMs  int64
	BankID      string
	Mixer       mixer.Settings
}

// String returns a hex digest of the key, usable as a storage key.
func (k CacheKey) String() string {
	h := sha256.New()
	c := k.Mixer.Compressor
	fmt.Fprintf(h, "%s|%g|%d|%s|%d|%g|%g|%t|%g/%g/%g/%g/%g",
		k.Fingerprint, k.Tempo, k.DurationMs, k.BankID,
		k.Mixer.Format, k.Mixer.MaxAttenuation, k.Mixer.Ceiling, k.Mixer.Dynamics,
		c.ThresholdDB, c.Ratio, c.AttackMs, c.ReleaseMs, c.KneeDB)
	return hex.EncodeToString(h.Sum(nil))
}
