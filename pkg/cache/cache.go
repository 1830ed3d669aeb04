// Package cache stores generated sizes expressions.
//
// Generating a sizes expression is cheap, but a busy render service sees
// the same (section, width) pairs over and over, and an expression may be
// shared between several service instances. The [Cache] interface has three
// implementations:
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP service
//   - [NullCache]: stores nothing, used when caching is disabled
//
// Keys come from a [Keyer] so that multi-site deployments can isolate their
// entries with a [ScopedKeyer].
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/respimg/pkg/section"
)

// DefaultTTL is the lifetime of a cached sizes expression.
const DefaultTTL = 24 * time.Hour

// Cache is a byte-oriented key/value store with expiration.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Keyer generates cache keys.
type Keyer interface {
	// SizesKey generates the key for the expression of def at the given image width.
	SizesKey(width int, def section.Definition) string
}

// DefaultKeyer derives keys from a hash of the full definition, so a
// re-registered section never reuses entries of its previous rules.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SizesKey implements Keyer.
func (DefaultKeyer) SizesKey(width int, def section.Definition) string {
	return hashKey("sizes", width, def)
}
