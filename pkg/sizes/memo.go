package sizes

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/respimg/pkg/cache"
	"github.com/matzehuels/respimg/pkg/observability"
	"github.com/matzehuels/respimg/pkg/section"
)

const keyType = "sizes"

// Memo generates sizes expressions through a cache.
// Cache failures are logged and never change the result.
type Memo struct {
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
	logger *log.Logger
}

// MemoOption configures a Memo.
type MemoOption func(*Memo)

// WithKeyer sets the keyer used to build cache keys.
func WithKeyer(k cache.Keyer) MemoOption {
	return func(m *Memo) {
		if k != nil {
			m.keyer = k
		}
	}
}

// WithTTL sets the lifetime of cached expressions.
func WithTTL(ttl time.Duration) MemoOption {
	return func(m *Memo) { m.ttl = ttl }
}

// WithLogger sets the logger used for cache failures.
func WithLogger(l *log.Logger) MemoOption {
	return func(m *Memo) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewMemo creates a Memo backed by c. A nil c disables caching.
func NewMemo(c cache.Cache, opts ...MemoOption) *Memo {
	if c == nil {
		c = cache.NewNullCache()
	}
	m := &Memo{
		cache:  c,
		keyer:  cache.NewDefaultKeyer(),
		ttl:    cache.DefaultTTL,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Generate returns the same result as the package-level Generate.
func (m *Memo) Generate(ctx context.Context, width int, def section.Definition) string {
	hooks := observability.Cache()
	key := m.keyer.SizesKey(width, def)

	data, hit, err := m.cache.Get(ctx, key)
	switch {
	case err != nil:
		hooks.OnCacheError(ctx, keyType, err)
		m.logger.Debug("sizes cache read failed", "section", def.ID, "err", err)
	case hit:
		hooks.OnCacheHit(ctx, keyType)
		return string(data)
	default:
		hooks.OnCacheMiss(ctx, keyType)
	}

	out := Generate(width, def)
	if err := m.cache.Set(ctx, key, []byte(out), m.ttl); err != nil {
		hooks.OnCacheError(ctx, keyType, err)
		m.logger.Debug("sizes cache write failed", "section", def.ID, "err", err)
		return out
	}
	hooks.OnCacheSet(ctx, keyType, len(out))
	return out
}
