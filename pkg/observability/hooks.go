// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. The section facade, the
// sizes memo and the HTTP service call hooks; main decides what receives them.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// The [prom] subpackage implements every interface with Prometheus metrics.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    rec := prom.New(registry)
//	    observability.SetSectionHooks(rec)
//	    observability.SetCacheHooks(rec)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Sections().OnSizesComputed(ctx, "hero", time.Since(start), err)
//
// [prom]: github.com/matzehuels/respimg/pkg/observability/prom
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Section Hooks
// =============================================================================

// SectionHooks receives events from section registration, the section stack
// and sizes computation.
type SectionHooks interface {
	// OnSectionRegistered records a registration attempt; err is the validation failure, if any.
	OnSectionRegistered(ctx context.Context, id string, err error)

	// OnSectionBegin records a begin call; pushed is false for unknown sections.
	OnSectionBegin(ctx context.Context, id string, pushed bool)

	// OnSectionEnd records an end call and how many activations it removed.
	OnSectionEnd(ctx context.Context, id string, removed int)

	// OnSizesComputed records a sizes computation. id is empty when the
	// host string was passed through because no section was active.
	OnSizesComputed(ctx context.Context, id string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)

	// OnCacheError records a failed cache operation that was ignored.
	OnCacheError(ctx context.Context, keyType string, err error)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP service.
type HTTPHooks interface {
	// OnRequest records an incoming request before routing, so path is the
	// raw URL path rather than a route pattern.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records the response to a request. route is the matched
	// route pattern, or "unmatched".
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopSectionHooks is a no-op implementation of SectionHooks.
type NoopSectionHooks struct{}

func (NoopSectionHooks) OnSectionRegistered(context.Context, string, error)            {}
func (NoopSectionHooks) OnSectionBegin(context.Context, string, bool)                  {}
func (NoopSectionHooks) OnSectionEnd(context.Context, string, int)                     {}
func (NoopSectionHooks) OnSizesComputed(context.Context, string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)          {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)         {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int)     {}
func (NoopCacheHooks) OnCacheError(context.Context, string, error) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	sectionHooks SectionHooks = NoopSectionHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	httpHooks    HTTPHooks    = NoopHTTPHooks{}
	hooksMu      sync.RWMutex
)

// SetSectionHooks registers custom section hooks.
// This should be called once at application startup before any sections are registered.
func SetSectionHooks(h SectionHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		sectionHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before the service starts.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Sections returns the registered section hooks.
func Sections() SectionHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return sectionHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	sectionHooks = NoopSectionHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
