// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup
// to receive events about tour construction, navigation, cache operations and
// API requests.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetTourHooks(&myTourHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	path := builder.Build(g)
//	observability.Tour().OnPathBuilt(ctx, len(g.Nodes), len(path), false, time.Since(start))
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Tour Hooks
// =============================================================================

// TourHooks receives events from the guided tour.
type TourHooks interface {
	// OnPathBuilt records a path construction (or a memoized/cached lookup).
	OnPathBuilt(ctx context.Context, nodeCount, pathLen int, cached bool, duration time.Duration)

	// OnStep records a navigation operation (start, next, prev, jump, stop).
	OnStep(ctx context.Context, op string, cursor int, active bool)

	// OnReorder records a block move in the outline.
	OnReorder(ctx context.Context, start, size, insert int)

	// OnNodeRemoved records a deletion repair of the path.
	OnNodeRemoved(ctx context.Context, id string, pathLen int)
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
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records a completed response.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopTourHooks is a no-op implementation of TourHooks.
type NoopTourHooks struct{}

func (NoopTourHooks) OnPathBuilt(context.Context, int, int, bool, time.Duration) {}
func (NoopTourHooks) OnStep(context.Context, string, int, bool)                  {}
func (NoopTourHooks) OnReorder(context.Context, int, int, int)                   {}
func (NoopTourHooks) OnNodeRemoved(context.Context, string, int)                 {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	tourHooks  TourHooks  = NoopTourHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
	hooksMu    sync.RWMutex
)

// SetTourHooks registers custom tour hooks.
// This should be called once at application startup.
func SetTourHooks(h TourHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		tourHooks = h
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
// This should be called once at application startup before serving.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Tour returns the registered tour hooks.
func Tour() TourHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return tourHooks
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
	tourHooks = NoopTourHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
