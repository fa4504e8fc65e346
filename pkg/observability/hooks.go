// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about layout passes, structural edits, cache operations and
// API requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetLayoutHooks(&myLayoutHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Layout().OnLayoutStart(ctx, rootID, nodeCount)
//	// ... place nodes ...
//	observability.Layout().OnLayoutComplete(ctx, rootID, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from the layout engine.
type LayoutHooks interface {
	// OnLayoutStart is called before the first pass of a layout.
	OnLayoutStart(ctx context.Context, rootID string, nodeCount int)

	// OnPassComplete is called after each committed pass. Pass 1 is the
	// placement pass, pass 2 the stabilization pass.
	OnPassComplete(ctx context.Context, rootID string, pass, moved int, maxShift float64)

	// OnLayoutSuperseded is called when a newer request for the same root
	// makes the stabilization pass unnecessary.
	OnLayoutSuperseded(ctx context.Context, rootID string)

	// OnLayoutComplete is called when a layout finishes or fails.
	OnLayoutComplete(ctx context.Context, rootID string, duration time.Duration, err error)
}

// =============================================================================
// Edit Hooks
// =============================================================================

// EditHooks receives events from structural edits.
type EditHooks interface {
	// OnEdit records an edit. err is non-nil for rejected edits.
	OnEdit(ctx context.Context, op, nodeID string, err error)
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

// HTTPHooks receives events from the API server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records a finished response.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnLayoutStart(context.Context, string, int)                       {}
func (NoopLayoutHooks) OnPassComplete(context.Context, string, int, int, float64)        {}
func (NoopLayoutHooks) OnLayoutSuperseded(context.Context, string)                       {}
func (NoopLayoutHooks) OnLayoutComplete(context.Context, string, time.Duration, error) {}

// NoopEditHooks is a no-op implementation of EditHooks.
type NoopEditHooks struct{}

func (NoopEditHooks) OnEdit(context.Context, string, string, error) {}

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
	layoutHooks LayoutHooks = NoopLayoutHooks{}
	editHooks   EditHooks   = NoopEditHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetLayoutHooks registers custom layout hooks.
// This should be called once at application startup before any layout runs.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// SetEditHooks registers custom edit hooks.
func SetEditHooks(h EditHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		editHooks = h
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
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
}

// Edit returns the registered edit hooks.
func Edit() EditHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return editHooks
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
	layoutHooks = NoopLayoutHooks{}
	editHooks = NoopEditHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
