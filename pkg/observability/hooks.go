// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries in this module call the registered hooks at interesting points
// (a thinning run starting, each round finishing, cache lookups, HTTP
// requests). The defaults are no-ops. A binary that wants metrics registers
// its own implementations once at startup:
//
//	func main() {
//	    observability.SetThinningHooks(&promThinning{})
//	    observability.SetCacheHooks(&promCache{})
//	    // ... run application
//	}
//
// Hooks are registered by main rather than imported by libraries, so the
// core packages never depend on a metrics backend.
package observability

import (
	"context"
	"sync"
	"time"
)

// ThinningHooks receives events from a pipeline run.
type ThinningHooks interface {
	// OnRunStart fires after the input is decoded. Width and height are
	// logical (border excluded).
	OnRunStart(ctx context.Context, input string, width, height int)

	// OnRound fires after each completed round.
	OnRound(ctx context.Context, index, erasedFirst, erasedSecond int)

	// OnRunComplete fires once per run, including failed and cached runs.
	OnRunComplete(ctx context.Context, input string, rounds int, elapsed time.Duration, err error)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from the HTTP server.
type HTTPHooks interface {
	// OnRequest records an incoming request before it is handled.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records the status and latency of a handled request.
	OnResponse(ctx context.Context, method, route string, status int, duration time.Duration)
}

// NoopThinningHooks is a no-op implementation of ThinningHooks.
type NoopThinningHooks struct{}

func (NoopThinningHooks) OnRunStart(context.Context, string, int, int) {}
func (NoopThinningHooks) OnRound(context.Context, int, int, int)       {}
func (NoopThinningHooks) OnRunComplete(context.Context, string, int, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

var (
	hooksMu       sync.RWMutex
	thinningHooks ThinningHooks = NoopThinningHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
)

// SetThinningHooks registers thinning hooks. A nil argument is ignored.
func SetThinningHooks(h ThinningHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		thinningHooks = h
	}
}

// SetCacheHooks registers cache hooks. A nil argument is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers HTTP hooks. A nil argument is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Thinning returns the registered thinning hooks.
func Thinning() ThinningHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return thinningHooks
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

// Reset restores all hooks to their no-op defaults. Used by tests.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	thinningHooks = NoopThinningHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
