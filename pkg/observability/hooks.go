// Package observability lets a binary observe kernel builds, cache traffic
// and HTTP requests without the libraries depending on a metrics or tracing
// backend.
//
// Libraries report events through the accessors:
//
//	observability.Pipeline().OnBuildStart(ctx, params.String(), numOrientations)
//	// ... fill the table ...
//	observability.Pipeline().OnBuildComplete(ctx, cells, duration, err)
//
// Binaries install implementations once at startup, before any kernel is
// built. Until then every hook is a no-op. [LogHooks] implements all three
// interfaces on top of a charm logger.
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives the start and end of each expensive stage. Builds
// only fire on a cache miss.
type PipelineHooks interface {
	OnBuildStart(ctx context.Context, params string, orientations int)
	OnBuildComplete(ctx context.Context, cells int, duration time.Duration, err error)
	OnEnhanceStart(ctx context.Context, voxels int)
	OnEnhanceComplete(ctx context.Context, voxels int, duration time.Duration, err error)
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives lookups and writes of encoded tables. keyType names
// what is cached ("kernel").
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the query service. route is the matched
// pattern once routing is done and the raw path before.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, route string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnBuildStart(context.Context, string, int)                        {}
func (NoopPipelineHooks) OnBuildComplete(context.Context, int, time.Duration, error)       {}
func (NoopPipelineHooks) OnEnhanceStart(context.Context, int)                              {}
func (NoopPipelineHooks) OnEnhanceComplete(context.Context, int, time.Duration, error)     {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

// =============================================================================
// Registry
// =============================================================================

type hookSet struct {
	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
}

var defaults = hookSet{
	pipeline: NoopPipelineHooks{},
	cache:    NoopCacheHooks{},
	http:     NoopHTTPHooks{},
}

var (
	mu      sync.RWMutex
	current = defaults
)

func set(update func(*hookSet)) {
	mu.Lock()
	defer mu.Unlock()
	update(&current)
}

func get() hookSet {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// SetPipelineHooks installs pipeline hooks. nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		set(func(s *hookSet) { s.pipeline = h })
	}
}

// SetCacheHooks installs cache hooks. nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		set(func(s *hookSet) { s.cache = h })
	}
}

// SetHTTPHooks installs HTTP hooks. nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		set(func(s *hookSet) { s.http = h })
	}
}

// Pipeline returns the installed pipeline hooks.
func Pipeline() PipelineHooks { return get().pipeline }

// Cache returns the installed cache hooks.
func Cache() CacheHooks { return get().cache }

// HTTP returns the installed HTTP hooks.
func HTTP() HTTPHooks { return get().http }

// Reset restores the no-op hooks.
func Reset() { set(func(s *hookSet) { *s = defaults }) }
