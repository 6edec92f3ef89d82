// Package observability carries pipeline, cache and HTTP events out of the
// core packages without tying them to a backend.
//
// Three hook interfaces cover the event sources. Each has a no-op default
// and a process-wide slot. Libraries only emit:
//
//	hooks := observability.Pipeline()
//	hooks.OnSolveStart(ctx, policy, stripes)
//	...
//	hooks.OnSolveComplete(ctx, policy, cost, time.Since(start), err)
//
// Binaries install implementations, such as LogHooks under --verbose. A
// command that wants to watch a single run next to whatever is installed
// wraps the current hooks with TeePipeline and restores them afterwards.
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives one Start and one Complete event per stage of a
// reconstruction: load, score, solve and compose.
type PipelineHooks interface {
	OnLoadStart(ctx context.Context, source string)
	OnLoadComplete(ctx context.Context, source string, stripes int, duration time.Duration, err error)

	OnScoreStart(ctx context.Context, metric string, stripes int)
	OnScoreComplete(ctx context.Context, metric string, duration time.Duration, err error)

	OnSolveStart(ctx context.Context, policy string, stripes int)
	OnSolveComplete(ctx context.Context, policy string, cost float64, duration time.Duration, err error)

	OnComposeStart(ctx context.Context, stripes int)
	OnComposeComplete(ctx context.Context, duration time.Duration, err error)
}

// CacheHooks receives cache traffic. keyType is the key prefix, such as
// "solution".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives requests served by the API.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, path string)
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// NoopPipelineHooks ignores every event. Embed it to implement a subset.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, string)                                    {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, string, int, time.Duration, error)      {}
func (NoopPipelineHooks) OnScoreStart(context.Context, string, int)                              {}
func (NoopPipelineHooks) OnScoreComplete(context.Context, string, time.Duration, error)          {}
func (NoopPipelineHooks) OnSolveStart(context.Context, string, int)                              {}
func (NoopPipelineHooks) OnSolveComplete(context.Context, string, float64, time.Duration, error) {}
func (NoopPipelineHooks) OnComposeStart(context.Context, int)                                    {}
func (NoopPipelineHooks) OnComposeComplete(context.Context, time.Duration, error)                {}

// NoopCacheHooks ignores every event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores every event.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// slot holds the installed implementation of one hook interface.
type slot[T any] struct {
	mu   sync.RWMutex
	hook T
	noop T
}

func newSlot[T any](noop T) *slot[T] { return &slot[T]{hook: noop, noop: noop} }

func (s *slot[T]) get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hook
}

func (s *slot[T]) set(h T) {
	s.mu.Lock()
	s.hook = h
	s.mu.Unlock()
}

func (s *slot[T]) reset() { s.set(s.noop) }

var (
	pipelineSlot = newSlot[PipelineHooks](NoopPipelineHooks{})
	cacheSlot    = newSlot[CacheHooks](NoopCacheHooks{})
	httpSlot     = newSlot[HTTPHooks](NoopHTTPHooks{})
)

// SetPipelineHooks installs h. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		pipelineSlot.set(h)
	}
}

// SetCacheHooks installs h. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		cacheSlot.set(h)
	}
}

// SetHTTPHooks installs h. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		httpSlot.set(h)
	}
}

// Pipeline returns the installed pipeline hooks.
func Pipeline() PipelineHooks { return pipelineSlot.get() }

// Cache returns the installed cache hooks.
func Cache() CacheHooks { return cacheSlot.get() }

// HTTP returns the installed HTTP hooks.
func HTTP() HTTPHooks { return httpSlot.get() }

// Reset reinstalls the no-op hooks everywhere.
func Reset() {
	pipelineSlot.reset()
	cacheSlot.reset()
	httpSlot.reset()
}

// TeePipeline returns hooks that deliver every event to each of hooks in
// order. Nil entries are skipped.
func TeePipeline(hooks ...PipelineHooks) PipelineHooks {
	t := make(teePipeline, 0, len(hooks))
	for _, h := range hooks {
		if h != nil {
			t = append(t, h)
		}
	}
	return t
}

type teePipeline []PipelineHooks

func (t teePipeline) OnLoadStart(ctx context.Context, source string) {
	for _, h := range t {
		h.OnLoadStart(ctx, source)
	}
}

func (t teePipeline) OnLoadComplete(ctx context.Context, source string, stripes int, d time.Duration, err error) {
	for _, h := range t {
		h.OnLoadComplete(ctx, source, stripes, d, err)
	}
}

func (t teePipeline) OnScoreStart(ctx context.Context, metric string, stripes int) {
	for _, h := range t {
		h.OnScoreStart(ctx, metric, stripes)
	}
}

func (t teePipeline) OnScoreComplete(ctx context.Context, metric string, d time.Duration, err error) {
	for _, h := range t {
		h.OnScoreComplete(ctx, metric, d, err)
	}
}

func (t teePipeline) OnSolveStart(ctx context.Context, policy string, stripes int) {
	for _, h := range t {
		h.OnSolveStart(ctx, policy, stripes)
	}
}

func (t teePipeline) OnSolveComplete(ctx context.Context, policy string, cost float64, d time.Duration, err error) {
	for _, h := range t {
		h.OnSolveComplete(ctx, policy, cost, d, err)
	}
}

func (t teePipeline) OnComposeStart(ctx context.Context, stripes int) {
	for _, h := range t {
		h.OnComposeStart(ctx, stripes)
	}
}

func (t teePipeline) OnComposeComplete(ctx context.Context, d time.Duration, err error) {
	for _, h := range t {
		h.OnComposeComplete(ctx, d, err)
	}
}
