package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug lines to a
// charm logger. It is what the CLI registers under --verbose.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log to l.
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{Logger: l}
}

func (h *LogHooks) done(stage string, d time.Duration, err error, kv ...any) {
	if err != nil {
		h.Logger.Debug(stage+" failed", append([]any{"err", err, "elapsed", d.Round(time.Millisecond)}, kv...)...)
		return
	}
	h.Logger.Debug(stage+" done", append([]any{"elapsed", d.Round(time.Millisecond)}, kv...)...)
}

func (h *LogHooks) OnLoadStart(_ context.Context, source string) {
	h.Logger.Debug("load", "source", source)
}

func (h *LogHooks) OnLoadComplete(_ context.Context, source string, stripes int, d time.Duration, err error) {
	h.done("load", d, err, "source", source, "stripes", stripes)
}

func (h *LogHooks) OnScoreStart(_ context.Context, metric string, stripes int) {
	h.Logger.Debug("score", "metric", metric, "pairs", stripes*stripes)
}

func (h *LogHooks) OnScoreComplete(_ context.Context, metric string, d time.Duration, err error) {
	h.done("score", d, err, "metric", metric)
}

func (h *LogHooks) OnSolveStart(_ context.Context, policy string, stripes int) {
	h.Logger.Debug("solve", "policy", policy, "starts", stripes)
}

func (h *LogHooks) OnSolveComplete(_ context.Context, policy string, cost float64, d time.Duration, err error) {
	h.done("solve", d, err, "policy", policy, "cost", cost)
}

func (h *LogHooks) OnComposeStart(_ context.Context, stripes int) {
	h.Logger.Debug("compose", "stripes", stripes)
}

func (h *LogHooks) OnComposeComplete(_ context.Context, d time.Duration, err error) {
	h.done("compose", d, err)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.Logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.Logger.Info("response", "method", method, "path", path, "status", status, "elapsed", d.Round(time.Millisecond))
}
