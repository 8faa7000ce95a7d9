package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/imagestitch/pkg/observability"
)

// logHooks reports pipeline stages and cache traffic at debug level.
// It is registered by --verbose.
type logHooks struct {
	logger *log.Logger
}

var (
	_ observability.PipelineHooks = (*logHooks)(nil)
	_ observability.CacheHooks    = (*logHooks)(nil)
)

func (h *logHooks) OnStageStart(_ context.Context, stage string) {
	h.logger.Debug("stage started", "stage", stage)
}

func (h *logHooks) OnStageComplete(_ context.Context, stage string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("stage failed", "stage", stage, "duration", d.Round(time.Microsecond), "error", err)
		return
	}
	h.logger.Debug("stage finished", "stage", stage, "duration", d.Round(time.Microsecond))
}

// OnTilePlaced is silent; the progress view covers it.
func (h *logHooks) OnTilePlaced(context.Context, int, int) {}

func (h *logHooks) OnCacheHit(_ context.Context, key string) {
	h.logger.Debug("cache hit", "key", shortKey(key))
}

func (h *logHooks) OnCacheMiss(_ context.Context, key string) {
	h.logger.Debug("cache miss", "key", shortKey(key))
}

func (h *logHooks) OnCacheSet(_ context.Context, key string, size int) {
	h.logger.Debug("cache store", "key", shortKey(key), "bytes", size)
}

// shortKey trims a cache key to something readable in a log line.
func shortKey(key string) string {
	const n = 24
	if len(key) <= n {
		return key
	}
	return key[:n] + "…"
}
