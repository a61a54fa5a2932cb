package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports every event as a debug log line. It implements
// [RenderHooks], [CacheHooks] and [HTTPHooks].
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks writing to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger}
}

func (h *LogHooks) OnDrawStart(_ context.Context, scope string) {
	h.logger.Debug("draw started", "scope", scope)
}

func (h *LogHooks) OnDrawComplete(_ context.Context, scope string, regions int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("draw failed", "scope", scope, "elapsed", d, "err", err)
		return
	}
	h.logger.Debug("draw complete", "scope", scope, "regions", regions, "elapsed", d)
}

func (h *LogHooks) OnLayer(_ context.Context, layer string, items int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("layer failed", "layer", layer, "err", err)
		return
	}
	h.logger.Debug("layer rendered", "layer", layer, "items", items, "elapsed", d)
}

func (h *LogHooks) OnExport(_ context.Context, format string, size int, d time.Duration, err error) {
	h.logger.Debug("export", "format", format, "bytes", size, "elapsed", d, "err", err)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "elapsed", d)
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Warn("http error", "method", method, "host", host, "path", path, "err", err)
}
