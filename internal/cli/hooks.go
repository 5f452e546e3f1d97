package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scrolly/pkg/observability"
)

// logHooks reports chart, cache and fetch events as debug log lines, so
// -v shows what a command did without a metrics backend.
type logHooks struct {
	logger *log.Logger
}

func registerHooks(l *log.Logger) {
	h := logHooks{logger: l}
	observability.SetChartHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h logHooks) OnLoadStart(_ context.Context, chart string) {
	h.logger.Debug("loading chart", "chart", chart)
}

func (h logHooks) OnLoadComplete(_ context.Context, chart string, elements int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("chart failed", "chart", chart, "duration", d, "err", err)
		return
	}
	h.logger.Debug("chart rendered", "chart", chart, "elements", elements, "duration", d)
}

func (h logHooks) OnStep(_ context.Context, chart, step string) {
	h.logger.Debug("step", "chart", chart, "step", step)
}

func (h logHooks) OnRelayout(_ context.Context, chart string, w, ht float64, d time.Duration) {
	h.logger.Debug("relayout", "chart", chart, "width", w, "height", ht, "duration", d)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("fetch", "method", method, "host", host, "path", path)
}

func (h logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("fetched", "host", host, "path", path, "status", status, "duration", d)
}

func (h logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("fetch failed", "host", host, "path", path, "err", err)
}
