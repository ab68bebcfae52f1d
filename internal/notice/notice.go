// Package notice collects the user-facing notifications raised while an
// operation runs. Handlers return them alongside the response body.
package notice

import (
	"context"
	"log/slog"
	"sync"

	"github.com/utafrali/storefront/pkg/logger"
)

// Level classifies a notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Notice is a single message for the user.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Notifier receives notices.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// Collector accumulates notices for one request. Safe for concurrent use.
type Collector struct {
	mu      sync.Mutex
	notices []Notice
}

// Add appends n.
func (c *Collector) Add(n Notice) {
	c.mu.Lock()
	c.notices = append(c.notices, n)
	c.mu.Unlock()
}

// Notices returns a copy of the collected notices.
func (c *Collector) Notices() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notice, len(c.notices))
	copy(out, c.notices)
	return out
}

type collectorKey struct{}

// WithCollector returns ctx carrying a fresh collector.
func WithCollector(ctx context.Context) (context.Context, *Collector) {
	c := &Collector{}
	return context.WithValue(ctx, collectorKey{}, c), c
}

// CollectorFrom returns the collector in ctx, or nil.
func CollectorFrom(ctx context.Context) *Collector {
	c, _ := ctx.Value(collectorKey{}).(*Collector)
	return c
}

// ContextNotifier appends notices to the request's collector and logs them.
// Notices raised outside a request are only logged.
type ContextNotifier struct{}

// Notify implements Notifier.
func (ContextNotifier) Notify(ctx context.Context, n Notice) {
	level := slog.LevelDebug
	if n.Level == LevelError {
		level = slog.LevelWarn
	}
	logger.FromContext(ctx).Log(ctx, level, "notice",
		slog.String("level", string(n.Level)),
		slog.String("message", n.Message),
	)
	if c := CollectorFrom(ctx); c != nil {
		c.Add(n)
	}
}

// Success, Info and Error are shorthands for building notices.
func Success(msg string) Notice { return Notice{Level: LevelSuccess, Message: msg} }
func Info(msg string) Notice    { return Notice{Level: LevelInfo, Message: msg} }
func Error(msg string) Notice   { return Notice{Level: LevelError, Message: msg} }
