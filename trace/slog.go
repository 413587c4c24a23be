package trace

import (
	"context"
	"log/slog"
)

// SlogTracer emits dispatch events to a slog.Logger. The event type becomes
// the log message, the level is mapped via SlogLevel, and Data keys become
// top-level attributes.
type SlogTracer struct {
	logger *slog.Logger
}

// NewSlogTracer creates a SlogTracer emitting to the given logger.
func NewSlogTracer(logger *slog.Logger) *SlogTracer {
	return &SlogTracer{logger: logger}
}

func (t *SlogTracer) OnEvent(ctx context.Context, event Event) {
	attrs := make([]slog.Attr, 0, len(event.Data)+1)
	attrs = append(attrs, slog.String("source", event.Source))
	for k, v := range event.Data {
		attrs = append(attrs, slog.Any(k, v))
	}

	t.logger.LogAttrs(ctx, event.Level.SlogLevel(), string(event.Type), attrs...)
}
