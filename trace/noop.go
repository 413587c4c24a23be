package trace

import "context"

// NoopTracer discards all events.
type NoopTracer struct{}

func (NoopTracer) OnEvent(ctx context.Context, event Event) {}
