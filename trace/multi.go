package trace

import "context"

// MultiTracer fans out events to several tracers in order.
type MultiTracer struct {
	tracers []Tracer
}

// NewMultiTracer creates a MultiTracer forwarding to all non-nil tracers.
func NewMultiTracer(tracers ...Tracer) *MultiTracer {
	filtered := make([]Tracer, 0, len(tracers))
	for _, tr := range tracers {
		if tr != nil {
			filtered = append(filtered, tr)
		}
	}
	return &MultiTracer{tracers: filtered}
}

func (m *MultiTracer) OnEvent(ctx context.Context, event Event) {
	for _, tr := range m.tracers {
		tr.OnEvent(ctx, event)
	}
}
