package trace

import (
	"fmt"
	"log/slog"
	"sync"
)

var (
	tracers = map[string]Tracer{
		"noop": NoopTracer{},
		"slog": NewSlogTracer(slog.Default()),
	}
	mutex sync.RWMutex
)

// Get returns a registered tracer by name.
// Pre-registered tracers: "noop" (NoopTracer) and "slog" (default logger).
func Get(name string) (Tracer, error) {
	mutex.RLock()
	defer mutex.RUnlock()

	tr, exists := tracers[name]
	if !exists {
		return nil, fmt.Errorf("unknown tracer: %s", name)
	}
	return tr, nil
}

// Register adds or replaces a named tracer in the global registry.
func Register(name string, tracer Tracer) {
	mutex.Lock()
	defer mutex.Unlock()

	tracers[name] = tracer
}
