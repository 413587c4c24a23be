// Package trace provides opt-in visibility into observer dispatch. Nothing
// in the observed package emits anything unless a Tracer is attached, so the
// default behavior stays completely silent. Level values align with
// OpenTelemetry SeverityNumbers so events can feed OTel collectors without
// translation.
package trace

import (
	"context"
	"log/slog"
	"time"
)

// Level is event severity aligned with OTel SeverityNumber ranges.
type Level int

const (
	LevelVerbose Level = 5  // OTel DEBUG (5-8)
	LevelInfo    Level = 9  // OTel INFO (9-12)
	LevelWarning Level = 13 // OTel WARN (13-16)
	LevelError   Level = 17 // OTel ERROR (17-20)
)

// String returns the OTel severity text for the level.
func (l Level) String() string {
	switch {
	case l <= 4:
		return "TRACE"
	case l <= 8:
		return "DEBUG"
	case l <= 12:
		return "INFO"
	case l <= 16:
		return "WARN"
	case l <= 20:
		return "ERROR"
	default:
		return "FATAL"
	}
}

// SlogLevel maps this level to the corresponding slog.Level.
func (l Level) SlogLevel() slog.Level {
	switch {
	case l <= 8:
		return slog.LevelDebug
	case l <= 12:
		return slog.LevelInfo
	case l <= 16:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// EventType identifies the kind of dispatch event, e.g. "observed.dispatch"
// or "observed.observer.pruned". The observed package defines its constants
// alongside the registry that emits them.
type EventType string

// Event is a single dispatch event. Source carries the emitting registry's
// id, Data carries per-event attributes such as the target name, the
// observer position in the sweep, or the pruned entry count.
type Event struct {
	Type   EventType
	Level  Level
	Time   time.Time
	Source string
	Data   map[string]any
}

// Tracer receives dispatch events for logging, metrics, or test capture.
type Tracer interface {
	OnEvent(ctx context.Context, event Event)
}
