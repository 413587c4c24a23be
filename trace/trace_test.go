package trace_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/observed-go/observed/trace"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		name  string
		level trace.Level
		want  string
	}{
		{name: "trace range", level: 1, want: "TRACE"},
		{name: "verbose maps to DEBUG", level: trace.LevelVerbose, want: "DEBUG"},
		{name: "info maps to INFO", level: trace.LevelInfo, want: "INFO"},
		{name: "warning maps to WARN", level: trace.LevelWarning, want: "WARN"},
		{name: "error maps to ERROR", level: trace.LevelError, want: "ERROR"},
		{name: "fatal range", level: 21, want: "FATAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
			}
		})
	}
}

func TestLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		name  string
		level trace.Level
		want  slog.Level
	}{
		{name: "verbose maps to Debug", level: trace.LevelVerbose, want: slog.LevelDebug},
		{name: "info maps to Info", level: trace.LevelInfo, want: slog.LevelInfo},
		{name: "warning maps to Warn", level: trace.LevelWarning, want: slog.LevelWarn},
		{name: "error maps to Error", level: trace.LevelError, want: slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.level.SlogLevel(); got != tt.want {
				t.Errorf("Level(%d).SlogLevel() = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func testEvent() trace.Event {
	return trace.Event{
		Type:   "observed.dispatch",
		Level:  trace.LevelInfo,
		Time:   time.Now(),
		Source: "registry-1",
		Data:   map[string]any{"observers": 2},
	}
}

func TestSlogTracer(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	trace.NewSlogTracer(logger).OnEvent(context.Background(), testEvent())

	out := buf.String()
	for _, want := range []string{"observed.dispatch", "source=registry-1", "observers=2", "level=INFO"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestMultiTracer(t *testing.T) {
	var first, second bytes.Buffer
	multi := trace.NewMultiTracer(
		trace.NewSlogTracer(slog.New(slog.NewTextHandler(&first, nil))),
		nil, // dropped, not dispatched to
		trace.NewSlogTracer(slog.New(slog.NewTextHandler(&second, nil))),
	)

	multi.OnEvent(context.Background(), testEvent())

	if first.Len() == 0 || second.Len() == 0 {
		t.Error("MultiTracer did not fan out to all tracers")
	}
}

func TestNoopTracer(t *testing.T) {
	// Must not panic on a zero event.
	trace.NoopTracer{}.OnEvent(context.Background(), trace.Event{})
}

func TestRegistry(t *testing.T) {
	if _, err := trace.Get("noop"); err != nil {
		t.Errorf("Get(noop) error = %v", err)
	}
	if _, err := trace.Get("slog"); err != nil {
		t.Errorf("Get(slog) error = %v", err)
	}
	if _, err := trace.Get("nope"); err == nil {
		t.Error("Get(nope) did not fail")
	}

	trace.Register("custom", trace.NoopTracer{})
	tr, err := trace.Get("custom")
	if err != nil {
		t.Fatalf("Get(custom) error = %v", err)
	}
	if _, ok := tr.(trace.NoopTracer); !ok {
		t.Errorf("Get(custom) = %T, want NoopTracer", tr)
	}
}
