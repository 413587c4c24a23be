package observed_test

import (
	"context"
	"runtime"
	"testing"

	"github.com/observed-go/observed"
	"github.com/observed-go/observed/trace"
)

type captureTracer struct {
	events []trace.Event
}

func (c *captureTracer) OnEvent(_ context.Context, event trace.Event) {
	c.events = append(c.events, event)
}

func (c *captureTracer) types() []trace.EventType {
	out := make([]trace.EventType, len(c.events))
	for i, e := range c.events {
		out[i] = e.Type
	}
	return out
}

func TestDispatchTracing(t *testing.T) {
	capture := &captureTracer{}
	reg := observed.MustWrap(func() {}, observed.WithTracer(capture))

	obs := func() {}
	if err := reg.AddObserver(observed.Func(&obs)); err != nil {
		t.Fatalf("AddObserver: %v", err)
	}

	if _, err := reg.Call(); err != nil {
		t.Fatalf("Call: %v", err)
	}

	want := []trace.EventType{observed.EventDispatch, observed.EventObserverCall}
	got := capture.types()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}

	for _, e := range capture.events {
		if e.Source != reg.ID() {
			t.Errorf("event source = %q, want registry id %q", e.Source, reg.ID())
		}
	}
	runtime.KeepAlive(&obs)
}

func TestPruneTracing(t *testing.T) {
	capture := &captureTracer{}
	reg := observed.MustWrap(func(string) {}, observed.WithTracer(capture))

	observerCalls := 0
	addTransientFuncObserver(t, reg, &observerCalls)

	runtime.GC()
	runtime.GC()

	if _, err := reg.Call("x"); err != nil {
		t.Fatalf("Call: %v", err)
	}

	sawPrune := false
	for _, e := range capture.events {
		if e.Type == observed.EventObserverPruned {
			sawPrune = true
		}
	}
	if !sawPrune {
		t.Errorf("no prune event emitted, events = %v", capture.types())
	}
}

func TestSilentWithoutTracer(t *testing.T) {
	// No tracer attached: dispatch must not emit or allocate trace state.
	reg := observed.MustWrap(func() {})
	if _, err := reg.Call(); err != nil {
		t.Fatalf("Call: %v", err)
	}
}
