// Package observed implements the observer pattern with weak-reference
// lifetime management. A func or a method can be wrapped so that other
// callables are invoked with the same arguments whenever the wrapped
// callable runs. Registering a callable as an observer never keeps it, or
// its owning instance, alive: observers are held through weak pointers and
// silently drop out of the registry once their referent is collected.
//
// Wrap a function and observe it:
//
//	reg := observed.MustWrap(save)
//	reg.AddObserver(observed.Func(&auditHook))
//	reg.Call("report.txt")
//
// Wrap a method so every instance gets its own independent registry:
//
//	var pingObservable = observed.NewMethodAccessor[Node]("Ping")
//
//	a, b := &Node{}, &Node{}
//	pingObservable.For(a).AddObserver(observed.Method(b, "Ping"))
//	pingObservable.For(a).Call("hello") // runs a.Ping, then b.Ping
//
// Dispatch is synchronous and runs on the caller's goroutine. The observer
// list is not locked internally; concurrent mutation requires external
// synchronization supplied by the embedding application.
package observed

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/observed-go/observed/trace"
)

// Dispatch event types emitted when a tracer is attached.
const (
	EventDispatch       trace.EventType = "observed.dispatch"
	EventObserverCall   trace.EventType = "observed.observer.call"
	EventObserverPruned trace.EventType = "observed.observer.pruned"
	EventObserverError  trace.EventType = "observed.observer.error"
)

// Option configures an Observable at construction.
type Option func(*Observable)

// WithTracer attaches a tracer receiving dispatch events. Without one,
// dispatch emits nothing at all.
func WithTracer(t trace.Tracer) Option {
	return func(o *Observable) { o.tracer = t }
}

// AddOption configures a single observer registration.
type AddOption func(*entry)

// IdentifyObserved makes the registry prepend the observed entity's identity
// as the first argument delivered to this observer: the wrapped func value
// for a function registry, the owning instance for a method registry.
func IdentifyObserved() AddOption {
	return func(e *entry) { e.identify = true }
}

type entry struct {
	ref      callableRef
	identify bool
}

// target is the wrapped side of a registry. Function registries hold their
// func strongly; method registries hold the owner weakly so the per-instance
// side-table never pins an instance.
type target interface {
	resolve() (fn reflect.Value, marker any, ok bool)
	describe() string
}

type funcTarget struct {
	fn   reflect.Value
	self any
	name string
}

func (t funcTarget) resolve() (reflect.Value, any, bool) { return t.fn, t.self, true }
func (t funcTarget) describe() string                    { return t.name }

// Observable wraps a callable and broadcasts its invocations to registered
// observers. Create one with Wrap for functions, or through a
// MethodAccessor for methods.
//
// The observer list preserves insertion order and permits duplicates: adding
// the same observer twice registers it twice and it is invoked twice. Dead
// observers are pruned lazily during Call and are never an error.
type Observable struct {
	id      string
	target  target
	tracer  trace.Tracer
	entries []entry
}

// Wrap builds a registry around fn, which must be a non-nil func. The func
// is held strongly: the registry stands in for the func wherever the
// embedder would have bound it.
func Wrap(fn any, opts ...Option) (*Observable, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedCallable, fn)
	}
	return newObservable(funcTarget{fn: v, self: fn, name: funcName(v)}, opts), nil
}

// MustWrap is Wrap that panics on error, for package-level declarations.
func MustWrap(fn any, opts ...Option) *Observable {
	o, err := Wrap(fn, opts...)
	if err != nil {
		panic(err)
	}
	return o
}

func newObservable(t target, opts []Option) *Observable {
	o := &Observable{
		id:     uuid.Must(uuid.NewV7()).String(),
		target: t,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ID returns the registry's unique identifier, used as the source tag in
// trace events.
func (o *Observable) ID() string { return o.id }

// Name returns a human-readable label for the wrapped callable.
func (o *Observable) Name() string { return o.target.describe() }

// NumObservers returns the number of registered entries, counting entries
// whose referent has died but has not yet been pruned by a Call.
func (o *Observable) NumObservers() int { return len(o.entries) }

// AddObserver registers obs to be invoked whenever the wrapped callable
// runs, with the same arguments. Registration is append-only: re-adding an
// observer produces a second entry and a second invocation per dispatch.
// Returns ErrUnsupportedCallable if obs was built from something this
// package cannot track.
func (o *Observable) AddObserver(obs Observer, opts ...AddOption) error {
	if obs.err != nil {
		return obs.err
	}
	if obs.ref == nil {
		return fmt.Errorf("%w: zero Observer", ErrUnsupportedCallable)
	}

	e := entry{ref: obs.ref}
	for _, opt := range opts {
		opt(&e)
	}
	o.entries = append(o.entries, e)
	return nil
}

// RemoveObserver removes the first entry matching obs by identity and
// reports whether one was removed. Matching is identity-based (anchor
// pointer, plus name for method observers), so the owner need not be
// comparable and removal works even after the referent has died. Removing
// an observer that was never added is a no-op.
func (o *Observable) RemoveObserver(obs Observer) bool {
	if obs.err != nil || obs.ref == nil {
		return false
	}

	k := obs.ref.key()
	for i, e := range o.entries {
		if e.ref.key() == k {
			o.entries = slices.Delete(o.entries, i, i+1)
			return true
		}
	}
	return false
}

// Call invokes the wrapped callable with args, then forwards the same args
// to every live observer in insertion order. The wrapped callable's results
// are returned with a trailing error, if any, split off; observer results
// are discarded.
//
// A non-nil error from the wrapped callable returns immediately, before any
// observer runs. A non-nil error from an observer abandons the rest of the
// sweep; observers already invoked are not rolled back. Entries whose
// referent has been collected are skipped and pruned after the sweep.
//
// Observers run on the caller's goroutine. An observer that mutates the
// registry during dispatch affects later calls, not the snapshot being swept.
func (o *Observable) Call(args ...any) ([]any, error) {
	fn, marker, ok := o.target.resolve()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOwnerGone, o.target.describe())
	}

	o.emit(EventDispatch, trace.LevelVerbose, map[string]any{
		"target":    o.target.describe(),
		"observers": len(o.entries),
	})

	results, err := invoke(fn, args)
	if err != nil {
		return results, err
	}

	dead := false
	for i, e := range slices.Clone(o.entries) {
		cb, ok := e.ref.resolve()
		if !ok {
			dead = true
			o.emit(EventObserverPruned, trace.LevelInfo, map[string]any{"position": i})
			continue
		}

		callArgs := args
		if e.identify {
			callArgs = make([]any, 0, len(args)+1)
			callArgs = append(callArgs, marker)
			callArgs = append(callArgs, args...)
		}

		o.emit(EventObserverCall, trace.LevelVerbose, map[string]any{"position": i})
		if _, oerr := invoke(cb, callArgs); oerr != nil {
			o.emit(EventObserverError, trace.LevelError, map[string]any{
				"position": i,
				"error":    oerr.Error(),
			})
			if dead {
				o.prune()
			}
			return results, oerr
		}
	}

	if dead {
		o.prune()
	}
	return results, nil
}

// prune drops entries whose referent no longer resolves. Liveness is
// re-checked here rather than carried over from the sweep, so entries added
// or removed by observers mid-dispatch are handled correctly.
func (o *Observable) prune() {
	o.entries = slices.DeleteFunc(o.entries, func(e entry) bool {
		_, ok := e.ref.resolve()
		return !ok
	})
}

func (o *Observable) emit(typ trace.EventType, level trace.Level, data map[string]any) {
	if o.tracer == nil {
		return
	}
	o.tracer.OnEvent(context.Background(), trace.Event{
		Type:   typ,
		Level:  level,
		Time:   time.Now(),
		Source: o.id,
		Data:   data,
	})
}

func funcName(v reflect.Value) string {
	if f := runtime.FuncForPC(v.Pointer()); f != nil {
		return f.Name()
	}
	return "func"
}
