package observed

import (
	"reflect"
	"runtime"
	"sync"
	"weak"
)

// methodTarget is the wrapped side of a per-instance method registry. The
// owner is held weakly so the accessor's side-table never extends an
// instance's lifetime; the callable is re-derived by name on every dispatch.
type methodTarget[T any] struct {
	owner weak.Pointer[T]
	name  string
}

func (t methodTarget[T]) resolve() (reflect.Value, any, bool) {
	inst := t.owner.Value()
	if inst == nil {
		return reflect.Value{}, nil, false
	}
	fn, ok := boundCallable(reflect.ValueOf(inst), t.name)
	if !ok {
		return reflect.Value{}, nil, false
	}
	return fn, inst, true
}

func (t methodTarget[T]) describe() string {
	return reflect.TypeFor[T]().Name() + "." + t.name
}

// MethodAccessor maps instances of T to each instance's private registry for
// one method, without writing anything onto the instances themselves.
// Declare one per observable method, next to the type:
//
//	type Node struct{ ... }
//
//	func (n *Node) Ping(msg string) { ... }
//
//	var pingObservable = observed.NewMethodAccessor[Node]("Ping")
//
// The side-table is keyed by weak pointer, so an entry (and its registry,
// and transitively that registry's observer list) becomes collectible as
// soon as the instance is unreachable elsewhere. Instances are never kept
// alive by having been observed or by observing. Keying is pure pointer
// identity; T needs no comparability or hashing of its own.
//
// The table itself is locked, because entry reclamation runs on a runtime
// cleanup goroutine. The registries it hands out follow the usual
// single-writer contract.
type MethodAccessor[T any] struct {
	name string
	opts []Option

	mu   sync.Mutex
	regs map[weak.Pointer[T]]*Observable
}

// NewMethodAccessor creates an accessor for the named method of *T. The
// name must be exported, for the same reflection reasons as Method.
// Options are applied to every registry the accessor creates.
func NewMethodAccessor[T any](name string, opts ...Option) *MethodAccessor[T] {
	return &MethodAccessor[T]{
		name: name,
		opts: opts,
		regs: make(map[weak.Pointer[T]]*Observable),
	}
}

// MethodName returns the method name this accessor dispatches to.
func (a *MethodAccessor[T]) MethodName() string { return a.name }

// For returns inst's private registry for the method, creating it on first
// access. Repeated access yields the same registry, so observers added
// earlier stay registered. Distinct instances get fully independent
// registries.
func (a *MethodAccessor[T]) For(inst *T) *Observable {
	w := weak.Make(inst)

	a.mu.Lock()
	defer a.mu.Unlock()

	if reg, ok := a.regs[w]; ok {
		return reg
	}

	reg := newObservable(methodTarget[T]{owner: w, name: a.name}, a.opts)
	a.regs[w] = reg
	runtime.AddCleanup(inst, func(key weak.Pointer[T]) {
		a.mu.Lock()
		delete(a.regs, key)
		a.mu.Unlock()
	}, w)
	return reg
}

// tracked reports the current side-table size.
func (a *MethodAccessor[T]) tracked() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.regs)
}
