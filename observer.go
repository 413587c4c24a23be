package observed

import (
	"fmt"
	"reflect"
	"weak"
)

// Observer is a weak handle on a callable to be notified when an Observable
// runs. Build one with Func or Method; the zero value is not usable.
//
// An Observer never extends the lifetime of the callable it names. Once the
// anchoring variable or owning instance is collected, the Observer resolves
// to nothing and the registry drops it on the next dispatch.
type Observer struct {
	ref callableRef
	err error
}

// Func builds an Observer from a pointer to a func-typed variable. The
// variable is the observer's lifetime anchor: it is tracked weakly, and when
// it becomes unreachable the observer silently drops out of any registry it
// was added to. Keep the variable alive for as long as notifications are
// wanted.
//
// A nil pointer or a non-func F produces an Observer whose registration
// fails with ErrUnsupportedCallable.
func Func[F any](fn *F) Observer {
	if t := reflect.TypeFor[F](); t.Kind() != reflect.Func {
		return Observer{err: fmt.Errorf("%w: %s is not a func type", ErrUnsupportedCallable, t)}
	}
	if fn == nil {
		return Observer{err: fmt.Errorf("%w: nil func pointer", ErrUnsupportedCallable)}
	}
	return Observer{ref: funcRef[F]{ptr: weak.Make(fn)}}
}

// Method builds an Observer from an owning instance and a callable name on
// it. The instance is tracked weakly; the callable is re-derived by name on
// every dispatch, so installing a different func in an exported func-typed
// field of that name after registration changes what fires. This re-binding
// is intentional: the observer means "whatever name currently resolves to on
// that instance".
//
// The name must resolve to an exported method of *T (or T), or an exported
// func-typed struct field; unexported callables cannot be invoked through
// reflection.
func Method[T any](owner *T, name string) Observer {
	if owner == nil {
		return Observer{err: fmt.Errorf("%w: nil owner", ErrUnsupportedCallable)}
	}
	if name == "" {
		return Observer{err: fmt.Errorf("%w: empty method name", ErrUnsupportedCallable)}
	}
	return Observer{ref: methodRef[T]{owner: weak.Make(owner), name: name}}
}

// identityKey is a stable, comparable identity for an observer, independent
// of whether the underlying owner is itself comparable. weak.Pointer values
// made from the same pointer compare equal and stay equal after collection,
// so the key survives the referent.
type identityKey struct {
	anchor any
	name   string
}

// callableRef resolves a weakly held callable, or reports that its referent
// is gone. Resolution never yields a stale callable: it observes either
// "alive" or "gone", nothing in between.
type callableRef interface {
	resolve() (reflect.Value, bool)
	key() identityKey
}

type funcRef[F any] struct {
	ptr weak.Pointer[F]
}

func (r funcRef[F]) resolve() (reflect.Value, bool) {
	fn := r.ptr.Value()
	if fn == nil {
		return reflect.Value{}, false
	}
	v := reflect.ValueOf(*fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return reflect.Value{}, false
	}
	return v, true
}

func (r funcRef[F]) key() identityKey {
	return identityKey{anchor: r.ptr}
}

type methodRef[T any] struct {
	owner weak.Pointer[T]
	name  string
}

func (r methodRef[T]) resolve() (reflect.Value, bool) {
	inst := r.owner.Value()
	if inst == nil {
		return reflect.Value{}, false
	}
	return boundCallable(reflect.ValueOf(inst), r.name)
}

func (r methodRef[T]) key() identityKey {
	return identityKey{anchor: r.owner, name: r.name}
}

// boundCallable re-derives the callable named name on inst. An exported
// func-typed struct field is checked before the method set, so a per-instance
// override installed in a field wins over a method defined on the type.
func boundCallable(inst reflect.Value, name string) (reflect.Value, bool) {
	if elem := inst.Elem(); elem.Kind() == reflect.Struct {
		if f := elem.FieldByName(name); f.IsValid() && f.Kind() == reflect.Func && f.CanInterface() && !f.IsNil() {
			return f, true
		}
	}
	if m := inst.MethodByName(name); m.IsValid() {
		return m, true
	}
	return reflect.Value{}, false
}
