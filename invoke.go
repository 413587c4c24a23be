package observed

import (
	"fmt"
	"reflect"
)

var errType = reflect.TypeFor[error]()

// invoke calls fn with args, converting through reflection. The callable's
// results are returned as a slice; a trailing error result is split off and
// returned separately so callers can distinguish "ran and failed" from the
// payload.
func invoke(fn reflect.Value, args []any) ([]any, error) {
	in, err := buildArgs(fn.Type(), args)
	if err != nil {
		return nil, err
	}
	return splitResults(fn.Call(in))
}

func buildArgs(t reflect.Type, args []any) ([]reflect.Value, error) {
	if t.IsVariadic() {
		if len(args) < t.NumIn()-1 {
			return nil, fmt.Errorf("%w: have %d args, want at least %d", ErrArgumentMismatch, len(args), t.NumIn()-1)
		}
	} else if len(args) != t.NumIn() {
		return nil, fmt.Errorf("%w: have %d args, want %d", ErrArgumentMismatch, len(args), t.NumIn())
	}

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		pt := paramType(t, i)
		if a == nil {
			switch pt.Kind() {
			case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
				in[i] = reflect.Zero(pt)
				continue
			default:
				return nil, fmt.Errorf("%w: arg %d is nil, want %s", ErrArgumentMismatch, i, pt)
			}
		}
		av := reflect.ValueOf(a)
		if !av.Type().AssignableTo(pt) {
			return nil, fmt.Errorf("%w: arg %d is %s, want %s", ErrArgumentMismatch, i, av.Type(), pt)
		}
		in[i] = av
	}
	return in, nil
}

func paramType(t reflect.Type, i int) reflect.Type {
	if t.IsVariadic() && i >= t.NumIn()-1 {
		return t.In(t.NumIn() - 1).Elem()
	}
	return t.In(i)
}

func splitResults(out []reflect.Value) ([]any, error) {
	if len(out) == 0 {
		return nil, nil
	}

	var err error
	if last := out[len(out)-1]; last.Type() == errType {
		if !last.IsNil() {
			err = last.Interface().(error)
		}
		out = out[:len(out)-1]
	}

	results := make([]any, len(out))
	for i, v := range out {
		results[i] = v.Interface()
	}
	return results, err
}
