package decorators

import (
	"fmt"
	"reflect"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// TypeError reports a value that does not have the expected type.
type TypeError struct {
	Name string
	Want any
	Got  any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("decorators: %s is %T, want %T", e.Name, e.Got, e.Want)
}

// Adapt converts an arbitrary function to a Func. Arguments are assigned to
// the parameters by position; a trailing error result becomes the returned
// error.
func Adapt(fn any) (Func, error) {
	v := reflect.ValueOf(fn)
	if fn == nil || v.Kind() != reflect.Func || v.IsNil() {
		return nil, fmt.Errorf("decorators: cannot adapt %T", fn)
	}
	if v.Type().NumOut() > 2 {
		return nil, fmt.Errorf("decorators: %T returns more than two values", fn)
	}
	return func(args ...any) (any, error) { return invoke(v, args) }, nil
}

// callMethod calls the exported method name of receiver with args.
func callMethod(receiver any, name string, args []any) (any, error) {
	m := reflect.ValueOf(receiver).MethodByName(name)
	if !m.IsValid() {
		return nil, fmt.Errorf("decorators: %T has no method %s", receiver, name)
	}
	return invoke(m, args)
}

func invoke(fn reflect.Value, args []any) (any, error) {
	t := fn.Type()
	fixed := t.NumIn()
	if t.IsVariadic() {
		fixed--
		if len(args) < fixed {
			return nil, fmt.Errorf("decorators: %s takes at least %d arguments, got %d", t, fixed, len(args))
		}
	} else if len(args) != fixed {
		return nil, fmt.Errorf("decorators: %s takes %d arguments, got %d", t, fixed, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		pt := t.In(min(i, t.NumIn()-1))
		if i >= fixed {
			pt = pt.Elem()
		}
		v, err := argument(arg, pt)
		if err != nil {
			return nil, fmt.Errorf("decorators: argument %d of %s: %w", i, t, err)
		}
		in[i] = v
	}
	return results(fn.Call(in))
}

func argument(arg any, t reflect.Type) (reflect.Value, error) {
	if arg == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("nil is not assignable to %s", t)
	}
	v := reflect.ValueOf(arg)
	if !v.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("%s is not assignable to %s", v.Type(), t)
	}
	return v, nil
}

func results(out []reflect.Value) (any, error) {
	var err error
	if n := len(out); n > 0 && out[n-1].Type() == errorType {
		if !out[n-1].IsNil() {
			err = out[n-1].Interface().(error)
		}
		out = out[:n-1]
	}
	if len(out) == 0 {
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	return out[0].Interface(), nil
}
