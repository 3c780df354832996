package container

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Sigil is the optional prefix of a dependency key. "$logger" and "logger"
// name the same registration.
const Sigil = "$"

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Dependency is one constructor parameter: the registration key injected
// into it and the parameter type.
type Dependency struct {
	Key  string
	Type reflect.Type
}

// NormalizeKey strips the optional sigil from a dependency key.
func NormalizeKey(key string) string {
	return strings.TrimPrefix(strings.TrimSpace(key), Sigil)
}

// constructor is an inspected constructor source.
type constructor struct {
	fn           reflect.Value
	deps         []Dependency
	returnsError bool
}

// Inspect returns the ordered dependencies of fn given its dependency keys.
//
// Go cannot read parameter names at runtime, so the keys are supplied next to
// the function and mapped onto its parameters by position:
//
//	func NewProjectService(log *zap.Logger, fs FileSystem) *ProjectService
//
//	deps, err := container.Inspect(NewProjectService, "$logger", "fs")
//	// [{Key: "logger", Type: *zap.Logger} {Key: "fs", Type: FileSystem}]
//
// fn must be a non-variadic function returning either T or (T, error).
func Inspect(fn any, keys ...string) ([]Dependency, error) {
	k, err := inspect("", fn, keys)
	if err != nil {
		return nil, err
	}
	return k.deps, nil
}

func inspect(name string, fn any, keys []string) (*constructor, error) {
	if fn == nil {
		return nil, &InvalidSourceError{Name: name, Reason: "nil constructor"}
	}
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return nil, &InvalidSourceError{Name: name, Reason: t.String() + " is not a function"}
	}
	if v.IsNil() {
		return nil, &InvalidSourceError{Name: name, Reason: "nil constructor"}
	}
	if t.IsVariadic() {
		return nil, &InvalidSourceError{Name: name, Reason: "variadic constructors are not supported"}
	}

	switch {
	case t.NumOut() == 1:
	case t.NumOut() == 2 && t.Out(1) == errorType:
	default:
		return nil, &InvalidSourceError{Name: name, Reason: "constructor must return T or (T, error)"}
	}

	if t.NumIn() != len(keys) {
		return nil, &InvalidSourceError{
			Name:   name,
			Reason: fmt.Sprintf("constructor takes %d parameters but %d dependency keys were given", t.NumIn(), len(keys)),
		}
	}

	deps := make([]Dependency, len(keys))
	for i, key := range keys {
		key = NormalizeKey(key)
		if key == "" {
			return nil, &InvalidSourceError{Name: name, Reason: fmt.Sprintf("empty dependency key at position %d", i)}
		}
		deps[i] = Dependency{Key: key, Type: t.In(i)}
	}

	return &constructor{fn: v, deps: deps, returnsError: t.NumOut() == 2}, nil
}

// call invokes the constructor with args mapped positionally onto its parameters.
func (k *constructor) call(name string, args []any) (any, error) {
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		v, err := assign(arg, k.deps[i].Type)
		if err != nil {
			return nil, &DependencyTypeError{
				Name: name,
				Key:  k.deps[i].Key,
				Want: k.deps[i].Type.String(),
				Got:  err.Error(),
			}
		}
		in[i] = v
	}

	out := k.fn.Call(in)
	if k.returnsError && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return out[0].Interface(), nil
}

// assign converts v for a parameter of type t. The returned error carries the
// dynamic type of v.
func assign(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, errors.New("nil")
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("%s", rv.Type())
	}
	return rv, nil
}

func isFunc(v any) bool {
	return reflect.TypeOf(v).Kind() == reflect.Func
}
