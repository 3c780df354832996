package decorators

import (
	"reflect"
	"strings"

	"go.uber.org/zap"
)

func warn(log *zap.Logger, name, message string) {
	if log == nil {
		return
	}
	log.Warn(strings.TrimSpace(name + " is deprecated. " + message))
}

// Deprecated logs one warning per call and then calls through unchanged.
//
//	decorators.Deprecated("device|list", "Use device instead.", log)
//	// WARN device|list is deprecated. Use device instead.
func Deprecated(name, message string, log *zap.Logger) Decorator {
	return func(next Func) Func {
		return func(args ...any) (any, error) {
			warn(log, name, message)
			return next(args...)
		}
	}
}

// DeprecatedGetter warns on every read through get.
func DeprecatedGetter[T any](name, message string, log *zap.Logger, get func() T) func() T {
	return func() T {
		warn(log, name, message)
		return get()
	}
}

// DeprecatedSetter warns on every write through set.
func DeprecatedSetter[T any](name, message string, log *zap.Logger, set func(T)) func(T) {
	return func(v T) {
		warn(log, name, message)
		set(v)
	}
}

// DeprecatedConstructor returns ctor with the same signature, warning each
// time it constructs. The result can be registered in the container in
// place of ctor.
//
//	c.Register("legacyService", decorators.DeprecatedConstructor("legacyService", "", log, NewLegacyService),
//	    container.Deps("logger"))
func DeprecatedConstructor[F any](name, message string, log *zap.Logger, ctor F) F {
	v := reflect.ValueOf(ctor)
	if v.Kind() != reflect.Func {
		panic("decorators: DeprecatedConstructor needs a function, got " + v.Type().String())
	}
	wrapped := reflect.MakeFunc(v.Type(), func(in []reflect.Value) []reflect.Value {
		warn(log, name, message)
		if v.Type().IsVariadic() {
			return v.CallSlice(in)
		}
		return v.Call(in)
	})
	return wrapped.Interface().(F)
}
