package decorators

import (
	"github.com/km-arc/clikernel/framework/container"
	"github.com/km-arc/clikernel/framework/promise"
)

// Exported builds a public-API function calling method on the module exposed
// as moduleName in the container's public API. The module is looked up on
// every call, never before the first, so a replaced public module takes
// effect immediately. Singleton modules are cached by the container.
//
// When async is false errors and panics reach the caller unchanged. When
// async is true every outcome becomes a promise: see Async.
//
//	getDevices := decorators.Exported(c, "devicesService", "GetDevices", true)
//	p, _ := getDevices("android")
func Exported(c *container.Container, moduleName, method string, async bool) Func {
	call := func(args ...any) (any, error) {
		m, err := c.PublicAPI().Get(moduleName)
		if err != nil {
			return nil, err
		}
		return callMethod(m, method, args)
	}
	if async {
		return Async(call)
	}
	return call
}

// ExportedMethod is Exported for a module of known type M; sel picks the
// method to forward to.
//
//	start := decorators.ExportedMethod(c, "emulator", func(e *Emulator) decorators.Func { return e.Start }, true)
func ExportedMethod[M any](c *container.Container, moduleName string, sel func(M) Func, async bool) Func {
	module := func() (M, error) {
		var zero M
		v, err := c.PublicAPI().Get(moduleName)
		if err != nil {
			return zero, err
		}
		m, ok := v.(M)
		if !ok {
			return zero, &TypeError{Name: moduleName, Want: zero, Got: v}
		}
		return m, nil
	}
	call := func(args ...any) (any, error) {
		m, err := module()
		if err != nil {
			return nil, err
		}
		return sel(m)(args...)
	}
	if async {
		return Async(call)
	}
	return call
}

// Async normalizes fn to always return a promise. Errors and panics become
// rejections with the same error, plain values become fulfilled promises and
// promises (or slices of promises) are returned unchanged.
func Async(fn Func) Func {
	return func(args ...any) (result any, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				cause, ok := rec.(error)
				if !ok {
					cause = &promise.PanicError{Value: rec}
				}
				result, err = promise.Reject(cause), nil
			}
		}()

		v, err := fn(args...)
		if err != nil {
			return promise.Reject(err), nil
		}
		switch v := v.(type) {
		case *promise.Promise:
			return v, nil
		case []*promise.Promise:
			return v, nil
		default:
			return promise.Resolve(v), nil
		}
	}
}
