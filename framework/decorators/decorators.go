// Package decorators provides higher-order wrappers adding cross-cutting
// behaviour to functions without changing their calling convention.
//
// Every wrapper works on Func. A synchronous failure is a returned error (or a
// panic); an asynchronous result is a *promise.Promise returned as the value.
// Decorators compose with Chain:
//
//	run := decorators.Chain(build,
//	    decorators.PerformanceLog("build", tracker),
//	    decorators.InvokeBefore(ensureProject),
//	    decorators.Cache,
//	)
package decorators

// Func is the calling convention shared by every decorator.
type Func func(args ...any) (any, error)

// Decorator wraps a Func.
type Decorator func(Func) Func

// Chain applies ds to base. The first decorator is the outermost one.
func Chain(base Func, ds ...Decorator) Func {
	for i := len(ds) - 1; i >= 0; i-- {
		base = ds[i](base)
	}
	return base
}
