package decorators

import "github.com/km-arc/clikernel/framework/promise"

// InvokeBefore runs hook with hookArgs before every call.
//
// A hook error is returned and the wrapped function is not called. When the
// hook returns a promise the result is a promise chained after it: a
// rejected hook rejects the result and the wrapped function never runs.
func InvokeBefore(hook Func, hookArgs ...any) Decorator {
	return func(next Func) Func {
		return func(args ...any) (any, error) {
			res, err := hook(hookArgs...)
			if err != nil {
				return nil, err
			}
			if p, ok := res.(*promise.Promise); ok && p != nil {
				return p.Then(func(any) (any, error) { return next(args...) }), nil
			}
			return next(args...)
		}
	}
}
