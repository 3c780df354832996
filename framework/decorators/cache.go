package decorators

import "sync"

// Cache returns fn memoized after its first successful call. Later calls
// return the stored result without invoking fn, whatever their arguments.
// A promise result is stored as is, so every caller shares it. Errors are
// not stored: the next call invokes fn again.
//
// The returned function is safe for concurrent use; fn must not call it.
func Cache(fn Func) Func {
	var (
		mu    sync.Mutex
		done  bool
		value any
	)
	return func(args ...any) (any, error) {
		mu.Lock()
		defer mu.Unlock()
		if done {
			return value, nil
		}
		v, err := fn(args...)
		if err != nil {
			return nil, err
		}
		value, done = v, true
		return v, nil
	}
}

// CacheValue is Cache for typed getters.
//
//	projectDir := decorators.CacheValue(func() (string, error) { return findProjectDir(cwd) })
func CacheValue[T any](get func() (T, error)) func() (T, error) {
	var (
		mu    sync.Mutex
		done  bool
		value T
	)
	return func() (T, error) {
		mu.Lock()
		defer mu.Unlock()
		if done {
			return value, nil
		}
		v, err := get()
		if err != nil {
			var zero T
			return zero, err
		}
		value, done = v, true
		return v, nil
	}
}
