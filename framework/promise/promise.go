// Package promise provides a minimal settle-once future used at the async
// edge of decorated calls.
//
// A Promise is either pending, fulfilled with a value or rejected with an
// error. Continuations (Then, Catch, Finally) never block the caller: each
// one runs on its own goroutine once the parent settles and returns a new
// Promise for the chained result.
//
//	p := promise.New(func() (any, error) { return fetch() })
//	q := p.Then(func(v any) (any, error) { return len(v.([]byte)), nil })
//	n, err := q.Await(ctx)
package promise

import (
	"context"
	"fmt"
)

// PanicError is the rejection reason of a promise whose callback panicked.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("promise: panic: %v", e.Value)
}

// Promise is the eventual result of an asynchronous operation.
type Promise struct {
	done chan struct{}
	val  any
	err  error
}

func pending() *Promise {
	return &Promise{done: make(chan struct{})}
}

// New runs fn on a new goroutine and returns a Promise for its result.
// A panic inside fn rejects the promise with a *PanicError.
func New(fn func() (any, error)) *Promise {
	p := pending()
	go func() {
		p.resolve(call(fn))
	}()
	return p
}

// Resolve returns an already fulfilled Promise. If v is itself a *Promise the
// returned promise adopts its outcome.
func Resolve(v any) *Promise {
	p := pending()
	p.resolve(v, nil)
	return p
}

// Reject returns an already rejected Promise.
func Reject(err error) *Promise {
	p := pending()
	p.settle(nil, err)
	return p
}

// resolve settles p, following v when it is another promise.
func (p *Promise) resolve(v any, err error) {
	if inner, ok := v.(*Promise); ok && err == nil && inner != nil {
		go func() {
			<-inner.done
			p.settle(inner.val, inner.err)
		}()
		return
	}
	p.settle(v, err)
}

func (p *Promise) settle(v any, err error) {
	p.val, p.err = v, err
	close(p.done)
}

// Done is closed once the promise settles.
func (p *Promise) Done() <-chan struct{} { return p.done }

// Settled reports whether the promise has been fulfilled or rejected.
func (p *Promise) Settled() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Await blocks until the promise settles or ctx is done.
func (p *Promise) Await(ctx context.Context) (any, error) {
	select {
	case <-p.done:
		return p.val, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Then chains fn after a successful settlement. A rejection skips fn and is
// propagated unchanged.
func (p *Promise) Then(fn func(v any) (any, error)) *Promise {
	next := pending()
	go func() {
		<-p.done
		if p.err != nil {
			next.settle(nil, p.err)
			return
		}
		next.resolve(call(func() (any, error) { return fn(p.val) }))
	}()
	return next
}

// Catch chains fn after a rejection. A fulfilled value skips fn and is
// propagated unchanged.
func (p *Promise) Catch(fn func(err error) (any, error)) *Promise {
	next := pending()
	go func() {
		<-p.done
		if p.err == nil {
			next.settle(p.val, nil)
			return
		}
		next.resolve(call(func() (any, error) { return fn(p.err) }))
	}()
	return next
}

// Finally runs fn after settlement and passes the original outcome through.
func (p *Promise) Finally(fn func()) *Promise {
	next := pending()
	go func() {
		<-p.done
		fn()
		next.settle(p.val, p.err)
	}()
	return next
}

// All fulfills with the values of ps in order, or rejects with the first
// rejection observed in order. Rejections do not cancel the others.
func All(ps ...*Promise) *Promise {
	return New(func() (any, error) {
		out := make([]any, len(ps))
		var firstErr error
		for i, p := range ps {
			<-p.done
			if p.err != nil && firstErr == nil {
				firstErr = p.err
			}
			out[i] = p.val
		}
		if firstErr != nil {
			return nil, firstErr
		}
		return out, nil
	})
}

func call(fn func() (any, error)) (v any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			v, err = nil, &PanicError{Value: rec}
		}
	}()
	return fn()
}
