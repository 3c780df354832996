package decorators

import (
	"time"

	"github.com/km-arc/clikernel/framework/performance"
	"github.com/km-arc/clikernel/framework/promise"
)

// PerformanceLog records every call with tracker. A promise result is
// recorded when it settles, without waiting for it. Results, errors and
// promise outcomes are returned untouched.
func PerformanceLog(label string, tracker performance.Tracker) Decorator {
	if tracker == nil {
		tracker = performance.Nop
	}
	return func(next Func) Func {
		return func(args ...any) (res any, err error) {
			start := time.Now()
			async := false
			defer func() {
				if !async {
					tracker.TrackExecution(label, start, time.Now(), args)
				}
			}()

			res, err = next(args...)
			if p, ok := res.(*promise.Promise); ok && p != nil {
				async = true
				go func() {
					<-p.Done()
					tracker.TrackExecution(label, start, time.Now(), args)
				}()
			}
			return res, err
		}
	}
}
