// Package performance records how long decorated calls take.
//
// A Tracker receives one TrackExecution call per completed call. The package
// ships trackers writing to a zap logger or a file, to a Prometheus registry
// and to OpenTelemetry spans; Multi fans out to several of them.
package performance

import "time"

// Tracker records the execution of a labelled call.
type Tracker interface {
	TrackExecution(label string, start, end time.Time, args []any)
}

// TrackerFunc adapts a function to Tracker.
type TrackerFunc func(label string, start, end time.Time, args []any)

func (f TrackerFunc) TrackExecution(label string, start, end time.Time, args []any) {
	f(label, start, end, args)
}

// Nop discards every execution.
var Nop Tracker = TrackerFunc(func(string, time.Time, time.Time, []any) {})

type multi []Tracker

func (m multi) TrackExecution(label string, start, end time.Time, args []any) {
	for _, t := range m {
		t.TrackExecution(label, start, end, args)
	}
}

// Multi returns a Tracker forwarding to every non-nil tracker in order.
func Multi(trackers ...Tracker) Tracker {
	out := make(multi, 0, len(trackers))
	for _, t := range trackers {
		if t != nil {
			out = append(out, t)
		}
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}
