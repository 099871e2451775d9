// Package clock provides an injectable time source so debounce timers
// can be driven deterministically in tests.
//
// Production code uses Real(); tests use Fake and call Advance to fire
// pending timers synchronously.
package clock

import "time"

// Clock abstracts the parts of the time package the client needs.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc waits for d and then calls f. The returned Timer can
	// cancel the pending call.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending AfterFunc call.
type Timer interface {
	// Stop prevents the call from happening. It returns false if the
	// call already happened or the timer was already stopped.
	Stop() bool
}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
