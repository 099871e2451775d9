package clock

import (
	"sort"
	"sync"
	"time"
)

// FakeClock is a deterministic Clock. Time only moves when Advance is
// called, and due callbacks run synchronously inside Advance in deadline
// order. Do not call Advance from within a callback.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	waiters []*fakeWaiter
}

type fakeWaiter struct {
	deadline time.Time
	callback func()
	stopped  bool
	fired    bool
}

// Fake returns a FakeClock set to initial.
func Fake(initial time.Time) *FakeClock {
	return &FakeClock{current: initial}
}

// Now returns the fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// AfterFunc registers f to run once the clock has been advanced by d.
// If d <= 0, f runs before AfterFunc returns.
func (c *FakeClock) AfterFunc(d time.Duration, f func()) Timer {
	if d <= 0 {
		f()
		return &fakeTimer{clock: c, waiter: &fakeWaiter{fired: true}}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	w := &fakeWaiter{deadline: c.current.Add(d), callback: f}
	c.waiters = append(c.waiters, w)
	return &fakeTimer{clock: c, waiter: w}
}

// Advance moves the clock forward by d and runs every callback whose
// deadline has passed.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	now := c.current

	var due []*fakeWaiter
	pending := c.waiters[:0]
	for _, w := range c.waiters {
		switch {
		case w.stopped:
		case !w.deadline.After(now):
			w.fired = true
			due = append(due, w)
		default:
			pending = append(pending, w)
		}
	}
	c.waiters = pending
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].deadline.Before(due[j].deadline)
	})
	for _, w := range due {
		w.callback()
	}
}

// Pending returns the number of timers that have neither fired nor been stopped.
func (c *FakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, w := range c.waiters {
		if !w.stopped {
			n++
		}
	}
	return n
}

type fakeTimer struct {
	clock  *FakeClock
	waiter *fakeWaiter
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.waiter.stopped || t.waiter.fired {
		return false
	}
	t.waiter.stopped = true
	return true
}
