// Package state provides a publish-subscribe state container: one mutable
// value plus a registration list of listeners that are called
// synchronously on every transition.
package state

import "sync"

// Cell holds a single value of type T and notifies subscribers whenever it
// is replaced.
//
// Transitions are serialised: a Set or Update publishes to every listener
// before the next transition starts, so listeners observe values in the
// order they were written. Listeners must not write to the same Cell
// synchronously.
type Cell[T any] struct {
	publish sync.Mutex

	mu        sync.RWMutex
	value     T
	nextID    int
	listeners []listener[T]
}

type listener[T any] struct {
	id int
	fn func(T)
}

// NewCell returns a Cell holding initial.
func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{value: initial}
}

// Get returns the latest published value.
func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Set replaces the value and notifies every listener with it.
func (c *Cell[T]) Set(v T) {
	c.Update(func(T) T { return v })
}

// Update atomically derives the next value from the current one, stores it
// and notifies every listener. It returns the stored value.
func (c *Cell[T]) Update(fn func(T) T) T {
	v, _ := c.UpdateIf(func(cur T) (T, bool) { return fn(cur), true })
	return v
}

// UpdateIf is Update for transitions that may turn out to be no-ops: when
// fn reports false the value is left alone and nobody is notified.
func (c *Cell[T]) UpdateIf(fn func(T) (T, bool)) (T, bool) {
	c.publish.Lock()
	defer c.publish.Unlock()

	c.mu.Lock()
	next, changed := fn(c.value)
	if !changed {
		cur := c.value
		c.mu.Unlock()
		return cur, false
	}
	c.value = next
	fns := make([]func(T), len(c.listeners))
	for i, l := range c.listeners {
		fns[i] = l.fn
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
	return next, true
}

// Subscribe registers fn for every future transition. The returned func
// removes the registration; calling it more than once is harmless.
func (c *Cell[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners = append(c.listeners, listener[T]{id: id, fn: fn})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, l := range c.listeners {
			if l.id == id {
				c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

// Subscribers returns the number of registered listeners.
func (c *Cell[T]) Subscribers() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.listeners)
}
