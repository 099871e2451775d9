package tasks

import "sync"

// idLocks hands out one mutex per task id and forgets it once nobody holds
// or waits on it.
type idLocks struct {
	mu    sync.Mutex
	locks map[int64]*idLock
}

type idLock struct {
	mu   sync.Mutex
	refs int
}

func newIDLocks() *idLocks {
	return &idLocks{locks: make(map[int64]*idLock)}
}

// lock blocks until id is free and returns the matching unlock func.
func (l *idLocks) lock(id int64) func() {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &idLock{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

func (l *idLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
