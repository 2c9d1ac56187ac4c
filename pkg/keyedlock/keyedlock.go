// Package keyedlock provides one mutual-exclusion gate per key.
//
// Entries are reference counted and dropped once nobody holds or waits on
// them, so the map only grows with the number of keys in flight.
package keyedlock

import (
	"context"
	"sync"
)

type entry struct {
	ch   chan struct{} // 1-buffered; a token in the channel means "held"
	refs int
}

// Locker hands out per-key locks.
type Locker struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New creates an empty Locker.
func New() *Locker {
	return &Locker{entries: make(map[string]*entry)}
}

func (l *Locker) acquire(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *Locker) release(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

// LockContext blocks until the lock for key is held and returns its unlock
// function. On ctx expiry it returns ctx.Err() and the lock is not held.
func (l *Locker) LockContext(ctx context.Context, key string) (func(), error) {
	e := l.acquire(key)
	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.release(key, e)
		})
	}, nil
}

// Len returns the number of keys currently held or waited on.
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
