// Package keyedlock serializes work per string key. Services use it to
// keep one writer per aggregate without a global lock.
package keyedlock

import "sync"

// Mutex hands out one lock per key.
type Mutex struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// New creates an empty keyed mutex.
func New() *Mutex {
	return &Mutex{locks: make(map[string]*entry)}
}

// Lock acquires the lock for key, blocking while another caller holds it.
func (m *Mutex) Lock(key string) {
	m.mu.Lock()
	e, ok := m.locks[key]
	if !ok {
		e = &entry{}
		m.locks[key] = e
	}
	e.refs++
	m.mu.Unlock()

	e.mu.Lock()
}

// Unlock releases the lock for key. Entries are dropped once no caller
// holds or waits on them, so the map does not grow with key churn.
func (m *Mutex) Unlock(key string) {
	m.mu.Lock()
	e, ok := m.locks[key]
	if ok {
		e.refs--
		if e.refs == 0 {
			delete(m.locks, key)
		}
	}
	m.mu.Unlock()

	if ok {
		e.mu.Unlock()
	}
}
