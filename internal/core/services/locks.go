package services

import "sync"

// DocumentLocks serialises work per document id. Services that mutate a
// document's workspace share one instance.
type DocumentLocks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// NewDocumentLocks creates an empty lock set.
func NewDocumentLocks() *DocumentLocks {
	return &DocumentLocks{locks: make(map[string]*lockEntry)}
}

// Lock acquires the lock for id and returns its unlock function.
// Entries are dropped once no caller holds or waits for them.
func (l *DocumentLocks) Lock(id string) func() {
	l.mu.Lock()
	e, ok := l.locks[id]
	if !ok {
		e = &lockEntry{}
		l.locks[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

func (l *DocumentLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
