package engine

import "sync"

// userLocks serializes operations per user. Entries are kept for the
// process lifetime; the map grows with the number of distinct users seen,
// which is bounded and small per process.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// lock acquires the user's mutex and returns its unlock function.
func (l *userLocks) lock(userID string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
