package service

import (
	"sync"

	"github.com/google/uuid"
)

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// tournamentLocks hands out one mutex per tournament and forgets it once nobody holds it.
type tournamentLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*lockEntry
}

func newTournamentLocks() *tournamentLocks {
	return &tournamentLocks{locks: make(map[uuid.UUID]*lockEntry)}
}

func (l *tournamentLocks) lock(id uuid.UUID) (unlock func()) {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &lockEntry{}
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
