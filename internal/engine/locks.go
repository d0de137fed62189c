package engine

import "sync"

// identityLocks serializes message handling per candidate identity so two
// messages from the same sender never interleave a read-modify-write on the
// conversation state. Entries are reference counted and removed when the
// last holder releases, keeping the map bounded by concurrent identities
// rather than total identities seen.
type identityLocks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newIdentityLocks() *identityLocks {
	return &identityLocks{entries: make(map[string]*lockEntry)}
}

// acquire blocks until the identity's lock is held and returns the release
// function. Distinct identities proceed in parallel.
func (l *identityLocks) acquire(identity string) func() {
	l.mu.Lock()
	e, ok := l.entries[identity]
	if !ok {
		e = &lockEntry{}
		l.entries[identity] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.entries, identity)
		}
		l.mu.Unlock()
	}
}
