package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory and is safe for concurrent use.
// Sessions idle for longer than the TTL are dropped lazily.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

type memoryEntry struct {
	state     State
	expiresAt time.Time
}

// NewMemoryStore constructs a MemoryStore. A non-positive ttl disables expiry.
func NewMemoryStore(ttl time.Duration, now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      now,
	}
}

// Create stores a new session.
func (s *MemoryStore) Create(ctx context.Context, st State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeLocked()
	s.sessions[st.ID] = memoryEntry{state: st.clone(), expiresAt: s.expiry()}
	return nil
}

// Get returns a copy of the session.
func (s *MemoryStore) Get(ctx context.Context, id string) (State, error) {
	if err := ctx.Err(); err != nil {
		return State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.lookupLocked(id)
	if !ok {
		return State{}, ErrNotFound
	}
	return entry.state.clone(), nil
}

// Update applies fn under the store lock.
func (s *MemoryStore) Update(ctx context.Context, id string, fn func(*State) error) (State, error) {
	if err := ctx.Err(); err != nil {
		return State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.lookupLocked(id)
	if !ok {
		return State{}, ErrNotFound
	}
	st := entry.state.clone()
	if err := fn(&st); err != nil {
		return State{}, err
	}
	st.UpdatedAt = s.now().UTC()
	s.sessions[id] = memoryEntry{state: st, expiresAt: s.expiry()}
	return st.clone(), nil
}

func (s *MemoryStore) lookupLocked(id string) (memoryEntry, bool) {
	entry, ok := s.sessions[id]
	if !ok {
		return memoryEntry{}, false
	}
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		delete(s.sessions, id)
		return memoryEntry{}, false
	}
	return entry, true
}

func (s *MemoryStore) purgeLocked() {
	if s.ttl <= 0 {
		return
	}
	now := s.now()
	for id, entry := range s.sessions {
		if !now.Before(entry.expiresAt) {
			delete(s.sessions, id)
		}
	}
}

func (s *MemoryStore) expiry() time.Time {
	if s.ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(s.ttl)
}

var _ Store = (*MemoryStore)(nil)
