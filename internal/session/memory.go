package session

import (
	"context"
	"sync"
	"time"

	"ScamSOS/internal/entity"
)

type memoryEntry struct {
	session   entity.Session
	expiresAt time.Time
}

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	ttl      time.Duration

	locksMu sync.Mutex
	locks   map[string]*memoryLock
}

// memoryLock is dropped from the map once no caller holds or waits on it.
type memoryLock struct {
	ch   chan struct{}
	refs int
}

// NewMemoryStore keeps sessions in process memory. Sessions are copied on the
// way in and out so callers never share a value.
func NewMemoryStore(ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &memoryStore{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		locks:    make(map[string]*memoryLock),
	}
}

func (m *memoryStore) Get(_ context.Context, id string) (*entity.Session, error) {
	m.mu.RLock()
	entry, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, ErrNotFound
	}

	s := entry.session
	return &s, nil
}

func (m *memoryStore) Save(_ context.Context, s *entity.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[s.ID] = memoryEntry{session: *s, expiresAt: time.Now().Add(m.ttl)}

	for id, entry := range m.sessions {
		if time.Now().After(entry.expiresAt) {
			delete(m.sessions, id)
		}
	}

	return nil
}

func (m *memoryStore) Lock(ctx context.Context, id string) (func(), error) {
	m.locksMu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &memoryLock{ch: make(chan struct{}, 1)}
		m.locks[id] = l
	}
	l.refs++
	m.locksMu.Unlock()

	select {
	case l.ch <- struct{}{}:
	case <-ctx.Done():
		m.unref(id, l)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.ch
			m.unref(id, l)
		})
	}, nil
}

func (m *memoryStore) unref(id string, l *memoryLock) {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()

	l.refs--
	if l.refs == 0 {
		delete(m.locks, id)
	}
}
