package session

import (
	"context"
	"sync"
)

// MemoryStore is the default process-local store.
type MemoryStore struct {
	mu      sync.RWMutex
	current Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Get(_ context.Context) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.current
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s, nil
}

func (m *MemoryStore) Set(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !s.Active() {
		m.current = Session{}
		return nil
	}
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	m.current = s
	return nil
}

func (m *MemoryStore) SetUser(_ context.Context, u User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.current.Active() {
		return ErrNoSession
	}
	m.current.User = &u
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	m.current = Session{}
	m.mu.Unlock()
	return nil
}
