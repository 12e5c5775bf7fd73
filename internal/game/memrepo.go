package game

import (
	"context"
	"sync"

	"github.com/halfmove/chessduel/internal/domain"
)

// memrepo is an in-memory repository used by tests and single-process setups.
type memrepo struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

func NewMemoryRepository() Repository {
	return &memrepo{sessions: make(map[string]*domain.Session)}
}

func (m *memrepo) Load(ctx context.Context, id string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stored, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return stored.Clone(), nil
}

func (m *memrepo) Save(ctx context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if stored, ok := m.sessions[session.ID]; ok {
		if stored.Version != session.Version {
			return ErrVersionConflict
		}
	} else if session.Version != 0 {
		return ErrVersionConflict
	}
	cp := session.Clone()
	cp.Version = session.Version + 1
	m.sessions[session.ID] = cp
	session.Version = cp.Version
	return nil
}
