package repositories

import (
	"context"
	"fmt"
	"sync"

	"github.com/davekg8/Virtual-try-on/internal/domain/entities"
	domainrepos "github.com/davekg8/Virtual-try-on/internal/domain/repositories"
)

type MemorySessionRepository struct {
	sessions map[entities.SessionID]*entities.EditorSession
	mu       sync.RWMutex
}

func NewMemorySessionRepository() domainrepos.SessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[entities.SessionID]*entities.EditorSession),
	}
}

func (r *MemorySessionRepository) Save(ctx context.Context, session *entities.EditorSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.ID()] = session
	return nil
}

func (r *MemorySessionRepository) FindByID(ctx context.Context, id entities.SessionID) (*entities.EditorSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.sessions[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", domainrepos.ErrSessionNotFound, id)
	}

	return session, nil
}

func (r *MemorySessionRepository) Delete(ctx context.Context, id entities.SessionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	return nil
}
