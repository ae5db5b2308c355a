package entities

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type SessionID string

// EditorSession hosts one editing session: the outfit history plus the busy
// gate that keeps at most one mutating generation in flight per session.
// The busy gate serializes mutating operations against each other; mu
// additionally guards the history structure so state reads from other
// request goroutines never race with an in-flight mutation.
type EditorSession struct {
	id        SessionID
	history   *OutfitHistory
	createdAt time.Time
	mu        sync.RWMutex
	busy      sync.Mutex
}

func NewEditorSession(modelImageRef string) (*EditorSession, error) {
	history, err := NewOutfitHistory(modelImageRef)
	if err != nil {
		return nil, fmt.Errorf("failed to create outfit history: %w", err)
	}

	return &EditorSession{
		id:        SessionID(uuid.NewString()),
		history:   history,
		createdAt: time.Now(),
	}, nil
}

func (s *EditorSession) ID() SessionID {
	return s.id
}

// History returns the live history without locking. Safe only when no
// mutating operation can run concurrently; concurrent callers go through
// View or Update instead.
func (s *EditorSession) History() *OutfitHistory {
	return s.history
}

// View runs fn with shared read access to the history. Mutations hold the
// write side, so readers never observe a half-applied edit.
func (s *EditorSession) View(fn func(*OutfitHistory)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.history)
}

// Update runs fn with exclusive access to the history. Callers must already
// hold the busy gate; Update only excludes readers for the duration of the
// mutation itself, not for the whole operation.
func (s *EditorSession) Update(fn func(*OutfitHistory) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.history)
}

func (s *EditorSession) CreatedAt() time.Time {
	return s.createdAt
}

// Reset restarts the session from a newly finalized model image, discarding
// all prior layers.
func (s *EditorSession) Reset(modelImageRef string) error {
	history, err := NewOutfitHistory(modelImageRef)
	if err != nil {
		return fmt.Errorf("failed to reset outfit history: %w", err)
	}

	s.mu.Lock()
	s.history = history
	s.mu.Unlock()
	return nil
}

// TryAcquire claims the busy gate. It never blocks; a false return means
// another operation is in flight and the caller must drop the action.
func (s *EditorSession) TryAcquire() bool {
	return s.busy.TryLock()
}

func (s *EditorSession) Release() {
	s.busy.Unlock()
}
