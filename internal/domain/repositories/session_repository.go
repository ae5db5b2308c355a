package repositories

import (
	"context"
	"errors"

	"github.com/davekg8/Virtual-try-on/internal/domain/entities"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionRepository interface {
	Save(ctx context.Context, session *entities.EditorSession) error
	FindByID(ctx context.Context, id entities.SessionID) (*entities.EditorSession, error)
	Delete(ctx context.Context, id entities.SessionID) error
}
