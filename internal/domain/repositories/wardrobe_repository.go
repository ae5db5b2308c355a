package repositories

import (
	"context"
	"errors"

	"github.com/davekg8/Virtual-try-on/internal/domain/entities"
)

var ErrGarmentNotFound = errors.New("garment not found")

type WardrobeRepository interface {
	List(ctx context.Context) ([]*entities.WardrobeItem, error)
	FindByID(ctx context.Context, id string) (*entities.WardrobeItem, error)
	Add(ctx context.Context, item *entities.WardrobeItem) error
}
