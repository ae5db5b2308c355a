package repositories

import (
	"context"

	"github.com/davekg8/Virtual-try-on/internal/domain/entities"
)

// GalleryRepository persists the saved-outfit list as a whole. There is no
// concurrent writer, so read-then-write-whole-list is sufficient.
type GalleryRepository interface {
	Load(ctx context.Context) ([]*entities.SavedOutfit, error)
	Store(ctx context.Context, outfits []*entities.SavedOutfit) error
}
