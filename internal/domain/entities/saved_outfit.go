package entities

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNothingToSave is returned when a save is attempted with no garment
// layers on top of the base model.
var ErrNothingToSave = errors.New("outfit has no garment layers to save")

// SavedOutfit is an immutable snapshot of a composed outfit. The layers are
// deep copies, not live references into session history.
type SavedOutfit struct {
	id           string
	thumbnailURL string
	layers       []*OutfitLayer
	createdAt    time.Time
}

func NewSavedOutfit(thumbnailURL string, layers []*OutfitLayer) (*SavedOutfit, error) {
	if len(layers) <= 1 {
		return nil, ErrNothingToSave
	}

	snapshot := make([]*OutfitLayer, len(layers))
	for i, layer := range layers {
		snapshot[i] = layer.Snapshot()
	}

	return &SavedOutfit{
		id:           uuid.NewString(),
		thumbnailURL: thumbnailURL,
		layers:       snapshot,
		createdAt:    time.Now(),
	}, nil
}

// RestoreSavedOutfit rebuilds a snapshot from persisted state.
func RestoreSavedOutfit(id, thumbnailURL string, layers []*OutfitLayer, createdAt time.Time) *SavedOutfit {
	return &SavedOutfit{
		id:           id,
		thumbnailURL: thumbnailURL,
		layers:       layers,
		createdAt:    createdAt,
	}
}

func (o *SavedOutfit) ID() string {
	return o.id
}

func (o *SavedOutfit) ThumbnailURL() string {
	return o.thumbnailURL
}

func (o *SavedOutfit) Layers() []*OutfitLayer {
	return o.layers
}

func (o *SavedOutfit) CreatedAt() time.Time {
	return o.createdAt
}
