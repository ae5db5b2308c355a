package usecases

import (
	"context"
	"time"

	"github.com/davekg8/Virtual-try-on/internal/domain/entities"
	"github.com/davekg8/Virtual-try-on/internal/domain/services"
)

type GalleryUseCase struct {
	gallery *services.GalleryService
	editor  *EditorUseCase
}

func NewGalleryUseCase(gallery *services.GalleryService, editor *EditorUseCase) *GalleryUseCase {
	return &GalleryUseCase{
		gallery: gallery,
		editor:  editor,
	}
}

type SavedOutfitState struct {
	ID           string       `json:"id"`
	ThumbnailURL string       `json:"thumbnailUrl"`
	Layers       []LayerState `json:"layers"`
	CreatedAt    time.Time    `json:"createdAt"`
}

func (uc *GalleryUseCase) List(ctx context.Context) []SavedOutfitState {
	outfits := uc.gallery.Outfits()

	states := make([]SavedOutfitState, 0, len(outfits))
	for _, outfit := range outfits {
		states = append(states, savedOutfitState(outfit))
	}
	return states
}

type SaveOutfitInput struct {
	SessionID    entities.SessionID
	ThumbnailURL string
}

// Save snapshots the session's active outfit into the gallery. The
// thumbnail defaults to the session's currently displayed image.
func (uc *GalleryUseCase) Save(ctx context.Context, input SaveOutfitInput) (*SavedOutfitState, error) {
	layers, currentImageURL, err := uc.editor.ActiveLayers(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	thumbnail := input.ThumbnailURL
	if thumbnail == "" {
		thumbnail = currentImageURL
	}

	outfit, err := uc.gallery.Save(ctx, layers, thumbnail)
	if outfit == nil {
		return nil, err
	}

	state := savedOutfitState(outfit)
	return &state, err
}

func (uc *GalleryUseCase) Delete(ctx context.Context, id string) error {
	return uc.gallery.Delete(ctx, id)
}

func savedOutfitState(outfit *entities.SavedOutfit) SavedOutfitState {
	layers := make([]LayerState, 0, len(outfit.Layers()))
	for _, layer := range outfit.Layers() {
		layers = append(layers, layerState(layer))
	}

	return SavedOutfitState{
		ID:           outfit.ID(),
		ThumbnailURL: outfit.ThumbnailURL(),
		Layers:       layers,
		CreatedAt:    outfit.CreatedAt(),
	}
}
