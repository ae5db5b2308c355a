package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/davekg8/Virtual-try-on/internal/domain/entities"
	"github.com/davekg8/Virtual-try-on/internal/domain/repositories"
)

// GalleryService keeps the in-memory saved-outfit list and mirrors it to the
// persistent store after every mutation. A failed write is reported but does
// not roll the list back; memory and store may diverge until the next
// successful write.
type GalleryService struct {
	repo    repositories.GalleryRepository
	mu      sync.Mutex
	outfits []*entities.SavedOutfit
}

// NewGalleryService loads the persisted list once. A read or parse failure
// is never fatal; the gallery just starts empty.
func NewGalleryService(ctx context.Context, repo repositories.GalleryRepository) *GalleryService {
	outfits, err := repo.Load(ctx)
	if err != nil {
		log.Printf("Failed to load saved outfits, starting with an empty gallery: %v", err)
		outfits = nil
	}

	return &GalleryService{
		repo:    repo,
		outfits: outfits,
	}
}

func (g *GalleryService) Outfits() []*entities.SavedOutfit {
	g.mu.Lock()
	defer g.mu.Unlock()

	outfits := make([]*entities.SavedOutfit, len(g.outfits))
	copy(outfits, g.outfits)
	return outfits
}

// Save snapshots the given layers and prepends the new outfit. A bare base
// model (one layer) is rejected. On persistence failure the new entry stays
// in memory and the error is returned alongside it.
func (g *GalleryService) Save(ctx context.Context, layers []*entities.OutfitLayer, thumbnailURL string) (*entities.SavedOutfit, error) {
	outfit, err := entities.NewSavedOutfit(thumbnailURL, layers)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	g.outfits = append([]*entities.SavedOutfit{outfit}, g.outfits...)
	snapshot := make([]*entities.SavedOutfit, len(g.outfits))
	copy(snapshot, g.outfits)
	g.mu.Unlock()

	if err := g.repo.Store(ctx, snapshot); err != nil {
		log.Printf("Failed to persist saved outfits: %v", err)
		return outfit, fmt.Errorf("failed to persist saved outfits: %w", err)
	}

	return outfit, nil
}

// Delete removes the outfit with the given id and re-persists the list. The
// in-memory removal is kept even when persistence fails.
func (g *GalleryService) Delete(ctx context.Context, id string) error {
	g.mu.Lock()
	kept := g.outfits[:0:0]
	for _, outfit := range g.outfits {
		if outfit.ID() != id {
			kept = append(kept, outfit)
		}
	}
	g.outfits = kept
	snapshot := make([]*entities.SavedOutfit, len(g.outfits))
	copy(snapshot, g.outfits)
	g.mu.Unlock()

	if err := g.repo.Store(ctx, snapshot); err != nil {
		log.Printf("Failed to persist saved outfits: %v", err)
		return fmt.Errorf("failed to persist saved outfits: %w", err)
	}

	return nil
}
