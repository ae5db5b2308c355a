package repositories

import (
	"context"
	"fmt"
	"sync"

	"github.com/davekg8/Virtual-try-on/internal/domain/entities"
	domainrepos "github.com/davekg8/Virtual-try-on/internal/domain/repositories"
)

// defaultGarments is the built-in wardrobe offered before any upload.
var defaultGarments = []struct {
	id   string
	name string
	url  string
}{
	{"gemini-sweat", "Gemini Sweat", "https://storage.googleapis.com/gemini-95-icons/gembooth/Gemini-sweat-2.png"},
	{"gemini-tee", "Gemini Tee", "https://storage.googleapis.com/gemini-95-icons/gembooth/gemini-tee.png"},
}

type MemoryWardrobeRepository struct {
	items map[string]*entities.WardrobeItem
	order []string
	mu    sync.RWMutex
}

// NewMemoryWardrobeRepository builds a wardrobe pre-seeded with the default
// garments.
func NewMemoryWardrobeRepository() (domainrepos.WardrobeRepository, error) {
	repo := &MemoryWardrobeRepository{
		items: make(map[string]*entities.WardrobeItem),
	}

	for _, garment := range defaultGarments {
		item, err := entities.NewWardrobeItem(garment.id, garment.name, garment.url)
		if err != nil {
			return nil, fmt.Errorf("invalid default garment %q: %w", garment.id, err)
		}

		repo.items[item.ID()] = item
		repo.order = append(repo.order, item.ID())
	}

	return repo, nil
}

func (r *MemoryWardrobeRepository) List(ctx context.Context) ([]*entities.WardrobeItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]*entities.WardrobeItem, 0, len(r.order))
	for _, id := range r.order {
		items = append(items, r.items[id])
	}
	return items, nil
}

func (r *MemoryWardrobeRepository) FindByID(ctx context.Context, id string) (*entities.WardrobeItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.items[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", domainrepos.ErrGarmentNotFound, id)
	}

	return item, nil
}

func (r *MemoryWardrobeRepository) Add(ctx context.Context, item *entities.WardrobeItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID()]; !exists {
		r.order = append(r.order, item.ID())
	}
	r.items[item.ID()] = item
	return nil
}
