package repositories

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	domainrepos "github.com/davekg8/Virtual-try-on/internal/domain/repositories"
	"github.com/davekg8/Virtual-try-on/internal/domain/valueobjects"
)

type MemoryImageRepository struct {
	images map[string]*valueobjects.ImageData
	mu     sync.RWMutex
}

func NewMemoryImageRepository() domainrepos.ImageRepository {
	return &MemoryImageRepository{
		images: make(map[string]*valueobjects.ImageData),
	}
}

func (r *MemoryImageRepository) Save(ctx context.Context, image *valueobjects.ImageData) (string, error) {
	if image == nil {
		return "", fmt.Errorf("image is required")
	}

	ref := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.images[ref] = image
	return ref, nil
}

func (r *MemoryImageRepository) FindByRef(ctx context.Context, ref string) (*valueobjects.ImageData, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	image, exists := r.images[ref]
	if !exists {
		return nil, fmt.Errorf("%w: %s", domainrepos.ErrImageNotFound, ref)
	}

	return image, nil
}
