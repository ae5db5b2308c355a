package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/davekg8/Virtual-try-on/internal/domain/entities"
	domainrepos "github.com/davekg8/Virtual-try-on/internal/domain/repositories"
)

// galleryKey is the single fixed key the whole saved-outfit list lives
// under.
const galleryKey = "fashion-fits"

type garmentRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type layerRecord struct {
	Garment    *garmentRecord    `json:"garment"`
	BasePose   string            `json:"basePose"`
	PoseImages map[string]string `json:"poseImages"`
}

type savedOutfitRecord struct {
	ID           string        `json:"id"`
	ThumbnailURL string        `json:"thumbnailUrl"`
	Layers       []layerRecord `json:"layers"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// KVGalleryRepository serializes the saved-outfit list as one JSON document
// in the key-value store.
type KVGalleryRepository struct {
	store domainrepos.KeyValueStore
}

func NewKVGalleryRepository(store domainrepos.KeyValueStore) domainrepos.GalleryRepository {
	return &KVGalleryRepository{store: store}
}

func (r *KVGalleryRepository) Load(ctx context.Context) ([]*entities.SavedOutfit, error) {
	value, found, err := r.store.Get(ctx, galleryKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read gallery: %w", err)
	}
	if !found {
		return nil, nil
	}

	var records []savedOutfitRecord
	if err := json.Unmarshal([]byte(value), &records); err != nil {
		return nil, fmt.Errorf("failed to parse gallery: %w", err)
	}

	outfits := make([]*entities.SavedOutfit, 0, len(records))
	for _, record := range records {
		outfit, err := restoreOutfit(record)
		if err != nil {
			return nil, fmt.Errorf("failed to restore outfit %q: %w", record.ID, err)
		}
		outfits = append(outfits, outfit)
	}

	return outfits, nil
}

func (r *KVGalleryRepository) Store(ctx context.Context, outfits []*entities.SavedOutfit) error {
	records := make([]savedOutfitRecord, 0, len(outfits))
	for _, outfit := range outfits {
		records = append(records, outfitRecord(outfit))
	}

	value, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode gallery: %w", err)
	}

	if err := r.store.Set(ctx, galleryKey, string(value)); err != nil {
		return fmt.Errorf("failed to write gallery: %w", err)
	}

	return nil
}

func outfitRecord(outfit *entities.SavedOutfit) savedOutfitRecord {
	layers := make([]layerRecord, 0, len(outfit.Layers()))
	for _, layer := range outfit.Layers() {
		record := layerRecord{
			BasePose:   layer.BasePose(),
			PoseImages: layer.PoseImages(),
		}

		if garment := layer.Garment(); garment != nil {
			record.Garment = &garmentRecord{
				ID:   garment.ID(),
				Name: garment.Name(),
				URL:  garment.URL(),
			}
		}

		layers = append(layers, record)
	}

	return savedOutfitRecord{
		ID:           outfit.ID(),
		ThumbnailURL: outfit.ThumbnailURL(),
		Layers:       layers,
		CreatedAt:    outfit.CreatedAt(),
	}
}

func restoreOutfit(record savedOutfitRecord) (*entities.SavedOutfit, error) {
	layers := make([]*entities.OutfitLayer, 0, len(record.Layers))
	for _, layer := range record.Layers {
		var garment *entities.WardrobeItem
		if layer.Garment != nil {
			var err error
			garment, err = entities.NewWardrobeItem(layer.Garment.ID, layer.Garment.Name, layer.Garment.URL)
			if err != nil {
				return nil, err
			}
		}

		restored, err := entities.RestoreLayer(garment, layer.BasePose, layer.PoseImages)
		if err != nil {
			return nil, err
		}

		layers = append(layers, restored)
	}

	return entities.RestoreSavedOutfit(record.ID, record.ThumbnailURL, layers, record.CreatedAt), nil
}
