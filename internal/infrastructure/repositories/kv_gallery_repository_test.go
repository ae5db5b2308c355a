package repositories

import (
	"context"
	"testing"

	"github.com/davekg8/Virtual-try-on/internal/domain/entities"
)

type fakeKeyValueStore struct {
	values map[string]string
}

func newFakeKeyValueStore() *fakeKeyValueStore {
	return &fakeKeyValueStore{values: make(map[string]string)}
}

func (s *fakeKeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *fakeKeyValueStore) Set(ctx context.Context, key, value string) error {
	s.values[key] = value
	return nil
}

func (s *fakeKeyValueStore) Close() error {
	return nil
}

func savedTestOutfit(t *testing.T, garmentID string) *entities.SavedOutfit {
	t.Helper()

	base, err := entities.NewBaseLayer("Full frontal view, hands on hips", "model-ref")
	if err != nil {
		t.Fatalf("Failed to create base layer: %v", err)
	}

	garment, err := entities.NewWardrobeItem(garmentID, "Garment "+garmentID, "https://example.com/"+garmentID+".png")
	if err != nil {
		t.Fatalf("Failed to create garment: %v", err)
	}

	layer, err := entities.NewGarmentLayer(garment, "Full frontal view, hands on hips", "ref-"+garmentID)
	if err != nil {
		t.Fatalf("Failed to create layer: %v", err)
	}
	layer.SetPoseRender("Side profile view", "ref-"+garmentID+"-side")

	outfit, err := entities.NewSavedOutfit("thumb-"+garmentID, []*entities.OutfitLayer{base, layer})
	if err != nil {
		t.Fatalf("Failed to create saved outfit: %v", err)
	}
	return outfit
}

func TestKVGalleryRepository_RoundTrip(t *testing.T) {
	store := newFakeKeyValueStore()
	repo := NewKVGalleryRepository(store)
	ctx := context.Background()

	saved := savedTestOutfit(t, "g1")

	if err := repo.Store(ctx, []*entities.SavedOutfit{saved}); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	loaded, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("Expected 1 outfit, got %d", len(loaded))
	}

	got := loaded[0]
	if got.ID() != saved.ID() {
		t.Errorf("ID = %s, want %s", got.ID(), saved.ID())
	}
	if got.ThumbnailURL() != saved.ThumbnailURL() {
		t.Errorf("ThumbnailURL = %s, want %s", got.ThumbnailURL(), saved.ThumbnailURL())
	}
	if !got.CreatedAt().Equal(saved.CreatedAt()) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt(), saved.CreatedAt())
	}

	layers := got.Layers()
	if len(layers) != 2 {
		t.Fatalf("Expected 2 layers, got %d", len(layers))
	}
	if !layers[0].IsBase() {
		t.Errorf("First layer must stay the base layer")
	}
	if layers[1].Garment() == nil || layers[1].Garment().ID() != "g1" {
		t.Errorf("Garment layer lost its garment")
	}
	if ref, ok := layers[1].PoseRender("Side profile view"); !ok || ref != "ref-g1-side" {
		t.Errorf("Pose render lost in round trip, got %q", ref)
	}
}

func TestKVGalleryRepository_Load(t *testing.T) {
	t.Run("missing key yields an empty gallery", func(t *testing.T) {
		repo := NewKVGalleryRepository(newFakeKeyValueStore())

		outfits, err := repo.Load(context.Background())
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if len(outfits) != 0 {
			t.Errorf("Expected no outfits, got %d", len(outfits))
		}
	})

	t.Run("corrupt document is an error", func(t *testing.T) {
		store := newFakeKeyValueStore()
		store.values["fashion-fits"] = "not json"
		repo := NewKVGalleryRepository(store)

		if _, err := repo.Load(context.Background()); err == nil {
			t.Errorf("Expected parse error")
		}
	})
}

func TestKVGalleryRepository_StoreEmptyList(t *testing.T) {
	store := newFakeKeyValueStore()
	repo := NewKVGalleryRepository(store)
	ctx := context.Background()

	if err := repo.Store(ctx, []*entities.SavedOutfit{savedTestOutfit(t, "g1")}); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if err := repo.Store(ctx, nil); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	outfits, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(outfits) != 0 {
		t.Errorf("Expected a cleared gallery, got %d outfits", len(outfits))
	}
}
