package repositories

import (
	"context"

	"github.com/davekg8/Virtual-try-on/internal/domain/valueobjects"
)

// GarmentApplier renders a person wearing a garment. Split out so the
// garment-apply operation can be served by a different backend (the
// dedicated Virtual Try-On model) than the rest of the editing operations.
type GarmentApplier interface {
	ApplyGarment(ctx context.Context, person, garment *valueobjects.ImageData, garmentName string) (*valueobjects.ImageData, error)

	Close() error
}

// EditorAIService is the full generative surface the editor consumes.
type EditorAIService interface {
	GarmentApplier

	// GenerateModel turns a user photo into a clean studio model shot.
	GenerateModel(ctx context.Context, photo *valueobjects.ImageData) (*valueobjects.ImageData, error)

	// GeneratePose re-renders an existing image from a new viewpoint.
	GeneratePose(ctx context.Context, base *valueobjects.ImageData, poseInstruction string) (*valueobjects.ImageData, error)

	// ChangeColor recolors the named garment in an existing render.
	ChangeColor(ctx context.Context, base *valueobjects.ImageData, garmentName, color string) (*valueobjects.ImageData, error)
}
