package entities

import "fmt"

// OutfitLayer is one garment application step plus its cached pose renders.
// The garment is nil only for the base layer (the unmodified model photo).
// poseImages maps a pose instruction to an image reference; entries are only
// ever added or overwritten, never removed.
type OutfitLayer struct {
	garment    *WardrobeItem
	basePose   string
	poseImages map[string]string
}

func NewBaseLayer(pose, imageRef string) (*OutfitLayer, error) {
	return newLayer(nil, pose, imageRef)
}

func NewGarmentLayer(garment *WardrobeItem, pose, imageRef string) (*OutfitLayer, error) {
	if garment == nil {
		return nil, fmt.Errorf("garment is required for a non-base layer")
	}
	return newLayer(garment, pose, imageRef)
}

func newLayer(garment *WardrobeItem, pose, imageRef string) (*OutfitLayer, error) {
	if pose == "" {
		return nil, fmt.Errorf("pose instruction is required")
	}

	if imageRef == "" {
		return nil, fmt.Errorf("image reference is required")
	}

	return &OutfitLayer{
		garment:    garment,
		basePose:   pose,
		poseImages: map[string]string{pose: imageRef},
	}, nil
}

func (l *OutfitLayer) Garment() *WardrobeItem {
	return l.garment
}

func (l *OutfitLayer) IsBase() bool {
	return l.garment == nil
}

// BaseImageRef is the layer's first render, used as the source image for
// pose variations and color changes.
func (l *OutfitLayer) BaseImageRef() string {
	return l.poseImages[l.basePose]
}

func (l *OutfitLayer) PoseRender(pose string) (string, bool) {
	ref, ok := l.poseImages[pose]
	return ref, ok
}

// SetPoseRender adds or overwrites the render for a pose.
func (l *OutfitLayer) SetPoseRender(pose, imageRef string) {
	l.poseImages[pose] = imageRef
}

func (l *OutfitLayer) PoseImages() map[string]string {
	images := make(map[string]string, len(l.poseImages))
	for pose, ref := range l.poseImages {
		images[pose] = ref
	}
	return images
}

func (l *OutfitLayer) RenderCount() int {
	return len(l.poseImages)
}

// Snapshot deep-copies the layer so saved outfits do not alias live history.
func (l *OutfitLayer) Snapshot() *OutfitLayer {
	return &OutfitLayer{
		garment:    l.garment,
		basePose:   l.basePose,
		poseImages: l.PoseImages(),
	}
}

// RestoreLayer rebuilds a layer from persisted state.
func RestoreLayer(garment *WardrobeItem, basePose string, poseImages map[string]string) (*OutfitLayer, error) {
	if basePose == "" {
		return nil, fmt.Errorf("base pose is required")
	}

	if poseImages[basePose] == "" {
		return nil, fmt.Errorf("base pose %q has no render", basePose)
	}

	images := make(map[string]string, len(poseImages))
	for pose, ref := range poseImages {
		images[pose] = ref
	}

	return &OutfitLayer{
		garment:    garment,
		basePose:   basePose,
		poseImages: images,
	}, nil
}

func (l *OutfitLayer) BasePose() string {
	return l.basePose
}
