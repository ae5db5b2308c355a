package entities

import (
	"fmt"

	"github.com/davekg8/Virtual-try-on/internal/domain/valueobjects"
)

// OutfitHistory is an ordered sequence of outfit layers with an undo/redo
// pointer. Index 0 is always the base layer; the active outfit is the prefix
// layers[0..index]. Applying a garment after undoing truncates the undone
// suffix before appending, which gives branching-redo semantics.
type OutfitHistory struct {
	layers    []*OutfitLayer
	index     int
	poseIndex int
}

// NewOutfitHistory starts a fresh history from a finalized model image.
func NewOutfitHistory(modelImageRef string) (*OutfitHistory, error) {
	base, err := NewBaseLayer(valueobjects.DefaultPoseInstruction(), modelImageRef)
	if err != nil {
		return nil, fmt.Errorf("failed to create base layer: %w", err)
	}

	return &OutfitHistory{
		layers:    []*OutfitLayer{base},
		index:     0,
		poseIndex: 0,
	}, nil
}

func (h *OutfitHistory) Length() int {
	return len(h.layers)
}

func (h *OutfitHistory) Index() int {
	return h.index
}

func (h *OutfitHistory) PoseIndex() int {
	return h.poseIndex
}

func (h *OutfitHistory) SetPoseIndex(index int) error {
	if _, err := valueobjects.PoseInstructionAt(index); err != nil {
		return err
	}
	h.poseIndex = index
	return nil
}

func (h *OutfitHistory) CurrentPoseInstruction() string {
	return valueobjects.PoseInstructions[h.poseIndex]
}

func (h *OutfitHistory) Layers() []*OutfitLayer {
	return h.layers
}

// ActiveLayers is the prefix of history that makes up the outfit currently
// on display.
func (h *OutfitHistory) ActiveLayers() []*OutfitLayer {
	return h.layers[:h.index+1]
}

func (h *OutfitHistory) ActiveLayer() *OutfitLayer {
	return h.layers[h.index]
}

func (h *OutfitHistory) PreviousLayer() (*OutfitLayer, bool) {
	if h.index == 0 {
		return nil, false
	}
	return h.layers[h.index-1], true
}

// CurrentImageRef is the active layer's render for the active pose, falling
// back to the layer's base render when that pose has not been generated yet.
func (h *OutfitHistory) CurrentImageRef() string {
	layer := h.ActiveLayer()
	if ref, ok := layer.PoseRender(h.CurrentPoseInstruction()); ok {
		return ref
	}
	return layer.BaseImageRef()
}

func (h *OutfitHistory) CanUndo() bool {
	return h.index > 0
}

func (h *OutfitHistory) CanRedo() bool {
	return h.index < len(h.layers)-1
}

// NextLayer is the undone layer that a redo would restore, if any.
func (h *OutfitHistory) NextLayer() (*OutfitLayer, bool) {
	if !h.CanRedo() {
		return nil, false
	}
	return h.layers[h.index+1], true
}

// Redo advances the pointer into an undone layer without touching history
// contents.
func (h *OutfitHistory) Redo() bool {
	if !h.CanRedo() {
		return false
	}
	h.index++
	h.poseIndex = 0
	return true
}

// AppendLayer discards everything after the current index and appends the
// new layer, making it active.
func (h *OutfitHistory) AppendLayer(layer *OutfitLayer) error {
	if layer == nil || layer.IsBase() {
		return fmt.Errorf("appended layer must carry a garment")
	}

	h.layers = append(h.layers[:h.index+1], layer)
	h.index++
	h.poseIndex = 0
	return nil
}

// RemoveLast steps the pointer back one layer. The removed layer stays in
// history so redoing the same garment needs no regeneration.
func (h *OutfitHistory) RemoveLast() bool {
	if h.index == 0 {
		return false
	}
	h.index--
	h.poseIndex = 0
	return true
}

// ReplaceActiveLayer swaps the active layer for a new one, discarding its
// cached pose renders. Used by color changes, which invalidate every render
// of the old color.
func (h *OutfitHistory) ReplaceActiveLayer(layer *OutfitLayer) error {
	if h.index == 0 {
		return fmt.Errorf("cannot replace the base layer")
	}

	if layer == nil || layer.IsBase() {
		return fmt.Errorf("replacement layer must carry a garment")
	}

	h.layers[h.index] = layer
	return nil
}
