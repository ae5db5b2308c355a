package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/davekg8/Virtual-try-on/internal/domain/entities"
	"github.com/davekg8/Virtual-try-on/internal/domain/repositories"
	"github.com/davekg8/Virtual-try-on/internal/domain/valueobjects"
)

// ErrSessionBusy means another generation is already in flight for the
// session. The action is dropped, not queued.
var ErrSessionBusy = errors.New("another operation is in progress")

// EditorService runs the outfit editing operations. Every mutating
// operation claims the session's busy gate for its full duration and leaves
// history at its last-known-good state when a generation fails.
type EditorService struct {
	ai      repositories.EditorAIService
	images  repositories.ImageRepository
	fetcher repositories.ImageFetcher
}

func NewEditorService(
	ai repositories.EditorAIService,
	images repositories.ImageRepository,
	fetcher repositories.ImageFetcher,
) *EditorService {
	return &EditorService{
		ai:      ai,
		images:  images,
		fetcher: fetcher,
	}
}

// FinalizeModel restarts the session from a newly finalized model image.
func (s *EditorService) FinalizeModel(session *entities.EditorSession, modelImageRef string) error {
	if !session.TryAcquire() {
		return ErrSessionBusy
	}
	defer session.Release()

	return session.Reset(modelImageRef)
}

// ApplyGarment layers a garment onto the current outfit. If the next undone
// layer already holds the same garment this is a pure redo and no generation
// call is made; otherwise the undone suffix is truncated and a fresh layer
// appended. History is untouched when generation fails.
func (s *EditorService) ApplyGarment(ctx context.Context, session *entities.EditorSession, garment *entities.WardrobeItem) error {
	if garment == nil {
		return fmt.Errorf("garment is required")
	}

	if !session.TryAcquire() {
		return ErrSessionBusy
	}
	defer session.Release()

	var (
		redone     bool
		currentRef string
		pose       string
	)
	if err := session.Update(func(history *entities.OutfitHistory) error {
		if next, ok := history.NextLayer(); ok && next.Garment().ID() == garment.ID() {
			history.Redo()
			redone = true
			return nil
		}
		currentRef = history.CurrentImageRef()
		pose = history.CurrentPoseInstruction()
		return nil
	}); err != nil {
		return err
	}
	if redone {
		return nil
	}

	person, err := s.images.FindByRef(ctx, currentRef)
	if err != nil {
		return fmt.Errorf("failed to load current image: %w", err)
	}

	garmentImage, err := s.garmentImage(ctx, garment)
	if err != nil {
		return fmt.Errorf("failed to load garment image: %w", err)
	}

	rendered, err := s.ai.ApplyGarment(ctx, person, garmentImage, garment.Name())
	if err != nil {
		return fmt.Errorf("garment generation failed: %w", err)
	}

	ref, err := s.images.Save(ctx, rendered)
	if err != nil {
		return fmt.Errorf("failed to store rendered image: %w", err)
	}

	layer, err := entities.NewGarmentLayer(garment, pose, ref)
	if err != nil {
		return fmt.Errorf("failed to create outfit layer: %w", err)
	}

	return session.Update(func(history *entities.OutfitHistory) error {
		return history.AppendLayer(layer)
	})
}

// RemoveLastGarment steps back one layer. A no-op on the base layer; the
// stepped-over layer stays in history for redo.
func (s *EditorService) RemoveLastGarment(session *entities.EditorSession) error {
	if !session.TryAcquire() {
		return ErrSessionBusy
	}
	defer session.Release()

	return session.Update(func(history *entities.OutfitHistory) error {
		history.RemoveLast()
		return nil
	})
}

// SelectPose switches the displayed pose. Already-rendered poses switch
// without a generation call; otherwise the active layer's base render is
// re-posed and the result cached on the layer. On failure the pose index
// reverts to its pre-call value.
func (s *EditorService) SelectPose(ctx context.Context, session *entities.EditorSession, poseIndex int) error {
	if !session.TryAcquire() {
		return ErrSessionBusy
	}
	defer session.Release()

	pose, err := valueobjects.PoseInstructionAt(poseIndex)
	if err != nil {
		return err
	}

	var (
		cached        bool
		previousIndex int
		baseRef       string
	)
	if err := session.Update(func(history *entities.OutfitHistory) error {
		if _, ok := history.ActiveLayer().PoseRender(pose); ok {
			cached = true
			return history.SetPoseIndex(poseIndex)
		}
		previousIndex = history.PoseIndex()
		baseRef = history.ActiveLayer().BaseImageRef()
		return history.SetPoseIndex(poseIndex)
	}); err != nil {
		return err
	}
	if cached {
		return nil
	}

	revert := func() {
		// previousIndex was read from the history, it is always in range
		_ = session.Update(func(history *entities.OutfitHistory) error {
			return history.SetPoseIndex(previousIndex)
		})
	}

	base, err := s.images.FindByRef(ctx, baseRef)
	if err != nil {
		revert()
		return fmt.Errorf("failed to load base render: %w", err)
	}

	rendered, err := s.ai.GeneratePose(ctx, base, pose)
	if err != nil {
		revert()
		return fmt.Errorf("pose generation failed: %w", err)
	}

	ref, err := s.images.Save(ctx, rendered)
	if err != nil {
		revert()
		return fmt.Errorf("failed to store rendered image: %w", err)
	}

	return session.Update(func(history *entities.OutfitHistory) error {
		history.ActiveLayer().SetPoseRender(pose, ref)
		return nil
	})
}

// RegenerateActiveLayer re-runs garment application for the active layer
// from the previous layer's base render, overwriting only the current
// pose's render. Other cached poses for the layer go stale on purpose.
func (s *EditorService) RegenerateActiveLayer(ctx context.Context, session *entities.EditorSession) error {
	if !session.TryAcquire() {
		return ErrSessionBusy
	}
	defer session.Release()

	var (
		onBase    bool
		personRef string
		garment   *entities.WardrobeItem
		pose      string
	)
	session.View(func(history *entities.OutfitHistory) {
		previous, ok := history.PreviousLayer()
		if !ok {
			onBase = true
			return
		}
		personRef = previous.BaseImageRef()
		garment = history.ActiveLayer().Garment()
		pose = history.CurrentPoseInstruction()
	})
	if onBase {
		return nil
	}

	person, err := s.images.FindByRef(ctx, personRef)
	if err != nil {
		return fmt.Errorf("failed to load previous layer render: %w", err)
	}

	garmentImage, err := s.garmentImage(ctx, garment)
	if err != nil {
		return fmt.Errorf("failed to load garment image: %w", err)
	}

	rendered, err := s.ai.ApplyGarment(ctx, person, garmentImage, garment.Name())
	if err != nil {
		return fmt.Errorf("garment generation failed: %w", err)
	}

	ref, err := s.images.Save(ctx, rendered)
	if err != nil {
		return fmt.Errorf("failed to store rendered image: %w", err)
	}

	return session.Update(func(history *entities.OutfitHistory) error {
		history.ActiveLayer().SetPoseRender(pose, ref)
		return nil
	})
}

// ChangeColor recolors the active layer's garment. Unlike regeneration this
// replaces the whole layer, so every previously cached pose render of the
// old color is discarded.
func (s *EditorService) ChangeColor(ctx context.Context, session *entities.EditorSession, color string) error {
	if color == "" {
		return fmt.Errorf("color is required")
	}

	if !session.TryAcquire() {
		return ErrSessionBusy
	}
	defer session.Release()

	var (
		onBase  bool
		baseRef string
		garment *entities.WardrobeItem
		pose    string
	)
	session.View(func(history *entities.OutfitHistory) {
		if !history.CanUndo() {
			onBase = true
			return
		}
		layer := history.ActiveLayer()
		baseRef = layer.BaseImageRef()
		garment = layer.Garment()
		pose = history.CurrentPoseInstruction()
	})
	if onBase {
		return nil
	}

	base, err := s.images.FindByRef(ctx, baseRef)
	if err != nil {
		return fmt.Errorf("failed to load base render: %w", err)
	}

	rendered, err := s.ai.ChangeColor(ctx, base, garment.Name(), color)
	if err != nil {
		return fmt.Errorf("color generation failed: %w", err)
	}

	ref, err := s.images.Save(ctx, rendered)
	if err != nil {
		return fmt.Errorf("failed to store rendered image: %w", err)
	}

	recolored, err := entities.NewGarmentLayer(garment, pose, ref)
	if err != nil {
		return fmt.Errorf("failed to create outfit layer: %w", err)
	}

	return session.Update(func(history *entities.OutfitHistory) error {
		return history.ReplaceActiveLayer(recolored)
	})
}

func (s *EditorService) garmentImage(ctx context.Context, garment *entities.WardrobeItem) (*valueobjects.ImageData, error) {
	if ref, ok := strings.CutPrefix(garment.URL(), repositories.ImageURLPrefix); ok {
		return s.images.FindByRef(ctx, ref)
	}
	return s.fetcher.Fetch(ctx, garment.URL())
}
