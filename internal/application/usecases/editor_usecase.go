package usecases

import (
	"context"
	"fmt"

	"github.com/davekg8/Virtual-try-on/internal/domain/entities"
	"github.com/davekg8/Virtual-try-on/internal/domain/repositories"
	"github.com/davekg8/Virtual-try-on/internal/domain/services"
	"github.com/davekg8/Virtual-try-on/internal/domain/valueobjects"
)

type EditorUseCase struct {
	sessions repositories.SessionRepository
	wardrobe repositories.WardrobeRepository
	images   repositories.ImageRepository
	ai       repositories.EditorAIService
	editor   *services.EditorService
}

func NewEditorUseCase(
	sessions repositories.SessionRepository,
	wardrobe repositories.WardrobeRepository,
	images repositories.ImageRepository,
	ai repositories.EditorAIService,
	editor *services.EditorService,
) *EditorUseCase {
	return &EditorUseCase{
		sessions: sessions,
		wardrobe: wardrobe,
		images:   images,
		ai:       ai,
		editor:   editor,
	}
}

type CreateModelInput struct {
	PhotoData []byte
	MimeType  string
}

type CreateModelOutput struct {
	ModelImageRef string
	ModelImageURL string
}

type GarmentState struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type LayerState struct {
	Garment    *GarmentState     `json:"garment"`
	PoseImages map[string]string `json:"poseImages"`
}

type SessionState struct {
	SessionID        string       `json:"sessionId"`
	Layers           []LayerState `json:"layers"`
	CurrentIndex     int          `json:"currentIndex"`
	PoseIndex        int          `json:"poseIndex"`
	PoseInstructions []string     `json:"poseInstructions"`
	CurrentImageURL  string       `json:"currentImageUrl"`
	CanUndo          bool         `json:"canUndo"`
	CanRedo          bool         `json:"canRedo"`
}

// CreateModel turns an uploaded photo into a finalized studio model image
// and stores it, returning the reference a session can be started from.
func (uc *EditorUseCase) CreateModel(ctx context.Context, input CreateModelInput) (*CreateModelOutput, error) {
	photo, err := valueobjects.NewImageData(input.PhotoData, input.MimeType)
	if err != nil {
		return nil, fmt.Errorf("invalid photo: %w", err)
	}

	model, err := uc.ai.GenerateModel(ctx, photo)
	if err != nil {
		return nil, fmt.Errorf("model generation failed: %w", err)
	}

	ref, err := uc.images.Save(ctx, model)
	if err != nil {
		return nil, fmt.Errorf("failed to store model image: %w", err)
	}

	return &CreateModelOutput{
		ModelImageRef: ref,
		ModelImageURL: repositories.ImageURLPrefix + ref,
	}, nil
}

// StartSession finalizes a model image into a fresh editing session.
func (uc *EditorUseCase) StartSession(ctx context.Context, modelImageRef string) (*SessionState, error) {
	if _, err := uc.images.FindByRef(ctx, modelImageRef); err != nil {
		return nil, fmt.Errorf("unknown model image: %w", err)
	}

	session, err := entities.NewEditorSession(modelImageRef)
	if err != nil {
		return nil, err
	}

	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return uc.sessionState(session), nil
}

func (uc *EditorUseCase) GetSession(ctx context.Context, id entities.SessionID) (*SessionState, error) {
	session, err := uc.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.sessionState(session), nil
}

// EndSession discards a session. Unknown ids are reported so clients can
// drop stale references.
func (uc *EditorUseCase) EndSession(ctx context.Context, id entities.SessionID) error {
	if _, err := uc.sessions.FindByID(ctx, id); err != nil {
		return err
	}
	return uc.sessions.Delete(ctx, id)
}

// RestartSession resets an existing session onto a new finalized model
// image, discarding all prior layers.
func (uc *EditorUseCase) RestartSession(ctx context.Context, id entities.SessionID, modelImageRef string) (*SessionState, error) {
	session, err := uc.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := uc.images.FindByRef(ctx, modelImageRef); err != nil {
		return nil, fmt.Errorf("unknown model image: %w", err)
	}

	if err := uc.editor.FinalizeModel(session, modelImageRef); err != nil {
		return nil, err
	}

	return uc.sessionState(session), nil
}

func (uc *EditorUseCase) ApplyGarment(ctx context.Context, id entities.SessionID, garmentID string) (*SessionState, error) {
	session, err := uc.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	garment, err := uc.wardrobe.FindByID(ctx, garmentID)
	if err != nil {
		return nil, err
	}

	if err := uc.editor.ApplyGarment(ctx, session, garment); err != nil {
		return nil, err
	}

	return uc.sessionState(session), nil
}

func (uc *EditorUseCase) RemoveLastGarment(ctx context.Context, id entities.SessionID) (*SessionState, error) {
	session, err := uc.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := uc.editor.RemoveLastGarment(session); err != nil {
		return nil, err
	}

	return uc.sessionState(session), nil
}

func (uc *EditorUseCase) SelectPose(ctx context.Context, id entities.SessionID, poseIndex int) (*SessionState, error) {
	session, err := uc.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := uc.editor.SelectPose(ctx, session, poseIndex); err != nil {
		return nil, err
	}

	return uc.sessionState(session), nil
}

func (uc *EditorUseCase) RegenerateActiveLayer(ctx context.Context, id entities.SessionID) (*SessionState, error) {
	session, err := uc.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := uc.editor.RegenerateActiveLayer(ctx, session); err != nil {
		return nil, err
	}

	return uc.sessionState(session), nil
}

func (uc *EditorUseCase) ChangeColor(ctx context.Context, id entities.SessionID, color string) (*SessionState, error) {
	session, err := uc.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := uc.editor.ChangeColor(ctx, session, color); err != nil {
		return nil, err
	}

	return uc.sessionState(session), nil
}

// ActiveLayers exposes the session's active outfit prefix for saving. The
// layers are snapshots taken under the session's read lock, never live
// references into history.
func (uc *EditorUseCase) ActiveLayers(ctx context.Context, id entities.SessionID) ([]*entities.OutfitLayer, string, error) {
	session, err := uc.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	var (
		layers     []*entities.OutfitLayer
		currentRef string
	)
	session.View(func(history *entities.OutfitHistory) {
		for _, layer := range history.ActiveLayers() {
			layers = append(layers, layer.Snapshot())
		}
		currentRef = history.CurrentImageRef()
	})
	return layers, repositories.ImageURLPrefix + currentRef, nil
}

func (uc *EditorUseCase) Wardrobe(ctx context.Context) ([]GarmentState, error) {
	items, err := uc.wardrobe.List(ctx)
	if err != nil {
		return nil, err
	}

	garments := make([]GarmentState, 0, len(items))
	for _, item := range items {
		garments = append(garments, garmentState(item))
	}
	return garments, nil
}

type AddGarmentInput struct {
	Name      string
	ImageData []byte
	MimeType  string
}

// AddGarment stores a custom garment upload and registers it in the
// wardrobe for the rest of the session.
func (uc *EditorUseCase) AddGarment(ctx context.Context, input AddGarmentInput) (*GarmentState, error) {
	image, err := valueobjects.NewImageData(input.ImageData, input.MimeType)
	if err != nil {
		return nil, fmt.Errorf("invalid garment image: %w", err)
	}

	ref, err := uc.images.Save(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("failed to store garment image: %w", err)
	}

	item, err := entities.NewWardrobeItem("", input.Name, repositories.ImageURLPrefix+ref)
	if err != nil {
		return nil, err
	}

	if err := uc.wardrobe.Add(ctx, item); err != nil {
		return nil, err
	}

	state := garmentState(item)
	return &state, nil
}

func (uc *EditorUseCase) sessionState(session *entities.EditorSession) *SessionState {
	var state *SessionState
	session.View(func(history *entities.OutfitHistory) {
		layers := make([]LayerState, 0, history.Length())
		for _, layer := range history.Layers() {
			layers = append(layers, layerState(layer))
		}

		state = &SessionState{
			SessionID:        string(session.ID()),
			Layers:           layers,
			CurrentIndex:     history.Index(),
			PoseIndex:        history.PoseIndex(),
			PoseInstructions: valueobjects.PoseInstructions,
			CurrentImageURL:  repositories.ImageURLPrefix + history.CurrentImageRef(),
			CanUndo:          history.CanUndo(),
			CanRedo:          history.CanRedo(),
		}
	})
	return state
}

func layerState(layer *entities.OutfitLayer) LayerState {
	poseImages := make(map[string]string)
	for pose, ref := range layer.PoseImages() {
		poseImages[pose] = repositories.ImageURLPrefix + ref
	}

	state := LayerState{PoseImages: poseImages}
	if garment := layer.Garment(); garment != nil {
		gs := garmentState(garment)
		state.Garment = &gs
	}
	return state
}

func garmentState(item *entities.WardrobeItem) GarmentState {
	return GarmentState{
		ID:   item.ID(),
		Name: item.Name(),
		URL:  item.URL(),
	}
}
