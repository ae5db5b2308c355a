package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/davekg8/Virtual-try-on/internal/application/usecases"
	"github.com/davekg8/Virtual-try-on/internal/domain/entities"
	domainrepos "github.com/davekg8/Virtual-try-on/internal/domain/repositories"
	"github.com/davekg8/Virtual-try-on/internal/domain/services"
	"github.com/davekg8/Virtual-try-on/internal/domain/valueobjects"
	infrarepos "github.com/davekg8/Virtual-try-on/internal/infrastructure/repositories"
)

type stubAIService struct {
	result *valueobjects.ImageData
	err    error

	// when set, generation blocks until released; started is closed
	// once the call is inside the stub
	started chan struct{}
	release chan struct{}
}

func (s *stubAIService) generate() (*valueobjects.ImageData, error) {
	if s.started != nil {
		close(s.started)
		s.started = nil
		<-s.release
	}
	return s.result, s.err
}

func (s *stubAIService) GenerateModel(ctx context.Context, photo *valueobjects.ImageData) (*valueobjects.ImageData, error) {
	return s.generate()
}

func (s *stubAIService) ApplyGarment(ctx context.Context, person, garment *valueobjects.ImageData, garmentName string) (*valueobjects.ImageData, error) {
	return s.generate()
}

func (s *stubAIService) GeneratePose(ctx context.Context, base *valueobjects.ImageData, poseInstruction string) (*valueobjects.ImageData, error) {
	return s.generate()
}

func (s *stubAIService) ChangeColor(ctx context.Context, base *valueobjects.ImageData, garmentName, color string) (*valueobjects.ImageData, error) {
	return s.generate()
}

func (s *stubAIService) Close() error {
	return nil
}

type stubImageFetcher struct {
	image *valueobjects.ImageData
}

func (f *stubImageFetcher) Fetch(ctx context.Context, url string) (*valueobjects.ImageData, error) {
	return f.image, nil
}

type failingGalleryRepository struct {
	storeErr error
}

func (r *failingGalleryRepository) Load(ctx context.Context) ([]*entities.SavedOutfit, error) {
	return nil, nil
}

func (r *failingGalleryRepository) Store(ctx context.Context, outfits []*entities.SavedOutfit) error {
	return r.storeErr
}

type apiFixture struct {
	server      *httptest.Server
	ai          *stubAIService
	galleryRepo *failingGalleryRepository
	modelRef    string
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to create test image: %v", err)
	}
	testImage, err := valueobjects.NewImageData(buf.Bytes(), "image/png")
	if err != nil {
		t.Fatalf("Failed to create ImageData: %v", err)
	}

	imageRepository := infrarepos.NewMemoryImageRepository()
	modelRef, err := imageRepository.Save(context.Background(), testImage)
	if err != nil {
		t.Fatalf("Failed to seed model image: %v", err)
	}

	sessionRepository := infrarepos.NewMemorySessionRepository()
	wardrobeRepository, err := infrarepos.NewMemoryWardrobeRepository()
	if err != nil {
		t.Fatalf("Failed to create wardrobe: %v", err)
	}

	ai := &stubAIService{result: testImage}
	fetcher := &stubImageFetcher{image: testImage}
	galleryRepo := &failingGalleryRepository{}

	editorService := services.NewEditorService(ai, imageRepository, fetcher)
	galleryService := services.NewGalleryService(context.Background(), galleryRepo)

	editorUseCase := usecases.NewEditorUseCase(sessionRepository, wardrobeRepository, imageRepository, ai, editorService)
	galleryUseCase := usecases.NewGalleryUseCase(galleryService, editorUseCase)

	editorHandler := NewEditorHandler(editorUseCase, imageRepository)
	galleryHandler := NewGalleryHandler(galleryUseCase)

	r := mux.NewRouter()
	r.HandleFunc("/api/sessions", editorHandler.HandleStartSession).Methods("POST")
	r.HandleFunc("/api/sessions/{id}", editorHandler.HandleGetSession).Methods("GET")
	r.HandleFunc("/api/sessions/{id}", editorHandler.HandleEndSession).Methods("DELETE")
	r.HandleFunc("/api/sessions/{id}/garment", editorHandler.HandleApplyGarment).Methods("POST")
	r.HandleFunc("/api/sessions/{id}/undo", editorHandler.HandleRemoveLastGarment).Methods("POST")
	r.HandleFunc("/api/sessions/{id}/pose", editorHandler.HandleSelectPose).Methods("POST")
	r.HandleFunc("/api/wardrobe", editorHandler.HandleWardrobe).Methods("GET")
	r.HandleFunc("/api/outfits", galleryHandler.HandleListOutfits).Methods("GET")
	r.HandleFunc("/api/outfits", galleryHandler.HandleSaveOutfit).Methods("POST")
	r.HandleFunc("/api/outfits/{id}", galleryHandler.HandleDeleteOutfit).Methods("DELETE")
	r.HandleFunc(domainrepos.ImageURLPrefix+"{id}", editorHandler.HandleImage).Methods("GET")

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return &apiFixture{
		server:      server,
		ai:          ai,
		galleryRepo: galleryRepo,
		modelRef:    modelRef,
	}
}

func (f *apiFixture) post(t *testing.T, path string, body any) (*http.Response, map[string]json.RawMessage) {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal request: %v", err)
	}

	resp, err := http.Post(f.server.URL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	return resp, decodeBody(t, resp)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]json.RawMessage {
	t.Helper()
	defer resp.Body.Close()

	var body map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return body
}

func TestEditorEndpoints(t *testing.T) {
	t.Run("session lifecycle", func(t *testing.T) {
		f := newAPIFixture(t)

		resp, body := f.post(t, "/api/sessions", map[string]string{"modelImageRef": f.modelRef})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("StartSession status = %d", resp.StatusCode)
		}

		var state usecases.SessionState
		unmarshalState(t, body, &state)
		if state.CanUndo || state.CanRedo {
			t.Errorf("Fresh session must not be undoable")
		}
		if len(state.Layers) != 1 {
			t.Errorf("Expected the base layer only, got %d layers", len(state.Layers))
		}

		resp, body = f.post(t, "/api/sessions/"+state.SessionID+"/garment", map[string]string{"garmentId": "gemini-sweat"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("ApplyGarment status = %d", resp.StatusCode)
		}
		unmarshalState(t, body, &state)
		if state.CurrentIndex != 1 || !state.CanUndo {
			t.Errorf("Unexpected state after apply: index=%d canUndo=%v", state.CurrentIndex, state.CanUndo)
		}

		resp, body = f.post(t, "/api/sessions/"+state.SessionID+"/pose", map[string]int{"poseIndex": 2})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("SelectPose status = %d", resp.StatusCode)
		}
		unmarshalState(t, body, &state)
		if state.PoseIndex != 2 {
			t.Errorf("Expected pose index 2, got %d", state.PoseIndex)
		}

		resp, body = f.post(t, "/api/sessions/"+state.SessionID+"/undo", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Undo status = %d", resp.StatusCode)
		}
		unmarshalState(t, body, &state)
		if state.CurrentIndex != 0 || !state.CanRedo {
			t.Errorf("Unexpected state after undo: index=%d canRedo=%v", state.CurrentIndex, state.CanRedo)
		}

		// the displayed image is servable
		imgResp, err := http.Get(f.server.URL + state.CurrentImageURL)
		if err != nil {
			t.Fatalf("GET image failed: %v", err)
		}
		imgResp.Body.Close()
		if imgResp.StatusCode != http.StatusOK {
			t.Errorf("Image status = %d", imgResp.StatusCode)
		}
	})

	t.Run("ended session is gone", func(t *testing.T) {
		f := newAPIFixture(t)
		state := f.createSession(t)

		req, err := http.NewRequest(http.MethodDelete, f.server.URL+"/api/sessions/"+state.SessionID, nil)
		if err != nil {
			t.Fatalf("Failed to build delete request: %v", err)
		}
		delResp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("DELETE session failed: %v", err)
		}
		delResp.Body.Close()
		if delResp.StatusCode != http.StatusOK {
			t.Fatalf("Delete status = %d", delResp.StatusCode)
		}

		getResp, err := http.Get(f.server.URL + "/api/sessions/" + state.SessionID)
		if err != nil {
			t.Fatalf("GET session failed: %v", err)
		}
		getResp.Body.Close()
		if getResp.StatusCode != http.StatusNotFound {
			t.Errorf("Expected 404 after ending the session, got %d", getResp.StatusCode)
		}
	})

	t.Run("unknown session is 404", func(t *testing.T) {
		f := newAPIFixture(t)

		resp, err := http.Get(f.server.URL + "/api/sessions/no-such-session")
		if err != nil {
			t.Fatalf("GET session failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("unknown garment is 404", func(t *testing.T) {
		f := newAPIFixture(t)
		state := f.createSession(t)

		resp, _ := f.post(t, "/api/sessions/"+state.SessionID+"/garment", map[string]string{"garmentId": "no-such-garment"})
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("busy session is 409", func(t *testing.T) {
		f := newAPIFixture(t)
		state := f.createSession(t)

		f.ai.started = make(chan struct{})
		f.ai.release = make(chan struct{})
		started := f.ai.started

		done := make(chan int)
		go func() {
			resp, err := http.Post(
				f.server.URL+"/api/sessions/"+state.SessionID+"/garment",
				"application/json",
				strings.NewReader(`{"garmentId":"gemini-sweat"}`),
			)
			if err != nil {
				done <- 0
				return
			}
			resp.Body.Close()
			done <- resp.StatusCode
		}()

		<-started

		resp, _ := f.post(t, "/api/sessions/"+state.SessionID+"/garment", map[string]string{"garmentId": "gemini-tee"})
		if resp.StatusCode != http.StatusConflict {
			t.Errorf("Expected 409 while busy, got %d", resp.StatusCode)
		}

		close(f.ai.release)
		if status := <-done; status != http.StatusOK {
			t.Errorf("First request status = %d", status)
		}
	})
}

func TestGalleryEndpoints(t *testing.T) {
	t.Run("saving a bare model is 400", func(t *testing.T) {
		f := newAPIFixture(t)
		state := f.createSession(t)

		resp, _ := f.post(t, "/api/outfits", map[string]string{"sessionId": state.SessionID})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("save, list, delete", func(t *testing.T) {
		f := newAPIFixture(t)
		state := f.createSession(t)

		resp, _ := f.post(t, "/api/sessions/"+state.SessionID+"/garment", map[string]string{"garmentId": "gemini-sweat"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("ApplyGarment status = %d", resp.StatusCode)
		}

		resp, body := f.post(t, "/api/outfits", map[string]string{"sessionId": state.SessionID})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("SaveOutfit status = %d", resp.StatusCode)
		}
		if _, hasWarning := body["warning"]; hasWarning {
			t.Errorf("Unexpected persistence warning")
		}

		var outfit usecases.SavedOutfitState
		if err := json.Unmarshal(body["outfit"], &outfit); err != nil {
			t.Fatalf("Failed to decode outfit: %v", err)
		}
		if outfit.ID == "" || len(outfit.Layers) != 2 {
			t.Errorf("Unexpected outfit: id=%q layers=%d", outfit.ID, len(outfit.Layers))
		}

		listResp, err := http.Get(f.server.URL + "/api/outfits")
		if err != nil {
			t.Fatalf("GET outfits failed: %v", err)
		}
		listBody := decodeBody(t, listResp)
		var outfits []usecases.SavedOutfitState
		if err := json.Unmarshal(listBody["outfits"], &outfits); err != nil {
			t.Fatalf("Failed to decode outfits: %v", err)
		}
		if len(outfits) != 1 || outfits[0].ID != outfit.ID {
			t.Errorf("Expected the saved outfit in the list")
		}

		req, err := http.NewRequest(http.MethodDelete, f.server.URL+"/api/outfits/"+outfit.ID, nil)
		if err != nil {
			t.Fatalf("Failed to build delete request: %v", err)
		}
		delResp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("DELETE outfit failed: %v", err)
		}
		delResp.Body.Close()
		if delResp.StatusCode != http.StatusOK {
			t.Errorf("Delete status = %d", delResp.StatusCode)
		}
	})

	t.Run("every handler sends uncacheable JSON", func(t *testing.T) {
		f := newAPIFixture(t)
		state := f.createSession(t)

		resp, err := http.Get(f.server.URL + "/api/outfits")
		if err != nil {
			t.Fatalf("GET outfits failed: %v", err)
		}
		resp.Body.Close()
		stateResp, err := http.Get(f.server.URL + "/api/sessions/" + state.SessionID)
		if err != nil {
			t.Fatalf("GET session failed: %v", err)
		}
		stateResp.Body.Close()

		for _, r := range []*http.Response{resp, stateResp} {
			if got := r.Header.Get("Content-Type"); got != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", got)
			}
			if got := r.Header.Get("Cache-Control"); got != "no-store, max-age=0" {
				t.Errorf("Cache-Control = %q, want no-store", got)
			}
		}
	})

	t.Run("persistence failure still saves with a warning", func(t *testing.T) {
		f := newAPIFixture(t)
		state := f.createSession(t)

		resp, _ := f.post(t, "/api/sessions/"+state.SessionID+"/garment", map[string]string{"garmentId": "gemini-sweat"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("ApplyGarment status = %d", resp.StatusCode)
		}

		f.galleryRepo.storeErr = errors.New("disk full")

		resp, body := f.post(t, "/api/outfits", map[string]string{"sessionId": state.SessionID})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("SaveOutfit status = %d", resp.StatusCode)
		}
		if _, hasWarning := body["warning"]; !hasWarning {
			t.Errorf("Expected a persistence warning")
		}
		if _, hasOutfit := body["outfit"]; !hasOutfit {
			t.Errorf("Expected the outfit despite the persistence failure")
		}
	})
}

func (f *apiFixture) createSession(t *testing.T) usecases.SessionState {
	t.Helper()

	resp, body := f.post(t, "/api/sessions", map[string]string{"modelImageRef": f.modelRef})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("StartSession status = %d", resp.StatusCode)
	}

	var state usecases.SessionState
	unmarshalState(t, body, &state)
	return state
}

func unmarshalState(t *testing.T, body map[string]json.RawMessage, state *usecases.SessionState) {
	t.Helper()

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to re-encode body: %v", err)
	}
	if err := json.Unmarshal(raw, state); err != nil {
		t.Fatalf("Failed to decode session state: %v", err)
	}
}
