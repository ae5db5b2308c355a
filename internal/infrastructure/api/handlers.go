package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/davekg8/Virtual-try-on/internal/application/usecases"
	"github.com/davekg8/Virtual-try-on/internal/domain/entities"
	"github.com/davekg8/Virtual-try-on/internal/domain/repositories"
	"github.com/davekg8/Virtual-try-on/internal/domain/services"
	"github.com/davekg8/Virtual-try-on/internal/infrastructure/external"
)

const maxFileSize = 10 * 1024 * 1024 // 10MB

type EditorHandler struct {
	editorUseCase *usecases.EditorUseCase
	images        repositories.ImageRepository
}

func NewEditorHandler(editorUseCase *usecases.EditorUseCase, images repositories.ImageRepository) *EditorHandler {
	return &EditorHandler{
		editorUseCase: editorUseCase,
		images:        images,
	}
}

// HandleCreateModel accepts a photo upload and returns the reference of the
// generated studio model image.
func (h *EditorHandler) HandleCreateModel(w http.ResponseWriter, r *http.Request) {
	data, mimeType, ok := h.readImageUpload(w, r, "photo", "Please choose a photo")
	if !ok {
		return
	}

	output, err := h.editorUseCase.CreateModel(r.Context(), usecases.CreateModelInput{
		PhotoData: data,
		MimeType:  mimeType,
	})
	if err != nil {
		log.Printf("Model generation failed: %v", err)
		sendError(w, external.FriendlyMessage("Failed to create model", err), http.StatusInternalServerError)
		return
	}

	sendJSON(w, map[string]string{
		"modelImageRef": output.ModelImageRef,
		"modelImageUrl": output.ModelImageURL,
	})
}

func (h *EditorHandler) HandleStartSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ModelImageRef string `json:"modelImageRef"`
	}
	if !h.readJSON(w, r, &body) {
		return
	}

	if body.ModelImageRef == "" {
		sendError(w, "modelImageRef is required", http.StatusBadRequest)
		return
	}

	state, err := h.editorUseCase.StartSession(r.Context(), body.ModelImageRef)
	if err != nil {
		h.handleEditorError(w, "Failed to start session", err)
		return
	}

	sendJSON(w, state)
}

func (h *EditorHandler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	state, err := h.editorUseCase.GetSession(r.Context(), sessionID(r))
	if err != nil {
		h.handleEditorError(w, "Failed to load session", err)
		return
	}

	sendJSON(w, state)
}

// HandleRestartSession resets a session onto a new model image ("start
// over").
func (h *EditorHandler) HandleRestartSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ModelImageRef string `json:"modelImageRef"`
	}
	if !h.readJSON(w, r, &body) {
		return
	}

	if body.ModelImageRef == "" {
		sendError(w, "modelImageRef is required", http.StatusBadRequest)
		return
	}

	state, err := h.editorUseCase.RestartSession(r.Context(), sessionID(r), body.ModelImageRef)
	if err != nil {
		h.handleEditorError(w, "Failed to restart session", err)
		return
	}

	sendJSON(w, state)
}

func (h *EditorHandler) HandleApplyGarment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		GarmentID string `json:"garmentId"`
	}
	if !h.readJSON(w, r, &body) {
		return
	}

	if body.GarmentID == "" {
		sendError(w, "garmentId is required", http.StatusBadRequest)
		return
	}

	state, err := h.editorUseCase.ApplyGarment(r.Context(), sessionID(r), body.GarmentID)
	if err != nil {
		h.handleEditorError(w, "Failed to apply garment", err)
		return
	}

	sendJSON(w, state)
}

func (h *EditorHandler) HandleRemoveLastGarment(w http.ResponseWriter, r *http.Request) {
	state, err := h.editorUseCase.RemoveLastGarment(r.Context(), sessionID(r))
	if err != nil {
		h.handleEditorError(w, "Failed to remove garment", err)
		return
	}

	sendJSON(w, state)
}

func (h *EditorHandler) HandleSelectPose(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PoseIndex int `json:"poseIndex"`
	}
	if !h.readJSON(w, r, &body) {
		return
	}

	state, err := h.editorUseCase.SelectPose(r.Context(), sessionID(r), body.PoseIndex)
	if err != nil {
		h.handleEditorError(w, "Failed to change pose", err)
		return
	}

	sendJSON(w, state)
}

func (h *EditorHandler) HandleRegenerate(w http.ResponseWriter, r *http.Request) {
	state, err := h.editorUseCase.RegenerateActiveLayer(r.Context(), sessionID(r))
	if err != nil {
		h.handleEditorError(w, "Failed to regenerate image", err)
		return
	}

	sendJSON(w, state)
}

func (h *EditorHandler) HandleChangeColor(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Color string `json:"color"`
	}
	if !h.readJSON(w, r, &body) {
		return
	}

	if body.Color == "" {
		sendError(w, "color is required", http.StatusBadRequest)
		return
	}

	state, err := h.editorUseCase.ChangeColor(r.Context(), sessionID(r), body.Color)
	if err != nil {
		h.handleEditorError(w, "Failed to change color", err)
		return
	}

	sendJSON(w, state)
}

func (h *EditorHandler) HandleWardrobe(w http.ResponseWriter, r *http.Request) {
	garments, err := h.editorUseCase.Wardrobe(r.Context())
	if err != nil {
		sendError(w, "Failed to list wardrobe", http.StatusInternalServerError)
		return
	}

	sendJSON(w, map[string]any{"garments": garments})
}

// HandleAddGarment accepts a custom garment upload.
func (h *EditorHandler) HandleAddGarment(w http.ResponseWriter, r *http.Request) {
	data, mimeType, ok := h.readImageUpload(w, r, "garment_image", "Please choose a garment image")
	if !ok {
		return
	}

	name := r.FormValue("name")
	if name == "" {
		name = "Custom garment"
	}

	garment, err := h.editorUseCase.AddGarment(r.Context(), usecases.AddGarmentInput{
		Name:      name,
		ImageData: data,
		MimeType:  mimeType,
	})
	if err != nil {
		sendError(w, external.FriendlyMessage("Failed to add garment", err), http.StatusBadRequest)
		return
	}

	sendJSON(w, garment)
}

// HandleEndSession discards a session and its history.
func (h *EditorHandler) HandleEndSession(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)

	if err := h.editorUseCase.EndSession(r.Context(), id); err != nil {
		h.handleEditorError(w, "Failed to end session", err)
		return
	}

	sendJSON(w, map[string]string{"ended": string(id)})
}

// HandleImage serves a stored image by reference.
func (h *EditorHandler) HandleImage(w http.ResponseWriter, r *http.Request) {
	ref := mux.Vars(r)["id"]

	image, err := h.images.FindByRef(r.Context(), ref)
	if err != nil {
		sendError(w, "Image not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", image.MimeType())
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(image.Data())
}

func (h *EditorHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (h *EditorHandler) handleEditorError(w http.ResponseWriter, context string, err error) {
	switch {
	case errors.Is(err, services.ErrSessionBusy):
		sendError(w, "Another operation is in progress. Please wait for it to finish.", http.StatusConflict)
	case errors.Is(err, repositories.ErrSessionNotFound):
		sendError(w, "Session not found", http.StatusNotFound)
	case errors.Is(err, repositories.ErrGarmentNotFound):
		sendError(w, "Garment not found", http.StatusNotFound)
	case errors.Is(err, repositories.ErrImageNotFound):
		sendError(w, "Image not found", http.StatusNotFound)
	default:
		log.Printf("%s: %v", context, err)
		sendError(w, external.FriendlyMessage(context, err), http.StatusInternalServerError)
	}
}

func (h *EditorHandler) readImageUpload(w http.ResponseWriter, r *http.Request, field, missingMessage string) ([]byte, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFileSize)
	if err := r.ParseMultipartForm(maxFileSize); err != nil {
		sendError(w, "Image is too large (10MB max)", http.StatusRequestEntityTooLarge)
		return nil, "", false
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		sendError(w, missingMessage, http.StatusBadRequest)
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		sendError(w, "Failed to read uploaded image", http.StatusInternalServerError)
		return nil, "", false
	}

	return data, header.Header.Get("Content-Type"), true
}

func (h *EditorHandler) readJSON(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		sendError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func sendJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store, max-age=0")

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode JSON response: %v", err)
	}
}

func sendError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func sessionID(r *http.Request) entities.SessionID {
	return entities.SessionID(mux.Vars(r)["id"])
}
