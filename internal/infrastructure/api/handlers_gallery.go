package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/davekg8/Virtual-try-on/internal/application/usecases"
	"github.com/davekg8/Virtual-try-on/internal/domain/entities"
	"github.com/davekg8/Virtual-try-on/internal/domain/repositories"
)

type GalleryHandler struct {
	galleryUseCase *usecases.GalleryUseCase
}

func NewGalleryHandler(galleryUseCase *usecases.GalleryUseCase) *GalleryHandler {
	return &GalleryHandler{
		galleryUseCase: galleryUseCase,
	}
}

func (h *GalleryHandler) HandleListOutfits(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, map[string]any{"outfits": h.galleryUseCase.List(r.Context())})
}

// HandleSaveOutfit snapshots a session's active outfit into the gallery.
// A persistence failure still returns the saved entry; the warning tells
// the client the store and the in-memory list may diverge.
func (h *GalleryHandler) HandleSaveOutfit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID    string `json:"sessionId"`
		ThumbnailURL string `json:"thumbnailUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if body.SessionID == "" {
		sendError(w, "sessionId is required", http.StatusBadRequest)
		return
	}

	outfit, err := h.galleryUseCase.Save(r.Context(), usecases.SaveOutfitInput{
		SessionID:    entities.SessionID(body.SessionID),
		ThumbnailURL: body.ThumbnailURL,
	})

	switch {
	case errors.Is(err, entities.ErrNothingToSave):
		sendError(w, "Add at least one garment before saving the outfit", http.StatusBadRequest)
		return
	case errors.Is(err, repositories.ErrSessionNotFound):
		sendError(w, "Session not found", http.StatusNotFound)
		return
	case err != nil && outfit == nil:
		log.Printf("Failed to save outfit: %v", err)
		sendError(w, "Failed to save outfit", http.StatusInternalServerError)
		return
	}

	response := map[string]any{"outfit": outfit}
	if err != nil {
		// saved in memory but not persisted
		log.Printf("Outfit saved but not persisted: %v", err)
		response["warning"] = "Outfit saved, but persisting it failed. It may be gone after a restart."
	}

	sendJSON(w, response)
}

func (h *GalleryHandler) HandleDeleteOutfit(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.galleryUseCase.Delete(r.Context(), id); err != nil {
		// removed from memory; only persistence failed
		log.Printf("Outfit deleted but not persisted: %v", err)
		sendJSON(w, map[string]any{
			"warning": "Outfit deleted, but persisting the change failed.",
		})
		return
	}

	sendJSON(w, map[string]any{"deleted": id})
}
