package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"google.golang.org/genai"

	"github.com/davekg8/Virtual-try-on/internal/application/usecases"
	domainrepos "github.com/davekg8/Virtual-try-on/internal/domain/repositories"
	domainservices "github.com/davekg8/Virtual-try-on/internal/domain/services"
	"github.com/davekg8/Virtual-try-on/internal/infrastructure/api"
	"github.com/davekg8/Virtual-try-on/internal/infrastructure/external"
	"github.com/davekg8/Virtual-try-on/internal/infrastructure/repositories"
)

func main() {
	ctx := context.Background()

	// Get configuration from environment variables
	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	if geminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable is not set")
	}

	imageModel := os.Getenv("GEMINI_IMAGE_MODEL")
	if imageModel == "" {
		imageModel = external.DefaultImageModel
	}

	vtoBackend := os.Getenv("VTO_BACKEND")
	if vtoBackend == "" {
		vtoBackend = "gemini"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "tryon.db"
	}

	log.Printf("[boot] Using GEMINI_IMAGE_MODEL=%s", imageModel)
	log.Printf("[boot] VTO_BACKEND=%s (gemini=flash image model, vertex=dedicated VTO model)", vtoBackend)

	// Initialize infrastructure layer
	genAIClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: geminiAPIKey,
	})
	if err != nil {
		log.Fatalf("Failed to create GenAI client: %v", err)
	}

	aiService := external.NewGeminiEditorService(genAIClient, imageModel)

	if vtoBackend == "vertex" {
		projectID := os.Getenv("PROJECT_ID")
		if projectID == "" {
			projectID = os.Getenv("GOOGLE_CLOUD_PROJECT")
		}
		if projectID == "" {
			log.Fatal("PROJECT_ID environment variable is not set")
		}

		location := os.Getenv("LOCATION")
		if location == "" {
			location = "us-central1"
		}

		vtoModel := os.Getenv("VTO_MODEL")
		if vtoModel == "" {
			vtoModel = "virtual-try-on-preview-08-04"
		}

		useSDK := os.Getenv("USE_SDK") == "true"

		log.Printf("[boot] Using VTO_MODEL=%s", vtoModel)
		log.Printf("[boot] USE_SDK=%v (false=REST API, true=genai.Client)", useSDK)

		vertexService, err := external.NewVertexGarmentService(projectID, location, vtoModel, nil, useSDK)
		if err != nil {
			log.Fatalf("Failed to create Vertex garment service: %v", err)
		}

		aiService = external.WithGarmentApplier(aiService, vertexService)
	}
	defer aiService.Close()

	store, err := repositories.NewSQLiteStore(dbPath)
	if err != nil {
		log.Fatalf("Failed to open persistent store: %v", err)
	}
	defer store.Close()

	sessionRepository := repositories.NewMemorySessionRepository()
	imageRepository := repositories.NewMemoryImageRepository()

	wardrobeRepository, err := repositories.NewMemoryWardrobeRepository()
	if err != nil {
		log.Fatalf("Failed to create wardrobe: %v", err)
	}

	galleryRepository := repositories.NewKVGalleryRepository(store)
	imageFetcher := external.NewHTTPImageFetcher()

	// Initialize domain layer
	editorService := domainservices.NewEditorService(aiService, imageRepository, imageFetcher)
	galleryService := domainservices.NewGalleryService(ctx, galleryRepository)

	// Initialize application layer
	editorUseCase := usecases.NewEditorUseCase(sessionRepository, wardrobeRepository, imageRepository, aiService, editorService)
	galleryUseCase := usecases.NewGalleryUseCase(galleryService, editorUseCase)

	// Initialize API layer
	editorHandler := api.NewEditorHandler(editorUseCase, imageRepository)
	galleryHandler := api.NewGalleryHandler(galleryUseCase)

	// Setup routes
	r := mux.NewRouter()
	r.HandleFunc("/api/model", editorHandler.HandleCreateModel).Methods("POST")
	r.HandleFunc("/api/sessions", editorHandler.HandleStartSession).Methods("POST")
	r.HandleFunc("/api/sessions/{id}", editorHandler.HandleGetSession).Methods("GET")
	r.HandleFunc("/api/sessions/{id}", editorHandler.HandleEndSession).Methods("DELETE")
	r.HandleFunc("/api/sessions/{id}/model", editorHandler.HandleRestartSession).Methods("POST")
	r.HandleFunc("/api/sessions/{id}/garment", editorHandler.HandleApplyGarment).Methods("POST")
	r.HandleFunc("/api/sessions/{id}/undo", editorHandler.HandleRemoveLastGarment).Methods("POST")
	r.HandleFunc("/api/sessions/{id}/pose", editorHandler.HandleSelectPose).Methods("POST")
	r.HandleFunc("/api/sessions/{id}/regenerate", editorHandler.HandleRegenerate).Methods("POST")
	r.HandleFunc("/api/sessions/{id}/color", editorHandler.HandleChangeColor).Methods("POST")
	r.HandleFunc("/api/wardrobe", editorHandler.HandleWardrobe).Methods("GET")
	r.HandleFunc("/api/wardrobe", editorHandler.HandleAddGarment).Methods("POST")
	r.HandleFunc("/api/outfits", galleryHandler.HandleListOutfits).Methods("GET")
	r.HandleFunc("/api/outfits", galleryHandler.HandleSaveOutfit).Methods("POST")
	r.HandleFunc("/api/outfits/{id}", galleryHandler.HandleDeleteOutfit).Methods("DELETE")
	r.HandleFunc(domainrepos.ImageURLPrefix+"{id}", editorHandler.HandleImage).Methods("GET")
	r.HandleFunc("/healthz", editorHandler.HandleHealth).Methods("GET")

	// Static file serving (frontend assets)
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir("static/"))))

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting server on port %s", port)

	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
