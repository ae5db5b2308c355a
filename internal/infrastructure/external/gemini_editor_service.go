package external

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/davekg8/Virtual-try-on/internal/domain/repositories"
	"github.com/davekg8/Virtual-try-on/internal/domain/valueobjects"
)

const DefaultImageModel = "gemini-2.5-flash-image-preview"

// GeminiEditorService implements every editing operation against the Gemini
// image model: model photo finalization, garment application, pose
// variation, and color change.
type GeminiEditorService struct {
	genAIClient *genai.Client
	model       string
}

func NewGeminiEditorService(genAIClient *genai.Client, model string) repositories.EditorAIService {
	if model == "" {
		model = DefaultImageModel
	}

	return &GeminiEditorService{
		genAIClient: genAIClient,
		model:       model,
	}
}

func (s *GeminiEditorService) GenerateModel(ctx context.Context, photo *valueobjects.ImageData) (*valueobjects.ImageData, error) {
	slog.Info("GenerateModel", "model", s.model, "mimeType", photo.MimeType(), "dataSize", len(photo.Data()))

	prompt := strings.Join([]string{
		"You are an expert fashion photographer AI.",
		"Transform the person in this image into a full-body fashion model photo suitable for an e-commerce website.",
		"The background must be a clean, neutral studio backdrop (light gray, #f0f0f0).",
		"The person should have a neutral, professional model expression.",
		"Preserve the person's identity, unique features, and body type, but place them in a standard, relaxed standing model pose.",
		"The final image must be photorealistic.",
		"Return ONLY the final image.",
	}, " ")

	return s.generate(ctx, prompt, photo)
}

func (s *GeminiEditorService) ApplyGarment(ctx context.Context, person, garment *valueobjects.ImageData, garmentName string) (*valueobjects.ImageData, error) {
	slog.Info("ApplyGarment", "model", s.model, "garment", garmentName)

	prompt := strings.Join([]string{
		"You are an expert virtual try-on AI.",
		"You will be given a 'model image' and a 'garment image'.",
		"Your task is to create a new photorealistic image where the person from the 'model image' is wearing the garment from the 'garment image'.",
		"Crucial rules:",
		"1. Complete garment replacement: you MUST completely remove and replace the clothing item worn by the person in the 'model image' with the new garment. No part of the original clothing should be visible.",
		"2. Preserve the model: the person's face, hair, body shape, and pose from the 'model image' must remain unchanged.",
		"3. Preserve the background: the entire background from the 'model image' must be preserved perfectly.",
		"4. Apply the garment: realistically fit the new garment to the person, adapting it to their pose with natural folds, shadows, and lighting consistent with the scene.",
		"Return ONLY the final image.",
	}, " ")

	return s.generate(ctx, prompt, person, garment)
}

func (s *GeminiEditorService) GeneratePose(ctx context.Context, base *valueobjects.ImageData, poseInstruction string) (*valueobjects.ImageData, error) {
	slog.Info("GeneratePose", "model", s.model, "pose", poseInstruction)

	prompt := fmt.Sprintf(
		"You are an expert fashion photographer AI. Take this image and regenerate it from a different perspective. "+
			"The person, clothing, and background style must remain identical. "+
			"The new perspective should be: %q. Return ONLY the final image.",
		poseInstruction,
	)

	return s.generate(ctx, prompt, base)
}

func (s *GeminiEditorService) ChangeColor(ctx context.Context, base *valueobjects.ImageData, garmentName, color string) (*valueobjects.ImageData, error) {
	slog.Info("ChangeColor", "model", s.model, "garment", garmentName, "color", color)

	prompt := fmt.Sprintf(
		"You are an expert fashion image editor AI. Take this image and change the color of the garment (%q) to %q. "+
			"Keep everything else identical: the person, pose, background, lighting, and the garment's style and fit. "+
			"Only the garment's color should change. Return ONLY the final image.",
		garmentName, color,
	)

	return s.generate(ctx, prompt, base)
}

func (s *GeminiEditorService) Close() error {
	// genai.Client holds no resources that need explicit cleanup
	return nil
}

func (s *GeminiEditorService) generate(ctx context.Context, prompt string, images ...*valueobjects.ImageData) (*valueobjects.ImageData, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
	}

	for _, image := range images {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: image.MimeType(),
				Data:     image.Data(),
			},
		})
	}

	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	// gemini-2.5-flash-image-preview rejects multiple candidates and media
	// resolution settings, so the config stays empty.
	resp, err := s.genAIClient.Models.GenerateContent(
		ctx,
		s.model,
		contents,
		&genai.GenerateContentConfig{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no candidates in response")
	}

	var responseText string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			responseText = part.Text
			continue
		}

		if part.InlineData != nil {
			slog.Info("Gemini API response", "mimeType", part.InlineData.MIMEType, "dataSize", len(part.InlineData.Data))
			return valueobjects.NewImageData(part.InlineData.Data, part.InlineData.MIMEType)
		}
	}

	slog.Warn("No image data in response", "responseText", responseText)
	return nil, fmt.Errorf("no image data received from Gemini API")
}
