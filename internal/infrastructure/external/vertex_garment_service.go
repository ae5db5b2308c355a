package external

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"cloud.google.com/go/vertexai/genai"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"

	"github.com/davekg8/Virtual-try-on/internal/domain/repositories"
	"github.com/davekg8/Virtual-try-on/internal/domain/valueobjects"
	"github.com/davekg8/Virtual-try-on/model"
)

// VertexGarmentService applies garments through the dedicated Virtual
// Try-On model on Vertex AI instead of the general Gemini image model. It
// only serves the garment-apply operation; pose and color edits stay on
// Gemini.
type VertexGarmentService struct {
	projectID  string
	location   string
	vtoModel   string
	parameters *valueobjects.RenderParameters
	client     *genai.Client
	useSDK     bool
}

func NewVertexGarmentService(projectID, location, vtoModel string, parameters *valueobjects.RenderParameters, useSDK bool) (*VertexGarmentService, error) {
	if parameters == nil {
		parameters = valueobjects.DefaultRenderParameters()
	}

	var client *genai.Client
	if useSDK {
		ctx := context.Background()
		endpoint := fmt.Sprintf("%s-aiplatform.googleapis.com:443", location)
		var err error
		client, err = genai.NewClient(ctx, projectID, location, option.WithEndpoint(endpoint))
		if err != nil {
			return nil, fmt.Errorf("failed to create genai client: %w", err)
		}
	}

	return &VertexGarmentService{
		projectID:  projectID,
		location:   location,
		vtoModel:   vtoModel,
		parameters: parameters,
		client:     client,
		useSDK:     useSDK,
	}, nil
}

func (s *VertexGarmentService) ApplyGarment(ctx context.Context, person, garment *valueobjects.ImageData, garmentName string) (*valueobjects.ImageData, error) {
	person, err := person.ToJPEG()
	if err != nil {
		return nil, fmt.Errorf("failed to convert person image to JPEG: %w", err)
	}

	garment, err = garment.ToJPEG()
	if err != nil {
		return nil, fmt.Errorf("failed to convert garment image to JPEG: %w", err)
	}

	if s.useSDK {
		return s.applyWithSDK(ctx, person, garment)
	}
	return s.applyWithREST(ctx, person, garment)
}

func (s *VertexGarmentService) applyWithSDK(ctx context.Context, person, garment *valueobjects.ImageData) (*valueobjects.ImageData, error) {
	m := s.client.GenerativeModel(s.vtoModel)

	prompt := []genai.Part{
		genai.Text("person:"),
		genai.ImageData("image/jpeg", person.Data()),
		genai.Text("garment:"),
		genai.ImageData("image/jpeg", garment.Data()),
	}

	m.SetTemperature(0.4)
	m.SetTopK(32)
	m.SetTopP(1)
	m.SetMaxOutputTokens(2048)
	m.ResponseMIMEType = "image/jpeg"

	resp, err := m.GenerateContent(ctx, prompt...)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, fmt.Errorf("no content in response")
	}

	for _, part := range candidate.Content.Parts {
		if blob, ok := part.(genai.Blob); ok {
			if blob.MIMEType == "image/jpeg" || blob.MIMEType == "image/png" {
				return valueobjects.NewImageData(blob.Data, blob.MIMEType)
			}
		}
	}

	return nil, fmt.Errorf("no image found in response")
}

func (s *VertexGarmentService) applyWithREST(ctx context.Context, person, garment *valueobjects.ImageData) (*valueobjects.ImageData, error) {
	accessToken, err := s.getAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	params := s.parameters

	outputOptions := map[string]interface{}{
		"mimeType": string(params.OutputMimeType()),
	}
	if params.CompressionQuality() > 0 {
		outputOptions["compressionQuality"] = params.CompressionQuality()
	}

	parameters := map[string]interface{}{
		"addWatermark":  params.AddWatermark(),
		"baseSteps":     params.BaseSteps(),
		"sampleCount":   params.SampleCount(),
		"outputOptions": outputOptions,
	}

	// seed and watermark are mutually exclusive on the VTO endpoint
	if !params.AddWatermark() && params.Seed() > 0 {
		parameters["seed"] = params.Seed()
	}

	apiRequest := map[string]interface{}{
		"instances": []map[string]interface{}{
			{
				"personImage": map[string]interface{}{
					"image": map[string]interface{}{
						"bytesBase64Encoded": person.ToBase64(),
					},
				},
				"productImages": []map[string]interface{}{
					{
						"image": map[string]interface{}{
							"bytesBase64Encoded": garment.ToBase64(),
						},
					},
				},
			},
		},
		"parameters": parameters,
	}

	reqBody, err := json.Marshal(apiRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/publishers/google/models/%s:predict",
		s.location, s.projectID, s.location, s.vtoModel)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 300 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var predResp model.VirtualTryOnResponse
	if err := json.Unmarshal(respBody, &predResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	for _, prediction := range predResp.Predictions {
		if prediction.BytesBase64Encoded == "" {
			continue
		}

		imageBytes, err := base64.StdEncoding.DecodeString(prediction.BytesBase64Encoded)
		if err != nil {
			continue
		}

		imageData, err := valueobjects.NewImageData(imageBytes, prediction.MimeType)
		if err != nil {
			continue
		}

		return imageData, nil
	}

	return nil, fmt.Errorf("no valid image data found in response")
}

func (s *VertexGarmentService) getAccessToken(ctx context.Context) (string, error) {
	creds, err := google.FindDefaultCredentials(ctx,
		"https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		return "", fmt.Errorf("failed to find default credentials: %w", err)
	}

	token, err := creds.TokenSource.Token()
	if err != nil {
		return "", fmt.Errorf("failed to get access token: %w", err)
	}

	return token.AccessToken, nil
}

func (s *VertexGarmentService) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// garmentApplierOverride routes ApplyGarment to a dedicated backend while
// every other operation stays on the base service.
type garmentApplierOverride struct {
	repositories.EditorAIService
	applier repositories.GarmentApplier
}

// WithGarmentApplier overrides the garment-apply operation of base with the
// given applier.
func WithGarmentApplier(base repositories.EditorAIService, applier repositories.GarmentApplier) repositories.EditorAIService {
	return &garmentApplierOverride{
		EditorAIService: base,
		applier:         applier,
	}
}

func (s *garmentApplierOverride) ApplyGarment(ctx context.Context, person, garment *valueobjects.ImageData, garmentName string) (*valueobjects.ImageData, error) {
	return s.applier.ApplyGarment(ctx, person, garment, garmentName)
}

func (s *garmentApplierOverride) Close() error {
	if err := s.applier.Close(); err != nil {
		return err
	}
	return s.EditorAIService.Close()
}
