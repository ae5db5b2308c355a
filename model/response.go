package model

// VirtualTryOnResponse is the predict response of the dedicated Virtual
// Try-On model on Vertex AI.
type VirtualTryOnResponse struct {
	Predictions []Prediction `json:"predictions"`
}

// Prediction is a single generated image.
type Prediction struct {
	MimeType           string                 `json:"mimeType"`
	BytesBase64Encoded string                 `json:"bytesBase64Encoded"`
	SafetyAttributes   map[string]interface{} `json:"safetyAttributes,omitempty"`
}
