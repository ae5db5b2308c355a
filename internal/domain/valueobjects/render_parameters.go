package valueobjects

import (
	"fmt"
)

type MimeType string

const (
	MimeTypePNG  MimeType = "image/png"
	MimeTypeJPEG MimeType = "image/jpeg"
)

// RenderParameters tunes the dedicated Virtual Try-On model. The Gemini
// backend ignores them; only the Vertex predict path consumes them.
type RenderParameters struct {
	addWatermark       bool
	baseSteps          int
	sampleCount        int
	seed               int
	outputMimeType     MimeType
	compressionQuality int
}

func NewRenderParameters(
	addWatermark bool,
	baseSteps int,
	sampleCount int,
	seed int,
	outputMimeType MimeType,
	compressionQuality int,
) (*RenderParameters, error) {
	if baseSteps < 1 || baseSteps > 100 {
		return nil, fmt.Errorf("baseSteps must be between 1 and 100, got %d", baseSteps)
	}

	if sampleCount < 1 || sampleCount > 4 {
		return nil, fmt.Errorf("sampleCount must be between 1 and 4, got %d", sampleCount)
	}

	if compressionQuality < 0 || compressionQuality > 100 {
		return nil, fmt.Errorf("compressionQuality must be between 0 and 100, got %d", compressionQuality)
	}

	return &RenderParameters{
		addWatermark:       addWatermark,
		baseSteps:          baseSteps,
		sampleCount:        sampleCount,
		seed:               seed,
		outputMimeType:     outputMimeType,
		compressionQuality: compressionQuality,
	}, nil
}

func DefaultRenderParameters() *RenderParameters {
	params, _ := NewRenderParameters(
		true,
		32,
		1,
		0,
		MimeTypePNG,
		75,
	)
	return params
}

func (p *RenderParameters) AddWatermark() bool {
	return p.addWatermark
}

func (p *RenderParameters) BaseSteps() int {
	return p.baseSteps
}

func (p *RenderParameters) SampleCount() int {
	return p.sampleCount
}

func (p *RenderParameters) Seed() int {
	return p.seed
}

func (p *RenderParameters) OutputMimeType() MimeType {
	return p.outputMimeType
}

func (p *RenderParameters) CompressionQuality() int {
	return p.compressionQuality
}
