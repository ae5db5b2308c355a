package external

import (
	"errors"
	"fmt"
	"testing"
)

func TestFriendlyMessage(t *testing.T) {
	tests := []struct {
		name    string
		context string
		err     error
		want    string
	}{
		{
			name:    "plain error",
			context: "Failed to apply garment",
			err:     errors.New("connection refused"),
			want:    "Failed to apply garment. connection refused",
		},
		{
			name:    "json api error",
			context: "Failed to apply garment",
			err:     errors.New(`rpc error: {"error":{"code":429,"message":"Resource exhausted","status":"RESOURCE_EXHAUSTED"}}`),
			want:    "Failed to apply garment. Resource exhausted",
		},
		{
			name:    "unsupported mime type inside json",
			context: "Failed to create model",
			err:     errors.New(`{"error":{"code":400,"message":"Unsupported MIME type: image/tiff","status":"INVALID_ARGUMENT"}}`),
			want:    "Unsupported file type. Please use a JPEG, PNG, or WEBP image.",
		},
		{
			name:    "unsupported mime type as plain text",
			context: "Failed to create model",
			err:     errors.New("Unsupported MIME type: image/bmp"),
			want:    "Unsupported file type. Please use a JPEG, PNG, or WEBP image.",
		},
		{
			name:    "malformed json keeps the raw message",
			context: "Failed to change pose",
			err:     errors.New(`server said {not json at all`),
			want:    "Failed to change pose. server said {not json at all",
		},
		{
			name:    "empty json message keeps the raw message",
			context: "Failed to change pose",
			err:     errors.New(`{"error":{}}`),
			want:    `Failed to change pose. {"error":{}}`,
		},
		{
			name:    "wrapped error",
			context: "Failed to change color",
			err:     fmt.Errorf("color generation failed: %w", errors.New("deadline exceeded")),
			want:    "Failed to change color. color generation failed: deadline exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FriendlyMessage(tt.context, tt.err); got != tt.want {
				t.Errorf("FriendlyMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
