package external

import (
	"encoding/json"
	"strings"
)

const unsupportedFileTypeMessage = "Unsupported file type. Please use a JPEG, PNG, or WEBP image."

type apiErrorPayload struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// FriendlyMessage turns a failed external call into a user-facing string.
// Service errors often arrive JSON-wrapped; the message is unwrapped before
// pattern matching so an unsupported upload format gets its dedicated
// message instead of a raw API dump. Everything else falls back to
// "<context>. <raw message>".
func FriendlyMessage(context string, err error) string {
	raw := err.Error()
	message := raw

	if payload := extractAPIError(raw); payload != "" {
		message = payload
	}

	if strings.Contains(message, "Unsupported MIME type") {
		return unsupportedFileTypeMessage
	}

	return context + ". " + message
}

func extractAPIError(raw string) string {
	start := strings.Index(raw, "{")
	if start < 0 {
		return ""
	}

	var payload apiErrorPayload
	if err := json.Unmarshal([]byte(raw[start:]), &payload); err != nil {
		return ""
	}

	return payload.Error.Message
}
