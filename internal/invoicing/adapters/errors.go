package adapters

import (
	"encoding/json"
	"strings"
)

// ParseErrorMessage extracts a human-readable message from a provider
// error body. Providers are inconsistent about error shapes, so this
// tries the known JSON layouts and falls back to the raw text.
func ParseErrorMessage(raw []byte) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return "empty response body"
	}

	var shape struct {
		Informacja string `json:"Informacja"`
		Message    string `json:"message"`
		Error      string `json:"error"`
		Errors     struct {
			Base []string `json:"base"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(raw, &shape); err != nil {
		return trimmed
	}
	switch {
	case shape.Informacja != "":
		return shape.Informacja
	case shape.Message != "":
		return shape.Message
	case shape.Error != "":
		return shape.Error
	case len(shape.Errors.Base) > 0:
		return strings.Join(shape.Errors.Base, "; ")
	}
	return trimmed
}
