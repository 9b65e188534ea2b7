package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gate-prep/backend/internal/ingest"
	"github.com/gate-prep/backend/internal/models"
)

// Draft is a parsed, validated model response ready for admin review.
// Payload is exactly what an admin would POST to the bulk upload
// endpoint.
type Draft struct {
	Payload models.BulkUploadPayload `json:"payload"`
	Count   int                      `json:"count"`
}

// ParseResponse strips markdown fences, decodes the document, and runs
// it through the same validation the bulk upload path uses. A draft
// that fails here never reaches the admin.
func ParseResponse(responseBody string) (*Draft, error) {
	cleaned := stripCodeFences(responseBody)

	var payload models.BulkUploadPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	transformed, err := ingest.TransformQuestions(payload)
	if err != nil {
		return nil, err
	}

	return &Draft{Payload: payload, Count: len(transformed)}, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}
