package generator

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gate-prep/backend/internal/models"
)

type Handler struct {
	generator *Generator
}

func NewHandler(generator *Generator) *Handler {
	return &Handler{generator: generator}
}

// DraftQuestions produces a reviewed upload document. It never writes
// to the bank; the admin posts the returned payload to the bulk upload
// endpoint after review.
func (h *Handler) DraftQuestions(w http.ResponseWriter, r *http.Request) {
	var req DraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.ExamName == "" || req.Subject == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "exam_name and subject are required"})
		return
	}

	draft, usage, err := h.generator.DraftBatch(r.Context(), req)
	if err != nil {
		log.Printf("[handler] DraftQuestions error: %v", err)
		writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Failed to draft questions"})
		return
	}

	resp := map[string]interface{}{
		"model":   h.generator.ModelName(),
		"count":   draft.Count,
		"payload": draft.Payload,
	}
	if usage != nil {
		resp["usage"] = map[string]int{
			"prompt_tokens": usage.PromptTokens,
			"output_tokens": usage.OutputTokens,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
