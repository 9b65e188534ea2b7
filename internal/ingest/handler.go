package ingest

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gate-prep/backend/internal/models"
)

type Handler struct {
	ingestor *Ingestor
}

func NewHandler(ingestor *Ingestor) *Handler {
	return &Handler{ingestor: ingestor}
}

// BulkUpload accepts a question document and writes it into the bank.
// Any failure leaves the bank untouched.
func (h *Handler) BulkUpload(w http.ResponseWriter, r *http.Request) {
	var payload models.BulkUploadPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	inserted, err := h.ingestor.Ingest(r.Context(), payload)
	if err != nil {
		var malformed *MalformedInputError
		var duplicates *DuplicateQuestionsError
		var insertion *InsertionError
		switch {
		case errors.As(err, &malformed):
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: malformed.Error()})
		case errors.As(err, &duplicates):
			writeJSON(w, http.StatusConflict, models.BulkUploadResponse{
				Message:    duplicates.Error(),
				Duplicates: duplicates.Texts,
			})
		case errors.As(err, &insertion):
			log.Printf("[handler] BulkUpload insert error: %v", err)
			writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to insert questions"})
		default:
			log.Printf("[handler] BulkUpload error: %v", err)
			writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Bulk upload failed"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, models.BulkUploadResponse{
		Message:  "Questions uploaded successfully",
		Inserted: inserted,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
