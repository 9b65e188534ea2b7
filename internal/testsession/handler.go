package testsession

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/gate-prep/backend/internal/auth"
	"github.com/gate-prep/backend/internal/models"
	"github.com/gate-prep/backend/internal/questions"
)

type Handler struct {
	manager  *Manager
	attempts *Store
}

func NewHandler(manager *Manager, attempts *Store) *Handler {
	return &Handler{manager: manager, attempts: attempts}
}

// StartTest generates a fresh session for the authenticated user.
func (h *Handler) StartTest(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.StartTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	session, err := h.manager.Start(r.Context(), userID, req)
	if err != nil {
		writeStartError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, session.Snapshot())
}

// GetSession serves the running state for reconnecting clients.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	_, session, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}

	if session.Completed() {
		writeJSON(w, http.StatusOK, session.Result())
		return
	}
	writeJSON(w, http.StatusOK, session.Snapshot())
}

func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	_, session, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}

	var req models.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	session.Answer(req.QuestionID, req.Answer)
	writeJSON(w, http.StatusOK, session.Snapshot())
}

func (h *Handler) ToggleReview(w http.ResponseWriter, r *http.Request) {
	_, session, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}

	var req models.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	session.ToggleReview(req.QuestionID)
	writeJSON(w, http.StatusOK, session.Snapshot())
}

// SubmitTest finalizes the session. Safe to call repeatedly.
func (h *Handler) SubmitTest(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	result, err := h.manager.Submit(r.Context(), mux.Vars(r)["id"], userID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Test session not found"})
			return
		}
		log.Printf("[handler] SubmitTest error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to submit test"})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// RestartTest throws away the current session and charges a fresh one
// with the same criteria.
func (h *Handler) RestartTest(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	session, err := h.manager.Restart(r.Context(), mux.Vars(r)["id"], userID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Test session not found"})
			return
		}
		writeStartError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, session.Snapshot())
}

// SaveQuestion bookmarks one question from the session.
func (h *Handler) SaveQuestion(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	vars := mux.Vars(r)
	questionID, err := strconv.ParseInt(vars["questionID"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid question ID"})
		return
	}

	if err := h.manager.SaveQuestion(r.Context(), vars["id"], userID, questionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Question not found in session"})
			return
		}
		log.Printf("[handler] SaveQuestion error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to save question"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "saved"})
}

// ListAttempts serves the user's completed test history.
func (h *Handler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	query := r.URL.Query()
	limit := intQueryParam(query, "limit", 20)
	offset := intQueryParam(query, "offset", 0)

	attempts, total, err := h.attempts.ListAttempts(r.Context(), userID, limit, offset)
	if err != nil {
		log.Printf("[handler] ListAttempts error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list attempts"})
		return
	}

	if attempts == nil {
		attempts = []models.TestAttempt{}
	}
	writeJSON(w, http.StatusOK, models.AttemptListResponse{Attempts: attempts, Total: total})
}

func (h *Handler) sessionFromRequest(w http.ResponseWriter, r *http.Request) (int64, *Session, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return 0, nil, false
	}

	session, err := h.manager.Get(mux.Vars(r)["id"], userID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Test session not found"})
		return 0, nil, false
	}
	return userID, session, true
}

// writeStartError maps generation failures onto status codes.
func writeStartError(w http.ResponseWriter, err error) {
	var invalid *InvalidSelectionError
	var notFound *questions.NotFoundError
	var insufficient *questions.InsufficientQuestionsError
	var tokenUpdate *TokenUpdateError

	switch {
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: invalid.Error()})
	case errors.Is(err, ErrNoTokens):
		writeJSON(w, http.StatusPaymentRequired, models.ErrorResponse{Error: "No test tokens remaining. Upgrade your plan to continue."})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: notFound.Error()})
	case errors.As(err, &insufficient):
		writeJSON(w, http.StatusUnprocessableEntity, models.ErrorResponse{Error: insufficient.Error()})
	case errors.As(err, &tokenUpdate):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Could not start test, please retry"})
	default:
		log.Printf("[handler] StartTest error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to start test"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func intQueryParam(query url.Values, key string, defaultVal int) int {
	s := query.Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	return v
}
