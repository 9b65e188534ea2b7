package questions

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gate-prep/backend/internal/auth"
	"github.com/gate-prep/backend/internal/models"
	"github.com/gorilla/mux"
)

type Handler struct {
	store    *Store
	selector *Selector
}

func NewHandler(store *Store, selector *Selector) *Handler {
	return &Handler{store: store, selector: selector}
}

// StartPractice serves an untimed practice set. Unlike a test there is
// no session, no timer, and no token charge; questions come back with
// answers and explanations so feedback is immediate.
func (h *Handler) StartPractice(w http.ResponseWriter, r *http.Request) {
	var req models.StartTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	req.ExamType = strings.TrimSpace(req.ExamType)
	req.Subject = strings.TrimSpace(req.Subject)
	if req.ExamType == "" || req.Subject == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "exam_type and subject are required"})
		return
	}

	selected, err := h.selector.SelectQuestions(r.Context(), Criteria{
		ExamType:      req.ExamType,
		Subject:       req.Subject,
		QuestionType:  req.QuestionType,
		Pattern:       req.QuestionPattern,
		SpecificTopic: req.SpecificTopic,
		Mode:          ModePractice,
	})
	if err != nil {
		var notFound *NotFoundError
		var insufficient *InsufficientQuestionsError
		switch {
		case errors.As(err, &notFound):
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: notFound.Error()})
		case errors.As(err, &insufficient):
			writeJSON(w, http.StatusUnprocessableEntity, models.ErrorResponse{Error: insufficient.Error()})
		default:
			log.Printf("[handler] StartPractice error: %v", err)
			writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to start practice"})
		}
		return
	}

	writeJSON(w, http.StatusOK, models.PracticeResponse{
		Questions: selected,
		Total:     len(selected),
	})
}

// ListExams serves the selectable exam/subject pairs.
func (h *Handler) ListExams(w http.ResponseWriter, r *http.Request) {
	exams, err := h.store.ListExams(r.Context())
	if err != nil {
		log.Printf("[handler] ListExams error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list exams"})
		return
	}
	if exams == nil {
		exams = []models.Exam{}
	}
	writeJSON(w, http.StatusOK, exams)
}

func (h *Handler) CreateExam(w http.ResponseWriter, r *http.Request) {
	var req models.CreateExamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	req.ExamType = strings.TrimSpace(req.ExamType)
	req.Subject = strings.TrimSpace(req.Subject)
	if req.ExamType == "" || req.Subject == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "exam_type and subject are required"})
		return
	}
	if req.DurationMinutes <= 0 {
		req.DurationMinutes = 20
	}

	exam, err := h.store.CreateExam(r.Context(), req)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Exam already exists"})
			return
		}
		log.Printf("[handler] CreateExam error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create exam"})
		return
	}

	writeJSON(w, http.StatusCreated, exam)
}

// ListQuestions is the admin question-bank browser.
func (h *Handler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := models.QuestionFilter{
		ExamType: query.Get("exam_type"),
		Subject:  query.Get("subject"),
		Topic:    query.Get("topic"),
	}
	if t := models.QuestionType(query.Get("question_type")); models.ValidQuestionTypes[t] {
		filter.QuestionType = t
	}
	if p := models.QuestionPattern(query.Get("question_pattern")); models.ValidQuestionPatterns[p] {
		filter.QuestionPattern = p
	}
	if d := models.Difficulty(query.Get("difficulty")); models.ValidDifficulties[d] {
		filter.Difficulties = []models.Difficulty{d}
	}

	limit := intQueryParam(query, "limit", 20)
	offset := intQueryParam(query, "offset", 0)

	questions, total, err := h.store.ListQuestions(r.Context(), filter, limit, offset)
	if err != nil {
		log.Printf("[handler] ListQuestions error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list questions"})
		return
	}

	if questions == nil {
		questions = []models.Question{}
	}
	page := 1
	if limit > 0 {
		page = offset/limit + 1
	}
	writeJSON(w, http.StatusOK, models.QuestionListResponse{
		Questions: questions,
		Total:     total,
		Page:      page,
		PageSize:  limit,
	})
}

func (h *Handler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid question ID"})
		return
	}

	if err := h.store.DeleteQuestion(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Question not found"})
			return
		}
		log.Printf("[handler] DeleteQuestion error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to delete question"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

// ── Saved Questions ─────────────────────────────────────

func (h *Handler) ListSaved(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	saved, err := h.store.ListSavedForUser(r.Context(), userID)
	if err != nil {
		log.Printf("[handler] ListSaved error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list saved questions"})
		return
	}

	if saved == nil {
		saved = []models.SavedQuestion{}
	}
	writeJSON(w, http.StatusOK, models.SavedQuestionListResponse{
		Questions: saved,
		Total:     len(saved),
	})
}

func (h *Handler) DeleteSaved(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid question ID"})
		return
	}

	if err := h.store.DeleteSavedForUser(r.Context(), userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Saved question not found"})
			return
		}
		log.Printf("[handler] DeleteSaved error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to delete saved question"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
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
