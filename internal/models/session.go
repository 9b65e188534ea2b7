package models

import "time"

// StartTestRequest configures one test attempt. ExamType and Subject
// are required; the rest are optional filters.
type StartTestRequest struct {
	ExamType        string `json:"exam_type"`
	Subject         string `json:"subject"`
	SpecificTopic   string `json:"specific_topic,omitempty"`
	QuestionType    string `json:"question_type,omitempty"`
	QuestionPattern string `json:"question_pattern,omitempty"`
}

// PracticeResponse is an untimed practice set: full questions with
// answers and explanations, no session handle.
type PracticeResponse struct {
	Questions []Question `json:"questions"`
	Total     int        `json:"total"`
}

type AnswerRequest struct {
	QuestionID int64  `json:"question_id"`
	Answer     string `json:"answer"`
}

type ReviewRequest struct {
	QuestionID int64 `json:"question_id"`
}

// SessionResponse is the session state served while a test is running.
// Answers and review marks are echoed back so a reconnecting client can
// restore its local state.
type SessionResponse struct {
	SessionID       string           `json:"session_id"`
	Status          string           `json:"status"`
	ExamType        string           `json:"exam_type"`
	Subject         string           `json:"subject"`
	SpecificTopic   string           `json:"specific_topic,omitempty"`
	TimeRemaining   int              `json:"time_remaining"`
	Questions       []TestQuestion   `json:"questions"`
	Answers         map[int64]string `json:"answers"`
	MarkedForReview []int64          `json:"marked_for_review"`
}

// ResultResponse is the full review payload after completion, answers
// and explanations included.
type ResultResponse struct {
	SessionID      string           `json:"session_id"`
	Status         string           `json:"status"`
	ExamType       string           `json:"exam_type"`
	Subject        string           `json:"subject"`
	Score          int              `json:"score"`
	TotalQuestions int              `json:"total_questions"`
	Questions      []Question       `json:"questions"`
	Answers        map[int64]string `json:"answers"`
}

// TestAttempt is the persisted audit record of a completed session.
// The score stored here is the server-computed value; clients never
// report their own.
type TestAttempt struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"user_id"`
	SessionID      string     `json:"session_id"`
	ExamType       string     `json:"exam_type"`
	Subject        string     `json:"subject"`
	SpecificTopic  string     `json:"specific_topic,omitempty"`
	Score          int        `json:"score"`
	TotalQuestions int        `json:"total_questions"`
	AnsweredCount  int        `json:"answered_count"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

type AttemptListResponse struct {
	Attempts []TestAttempt `json:"attempts"`
	Total    int           `json:"total"`
}
