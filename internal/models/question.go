package models

import (
	"time"

	"github.com/lib/pq"
)

type QuestionType string

const (
	TypeMCQ       QuestionType = "MCQ"
	TypeNumerical QuestionType = "NUMERICAL"
)

var ValidQuestionTypes = map[QuestionType]bool{
	TypeMCQ:       true,
	TypeNumerical: true,
}

type QuestionPattern string

const (
	PatternTheoretical QuestionPattern = "THEORETICAL"
	PatternNumerical   QuestionPattern = "NUMERICAL"
)

var ValidQuestionPatterns = map[QuestionPattern]bool{
	PatternTheoretical: true,
	PatternNumerical:   true,
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

var ValidDifficulties = map[Difficulty]bool{
	DifficultyEasy:   true,
	DifficultyMedium: true,
	DifficultyHard:   true,
}

// DefaultExplanation is substituted when a bank row has no explanation.
const DefaultExplanation = "Explanation not available"

// ── Core Structs ───────────────────────────────────────

// Question is the canonical shape persisted in master_questions.
// For MCQ questions Options holds exactly four labeled strings
// ("A) ..." through "D) ...") and CorrectAnswer equals one of them;
// for NUMERICAL questions Options is empty and CorrectAnswer is the
// string form of the value.
type Question struct {
	ID              int64           `json:"id"`
	ExamType        string          `json:"exam_type"`
	Subject         string          `json:"subject"`
	Topic           string          `json:"topic"`
	QuestionText    string          `json:"question_text"`
	QuestionType    QuestionType    `json:"question_type"`
	QuestionPattern QuestionPattern `json:"question_pattern"`
	Difficulty      Difficulty      `json:"difficulty"`
	Options         pq.StringArray  `json:"options"`
	CorrectAnswer   string          `json:"correct_answer"`
	Explanation     string          `json:"explanation"`
	UsageCount      int             `json:"usage_count"`
	CreatedAt       time.Time       `json:"created_at"`
}

// TestQuestion is a question as served during an active test: the
// answer and explanation are withheld until the session completes.
type TestQuestion struct {
	ID              int64           `json:"id"`
	ExamType        string          `json:"exam_type"`
	Subject         string          `json:"subject"`
	Topic           string          `json:"topic"`
	QuestionText    string          `json:"question_text"`
	QuestionType    QuestionType    `json:"question_type"`
	QuestionPattern QuestionPattern `json:"question_pattern"`
	Difficulty      Difficulty      `json:"difficulty"`
	Options         []string        `json:"options,omitempty"`
}

func (q Question) ToTestQuestion() TestQuestion {
	return TestQuestion{
		ID:              q.ID,
		ExamType:        q.ExamType,
		Subject:         q.Subject,
		Topic:           q.Topic,
		QuestionText:    q.QuestionText,
		QuestionType:    q.QuestionType,
		QuestionPattern: q.QuestionPattern,
		Difficulty:      q.Difficulty,
		Options:         q.Options,
	}
}

// SavedQuestion is the denormalized copy kept per user.
type SavedQuestion struct {
	ID            int64          `json:"id"`
	UserID        int64          `json:"user_id"`
	ExamType      string         `json:"exam_type"`
	Subject       string         `json:"subject"`
	QuestionText  string         `json:"question_text"`
	QuestionType  QuestionType   `json:"question_type"`
	Options       pq.StringArray `json:"options"`
	CorrectAnswer string         `json:"correct_answer"`
	Explanation   string         `json:"explanation"`
	Difficulty    Difficulty     `json:"difficulty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Exam is one selectable exam/subject pair.
type Exam struct {
	ID              int64     `json:"id"`
	ExamType        string    `json:"exam_type"`
	Subject         string    `json:"subject"`
	DurationMinutes int       `json:"duration_minutes"`
	CreatedAt       time.Time `json:"created_at"`
}

// ── Bulk Ingestion Types ────────────────────────────────

// BulkUploadPayload is the admin bulk-upload document.
type BulkUploadPayload struct {
	ExamName  string        `json:"exam_name"`
	Subject   string        `json:"subject"`
	Questions []RawQuestion `json:"questions"`
}

// RawQuestion is one record of a bulk upload before validation.
// CorrectAnswer is deliberately untyped: MCQ records carry a letter,
// numerical records may carry a bare number.
type RawQuestion struct {
	Question      string            `json:"question"`
	Options       map[string]string `json:"options,omitempty"`
	CorrectAnswer interface{}       `json:"correct_answer"`
	Explanation   string            `json:"explanation,omitempty"`
	Type          string            `json:"type,omitempty"`
	Subject       string            `json:"subject,omitempty"`
}

type BulkUploadResponse struct {
	Inserted   int      `json:"inserted"`
	Message    string   `json:"message"`
	Duplicates []string `json:"duplicates,omitempty"`
}

// ── Listing / Admin Types ───────────────────────────────

type QuestionFilter struct {
	ExamType        string
	Subject         string
	Topic           string
	QuestionType    QuestionType
	QuestionPattern QuestionPattern
	Difficulties    []Difficulty
}

type QuestionListResponse struct {
	Questions []Question `json:"questions"`
	Total     int        `json:"total"`
	Page      int        `json:"page"`
	PageSize  int        `json:"page_size"`
}

type SavedQuestionListResponse struct {
	Questions []SavedQuestion `json:"questions"`
	Total     int             `json:"total"`
}

type CreateExamRequest struct {
	ExamType        string `json:"exam_type"`
	Subject         string `json:"subject"`
	DurationMinutes int    `json:"duration_minutes"`
}
