package ingest

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gate-prep/backend/internal/models"
)

// optionLetters is the required MCQ option set, in serving order.
var optionLetters = []string{"A", "B", "C", "D"}

// BankWriter is the write surface the ingestor needs from the
// question store.
type BankWriter interface {
	QuestionTextExists(ctx context.Context, text string) (bool, error)
	InsertQuestions(ctx context.Context, qs []models.Question) error
}

// Ingestor validates bulk uploads and writes them into the bank.
type Ingestor struct {
	bank BankWriter
}

func NewIngestor(bank BankWriter) *Ingestor {
	return &Ingestor{bank: bank}
}

// Ingest runs the full pipeline: shape validation, whole-batch
// duplicate check, per-record transform, staged transactional insert.
// It returns the number of inserted questions.
func (ing *Ingestor) Ingest(ctx context.Context, payload models.BulkUploadPayload) (int, error) {
	if err := ValidatePayload(payload); err != nil {
		return 0, err
	}

	// Duplicate check runs over the raw texts before any transform so
	// a duplicate anywhere aborts the batch with nothing written.
	var duplicates []string
	for _, raw := range payload.Questions {
		if raw.Question == "" {
			continue
		}
		exists, err := ing.bank.QuestionTextExists(ctx, raw.Question)
		if err != nil {
			return 0, fmt.Errorf("duplicate check: %w", err)
		}
		if exists {
			duplicates = append(duplicates, raw.Question)
		}
	}
	if len(duplicates) > 0 {
		return 0, &DuplicateQuestionsError{Texts: duplicates}
	}

	questions, err := TransformQuestions(payload)
	if err != nil {
		return 0, err
	}

	if err := ing.bank.InsertQuestions(ctx, questions); err != nil {
		return 0, &InsertionError{Err: err}
	}

	return len(questions), nil
}

// ValidatePayload checks the top-level document shape.
func ValidatePayload(payload models.BulkUploadPayload) error {
	if payload.ExamName == "" || payload.Subject == "" || payload.Questions == nil {
		return &MalformedInputError{Detail: "required fields: exam_name, subject, and questions array"}
	}
	if len(payload.Questions) == 0 {
		return &MalformedInputError{Detail: "questions array is empty"}
	}
	return nil
}

// TransformQuestions maps every raw record into the canonical persisted
// shape, failing on the first invalid record.
func TransformQuestions(payload models.BulkUploadPayload) ([]models.Question, error) {
	if err := ValidatePayload(payload); err != nil {
		return nil, err
	}

	questions := make([]models.Question, 0, len(payload.Questions))
	for i, raw := range payload.Questions {
		q, err := transformRecord(payload, raw)
		if err != nil {
			return nil, &MalformedInputError{Detail: fmt.Sprintf("question %d: %s", i+1, err)}
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func transformRecord(payload models.BulkUploadPayload, raw models.RawQuestion) (models.Question, error) {
	if raw.Question == "" {
		return models.Question{}, fmt.Errorf("question text is required")
	}
	if raw.CorrectAnswer == nil {
		return models.Question{}, fmt.Errorf("correct answer is required")
	}

	subject := raw.Subject
	if subject == "" {
		subject = payload.Subject
	}

	q := models.Question{
		ExamType:        payload.ExamName,
		Subject:         subject,
		Topic:           subject,
		QuestionText:    raw.Question,
		Difficulty:      models.DifficultyMedium,
		Explanation:     raw.Explanation,
		QuestionPattern: patternFromType(raw.Type),
	}

	// A record is MCQ when it carries an options object with exactly
	// four entries; everything else is numerical.
	if len(raw.Options) == 4 {
		q.QuestionType = models.TypeMCQ

		var missing []string
		for _, letter := range optionLetters {
			if raw.Options[letter] == "" {
				missing = append(missing, letter)
			}
		}
		if len(missing) > 0 {
			return models.Question{}, fmt.Errorf("missing options %s", strings.Join(missing, ", "))
		}

		letter := answerString(raw.CorrectAnswer)
		if _, ok := raw.Options[letter]; !ok || len(letter) != 1 || letter < "A" || letter > "D" {
			return models.Question{}, fmt.Errorf("invalid correct answer %q, must be one of: A, B, C, D", letter)
		}

		q.Options = make([]string, 0, len(optionLetters))
		for _, l := range optionLetters {
			q.Options = append(q.Options, fmt.Sprintf("%s) %s", l, raw.Options[l]))
		}
		q.CorrectAnswer = fmt.Sprintf("%s) %s", letter, raw.Options[letter])
	} else {
		q.QuestionType = models.TypeNumerical
		q.Options = nil
		q.CorrectAnswer = answerString(raw.CorrectAnswer)
	}

	return q, nil
}

func patternFromType(t string) models.QuestionPattern {
	if t == "Theoretical" {
		return models.PatternTheoretical
	}
	return models.PatternNumerical
}

// answerString normalizes a raw correct_answer value, which JSON may
// deliver as a string or a bare number.
func answerString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
