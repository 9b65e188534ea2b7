package questions

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/gate-prep/backend/internal/models"
)

const (
	// MinQuestions is the smallest acceptable test set.
	MinQuestions = 5
	// MaxQuestions is the snapshot size a session targets.
	MaxQuestions = 20
)

// Selection modes. Test mode restricts difficulty to MEDIUM/HARD.
const (
	ModePractice = "practice"
	ModeTest     = "test"
)

// Criteria describes one retrieval request. ExamType and Subject are
// exact matches; QuestionType and Pattern are skipped when empty or
// "all"; SpecificTopic is a case-insensitive substring match.
type Criteria struct {
	ExamType      string
	Subject       string
	QuestionType  string
	Pattern       string
	SpecificTopic string
	Mode          string
}

// Bank is the read surface of the question store the selector draws from.
type Bank interface {
	CountForExamSubject(ctx context.Context, examType, subject string) (int, error)
	FetchQuestions(ctx context.Context, filter models.QuestionFilter) ([]models.Question, error)
}

// Selector picks a pseudo-random question subset for one test attempt.
// When the caller's filters match nothing it falls back to the bare
// exam/subject query rather than returning an empty test; the user's
// topic/pattern preferences are silently dropped in that case.
type Selector struct {
	bank Bank

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSelector(bank Bank, rng *rand.Rand) *Selector {
	return &Selector{bank: bank, rng: rng}
}

// SelectQuestions returns between MinQuestions and MaxQuestions
// questions matching the criteria, relaxed if necessary. It fails with
// *NotFoundError when the exam/subject pair has no questions at all and
// *InsufficientQuestionsError when fewer than MinQuestions remain after
// relaxation.
func (s *Selector) SelectQuestions(ctx context.Context, c Criteria) ([]models.Question, error) {
	count, err := s.bank.CountForExamSubject(ctx, c.ExamType, c.Subject)
	if err != nil {
		return nil, fmt.Errorf("check subject: %w", err)
	}
	if count == 0 {
		return nil, &NotFoundError{ExamType: c.ExamType, Subject: c.Subject}
	}

	pool, err := s.bank.FetchQuestions(ctx, buildFilter(c))
	if err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}

	if len(pool) == 0 {
		// Relax: drop everything except exam and subject.
		pool, err = s.bank.FetchQuestions(ctx, models.QuestionFilter{
			ExamType: c.ExamType,
			Subject:  c.Subject,
		})
		if err != nil {
			return nil, fmt.Errorf("fetch relaxed questions: %w", err)
		}
	}

	if len(pool) < MinQuestions {
		return nil, &InsufficientQuestionsError{Available: len(pool)}
	}

	s.mu.Lock()
	s.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	s.mu.Unlock()

	n := len(pool)
	if n > MaxQuestions {
		n = MaxQuestions
	}

	selected := make([]models.Question, n)
	copy(selected, pool[:n])
	for i := range selected {
		if selected[i].Explanation == "" {
			selected[i].Explanation = models.DefaultExplanation
		}
	}

	return selected, nil
}

func buildFilter(c Criteria) models.QuestionFilter {
	f := models.QuestionFilter{
		ExamType: c.ExamType,
		Subject:  c.Subject,
	}

	if c.Mode == ModeTest {
		f.Difficulties = []models.Difficulty{models.DifficultyMedium, models.DifficultyHard}
	}
	if c.QuestionType != "" && c.QuestionType != "all" {
		f.QuestionType = models.QuestionType(c.QuestionType)
	}
	if c.Pattern != "" && c.Pattern != "all" {
		f.QuestionPattern = models.QuestionPattern(c.Pattern)
	}
	if t := strings.TrimSpace(c.SpecificTopic); t != "" {
		f.Topic = t
	}

	return f
}
