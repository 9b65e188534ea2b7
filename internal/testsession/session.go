package testsession

import (
	"sync"
	"time"

	"github.com/gate-prep/backend/internal/models"
)

// Session statuses. A session is only mutable while IN_PROGRESS.
const (
	StatusNotStarted = "NOT_STARTED"
	StatusGenerating = "GENERATING"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
)

// TestDurationSeconds is the fixed timer for every attempt.
const TestDurationSeconds = 1200

// Session is one in-memory test attempt. All mutation goes through the
// methods below; the mutex makes ticker and handler access safe.
type Session struct {
	mu sync.Mutex

	ID            string
	UserID        int64
	ExamType      string
	Subject       string
	SpecificTopic string

	Status        string
	Questions     []models.Question
	Answers       map[int64]string
	Marked        map[int64]bool
	TimeRemaining int
	Score         int
	StartedAt     time.Time
	CompletedAt   time.Time
}

// Answer records or overwrites the user's answer. Ignored unless the
// session is IN_PROGRESS, so late writes after submit or expiry are
// silently dropped.
func (s *Session) Answer(questionID int64, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Status != StatusInProgress {
		return
	}
	if !s.holdsQuestion(questionID) {
		return
	}
	s.Answers[questionID] = answer
}

// ToggleReview flips the review mark for a question. Same gating as
// Answer.
func (s *Session) ToggleReview(questionID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Status != StatusInProgress {
		return
	}
	if !s.holdsQuestion(questionID) {
		return
	}
	if s.Marked[questionID] {
		delete(s.Marked, questionID)
	} else {
		s.Marked[questionID] = true
	}
}

func (s *Session) holdsQuestion(questionID int64) bool {
	for i := range s.Questions {
		if s.Questions[i].ID == questionID {
			return true
		}
	}
	return false
}

// Tick advances the timer by one second and reports whether this tick
// expired the session. The timer floors at zero and the expiry
// transition fires exactly once.
func (s *Session) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Status != StatusInProgress {
		return false
	}
	if s.TimeRemaining > 0 {
		s.TimeRemaining--
	}
	if s.TimeRemaining == 0 {
		s.complete()
		return true
	}
	return false
}

// Submit finalizes the session and computes the score. Submitting a
// completed session is a no-op returning the stored result, so the
// client can retry safely.
func (s *Session) Submit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Status == StatusCompleted {
		return
	}
	s.complete()
}

// complete must be called with the lock held.
func (s *Session) complete() {
	score := 0
	for i := range s.Questions {
		if ans, ok := s.Answers[s.Questions[i].ID]; ok && ans == s.Questions[i].CorrectAnswer {
			score++
		}
	}
	s.Score = score
	s.Status = StatusCompleted
	s.CompletedAt = time.Now()
}

// Snapshot builds the running-state response: questions stripped of
// answers and explanations.
func (s *Session) Snapshot() models.SessionResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	questions := make([]models.TestQuestion, len(s.Questions))
	for i := range s.Questions {
		questions[i] = s.Questions[i].ToTestQuestion()
	}

	answers := make(map[int64]string, len(s.Answers))
	for id, a := range s.Answers {
		answers[id] = a
	}
	marked := make([]int64, 0, len(s.Marked))
	for id := range s.Marked {
		marked = append(marked, id)
	}

	return models.SessionResponse{
		SessionID:       s.ID,
		Status:          s.Status,
		ExamType:        s.ExamType,
		Subject:         s.Subject,
		SpecificTopic:   s.SpecificTopic,
		TimeRemaining:   s.TimeRemaining,
		Questions:       questions,
		Answers:         answers,
		MarkedForReview: marked,
	}
}

// Result builds the post-completion review payload with full
// questions, correct answers and explanations.
func (s *Session) Result() models.ResultResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	questions := make([]models.Question, len(s.Questions))
	copy(questions, s.Questions)

	answers := make(map[int64]string, len(s.Answers))
	for id, a := range s.Answers {
		answers[id] = a
	}

	return models.ResultResponse{
		SessionID:      s.ID,
		Status:         s.Status,
		ExamType:       s.ExamType,
		Subject:        s.Subject,
		Score:          s.Score,
		TotalQuestions: len(s.Questions),
		Questions:      questions,
		Answers:        answers,
	}
}

// attempt builds the audit record for persistence. Valid only after
// completion.
func (s *Session) attempt() models.TestAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()

	completed := s.CompletedAt
	return models.TestAttempt{
		UserID:         s.UserID,
		SessionID:      s.ID,
		ExamType:       s.ExamType,
		Subject:        s.Subject,
		SpecificTopic:  s.SpecificTopic,
		Score:          s.Score,
		TotalQuestions: len(s.Questions),
		AnsweredCount:  len(s.Answers),
		StartedAt:      s.StartedAt,
		CompletedAt:    &completed,
	}
}

// Completed reports whether the session has finished.
func (s *Session) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Status == StatusCompleted
}

func (s *Session) question(questionID int64) (models.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Questions {
		if s.Questions[i].ID == questionID {
			return s.Questions[i], true
		}
	}
	return models.Question{}, false
}
