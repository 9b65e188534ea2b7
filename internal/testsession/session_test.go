package testsession

import (
	"testing"
	"time"

	"github.com/gate-prep/backend/internal/models"
)

func newRunningSession() *Session {
	return &Session{
		ID:       "s-1",
		UserID:   7,
		ExamType: "GATE",
		Subject:  "Engineering Mathematics",
		Status:   StatusInProgress,
		Questions: []models.Question{
			{ID: 1, QuestionText: "q1", CorrectAnswer: "A) 1"},
			{ID: 2, QuestionText: "q2", CorrectAnswer: "B) 2"},
			{ID: 3, QuestionText: "q3", CorrectAnswer: "3.5"},
		},
		Answers:       make(map[int64]string),
		Marked:        make(map[int64]bool),
		TimeRemaining: TestDurationSeconds,
		StartedAt:     time.Now(),
	}
}

func TestAnswerOnlyWhileInProgress(t *testing.T) {
	s := newRunningSession()

	s.Answer(1, "A) 1")
	if s.Answers[1] != "A) 1" {
		t.Fatalf("answer not recorded while in progress")
	}

	s.Submit()
	s.Answer(2, "B) 2")
	if _, ok := s.Answers[2]; ok {
		t.Errorf("answer recorded after completion")
	}
}

func TestMutationsIgnoredBeforeStart(t *testing.T) {
	s := newRunningSession()
	s.Status = StatusNotStarted

	s.Answer(1, "A) 1")
	s.ToggleReview(1)
	if len(s.Answers) != 0 || len(s.Marked) != 0 {
		t.Errorf("session mutated before start: answers=%v marked=%v", s.Answers, s.Marked)
	}
	if s.Tick() {
		t.Errorf("timer ran before start")
	}
	if s.TimeRemaining != TestDurationSeconds {
		t.Errorf("time decremented before start: %d", s.TimeRemaining)
	}
}

func TestAnswerUnknownQuestionIgnored(t *testing.T) {
	s := newRunningSession()
	s.Answer(99, "whatever")
	if len(s.Answers) != 0 {
		t.Errorf("answer for unknown question was recorded")
	}
}

func TestToggleReview(t *testing.T) {
	s := newRunningSession()

	s.ToggleReview(2)
	if !s.Marked[2] {
		t.Fatalf("review mark not set")
	}
	s.ToggleReview(2)
	if s.Marked[2] {
		t.Errorf("review mark not cleared on second toggle")
	}
}

func TestScoringIsExactMatch(t *testing.T) {
	s := newRunningSession()
	s.Answer(1, "A) 1") // correct
	s.Answer(2, "b) 2") // wrong case, no credit
	s.Answer(3, "3.50") // different string, no credit

	s.Submit()

	if s.Score != 1 {
		t.Errorf("expected score 1, got %d", s.Score)
	}
	if s.Status != StatusCompleted {
		t.Errorf("expected COMPLETED, got %s", s.Status)
	}
}

func TestSubmitIdempotent(t *testing.T) {
	s := newRunningSession()
	s.Answer(1, "A) 1")
	s.Submit()

	first := s.Score
	completedAt := s.CompletedAt

	s.Submit()
	if s.Score != first {
		t.Errorf("score changed on resubmit: %d -> %d", first, s.Score)
	}
	if !s.CompletedAt.Equal(completedAt) {
		t.Errorf("completion time changed on resubmit")
	}
}

func TestTickFloorsAtZeroAndExpiresOnce(t *testing.T) {
	s := newRunningSession()
	s.TimeRemaining = 2
	s.Answer(1, "A) 1")

	if s.Tick() {
		t.Fatalf("expired with time remaining")
	}
	if !s.Tick() {
		t.Fatalf("expected expiry at zero")
	}
	if s.Status != StatusCompleted {
		t.Errorf("expected COMPLETED after expiry, got %s", s.Status)
	}
	if s.Score != 1 {
		t.Errorf("expiry did not score answers: got %d", s.Score)
	}

	// Completed sessions stop ticking.
	if s.Tick() {
		t.Errorf("expiry fired twice")
	}
	if s.TimeRemaining != 0 {
		t.Errorf("timer went below zero: %d", s.TimeRemaining)
	}
}

func TestSnapshotWithholdsAnswers(t *testing.T) {
	s := newRunningSession()
	s.Answer(1, "A) 1")
	s.ToggleReview(3)

	snap := s.Snapshot()
	if len(snap.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(snap.Questions))
	}
	if snap.Answers[1] != "A) 1" {
		t.Errorf("snapshot missing recorded answer")
	}
	if len(snap.MarkedForReview) != 1 || snap.MarkedForReview[0] != 3 {
		t.Errorf("snapshot missing review mark: %v", snap.MarkedForReview)
	}
	if snap.TimeRemaining != TestDurationSeconds {
		t.Errorf("unexpected time remaining: %d", snap.TimeRemaining)
	}
}

func TestResultIncludesFullQuestions(t *testing.T) {
	s := newRunningSession()
	s.Answer(1, "A) 1")
	s.Submit()

	res := s.Result()
	if res.Score != 1 || res.TotalQuestions != 3 {
		t.Errorf("unexpected result: score=%d total=%d", res.Score, res.TotalQuestions)
	}
	if res.Questions[0].CorrectAnswer != "A) 1" {
		t.Errorf("result should expose correct answers")
	}
}
