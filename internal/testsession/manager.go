package testsession

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gate-prep/backend/internal/models"
	"github.com/gate-prep/backend/internal/questions"
)

// QuestionSelector yields the question set for one attempt.
type QuestionSelector interface {
	SelectQuestions(ctx context.Context, c questions.Criteria) ([]models.Question, error)
}

// ProfileStore is the token-balance surface the manager charges
// against.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID int64) (*models.Profile, error)
	DecrementToken(ctx context.Context, userID int64) error
}

// AttemptStore persists completed-session audit records.
type AttemptStore interface {
	InsertAttempt(ctx context.Context, attempt models.TestAttempt) error
}

// QuestionSaver copies a question into the user's saved list.
type QuestionSaver interface {
	SaveForUser(ctx context.Context, sq models.SavedQuestion) error
}

// UsageMarker bumps usage counters on served questions.
type UsageMarker interface {
	IncrementUsage(ctx context.Context, ids []int64) error
}

// Manager owns all live sessions. Sessions are in-memory; a restart of
// the process forfeits running tests but completed attempts survive in
// the attempt store.
type Manager struct {
	selector QuestionSelector
	profiles ProfileStore
	attempts AttemptStore
	saver    QuestionSaver
	usage    UsageMarker

	mu       sync.Mutex
	sessions map[string]*Session
	byUser   map[int64]string
}

func NewManager(selector QuestionSelector, profiles ProfileStore, attempts AttemptStore, saver QuestionSaver, usage UsageMarker) *Manager {
	return &Manager{
		selector: selector,
		profiles: profiles,
		attempts: attempts,
		saver:    saver,
		usage:    usage,
		sessions: make(map[string]*Session),
		byUser:   make(map[int64]string),
	}
}

// Start creates a session for the user, replacing any previous one.
// Order matters: the token gate runs before any questions are fetched,
// and the charge lands only after generation succeeded.
func (m *Manager) Start(ctx context.Context, userID int64, req models.StartTestRequest) (*Session, error) {
	req.ExamType = strings.TrimSpace(req.ExamType)
	req.Subject = strings.TrimSpace(req.Subject)
	if req.ExamType == "" {
		return nil, &InvalidSelectionError{Field: "exam_type"}
	}
	if req.Subject == "" {
		return nil, &InvalidSelectionError{Field: "subject"}
	}

	profile, err := m.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	charge := profile.AccountType != models.AccountPremium
	if charge && profile.Tokens <= 0 {
		return nil, ErrNoTokens
	}

	session := &Session{
		ID:            uuid.NewString(),
		UserID:        userID,
		ExamType:      req.ExamType,
		Subject:       req.Subject,
		SpecificTopic: req.SpecificTopic,
		Status:        StatusNotStarted,
		Answers:       make(map[int64]string),
		Marked:        make(map[int64]bool),
		StartedAt:     time.Now(),
	}

	session.Status = StatusGenerating
	selected, err := m.selector.SelectQuestions(ctx, questions.Criteria{
		ExamType:      req.ExamType,
		Subject:       req.Subject,
		QuestionType:  req.QuestionType,
		Pattern:       req.QuestionPattern,
		SpecificTopic: req.SpecificTopic,
		Mode:          questions.ModeTest,
	})
	if err != nil {
		return nil, err
	}

	if charge {
		if err := m.profiles.DecrementToken(ctx, userID); err != nil {
			return nil, &TokenUpdateError{Err: err}
		}
	}

	session.Questions = selected
	session.Status = StatusInProgress
	session.TimeRemaining = TestDurationSeconds

	if m.usage != nil {
		ids := make([]int64, len(selected))
		for i := range selected {
			ids[i] = selected[i].ID
		}
		if err := m.usage.IncrementUsage(ctx, ids); err != nil {
			log.Printf("WARN: failed to bump usage counts: %v", err)
		}
	}

	m.mu.Lock()
	if oldID, ok := m.byUser[userID]; ok {
		delete(m.sessions, oldID)
	}
	m.sessions[session.ID] = session
	m.byUser[userID] = session.ID
	m.mu.Unlock()

	return session, nil
}

// Get returns the session if it exists and belongs to the user.
// Foreign sessions are indistinguishable from missing ones.
func (m *Manager) Get(sessionID string, userID int64) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[sessionID]
	if !ok || session.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Submit finalizes a session and persists the attempt record. Repeat
// submits return the stored result without re-scoring or re-inserting.
func (m *Manager) Submit(ctx context.Context, sessionID string, userID int64) (models.ResultResponse, error) {
	session, err := m.Get(sessionID, userID)
	if err != nil {
		return models.ResultResponse{}, err
	}

	if session.Completed() {
		return session.Result(), nil
	}

	session.Submit()
	m.persistAttempt(ctx, session)
	return session.Result(), nil
}

// Restart discards the current session and starts a fresh one with the
// same criteria. A new token is charged like any other start.
func (m *Manager) Restart(ctx context.Context, sessionID string, userID int64) (*Session, error) {
	session, err := m.Get(sessionID, userID)
	if err != nil {
		return nil, err
	}

	req := models.StartTestRequest{
		ExamType:      session.ExamType,
		Subject:       session.Subject,
		SpecificTopic: session.SpecificTopic,
	}

	m.mu.Lock()
	delete(m.sessions, sessionID)
	if m.byUser[userID] == sessionID {
		delete(m.byUser, userID)
	}
	m.mu.Unlock()

	return m.Start(ctx, userID, req)
}

// SaveQuestion copies one of the session's questions into the user's
// saved list. Saving the same question twice is a no-op.
func (m *Manager) SaveQuestion(ctx context.Context, sessionID string, userID, questionID int64) error {
	session, err := m.Get(sessionID, userID)
	if err != nil {
		return err
	}

	q, ok := session.question(questionID)
	if !ok {
		return ErrSessionNotFound
	}

	return m.saver.SaveForUser(ctx, models.SavedQuestion{
		UserID:        userID,
		ExamType:      q.ExamType,
		Subject:       q.Subject,
		QuestionText:  q.QuestionText,
		QuestionType:  q.QuestionType,
		Options:       q.Options,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
		Difficulty:    q.Difficulty,
	})
}

// Run drives all session timers at one tick per second until the
// context is cancelled. Meant to run in its own goroutine.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.tickAll(ctx)
		}
	}
}

func (m *Manager) tickAll(ctx context.Context) {
	m.mu.Lock()
	live := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		live = append(live, s)
	}
	m.mu.Unlock()

	for _, session := range live {
		if session.Tick() {
			m.persistAttempt(ctx, session)
		}
	}
}

// persistAttempt writes the audit record. Failures are logged, not
// surfaced: the user already has their result in memory.
func (m *Manager) persistAttempt(ctx context.Context, session *Session) {
	if m.attempts == nil {
		return
	}
	if err := m.attempts.InsertAttempt(ctx, session.attempt()); err != nil {
		log.Printf("WARN: failed to persist attempt %s: %v", session.ID, err)
	}
}
