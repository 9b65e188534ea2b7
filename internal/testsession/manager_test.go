package testsession

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/gate-prep/backend/internal/models"
	"github.com/gate-prep/backend/internal/questions"
)

type fakeSelector struct {
	calls     int
	questions []models.Question
	err       error
}

func (f *fakeSelector) SelectQuestions(_ context.Context, _ questions.Criteria) ([]models.Question, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.questions, nil
}

type fakeProfiles struct {
	profile      models.Profile
	decrements   int
	decrementErr error
}

func (f *fakeProfiles) GetProfile(_ context.Context, _ int64) (*models.Profile, error) {
	p := f.profile
	return &p, nil
}

func (f *fakeProfiles) DecrementToken(_ context.Context, _ int64) error {
	if f.decrementErr != nil {
		return f.decrementErr
	}
	f.decrements++
	f.profile.Tokens--
	return nil
}

type fakeAttempts struct {
	inserted []models.TestAttempt
}

func (f *fakeAttempts) InsertAttempt(_ context.Context, a models.TestAttempt) error {
	for _, existing := range f.inserted {
		if existing.SessionID == a.SessionID {
			return nil
		}
	}
	f.inserted = append(f.inserted, a)
	return nil
}

type fakeSaver struct {
	saved []models.SavedQuestion
}

func (f *fakeSaver) SaveForUser(_ context.Context, sq models.SavedQuestion) error {
	f.saved = append(f.saved, sq)
	return nil
}

func questionSet(n int) []models.Question {
	qs := make([]models.Question, n)
	for i := range qs {
		qs[i] = models.Question{
			ID:            int64(i + 1),
			ExamType:      "GATE",
			Subject:       "Engineering Mathematics",
			QuestionText:  fmt.Sprintf("question %d", i+1),
			CorrectAnswer: fmt.Sprintf("A) answer %d", i+1),
		}
	}
	return qs
}

func freeProfile(tokens int) models.Profile {
	return models.Profile{UserID: 7, Tokens: tokens, AccountType: models.AccountFree}
}

func startRequest() models.StartTestRequest {
	return models.StartTestRequest{ExamType: "GATE", Subject: "Engineering Mathematics"}
}

func newTestManager(selector *fakeSelector, profiles *fakeProfiles) (*Manager, *fakeAttempts, *fakeSaver) {
	attempts := &fakeAttempts{}
	saver := &fakeSaver{}
	return NewManager(selector, profiles, attempts, saver, nil), attempts, saver
}

func TestStartRequiresExamAndSubject(t *testing.T) {
	selector := &fakeSelector{questions: questionSet(10)}
	m, _, _ := newTestManager(selector, &fakeProfiles{profile: freeProfile(5)})

	_, err := m.Start(context.Background(), 7, models.StartTestRequest{Subject: "Math"})
	var invalid *InvalidSelectionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidSelectionError, got %v", err)
	}
	if selector.calls != 0 {
		t.Errorf("selector called despite invalid request")
	}
}

func TestStartRejectsExhaustedFreeAccount(t *testing.T) {
	selector := &fakeSelector{questions: questionSet(10)}
	m, _, _ := newTestManager(selector, &fakeProfiles{profile: freeProfile(0)})

	_, err := m.Start(context.Background(), 7, startRequest())
	if !errors.Is(err, ErrNoTokens) {
		t.Fatalf("expected ErrNoTokens, got %v", err)
	}
	if selector.calls != 0 {
		t.Errorf("questions were selected before the token gate")
	}
}

func TestStartChargesFreeAccountAfterGeneration(t *testing.T) {
	selector := &fakeSelector{questions: questionSet(10)}
	profiles := &fakeProfiles{profile: freeProfile(3)}
	m, _, _ := newTestManager(selector, profiles)

	session, err := m.Start(context.Background(), 7, startRequest())
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if profiles.decrements != 1 {
		t.Errorf("expected exactly 1 token charge, got %d", profiles.decrements)
	}
	if session.Status != StatusInProgress {
		t.Errorf("expected IN_PROGRESS, got %s", session.Status)
	}
	if session.TimeRemaining != TestDurationSeconds {
		t.Errorf("expected %d seconds, got %d", TestDurationSeconds, session.TimeRemaining)
	}
}

func TestStartDoesNotChargePremium(t *testing.T) {
	selector := &fakeSelector{questions: questionSet(10)}
	profiles := &fakeProfiles{profile: models.Profile{UserID: 7, Tokens: 0, AccountType: models.AccountPremium}}
	m, _, _ := newTestManager(selector, profiles)

	if _, err := m.Start(context.Background(), 7, startRequest()); err != nil {
		t.Fatalf("premium start failed: %v", err)
	}
	if profiles.decrements != 0 {
		t.Errorf("premium account was charged")
	}
}

func TestStartSelectorFailureLeavesBalanceUntouched(t *testing.T) {
	selector := &fakeSelector{err: &questions.InsufficientQuestionsError{Available: 2}}
	profiles := &fakeProfiles{profile: freeProfile(3)}
	m, _, _ := newTestManager(selector, profiles)

	_, err := m.Start(context.Background(), 7, startRequest())
	var insufficient *questions.InsufficientQuestionsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientQuestionsError, got %v", err)
	}
	if profiles.decrements != 0 {
		t.Errorf("token charged despite failed generation")
	}
}

func TestStartTokenChargeFailureAborts(t *testing.T) {
	selector := &fakeSelector{questions: questionSet(10)}
	profiles := &fakeProfiles{profile: freeProfile(3), decrementErr: fmt.Errorf("conflict")}
	m, _, _ := newTestManager(selector, profiles)

	_, err := m.Start(context.Background(), 7, startRequest())
	var tokenErr *TokenUpdateError
	if !errors.As(err, &tokenErr) {
		t.Fatalf("expected TokenUpdateError, got %v", err)
	}

	if _, ok := m.byUser[7]; ok {
		t.Errorf("aborted session left registered")
	}
}

func TestStartReplacesPreviousSession(t *testing.T) {
	selector := &fakeSelector{questions: questionSet(10)}
	m, _, _ := newTestManager(selector, &fakeProfiles{profile: freeProfile(5)})

	first, err := m.Start(context.Background(), 7, startRequest())
	if err != nil {
		t.Fatalf("first start failed: %v", err)
	}
	second, err := m.Start(context.Background(), 7, startRequest())
	if err != nil {
		t.Fatalf("second start failed: %v", err)
	}

	if _, err := m.Get(first.ID, 7); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("old session still reachable")
	}
	if _, err := m.Get(second.ID, 7); err != nil {
		t.Errorf("new session not reachable: %v", err)
	}
}

func TestGetHidesForeignSessions(t *testing.T) {
	selector := &fakeSelector{questions: questionSet(10)}
	m, _, _ := newTestManager(selector, &fakeProfiles{profile: freeProfile(5)})

	session, err := m.Start(context.Background(), 7, startRequest())
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	if _, err := m.Get(session.ID, 8); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("foreign user could reach the session: %v", err)
	}
}

func TestSubmitPersistsAttemptOnce(t *testing.T) {
	selector := &fakeSelector{questions: questionSet(10)}
	m, attempts, _ := newTestManager(selector, &fakeProfiles{profile: freeProfile(5)})

	session, err := m.Start(context.Background(), 7, startRequest())
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	session.Answer(1, "A) answer 1")

	first, err := m.Submit(context.Background(), session.ID, 7)
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if first.Score != 1 {
		t.Errorf("expected score 1, got %d", first.Score)
	}

	second, err := m.Submit(context.Background(), session.ID, 7)
	if err != nil {
		t.Fatalf("resubmit returned error: %v", err)
	}
	if second.Score != first.Score {
		t.Errorf("resubmit changed score")
	}
	if len(attempts.inserted) != 1 {
		t.Errorf("expected 1 persisted attempt, got %d", len(attempts.inserted))
	}
	if attempts.inserted[0].Score != 1 || attempts.inserted[0].TotalQuestions != 10 {
		t.Errorf("unexpected attempt record: %+v", attempts.inserted[0])
	}
}

func TestRestartChargesAgain(t *testing.T) {
	selector := &fakeSelector{questions: questionSet(10)}
	profiles := &fakeProfiles{profile: freeProfile(3)}
	m, _, _ := newTestManager(selector, profiles)

	session, err := m.Start(context.Background(), 7, startRequest())
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	fresh, err := m.Restart(context.Background(), session.ID, 7)
	if err != nil {
		t.Fatalf("Restart returned error: %v", err)
	}
	if fresh.ID == session.ID {
		t.Errorf("restart reused the session ID")
	}
	if profiles.decrements != 2 {
		t.Errorf("expected 2 token charges across start+restart, got %d", profiles.decrements)
	}
	if fresh.ExamType != session.ExamType || fresh.Subject != session.Subject {
		t.Errorf("restart changed criteria")
	}
}

func TestSaveQuestionCopiesFromSession(t *testing.T) {
	selector := &fakeSelector{questions: questionSet(10)}
	m, _, saver := newTestManager(selector, &fakeProfiles{profile: freeProfile(5)})

	session, err := m.Start(context.Background(), 7, startRequest())
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	if err := m.SaveQuestion(context.Background(), session.ID, 7, 3); err != nil {
		t.Fatalf("SaveQuestion returned error: %v", err)
	}
	if len(saver.saved) != 1 {
		t.Fatalf("expected 1 saved question, got %d", len(saver.saved))
	}
	if saver.saved[0].QuestionText != "question 3" || saver.saved[0].UserID != 7 {
		t.Errorf("unexpected saved question: %+v", saver.saved[0])
	}

	if err := m.SaveQuestion(context.Background(), session.ID, 7, 99); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound for unknown question, got %v", err)
	}
}
