package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/gate-prep/backend/internal/models"
)

type fakeBank struct {
	existing  map[string]bool
	inserted  []models.Question
	insertErr error
	checkErr  error
}

func (f *fakeBank) QuestionTextExists(_ context.Context, text string) (bool, error) {
	if f.checkErr != nil {
		return false, f.checkErr
	}
	return f.existing[text], nil
}

func (f *fakeBank) InsertQuestions(_ context.Context, qs []models.Question) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, qs...)
	return nil
}

func mcqRecord(text string) models.RawQuestion {
	return models.RawQuestion{
		Question:      text,
		Options:       map[string]string{"A": "3", "B": "4", "C": "5", "D": "6"},
		CorrectAnswer: "B",
		Explanation:   "Basic arithmetic.",
		Type:          "Numerical",
	}
}

func payloadWith(records ...models.RawQuestion) models.BulkUploadPayload {
	return models.BulkUploadPayload{
		ExamName:  "GATE",
		Subject:   "Engineering Mathematics",
		Questions: records,
	}
}

func TestTransformMCQ(t *testing.T) {
	qs, err := TransformQuestions(payloadWith(mcqRecord("What is 2+2?")))
	if err != nil {
		t.Fatalf("TransformQuestions returned error: %v", err)
	}
	if len(qs) != 1 {
		t.Fatalf("expected 1 question, got %d", len(qs))
	}

	q := qs[0]
	if q.QuestionType != models.TypeMCQ {
		t.Errorf("expected type MCQ, got %s", q.QuestionType)
	}
	wantOptions := []string{"A) 3", "B) 4", "C) 5", "D) 6"}
	if len(q.Options) != len(wantOptions) {
		t.Fatalf("expected %d options, got %d", len(wantOptions), len(q.Options))
	}
	for i, want := range wantOptions {
		if q.Options[i] != want {
			t.Errorf("option %d: expected %q, got %q", i, want, q.Options[i])
		}
	}
	if q.CorrectAnswer != "B) 4" {
		t.Errorf("expected correct answer %q, got %q", "B) 4", q.CorrectAnswer)
	}
	if q.Difficulty != models.DifficultyMedium {
		t.Errorf("expected MEDIUM difficulty, got %s", q.Difficulty)
	}
	if q.QuestionPattern != models.PatternNumerical {
		t.Errorf("expected NUMERICAL pattern, got %s", q.QuestionPattern)
	}
}

func TestTransformNumerical(t *testing.T) {
	record := models.RawQuestion{
		Question:      "Evaluate the limit of sin(x)/x as x approaches 0.",
		CorrectAnswer: float64(1),
		Type:          "Theoretical",
	}

	qs, err := TransformQuestions(payloadWith(record))
	if err != nil {
		t.Fatalf("TransformQuestions returned error: %v", err)
	}

	q := qs[0]
	if q.QuestionType != models.TypeNumerical {
		t.Errorf("expected type NUMERICAL, got %s", q.QuestionType)
	}
	if q.CorrectAnswer != "1" {
		t.Errorf("expected correct answer %q, got %q", "1", q.CorrectAnswer)
	}
	if len(q.Options) != 0 {
		t.Errorf("expected no options, got %v", q.Options)
	}
	if q.QuestionPattern != models.PatternTheoretical {
		t.Errorf("expected THEORETICAL pattern, got %s", q.QuestionPattern)
	}
}

func TestTransformDecimalAnswer(t *testing.T) {
	record := models.RawQuestion{
		Question:      "Compute 1/8 as a decimal.",
		CorrectAnswer: 0.125,
	}

	qs, err := TransformQuestions(payloadWith(record))
	if err != nil {
		t.Fatalf("TransformQuestions returned error: %v", err)
	}
	if qs[0].CorrectAnswer != "0.125" {
		t.Errorf("expected %q, got %q", "0.125", qs[0].CorrectAnswer)
	}
}

func TestTransformSubjectFallback(t *testing.T) {
	withOwn := mcqRecord("Q with its own subject")
	withOwn.Subject = "Signals and Systems"

	qs, err := TransformQuestions(payloadWith(withOwn, mcqRecord("Q without")))
	if err != nil {
		t.Fatalf("TransformQuestions returned error: %v", err)
	}
	if qs[0].Subject != "Signals and Systems" || qs[0].Topic != "Signals and Systems" {
		t.Errorf("record subject not honored: %q / %q", qs[0].Subject, qs[0].Topic)
	}
	if qs[1].Subject != "Engineering Mathematics" {
		t.Errorf("expected payload subject fallback, got %q", qs[1].Subject)
	}
}

func TestTransformMissingOptions(t *testing.T) {
	record := mcqRecord("Incomplete MCQ")
	record.Options = map[string]string{"A": "1", "C": "3", "D": "4", "E": "5"}

	_, err := TransformQuestions(payloadWith(record))
	var malformed *MalformedInputError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedInputError, got %v", err)
	}
	if got := malformed.Detail; got != "question 1: missing options B" {
		t.Errorf("unexpected detail: %q", got)
	}
}

func TestTransformInvalidCorrectAnswer(t *testing.T) {
	record := mcqRecord("Bad answer MCQ")
	record.CorrectAnswer = "E"

	_, err := TransformQuestions(payloadWith(record))
	var malformed *MalformedInputError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedInputError, got %v", err)
	}
}

func TestValidatePayloadShape(t *testing.T) {
	tests := []struct {
		name    string
		payload models.BulkUploadPayload
	}{
		{"missing exam name", models.BulkUploadPayload{Subject: "Math", Questions: []models.RawQuestion{mcqRecord("q")}}},
		{"missing subject", models.BulkUploadPayload{ExamName: "GATE", Questions: []models.RawQuestion{mcqRecord("q")}}},
		{"nil questions", models.BulkUploadPayload{ExamName: "GATE", Subject: "Math"}},
		{"empty questions", models.BulkUploadPayload{ExamName: "GATE", Subject: "Math", Questions: []models.RawQuestion{}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePayload(tc.payload)
			var malformed *MalformedInputError
			if !errors.As(err, &malformed) {
				t.Errorf("expected MalformedInputError, got %v", err)
			}
		})
	}
}

func TestIngestDuplicateAborts(t *testing.T) {
	bank := &fakeBank{existing: map[string]bool{"Already in bank": true}}
	ing := NewIngestor(bank)

	_, err := ing.Ingest(context.Background(),
		payloadWith(mcqRecord("Fresh question"), mcqRecord("Already in bank")))

	var dup *DuplicateQuestionsError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateQuestionsError, got %v", err)
	}
	if len(dup.Texts) != 1 || dup.Texts[0] != "Already in bank" {
		t.Errorf("unexpected duplicate list: %v", dup.Texts)
	}
	if len(bank.inserted) != 0 {
		t.Errorf("expected zero inserts after duplicate abort, got %d", len(bank.inserted))
	}
}

func TestIngestInsertFailureWrapped(t *testing.T) {
	bank := &fakeBank{insertErr: fmt.Errorf("connection reset")}
	ing := NewIngestor(bank)

	_, err := ing.Ingest(context.Background(), payloadWith(mcqRecord("q1")))

	var insertion *InsertionError
	if !errors.As(err, &insertion) {
		t.Fatalf("expected InsertionError, got %v", err)
	}
}

func TestIngestSuccess(t *testing.T) {
	bank := &fakeBank{}
	ing := NewIngestor(bank)

	n, err := ing.Ingest(context.Background(),
		payloadWith(mcqRecord("q1"), mcqRecord("q2"), mcqRecord("q3")))
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 inserted, got %d", n)
	}
	if len(bank.inserted) != 3 {
		t.Errorf("expected 3 questions in bank, got %d", len(bank.inserted))
	}
}
