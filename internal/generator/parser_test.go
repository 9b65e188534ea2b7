package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/gate-prep/backend/internal/ingest"
)

const validDraftJSON = `{
  "exam_name": "GATE",
  "subject": "Engineering Mathematics",
  "questions": [
    {
      "question": "The rank of a 3x3 identity matrix is",
      "options": {"A": "0", "B": "1", "C": "2", "D": "3"},
      "correct_answer": "D",
      "explanation": "Three independent rows.",
      "type": "Numerical"
    },
    {
      "question": "The determinant of a 2x2 matrix [[2,0],[0,3]] is",
      "correct_answer": 6,
      "type": "Numerical"
    }
  ]
}`

func TestParseResponsePlainJSON(t *testing.T) {
	draft, err := ParseResponse(validDraftJSON)
	if err != nil {
		t.Fatalf("ParseResponse returned error: %v", err)
	}
	if draft.Count != 2 {
		t.Errorf("expected 2 questions, got %d", draft.Count)
	}
	if draft.Payload.ExamName != "GATE" {
		t.Errorf("unexpected exam name: %q", draft.Payload.ExamName)
	}
}

func TestParseResponseStripsCodeFences(t *testing.T) {
	fenced := "```json\n" + validDraftJSON + "\n```"
	draft, err := ParseResponse(fenced)
	if err != nil {
		t.Fatalf("ParseResponse returned error: %v", err)
	}
	if draft.Count != 2 {
		t.Errorf("expected 2 questions, got %d", draft.Count)
	}

	bareFence := "```\n" + validDraftJSON + "\n```"
	if _, err := ParseResponse(bareFence); err != nil {
		t.Errorf("bare fence not stripped: %v", err)
	}
}

func TestParseResponseRejectsNonJSON(t *testing.T) {
	if _, err := ParseResponse("Sure! Here are some questions for you."); err == nil {
		t.Fatalf("expected error for prose response")
	}
}

func TestParseResponseRejectsInvalidQuestions(t *testing.T) {
	bad := `{
  "exam_name": "GATE",
  "subject": "Engineering Mathematics",
  "questions": [
    {
      "question": "Broken MCQ",
      "options": {"A": "1", "B": "2", "C": "3", "D": "4"},
      "correct_answer": "E"
    }
  ]
}`
	_, err := ParseResponse(bad)
	var malformed *ingest.MalformedInputError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedInputError, got %v", err)
	}
}

func TestMockClientProducesValidDraft(t *testing.T) {
	resp, err := NewMockClient().Generate(context.Background(), "", "")
	if err != nil {
		t.Fatalf("mock generate failed: %v", err)
	}
	draft, err := ParseResponse(resp.Content)
	if err != nil {
		t.Fatalf("mock draft does not validate: %v", err)
	}
	if draft.Count == 0 {
		t.Errorf("mock draft is empty")
	}
}
