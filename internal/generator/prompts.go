package generator

import (
	"fmt"
	"strings"
)

// DraftRequest configures one drafting call.
type DraftRequest struct {
	ExamName     string `json:"exam_name"`
	Subject      string `json:"subject"`
	Topic        string `json:"topic,omitempty"`
	QuestionType string `json:"question_type,omitempty"`
	Count        int    `json:"count,omitempty"`
}

const defaultDraftCount = 10

func DraftSystemPrompt() string {
	return `You are an experienced question setter for Indian engineering competitive exams.
You write technically precise, unambiguous questions with exactly one defensible answer.
You always respond with a single JSON document and nothing else: no preamble, no commentary.`
}

func BuildDraftUserPrompt(req DraftRequest) string {
	count := req.Count
	if count <= 0 || count > 50 {
		count = defaultDraftCount
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Write %d new %s questions for the subject %q.\n", count, req.ExamName, req.Subject)
	if req.Topic != "" {
		fmt.Fprintf(&sb, "All questions must cover the topic %q.\n", req.Topic)
	}

	switch req.QuestionType {
	case "MCQ":
		sb.WriteString("Every question must be multiple choice with exactly four options labelled A, B, C, D.\n")
	case "NUMERICAL":
		sb.WriteString("Every question must be a numerical answer question with no options.\n")
	default:
		sb.WriteString("Mix multiple-choice questions (exactly four options labelled A, B, C, D) with numerical answer questions.\n")
	}

	sb.WriteString(`
Respond with a JSON document in exactly this shape:
{
  "exam_name": "<exam name>",
  "subject": "<subject>",
  "questions": [
    {
      "question": "<full question text>",
      "options": {"A": "...", "B": "...", "C": "...", "D": "..."},
      "correct_answer": "<option letter, or the bare numeric answer for numerical questions>",
      "explanation": "<concise worked explanation>",
      "type": "<Theoretical or Numerical>"
    }
  ]
}
Numerical questions must omit the "options" field entirely.`)

	return sb.String()
}
