package questions

import "fmt"

// NotFoundError means the bank has no questions at all for the
// requested exam/subject pair.
type NotFoundError struct {
	ExamType string
	Subject  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no questions found for %s - %s", e.ExamType, e.Subject)
}

// InsufficientQuestionsError means fewer than MinQuestions qualifying
// rows remained even after filter relaxation.
type InsufficientQuestionsError struct {
	Available int
}

func (e *InsufficientQuestionsError) Error() string {
	return fmt.Sprintf("insufficient questions available: %d found, need at least %d", e.Available, MinQuestions)
}
