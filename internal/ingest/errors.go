package ingest

import (
	"fmt"
	"strings"
)

// MalformedInputError covers payload-shape and per-record validation
// failures. Detail is safe to surface to the admin verbatim.
type MalformedInputError struct {
	Detail string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("invalid upload: %s", e.Detail)
}

// DuplicateQuestionsError aborts the whole batch; Texts lists every
// question whose exact text already exists in the bank.
type DuplicateQuestionsError struct {
	Texts []string
}

func (e *DuplicateQuestionsError) Error() string {
	return fmt.Sprintf("%d duplicate questions found: %s", len(e.Texts), strings.Join(e.Texts, "; "))
}

// InsertionError wraps a failed batch write. Inserts run inside a
// single transaction, so nothing was committed.
type InsertionError struct {
	Err error
}

func (e *InsertionError) Error() string {
	return fmt.Sprintf("failed to insert questions: %v", e.Err)
}

func (e *InsertionError) Unwrap() error {
	return e.Err
}
