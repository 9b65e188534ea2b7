package testsession

import (
	"errors"
	"fmt"
)

// ErrNoTokens rejects test generation for free accounts with an empty
// balance. Checked before any questions are selected.
var ErrNoTokens = errors.New("no test tokens remaining")

// ErrSessionNotFound covers lookups by unknown or foreign session IDs.
// A session owned by another user is reported as not found rather than
// forbidden.
var ErrSessionNotFound = errors.New("test session not found")

// InvalidSelectionError rejects a start request with missing or
// malformed criteria.
type InvalidSelectionError struct {
	Field string
}

func (e *InvalidSelectionError) Error() string {
	return fmt.Sprintf("invalid selection: %s is required", e.Field)
}

// TokenUpdateError means the token charge failed after questions were
// already selected. The session is abandoned; nothing was consumed.
type TokenUpdateError struct {
	Err error
}

func (e *TokenUpdateError) Error() string {
	return fmt.Sprintf("failed to update token balance: %v", e.Err)
}

func (e *TokenUpdateError) Unwrap() error {
	return e.Err
}
