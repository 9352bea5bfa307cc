package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrUnauthenticated    = errors.New("could not validate credentials")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInactiveUser       = errors.New("inactive user")
	ErrForbidden          = errors.New("not enough permissions")

	ErrUserNotFound     = errors.New("user not found")
	ErrAnalysisNotFound = errors.New("analysis not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrFileNotFound     = errors.New("file not found")

	ErrEmailTaken        = errors.New("email already registered")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrIncorrectPassword = errors.New("incorrect current password")
	ErrSelfDelete        = errors.New("cannot delete your own account")

	ErrAnalysesNotOwned  = errors.New("some analyses not found or don't belong to user")
	ErrQuestionsNotOwned = errors.New("some questions not found or don't belong to user")
	ErrInvalidAction     = errors.New("invalid action")

	ErrFileTypeNotAllowed = errors.New("file type not allowed")
	ErrFileTooLarge       = errors.New("file size too large")
)

// ValidationError reports malformed or out-of-range input, keyed by field.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
