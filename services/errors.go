package services

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrGameNotFound       = errors.New("game doesn't exist")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotPlayer          = errors.New("user is not part of the game")
	ErrForbidden          = errors.New("permission denied")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnknownUsername    = errors.New("no user with that username")
	ErrInvalidCredentials = errors.New("unable to log in with provided credentials")
	ErrUserHasGames       = errors.New("user has played games")
)

// NonFieldErrors is the key for errors that do not belong to a single field.
const NonFieldErrors = "non_field_errors"

// ValidationError carries per-field messages for a rejected request.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a message for field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// OrNil returns e when it holds at least one message.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func fieldError(field, msg string) *ValidationError {
	e := &ValidationError{}
	e.Add(field, msg)
	return e
}
