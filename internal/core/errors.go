package core

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched by every ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrCollaborator is matched by every CollaboratorError.
	ErrCollaborator = errors.New("collaborator failed")
	// ErrSessionClosed is returned by operations on a committed or cancelled editor session.
	ErrSessionClosed = errors.New("editor session closed")
	// ErrStaleResponse is returned when an augmentation resolves after its session moved on.
	ErrStaleResponse = errors.New("stale collaborator response discarded")
	// ErrNotAllowed is returned for operations the session's state forbids.
	ErrNotAllowed = errors.New("operation not allowed in this session")
)

// ValidationError reports a rejected input. Message is shown to the operator as-is.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e ValidationError) Is(target error) bool { return target == ErrValidation }

// CollaboratorError wraps a failed or malformed extraction, generation or chat call.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *CollaboratorError) Unwrap() []error { return []error{ErrCollaborator, e.Err} }

// ErrNotFound is returned when a record or editor session id is unknown.
type ErrNotFound struct {
	Entity string
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}
