package services

import (
	"errors"
	"fmt"

	"collab-match-backend/internal/repository"
)

var (
	// ErrNotFound means a referenced id does not exist
	ErrNotFound = repository.ErrNotFound
	// ErrAlreadyExists means a record with the same id already exists
	ErrAlreadyExists = repository.ErrAlreadyExists

	ErrSelfInteraction = errors.New("cannot swipe on your own listing")
	ErrMatchNotFound   = errors.New("match not found")
	ErrMatchArchived   = errors.New("match is archived")
	ErrInvalidAssignee = errors.New("assignee must be one of the matched users")
	ErrEmptyContent    = errors.New("message content is empty")
	ErrNotParticipant  = errors.New("user is not a participant of this match")
	ErrForbidden       = errors.New("operation not permitted")
	ErrInvalidInput    = errors.New("invalid input")
)

// NotFoundError names the kind and id of a missing record
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// Is lets errors.Is(err, ErrNotFound) match
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func notFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
