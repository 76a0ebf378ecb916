package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by repositories, services and the HTTP layer.
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidReference = errors.New("invalid reference")
	ErrConflict         = errors.New("booking conflict")
	ErrDeletionBlocked  = errors.New("deletion blocked")
)

// InvalidReferenceError reports a booking or event that points to a record
// that does not exist or cannot be used.
type InvalidReferenceError struct {
	Entity string
	ID     string
	Reason string
}

func (e *InvalidReferenceError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid %s reference %q: %s", e.Entity, e.ID, e.Reason)
	}
	return fmt.Sprintf("invalid %s reference %q", e.Entity, e.ID)
}

func (e *InvalidReferenceError) Is(target error) bool { return target == ErrInvalidReference }

// ConflictError is returned when a booking would double-book a venue or event slot.
// BookingID names the existing booking it clashed with, when known.
type ConflictError struct {
	Reason    string
	BookingID string
}

func (e *ConflictError) Error() string { return e.Reason }

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// DeletionBlockedError is returned when a venue or event still has dependents.
type DeletionBlockedError struct {
	Entity     string
	ID         string
	Dependents int
}

func (e *DeletionBlockedError) Error() string {
	if e.Dependents <= 0 {
		return fmt.Sprintf("cannot delete %s %q: dependent records exist", e.Entity, e.ID)
	}
	return fmt.Sprintf("cannot delete %s %q: %d dependent record(s) exist", e.Entity, e.ID, e.Dependents)
}

func (e *DeletionBlockedError) Is(target error) bool { return target == ErrDeletionBlocked }
