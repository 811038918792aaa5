package errors

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks across layers.
var (
	ErrValidation           = errors.New("validation failed")
	ErrNotFound             = errors.New("record not found")
	ErrReferentialIntegrity = errors.New("referential integrity violation")
	ErrConnection           = errors.New("store unreachable")
)

// ValidationError reports malformed or missing input for a single field.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports a referenced id that does not exist (or was deleted).
type NotFoundError struct {
	Entity string
	ID     uint
}

func NewNotFound(entity string, id uint) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ReferentialIntegrityError reports an operation that would orphan references.
type ReferentialIntegrityError struct {
	Entity     string
	ID         uint
	Referrer   string
	References int64
}

func (e *ReferentialIntegrityError) Error() string {
	if e.References > 0 {
		return fmt.Sprintf("%s %d is still referenced by %d %s record(s)", e.Entity, e.ID, e.References, e.Referrer)
	}
	return fmt.Sprintf("%s %d is still referenced by %s records", e.Entity, e.ID, e.Referrer)
}

func (e *ReferentialIntegrityError) Is(target error) bool { return target == ErrReferentialIntegrity }

// ConnectionError reports that the persistence layer could not be reached.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s: store unreachable: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

func (e *ConnectionError) Is(target error) bool { return target == ErrConnection }
