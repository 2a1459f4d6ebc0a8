package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("project not found")
	ErrNotLoaded    = errors.New("directory not loaded")
	ErrLastFounder  = errors.New("at least one founder is required")
	ErrFounderIndex = errors.New("founder index out of range")
)

// Write phases of a submission.
const (
	PhaseProject  = "project"
	PhaseFounders = "founders"
)

// Validation messages reported to callers.
const (
	MsgMissingProjectFields = "missing project fields"
	MsgMissingFounderFields = "missing founder fields"
	MsgInvalidProjectFields = "invalid project fields"
	MsgInvalidFounderFields = "invalid founder fields"
	MsgInvalidCriteria      = "invalid filter criteria"
)

// ValidationError reports a missing or invalid field detected before any store call.
type ValidationError struct {
	Message string
	Field   string
}

func NewValidationError(msg, field string) *ValidationError {
	return &ValidationError{Message: msg, Field: field}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Field)
}

// PersistenceError reports a write rejected by the store during the given phase.
type PersistenceError struct {
	Phase string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Phase, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// FetchError reports a failed directory load.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch directory: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
