package engine

import (
	"errors"
	"fmt"
)

// PreconditionError reports a caller bug: the engine was invoked with a
// context it cannot work with. Untrusted snapshot data never produces one.
type PreconditionError struct {
	// Code identifies the violated precondition.
	Code PreconditionCode

	// Message is a human-readable description.
	Message string

	// ComponentType names the offending type for ErrCodeMissingInitializer.
	ComponentType string
}

// PreconditionCode categorizes precondition violations.
type PreconditionCode string

const (
	// ErrCodeEmptyCurriculum indicates the curriculum defines nothing.
	ErrCodeEmptyCurriculum PreconditionCode = "EMPTY_CURRICULUM"

	// ErrCodeMissingCollaborator indicates a nil registry or clock.
	ErrCodeMissingCollaborator PreconditionCode = "MISSING_COLLABORATOR"

	// ErrCodeMissingInitializer indicates a curriculum component type with
	// no registered initializer.
	ErrCodeMissingInitializer PreconditionCode = "MISSING_INITIALIZER"
)

// Error implements the error interface.
func (e *PreconditionError) Error() string {
	if e.ComponentType != "" {
		return fmt.Sprintf("%s: %s (type=%s)", e.Code, e.Message, e.ComponentType)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsPreconditionError returns true if err is or wraps a PreconditionError.
func IsPreconditionError(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

// IsEmptyCurriculum returns true if err reports an empty curriculum.
func IsEmptyCurriculum(err error) bool {
	var pe *PreconditionError
	if errors.As(err, &pe) {
		return pe.Code == ErrCodeEmptyCurriculum
	}
	return false
}
