package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrValidation marks caller-correctable input errors.
	ErrValidation = errors.New("validation failed")
	// ErrConsistency marks data that contradicts its own invariants.
	ErrConsistency = errors.New("consistency violation")
	// ErrSessionState marks an operation invalid for the session's current state.
	ErrSessionState = errors.New("invalid session state")
	// ErrCyclicGraph marks a prerequisite graph containing a cycle.
	ErrCyclicGraph = errors.New("prerequisite graph contains a cycle")
)

type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func Invalid(field string, value any, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

type ConsistencyError struct {
	Entity string
	ID     string
	Reason string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Entity, e.ID, e.Reason)
}

func (e *ConsistencyError) Unwrap() error { return ErrConsistency }

func Inconsistent(entity, id, reason string) error {
	return &ConsistencyError{Entity: entity, ID: id, Reason: reason}
}

func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }
