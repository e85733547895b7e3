package booking

import (
	"errors"
	"fmt"
)

// ErrSlotTaken is returned by AppointmentStore.Create when the store itself
// rejects a duplicate active slot; the engine surfaces it as a ConflictError.
var ErrSlotTaken = errors.New("slot already booked")

// ValidationError marks malformed, missing, or out-of-policy input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError marks a referenced entity that does not exist.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// AuthorizationError marks a caller whose role or ownership does not permit
// the operation.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

// ConflictError marks a booking attempt against an occupied slot.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...interface{}) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

func forbiddenf(format string, args ...interface{}) error {
	return &AuthorizationError{Message: fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...interface{}) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}
