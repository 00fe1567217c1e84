package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrLocked indicates that the target period is locked and refuses mutation.
var ErrLocked = errors.New("period is locked")

// ErrAlreadyLocked indicates a lock request against a period that is already locked.
var ErrAlreadyLocked = errors.New("period is already locked")

// ErrLaterPeriodLocked indicates that an unlock was refused because a later
// period for the same client has already been locked against this period's
// carried-forward credit.
var ErrLaterPeriodLocked = errors.New("a later period is already locked")

// ErrAggregatorUnavailable indicates a transient failure of the VAT totals
// feed. The caller may retry the whole operation; no partial write occurred.
var ErrAggregatorUnavailable = errors.New("vat aggregator unavailable")

// AppError carries an HTTP-ish status code alongside a wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
