package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
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

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrInternal
)

// Booking engine error codes. Validation and slot-full are expected
// outcomes of normal traffic, not bugs; conflict marks the internal
// confirmation-code collision retried by the admission path; storage
// covers backend failures where no partial state was persisted, so the
// whole operation is safe to retry.
const (
	ErrValidation ErrorCode = iota + 2000
	ErrSlotFull
	ErrConflict
	ErrStorage
)

// Error constructors
func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewValidation(message string) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: message,
	}
}

func NewSlotFull(date, timeOfDay string) *AppError {
	return &AppError{
		Code:    ErrSlotFull,
		Message: fmt.Sprintf("slot %s %s is fully booked", date, timeOfDay),
	}
}

func NewConflict(message string, err error) *AppError {
	return &AppError{
		Code:    ErrConflict,
		Message: message,
		Err:     err,
	}
}

func NewStorage(err error) *AppError {
	return &AppError{
		Code:    ErrStorage,
		Message: "storage unavailable",
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Code:    ErrForbidden,
		Message: message,
	}
}

// IsCode reports whether err wraps an AppError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

func IsNotFound(err error) bool   { return IsCode(err, ErrNotFound) }
func IsValidation(err error) bool { return IsCode(err, ErrValidation) }
func IsSlotFull(err error) bool   { return IsCode(err, ErrSlotFull) }
func IsConflict(err error) bool   { return IsCode(err, ErrConflict) }
func IsStorage(err error) bool    { return IsCode(err, ErrStorage) }
