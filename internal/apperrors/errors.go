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

// ErrConflict indicates that the resource is in a state that does not allow the operation.
var ErrConflict = errors.New("resource state conflict")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// Ledger errors. These abort the enclosing database transaction and propagate
// to the caller unchanged; there is no best-effort posting.
var (
	// ErrImbalancedEntry is returned when the debit and credit totals of an
	// entry differ by more than the money tolerance. Never auto-corrected.
	ErrImbalancedEntry = errors.New("entry debits and credits do not balance")

	// ErrUnknownAccount is returned when a line references an account code
	// that does not exist or is inactive.
	ErrUnknownAccount = errors.New("unknown or inactive account")

	// ErrEntryNotFound is returned by reverse/resync when no unique matching
	// entry exists.
	ErrEntryNotFound = errors.New("journal entry not found")

	// ErrAlreadyVoided is returned when reversing an entry that is already VOID.
	ErrAlreadyVoided = errors.New("journal entry already voided")

	// ErrOverpaymentRejected is returned when a payment would exceed the
	// invoice's remaining balance. A business-rule violation, not a data error.
	ErrOverpaymentRejected = errors.New("payment exceeds invoice remaining balance")

	// ErrReconciliationCompleted is returned when mutating a COMPLETED
	// reconciliation; a new period must be opened instead.
	ErrReconciliationCompleted = errors.New("reconciliation already completed")
)

// AppError carries a status code alongside a message and an optional cause.
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

// NewAppError creates an AppError wrapping an underlying cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that satisfies errors.Is(err, ErrNotFound).
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
