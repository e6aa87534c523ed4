package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
// Inactive accounts are reported as not found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInsufficientFunds indicates that a debit or transfer exceeds the current balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrNotDue indicates that ROI was requested before the account's next ROI date.
var ErrNotDue = errors.New("roi not due yet")

// ErrInvalidCode indicates that an access code does not exist or cannot be used by the caller.
var ErrInvalidCode = errors.New("invalid access code")

// ErrCodeAlreadyUsed indicates that an access code has already been redeemed.
var ErrCodeAlreadyUsed = errors.New("access code already used")

// ErrCodeExpired indicates that an access code is past its expiry.
var ErrCodeExpired = errors.New("access code expired")

// ErrWithdrawalLocked indicates that the account has not completed enough ROI cycles to withdraw.
var ErrWithdrawalLocked = errors.New("withdrawal not yet unlocked")

// ErrInvalidTransition indicates a state change that the entity's state machine does not allow.
var ErrInvalidTransition = errors.New("invalid state transition")

// ErrTransient indicates a retryable infrastructure failure such as a store timeout.
var ErrTransient = errors.New("transient failure")

// AppError carries an HTTP-friendly status code alongside the underlying cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates an AppError. err may be nil.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps an error onto the HTTP status the admin API should answer with.
func StatusCode(err error) int {
	var appErr *AppError
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidCode):
		return http.StatusBadRequest
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrCodeAlreadyUsed), errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ErrInsufficientFunds), errors.Is(err, ErrNotDue),
		errors.Is(err, ErrCodeExpired), errors.Is(err, ErrWithdrawalLocked):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrTransient):
		return http.StatusServiceUnavailable
	case errors.As(err, &appErr) && appErr.Code != 0:
		return appErr.Code
	default:
		return http.StatusInternalServerError
	}
}
