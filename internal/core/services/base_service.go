package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/investment_bot/internal/apperrors"
	"github.com/SscSPs/investment_bot/internal/middleware"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// BaseService provides common functionality for all services
type BaseService struct {
	clock            func() time.Time
	operationTimeout time.Duration
}

// ServiceOption is a functional option shared by every service constructor
type ServiceOption func(*BaseService)

// WithClock replaces time.Now, mainly for tests.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *BaseService) {
		s.clock = clock
	}
}

// WithOperationTimeout bounds each store operation. Zero disables the bound.
func WithOperationTimeout(d time.Duration) ServiceOption {
	return func(s *BaseService) {
		s.operationTimeout = d
	}
}

func newBaseService(options ...ServiceOption) BaseService {
	base := BaseService{clock: time.Now}
	for _, option := range options {
		option(&base)
	}
	return base
}

func (s *BaseService) now() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}

// withTimeout runs fn under the operation timeout. A deadline hit inside fn is reported as
// apperrors.ErrTransient so callers can retry.
func (s *BaseService) withTimeout(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.operationTimeout <= 0 {
		return fn(ctx)
	}
	opCtx, cancel := context.WithTimeout(ctx, s.operationTimeout)
	defer cancel()

	err := fn(opCtx)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("%w: operation timed out after %s: %v", apperrors.ErrTransient, s.operationTimeout, err)
	}
	return err
}

// validateRequest runs struct tag validation and wraps failures as apperrors.ErrValidation.
func validateRequest(req any) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return nil
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// LogOutcome logs err at error level unless it is an expected business rejection,
// which is logged at info level.
func (s *BaseService) LogOutcome(ctx context.Context, err error, msg string, keyvals ...any) {
	if isBusinessError(err) {
		s.LogInfo(ctx, msg, append([]any{slog.String("reason", err.Error())}, keyvals...)...)
		return
	}
	s.LogError(ctx, err, msg, keyvals...)
}

func isBusinessError(err error) bool {
	for _, target := range []error{
		apperrors.ErrNotFound, apperrors.ErrValidation, apperrors.ErrDuplicate,
		apperrors.ErrInsufficientFunds, apperrors.ErrNotDue, apperrors.ErrInvalidCode,
		apperrors.ErrCodeAlreadyUsed, apperrors.ErrCodeExpired, apperrors.ErrWithdrawalLocked,
		apperrors.ErrInvalidTransition,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
