package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrUnsupportedPlatform = errors.New("unsupported messaging platform")
	ErrSchedulerLocked     = errors.New("another scheduler run holds the lock")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeUnsupportedPlatform = "UNSUPPORTED_PLATFORM"
	ErrCodeSendFailed          = "SEND_FAILED"
	ErrCodeSchedulerLocked     = "SCHEDULER_LOCKED"
	ErrCodeDatabaseError       = "DATABASE_ERROR"
)

// Wrap common errors with business context
func WrapUnsupportedPlatform(platform string) *BusinessError {
	return NewBusinessError(
		ErrCodeUnsupportedPlatform,
		fmt.Sprintf("No channel adapter registered for platform %q", platform),
		ErrUnsupportedPlatform,
	)
}

func WrapSendFailed(platform string, err error) *BusinessError {
	return NewBusinessError(
		ErrCodeSendFailed,
		fmt.Sprintf("Delivery via %s failed", platform),
		err,
	)
}

func WrapSchedulerLocked() *BusinessError {
	return NewBusinessError(
		ErrCodeSchedulerLocked,
		"Scheduler run skipped because the run lock is held",
		ErrSchedulerLocked,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}
