// Package errors provides typed errors for flake-detector
package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error
type ErrorType int

const (
	// ErrConfig indicates a configuration error
	ErrConfig ErrorType = iota
	// ErrContext indicates a failure while resolving the run context
	// (branch, remote URL, commit) from the environment or git
	ErrContext
	// ErrFetch indicates a baseline branch fetch failure
	ErrFetch
	// ErrDiff indicates a git diff failure
	ErrDiff
	// ErrEvent indicates an unreadable or malformed CI event payload
	ErrEvent
	// ErrValidation indicates an input validation error
	ErrValidation
)

// DetectError is the base error type for all flake-detector errors
type DetectError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error returns the error message
func (e *DetectError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", errorTypeString(e.Type), e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", errorTypeString(e.Type), e.Message)
}

// Unwrap returns the underlying cause
func (e *DetectError) Unwrap() error {
	return e.Cause
}

// New creates a new DetectError
func New(errType ErrorType, message string, cause error) *DetectError {
	return &DetectError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds context to the error
func (e *DetectError) WithContext(key string, value interface{}) *DetectError {
	e.Context[key] = value
	return e
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	var detectErr *DetectError
	if err == nil {
		return false
	}
	if errors.As(err, &detectErr) {
		return detectErr.Type == errType
	}
	return false
}

// IsFatal returns true if the error should abort the detection run.
// Context and configuration problems abort; fetch and diff failures
// degrade to an empty result and must not.
func IsFatal(err error) bool {
	var detectErr *DetectError
	if !errors.As(err, &detectErr) {
		return err != nil
	}

	switch detectErr.Type {
	case ErrConfig, ErrContext, ErrValidation:
		return true
	case ErrFetch, ErrDiff, ErrEvent:
		return false
	default:
		return false
	}
}

func errorTypeString(et ErrorType) string {
	switch et {
	case ErrConfig:
		return "CONFIG"
	case ErrContext:
		return "CONTEXT"
	case ErrFetch:
		return "FETCH"
	case ErrDiff:
		return "DIFF"
	case ErrEvent:
		return "EVENT"
	case ErrValidation:
		return "VALIDATION"
	default:
		return "UNKNOWN"
	}
}

// Convenience functions for common errors

// ConfigError creates a configuration error
func ConfigError(message string, cause error) *DetectError {
	return New(ErrConfig, message, cause)
}

// ContextError creates a run-context resolution error
func ContextError(message string, cause error) *DetectError {
	return New(ErrContext, message, cause)
}

// FetchError creates a baseline fetch error
func FetchError(message string, cause error) *DetectError {
	return New(ErrFetch, message, cause)
}

// DiffError creates a git diff error
func DiffError(message string, cause error) *DetectError {
	return New(ErrDiff, message, cause)
}

// EventError creates an event payload error
func EventError(message string, cause error) *DetectError {
	return New(ErrEvent, message, cause)
}

// ValidationError creates an input validation error
func ValidationError(message string, cause error) *DetectError {
	return New(ErrValidation, message, cause)
}
