// Package errors provides the error vocabulary shared by the taskstack
// engine, its storage backends and its outer surfaces (CLI, HTTP, TUI).
//
// # Error Types
//
// Semantic errors describe what went wrong from the caller's point of view:
//   - ValidationError: the input was rejected (empty title, bad importance, ...)
//   - NotFoundError: a task or slice id is not present in the supplied data
//   - TransitionError: a lifecycle action is not allowed in the slice's state
//
// Domain errors describe failures of a subsystem:
//   - StoreError: a storage backend operation failed
//
// # Usage
//
//	err := errors.NewNotFoundError("slice", id).WithCause(errors.ErrSliceNotFound)
//	if errors.Is(err, errors.ErrNotFound) { ... }
//
//	var v *errors.ValidationError
//	if errors.As(err, &v) { ... }
//
// # Classification
//
// [IsUserFacing] reports whether an error message can be shown as-is, and
// [IsRetryable] whether repeating the operation might succeed.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions so callers only import this package.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

var (
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
	// ErrNotFound indicates that a referenced resource does not exist.
	ErrNotFound = New("not found")
	// ErrTaskNotFound indicates that a task id could not be resolved.
	ErrTaskNotFound = New("task not found")
	// ErrSliceNotFound indicates that a slice id could not be resolved.
	ErrSliceNotFound = New("slice not found")
	// ErrUnsupportedCategory indicates an explicit category outside the catalog.
	ErrUnsupportedCategory = New("unsupported category")
	// ErrInvalidTransition indicates a lifecycle action on a terminal slice.
	ErrInvalidTransition = New("invalid status transition")
	// ErrStoreUnavailable indicates the storage backend could not be reached.
	ErrStoreUnavailable = New("store unavailable")
)

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

type baseError struct {
	message    string
	cause      error
	retryable  bool
	userFacing bool
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Unwrap() error {
	return e.cause
}

func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// classified is implemented by every error type in this package.
type classified interface {
	error
	IsRetryable() bool
	IsUserFacing() bool
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError represents a task or slice that could not be found.
//
// Example:
//
//	err := errors.NewNotFoundError("slice", "abc123")
//	fmt.Println(err) // "slice 'abc123' not found"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s '%s' not found", resourceType, resourceID),
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// TaskNotFound is shorthand for a NotFoundError wrapping ErrTaskNotFound.
func TaskNotFound(id string) *NotFoundError {
	return NewNotFoundError("task", id).WithCause(ErrTaskNotFound)
}

// SliceNotFound is shorthand for a NotFoundError wrapping ErrSliceNotFound.
func SliceNotFound(id string) *NotFoundError {
	return NewNotFoundError("slice", id).WithCause(ErrSliceNotFound)
}

// WithCause adds a cause to the error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.ResourceType, e.ResourceID)
}

// Is matches any *NotFoundError, ErrNotFound, and the wrapped cause.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	if target == ErrNotFound {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError represents rejected input.
//
// Example:
//
//	err := errors.NewValidationError("title is required").WithField("title")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil && e.cause != ErrInvalidInput {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is matches any *ValidationError and ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if target == ErrInvalidInput {
		return true
	}
	return e.baseError.Is(target)
}

// TransitionError represents a lifecycle action that the slice's current
// status does not allow.
type TransitionError struct {
	baseError
	SliceID string
	From    string
	Action  string
}

// NewTransitionError creates a new TransitionError.
func NewTransitionError(sliceID, from, action string) *TransitionError {
	return &TransitionError{
		baseError: baseError{
			message:    fmt.Sprintf("cannot %s slice %s in status %s", action, sliceID, from),
			cause:      ErrInvalidTransition,
			userFacing: true,
		},
		SliceID: sliceID,
		From:    from,
		Action:  action,
	}
}

// Is matches any *TransitionError and ErrInvalidTransition.
func (e *TransitionError) Is(target error) bool {
	if _, ok := target.(*TransitionError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Domain Errors
// -----------------------------------------------------------------------------

// StoreError represents a failure inside a storage backend.
//
// Example:
//
//	err := errors.NewStoreError("append slices", cause).WithBackend("sqlite")
//	fmt.Println(err) // "store error [backend=sqlite]: append slices: ..."
type StoreError struct {
	baseError
	Backend   string
	Operation string
}

// NewStoreError creates a new StoreError for the named operation.
func NewStoreError(operation string, cause error) *StoreError {
	return &StoreError{
		baseError: baseError{
			message: operation,
			cause:   cause,
		},
		Operation: operation,
	}
}

// WithBackend records which backend failed.
func (e *StoreError) WithBackend(backend string) *StoreError {
	e.Backend = backend
	return e
}

// WithRetryable marks the error as transient.
func (e *StoreError) WithRetryable(r bool) *StoreError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *StoreError) Error() string {
	prefix := "store error"
	if e.Backend != "" {
		prefix = fmt.Sprintf("store error [backend=%s]", e.Backend)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is matches any *StoreError and the wrapped cause.
func (e *StoreError) Is(target error) bool {
	if _, ok := target.(*StoreError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error is transient and the operation may
// succeed on retry. The engine itself never retries; this is for callers.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var c classified
	if As(err, &c) {
		return c.IsRetryable()
	}
	return Is(err, ErrStoreUnavailable)
}

// IsUserFacing returns true if the error message is safe to display to end
// users. Store failures are internal and return false.
//
// Example:
//
//	if errors.IsUserFacing(err) {
//	    c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
//	} else {
//	    logger.Error("internal error", "error", err)
//	}
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	var c classified
	if As(err, &c) {
		return c.IsUserFacing()
	}
	return false
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
