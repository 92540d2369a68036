package errors

import (
	"errors"
	"fmt"
)

// Category classifies a failure within the streaming/hydration pipeline.
type Category string

const (
	// CategoryRender is a failure thrown during component invocation or
	// element serialization, outside any suspense boundary.
	CategoryRender Category = "render"

	// CategoryBoundary is a render failure contained by a suspense
	// boundary. The caller never observes it as an error; it is carried
	// on the boundary record for inspection.
	CategoryBoundary Category = "boundary"

	// CategoryFlush is a contained failure discovered after part of the
	// boundary's output already left the emitter buffer. Surfaced as a
	// best-effort warning, not a hard failure.
	CategoryFlush Category = "flush"

	// CategoryDependency is an island dependency that failed to resolve
	// or never became available.
	CategoryDependency Category = "dependency"

	// CategoryActivation is a failure of the activation procedure itself.
	CategoryActivation Category = "activation"

	// CategoryConfig is an invalid configuration value.
	CategoryConfig Category = "config"
)

// Error is a structured error carrying a category and stable code so
// callers can react to failure classes without string matching.
type Error struct {
	// Code is a unique error identifier (e.g., "G102").
	Code string

	// Category is the failure class.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation, when one helps.
	Detail string

	// Island is the island id, for dependency/activation failures.
	Island string

	// Boundary is the boundary id, for contained failures.
	Boundary string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// WithDetail adds a longer explanation to the error.
func (e *Error) WithDetail(format string, args ...any) *Error {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithIsland tags the error with the owning island id.
func (e *Error) WithIsland(id string) *Error {
	e.Island = id
	return e
}

// WithBoundary tags the error with the owning boundary id.
func (e *Error) WithBoundary(id string) *Error {
	e.Boundary = id
	return e
}

// New creates a structured error.
func New(code string, category Category, message string) *Error {
	return &Error{Code: code, Category: category, Message: message}
}

// Wrap creates a structured error around an underlying cause.
func Wrap(err error, code string, category Category, message string) *Error {
	return &Error{Code: code, Category: category, Message: message, Wrapped: err}
}

// CategoryOf returns the category of err, or "" if err is not a structured
// error.
func CategoryOf(err error) Category {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return ""
}
