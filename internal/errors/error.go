package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryDecode       Category = "decode"
	CategoryConstruction Category = "construction"
	CategoryPatch        Category = "patch"
	CategoryProtocol     Category = "protocol"
	CategorySnapshot     Category = "snapshot"
	CategoryConfig       Category = "config"
)

// LoomError is a structured error with a registered code.
type LoomError struct {
	// Code is a unique error identifier (e.g., "E102").
	Code string

	// Category is the error type (decode, construction, patch, ...).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is extra context specific to this occurrence.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Fatal marks invariant violations that must abort rather than be
	// handled (patch index errors).
	Fatal bool

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *LoomError) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg = msg + ": " + e.Detail
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *LoomError) Unwrap() error {
	return e.Wrapped
}

// Is matches two LoomErrors by code, so sentinel instances from New can be
// used with stdlib errors.Is.
func (e *LoomError) Is(target error) bool {
	t, ok := target.(*LoomError)
	return ok && t.Code == e.Code
}

// Withf attaches occurrence-specific detail to the error.
func (e *LoomError) Withf(format string, args ...any) *LoomError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithSuggestion overrides the registered fix suggestion.
func (e *LoomError) WithSuggestion(s string) *LoomError {
	e.Suggestion = s
	return e
}

// Wrap wraps another error.
func (e *LoomError) Wrap(err error) *LoomError {
	e.Wrapped = err
	return e
}

// IsFatal reports whether the error is an invariant violation that must not
// be recovered from.
func (e *LoomError) IsFatal() bool {
	return e.Fatal
}

// IsFatal reports whether err, or anything it wraps, is a fatal LoomError.
func IsFatal(err error) bool {
	for err != nil {
		if le, ok := err.(*LoomError); ok && le.Fatal {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// New creates a LoomError from a registered error code.
func New(code string) *LoomError {
	template, ok := registry[code]
	if !ok {
		return &LoomError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &LoomError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Suggestion: template.Suggestion,
		Fatal:      template.Fatal,
	}
}

// Newf creates a LoomError with a formatted message and no code.
func Newf(category Category, format string, args ...any) *LoomError {
	return &LoomError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a LoomError with the given code.
func FromError(err error, code string) *LoomError {
	if err == nil {
		return nil
	}
	if le, ok := err.(*LoomError); ok {
		return le
	}
	return New(code).Wrap(err)
}
