package common

import (
	"errors"
	"fmt"
)

// Core error taxonomy. Callers match with errors.Is; all wrapping below keeps
// the chain intact.
var (
	// ErrDecode marks an image reference that is unreadable or malformed.
	// Fatal for that single image, never retried.
	ErrDecode = errors.New("image decode failed")

	// ErrExtraction wraps any non-OCR sub-operation failure during feature
	// composition. Fatal for that image's record.
	ErrExtraction = errors.New("feature extraction failed")

	// ErrEmptyInput is returned when the exporter is invoked with zero
	// records. No file is ever written.
	ErrEmptyInput = errors.New("no records to export")
)

// AppError represents application-specific errors.
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func NewAppError(code, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Cause: cause}
}

// WrapError annotates err with a message, preserving the chain.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// DecodeErrorf builds an error matching ErrDecode.
func DecodeErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDecode, fmt.Sprintf(format, args...))
}

// ExtractionError wraps cause so it matches ErrExtraction (and whatever the
// cause itself matches, e.g. ErrDecode).
func ExtractionError(cause error) error {
	if cause == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrExtraction, cause)
}
