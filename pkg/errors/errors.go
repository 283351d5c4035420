// Package errors provides custom error types for the csvrecon system.
// These errors enable better error handling, programmatic error checking,
// and improved debugging throughout the application.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Join is an alias for the standard library errors.Join.
var Join = errors.Join

// Common sentinel errors for the csvrecon system
var (
	// ErrNotFound indicates that a requested file or resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")

	// ErrPairFailed indicates that at least one file pair failed to reconcile
	ErrPairFailed = errors.New("one or more file pairs failed")
)

// ValidationError represents a configuration validation failure.
// Validation errors are fatal and are raised before any processing starts.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// MissingFileError indicates one side of a file pair is absent.
// It is non-fatal: the pair is reported with a one-sided classification.
type MissingFileError struct {
	Side string // "left" or "right"
	Path string
}

// Error implements the error interface
func (e *MissingFileError) Error() string {
	return fmt.Sprintf("%s file not found: %s", e.Side, e.Path)
}

// Is implements errors.Is support
func (e *MissingFileError) Is(target error) bool {
	return target == ErrNotFound
}

// NewMissingFileError creates a new MissingFileError
func NewMissingFileError(side, path string) *MissingFileError {
	return &MissingFileError{Side: side, Path: path}
}

// ProcessingError represents a row-level failure while reconciling a pair.
// The offending record is skipped and processing of the pair continues.
type ProcessingError struct {
	File    string
	Line    int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ProcessingError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("record error in %s line %d: %s", e.File, e.Line, e.Message)
	}
	return fmt.Sprintf("record error in %s: %s", e.File, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// NewProcessingError creates a new ProcessingError
func NewProcessingError(file string, line int, err error) *ProcessingError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ProcessingError{File: file, Line: line, Message: message, Err: err}
}

// PairError represents an unexpected failure that aborted a single pair.
// The dispatcher converts it into a failed comparison; the batch continues.
type PairError struct {
	Label   string
	Message string
	Err     error
}

// Error implements the error interface
func (e *PairError) Error() string {
	return fmt.Sprintf("pair %s failed: %s", e.Label, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *PairError) Unwrap() error {
	return e.Err
}

// NewPairError creates a new PairError
func NewPairError(label string, err error) *PairError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &PairError{Label: label, Message: message, Err: err}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "csv", "yaml", "json"
	File    string
	Line    int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("parse error in %s at %s:%d: %s", e.Format, e.File, e.Line, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{Format: format, File: file, Message: message, Err: err}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "delete", "open", "close"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{Operation: operation, Path: path, Message: message, Err: err}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
