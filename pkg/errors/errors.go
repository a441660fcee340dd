// Package errors provides custom error types for the tablemerge system.
// These errors enable programmatic error checking across the matcher,
// synthesizer, executors and CLI while keeping messages readable.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the tablemerge system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidSchema indicates duplicate or malformed column definitions
	ErrInvalidSchema = errors.New("invalid schema")

	// ErrNoJoinKey indicates that no join key could be identified or inferred
	ErrNoJoinKey = errors.New("no join key")

	// ErrMissingColumn indicates a mapping references a column absent from its schema
	ErrMissingColumn = errors.New("missing column")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")

	// ErrNotImplemented indicates that a feature is not yet implemented
	ErrNotImplemented = errors.New("not implemented")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
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
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// InvalidSchemaError is raised when a schema carries duplicate or malformed
// column definitions. Schemas are rejected before matching starts.
type InvalidSchemaError struct {
	Dataset string
	Column  string
	Message string
}

// Error implements the error interface
func (e *InvalidSchemaError) Error() string {
	switch {
	case e.Dataset != "" && e.Column != "":
		return fmt.Sprintf("invalid schema %s: column %q: %s", e.Dataset, e.Column, e.Message)
	case e.Dataset != "":
		return fmt.Sprintf("invalid schema %s: %s", e.Dataset, e.Message)
	case e.Column != "":
		return fmt.Sprintf("invalid schema: column %q: %s", e.Column, e.Message)
	default:
		return fmt.Sprintf("invalid schema: %s", e.Message)
	}
}

// Is implements errors.Is support
func (e *InvalidSchemaError) Is(target error) bool {
	return target == ErrInvalidSchema || target == ErrInvalidInput
}

// NewInvalidSchemaError creates a new InvalidSchemaError
func NewInvalidSchemaError(dataset, column, message string) *InvalidSchemaError {
	return &InvalidSchemaError{Dataset: dataset, Column: column, Message: message}
}

// NoJoinKeyError is returned when a merge plan cannot pick a join key.
// It names both datasets and lists the candidates that were considered so
// the caller can retry with an explicit key or abort.
type NoJoinKeyError struct {
	Left       string
	Right      string
	Reason     string
	Candidates []string
}

// Error implements the error interface
func (e *NoJoinKeyError) Error() string {
	msg := fmt.Sprintf("no join key between %s and %s: %s", e.Left, e.Right, e.Reason)
	if len(e.Candidates) > 0 {
		msg += fmt.Sprintf(" (candidates: %s)", strings.Join(e.Candidates, ", "))
	}
	return msg
}

// Is implements errors.Is support
func (e *NoJoinKeyError) Is(target error) bool {
	return target == ErrNoJoinKey
}

// NewNoJoinKeyError creates a new NoJoinKeyError
func NewNoJoinKeyError(left, right, reason string, candidates []string) *NoJoinKeyError {
	return &NoJoinKeyError{
		Left:       left,
		Right:      right,
		Reason:     reason,
		Candidates: candidates,
	}
}

// MissingColumnError reports a mapping that references a column absent from its schema.
type MissingColumnError struct {
	Dataset string
	Column  string
}

// Error implements the error interface
func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("column %q not found in %s", e.Column, e.Dataset)
}

// Is implements errors.Is support
func (e *MissingColumnError) Is(target error) bool {
	return target == ErrMissingColumn || target == ErrNotFound
}

// NewMissingColumnError creates a new MissingColumnError
func NewMissingColumnError(dataset, column string) *MissingColumnError {
	return &MissingColumnError{Dataset: dataset, Column: column}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "csv", "yaml", "json"
	File    string
	Line    int
	Column  int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("parse error in %s at %s:%d:%d: %s", e.Format, e.File, e.Line, e.Column, e.Message)
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
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "open"
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
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// ResourceError represents an error during resource operations
type ResourceError struct {
	Operation string // "read", "create", "execute"
	Resource  string // "dataset", "table", "plan"
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// NewResourceError creates a new ResourceError
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ResourceError{
		Operation: operation,
		Resource:  resource,
		ID:        id,
		Message:   message,
		Err:       err,
	}
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

// IsInvalidSchema checks if an error is an invalid schema error
func IsInvalidSchema(err error) bool {
	return errors.Is(err, ErrInvalidSchema)
}

// IsNoJoinKey checks if an error reports a missing join key
func IsNoJoinKey(err error) bool {
	return errors.Is(err, ErrNoJoinKey)
}

// IsMissingColumn checks if an error reports a missing column
func IsMissingColumn(err error) bool {
	return errors.Is(err, ErrMissingColumn)
}

// IsConfigError checks if an error is a configuration error
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
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

// WrapResource wraps an error as a ResourceError
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
