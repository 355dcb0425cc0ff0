// Package errors provides standardized error handling for pictag.
// It defines common error types, constants, and helper functions for consistent
// error creation, wrapping, and handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Standard errors package errors that we re-export for convenience
var (
	// Unwrap unwraps an error to access the underlying error
	Unwrap = errors.Unwrap
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
)

// Common error constants for frequently occurring errors
var (
	ErrFileNotFound         = NewFileError("file not found", "", FileNotFound, nil)
	ErrInvalidPath          = NewFileError("invalid file path", "", InvalidPath, nil)
	ErrInvalidConfig        = NewConfigError("invalid configuration", "", InvalidConfig, nil)
	ErrConfigNotFound       = NewConfigError("config file not found", "", ConfigNotFound, nil)
	ErrTransportUnavailable = NewConfigError("persistence unavailable", "", TransportUnavailable, nil)
)

// ErrorKind represents the kind of error
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	// File error kinds
	FileNotFound
	FileAccessDenied
	InvalidPath
	FileOperationFailed
	// Config error kinds
	InvalidConfig
	ConfigNotFound
	TransportUnavailable
	// Domain error kinds
	ValidationFailed
	PersistenceFailed
	PartialFailure
	CategoryNotFound
	HotkeyNotFound
	// Database error kinds
	DatabaseOperationFailed
	InvalidInputData
)

// String returns a short name for the kind
func (k ErrorKind) String() string {
	switch k {
	case FileNotFound:
		return "file_not_found"
	case FileAccessDenied:
		return "file_access_denied"
	case InvalidPath:
		return "invalid_path"
	case FileOperationFailed:
		return "file_operation_failed"
	case InvalidConfig:
		return "invalid_config"
	case ConfigNotFound:
		return "config_not_found"
	case TransportUnavailable:
		return "transport_unavailable"
	case ValidationFailed:
		return "validation_failed"
	case PersistenceFailed:
		return "persistence_failed"
	case PartialFailure:
		return "partial_failure"
	case CategoryNotFound:
		return "category_not_found"
	case HotkeyNotFound:
		return "hotkey_not_found"
	case DatabaseOperationFailed:
		return "database_operation_failed"
	case InvalidInputData:
		return "invalid_input_data"
	default:
		return "unknown"
	}
}

// ApplicationError is the base error type for all application errors
type ApplicationError struct {
	msg  string
	err  error
	kind ErrorKind
}

// Error returns the error message
func (e *ApplicationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap returns the wrapped error
func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

// Is matches sentinel errors by kind, so errors.Is(err, ErrConfigNotFound)
// holds for any config-not-found error regardless of its message.
func (e *ApplicationError) Is(target error) bool {
	var kinded interface{ Kind() ErrorKind }
	if !errors.As(target, &kinded) {
		return false
	}
	return e.kind != Unknown && kinded.Kind() == e.kind
}

// FileError represents errors related to file operations
type FileError struct {
	ApplicationError
	path string
}

// NewFileError creates a new file error
func NewFileError(msg string, path string, kind ErrorKind, err error) *FileError {
	return &FileError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		path: path,
	}
}

// Error returns the file error message
func (e *FileError) Error() string {
	if e.path != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.path, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.path)
	}
	return e.ApplicationError.Error()
}

// Path returns the file path associated with the error
func (e *FileError) Path() string {
	return e.path
}

// ConfigError represents errors related to configuration and the
// per-directory category file
type ConfigError struct {
	ApplicationError
	param string
}

// NewConfigError creates a new configuration error
func NewConfigError(msg string, param string, kind ErrorKind, err error) *ConfigError {
	return &ConfigError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		param: param,
	}
}

// Error returns the config error message
func (e *ConfigError) Error() string {
	if e.param != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.param, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.param)
	}
	return e.ApplicationError.Error()
}

// Param returns the configuration parameter associated with the error
func (e *ConfigError) Param() string {
	return e.param
}

// ValidationError is returned when user input is rejected before any
// state changes
type ValidationError struct {
	ApplicationError
	field string
}

// NewValidationError creates a new validation error for the given field
func NewValidationError(msg string, field string) *ValidationError {
	return &ValidationError{
		ApplicationError: ApplicationError{
			msg:  msg,
			kind: ValidationFailed,
		},
		field: field,
	}
}

// Error returns the validation error message
func (e *ValidationError) Error() string {
	if e.field != "" {
		return fmt.Sprintf("%s: %s", e.field, e.msg)
	}
	return e.msg
}

// Field returns the rejected field
func (e *ValidationError) Field() string {
	return e.field
}

// PersistenceError reports a failed write after an optimistic mutation
type PersistenceError struct {
	ApplicationError
	operation  string
	rolledBack bool
}

// NewPersistenceError creates a new persistence error for an operation
func NewPersistenceError(operation string, rolledBack bool, err error) *PersistenceError {
	return &PersistenceError{
		ApplicationError: ApplicationError{
			msg:  "failed to save changes",
			err:  err,
			kind: PersistenceFailed,
		},
		operation:  operation,
		rolledBack: rolledBack,
	}
}

// Error returns the persistence error message
func (e *PersistenceError) Error() string {
	if e.operation != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: operation=%s: %v", e.msg, e.operation, e.err)
		}
		return fmt.Sprintf("%s: operation=%s", e.msg, e.operation)
	}
	return e.ApplicationError.Error()
}

// Operation returns the operation that failed to persist
func (e *PersistenceError) Operation() string {
	return e.operation
}

// RolledBack reports whether the in-memory change was reverted
func (e *PersistenceError) RolledBack() bool {
	return e.rolledBack
}

// NewPartialFailure wraps the failure of a secondary best-effort step
// whose primary operation already succeeded
func NewPartialFailure(msg string, err error) *ApplicationError {
	return &ApplicationError{
		msg:  msg,
		err:  err,
		kind: PartialFailure,
	}
}

// NewNotFound creates a not found error of the given kind for an identifier
func NewNotFound(kind ErrorKind, id string) *ApplicationError {
	what := "item"
	switch kind {
	case CategoryNotFound:
		what = "category"
	case HotkeyNotFound:
		what = "hotkey"
	}
	return &ApplicationError{
		msg:  fmt.Sprintf("%s not found: %s", what, id),
		kind: kind,
	}
}

// New creates a new error with a message
func New(msg string) error {
	return &ApplicationError{
		msg:  msg,
		kind: Unknown,
	}
}

// Newf creates a new error with a formatted message
func Newf(format string, args ...interface{}) error {
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		kind: Unknown,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  msg,
		err:  err,
		kind: Unknown,
	}
}

// Wrapf wraps an existing error with additional formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		err:  err,
		kind: Unknown,
	}
}

// KindOf returns the kind of the first typed error in err's chain
func KindOf(err error) ErrorKind {
	for err != nil {
		if kinded, ok := err.(interface{ Kind() ErrorKind }); ok {
			if k := kinded.Kind(); k != Unknown {
				return k
			}
		}
		err = errors.Unwrap(err)
	}
	return Unknown
}

// hasKind reports whether any error in err's chain carries kind k
func hasKind(err error, k ErrorKind) bool {
	for err != nil {
		if kinded, ok := err.(interface{ Kind() ErrorKind }); ok && kinded.Kind() == k {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsFileNotFound checks if the error is a file not found error
func IsFileNotFound(err error) bool {
	return hasKind(err, FileNotFound)
}

// IsFileAccessDenied checks if the error is a file access denied error
func IsFileAccessDenied(err error) bool {
	return hasKind(err, FileAccessDenied)
}

// IsConfigNotFound checks if the error reports a missing config file
func IsConfigNotFound(err error) bool {
	return hasKind(err, ConfigNotFound)
}

// IsTransportUnavailable checks if the persistence backend could not be reached
func IsTransportUnavailable(err error) bool {
	return hasKind(err, TransportUnavailable)
}

// IsInvalidConfig checks if the error is an invalid configuration error
func IsInvalidConfig(err error) bool {
	return hasKind(err, InvalidConfig)
}

// IsValidation checks if the error is a validation error
func IsValidation(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

// IsPersistenceFailure checks if the error is a persistence failure
func IsPersistenceFailure(err error) bool {
	var persistErr *PersistenceError
	return errors.As(err, &persistErr)
}

// IsPartialFailure checks if the error reports a failed secondary step
func IsPartialFailure(err error) bool {
	return hasKind(err, PartialFailure)
}

// IsNotFound checks for missing categories or hotkeys
func IsNotFound(err error) bool {
	return hasKind(err, CategoryNotFound) || hasKind(err, HotkeyNotFound)
}

// DatabaseError represents errors related to database operations
type DatabaseError struct {
	ApplicationError
	operation string
	context   map[string]interface{}
}

// NewDatabaseError creates a new database error
func NewDatabaseError(msg string, err error) *DatabaseError {
	return &DatabaseError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: DatabaseOperationFailed,
		},
		operation: "",
		context:   make(map[string]interface{}),
	}
}

// WithOperation adds operation information to the database error
func (e *DatabaseError) WithOperation(operation string) *DatabaseError {
	e.operation = operation
	return e
}

// WithContext adds context information to the database error
func (e *DatabaseError) WithContext(key string, value interface{}) *DatabaseError {
	e.context[key] = value
	return e
}

// Error returns the database error message
func (e *DatabaseError) Error() string {
	if e.operation != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: operation=%s: %v", e.msg, e.operation, e.err)
		}
		return fmt.Sprintf("%s: operation=%s", e.msg, e.operation)
	}
	return e.ApplicationError.Error()
}

// Operation returns the database operation associated with the error
func (e *DatabaseError) Operation() string {
	return e.operation
}

// Context returns the context information associated with the error
func (e *DatabaseError) Context() map[string]interface{} {
	return e.context
}

// IsDatabaseError checks if the error is a database error
func IsDatabaseError(err error) bool {
	var dbErr *DatabaseError
	return errors.As(err, &dbErr)
}
