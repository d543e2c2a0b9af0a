package ports

import (
	"errors"
	"fmt"
)

// Common infrastructure errors that can occur during file interactions.
var (
	// ErrInputNotFound indicates that the input file does not exist or
	// cannot be opened for reading.
	ErrInputNotFound = errors.New("input file not found or unreadable")

	// ErrOutputWrite indicates that an output destination could not be
	// opened, written, or finalized.
	ErrOutputWrite = errors.New("output destination not writable")

	// ErrConfigNotFound indicates that required configuration is missing.
	ErrConfigNotFound = errors.New("configuration not found")
)

// InputError represents a fatal error while reading the tabular input.
// It includes the path involved so the failure is actionable.
type InputError struct {
	// Path is the input file path that could not be read.
	Path string

	// Err is the underlying error. It wraps ErrInputNotFound when the
	// file is missing or unreadable.
	Err error
}

// Error implements the error interface for InputError.
func (e *InputError) Error() string {
	return fmt.Sprintf("input error: path=%s, err=%v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *InputError) Unwrap() error { return e.Err }

// NewInputError creates a new InputError for the given path.
func NewInputError(path string, err error) *InputError {
	return &InputError{Path: path, Err: err}
}

// OutputError represents a fatal error while writing one of the output
// destinations. A partial file is never left in place of the final one.
type OutputError struct {
	// Path is the destination path that could not be written.
	Path string

	// Err is the underlying error. It wraps ErrOutputWrite when the
	// destination could not be opened or flushed.
	Err error
}

// Error implements the error interface for OutputError.
func (e *OutputError) Error() string {
	return fmt.Sprintf("output error: path=%s, err=%v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *OutputError) Unwrap() error { return e.Err }

// NewOutputError creates a new OutputError for the given path.
func NewOutputError(path string, err error) *OutputError {
	return &OutputError{Path: path, Err: err}
}

// MetricsError represents an error from metrics collection operations.
type MetricsError struct {
	// Metric is the name of the metric that was being collected when the
	// error occurred.
	Metric string

	// Operation is the name of the metrics operation that failed.
	Operation string

	// Err is the underlying error that caused the metrics operation to fail.
	Err error
}

// Error implements the error interface for MetricsError.
func (e *MetricsError) Error() string {
	return fmt.Sprintf("metrics error: operation=%s, metric=%s, err=%v", e.Operation, e.Metric, e.Err)
}

// Unwrap returns the underlying error.
func (e *MetricsError) Unwrap() error { return e.Err }

// ConfigError represents an error from configuration operations.
type ConfigError struct {
	// ConfigKey is the configuration key that was involved in the failed
	// operation.
	ConfigKey string

	// Err is the underlying error that caused the configuration operation
	// to fail.
	Err error
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: key=%s, err=%v", e.ConfigKey, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a new ConfigError with the given details.
func NewConfigError(key string, err error) *ConfigError {
	return &ConfigError{ConfigKey: key, Err: err}
}
