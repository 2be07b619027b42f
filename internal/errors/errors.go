// Package errors defines julie's typed error taxonomy: usage errors, I/O
// errors, parse errors, extractor errors, lock/poisoning errors, and
// external-service timeouts (SPEC_FULL §7). Every concrete error type wraps
// an underlying cause and implements Unwrap so callers can use errors.Is/As.
package errors

import (
	"fmt"
	"time"
)

// ErrorType classifies an error for logging. Exit codes are chosen from the
// concrete error type (cmd/julie's exitCode), not from this field.
type ErrorType string

const (
	ErrorTypeUsage     ErrorType = "usage"
	ErrorTypeIndexing  ErrorType = "indexing"
	ErrorTypeParse     ErrorType = "parse"
	ErrorTypeExtractor ErrorType = "extractor"
	ErrorTypeSearch    ErrorType = "search"

	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypeFileTooLarge ErrorType = "file_too_large"
	ErrorTypePermission   ErrorType = "permission"

	ErrorTypeConfig  ErrorType = "config"
	ErrorTypeLock    ErrorType = "lock"
	ErrorTypeTimeout ErrorType = "timeout"
	ErrorTypeInternal ErrorType = "internal"
)

// IndexingError represents an error during the indexing pipeline.
type IndexingError struct {
	Type        ErrorType
	FilePath    string
	Operation   string
	Underlying  error
	Timestamp   time.Time
	Recoverable bool
}

// NewIndexingError creates a new indexing error with context.
func NewIndexingError(op string, err error) *IndexingError {
	return &IndexingError{
		Type:       ErrorTypeIndexing,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithFile adds file information to the error.
func (e *IndexingError) WithFile(path string) *IndexingError {
	e.FilePath = path
	return e
}

// WithRecoverable marks the error as recoverable (the orchestrator logs and
// continues the scan instead of aborting it).
func (e *IndexingError) WithRecoverable(recoverable bool) *IndexingError {
	e.Recoverable = recoverable
	return e
}

func (e *IndexingError) Error() string {
	if e.FilePath != "" {
		return fmt.Sprintf("%s %s failed for %s: %v", e.Type, e.Operation, e.FilePath, e.Underlying)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Type, e.Operation, e.Underlying)
}

func (e *IndexingError) Unwrap() error { return e.Underlying }

func (e *IndexingError) IsRecoverable() bool { return e.Recoverable }

// ParseError represents a tree-sitter or lexical-scan parse failure.
type ParseError struct {
	Type       ErrorType
	FilePath   string
	Line       int
	Column     int
	Token      string
	Underlying error
	Timestamp  time.Time
}

// NewParseError creates a new parse error.
func NewParseError(path string, line, column int, token string, err error) *ParseError {
	return &ParseError{
		Type:       ErrorTypeParse,
		FilePath:   path,
		Line:       line,
		Column:     column,
		Token:      token,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s:%d:%d (near token %q): %v",
		e.FilePath, e.Line, e.Column, e.Token, e.Underlying)
}

func (e *ParseError) Unwrap() error { return e.Underlying }

// ExtractorError represents a failure inside a language extractor's symbol,
// relationship, identifier, or type-inference pass. It is distinct from
// ParseError: the CST parsed fine, but the extractor couldn't make sense of
// a node it visited.
type ExtractorError struct {
	Type       ErrorType
	Language   string
	FilePath   string
	NodeKind   string
	Underlying error
	Timestamp  time.Time
}

// NewExtractorError creates a new extractor error.
func NewExtractorError(language, path, nodeKind string, err error) *ExtractorError {
	return &ExtractorError{
		Type:       ErrorTypeExtractor,
		Language:   language,
		FilePath:   path,
		NodeKind:   nodeKind,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *ExtractorError) Error() string {
	return fmt.Sprintf("%s extractor failed on %s (node %q): %v", e.Language, e.FilePath, e.NodeKind, e.Underlying)
}

func (e *ExtractorError) Unwrap() error { return e.Underlying }

// SearchError represents a lexical- or vector-index query failure.
type SearchError struct {
	Type       ErrorType
	Pattern    string
	Underlying error
	Timestamp  time.Time
}

// NewSearchError creates a new search error.
func NewSearchError(pattern string, err error) *SearchError {
	return &SearchError{
		Type:       ErrorTypeSearch,
		Pattern:    pattern,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search failed for pattern %q: %v", e.Pattern, e.Underlying)
}

func (e *SearchError) Unwrap() error { return e.Underlying }

// FileError represents a file-system-level failure (not found, too large,
// permission denied).
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error, classifying it as a permission
// error when the underlying OS error indicates one.
func NewFileError(op, path string, err error) *FileError {
	errorType := ErrorTypeFileNotFound
	if isPermissionError(err) {
		errorType = ErrorTypePermission
	}

	return &FileError{
		Type:       errorType,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func isPermissionError(err error) bool {
	errStr := err.Error()
	return errStr == "permission denied" || errStr == "access denied"
}

func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

func (e *FileError) Unwrap() error { return e.Underlying }

// ConfigError represents a configuration-validation failure.
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error.
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

func (e *ConfigError) Unwrap() error { return e.Underlying }

// LockError represents contention or poisoning of the symbol store's
// single-writer lock or the vector index's swap lock.
type LockError struct {
	Resource   string
	Underlying error
	Timestamp  time.Time
}

// NewLockError creates a new lock error.
func NewLockError(resource string, err error) *LockError {
	return &LockError{Resource: resource, Underlying: err, Timestamp: time.Now()}
}

func (e *LockError) Error() string {
	return fmt.Sprintf("lock error on %s: %v", e.Resource, e.Underlying)
}

func (e *LockError) Unwrap() error { return e.Underlying }

// TimeoutError represents an external-service call (embedding provider,
// remote resolver) exceeding its deadline.
type TimeoutError struct {
	Operation string
	Deadline  time.Duration
	Underlying error
	Timestamp time.Time
}

// NewTimeoutError creates a new timeout error.
func NewTimeoutError(op string, deadline time.Duration, err error) *TimeoutError {
	return &TimeoutError{Operation: op, Deadline: deadline, Underlying: err, Timestamp: time.Now()}
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s: %v", e.Operation, e.Deadline, e.Underlying)
}

func (e *TimeoutError) Unwrap() error { return e.Underlying }

// StoreError represents a symbol-store I/O or migration failure
// (spec.md §4.D: "I/O errors surface as StoreError").
type StoreError struct {
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewStoreError creates a new store error.
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Operation: op, Underlying: err, Timestamp: time.Now()}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Operation, e.Underlying)
}

func (e *StoreError) Unwrap() error { return e.Underlying }

// UsageError represents invalid CLI arguments or invalid API call
// arguments (cmd/julie's exitCode maps it to exit code 1).
type UsageError struct {
	Message string
}

// NewUsageError creates a new usage error.
func NewUsageError(message string) *UsageError {
	return &UsageError{Message: message}
}

func (e *UsageError) Error() string { return e.Message }

// MultiError aggregates multiple errors, e.g. from a scan where several
// files failed independently but the orchestrator kept going.
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error, dropping nil entries.
func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

func (e *MultiError) Unwrap() []error { return e.Errors }
