// Package ledgererror defines the error values shared by the ledger packages.
package ledgererror

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateKeyword is returned when a rule keyword is already registered.
	ErrDuplicateKeyword = errors.New("keyword already exists")
	// ErrInvalidTransition is returned when a ledger entry cannot move to the requested status.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrValidation is matched by every ValidationError.
	ErrValidation = errors.New("validation failed")
)

// ParseError represents an error during parsing
type ParseError struct {
	Source string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v",
		e.Source, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError represents a validation failure. Row is the zero-based
// index of the offending review row, or -1 when not row-specific.
type ValidationError struct {
	Row    int
	Field  string
	Reason string
}

// NewValidationError builds a ValidationError that is not tied to a row.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Row: -1, Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("row %d: invalid %s: %s", e.Row, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ExtractionError represents a failed extraction request. Batch is the
// 1-based batch number within the file, or 0 for single-request files.
type ExtractionError struct {
	FilePath string
	Batch    int
	Err      error
}

func (e *ExtractionError) Error() string {
	if e.Batch > 0 {
		return fmt.Sprintf("extraction failed for %s batch %d: %v", e.FilePath, e.Batch, e.Err)
	}
	return fmt.Sprintf("extraction failed for %s: %v", e.FilePath, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// InvalidFormatError represents an error where the input file does not conform
// to any supported statement format.
type InvalidFormatError struct {
	FilePath       string
	ExpectedFormat string
	Msg            string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s",
		e.FilePath, e.Msg, e.ExpectedFormat)
}

// CommitError represents a failed write of reviewed rows to the ledger.
// Nothing was written when it is returned.
type CommitError struct {
	Rows int
	Err  error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit of %d rows failed: %v", e.Rows, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}
