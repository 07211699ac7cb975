package ledgererror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseError(t *testing.T) {
	tests := []struct {
		name     string
		err      *ParseError
		expected string
	}{
		{
			name: "basic parse error",
			err: &ParseError{
				Source: "extraction",
				Field:  "amount",
				Value:  "12.5",
				Err:    errors.New("amount must be a whole number"),
			},
			expected: "extraction: failed to parse amount='12.5': amount must be a whole number",
		},
		{
			name: "parse error with empty value",
			err: &ParseError{
				Source: "extraction",
				Field:  "transaction_date",
				Value:  "",
				Err:    errors.New("empty date"),
			},
			expected: "extraction: failed to parse transaction_date='': empty date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestParseError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	parseErr := &ParseError{Source: "csv", Field: "amount", Value: "x", Err: originalErr}

	assert.Equal(t, originalErr, parseErr.Unwrap())
	assert.True(t, errors.Is(parseErr, originalErr))
}

func TestValidationError(t *testing.T) {
	rowErr := &ValidationError{Row: 2, Field: "amount", Reason: "must be greater than zero"}
	assert.Equal(t, "row 2: invalid amount: must be greater than zero", rowErr.Error())

	plain := NewValidationError("keyword", "must not be empty")
	assert.Equal(t, "invalid keyword: must not be empty", plain.Error())

	wrapped := fmt.Errorf("pin: %w", plain)
	assert.True(t, errors.Is(wrapped, ErrValidation))

	var target *ValidationError
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "keyword", target.Field)
}

func TestExtractionError(t *testing.T) {
	cause := errors.New("status 502")

	batchErr := &ExtractionError{FilePath: "june.csv", Batch: 2, Err: cause}
	assert.Equal(t, "extraction failed for june.csv batch 2: status 502", batchErr.Error())
	assert.True(t, errors.Is(batchErr, cause))

	fileErr := &ExtractionError{FilePath: "receipt.png", Err: cause}
	assert.Equal(t, "extraction failed for receipt.png: status 502", fileErr.Error())
}

func TestInvalidFormatError(t *testing.T) {
	err := &InvalidFormatError{FilePath: "notes.txt", ExpectedFormat: "csv, xlsx or image", Msg: "unsupported extension"}
	assert.Equal(t, "invalid format in file 'notes.txt': unsupported extension. Expected: csv, xlsx or image", err.Error())
}

func TestCommitError(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := &CommitError{Rows: 3, Err: cause}

	assert.Equal(t, "commit of 3 rows failed: disk I/O error", err.Error())
	assert.True(t, errors.Is(err, cause))
}

func TestSentinelsAreDistinct(t *testing.T) {
	assert.NotErrorIs(t, ErrDuplicateKeyword, ErrNotFound)
	assert.Equal(t, "keyword already exists", ErrDuplicateKeyword.Error())
}
