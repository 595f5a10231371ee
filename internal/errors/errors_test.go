package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateError_Is(t *testing.T) {
	err := NewNotFoundError("VERSION_NOT_FOUND", "version 3 not found")
	wrapped := fmt.Errorf("delete: %w", err)

	assert.True(t, stderrors.Is(wrapped, ErrNotFound))
	assert.False(t, stderrors.Is(wrapped, ErrAlreadyExists))
	assert.True(t, stderrors.Is(wrapped, &UpdateError{Type: ErrorTypeNotFound, Code: "VERSION_NOT_FOUND"}))
	assert.False(t, stderrors.Is(wrapped, &UpdateError{Type: ErrorTypeNotFound, Code: "PRODUCT_NOT_FOUND"}))
}

func TestTypePredicates(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeUnknown},
		{"plain", fmt.Errorf("boom"), ErrorTypeUnknown},
		{"duplicate", NewDuplicateVersionError("DUP", "dup"), ErrorTypeDuplicateVersion},
		{"wrapped malformed", fmt.Errorf("ctx: %w", NewMalformedRecordError("BAD", "bad")), ErrorTypeMalformedRecord},
		{"declined", NewUserDeclinedError("NO", "no"), ErrorTypeUserDeclined},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeOf(tt.err))
		})
	}

	assert.True(t, IsDuplicateVersion(NewDuplicateVersionError("DUP", "dup")))
	assert.True(t, IsInvalidInput(NewInvalidInputError("BAD_CODE", "bad")))
	assert.False(t, IsNotFound(nil))
}

func TestUpdateError_FormatDetailed(t *testing.T) {
	cause := fmt.Errorf("permission denied")
	err := NewFileSystemError(cause, "WRITE_FAILED", "failed to write Latest").
		WithContext("product", "App").
		WithContext("file", "Latest")

	out := err.FormatDetailed()
	assert.Contains(t, out, "FILESYSTEM error [WRITE_FAILED]: failed to write Latest")
	assert.Contains(t, out, "file: Latest")
	assert.Contains(t, out, "product: App")
	assert.Contains(t, out, "Underlying cause: permission denied")
	assert.Contains(t, out, "Check file permissions")
	assert.Equal(t, "failed to write Latest: permission denied", err.Error())
	assert.Equal(t, cause, stderrors.Unwrap(err))
}
