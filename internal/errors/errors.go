package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType represents the type of error
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeNotFound
	ErrorTypeAlreadyExists
	ErrorTypeDuplicateVersion
	ErrorTypeMalformedRecord
	ErrorTypeUserDeclined
	ErrorTypeInvalidInput
	ErrorTypeFileSystem
	ErrorTypeConfiguration
)

// String returns the string representation of the error type
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeNotFound:
		return "NOT_FOUND"
	case ErrorTypeAlreadyExists:
		return "ALREADY_EXISTS"
	case ErrorTypeDuplicateVersion:
		return "DUPLICATE_VERSION"
	case ErrorTypeMalformedRecord:
		return "MALFORMED_RECORD"
	case ErrorTypeUserDeclined:
		return "USER_DECLINED"
	case ErrorTypeInvalidInput:
		return "INVALID_INPUT"
	case ErrorTypeFileSystem:
		return "FILESYSTEM"
	case ErrorTypeConfiguration:
		return "CONFIGURATION"
	default:
		return "UNKNOWN"
	}
}

// UpdateError is an error with a type, a stable code and optional context
// and suggestions for the person running the tool.
type UpdateError struct {
	Type        ErrorType         `json:"type"`
	Code        string            `json:"code"`
	Message     string            `json:"message"`
	Cause       error             `json:"-"`
	Context     map[string]string `json:"context,omitempty"`
	Suggestions []string          `json:"suggestions,omitempty"`
}

// Error implements the error interface
func (e *UpdateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *UpdateError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an UpdateError of the same type. A target
// without a code matches any code of that type, so the package sentinels
// can be used with errors.Is.
func (e *UpdateError) Is(target error) bool {
	t, ok := target.(*UpdateError)
	if !ok {
		return false
	}
	if e.Type != t.Type {
		return false
	}
	return t.Code == "" || e.Code == t.Code
}

// WithContext adds context to the error
func (e *UpdateError) WithContext(key, value string) *UpdateError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion to the error
func (e *UpdateError) WithSuggestion(suggestion string) *UpdateError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// FormatDetailed returns a detailed error message with context and suggestions
func (e *UpdateError) FormatDetailed() string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("%s error [%s]: %s\n", e.Type.String(), e.Code, e.Message))

	if len(e.Context) > 0 {
		builder.WriteString("\nContext:\n")
		keys := make([]string, 0, len(e.Context))
		for key := range e.Context {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			builder.WriteString(fmt.Sprintf("   %s: %s\n", key, e.Context[key]))
		}
	}

	if e.Cause != nil {
		builder.WriteString(fmt.Sprintf("\nUnderlying cause: %v\n", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		builder.WriteString("\nSuggestions:\n")
		for _, suggestion := range e.Suggestions {
			builder.WriteString(fmt.Sprintf("   - %s\n", suggestion))
		}
	}

	return builder.String()
}

// NewError creates a new UpdateError
func NewError(errorType ErrorType, code, message string) *UpdateError {
	return &UpdateError{
		Type:    errorType,
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with UpdateError
func WrapError(err error, errorType ErrorType, code, message string) *UpdateError {
	return &UpdateError{
		Type:    errorType,
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Sentinels for errors.Is checks. They match any code of their type.
var (
	ErrNotFound         = &UpdateError{Type: ErrorTypeNotFound}
	ErrAlreadyExists    = &UpdateError{Type: ErrorTypeAlreadyExists}
	ErrDuplicateVersion = &UpdateError{Type: ErrorTypeDuplicateVersion}
	ErrMalformedRecord  = &UpdateError{Type: ErrorTypeMalformedRecord}
	ErrUserDeclined     = &UpdateError{Type: ErrorTypeUserDeclined}
	ErrInvalidInput     = &UpdateError{Type: ErrorTypeInvalidInput}
	ErrFileSystem       = &UpdateError{Type: ErrorTypeFileSystem}
	ErrConfiguration    = &UpdateError{Type: ErrorTypeConfiguration}
)

// Common error constructors

// NewNotFoundError creates a not found error
func NewNotFoundError(code, message string) *UpdateError {
	return NewError(ErrorTypeNotFound, code, message).
		WithSuggestion("Check the product name or version code")
}

// NewAlreadyExistsError creates an already exists error
func NewAlreadyExistsError(code, message string) *UpdateError {
	return NewError(ErrorTypeAlreadyExists, code, message).
		WithSuggestion("Choose a different name")
}

// NewDuplicateVersionError creates a duplicate version error
func NewDuplicateVersionError(code, message string) *UpdateError {
	return NewError(ErrorTypeDuplicateVersion, code, message).
		WithSuggestion("Use 'replace' to overwrite an existing version")
}

// NewMalformedRecordError creates a malformed record error
func NewMalformedRecordError(code, message string) *UpdateError {
	return NewError(ErrorTypeMalformedRecord, code, message).
		WithSuggestion("Verify the JSON keys and value types of the record")
}

// NewUserDeclinedError creates a user declined error
func NewUserDeclinedError(code, message string) *UpdateError {
	return NewError(ErrorTypeUserDeclined, code, message)
}

// NewInvalidInputError creates an invalid input error
func NewInvalidInputError(code, message string) *UpdateError {
	return NewError(ErrorTypeInvalidInput, code, message).
		WithSuggestion("Check the input parameters and try again")
}

// NewFileSystemError wraps a filesystem error
func NewFileSystemError(err error, code, message string) *UpdateError {
	return WrapError(err, ErrorTypeFileSystem, code, message).
		WithSuggestion("Check file permissions and that the path exists")
}

// NewConfigurationError wraps a configuration error
func NewConfigurationError(err error, code, message string) *UpdateError {
	return WrapError(err, ErrorTypeConfiguration, code, message).
		WithSuggestion("Run 'updategen init' to regenerate configuration")
}

// TypeOf returns the ErrorType of the first UpdateError in err's chain.
func TypeOf(err error) ErrorType {
	var ue *UpdateError
	if stderrors.As(err, &ue) {
		return ue.Type
	}
	return ErrorTypeUnknown
}

// IsType reports whether err's chain contains an UpdateError of type t.
func IsType(err error, t ErrorType) bool {
	return err != nil && TypeOf(err) == t
}

func IsNotFound(err error) bool         { return IsType(err, ErrorTypeNotFound) }
func IsAlreadyExists(err error) bool    { return IsType(err, ErrorTypeAlreadyExists) }
func IsDuplicateVersion(err error) bool { return IsType(err, ErrorTypeDuplicateVersion) }
func IsMalformedRecord(err error) bool  { return IsType(err, ErrorTypeMalformedRecord) }
func IsUserDeclined(err error) bool     { return IsType(err, ErrorTypeUserDeclined) }
func IsInvalidInput(err error) bool     { return IsType(err, ErrorTypeInvalidInput) }
