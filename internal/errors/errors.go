package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrNoStrategy         = errors.New("no replacement strategy enabled")
	ErrMultipleStrategies = errors.New("more than one replacement strategy enabled")
	ErrUnknownStrategy    = errors.New("unknown replacement strategy")
	ErrInvalidPattern     = errors.New("invalid file name pattern")
	ErrDirectoryNotFound  = errors.New("directory not found")
	ErrEmptyInput         = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON        = errors.New("invalid JSON format")
	ErrMultipleJSON       = errors.New("multiple JSON values found at the root, only one is allowed")
	ErrInvalidEncoding    = errors.New("input is not valid UTF-8")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeConfiguration ErrorType = "configuration"
	ErrorTypeDiscovery     ErrorType = "discovery"
	ErrorTypeParsing       ErrorType = "parsing"
	ErrorTypeIO            ErrorType = "io"
	ErrorTypeUnknown       ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	// Only the category is compared, so errors.Is(err, &AppError{Type: ...}) works as a type check
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewConfigurationError creates a new error for an invalid run configuration
func NewConfigurationError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeConfiguration,
		Message: message,
		Err:     err,
	}
}

// NewDiscoveryError creates a new error related to locating input files
func NewDiscoveryError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeDiscovery,
		Message: message,
		Err:     err,
	}
}

// NewParsingError creates a new error related to JSON parsing
func NewParsingError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeParsing,
		Message: message,
		Err:     err,
	}
}

// NewIOError creates a new error related to reading or writing a file
func NewIOError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeIO,
		Message: message,
		Err:     err,
	}
}

// TypeOf returns the category of err, or ErrorTypeUnknown if it is not an AppError
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeUnknown
}

// IsConfiguration reports whether err is a configuration error
func IsConfiguration(err error) bool {
	return TypeOf(err) == ErrorTypeConfiguration
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeConfiguration:
			return fmt.Sprintf("Configuration error: %s", detail(appErr))
		case ErrorTypeDiscovery:
			return fmt.Sprintf("Discovery error: %s", detail(appErr))
		case ErrorTypeParsing:
			return fmt.Sprintf("JSON parsing error: %s", appErr.Message)
		case ErrorTypeIO:
			return fmt.Sprintf("File error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	// Handle standard errors
	if errors.Is(err, ErrNoStrategy) {
		return "Error: No replacement strategy enabled. Choose one of --secret, --hash or --blank."
	}
	if errors.Is(err, ErrMultipleStrategies) {
		return "Error: More than one replacement strategy enabled. Choose exactly one."
	}
	if errors.Is(err, ErrDirectoryNotFound) {
		return "Error: The directory could not be found. Please check the path."
	}
	if errors.Is(err, ErrEmptyInput) {
		return "Error: The file is empty."
	}
	if errors.Is(err, ErrInvalidEncoding) {
		return "Error: The file is not valid UTF-8 text."
	}
	if errors.Is(err, ErrInvalidJSON) {
		return "Error: The file contains invalid JSON."
	}

	// Generic error message for unknown errors
	return fmt.Sprintf("Error: %v", err)
}

// detail joins the message with the wrapped sentinel so the user sees both
func detail(e *AppError) string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s (%v)", e.Message, e.Err)
}
