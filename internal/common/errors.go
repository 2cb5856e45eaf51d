package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error kinds. Every stage-local failure is wrapped into exactly one of these
// at the stage boundary, with the offending path or identifier attached.
var (
	ErrMissingInput      = errors.New("missing input")
	ErrExternalService   = errors.New("external service error")
	ErrExternalTool      = errors.New("external tool error")
	ErrMalformedArtifact = errors.New("malformed artifact")
	ErrConfiguration     = errors.New("configuration error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// MissingInputError reports an absent file or path.
func MissingInputError(path string) error {
	return NewAppError("MISSING_INPUT", fmt.Sprintf("file not found: %s", path), ErrMissingInput)
}

// ExternalServiceError reports an AI endpoint failure (unreachable,
// unauthorized, or empty response). detail carries the distinct condition.
func ExternalServiceError(detail string, cause error) error {
	if cause == nil {
		cause = ErrExternalService
	} else {
		cause = fmt.Errorf("%w: %w", ErrExternalService, cause)
	}
	return NewAppError("EXTERNAL_SERVICE", detail, cause)
}

// ExternalToolError reports a compiler subprocess failure (missing binary,
// timeout, or non-zero exit). Diagnostic output is passed through verbatim.
func ExternalToolError(detail string, cause error) error {
	if cause == nil {
		cause = ErrExternalTool
	} else {
		cause = fmt.Errorf("%w: %w", ErrExternalTool, cause)
	}
	return NewAppError("EXTERNAL_TOOL", detail, cause)
}

// MalformedArtifactError reports an intermediate artifact the next stage
// cannot parse.
func MalformedArtifactError(path string, cause error) error {
	if cause == nil {
		cause = ErrMalformedArtifact
	} else {
		cause = fmt.Errorf("%w: %w", ErrMalformedArtifact, cause)
	}
	return NewAppError("MALFORMED_ARTIFACT", fmt.Sprintf("cannot parse artifact: %s", path), cause)
}

// ConfigurationError reports absent or invalid required job fields.
func ConfigurationError(message string) error {
	return NewAppError("CONFIG_ERROR", message, ErrConfiguration)
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
