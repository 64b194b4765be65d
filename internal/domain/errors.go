package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeValidation   ErrorCode = "VALIDATION_ERROR"

	// Quiz generation errors
	CodeConfiguration   ErrorCode = "CONFIGURATION_ERROR"
	CodeLLMServiceError ErrorCode = "LLM_SERVICE_ERROR"
	CodeParsingError    ErrorCode = "PARSING_ERROR"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	// RawResponse holds the model reply for parsing failures.
	RawResponse string `json:"rawResponse,omitempty"`
	Cause       error  `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code        string `json:"code"`
		Message     string `json:"message"`
		RawResponse string `json:"rawResponse,omitempty"`
	}{
		Code:        string(e.Code),
		Message:     e.Message,
		RawResponse: e.RawResponse,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

// NewConfigurationError reports a process-level misconfiguration. It fails
// every request until the process is restarted with a fixed configuration.
func NewConfigurationError(message string) *DomainError {
	return NewError(CodeConfiguration, message, nil)
}

// NewLLMServiceError keeps the underlying message visible to the caller.
func NewLLMServiceError(cause error) *DomainError {
	msg := "LLM service request failed"
	if cause != nil {
		msg = cause.Error()
	}
	return NewError(CodeLLMServiceError, msg, cause)
}

func NewParsingError(rawResponse string, cause error) *DomainError {
	e := NewError(CodeParsingError, "Failed to process the AI response (Parsing Error)", cause)
	e.RawResponse = rawResponse
	return e
}

// ValidationError describes a single invalid request field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every field problem found in a request.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

func NewMissingFieldError(field string) ValidationError {
	return ValidationError{Field: field, Message: "is required"}
}

func NewInvalidValueError(field string, value any) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf("has invalid value %v", value)}
}

func NewOutOfRangeError(field string, value, min, max int) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf("value %d is out of range [%d, %d]", value, min, max)}
}

// PublicMessage returns the text a user should see for err.
func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return verrs.Error()
	}
	var derr *DomainError
	if errors.As(err, &derr) {
		return derr.Message
	}
	return err.Error()
}
