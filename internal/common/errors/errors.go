// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Caller-visible business errors
	ErrCodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
	ErrCodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	ErrCodeNoValidRecords    ErrorCode = "NO_VALID_RECORDS"
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeCodeInvalid       ErrorCode = "CODE_INVALID"

	// Technical errors
	ErrCodePersistenceFailed    ErrorCode = "PERSISTENCE_FAILED"
	ErrCodeQueryExecutionFailed ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeChannelSendFailed    ErrorCode = "CHANNEL_SEND_FAILED"
	ErrCodeIndexingFailed       ErrorCode = "INDEXING_FAILED"
	ErrCodeInternal             ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewValidationError reports malformed input or missing mandatory fields.
func NewValidationError(message string) *StandardError {
	return newError(ErrCodeValidationFailed, message, "", false, nil)
}

// NewUnsupportedFormatError is returned before any parsing of an upload is attempted.
func NewUnsupportedFormatError(kind string) *StandardError {
	return newError(ErrCodeUnsupportedFormat, "unsupported format", fmt.Sprintf("kind: %s", kind), false, nil)
}

// NewNoValidRecordsError is returned when filtering leaves nothing to import.
func NewNoValidRecordsError() *StandardError {
	return newError(ErrCodeNoValidRecords, "no valid records", "", false, nil)
}

// NewNotFoundError reports a failed caller-facing lookup.
func NewNotFoundError(resource, key string) *StandardError {
	return newError(ErrCodeNotFound, fmt.Sprintf("%s not found", resource), fmt.Sprintf("%s: %s", resource, key), false, nil)
}

// NewCodeInvalidError reports a wrong, expired or already used verification code.
func NewCodeInvalidError(identifier string) *StandardError {
	return newError(ErrCodeCodeInvalid, "verification code invalid or expired", fmt.Sprintf("identifier: %s", identifier), false, nil)
}

// NewPersistenceError reports a failed write of a record the caller depends on.
func NewPersistenceError(entity string, err error) *StandardError {
	return newError(ErrCodePersistenceFailed, fmt.Sprintf("failed to persist %s", entity), err.Error(), true, err)
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(query string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("query: %s, error: %s", query, err.Error()), true, err)
}

// NewChannelError wraps a failed email or SMS send.
func NewChannelError(channel string, err error) *StandardError {
	return newError(ErrCodeChannelSendFailed, fmt.Sprintf("%s send failed", channel), err.Error(), true, err)
}

// NewIndexingError wraps a failed search index write.
func NewIndexingError(err error) *StandardError {
	return newError(ErrCodeIndexingFailed, "search indexing failed", err.Error(), true, err)
}

// ==========================
// 4. Mapping & Retry Policy
// ==========================

// BPMNErrorMapping maps internal codes to the BPMN error codes caught by boundary events.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeValidationFailed:     "VALIDATION_FAILED",
	ErrCodeUnsupportedFormat:    "VALIDATION_FAILED",
	ErrCodeNoValidRecords:       "VALIDATION_FAILED",
	ErrCodeNotFound:             "NOT_FOUND",
	ErrCodeCodeInvalid:          "CODE_INVALID",
	ErrCodePersistenceFailed:    "PERSISTENCE_FAILED",
	ErrCodeQueryExecutionFailed: "QUERY_EXECUTION_FAILED",
	ErrCodeChannelSendFailed:    "CHANNEL_SEND_FAILED",
	ErrCodeIndexingFailed:       "INDEXING_FAILED",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodePersistenceFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeChannelSendFailed:
		return 3

	case ErrCodeIndexingFailed:
		return 1

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandard extracts a StandardError from err's chain.
func AsStandard(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandard(err)
	return ok && stdErr.Code == code
}

// Normalize always returns a StandardError, wrapping unknown errors as internal.
func Normalize(err error) *StandardError {
	if stdErr, ok := AsStandard(err); ok {
		return stdErr
	}
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false, err)
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "FORMAT") || strings.Contains(codeStr, "RECORDS"):
		return "VALIDATION"
	case strings.Contains(codeStr, "NOT_FOUND"):
		return "NOT_FOUND"
	case strings.Contains(codeStr, "PERSISTENCE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "CHANNEL"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INDEXING"):
		return "SEARCH"
	case strings.Contains(codeStr, "CODE"):
		return "VERIFICATION"
	default:
		return "OTHER"
	}
}
