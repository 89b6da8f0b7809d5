// Package errors provides standardized error handling for the analysis pipeline.
package errors

import (
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
	ErrCodeConfigMissing ErrorCode = "CONFIG_MISSING"

	ErrCodeFormatUnsupported ErrorCode = "FORMAT_UNSUPPORTED"
	ErrCodeDocumentReadFailed ErrorCode = "DOCUMENT_READ_FAILED"

	ErrCodeLLMTimeout         ErrorCode = "LLM_TIMEOUT"
	ErrCodeUpstreamParseError ErrorCode = "UPSTREAM_PARSE_ERROR"
	ErrCodeLLMRequestFailed   ErrorCode = "LLM_REQUEST_FAILED"

	ErrCodeTaxonomyLookupFailed ErrorCode = "TAXONOMY_LOOKUP_FAILED"
	ErrCodeSearchTimeout        ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeIndexNotFound        ErrorCode = "INDEX_NOT_FOUND"

	ErrCodeEmployeeNotFound ErrorCode = "EMPLOYEE_NOT_FOUND"
	ErrCodeProfileNotFound  ErrorCode = "PROFILE_NOT_FOUND"
	ErrCodePositionNotFound ErrorCode = "POSITION_NOT_FOUND"

	ErrCodePersistenceFailed ErrorCode = "PERSISTENCE_FAILED"
	ErrCodeQueryTimeout      ErrorCode = "QUERY_TIMEOUT"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewConfigMissingError creates a fatal pre-flight configuration error.
func NewConfigMissingError(key string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigMissing,
		Message:   "Required configuration value is missing",
		Details:   fmt.Sprintf("key: %s", key),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewFormatUnsupportedError creates a non-retryable document format error.
func NewFormatUnsupportedError(format string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFormatUnsupported,
		Message:   "Document format is not supported",
		Details:   fmt.Sprintf("format: %s", format),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDocumentReadFailedError creates a non-retryable document read error.
func NewDocumentReadFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDocumentReadFailed,
		Message:   "Failed to read document",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMTimeoutError creates a retryable LLM timeout error.
func NewLLMTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMTimeout,
		Message:   "Skill extraction call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamParseError creates a non-retryable LLM response parse error.
// A malformed response means the run is over; retrying the same prompt is a
// product decision, not an error-path one.
func NewUpstreamParseError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamParseError,
		Message:   "LLM response is not the expected JSON object",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMRequestFailedError creates a retryable LLM transport error.
func NewLLMRequestFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMRequestFailed,
		Message:   "Skill extraction API error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTaxonomyLookupFailedError creates a retryable per-skill search error.
func NewTaxonomyLookupFailedError(skill string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTaxonomyLookupFailed,
		Message:   "Taxonomy search failed for skill",
		Details:   fmt.Sprintf("skill: %s, error: %s", skill, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchTimeoutError creates a retryable search timeout error.
func NewSearchTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchTimeout,
		Message:   "Taxonomy search timeout",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexNotFoundError creates a non-retryable index not found error.
func NewIndexNotFoundError(indexName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexNotFound,
		Message:   "Search index not found",
		Details:   fmt.Sprintf("indexName: %s", indexName),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmployeeNotFoundError creates a non-retryable missing-employee error.
func NewEmployeeNotFoundError(employeeID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmployeeNotFound,
		Message:   "Employee not found",
		Details:   fmt.Sprintf("employeeId: %s", employeeID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProfileNotFoundError creates a non-retryable missing-profile error.
func NewProfileNotFoundError(employeeID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProfileNotFound,
		Message:   "No skills profile exists for employee",
		Details:   fmt.Sprintf("employeeId: %s", employeeID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPositionNotFoundError creates a non-retryable missing-position error.
func NewPositionNotFoundError(positionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodePositionNotFound,
		Message:   "Position not found",
		Details:   fmt.Sprintf("positionId: %s", positionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPersistenceFailedError creates a retryable datastore write error.
func NewPersistenceFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePersistenceFailed,
		Message:   "Datastore operation failed",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Datastore query timeout",
		Details:   fmt.Sprintf("operation: %s", operation),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Retry Policy
// ==========================

// GetRetryCount returns the recommended retry count per error kind. The
// decision is explicit here rather than implied by call sites: parse and
// format errors never retry, transport and datastore errors do.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeTaxonomyLookupFailed,
		ErrCodePersistenceFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeLLMRequestFailed:
		return 3

	case ErrCodeQueryTimeout,
		ErrCodeSearchTimeout:
		return 2

	case ErrCodeLLMTimeout:
		return 1

	default:
		return 0
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CONFIG"):
		return "CONFIG"
	case strings.Contains(codeStr, "FORMAT") || strings.Contains(codeStr, "DOCUMENT"):
		return "DOCUMENT"
	case strings.Contains(codeStr, "LLM") || strings.Contains(codeStr, "UPSTREAM"):
		return "AI"
	case strings.Contains(codeStr, "TAXONOMY") || strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "PERSISTENCE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "NOT_FOUND"):
		return "LOOKUP"
	default:
		return "OTHER"
	}
}
