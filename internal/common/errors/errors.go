// Package errors provides standardized error handling for the research pipeline.
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
	ErrCodeExtractionFailed      ErrorCode = "EXTRACTION_FAILED"
	ErrCodeExtractionAPITimeout  ErrorCode = "EXTRACTION_API_TIMEOUT"
	ErrCodeClassificationFailed  ErrorCode = "CLASSIFICATION_FAILED"
	ErrCodeLLMTimeout            ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMResponseMalformed  ErrorCode = "LLM_RESPONSE_MALFORMED"
	ErrCodeWebSearchTimeout      ErrorCode = "WEB_SEARCH_TIMEOUT"
	ErrCodeWebSearchFailed       ErrorCode = "WEB_SEARCH_FAILED"
	ErrCodeFlightLookupFailed    ErrorCode = "FLIGHT_LOOKUP_FAILED"
	ErrCodeHotelLookupFailed     ErrorCode = "HOTEL_LOOKUP_FAILED"
	ErrCodeTravelAPITimeout      ErrorCode = "TRAVEL_API_TIMEOUT"
	ErrCodePreferencesLoadFailed ErrorCode = "PREFERENCES_LOAD_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"

	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeAuditIndexFailed              ErrorCode = "AUDIT_INDEX_FAILED"

	ErrCodeMissingDates   ErrorCode = "MISSING_DATES"
	ErrCodeMissingBudget  ErrorCode = "MISSING_BUDGET"
	ErrCodeMissingOrigin  ErrorCode = "MISSING_ORIGIN"
	ErrCodeNoDestinations ErrorCode = "NO_DESTINATIONS"
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

// NewExtractionFailedError creates a retryable extraction error.
func NewExtractionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExtractionFailed,
		Message:   "Parameter extraction API error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewExtractionAPITimeoutError creates a retryable extraction timeout error.
func NewExtractionAPITimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeExtractionAPITimeout,
		Message:   "Parameter extraction API timeout",
		Details:   "API call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewClassificationFailedError creates a retryable classification error.
func NewClassificationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeClassificationFailed,
		Message:   "Request classification API error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMTimeoutError creates a retryable LLM timeout error.
func NewLLMTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMTimeout,
		Message:   "LLM completion timeout",
		Details:   "LLM call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMResponseMalformedError creates a non-retryable malformed-response error.
// Callers are expected to fall back to heuristic extraction instead of retrying.
func NewLLMResponseMalformedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMResponseMalformed,
		Message:   "LLM response did not match the expected schema",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewWebSearchTimeoutError creates a non-retryable (returns empty) web search timeout error.
func NewWebSearchTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeWebSearchTimeout,
		Message:   "Web search API timeout",
		Details:   "Search call exceeded timeout threshold",
		Retryable: false, // callers degrade to empty results, never retry
		Timestamp: time.Now().UTC(),
	}
}

// NewWebSearchFailedError creates a retryable web search error.
func NewWebSearchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeWebSearchFailed,
		Message:   "Web search API error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewFlightLookupFailedError creates a retryable flight search error.
func NewFlightLookupFailedError(destination string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFlightLookupFailed,
		Message:   "Flight search failed",
		Details:   fmt.Sprintf("destination: %s, error: %s", destination, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewHotelLookupFailedError creates a retryable hotel search error.
func NewHotelLookupFailedError(destination string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeHotelLookupFailed,
		Message:   "Hotel search failed",
		Details:   fmt.Sprintf("destination: %s, error: %s", destination, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTravelAPITimeoutError creates a retryable travel API timeout error.
func NewTravelAPITimeoutError(kind string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTravelAPITimeout,
		Message:   "Travel API timeout",
		Details:   fmt.Sprintf("lookup: %s", kind),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPreferencesLoadFailedError creates a non-retryable preferences error.
// Callers fall back to built-in defaults.
func NewPreferencesLoadFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePreferencesLoadFailed,
		Message:   "Traveler preferences could not be loaded",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Database query timeout",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewElasticsearchConnectionFailedError creates a retryable Elasticsearch connection error.
func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeElasticsearchConnectionFailed,
		Message:   "Elasticsearch connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuditIndexFailedError creates a retryable audit indexing error.
func NewAuditIndexFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuditIndexFailed,
		Message:   "Research audit document could not be indexed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Retry Policy
// ==========================

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeExtractionFailed,
		ErrCodeClassificationFailed,
		ErrCodeWebSearchFailed,
		ErrCodeFlightLookupFailed,
		ErrCodeHotelLookupFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeAuditIndexFailed:
		return 3 // Retryable technical errors

	case ErrCodeExtractionAPITimeout,
		ErrCodeQueryTimeout,
		ErrCodeTravelAPITimeout:
		return 2 // Partial retry for timeouts

	case ErrCodeLLMTimeout:
		return 1

	default:
		return 0 // Business errors: no retry
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// ==========================
// 4. Utility Functions
// ==========================

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "AUDIT"):
		return "SEARCH"
	case strings.Contains(codeStr, "FLIGHT") || strings.Contains(codeStr, "HOTEL") || strings.Contains(codeStr, "TRAVEL"):
		return "TRAVEL"
	case strings.Contains(codeStr, "LLM") || strings.Contains(codeStr, "EXTRACTION") || strings.Contains(codeStr, "CLASSIFICATION"):
		return "AI"
	case strings.Contains(codeStr, "WEB"):
		return "WEB"
	case strings.Contains(codeStr, "MISSING") || strings.Contains(codeStr, "NO_"):
		return "PRECONDITION"
	default:
		return "OTHER"
	}
}
