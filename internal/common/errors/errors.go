// Package errors provides the standardized error type shared by the HTTP
// transport, the Zeebe worker and the reference-data loaders.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Request errors
const (
	ErrCodeMissingField     ErrorCode = "MISSING_FIELD"
	ErrCodeUnparseableValue ErrorCode = "UNPARSEABLE_VALUE"
	ErrCodeInvalidRequest   ErrorCode = "INVALID_REQUEST"
	ErrCodeLookupMiss       ErrorCode = "LOOKUP_MISS"
)

// Reference data / infrastructure errors
const (
	ErrCodeReferenceDataInvalid    ErrorCode = "REFERENCE_DATA_INVALID"
	ErrCodeReferenceDataLoadFailed ErrorCode = "REFERENCE_DATA_LOAD_FAILED"
	ErrCodeReferenceCacheFailed    ErrorCode = "REFERENCE_CACHE_FAILED"
	ErrCodeAssessmentFailed        ErrorCode = "ASSESSMENT_FAILED"
	ErrCodeInternal                ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Field     string                 `json:"field,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("StandardError[%s]: %s (field %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
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

// NewMissingFieldError is returned when a required request field is absent.
func NewMissingFieldError(field string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingField,
		Message:   fmt.Sprintf("Missing required field: %s", field),
		Field:     field,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnparseableValueError is returned when a field that must be numeric
// matches none of the range grammar rules.
func NewUnparseableValueError(field string, value interface{}) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnparseableValue,
		Message:   fmt.Sprintf("%s must be numeric or a recognized range", field),
		Details:   fmt.Sprintf("value: %v", value),
		Field:     field,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRequestError wraps schema validation failures.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Assessment request failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLookupMissError describes a reference-table miss. The scoring core
// degrades instead of returning it; table coverage checks report it.
func NewLookupMissError(table, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLookupMiss,
		Message:   fmt.Sprintf("No matching row in %s", table),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewReferenceDataInvalidError reports reference rows that violate table invariants.
func NewReferenceDataInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeReferenceDataInvalid,
		Message:   "Reference data failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewReferenceDataLoadFailedError creates a retryable load error.
func NewReferenceDataLoadFailedError(source string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReferenceDataLoadFailed,
		Message:   fmt.Sprintf("Failed to load reference data from %s", source),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewReferenceCacheFailedError creates a retryable cache error.
func NewReferenceCacheFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReferenceCacheFailed,
		Message:   "Reference data cache error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewAssessmentFailedError wraps an unexpected engine failure.
func NewAssessmentFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAssessmentFailed,
		Message:   "Assessment could not be evaluated",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewExternalServiceError is used for broker and datastore failures.
func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 4. Conversion
// ==========================

// AsStandardError normalizes any error into a StandardError.
func AsStandardError(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// IsCode reports whether err is a StandardError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	return errors.As(err, &stdErr) && stdErr.Code == code
}

// HTTPStatus maps an error code to the status the HTTP transport responds with.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeMissingField, ErrCodeUnparseableValue, ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case ErrCodeLookupMiss:
		return http.StatusNotFound
	case ErrCodeReferenceDataLoadFailed, ErrCodeReferenceCacheFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeReferenceDataLoadFailed, ErrCodeReferenceCacheFailed:
		return 3
	case "EXTERNAL_SERVICE_ERROR":
		return 3
	case "TIMEOUT_ERROR":
		return 2
	default:
		return 0 // request errors: no retry
	}
}

// GetErrorCategory groups codes for logging.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeMissingField, ErrCodeUnparseableValue, ErrCodeInvalidRequest:
		return "REQUEST"
	case ErrCodeLookupMiss, ErrCodeReferenceDataInvalid:
		return "REFERENCE_DATA"
	case ErrCodeReferenceDataLoadFailed, ErrCodeReferenceCacheFailed, "EXTERNAL_SERVICE_ERROR", "TIMEOUT_ERROR":
		return "TECHNICAL"
	default:
		return "INTERNAL"
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{}
	if stdErr.Field != "" {
		vars["errorField"] = stdErr.Field
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}
