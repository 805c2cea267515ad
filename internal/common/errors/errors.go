// Package errors provides standardized error handling for BPMN workflow integration.
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
	ErrCodeInputValidationFailed ErrorCode = "INPUT_VALIDATION_FAILED"

	ErrCodeGeocodeZeroResults        ErrorCode = "GEOCODE_ZERO_RESULTS"
	ErrCodeGeocodeServiceUnavailable ErrorCode = "GEOCODE_SERVICE_UNAVAILABLE"

	ErrCodeRideRequestFailed  ErrorCode = "RIDE_REQUEST_FAILED"
	ErrCodeRideEstimateFailed ErrorCode = "RIDE_ESTIMATE_FAILED"
	ErrCodeRidePersistFailed  ErrorCode = "RIDE_PERSIST_FAILED"
	ErrCodeInvalidRideType    ErrorCode = "INVALID_RIDE_TYPE"
	ErrCodeLyftAuthFailed     ErrorCode = "LYFT_AUTH_FAILED"

	ErrCodeSMSSendFailed      ErrorCode = "SMS_SEND_FAILED"
	ErrCodeReplyTypeUnknown   ErrorCode = "REPLY_TYPE_UNKNOWN"
	ErrCodeDatabaseConnection ErrorCode = "DATABASE_CONNECTION_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.Cause
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
		Cause:     cause,
	}
}

// NewInputValidationFailedError creates a non-retryable job input error.
func NewInputValidationFailedError(details string) *StandardError {
	return newError(ErrCodeInputValidationFailed, "Job input validation failed", details, false, nil)
}

// NewGeocodeZeroResultsError is raised when an address in a ride request
// cannot be resolved. The user has to rephrase, so it is never retried.
func NewGeocodeZeroResultsError(err error) *StandardError {
	return newError(ErrCodeGeocodeZeroResults, "Address could not be resolved", errorDetails(err), false, err)
}

// NewGeocodeServiceUnavailableError wraps every other geocoding failure.
func NewGeocodeServiceUnavailableError(err error) *StandardError {
	return newError(ErrCodeGeocodeServiceUnavailable, "Geocoding service unavailable", errorDetails(err), false, err)
}

// NewRideRequestFailedError creates a retryable ride-service error.
func NewRideRequestFailedError(err error) *StandardError {
	return newError(ErrCodeRideRequestFailed, "Ride request failed", errorDetails(err), true, err)
}

// NewRideEstimateFailedError creates a retryable ride-service error.
func NewRideEstimateFailedError(err error) *StandardError {
	return newError(ErrCodeRideEstimateFailed, "Ride estimate failed", errorDetails(err), true, err)
}

// NewRidePersistFailedError is raised when a ride was booked but its record
// could not be stored. It is never retried: a retry would book the ride again.
// The booked ride ID travels with the BPMN error.
func NewRidePersistFailedError(rideID string, err error) *StandardError {
	stdErr := newError(ErrCodeRidePersistFailed, "Ride record could not be stored", errorDetails(err), false, err)
	stdErr.Metadata = map[string]interface{}{"rideId": rideID}
	return stdErr
}

// NewInvalidRideTypeError creates a non-retryable ride type error.
func NewInvalidRideTypeError(rideType string) *StandardError {
	return newError(ErrCodeInvalidRideType, "Unsupported ride type", fmt.Sprintf("rideType: %s", rideType), false, nil)
}

// NewLyftAuthFailedError creates a non-retryable authorization error.
func NewLyftAuthFailedError(err error) *StandardError {
	return newError(ErrCodeLyftAuthFailed, "Ride service authorization failed", errorDetails(err), false, err)
}

// NewSMSSendFailedError creates a retryable SMS delivery error.
func NewSMSSendFailedError(err error) *StandardError {
	return newError(ErrCodeSMSSendFailed, "SMS delivery failed", errorDetails(err), true, err)
}

// NewReplyTypeUnknownError creates a non-retryable reply template error.
func NewReplyTypeUnknownError(replyType string) *StandardError {
	return newError(ErrCodeReplyTypeUnknown, "No reply template for type", fmt.Sprintf("replyType: %s", replyType), false, nil)
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnection, "Database connection error", errorDetails(err), true, err)
}

func errorDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the codes modelled on the
// BPMN error boundary events. Codes missing here pass through unchanged.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInputValidationFailed:     "INPUT_VALIDATION_FAILED",
	ErrCodeGeocodeZeroResults:        "ZERO_RESULTS",
	ErrCodeGeocodeServiceUnavailable: "SERVICE_UNAVAILABLE",
	ErrCodeRideRequestFailed:         "RIDE_REQUEST_FAILED",
	ErrCodeRideEstimateFailed:        "RIDE_ESTIMATE_FAILED",
	ErrCodeRidePersistFailed:         "RIDE_PERSIST_FAILED",
	ErrCodeInvalidRideType:           "INVALID_RIDE_TYPE",
	ErrCodeLyftAuthFailed:            "LYFT_AUTH_FAILED",
	ErrCodeSMSSendFailed:             "SMS_SEND_FAILED",
	ErrCodeReplyTypeUnknown:          "REPLY_TYPE_UNKNOWN",
}

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeRideRequestFailed,
		ErrCodeSMSSendFailed,
		ErrCodeDatabaseConnection:
		return 3

	case ErrCodeRideEstimateFailed:
		return 2

	default:
		return 0 // business errors, geocoding included
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

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "GEOCODE"):
		return "GEOCODING"
	case strings.HasPrefix(codeStr, "RIDE") || strings.Contains(codeStr, "LYFT"):
		return "RIDE_SERVICE"
	case strings.Contains(codeStr, "DATABASE"):
		return "DATABASE"
	case strings.HasPrefix(codeStr, "SMS") || strings.HasPrefix(codeStr, "REPLY"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
