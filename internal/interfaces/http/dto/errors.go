package dto

import "net/http"

// General error codes
const (
	ErrCodeInternal = "ERR_INTERNAL"
)

// Authentication error codes
const (
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeTokenExpired       = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked       = "ERR_TOKEN_REVOKED"
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeNoCurrentUser      = "ERR_NO_CURRENT_USER"
)

// Resource error codes
const (
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeUserNotFound  = "ERR_USER_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeCustomerExist = "ERR_CUSTOMER_EXISTS"
	ErrCodeEmailInUse    = "ERR_EMAIL_IN_USE"
)

// Business rule error codes
const (
	ErrCodeInvalidState          = "ERR_INVALID_STATE"
	ErrCodeReferenceNotFound     = "ERR_REFERENCE_NOT_FOUND"
	ErrCodeFailureDetailRequired = "ERR_FAILURE_DETAIL_REQUIRED"
	ErrCodeCorruptData           = "ERR_CORRUPT_DATA"
)

// Input error codes
const (
	ErrCodeBadRequest        = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput      = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON       = "ERR_INVALID_JSON"
	ErrCodePasswordMismatch  = "ERR_PASSWORD_MISMATCH"
	ErrCodeTermsNotAccepted  = "ERR_TERMS_NOT_ACCEPTED"
	ErrCodeInvalidPreference = "ERR_INVALID_PREFERENCE"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeCorruptData: http.StatusInternalServerError,

	// Auth errors
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeTokenRevoked:       http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeNoCurrentUser:      http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeUserNotFound:  http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeCustomerExist: http.StatusConflict,
	ErrCodeEmailInUse:    http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:          http.StatusUnprocessableEntity,
	ErrCodeReferenceNotFound:     http.StatusUnprocessableEntity,
	ErrCodeFailureDetailRequired: http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:        http.StatusBadRequest,
	ErrCodeInvalidInput:      http.StatusBadRequest,
	ErrCodeInvalidJSON:       http.StatusBadRequest,
	ErrCodePasswordMismatch:  http.StatusBadRequest,
	ErrCodeTermsNotAccepted:  http.StatusBadRequest,
	ErrCodeInvalidPreference: http.StatusBadRequest,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode converts a domain error code to its API form
func NormalizeErrorCode(code string) string {
	if code == "" {
		return ErrCodeInternal
	}
	if len(code) > 4 && code[:4] == "ERR_" {
		return code
	}
	return "ERR_" + code
}
