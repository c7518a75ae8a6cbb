package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business error with a structured code.
// Codes follow GYM-<AREA>-<NNNN>; the first three digits are the HTTP
// status the transport layer reports.
type DomainError struct {
	Code    string       // Error code (e.g., "GYM-TRNE-4040")
	Message string       // Human-readable message
	Details string       // Optional additional details
	Fields  []FieldError // Per-field validation failures
	Cause   error        // Underlying error (if any)
}

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

func (e *DomainError) clone() *DomainError {
	c := *e
	if e.Fields != nil {
		c.Fields = append([]FieldError(nil), e.Fields...)
	}
	return &c
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	c := e.clone()
	c.Details = details
	return c
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	c := e.clone()
	c.Cause = cause
	return c
}

// WithFields returns a copy of the error carrying field violations.
func (e *DomainError) WithFields(fields ...FieldError) *DomainError {
	c := e.clone()
	c.Fields = append(c.Fields, fields...)
	return c
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Authentication errors (AUTH).
var (
	// ErrInvalidCredentials indicates a username/password pair did not match.
	ErrInvalidCredentials = NewDomainError("GYM-AUTH-4010", "invalid username or password")

	// ErrUnauthenticated indicates a missing, unknown or foreign token.
	ErrUnauthenticated = NewDomainError("GYM-AUTH-4011", "authentication required")

	// ErrUserInactive indicates the account is deactivated.
	ErrUserInactive = NewDomainError("GYM-AUTH-4030", "user is not active")

	// ErrLoginThrottled indicates too many login attempts for a username.
	ErrLoginThrottled = NewDomainError("GYM-AUTH-4290", "too many login attempts")
)

// Session errors (SESS).
var (
	// ErrSessionNotFound indicates no live session exists for a token hash.
	ErrSessionNotFound = NewDomainError("GYM-SESS-4040", "session not found")

	// ErrSessionConflict indicates a token hash is already bound.
	ErrSessionConflict = NewDomainError("GYM-SESS-4090", "session token conflict")

	// ErrSessionQuotaExceeded indicates the per-user session cap is reached.
	ErrSessionQuotaExceeded = NewDomainError("GYM-SESS-4290", "user session quota exceeded")
)

// Entity errors.
var (
	ErrUserNotFound         = NewDomainError("GYM-USER-4040", "user not found")
	ErrUsernameTaken        = NewDomainError("GYM-USER-4090", "username already exists")
	ErrTraineeNotFound      = NewDomainError("GYM-TRNE-4040", "trainee not found")
	ErrTrainerNotFound      = NewDomainError("GYM-TRNR-4040", "trainer not found")
	ErrTrainingNotFound     = NewDomainError("GYM-TRNG-4040", "training not found")
	ErrTrainingTypeNotFound = NewDomainError("GYM-TYPE-4040", "training type not found")
)

// Request errors.
var (
	// ErrValidation indicates request data failed validation.
	ErrValidation = NewDomainError("GYM-VAL-4000", "validation failed")

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = NewDomainError("GYM-SYS-4000", "bad request")

	// ErrNotFound indicates no route matches the request path.
	ErrNotFound = NewDomainError("GYM-SYS-4040", "not found")

	// ErrForbidden indicates the client is not allowed to reach the endpoint.
	ErrForbidden = NewDomainError("GYM-SYS-4030", "forbidden")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("GYM-SYS-4290", "too many requests")
)

// System errors (SYS).
var (
	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("GYM-SYS-5000", "internal server error")

	// ErrStorageError indicates a storage layer error.
	ErrStorageError = NewDomainError("GYM-SYS-5001", "storage error")

	// ErrServiceUnavailable indicates the service is temporarily unavailable.
	ErrServiceUnavailable = NewDomainError("GYM-SYS-5030", "service unavailable")
)
