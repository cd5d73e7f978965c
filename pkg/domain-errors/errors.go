// Package derrors defines the domain error type shared across services.
//
// Errors carry a stable machine-readable code plus a human-readable message.
// Handlers translate codes to HTTP statuses in one place (httputil.WriteError);
// services and stores never reference HTTP concepts directly.
package derrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Code identifies a class of failure.
type Code string

const (
	// Validation errors: caller-fixable, never retried automatically.
	CodeBadRequest           Code = "bad_request"
	CodeInvalidInput         Code = "invalid_input"
	CodeInvalidVIN           Code = "invalid_vin"
	CodeCoverageBelowMinimum Code = "coverage_below_state_minimum"
	CodeInvalidPayment       Code = "invalid_payment_details"

	// State errors: process/timing conflicts the caller decides how to resolve.
	CodeInvalidTransition Code = "invalid_state_transition"
	CodeQuoteExpired      Code = "quote_expired"
	CodeBindInProgress    Code = "bind_already_in_progress"
	CodeAlreadyBound      Code = "already_bound"
	CodeConflict          Code = "conflict"

	// Dependency errors: recoverable for rating, fatal for binding.
	CodeDependencyUnavailable Code = "dependency_unavailable"
	CodePaymentDeclined       Code = "payment_declined"

	CodeNotFound     Code = "not_found"
	CodeUnauthorized Code = "unauthorized"
	CodeRateLimited  Code = "rate_limited"
	CodeInternal     Code = "internal_error"
)

// DomainError is the error value returned by services. Fields names the
// offending input fields or states so callers can build actionable UI.
type DomainError struct {
	Code    Code
	Message string
	Fields  []string

	cause error
}

func (e DomainError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, strings.Join(e.Fields, ", "))
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New constructs a DomainError with the given code and message.
func New(code Code, message string) DomainError {
	return DomainError{Code: code, Message: message}
}

// Newf constructs a DomainError with a formatted message.
func Newf(code Code, format string, args ...any) DomainError {
	return DomainError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithFields returns a copy of the error annotated with offending field names.
func (e DomainError) WithFields(fields ...string) DomainError {
	e.Fields = append(e.Fields, fields...)
	return e
}

// WithCause returns a copy of the error carrying an underlying sentinel, so
// callers can branch with errors.Is without parsing messages.
func (e DomainError) WithCause(cause error) DomainError {
	e.cause = cause
	return e
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e DomainError) Unwrap() error {
	return e.cause
}

// HasCode reports whether err is a DomainError with the given code.
func HasCode(err error, code Code) bool {
	var de DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for unknown
// error values so nothing leaks internals to callers.
func CodeOf(err error) Code {
	var de DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// FieldsOf extracts the offending field names from err, if any.
func FieldsOf(err error) []string {
	var de DomainError
	if errors.As(err, &de) {
		return de.Fields
	}
	return nil
}

// ToHTTPStatus maps a domain error code to an HTTP status code.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeInvalidInput, CodeInvalidVIN, CodeInvalidPayment:
		return http.StatusBadRequest
	case CodeCoverageBelowMinimum:
		return http.StatusUnprocessableEntity
	case CodeInvalidTransition, CodeQuoteExpired, CodeBindInProgress, CodeAlreadyBound, CodeConflict:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeDependencyUnavailable:
		return http.StatusBadGateway
	case CodePaymentDeclined:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}
