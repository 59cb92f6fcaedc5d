package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned to callers in the `code` field of failed actions.
const (
	CodeValidation     = "VALIDATION_FAILED"
	CodeConflict       = "CONFLICT"
	CodeNotRegistered  = "NOT_REGISTERED"
	CodeBadCredentials = "BAD_CREDENTIALS"
	CodeDenied         = "DENIED"
	CodeTokenInvalid   = "TOKEN_INVALID"
	CodeSigning        = "SIGNING_FAILED"
	CodeStore          = "STORE_ERROR"
	CodeLogoutFailed   = "LOGOUT_FAILED"
	CodeRateLimited    = "RATE_LIMITED"
	CodeInternal       = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewNotRegistered(message string) error {
	return NewDomainError(CodeNotRegistered, message, http.StatusUnauthorized, nil)
}

func NewBadCredentials(message string) error {
	return NewDomainError(CodeBadCredentials, message, http.StatusUnauthorized, nil)
}

// NewDenied is used for both "not yours" and "does not exist" so callers cannot
// enumerate other users' records.
func NewDenied(message string) error {
	return NewDomainError(CodeDenied, message, http.StatusForbidden, nil)
}

func NewTokenInvalid(err error) error {
	return &DomainError{
		Code:       CodeTokenInvalid,
		Message:    "not logged in",
		HTTPStatus: http.StatusUnauthorized,
		Err:        err,
	}
}

func NewSigningError(err error) error {
	return &DomainError{
		Code:       CodeSigning,
		Message:    "unable to start a session",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewStoreError wraps an unexpected persistence failure. The message is the
// user-safe text; err carries the detail that is only logged.
func NewStoreError(message string, err error) error {
	return &DomainError{
		Code:       CodeStore,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewLogoutFailed(err error) error {
	return &DomainError{
		Code:       CodeLogoutFailed,
		Message:    "Failed log out",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewRateLimited(message string) error {
	return NewDomainError(CodeRateLimited, message, http.StatusTooManyRequests, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// HasCode reports whether err is a DomainError carrying code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	return domainErr.Code == code
}
