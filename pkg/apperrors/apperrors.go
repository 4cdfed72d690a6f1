package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// Error codes form the full taxonomy of terminal request outcomes.
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAccountDisabled    = "ACCOUNT_DISABLED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeInvalidDomain      = "INVALID_DOMAIN"
	CodeDuplicateIdentity  = "DUPLICATE_IDENTITY"
	CodeNotFound           = "NOT_FOUND"
	CodeForbidden          = "FORBIDDEN"
	CodeInvalidPriority    = "INVALID_PRIORITY"
	CodeInvalidState       = "INVALID_STATE"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeInternal           = "INTERNAL_ERROR"
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

// New constructs a DomainError.
func New(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// Is matches DomainErrors by code so callers can use errors.Is with the
// constructors below.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

func NewInvalidCredentials() error {
	return New(CodeInvalidCredentials, "invalid username or password", http.StatusUnauthorized, nil)
}

func NewAccountDisabled() error {
	return New(CodeAccountDisabled, "account is disabled", http.StatusForbidden, nil)
}

func NewInvalidToken() error {
	return New(CodeInvalidToken, "invalid or expired token", http.StatusUnauthorized, nil)
}

func NewInvalidDomain(domain string) error {
	return New(CodeInvalidDomain, "email domain not allowed", http.StatusBadRequest, map[string]any{"allowed_domain": domain})
}

func NewDuplicateIdentity() error {
	return New(CodeDuplicateIdentity, "username or email already taken", http.StatusBadRequest, nil)
}

func NewNotFound(resource string) error {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound, nil)
}

func NewForbidden(message string) error {
	return New(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewInvalidPriority() error {
	return New(CodeInvalidPriority, "invalid priority, allowed values: LOW, MEDIUM, HIGH", http.StatusUnprocessableEntity, nil)
}

func NewInvalidState() error {
	return New(CodeInvalidState, "invalid state, allowed values: OPEN, IN_PROGRESS, TEST, CLOSED", http.StatusBadRequest, nil)
}

func NewValidationError(message string, details map[string]any) error {
	return New(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewUnauthorized(message string) error {
	return New(CodeInvalidToken, message, http.StatusUnauthorized, nil)
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
	if errors.Is(err, pgx.ErrNoRows) {
		return &DomainError{
			Code:       CodeNotFound,
			Message:    "resource not found",
			HTTPStatus: http.StatusNotFound,
		}
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// MapError converts an arbitrary error into its DomainError form.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}
