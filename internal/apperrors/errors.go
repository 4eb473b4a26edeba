// Package apperrors provides the structured error type returned by services and
// rendered by the HTTP error middleware.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents an error code
type ErrorCode string

const (
	CodeBadRequest           ErrorCode = "BAD_REQUEST"
	CodeUnauthorized         ErrorCode = "UNAUTHORIZED"
	CodeNotFound             ErrorCode = "NOT_FOUND"
	CodeConflict             ErrorCode = "CONFLICT"
	CodeValidationFailed     ErrorCode = "VALIDATION_FAILED"
	CodeTooManyRequests      ErrorCode = "TOO_MANY_REQUESTS"
	CodePayloadTooLarge      ErrorCode = "PAYLOAD_TOO_LARGE"
	CodeInternal             ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"

	CodeRecipeNotFound         ErrorCode = "RECIPE_NOT_FOUND"
	CodeInvalidCredentials     ErrorCode = "INVALID_CREDENTIALS"
	CodeEmailAlreadyExists     ErrorCode = "EMAIL_ALREADY_EXISTS"
	CodeRecipeValidationFailed ErrorCode = "RECIPE_VALIDATION_FAILED"
)

// GenericMessage is what users see for anything that is not classified
const GenericMessage = "Something went wrong. Please try again."

// AppError represents an application error with structured information
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// StatusCode returns the appropriate HTTP status code
func (e *AppError) StatusCode() int {
	switch e.Code {
	case CodeBadRequest, CodeValidationFailed:
		return http.StatusBadRequest
	case CodeUnauthorized, CodeInvalidCredentials:
		return http.StatusUnauthorized
	case CodeNotFound, CodeRecipeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeEmailAlreadyExists:
		return http.StatusConflict
	case CodeRecipeValidationFailed:
		return http.StatusUnprocessableEntity
	case CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeExternalServiceError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WithCause adds a cause error
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// New creates a new application error
func New(code ErrorCode, message, details string) *AppError {
	return &AppError{Code: code, Message: message, Details: details}
}

func NewBadRequestError(message string) *AppError {
	return New(CodeBadRequest, message, "")
}

// NewValidationError creates a validation error for malformed client input
func NewValidationError(details string) *AppError {
	return New(CodeValidationFailed, "Validation failed", details)
}

func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "Authentication required"
	}
	return New(CodeUnauthorized, message, "")
}

// NewNotFoundError creates a not found error for the named resource
func NewNotFoundError(resource string) *AppError {
	return New(CodeNotFound, resource+" not found", "")
}

func NewRecipeNotFoundError(recipeID string) *AppError {
	return New(CodeRecipeNotFound, "Recipe not found", "recipe "+recipeID+" does not exist")
}

func NewConflictError(message string) *AppError {
	return New(CodeConflict, message, "")
}

func NewInvalidCredentialsError() *AppError {
	return New(CodeInvalidCredentials, "Invalid credentials", "")
}

func NewEmailAlreadyExistsError() *AppError {
	return New(CodeEmailAlreadyExists, "Email already exists", "an account with this email address already exists")
}

// NewRecipeValidationError is the one failure with its own user-facing message:
// the model produced a recipe that does not match the schema.
func NewRecipeValidationError(cause error) *AppError {
	return New(CodeRecipeValidationFailed, "The generated recipe was not valid. Please try again.", "").WithCause(cause)
}

func NewPayloadTooLargeError(limit int64) *AppError {
	return New(CodePayloadTooLarge, "Upload too large", fmt.Sprintf("maximum size is %d bytes", limit))
}

func NewTooManyRequestsError(details string) *AppError {
	return New(CodeTooManyRequests, "Too many requests", details)
}

func NewDatabaseError(operation string, cause error) *AppError {
	return New(CodeDatabaseError, GenericMessage, "failed to "+operation).WithCause(cause)
}

func NewExternalServiceError(service string, cause error) *AppError {
	return New(CodeExternalServiceError, GenericMessage, "failed to communicate with "+service).WithCause(cause)
}

// Wrap wraps an error as an internal error if it's not already an AppError
func Wrap(err error, details string) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := As(err); ok {
		return appErr
	}
	return New(CodeInternal, GenericMessage, details).WithCause(err)
}

// As extracts an AppError anywhere in the chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is checks if an error carries a specific error code
func Is(err error, code ErrorCode) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return CodeInternal
}
