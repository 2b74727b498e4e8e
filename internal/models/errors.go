// Package models contains data structures for the application's domain models.
package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Error codes used across the matching domain.
const (
	CodeNotFound               = "NOT_FOUND"
	CodeValidation             = "VALIDATION_ERROR"
	CodeUnauthorized           = "UNAUTHORIZED"
	CodeInternal               = "INTERNAL_ERROR"
	CodeInvalidCoordinate      = "INVALID_COORDINATE"
	CodeMissingLocation        = "MISSING_LOCATION"
	CodeSelfMatchNotAllowed    = "SELF_MATCH_NOT_ALLOWED"
	CodeDuplicateActiveRequest = "DUPLICATE_ACTIVE_REQUEST"
	CodeNotAuthorized          = "NOT_AUTHORIZED"
	CodeInvalidTransition      = "INVALID_TRANSITION"
	CodeStoreUnavailable       = "STORE_UNAVAILABLE"
)

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// NewInvalidCoordinateError reports a malformed latitude/longitude pair.
// This is a caller bug and is never retryable.
func NewInvalidCoordinateError(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidCoordinate,
		Message: message,
	}
}

// NewMissingLocationError reports that an operation needs a location the
// user has not set yet.
func NewMissingLocationError() *AppError {
	return &AppError{
		Code:    CodeMissingLocation,
		Message: "Set your location to search by distance",
	}
}

// NewSelfMatchError reports an attempt to send a buddy request to oneself.
func NewSelfMatchError() *AppError {
	return &AppError{
		Code:    CodeSelfMatchNotAllowed,
		Message: "Cannot send a buddy request to yourself",
	}
}

// NewDuplicateActiveRequestError reports that a pending request already
// exists for the same requester, recipient, and sport.
func NewDuplicateActiveRequestError() *AppError {
	return &AppError{
		Code:    CodeDuplicateActiveRequest,
		Message: "A pending buddy request to this user already exists",
	}
}

// NewNotAuthorizedError reports that the caller is not a party allowed to
// act on the request.
func NewNotAuthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeNotAuthorized,
		Message: message,
	}
}

// NewInvalidTransitionError reports a state transition attempted on a
// request that is no longer pending.
func NewInvalidTransitionError(current MatchRequestStatus) *AppError {
	return &AppError{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("Request is %s and can no longer change", current),
	}
}

// NewStoreUnavailableError wraps an infrastructure failure from the
// underlying store. Callers may retry with backoff; this service does not
// retry internally.
func NewStoreUnavailableError(err error) *AppError {
	return &AppError{
		Code:    CodeStoreUnavailable,
		Message: "Storage backend unavailable",
		Err:     err,
	}
}

// HTTPStatus maps an error to the HTTP status code it should be served with.
func HTTPStatus(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeValidation, CodeInvalidCoordinate, CodeMissingLocation:
		return fiber.StatusBadRequest
	case CodeUnauthorized:
		return fiber.StatusUnauthorized
	case CodeNotAuthorized:
		return fiber.StatusForbidden
	case CodeSelfMatchNotAllowed:
		return fiber.StatusBadRequest
	case CodeDuplicateActiveRequest, CodeInvalidTransition:
		return fiber.StatusConflict
	case CodeStoreUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	if appErr, ok := err.(*AppError); ok {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}

// RespondWithAppError writes an error response using the status derived
// from the error's code.
func RespondWithAppError(c *fiber.Ctx, err error) error {
	return RespondWithError(c, HTTPStatus(err), err)
}
