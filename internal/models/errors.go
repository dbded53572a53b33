package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes used across services. Each code maps to one HTTP status in
// mapAppErrorStatus.
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeConflict      = "CONFLICT"
	CodeNotFound      = "NOT_FOUND"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeInvalidToken  = "INVALID_TOKEN"
	CodeTokenReused   = "TOKEN_EXPIRED_OR_REUSED"
	CodeUploadFailed  = "UPLOAD_FAILED"
	CodeTokenIssuance = "TOKEN_ISSUANCE_FAILED"
	CodeInternal      = "INTERNAL_ERROR"
)

// AppError represents a custom application error.
type AppError struct {
	Code    string
	Message string
	Errors  []string
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

// Predefined error constructors
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewInvalidTokenError(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidToken,
		Message: message,
	}
}

func NewTokenReusedError() *AppError {
	return &AppError{
		Code:    CodeTokenReused,
		Message: "Refresh token is expired or already used",
	}
}

func NewUploadFailedError(message string) *AppError {
	return &AppError{
		Code:    CodeUploadFailed,
		Message: message,
	}
}

func NewTokenIssuanceError(err error) *AppError {
	return &AppError{
		Code:    CodeTokenIssuance,
		Message: "Something went wrong while generating tokens",
		Err:     err,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// mapAppErrorStatus maps an error code to its HTTP status.
func mapAppErrorStatus(code string) int {
	switch code {
	case CodeValidation, CodeUploadFailed:
		return fiber.StatusBadRequest
	case CodeUnauthorized, CodeInvalidToken, CodeTokenReused:
		return fiber.StatusUnauthorized
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// StatusOf returns the HTTP status for an error, defaulting to 500 for
// anything that is not an *AppError.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return mapAppErrorStatus(appErr.Code)
	}
	return fiber.StatusInternalServerError
}

// RespondWithError writes the standardized error envelope. The wrapped
// cause is never serialized; only the display-safe message goes out.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	response := ErrorResponse{
		Status:  status,
		Message: "Internal server error",
		Errors:  []string{},
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		response.Message = appErr.Message
		if appErr.Errors != nil {
			response.Errors = appErr.Errors
		}
	} else if err != nil && status < fiber.StatusInternalServerError {
		response.Message = err.Error()
	}

	return c.Status(status).JSON(response)
}
