package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidLink        = errors.New("invalid link")
	ErrTokenExpired       = errors.New("token expired")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrInvalidInput       = errors.New("invalid input")
	ErrBadRequest         = errors.New("bad request")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrRateLimited        = errors.New("too many requests")
	ErrAlreadyPaid        = errors.New("package already paid")
	ErrPackageLocked      = errors.New("package is locked")
	ErrInvalidSignature   = errors.New("invalid signature")
	ErrStoreTimeout       = errors.New("store timeout")
)

// Stable machine-readable codes returned to clients
const (
	CodeBadRequest         = "BAD_REQUEST"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeDuplicateEmail     = "DUPLICATE_EMAIL"
	CodeDuplicateUsername  = "DUPLICATE_USERNAME"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidLink        = "INVALID_LINK"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeAlreadyVerified    = "ALREADY_VERIFIED"
	CodeForbidden          = "FORBIDDEN"
	CodeRateLimited        = "RATE_LIMITED"
	CodeAlreadyPaid        = "ALREADY_PAID"
	CodePackageLocked      = "PACKAGE_LOCKED"
	CodeInvalidSignature   = "INVALID_SIGNATURE"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeUnavailable        = "SERVICE_UNAVAILABLE"
)

// InfrastructureError wraps an unexpected store, hashing, signing or
// dispatch failure. Its message is never shown to clients.
type InfrastructureError struct {
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InfrastructureError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure was a timeout the caller may retry.
func (e *InfrastructureError) Retryable() bool {
	return errors.Is(e.Err, ErrStoreTimeout) || errors.Is(e.Err, context.DeadlineExceeded)
}

// Infra wraps err as an InfrastructureError unless it is nil or already one.
func Infra(op string, err error) error {
	if err == nil {
		return nil
	}
	var ie *InfrastructureError
	if errors.As(err, &ie) {
		return err
	}
	return &InfrastructureError{Op: op, Err: err}
}

// AppError represents application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidInput, message, ErrInvalidInput)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, nil)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func TooManyRequests(message string) *AppError {
	return NewAppError(http.StatusTooManyRequests, CodeRateLimited, message, ErrRateLimited)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

func InternalServerError(message string) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, message, nil)
}

func ServiceUnavailable(err error) *AppError {
	return NewAppError(http.StatusServiceUnavailable, CodeUnavailable, "service temporarily unavailable, please retry", err)
}

// NewError creates a new error with a custom message wrapping an existing error
func NewError(message string, err error) error {
	return &AppError{
		Status:  http.StatusBadRequest,
		Code:    CodeBadRequest,
		Message: message,
		Err:     err,
	}
}

// Messages shared by flows that must not reveal which internal state was hit.
const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgInvalidLink        = "This link is invalid or has already been used"
	MsgTokenExpired       = "This link has expired, please request a new one"
)

// FromError maps any error to the response it should produce.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrDuplicateEmail):
		return NewAppError(http.StatusConflict, CodeDuplicateEmail, "An account with this email already exists", err)
	case errors.Is(err, ErrDuplicateUsername):
		return NewAppError(http.StatusConflict, CodeDuplicateUsername, "This username is already taken", err)
	case errors.Is(err, ErrInvalidCredentials):
		return NewAppError(http.StatusUnauthorized, CodeInvalidCredentials, MsgInvalidCredentials, err)
	case errors.Is(err, ErrInvalidLink):
		return NewAppError(http.StatusBadRequest, CodeInvalidLink, MsgInvalidLink, err)
	case errors.Is(err, ErrTokenExpired):
		return NewAppError(http.StatusGone, CodeTokenExpired, MsgTokenExpired, err)
	case errors.Is(err, ErrAlreadyVerified):
		return NewAppError(http.StatusConflict, CodeAlreadyVerified, "Email is already verified", err)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrBadRequest):
		return NewAppError(http.StatusBadRequest, CodeInvalidInput, err.Error(), err)
	case errors.Is(err, ErrUnauthorized):
		return NewAppError(http.StatusUnauthorized, CodeUnauthorized, "Unauthorized", err)
	case errors.Is(err, ErrForbidden):
		return NewAppError(http.StatusForbidden, CodeForbidden, "Forbidden", err)
	case errors.Is(err, ErrRateLimited):
		return TooManyRequests("Too many requests, please try again later")
	case errors.Is(err, ErrAlreadyPaid):
		return NewAppError(http.StatusConflict, CodeAlreadyPaid, "Package has already been paid for", err)
	case errors.Is(err, ErrPackageLocked):
		return NewAppError(http.StatusConflict, CodePackageLocked, "Paid packages can no longer be changed", err)
	case errors.Is(err, ErrInvalidSignature):
		return NewAppError(http.StatusUnauthorized, CodeInvalidSignature, "Invalid signature", err)
	}

	var ie *InfrastructureError
	if errors.As(err, &ie) {
		if ie.Retryable() {
			return ServiceUnavailable(err)
		}
		return InternalError(err)
	}
	if errors.Is(err, ErrNotFound) {
		return NotFound("Resource not found")
	}
	if errors.Is(err, ErrStoreTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return ServiceUnavailable(err)
	}
	return InternalError(err)
}
