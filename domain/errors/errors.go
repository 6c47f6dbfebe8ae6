package errors

import (
	"fmt"
	"net/http"

	pkgerrors "github.com/pkg/errors"
)

// AppError carries everything a handler needs to answer a failed request
type AppError interface {
	error
	HTTPCode() int
	ErrorCode() string
	Message() string
	Details() string
}

// BaseError is the AppError used across the service
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{httpCode: httpCode, errorCode: errorCode, message: message, details: details}
}

func (e *BaseError) Error() string {
	if e.details != "" {
		return fmt.Sprintf("%s: %s", e.message, e.details)
	}
	return e.message
}

func (e *BaseError) HTTPCode() int     { return e.httpCode }
func (e *BaseError) ErrorCode() string { return e.errorCode }
func (e *BaseError) Message() string   { return e.message }
func (e *BaseError) Details() string   { return e.details }

// WithDetails returns a copy carrying client-safe detail text
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{httpCode: e.httpCode, errorCode: e.errorCode, message: e.message, details: details}
}

// WithMessage returns a copy with a different user-facing message
func (e *BaseError) WithMessage(message string) *BaseError {
	return &BaseError{httpCode: e.httpCode, errorCode: e.errorCode, message: message, details: e.details}
}

// WrapMessage wraps the error with additional context
func (e *BaseError) WrapMessage(message string) error {
	return pkgerrors.Wrap(e, message)
}

// Is matches errors sharing the same error code so copies made by WithDetails still compare equal
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	return ok && t.errorCode == e.errorCode
}

var (
	ErrValidation   = NewBaseError(http.StatusBadRequest, "VALIDATION_ERROR", "invalid request", "")
	ErrUnauthorized = NewBaseError(http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized", "")
	ErrForbidden    = NewBaseError(http.StatusForbidden, "FORBIDDEN", "forbidden", "")
	ErrNotFound     = NewBaseError(http.StatusNotFound, "NOT_FOUND", "resource not found", "")

	ErrProfileNotFound  = NewBaseError(http.StatusNotFound, "PROFILE_NOT_FOUND", "profile not found", "")
	ErrPropertyNotFound = NewBaseError(http.StatusNotFound, "PROPERTY_NOT_FOUND", "property not found", "")
	ErrUsageLimit       = NewBaseError(http.StatusForbidden, "USAGE_LIMIT_REACHED", "monthly extraction limit reached, upgrade your plan to continue", "")

	ErrFetchListing   = NewBaseError(http.StatusBadGateway, "FETCH_FAILED", "failed to fetch listing", "")
	ErrGenerate       = NewBaseError(http.StatusBadGateway, "GENERATION_FAILED", "failed to generate", "")
	ErrRateLimited    = NewBaseError(http.StatusTooManyRequests, "AI_RATE_LIMITED", "AI rate limit exceeded, please try again later", "")
	ErrCreditsExhaust = NewBaseError(http.StatusPaymentRequired, "AI_CREDITS_EXHAUSTED", "AI credits exhausted, please add credits to continue", "")
	ErrCompose        = NewBaseError(http.StatusBadGateway, "IMAGE_GENERATION_FAILED", "failed to generate image", "")
	ErrPublish        = NewBaseError(http.StatusBadGateway, "PUBLISH_FAILED", "failed to publish", "")
	ErrNotConnected   = NewBaseError(http.StatusBadRequest, "NOT_CONNECTED", "account not connected", "")
	ErrUnsupported    = NewBaseError(http.StatusBadRequest, "UNSUPPORTED_PLATFORM", "unsupported platform", "")
	ErrInternal       = NewBaseError(http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", "")
)

// NotConnected builds the user-actionable error for a platform lacking an OAuth token
func NotConnected(platform string) *BaseError {
	return ErrNotConnected.WithMessage(fmt.Sprintf("%s not connected, connect your %s account from the profile page first", platform, platform))
}

// As returns the AppError in err's chain, if any
func As(err error) (AppError, bool) {
	var appErr AppError
	if pkgerrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
