package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

var (
	ErrMalformedSubmission = errors.New("malformed submission")
	ErrMissingField        = errors.New("missing field")
	ErrInvalidCategory     = errors.New("invalid category")
	ErrInvalidRange        = errors.New("invalid range")
	ErrUploadFailed        = errors.New("upload failed")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInternal            = errors.New("internal server error")
)

const (
	genericInternalMessage = "An internal server error occurred"
	uploadFailedMessage    = "Attachment upload failed"
)

type AppError struct {
	BaseError error
	Message   string
	Details   string
	Err       error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (Details: %s, Cause: %v)", e.BaseError.Error(), e.Message, e.Details, e.Err)
	}
	return fmt.Sprintf("%s: %s (Details: %s)", e.BaseError.Error(), e.Message, e.Details)
}

func (e *AppError) Unwrap() error {
	return e.BaseError
}

// Cause returns the underlying error that triggered e, if any.
func (e *AppError) Cause() error {
	return e.Err
}

func NewAppError(base error, msg, details string, err error) *AppError {
	return &AppError{BaseError: base, Message: msg, Details: details, Err: err}
}

func NewMalformedSubmission(details string, err error) *AppError {
	return NewAppError(ErrMalformedSubmission, "Submission could not be decoded", details, err)
}

func NewMissingField(field string) *AppError {
	return NewAppError(ErrMissingField, fmt.Sprintf("'%s' is required", field), field, nil)
}

func NewInvalidCategory(value string) *AppError {
	msg := fmt.Sprintf("'%s' is not a valid category", value)
	return NewAppError(ErrInvalidCategory, msg, "allowed: college, job, marketing, development", nil)
}

func NewInvalidRange(field, details string, err error) *AppError {
	return NewAppError(ErrInvalidRange, fmt.Sprintf("'%s' is out of range", field), details, err)
}

func NewUploadFailed(filename string, err error) *AppError {
	details := fmt.Sprintf("attachment '%s' could not be stored", filename)
	return NewAppError(ErrUploadFailed, uploadFailedMessage, details, err)
}

func NewStoreUnavailable(details string, err error) *AppError {
	return NewAppError(ErrStoreUnavailable, "Storage is unavailable", details, err)
}

func NewNotFound(resource, identifier string) *AppError {
	msg := fmt.Sprintf("%s not found", resource)
	details := fmt.Sprintf("%s with identifier '%s' was not found", resource, identifier)
	return NewAppError(ErrNotFound, msg, details, nil)
}

func NewConflict(resource, field, value string) *AppError {
	msg := fmt.Sprintf("%s conflict", resource)
	details := fmt.Sprintf("%s with %s '%s' already exists", resource, field, value)
	return NewAppError(ErrConflict, msg, details, nil)
}

// NewBusy reports a lock that stayed held for the whole wait.
func NewBusy(resource, key string) *AppError {
	msg := fmt.Sprintf("%s is being modified, retry", resource)
	details := fmt.Sprintf("lock '%s' is still held", key)
	return NewAppError(ErrConflict, msg, details, nil)
}

func NewInternal(details string, err error) *AppError {
	return NewAppError(ErrInternal, genericInternalMessage, details, err)
}

func ToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrMalformedSubmission),
		errors.Is(err, ErrMissingField),
		errors.Is(err, ErrInvalidCategory),
		errors.Is(err, ErrInvalidRange):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// ToEnvelope renders err as the API failure envelope. Server-side failures never
// expose their message or cause.
func ToEnvelope(err error) gin.H {
	if errors.Is(err, ErrUploadFailed) {
		return gin.H{"success": false, "error": ErrUploadFailed.Error(), "message": uploadFailedMessage}
	}
	if ToHTTPStatus(err) == http.StatusInternalServerError {
		return gin.H{"success": false, "error": ErrInternal.Error(), "message": genericInternalMessage}
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return gin.H{"success": false, "error": appErr.BaseError.Error(), "message": appErr.Message}
	}
	return gin.H{"success": false, "error": err.Error(), "message": err.Error()}
}
