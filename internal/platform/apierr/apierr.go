package apierr

import (
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/yungbote/worldkernel-backend/internal/pkg/errors"
)

const (
	CodeValidation   = "validation_failed"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeUnavailable  = "datastore_unavailable"
	CodeInternal     = "internal"
	CodeBadRequest   = "invalid_request"
)

var publicMessages = map[string]string{
	CodeValidation:   "request is invalid",
	CodeUnauthorized: "authentication required",
	CodeForbidden:    "you do not have access to this resource",
	CodeNotFound:     "resource not found",
	CodeConflict:     "resource already exists",
	CodeBadRequest:   "invalid request",
}

// PublicMessage is the fixed client-facing text for e. Causes are never included.
func (e *Error) PublicMessage() string {
	if e.Status >= http.StatusInternalServerError {
		return http.StatusText(e.Status)
	}
	if msg, ok := publicMessages[e.Code]; ok {
		return msg
	}
	if txt := http.StatusText(e.Status); txt != "" {
		return txt
	}
	return "request failed"
}

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// FromError maps a service error onto an HTTP status and code. An *Error already
// in the chain wins.
func FromError(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		return New(http.StatusBadRequest, CodeValidation, err)
	case errors.Is(err, pkgerrors.ErrForbidden):
		return New(http.StatusForbidden, CodeForbidden, err)
	case errors.Is(err, pkgerrors.ErrUnauthorized):
		return New(http.StatusUnauthorized, CodeUnauthorized, err)
	case errors.Is(err, pkgerrors.ErrNotFound):
		return New(http.StatusNotFound, CodeNotFound, err)
	case errors.Is(err, pkgerrors.ErrConflict):
		return New(http.StatusConflict, CodeConflict, err)
	case errors.Is(err, pkgerrors.ErrUnavailable):
		return New(http.StatusServiceUnavailable, CodeUnavailable, err)
	default:
		return New(http.StatusInternalServerError, CodeInternal, err)
	}
}
