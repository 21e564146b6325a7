// Package apperror defines the closed set of classified failures the service
// can return, their HTTP status mapping, and the single JSON rendering used on
// the wire.
//
// CLASSIFIED vs UNEXPECTED:
// Anything a handler or stage anticipates (bad credential, missing row, empty
// update) travels up the normal error return as an *AppError. Bugs travel as
// panics and are handled by the fault-isolation stage, never here.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies one member of the taxonomy.
type Kind int

const (
	KindInternal Kind = iota // zero value falls back to the safest kind
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindBadRequest
	KindConflict
	KindLocked
	KindBadGateway
)

// InternalMessage is what clients see for every InternalServerError,
// whatever the carried message says.
const InternalMessage = "Internal Server Error"

// Sentinels, one per kind, so callers can use errors.Is through any amount of
// fmt.Errorf("...: %w") wrapping.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
	ErrConflict     = errors.New("conflict")
	ErrLocked       = errors.New("locked")
	ErrInternal     = errors.New("internal server error")
	ErrBadGateway   = errors.New("bad gateway")
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "Unauthorized"
	case KindForbidden:
		return "Forbidden"
	case KindNotFound:
		return "NotFound"
	case KindBadRequest:
		return "BadRequest"
	case KindConflict:
		return "Conflict"
	case KindLocked:
		return "Locked"
	case KindBadGateway:
		return "BadGateway"
	default:
		return "InternalServerError"
	}
}

// StatusCode is the HTTP status for the kind.
func (k Kind) StatusCode() int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindBadRequest:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindLocked:
		return http.StatusLocked
	case KindBadGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindUnauthorized:
		return ErrUnauthorized
	case KindForbidden:
		return ErrForbidden
	case KindNotFound:
		return ErrNotFound
	case KindBadRequest:
		return ErrBadRequest
	case KindConflict:
		return ErrConflict
	case KindLocked:
		return ErrLocked
	case KindBadGateway:
		return ErrBadGateway
	default:
		return ErrInternal
	}
}

// AppError is a classified failure.
type AppError struct {
	Kind    Kind
	Message string // detail, always safe to log
	Err     error  // optional cause, never rendered
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes both the kind sentinel and the cause, so errors.Is matches
// either one.
func (e *AppError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

// StatusCode returns the HTTP status for this error.
func (e *AppError) StatusCode() int {
	return e.Kind.StatusCode()
}

// OutputMessage is the client-facing message. It equals Message for every
// kind except Internal.
func (e *AppError) OutputMessage() string {
	if e.Kind == KindInternal {
		return InternalMessage
	}
	return e.Message
}

func newError(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func Unauthorized(message string) *AppError { return newError(KindUnauthorized, message) }
func Forbidden(message string) *AppError    { return newError(KindForbidden, message) }
func NotFound(message string) *AppError     { return newError(KindNotFound, message) }
func BadRequest(message string) *AppError   { return newError(KindBadRequest, message) }
func Conflict(message string) *AppError     { return newError(KindConflict, message) }
func Locked(message string) *AppError       { return newError(KindLocked, message) }
func BadGateway(message string) *AppError   { return newError(KindBadGateway, message) }

// Internal classifies an unexpected failure. The message is for logs only.
func Internal(message string) *AppError { return newError(KindInternal, message) }

// Wrap attaches a cause to a new classified error.
func Wrap(kind Kind, err error, format string, args ...any) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// As extracts the *AppError from err's chain. Errors that were never
// classified come back as Internal carrying err's text.
func As(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{Kind: KindInternal, Message: err.Error(), Err: err}
}
