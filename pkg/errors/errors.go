package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalidAssociation
	KindInvalidTemporal
	KindConflict
	KindInvalidTransition
	KindBadRequest
	KindUnauthorized
)

// AppError represents an application error
type AppError struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
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

// StatusCode maps the error kind to an HTTP status code.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindInvalidTransition:
		return http.StatusUnprocessableEntity
	case KindInvalidAssociation, KindInvalidTemporal, KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error constructors
func NotFound(resource string) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func InvalidAssociation(message string) *AppError {
	return &AppError{Kind: KindInvalidAssociation, Message: message}
}

func InvalidTemporal(message string) *AppError {
	return &AppError{Kind: KindInvalidTemporal, Message: message}
}

func Conflict(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

func InvalidTransition(message string) *AppError {
	return &AppError{Kind: KindInvalidTransition, Message: message}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{Kind: KindBadRequest, Message: message, Err: err}
}

func Unauthorized(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: message}
}

func Internal(err error) *AppError {
	return &AppError{Kind: KindInternal, Message: "internal server error", Err: err}
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

func IsNotFound(err error) bool           { return IsKind(err, KindNotFound) }
func IsConflict(err error) bool           { return IsKind(err, KindConflict) }
func IsInvalidTemporal(err error) bool    { return IsKind(err, KindInvalidTemporal) }
func IsInvalidTransition(err error) bool  { return IsKind(err, KindInvalidTransition) }
func IsInvalidAssociation(err error) bool { return IsKind(err, KindInvalidAssociation) }
