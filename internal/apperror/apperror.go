package apperror

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindUnauthorized     Kind = "Unauthorized"
	KindForbidden        Kind = "Forbidden"
	KindValidation       Kind = "ValidationError"
	KindNotFound         Kind = "NotFoundError"
	KindInvalidReference Kind = "InvalidReference"
	KindStorage          Kind = "StorageError"
)

// Error adalah error domain yang tahu status HTTP-nya sendiri.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation, KindInvalidReference:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Body is the JSON payload: {message, error, ...details}.
func (e *Error) Body() map[string]interface{} {
	body := make(map[string]interface{}, len(e.Details)+2)
	for k, v := range e.Details {
		body[k] = v
	}
	body["message"] = e.Message
	if e.Err != nil {
		body["error"] = e.Err.Error()
	} else {
		body["error"] = string(e.Kind)
	}
	return body
}

func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = map[string]interface{}{}
	}
	e.Details[key] = value
	return e
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Unauthorized(message string) *Error {
	return New(KindUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func InvalidReference(message string) *Error {
	return New(KindInvalidReference, message)
}

func Storage(message string, err error) *Error {
	return &Error{Kind: KindStorage, Message: message, Err: err}
}

// As mengembalikan *Error di rantai err, atau nil.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

func Is(err error, kind Kind) bool {
	appErr := As(err)
	return appErr != nil && appErr.Kind == kind
}

// From membungkus error asing sebagai StorageError.
func From(err error) *Error {
	if appErr := As(err); appErr != nil {
		return appErr
	}
	return Storage("Internal server error", err)
}
