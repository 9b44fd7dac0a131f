// Package apperror defines the typed errors returned by services and
// rendered by the HTTP layer.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for status-code mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindAuthentication
	KindAuthorization
	KindValidation
	KindNotFound
	KindConflict
	KindFileUpload
	KindDatabase
)

// Error codes rendered in the response body.
const (
	CodeValidation              = "VALIDATION_ERROR"
	CodeAuthentication          = "AUTHENTICATION_ERROR"
	CodeAuthorization           = "AUTHORIZATION_ERROR"
	CodeUserDeactivated         = "USER_DEACTIVATED"
	CodeInsufficientPermissions = "INSUFFICIENT_PERMISSIONS"
	CodeNotOwner                = "NOT_OWNER"
	CodeNotFound                = "NOT_FOUND"
	CodeConflict                = "CONFLICT"
	CodeFileUpload              = "FILE_UPLOAD_ERROR"
	CodeDatabase                = "DATABASE_ERROR"
	CodeInternal                = "INTERNAL_ERROR"
)

// FieldError describes one violated constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Kind    string `json:"kind"`
}

// Error is the application error type.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Status  int
	Details []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind and code, so sentinel comparisons work.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// HTTPStatus returns the status code for the error.
func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	switch e.Kind {
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindFileUpload:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ClientError reports whether the caller caused the failure.
func (e *Error) ClientError() bool {
	return e.HTTPStatus() < http.StatusInternalServerError
}

func Authentication(msg string) *Error {
	return &Error{Kind: KindAuthentication, Code: CodeAuthentication, Message: msg}
}

func Authorization(code, msg string) *Error {
	if code == "" {
		code = CodeAuthorization
	}
	return &Error{Kind: KindAuthorization, Code: code, Message: msg}
}

func Deactivated() *Error {
	return Authorization(CodeUserDeactivated, "user account is deactivated")
}

func InsufficientPermissions() *Error {
	return Authorization(CodeInsufficientPermissions, "insufficient permissions")
}

func NotOwner(resource string) *Error {
	return Authorization(CodeNotOwner, fmt.Sprintf("not allowed to modify this %s", resource))
}

// Validation returns a validation error carrying every field violation.
func Validation(details ...FieldError) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidation, Message: "request validation failed", Details: details}
}

// InvalidField is a shortcut for a single-field validation error.
func InvalidField(field, kind, msg string) *Error {
	return Validation(FieldError{Field: field, Kind: kind, Message: msg})
}

func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Code: CodeNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Code: CodeConflict, Message: msg}
}

// FileUpload wraps a storage failure. Without a cause it is a client error.
func FileUpload(msg string, err error) *Error {
	e := &Error{Kind: KindFileUpload, Code: CodeFileUpload, Message: msg, Err: err}
	if err != nil {
		e.Status = http.StatusInternalServerError
	}
	return e
}

func Database(msg string, err error) *Error {
	return &Error{Kind: KindDatabase, Code: CodeDatabase, Message: msg, Err: err}
}

func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: msg, Err: err}
}

// As extracts an *Error from err, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err or KindInternal for foreign errors.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}
