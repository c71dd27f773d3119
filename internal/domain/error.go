package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error codes. The handler package maps each to an HTTP status.
const (
	ECONFLICT     = "conflict"     // marketplace rejected the write, e.g. email taken
	EINTERNAL     = "internal"     // bug or malformed payload; message never shown
	EINVALID      = "invalid"      // bad form input
	ENOTFOUND     = "not_found"
	EUNAUTHORIZED = "unauthorized" // bad credentials or expired token
	EFORBIDDEN    = "forbidden"
	ERATELIMIT    = "rate_limit"
	ETOOLARGE     = "too_large"
	EUNAVAILABLE  = "unavailable" // marketplace API unreachable or 5xx
)

var statusByCode = map[string]int{
	ECONFLICT:     http.StatusConflict,
	EINVALID:      http.StatusBadRequest,
	ENOTFOUND:     http.StatusNotFound,
	EUNAUTHORIZED: http.StatusUnauthorized,
	EFORBIDDEN:    http.StatusForbidden,
	ERATELIMIT:    http.StatusTooManyRequests,
	ETOOLARGE:     http.StatusRequestEntityTooLarge,
	EUNAVAILABLE:  http.StatusServiceUnavailable,
}

// HTTPStatus maps an error code to the status a page answers with.
// Unknown codes and EINTERNAL are 500.
func HTTPStatus(code string) int {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// MsgUnreachable is shown whenever the marketplace API did not answer at all.
const MsgUnreachable = "Could not reach the server. Please try again."

// MsgInternal replaces the message of every EINTERNAL error shown to a user.
const MsgInternal = "An internal error occurred. Please try again later."

// Error is the storefront's error type. Message is safe to show a shopper;
// Op and Err are for logs only.
type Error struct {
	Code    string
	Message string

	// Op names the failing call, e.g. "backend.login".
	Op string

	// Status is the HTTP status the marketplace API answered with, if any.
	Status int

	Err error
}

func (e *Error) Error() string {
	parts := make([]string, 0, 3)
	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	parts = append(parts, e.Message)
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error { return e.Err }

func asError(err error) (*Error, bool) {
	var e *Error
	if err == nil || !errors.As(err, &e) {
		return nil, false
	}
	return e, true
}

// ErrorCode returns the code carried by err. Foreign errors count as EINTERNAL.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := asError(err); ok {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage returns the text a shopper may see for err.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	e, ok := asError(err)
	if !ok || e.Code == EINTERNAL {
		return MsgInternal
	}
	return e.Message
}

// ErrorOp returns the operation recorded on err, for logging.
func ErrorOp(err error) string {
	if e, ok := asError(err); ok {
		return e.Op
	}
	return ""
}

// ErrorStatus returns the upstream HTTP status carried by err, or 0.
func ErrorStatus(err error) int {
	if e, ok := asError(err); ok {
		return e.Status
	}
	return 0
}

// IsCode reports whether err carries code.
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}

func newError(code, op, message string, err error) *Error {
	return &Error{Code: code, Op: op, Message: message, Err: err}
}

// Errorf builds an Error with a formatted message.
func Errorf(code, op, format string, args ...interface{}) error {
	return newError(code, op, fmt.Sprintf(format, args...), nil)
}

// WrapError attaches a code and op to err. A nil err stays nil.
func WrapError(err error, code, op, message string) error {
	if err == nil {
		return nil
	}
	return newError(code, op, message, err)
}

func NotFound(op, resource, identifier string) error {
	return newError(ENOTFOUND, op, fmt.Sprintf("%s not found: %s", resource, identifier), nil)
}

func Unauthorized(op, message string) error { return newError(EUNAUTHORIZED, op, message, nil) }
func Forbidden(op, message string) error    { return newError(EFORBIDDEN, op, message, nil) }
func Invalid(op, message string) error      { return newError(EINVALID, op, message, nil) }
func Conflict(op, message string) error     { return newError(ECONFLICT, op, message, nil) }

// Unavailable reports a transport failure talking to the marketplace API.
// Shoppers always see MsgUnreachable.
func Unavailable(err error, op string) error {
	return newError(EUNAVAILABLE, op, MsgUnreachable, err)
}

// Internal wraps err as EINTERNAL. message goes to the log, never the page.
func Internal(err error, op, message string) error {
	return newError(EINTERNAL, op, message, err)
}

// ValidationError carries per-field messages keyed by form field name.
type ValidationError struct {
	Fields map[string]string
	Op     string
}

func (e *ValidationError) Error() string {
	var msg string
	if len(e.Fields) == 1 {
		for field, m := range e.Fields {
			msg = field + ": " + m
		}
	} else {
		msg = fmt.Sprintf("validation failed for %d fields", len(e.Fields))
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

// NewValidationError returns a ValidationError for one field.
func NewValidationError(op, field, message string) error {
	return &ValidationError{Op: op, Fields: map[string]string{field: message}}
}

// AddFieldError records message for field on err, creating a
// ValidationError when err is not one already.
func AddFieldError(err error, field, message string) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		ve.Fields[field] = message
		return ve
	}
	return &ValidationError{Fields: map[string]string{field: message}}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// GetValidationFields returns the field messages of err, or nil.
func GetValidationFields(err error) map[string]string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}
