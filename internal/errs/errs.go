// Package errs holds the error shape every API failure is rendered with.
package errs

import (
	"net/http"
	"strings"
)

// Messages the web client matches on.
const (
	MsgUnauthorized = "unauthorized access"
	MsgForbidden    = "forbidden access"
)

// HTTPError is an error that knows its response status. It is serialized
// as-is to the client.
type HTTPError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports true for any *HTTPError target so errors.Is can detect the kind.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// WithMessage returns a copy of e carrying message.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	return &HTTPError{Code: e.Code, Message: message, Status: e.Status}
}

// CodeFor turns an HTTP status into a stable code, e.g. 404 -> NOT_FOUND.
func CodeFor(status int) string {
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}

func newHTTPError(status int, message string) *HTTPError {
	return &HTTPError{Code: CodeFor(status), Message: message, Status: status}
}

func NewUnauthorizedError() *HTTPError {
	return newHTTPError(http.StatusUnauthorized, MsgUnauthorized)
}

func NewForbiddenError() *HTTPError {
	return newHTTPError(http.StatusForbidden, MsgForbidden)
}

func NewBadRequestError(message string) *HTTPError {
	return newHTTPError(http.StatusBadRequest, message)
}

func NewNotFoundError(message string) *HTTPError {
	return newHTTPError(http.StatusNotFound, message)
}

// NewInternalServerError never carries the cause; callers log it instead.
func NewInternalServerError() *HTTPError {
	return newHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
