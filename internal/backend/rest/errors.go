package rest

import (
	"encoding/json"
	"io"
	"net/http"

	"kanban/internal/service"
)

// ErrUnauthenticated is returned when the server rejected the session with
// 401. By the time it is returned the stored tokens are gone and the
// OnSignedOut handler has run. The call produced no value and should not be
// retried with the same client state.
var ErrUnauthenticated = service.ErrUnauthenticated

const (
	requestFailedMessage = "Request failed"
	loginFailedMessage   = "Login failed"
)

// RequestError is a non-2xx response other than 401.
type RequestError struct {
	// Status is the HTTP status code.
	Status int

	// Detail is the server's "detail" message, empty if none was sent.
	Detail string

	// Message is Detail, or a generic fallback when Detail is empty.
	Message string
}

func (e *RequestError) Error() string {
	if e == nil {
		return requestFailedMessage
	}
	return e.Message
}

// StatusCode returns the HTTP status.
func (e *RequestError) StatusCode() int {
	return e.Status
}

// IsNotFound reports whether err is a RequestError with status 404.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// StatusCode returns the HTTP status carried by err, 401 for
// ErrUnauthenticated, or 0 otherwise.
func StatusCode(err error) int {
	return service.HTTPStatus(err)
}

// errorDetail is the error body contract: {"detail": "..."}.
type errorDetail struct {
	Detail json.RawMessage `json:"detail"`
}

// newRequestError reads resp's body and builds a RequestError. Bodies that
// aren't JSON, or whose detail isn't a non-empty string, fall back to
// fallback.
func newRequestError(resp *http.Response, fallback string) *RequestError {
	reqErr := &RequestError{Status: resp.StatusCode, Message: fallback}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return reqErr
	}

	var payload errorDetail
	if err := json.Unmarshal(body, &payload); err != nil {
		return reqErr
	}
	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err != nil || detail == "" {
		return reqErr
	}

	reqErr.Detail = detail
	reqErr.Message = detail
	return reqErr
}

