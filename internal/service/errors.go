package service

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means the backend rejected the session. The session
	// has already been dropped when a backend returns it.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrNotFound is returned when a name or number matches nothing.
	ErrNotFound = errors.New("not found")

	// ErrAmbiguous is returned when a name matches more than one entity.
	ErrAmbiguous = errors.New("ambiguous")
)

// statusCoder is implemented by backend errors that carry an HTTP status.
type statusCoder interface {
	StatusCode() int
}

// HTTPStatus returns the HTTP status carried by err, 401 for
// ErrUnauthenticated, or 0 if err carries none.
func HTTPStatus(err error) int {
	if errors.Is(err, ErrUnauthenticated) {
		return 401
	}
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return 0
}

// LookupError is a user-facing resolution failure. It matches ErrNotFound or
// ErrAmbiguous with errors.Is but prints only its message.
type LookupError struct {
	Msg  string
	Kind error
}

func (e *LookupError) Error() string { return e.Msg }
func (e *LookupError) Unwrap() error { return e.Kind }

// NotFoundf returns a LookupError matching ErrNotFound.
func NotFoundf(format string, args ...any) error {
	return &LookupError{Msg: fmt.Sprintf(format, args...), Kind: ErrNotFound}
}

// Ambiguousf returns a LookupError matching ErrAmbiguous.
func Ambiguousf(format string, args ...any) error {
	return &LookupError{Msg: fmt.Sprintf(format, args...), Kind: ErrAmbiguous}
}
