// internal/app/system/apperr/apperr.go

// Package apperr defines the error taxonomy shared by all services:
// NotFound, Validation, AuthRequired, and Remote. Workflows wrap failures
// into one of these kinds; the HTTP layer maps kinds to status codes and
// keeps underlying detail out of client responses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
)

// Kind classifies an error for callers and the HTTP layer.
type Kind int

const (
	// KindRemote is any underlying store/provider failure, surfaced verbatim
	// internally but rendered generically to clients.
	KindRemote Kind = iota
	// KindNotFound marks an expected-missing document (e.g. an invitation
	// that was already consumed).
	KindNotFound
	// KindValidation marks rejected input: empty required field, self-invite,
	// inviting an existing member, and so on.
	KindValidation
	// KindAuthRequired marks a sensitive mutation attempted with a stale
	// session; the client must reauthenticate and retry.
	KindAuthRequired
)

// Error carries a kind, a client-safe message, and an optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports that the named resource does not exist.
func NotFound(resource string) error {
	return &Error{Kind: KindNotFound, Msg: resource + " not found"}
}

// Validation reports rejected input.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// AuthRequired reports that the operation needs a fresh authentication.
func AuthRequired(msg string) error {
	return &Error{Kind: KindAuthRequired, Msg: msg}
}

// Remote wraps a store/provider failure.
func Remote(err error) error {
	return &Error{Kind: KindRemote, Msg: "remote operation failed", Err: err}
}

// FromMongo translates driver errors: ErrNoDocuments becomes NotFound for
// the given resource, anything else is a Remote failure.
func FromMongo(err error, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return NotFound(resource)
	}
	return Remote(err)
}

// KindOf returns the kind of err, defaulting to KindRemote for errors that
// did not come from this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindRemote
}

// HTTPStatus maps an error to the response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthRequired:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// ClientMessage returns the message safe to show a client. Remote failures
// collapse to a generic message; the detail belongs in the server log.
func ClientMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindRemote {
		return e.Msg
	}
	return "something went wrong"
}
