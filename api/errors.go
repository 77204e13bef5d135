package api

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed API call.
type ErrorKind string

const (
	// KindTransport covers network failures, timeouts and 5xx responses.
	KindTransport ErrorKind = "transport"
	// KindAuth covers rejected credentials.
	KindAuth ErrorKind = "auth"
	// KindNotFound covers fetch or delete of an unknown resource.
	KindNotFound ErrorKind = "not_found"
	// KindConflict covers remote-side validation rejections.
	KindConflict ErrorKind = "conflict"
)

// Error is a classified failure from the remote platform. StatusCode is
// zero when the request never produced a response.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s (status %d): %s", e.Kind, e.StatusCode, e.Message)
}

func isKind(err error, kind ErrorKind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}

func IsNotFound(err error) bool  { return isKind(err, KindNotFound) }
func IsAuth(err error) bool      { return isKind(err, KindAuth) }
func IsTransport(err error) bool { return isKind(err, KindTransport) }
func IsConflict(err error) bool  { return isKind(err, KindConflict) }
