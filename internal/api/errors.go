package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Transport-level error taxonomy. Services branch on these kinds to pick the
// user-visible message and to decide whether credentials may be evicted.

// NetworkError means the request never reached the server (offline, DNS,
// connection refused).
type NetworkError struct {
	err error
}

func (e *NetworkError) Error() string { return "network error: " + e.err.Error() }
func (e *NetworkError) Unwrap() error { return e.err }

// TimeoutError means the request exceeded its time bound.
type TimeoutError struct {
	err error
}

func (e *TimeoutError) Error() string { return "request timed out: " + e.err.Error() }
func (e *TimeoutError) Unwrap() error { return e.err }

// HTTPError is a non-2xx response. Message carries the server-supplied message
// field when the body had one.
type HTTPError struct {
	Status  int
	Message string
	Body    []byte
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("http %d", e.Status)
}

// IsNetwork reports whether err is a NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsTimeout reports whether err is a TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// StatusOf returns the HTTP status of err, or 0 if err is not an HTTPError.
func StatusOf(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Status
	}
	return 0
}

// IsAuthError reports whether err is a definitive authentication rejection.
func IsAuthError(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// UserMessage maps a transport error to the message shown to the user. The
// server-supplied message wins for plain HTTP failures; auth and connectivity
// failures get fixed wording.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case IsTimeout(err):
		return "Request timeout. Please check your connection."
	case IsNetwork(err):
		return "Cannot connect to server. Please check your internet connection."
	}
	var he *HTTPError
	if errors.As(err, &he) {
		switch he.Status {
		case http.StatusUnauthorized:
			return "Session expired. Please login again."
		case http.StatusForbidden:
			return "You don't have permission to perform this action."
		case http.StatusInternalServerError:
			return "Server error. Please try again later."
		default:
			if he.Message != "" {
				return fmt.Sprintf("Error %d: %s", he.Status, he.Message)
			}
			return fmt.Sprintf("Error %d: %s", he.Status, http.StatusText(he.Status))
		}
	}
	return err.Error()
}
