package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError reports a caller-side precondition violation, detected
// before any request is issued.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NetworkError reports a transport failure: the backend was unreachable or
// the connection broke before a response arrived.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// BackendError reports a non-2xx response. Message is the backend-provided
// message when one was present in the body, otherwise the HTTP status text.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.StatusCode)
}

// AuthError reports a rejected login or a login response carrying no token
// in either envelope shape.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "authentication failed"
}

// ErrorMessage resolves the user-facing message for a failed operation with
// fixed precedence: backend-provided message, then the error's own message,
// then the operation-specific fallback.
func ErrorMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var backendErr *BackendError
	if errors.As(err, &backendErr) && backendErr.Message != "" {
		return backendErr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
