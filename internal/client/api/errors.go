package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidCredentials is returned by sign-in on HTTP 401.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUsernameTaken is returned by sign-up on HTTP 409.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrAuthService covers every other sign-in or sign-up failure.
	ErrAuthService = errors.New("authentication service error")
	// ErrUnauthorized is returned when the service rejects the bearer token.
	ErrUnauthorized = errors.New("session expired, please sign in again")
	// ErrNotFound is returned when the requested task does not exist.
	ErrNotFound = errors.New("task not found")
)

// AuthError is a failed sign-in or sign-up. Kind is one of
// ErrInvalidCredentials, ErrUsernameTaken or ErrAuthService.
type AuthError struct {
	Op   string
	Kind error
	Err  error
}

func (e *AuthError) Error() string {
	switch e.Kind {
	case ErrInvalidCredentials:
		return "Invalid credentials"
	case ErrUsernameTaken:
		return "Username already exists"
	}
	return fmt.Sprintf("An error occurred during %s", e.Op)
}

func (e *AuthError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ValidationError rejects input before (client side) or at (HTTP 400) the
// service boundary.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NetworkError is a transport failure or an unexpected HTTP status.
// StatusCode is zero when no response was received.
type NetworkError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *NetworkError) Error() string {
	switch {
	case e.StatusCode == 0:
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s failed: server error: %s", e.Op, http.StatusText(e.StatusCode))
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsUnauthorized reports whether err means the session was rejected.
func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }

// IsNotFound reports whether err means the task does not exist.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
