package api

import (
	"errors"
	"fmt"
)

// Sentinel errors for status codes that carry no useful body.
var (
	// ErrUnauthorized means the session credential is invalid. The client
	// tears the session down before returning it; callers must stop the
	// current sync run.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden means the credential is valid but lacks permission.
	// Unlike ErrUnauthorized it does not invalidate the session.
	ErrForbidden = errors.New("forbidden")

	ErrNotFound = errors.New("resource not found")
	ErrNoData   = errors.New("no data received from server")
)

// BadRequestError is a 400 with the server's message.
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string {
	if e.Message == "" {
		return "bad request"
	}
	return "bad request: " + e.Message
}

// ServerError is any 5xx response.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (status %d): %s", e.StatusCode, e.Message)
}

// DecodingError wraps a payload-shape mismatch.
type DecodingError struct {
	Err error
}

func (e *DecodingError) Error() string {
	return "failed to decode server response: " + e.Err.Error()
}

func (e *DecodingError) Unwrap() error { return e.Err }

// UnknownError covers everything the taxonomy cannot classify.
type UnknownError struct {
	Message string
}

func (e *UnknownError) Error() string {
	if e.Message == "" {
		return "an unknown error occurred"
	}
	return e.Message
}

// UserMessage maps a taxonomy error to a human-readable message, for
// explicit user actions (login, register, password reset). Background sync
// failures are logged, not shown.
func UserMessage(err error) string {
	var badReq *BadRequestError
	var srvErr *ServerError
	var decErr *DecodingError
	var unkErr *UnknownError

	switch {
	case errors.Is(err, ErrUnauthorized):
		return "You are not authorized. Please sign in again."
	case errors.Is(err, ErrForbidden):
		return "You do not have permission."
	case errors.Is(err, ErrNotFound):
		return "Resource not found."
	case errors.Is(err, ErrNoData):
		return "No data received from server."
	case errors.As(err, &badReq):
		if badReq.Message != "" {
			return badReq.Message
		}
		return "Bad request."
	case errors.As(err, &srvErr):
		if srvErr.Message != "" {
			return srvErr.Message
		}
		return "Server error. Please try again later."
	case errors.As(err, &decErr):
		return "Failed to process server response."
	case errors.As(err, &unkErr):
		return unkErr.Error()
	default:
		return "Could not reach the server. Check your connection."
	}
}
