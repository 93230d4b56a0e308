package api

import "fmt"

// AuthError means the server rejected the bearer token (401). The caller
// must evict the stored token and send the user back to login.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return "api: unauthorized: " + e.Message
	}
	return "api: unauthorized"
}

// NotFoundError means the referenced resource no longer exists (404),
// typically a stale workout id.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return "api: not found: " + e.Message
	}
	return "api: not found"
}

// ConflictError means the resource already exists (409), e.g. a duplicate
// registration email.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	if e.Message != "" {
		return "api: conflict: " + e.Message
	}
	return "api: conflict"
}

// ServerMessageError carries text supplied by the server. The message is
// surfaced to the user verbatim.
type ServerMessageError struct {
	Status  int
	Message string
}

func (e *ServerMessageError) Error() string {
	return fmt.Sprintf("api: server error (status %d): %s", e.Status, e.Message)
}

// TransportError means no response was received at all: connectivity
// failure, timeout, DNS, and so on.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "api: no response: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UnexpectedError means a response arrived but its shape or status was not
// recognized: a non-2xx without a message, or a 2xx without the expected
// success envelope.
type UnexpectedError struct {
	Status int
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("api: unexpected response (status %d)", e.Status)
}
