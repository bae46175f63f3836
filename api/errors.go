// ABOUTME: Error hierarchy for the story service client.
// ABOUTME: Splits failures into transport errors and application errors with status metadata.

package api

import (
	"encoding/json"
	"errors"
)

// ClientError is the base error type for all errors raised by the client.
// Both error kinds embed it.
type ClientError struct {
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns false for the base ClientError. Subtypes override this.
func (e *ClientError) IsRetryable() bool {
	return false
}

// TransportError represents a network-level failure: the request never
// produced a well-formed HTTP response (dial failure, reset, bad URL).
type TransportError struct {
	ClientError
}

func (e *TransportError) Error() string     { return e.ClientError.Error() }
func (e *TransportError) Unwrap() error     { return e.ClientError.Unwrap() }
func (e *TransportError) IsRetryable() bool { return true }

// As enables errors.As to match ClientError from a TransportError.
func (e *TransportError) As(target any) bool {
	switch t := target.(type) {
	case **ClientError:
		*t = &e.ClientError
		return true
	default:
		return false
	}
}

// ApplicationError represents a well-formed response signaling failure: a
// non-OK status, a success=false envelope, or a body missing an expected
// field. Status carries the HTTP status line text when one was received;
// StatusCode is zero for shape failures on OK responses.
type ApplicationError struct {
	ClientError
	StatusCode int
	Status     string
	Retryable  bool
	Raw        json.RawMessage
}

func (e *ApplicationError) Error() string     { return e.ClientError.Error() }
func (e *ApplicationError) Unwrap() error     { return e.ClientError.Unwrap() }
func (e *ApplicationError) IsRetryable() bool { return e.Retryable }

// As enables errors.As to match ClientError from an ApplicationError.
func (e *ApplicationError) As(target any) bool {
	switch t := target.(type) {
	case **ClientError:
		*t = &e.ClientError
		return true
	default:
		return false
	}
}

// NewTransportError wraps a network-level failure.
func NewTransportError(message string, cause error) *TransportError {
	return &TransportError{ClientError: ClientError{Message: message, Cause: cause}}
}

// NewApplicationError reports a failure signaled by a well-formed response,
// such as a missing field or a success=false envelope.
func NewApplicationError(message string) *ApplicationError {
	return &ApplicationError{ClientError: ClientError{Message: message}}
}

// ErrorFromStatusCode maps a non-OK HTTP status to an ApplicationError.
// Rate-limit and server-class statuses are marked retryable; the client never
// retries on its own, the flag is metadata for callers.
func ErrorFromStatusCode(statusCode int, status string, raw json.RawMessage) *ApplicationError {
	retryable := statusCode == 429 || (statusCode >= 500 && statusCode <= 599)
	return &ApplicationError{
		ClientError: ClientError{Message: "request failed: " + status},
		StatusCode:  statusCode,
		Status:      status,
		Retryable:   retryable,
		Raw:         raw,
	}
}

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsApplication reports whether err is (or wraps) an ApplicationError.
func IsApplication(err error) bool {
	var ae *ApplicationError
	return errors.As(err, &ae)
}
