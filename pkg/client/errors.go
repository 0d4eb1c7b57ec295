package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorClass represents a classification of fetch failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors. Retrying cannot fix these.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents failures with no HTTP status available:
	// transport errors and malformed success bodies.
	ErrorClassNetwork ErrorClass = "network"
)

// APIError is a classified fetch failure.
//
// StatusCode is 0 when no HTTP status was available. Message is the
// consumer-facing text: "<status>: <status text>" for HTTP failures,
// the underlying cause otherwise.
type APIError struct {
	StatusCode int
	Class      ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Class, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Class, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Retryable reports whether retrying can plausibly fix this failure.
func (e *APIError) Retryable() bool {
	return e.Class != ErrorClassClient
}

// newStatusError builds an APIError from a non-success HTTP status code.
func newStatusError(statusCode int) *APIError {
	class := ErrorClassServer
	if statusCode >= 400 && statusCode < 500 {
		class = ErrorClassClient
	}
	return &APIError{
		StatusCode: statusCode,
		Class:      class,
		Message:    fmt.Sprintf("%d: %s", statusCode, http.StatusText(statusCode)),
	}
}

// Retryable reports whether err should be retried. Errors that are not
// *APIError carry no status code and are treated like transport failures.
func Retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	return true
}

// Message extracts the consumer-facing message from a fetch failure.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
