package analytics

import (
	"fmt"
	"strings"
)

// ValidationError reports required request fields that were missing or empty.
// Reasons holds one readable message per field, in the same order.
type ValidationError struct {
	Fields  []string
	Reasons []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// UpstreamError reports a failed call to the analytics provider: a non-2xx status,
// a transport failure or an undecodable body. StatusCode is 0 when no response was
// received.
type UpstreamError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	return e.Message
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func newStatusError(status int, err error) *UpstreamError {
	return &UpstreamError{
		StatusCode: status,
		Message:    fmt.Sprintf("API request failed with status %d", status),
		Err:        err,
	}
}

func newTransportError(err error) *UpstreamError {
	return &UpstreamError{
		Message: fmt.Sprintf("API request failed: %v", err),
		Err:     err,
	}
}
