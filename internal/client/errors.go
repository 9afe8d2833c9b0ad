package client

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors matched by the typed errors below through errors.Is.
var (
	ErrTimeout           = errors.New("request timed out")
	ErrMalformedResponse = errors.New("malformed response")
)

// HTTPError reports a non-2xx response. Body holds the raw response text.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string

	// APIMessage and APIType are set when Body is an OpenAI error envelope.
	APIMessage string
	APIType    string
}

func (e *HTTPError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d", e.StatusCode)
	}
	if e.Body == "" {
		return fmt.Sprintf("upstream returned %s", status)
	}
	return fmt.Sprintf("upstream returned %s: %s", status, e.Body)
}

// MalformedResponseError reports a 2xx response without the expected text field.
type MalformedResponseError struct {
	Field  string
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	msg := "malformed response"
	if e.Field != "" {
		msg += ": " + e.Field
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

// TimeoutError reports a request that exceeded its wall-clock bound.
type TimeoutError struct {
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	if e.Timeout > 0 {
		return fmt.Sprintf("request timed out after %s: %v", e.Timeout, e.Err)
	}
	return fmt.Sprintf("request timed out: %v", e.Err)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}
