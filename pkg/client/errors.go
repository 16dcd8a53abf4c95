package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by the client.
var (
	// ErrCancelled is returned when the caller's context is cancelled mid-flight.
	// It marks a no-op outcome, not a failure.
	ErrCancelled = errors.New("request cancelled")

	// ErrTimeout is wrapped by UpstreamError when a call exceeds its timeout.
	ErrTimeout = errors.New("request timeout")

	// ErrInvalidArgument is returned for negative limit/offset or empty ids.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ErrorClass represents a classification of upstream failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents transport failures.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassTimeout represents calls that exceeded the per-call timeout.
	ErrorClassTimeout ErrorClass = "timeout"

	// ErrorClassMalformed represents 2xx responses that could not be decoded.
	ErrorClassMalformed ErrorClass = "malformed"
)

// UpstreamError is a failure of the catalog service: a non-2xx status,
// a malformed body, a transport error or a timeout. StatusCode is 0 when no
// HTTP status is available.
type UpstreamError struct {
	StatusCode int
	Class      ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	status := "no status"
	if e.StatusCode != 0 {
		status = fmt.Sprintf("status %d", e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("upstream %s error (%s): %s: %v", e.Class, status, e.Message, e.Err)
	}
	return fmt.Sprintf("upstream %s error (%s): %s", e.Class, status, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the error is a per-call timeout.
func (e *UpstreamError) Timeout() bool {
	return e.Class == ErrorClassTimeout
}

// IsCancelled reports whether err is a cancellation outcome.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.StatusCode == http.StatusNotFound
}

// IsUpstream reports whether err is an UpstreamError, returning it.
func IsUpstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// classifyStatus maps an HTTP status code to an error class.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ErrorClassMalformed
	}
}

// shouldRetry determines if an error class is worth another attempt.
func shouldRetry(errorClass ErrorClass) bool {
	switch errorClass {
	case ErrorClassServer, ErrorClassNetwork, ErrorClassTimeout:
		return true
	default:
		// 4xx and undecodable bodies will not change on retry
		return false
	}
}
