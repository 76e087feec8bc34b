package client

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind categorizes upload failures
type ErrorKind string

const (
	// RequestFailed indicates the backend answered with a non-2xx status
	RequestFailed ErrorKind = "request_failed"

	// TransportFailure indicates the exchange itself failed: dial, timeout,
	// broken body or an undecodable success payload
	TransportFailure ErrorKind = "transport_failure"
)

// AnalysisError represents a failed analysis request. Message is user-facing.
type AnalysisError struct {
	// Kind categorizes the error
	Kind ErrorKind `json:"kind"`

	// Message is what the user sees
	Message string `json:"message"`

	// StatusCode for RequestFailed errors
	StatusCode int `json:"status_code,omitempty"`

	// RequestID correlates the failure with backend logs
	RequestID string `json:"request_id,omitempty"`

	// Underlying error that caused this error
	Cause error `json:"-"`
}

// Error implements the error interface
func (e *AnalysisError) Error() string {
	return e.Message
}

// Detail renders every field for logs
func (e *AnalysisError) Detail() string {
	parts := []string{fmt.Sprintf("type=%s", e.Kind)}
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	if e.RequestID != "" {
		parts = append(parts, fmt.Sprintf("request_id=%s", e.RequestID))
	}
	parts = append(parts, e.Message)
	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%s", e.Cause.Error()))
	}
	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying error
func (e *AnalysisError) Unwrap() error {
	return e.Cause
}

// Is matches another *AnalysisError by kind
func (e *AnalysisError) Is(target error) bool {
	if ae, ok := target.(*AnalysisError); ok {
		return e.Kind == ae.Kind
	}
	return false
}

// Sentinels for errors.Is checks
var (
	ErrRequestFailed    = &AnalysisError{Kind: RequestFailed}
	ErrTransportFailure = &AnalysisError{Kind: TransportFailure}
)

// IsRequestFailed reports whether err is a backend rejection
func IsRequestFailed(err error) bool {
	return errors.Is(err, ErrRequestFailed)
}

// IsTransportFailure reports whether err is a transport-level failure
func IsTransportFailure(err error) bool {
	return errors.Is(err, ErrTransportFailure)
}
