package sonda

import (
	"errors"
	"fmt"
)

// Base error types
var (
	ErrMissingAPIKey = errors.New("sonda: OpenAI API key is required")
	ErrEmptyQuery    = errors.New("sonda: query cannot be empty")
	ErrUnknownMethod = errors.New("sonda: unknown research method")
)

// FailureKind classifies why a backend call failed.
type FailureKind string

const (
	FailureTimeout    FailureKind = "timeout"
	FailurePermission FailureKind = "permission"
	FailureStatus     FailureKind = "status"
	FailureNetwork    FailureKind = "network"
)

// ConfigError reports invalid or missing configuration. It is fatal
// and surfaced before any backend call is attempted.
type ConfigError struct {
	Field string
	Cause error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("sonda: config error in %s: %v", e.Field, e.Cause)
}

func (e *ConfigError) Unwrap() error { return e.Cause }

// BackendError reports a failed call against a specific backend. It is
// recoverable: the client retries once against the other backend when
// the method was auto-selected.
type BackendError struct {
	Method Method
	Kind   FailureKind
	Cause  error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("sonda: backend %s failed (%s): %v", e.Method, e.Kind, e.Cause)
}

func (e *BackendError) Unwrap() error { return e.Cause }

// ValidationError reports a malformed response field. Individual
// malformed citations are discarded and counted rather than surfaced;
// a ValidationError escapes only wrapped in a BackendError when the
// whole response shape is unusable.
type ValidationError struct {
	Field string
	Cause error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("sonda: invalid response field %s: %v", e.Field, e.Cause)
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// AggregateError reports that both the primary and the fallback
// backend failed. Both causes are retained.
type AggregateError struct {
	Primary  error
	Fallback error
}

func (e *AggregateError) Error() string {
	return fmt.Sprintf("sonda: both backends failed: primary: %v; fallback: %v", e.Primary, e.Fallback)
}

func (e *AggregateError) Unwrap() []error { return []error{e.Primary, e.Fallback} }

func newBackendError(method Method, kind FailureKind, cause error) *BackendError {
	return &BackendError{Method: method, Kind: kind, Cause: cause}
}
