package types

import (
	"errors"
	"fmt"
	"time"
)

// ErrAllProvidersExhausted is the only error a caller should see after a
// primary-path failure: retries, stale cache and the secondary provider have
// all come up empty.
var ErrAllProvidersExhausted = errors.New("all weather providers exhausted")

// InvalidInputError rejects bad caller input before any upstream call.
type InvalidInputError struct {
	Msg string
}

func (e *InvalidInputError) Error() string {
	return e.Msg
}

func InvalidInputf(format string, args ...any) error {
	return &InvalidInputError{Msg: fmt.Sprintf(format, args...)}
}

// ConfigurationError marks a deployment problem, e.g. a missing credential.
// It is never retried.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return e.Msg
}

// UpstreamError wraps a failed provider call. Status 0 means the request
// never produced a response (transport error or timeout).
type UpstreamError struct {
	Provider   string
	Status     int
	RetryAfter time.Duration
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%v request failed: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%v returned status %d", e.Provider, e.Status)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Retryable reports whether another attempt may succeed: rate limiting,
// server-side errors and transport failures qualify, anything else is a
// client error and fatal.
func (e *UpstreamError) Retryable() bool {
	return e.Status == 0 || e.Status == 429 || e.Status >= 500
}
