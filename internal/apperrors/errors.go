package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions that carry no extra data. Callers match
// them with errors.Is.
var (
	// ErrUnauthorized covers bad credentials on login.
	ErrUnauthorized = errors.New("invalid credentials")

	// ErrTokenExpired and ErrTokenInvalid split the two token lifecycle
	// failures so the middleware can log them apart.
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")

	// ErrUniqueConstraint is the storage-layer backstop for duplicate
	// username/email inserts that slipped past the pre-checks.
	ErrUniqueConstraint = errors.New("unique constraint violation")
)

// UniqueFieldError reports a registration conflict detected by the
// pre-insert lookups. Field is either "username" or "email".
type UniqueFieldError struct {
	Field string
	Value string
}

func (e *UniqueFieldError) Error() string {
	return fmt.Sprintf("%s '%s' is already taken", e.Field, e.Value)
}

// TransportError wraps a network-level failure reaching the exchange-rate
// provider.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("external API request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError reports a non-success status from the exchange-rate
// provider. Code 402 is the provider's "unknown currency code" answer and
// gets its own client-facing message downstream.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("external API responded with status %d: %s", e.Code, e.Body)
}

// DataError reports a 200 response whose payload is missing a required
// key or fails the response schema. Body is kept verbatim for
// diagnostics; it indicates a contract break with the provider.
type DataError struct {
	Key  string
	Body string
}

func (e *DataError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("malformed external API response: %s", e.Body)
	}
	return fmt.Sprintf("key '%s' missing or malformed in external API response: %s", e.Key, e.Body)
}
