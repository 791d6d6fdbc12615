package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrChannelNotFound is returned when a channel row is not found
	ErrChannelNotFound = errors.New("channel not found")

	// ErrChannelAlreadyExists is returned when a channel is added twice
	ErrChannelAlreadyExists = errors.New("channel already exists")

	// ErrInvalidChannelID is returned when a channel identifier is malformed
	ErrInvalidChannelID = errors.New("invalid channel identifier")

	// ErrNotConnected is returned when an operation requires an established
	// Telegram connection
	ErrNotConnected = errors.New("not connected to Telegram")

	// ErrAuthorizationRequired is returned when the stored session is
	// missing or revoked; the operator has to re-authorize the account
	ErrAuthorizationRequired = errors.New("telegram session not authorized")
)

// FloodWaitError is the flood-control signal from Telegram: the caller
// must wait the mandated duration before retrying. The retry policy
// honors this duration instead of its own backoff delay.
type FloodWaitError struct {
	Wait time.Duration
}

func (e *FloodWaitError) Error() string {
	return fmt.Sprintf("flood wait: retry after %s", e.Wait)
}

// WaitDuration returns the mandated wait before the next attempt
func (e *FloodWaitError) WaitDuration() time.Duration {
	return e.Wait
}

// NotFoundError indicates the requested channel or message is gone,
// private, or never existed. Not retryable.
type NotFoundError struct {
	Subject string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found or inaccessible", e.Subject)
}

// ConnectionError indicates the transport could not be established or
// dropped mid-call. Retryable.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// TimeoutError indicates a source call exceeded its deadline. Retryable.
type TimeoutError struct {
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout: %v", e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// IsThrottle reports whether err is a rate-limit signal from the source
func IsThrottle(err error) bool {
	var fw *FloodWaitError
	return errors.As(err, &fw)
}

// IsNotFound reports whether err indicates a missing or inaccessible entity
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf) || errors.Is(err, ErrChannelNotFound)
}

// IsRetryable reports whether a source-layer error is worth retrying.
// Flood waits are handled separately by the retry policy; everything
// else that is neither a transport failure nor a timeout propagates
// immediately.
func IsRetryable(err error) bool {
	var (
		connErr    *ConnectionError
		timeoutErr *TimeoutError
	)
	return errors.As(err, &connErr) ||
		errors.As(err, &timeoutErr) ||
		errors.Is(err, ErrNotConnected)
}
