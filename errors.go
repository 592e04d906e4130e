package virusscan

import (
	"errors"
	"fmt"
)

// ErrNotImplemented is returned by backends whose transport is not yet
// available, such as the cloud placeholder.
var ErrNotImplemented = errors.New("scanning backend not implemented")

// ThreatError reports that a scan found malware. It is never suppressed:
// fail-open policy applies to scanner unavailability, not to detections.
type ThreatError struct {
	// Filename is the name the caller supplied with the payload, if any.
	Filename string
	// Threat is the signature name reported by the backend.
	Threat string
}

// Error returns the human-readable error message.
func (e *ThreatError) Error() string {
	if e.Filename == "" {
		return fmt.Sprintf("threat detected: %s", e.Threat)
	}
	return fmt.Sprintf("threat detected in %s: %s", e.Filename, e.Threat)
}

// UnavailableError reports that the scanning backend could not produce a
// verdict: connection failure, timeout, or a protocol-level error reply.
type UnavailableError struct {
	// Reason is a human-readable description of the failure.
	Reason string
	// Cause is the underlying error, if any.
	Cause error
}

// Error returns the human-readable error message.
func (e *UnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("scanner unavailable: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("scanner unavailable: %s", e.Reason)
}

// Unwrap returns the underlying cause for use with errors.Is and errors.As.
func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// NewUnavailableError creates an error indicating the scanner could not be
// reached or did not produce a usable verdict.
func NewUnavailableError(reason string, cause error) *UnavailableError {
	return &UnavailableError{Reason: reason, Cause: cause}
}

// IsThreat reports whether err is or wraps a ThreatError.
func IsThreat(err error) bool {
	var e *ThreatError
	return errors.As(err, &e)
}

// IsUnavailable reports whether err is or wraps an UnavailableError.
func IsUnavailable(err error) bool {
	var e *UnavailableError
	return errors.As(err, &e)
}
