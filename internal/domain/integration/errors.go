package integration

import (
	"errors"
	"fmt"
)

var (
	ErrProviderNotConfigured = errors.New("integration: provider not configured")
	ErrUnsupportedProvider   = errors.New("integration: provider not supported")
	ErrConnectionFailed      = errors.New("integration: connection test failed")
	ErrOrderNotLinked        = errors.New("integration: order has no marketplace link")
	ErrPartnerNotFound       = errors.New("integration: partner not found")
	ErrProviderUnavailable   = errors.New("integration: provider unreachable")
	ErrRequestFailed         = errors.New("integration: provider request failed")
	ErrInvalidResponse       = errors.New("integration: invalid provider response")
)

// ExternalServiceError wraps a destination adapter failure with the
// destination name so callers can attribute partial failures
type ExternalServiceError struct {
	Destination string
	Err         error
}

// Error implements the error interface
func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Destination, e.Err)
}

// Unwrap returns the underlying adapter error
func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// NewExternalServiceError creates a new external service error
func NewExternalServiceError(destination string, err error) *ExternalServiceError {
	return &ExternalServiceError{Destination: destination, Err: err}
}
