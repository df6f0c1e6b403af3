package helpers

import "fmt"

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type DashboardError struct {
	Message string
	Cause   error
}

func (e *DashboardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DashboardError) Unwrap() error {
	return e.Cause
}

// Distinct error types for type assertions where the handling differs.
//
// ConfigurationError: missing credential, fatal to the affected endpoint.
// UpstreamError: provider network failure, non-2xx or malformed payload.
// ClientParseError: malformed streamed message, never fatal.
// StorageCorruptionError: unparseable persisted watchlist, degrades to empty.
type ConfigurationError struct{ DashboardError }
type UpstreamError struct{ DashboardError }
type ClientParseError struct{ DashboardError }
type StorageCorruptionError struct{ DashboardError }

// -----------------------------------------------------------------------------
// Constructors
// -----------------------------------------------------------------------------

func NewConfigurationError(msg string) error {
	return &ConfigurationError{DashboardError{Message: msg}}
}

func NewUpstreamError(msg string, cause error) error {
	return &UpstreamError{DashboardError{Message: msg, Cause: cause}}
}

func NewClientParseError(msg string, cause error) error {
	return &ClientParseError{DashboardError{Message: msg, Cause: cause}}
}

func NewStorageCorruptionError(msg string, cause error) error {
	return &StorageCorruptionError{DashboardError{Message: msg, Cause: cause}}
}
