package drmtoday

import (
	"fmt"

	"github.com/pkg/errors"
)

// ConfigError reports a missing mandatory configuration value.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("no valid %s specified", e.Field)
}

// TransportError is returned when a license server exchange does not end with a 2xx response.
type TransportError struct {
	URL        string
	StatusCode int
	Status     string
	Body       []byte
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("post %s: %v", e.URL, e.Err)
	}

	return fmt.Sprintf("post %s: bad http code: %s: %s", e.URL, e.Status, e.Body)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NotFoundError is a TransportError for a license resource the server does not know.
type NotFoundError struct {
	TransportError
}

func (e *NotFoundError) Unwrap() error { return &e.TransportError }

// DecodeError reports a success response whose body holds no usable license.
type DecodeError struct {
	Scheme Scheme
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s response: %v", e.Scheme, e.Err)
}

func (e *DecodeError) Cause() error  { return e.Err }
func (e *DecodeError) Unwrap() error { return e.Err }

// LicenseError wraps a failed license exchange with the logRequestId sent to the backend.
type LicenseError struct {
	RequestID string
	Err       error
}

func (e *LicenseError) Error() string {
	return fmt.Sprintf("license request %s: %v", e.RequestID, e.Err)
}

func (e *LicenseError) Unwrap() error { return e.Err }

// RequestID returns the logRequestId carried by err, or "" when no request was built.
func RequestID(err error) string {
	var licenseErr *LicenseError

	if errors.As(err, &licenseErr) {
		return licenseErr.RequestID
	}

	return ""
}
