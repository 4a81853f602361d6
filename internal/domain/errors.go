package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrCapabilityUnsupported = errors.New("capability_unsupported")
	ErrUpstream              = errors.New("upstream_error")
	ErrValidation            = errors.New("validation_error")
	ErrNetwork               = errors.New("network_error")
	ErrInvalidPlatform       = errors.New("invalid_platform")
	ErrInvalidConnection     = errors.New("invalid_connection")
	ErrInvalidID             = errors.New("invalid_id")
	ErrNodeNotFound          = errors.New("node_not_found")
)

// CapabilityUnsupportedError reports an operation the platform does not offer.
type CapabilityUnsupportedError struct {
	Kind     EntityKind
	Platform Platform
	Op       Operation
}

func (e *CapabilityUnsupportedError) Error() string {
	return fmt.Sprintf("capability_unsupported: %s %s on %s", e.Op, e.Kind, e.Platform)
}

func (e *CapabilityUnsupportedError) Is(target error) bool {
	return target == ErrCapabilityUnsupported
}

// UpstreamError is a non-2xx answer from the backend or vendor.
type UpstreamError struct {
	Status        int
	VendorMessage string
}

func (e *UpstreamError) Error() string {
	if e.VendorMessage == "" {
		return fmt.Sprintf("upstream_error: status %d", e.Status)
	}
	return fmt.Sprintf("upstream_error: status %d: %s", e.Status, e.VendorMessage)
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// FieldError is one rejected form field.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError rejects input before any network call is made.
type ValidationError struct {
	Fields []FieldError
}

func NewValidationError(field, code, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Code: code, Message: message}}}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation_error: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NetworkError is a transport failure where no response was received.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network_error: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}
