package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Kiosk specific errors
	ErrDataUnavailable    ErrorCode = "DATA_UNAVAILABLE"
	ErrPreconditionFailed ErrorCode = "PRECONDITION_FAILED"
	ErrTransportFailure   ErrorCode = "TRANSPORT_FAILURE"
	ErrMalformedPayload   ErrorCode = "MALFORMED_PAYLOAD"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is / errors.As
func (e *DomainError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// HasCode reports whether err (or anything it wraps) is a DomainError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// Helper functions for common errors
func NewInvalidInputError(message string) *DomainError {
	return NewError(ErrInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(ErrInternal, message, err)
}

func NewDataUnavailableError(message string, err error) *DomainError {
	return NewError(ErrDataUnavailable, message, err)
}

func NewPreconditionError(message string) *DomainError {
	return NewError(ErrPreconditionFailed, message, nil)
}

func NewTransportError(message string, err error) *DomainError {
	return NewError(ErrTransportFailure, message, err)
}

func NewMalformedPayloadError(message string, err error) *DomainError {
	return NewError(ErrMalformedPayload, message, err)
}
