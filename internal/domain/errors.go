package domain

import "fmt"

// PublicError is a hard failure safe to surface to end users. It carries a
// machine-readable code alongside the message and is reserved for precondition
// violations the caller must not ignore; soft pricing conditions are reported on the
// result instead.
type PublicError struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *PublicError) Error() string {
	if e == nil {
		return ""
	}
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewPublicError constructs a PublicError with the supplied code and message.
func NewPublicError(code, message string) *PublicError {
	return &PublicError{Code: code, Message: message}
}
