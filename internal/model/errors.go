package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so callers and the HTTP layer can react
// without string matching.
type ErrorKind int

const (
	// KindValidation is locally detectable bad input. Surfaced before any
	// network call is made.
	KindValidation ErrorKind = iota
	// KindAuth means the gateway rejected the credentials or session token.
	KindAuth
	// KindAuthorization means a role or session check failed locally, before
	// attempting a privileged action.
	KindAuthorization
	// KindTransport is a network failure, a non-success HTTP status, or an
	// unparseable response from the gateway.
	KindTransport
	// KindService means the gateway responded but reported a logical failure,
	// carrying its human-readable message.
	KindService
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindAuthorization:
		return "authorization"
	case KindTransport:
		return "transport"
	case KindService:
		return "service"
	default:
		return "unknown"
	}
}

// Error is a classified failure. Err, when set, is the underlying cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError creates a classified error with no underlying cause.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError creates a classified error around an underlying cause.
func WrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of a classified error. Unclassified errors report
// KindTransport, the conservative choice: indistinguishable from a failed
// exchange and always retryable by the user.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransport
}

// IsKind reports whether err is a classified error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
