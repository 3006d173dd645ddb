// Package apperr defines the error kinds shared by the data access layer and the HTTP handlers.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	Internal Kind = iota
	Validation
	NotFound
	DuplicateEmail
	Unauthenticated
	StoreUnavailable
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case DuplicateEmail:
		return "duplicate_email"
	case Unauthenticated:
		return "unauthenticated"
	case StoreUnavailable:
		return "store_unavailable"
	default:
		return "internal"
	}
}

// Error carries a kind, a message that is safe to show to clients and an optional cause
// that is only ever logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches a target of the same kind. A target with a message additionally has to carry the
// same message, so errors.Is works both for kind sentinels (ErrNotFound) and for domain
// sentinels such as product.ErrNotFound.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

var (
	ErrValidation       = &Error{Kind: Validation}
	ErrNotFound         = &Error{Kind: NotFound}
	ErrDuplicateEmail   = &Error{Kind: DuplicateEmail}
	ErrUnauthenticated  = &Error{Kind: Unauthenticated}
	ErrStoreUnavailable = &Error{Kind: StoreUnavailable}
)

func NewValidation(format string, args ...any) *Error {
	return &Error{Kind: Validation, Message: fmt.Sprintf(format, args...)}
}

// NewStoreUnavailable wraps a driver failure for the given operation.
func NewStoreUnavailable(op string, err error) *Error {
	return &Error{Kind: StoreUnavailable, Message: op, Err: err}
}

// KindOf returns the kind of the first *Error in the chain, Internal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// PublicMessage returns the client-facing message of the first *Error in the chain.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}
