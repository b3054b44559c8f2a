package transfers

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is a category of transfer failure
type Kind string

// Transfer failure kinds
const (
	KindNotAuthenticated   Kind = "NotAuthenticated"
	KindSourceNotFound     Kind = "SourceNotFound"
	KindInsufficientFunds  Kind = "InsufficientFunds"
	KindStorageUnavailable Kind = "StorageUnavailable"
	KindInvalidRequest     Kind = "InvalidRequest"
)

var kindMessages = map[Kind]string{
	KindNotAuthenticated:   "Not authenticated",
	KindSourceNotFound:     "Source account not found",
	KindInsufficientFunds:  "Insufficient funds",
	KindStorageUnavailable: "Storage unavailable",
	KindInvalidRequest:     "Invalid request",
}

// Message is a user facing description of the kind
func (k Kind) Message() string {
	if msg, ok := kindMessages[k]; ok {
		return msg
	}
	return string(k)
}

// Error is returned by the transfer service. Err holds the details
// that should not be exposed to the user
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.Message()
	}
	return fmt.Sprintf("%v: %v", e.Kind.Message(), e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinel errors to be used with errors.Is
var (
	ErrNotAuthenticated   = &Error{Kind: KindNotAuthenticated}
	ErrSourceNotFound     = &Error{Kind: KindSourceNotFound}
	ErrInsufficientFunds  = &Error{Kind: KindInsufficientFunds}
	ErrStorageUnavailable = &Error{Kind: KindStorageUnavailable}
	ErrInvalidRequest     = &Error{Kind: KindInvalidRequest}
)

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf returns the kind of a transfer error. Unknown errors
// are treated as storage failures
func KindOf(err error) Kind {
	var transferErr *Error
	if errors.As(err, &transferErr) {
		return transferErr.Kind
	}
	return KindStorageUnavailable
}
