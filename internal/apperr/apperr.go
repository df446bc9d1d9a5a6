package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation    Kind = "validation"
	KindUpstream      Kind = "upstream"
	KindConfiguration Kind = "configuration"
	KindPersistence   Kind = "persistence"
	KindTransport     Kind = "transport"
	KindInternal      Kind = "internal"
)

// Error carries a Kind so callers at the edges (HTTP handler, TUI) can pick a
// status code or message without string matching.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func New(kind Kind, message string, cause error) error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func Validation(message string) error {
	return New(KindValidation, message, nil)
}

func Upstream(message string, cause error) error {
	return New(KindUpstream, message, cause)
}

func Configuration(message string) error {
	return New(KindConfiguration, message, nil)
}

func Persistence(message string, cause error) error {
	return New(KindPersistence, message, cause)
}

func Transport(message string, cause error) error {
	return New(KindTransport, message, cause)
}

// KindOf returns the Kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MessageOf returns the user-facing message of the first *Error in err's
// chain, falling back to err.Error().
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}
