package model

//go:generate go run github.com/abice/go-enum -f=$GOFILE --marshal --names

import (
	"errors"
	"strings"
)

// ErrorKind classifies why a resolution failed ENUM(
// transport // HTTP failure talking to a DoH provider or document host
// authentication // DNSSEC authentication missing or DNS error status
// consistency // providers disagree or a single provider is not enough
// integrity // digest of a pinned document does not match
// schema // unsupported version, missing required field or disallowed algorithm
// format // malformed TXT, JSON or key material
// )
type ErrorKind int

// Sentinels for errors.Is matching by kind.
// nolint:gochecknoglobals
var (
	ErrTransport      = &Error{Kind: ErrorKindTransport}
	ErrAuthentication = &Error{Kind: ErrorKindAuthentication}
	ErrConsistency    = &Error{Kind: ErrorKindConsistency}
	ErrIntegrity      = &Error{Kind: ErrorKindIntegrity}
	ErrSchema         = &Error{Kind: ErrorKindSchema}
	ErrFormat         = &Error{Kind: ErrorKindFormat}
)

// Error is the failure of one resolution stage. Message carries the human readable reason,
// the remaining fields carry structured context and are empty when not applicable.
type Error struct {
	Kind     ErrorKind
	Message  string
	Domain   string
	Field    string
	URL      string
	Expected string
	Actual   string
	Err      error
}

func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(e.Message)

	if sb.Len() == 0 {
		sb.WriteString(e.Kind.String())
		sb.WriteString(" error")
	}

	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}

	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the sentinels above work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}

	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// Retryable returns true for errors which may disappear on a new attempt.
// Trust failures never are.
func (e *Error) Retryable() bool {
	return e.Kind == ErrorKindTransport
}

// KindOf returns the kind of the first *Error in err's chain
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}

	return 0, false
}

// NewError creates an error of the given kind
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError creates an error of the given kind wrapping a cause
func WrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}
