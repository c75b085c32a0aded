package expect

import (
	"errors"
	"fmt"
)

// Kind classifies a failed expectation. Every kind is fatal to the scenario.
type Kind string

const (
	KindNotFound            Kind = "NotFound"
	KindUnexpectedFromState Kind = "UnexpectedFromState"
	KindUnexpectedEvent     Kind = "UnexpectedEvent"
	KindUnexpectedToState   Kind = "UnexpectedToState"
	KindNoPriorTimestamp    Kind = "NoPriorTimestamp"
	KindDelayExceeded       Kind = "DelayExceeded"
	KindTimestampRegression Kind = "TimestampRegression"
	KindParseError          Kind = "ParseError"
	KindNotOpen             Kind = "NotOpen"
)

var ErrAlreadyOpen = errors.New("session already open")

// Error is returned by Session.Expect and Session.NextRecordFor.
// Message is the text written to the trace and meant to be shown verbatim.
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
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
