// Package fault carries the error kinds the service distinguishes between:
// bad input, missing records, and upstream vendor failures.
package fault

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindUnknown is the zero kind for errors that carry no classification.
	KindUnknown Kind = iota
	// KindInvalidArgument marks caller mistakes (bad phone number, empty text).
	KindInvalidArgument
	// KindNotFound marks lookups that resolved to nothing.
	KindNotFound
	// KindProvider marks upstream vendor failures (Twilio, Sarvam, ElevenLabs).
	KindProvider
	// KindTimeout marks vendor calls that exceeded an internal budget.
	// Recovery treats it the same as KindProvider.
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindNotFound:
		return "not_found"
	case KindProvider:
		return "provider_error"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error is an error with a Kind. Wrapped causes stay reachable via Unwrap.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New returns a classified error with a formatted message.
func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies an existing error. Returns nil when err is nil.
func Wrap(kind Kind, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind from an error chain, KindUnknown when absent.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// IsRecoverable reports whether the turn loop should mask the error with the
// fallback utterance instead of ending the call.
func IsRecoverable(err error) bool {
	k := KindOf(err)
	return k == KindProvider || k == KindTimeout || k == KindUnknown
}
