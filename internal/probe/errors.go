package probe

import (
	"errors"
	"fmt"
)

// Kind is a closed enumeration of probe pipeline failures. Every failure a
// probe or extractor can produce maps onto exactly one kind, so callers can
// handle the taxonomy exhaustively instead of string-matching errors.
type Kind uint8

const (
	// KindTimeout means the command exceeded its wait bound and was killed.
	KindTimeout Kind = iota + 1
	// KindLaunchFailure means the command could not be started at all.
	KindLaunchFailure
	// KindNonZeroExit means the command ran but reported failure.
	KindNonZeroExit
	// KindParseMismatch means output was captured but contained nothing
	// resembling the expected shape.
	KindParseMismatch
)

// String returns the stable identifier for the failure kind.
func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindLaunchFailure:
		return "launch_failure"
	case KindNonZeroExit:
		return "non_zero_exit"
	case KindParseMismatch:
		return "parse_mismatch"
	default:
		return "unknown"
	}
}

// Error is a typed probe failure. Source names the diagnostic tool involved;
// ExitCode and Stderr are populated for KindNonZeroExit only.
type Error struct {
	Kind     Kind
	Source   string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNonZeroExit:
		if e.Stderr != "" {
			return fmt.Sprintf("%s: %s (exit %d): %s", e.Source, e.Kind, e.ExitCode, e.Stderr)
		}
		return fmt.Sprintf("%s: %s (exit %d)", e.Source, e.Kind, e.ExitCode)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Source, e.Kind, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Source, e.Kind)
	}
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error { return e.Err }

// NewParseMismatch builds the failure an extractor reports when the captured
// text carried no recognizable fields.
func NewParseMismatch(source string) *Error {
	return &Error{Kind: KindParseMismatch, Source: source}
}

// KindOf returns the failure kind of err, or zero if err is not a probe error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}

// IsTimeout reports whether err is a probe timeout.
func IsTimeout(err error) bool { return KindOf(err) == KindTimeout }
