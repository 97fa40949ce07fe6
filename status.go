package sharetex

import (
	"errors"
	"fmt"
)

// Status is the outcome of an operation that has a soft failure path.
type Status uint8

// Operation outcomes.
const (
	// StatusOK means the operation completed.
	StatusOK Status = iota

	// StatusNotSupported is a soft, expected outcome: interop is unavailable
	// on this driver or was never opened. Callers branch on it and continue.
	StatusNotSupported

	// StatusFailed is a hard failure; the accompanying error says why.
	StatusFailed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotSupported:
		return "not-supported"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// StatusOf classifies err. A nil error is StatusOK, ErrInteropUnavailable is
// StatusNotSupported and anything else is StatusFailed.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrInteropUnavailable):
		return StatusNotSupported
	default:
		return StatusFailed
	}
}
