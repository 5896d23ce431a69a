// Package mcerrors defines the error-kind vocabulary used across cartograph.
//
// Errors are either surfaced (BadInput, DatasourceIOError), demoted to a
// logged warning and otherwise ignored (MissingAsset, OutOfBounds), or
// panics reserved for bugs (InvariantViolation). No error is handled inside
// the hot inner loop beyond cheap bounds checks.
package mcerrors

import (
	"errors"
	"fmt"
)

// Kind classifies an Error by the policy that applies to it.
type Kind int

const (
	// BadInput marks an unparseable style or configuration. Surfaced to the
	// caller before any rendering occurs.
	BadInput Kind = iota
	// DatasourceIOError marks an I/O or query failure. The current layer is
	// skipped; subsequent layers continue.
	DatasourceIOError
	// MissingAsset marks a font, marker image, or pattern image that could
	// not be found. Logged once, then the feature renders without the asset.
	MissingAsset
	// OutOfBounds marks geometry entirely outside the viewport. Not
	// normally constructed as an error value — kept for callers that want
	// to distinguish "filtered" from "failed" in a uniform way.
	OutOfBounds
	// InvariantViolation marks a pixel type mismatch, buffer overflow, or
	// unreachable enum arm. Raise with Panic, never return as an error.
	InvariantViolation
)

func (k Kind) String() string {
	switch k {
	case BadInput:
		return "bad input"
	case DatasourceIOError:
		return "datasource I/O error"
	case MissingAsset:
		return "missing asset"
	case OutOfBounds:
		return "out of bounds"
	case InvariantViolation:
		return "invariant violation"
	default:
		return "unknown error kind"
	}
}

// Error wraps an underlying error with a Kind and the operation that
// produced it, following the stdlib errors.Is/As wrapping protocol.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind for operation op wrapping err.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Is reports whether err is (or wraps) an Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Panic raises an InvariantViolation. Reserved for bugs: pixel-type
// mismatches, buffer overflows, and unreachable enum arms.
func Panic(op string, err error) {
	panic(New(InvariantViolation, op, err))
}
