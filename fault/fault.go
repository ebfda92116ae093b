// SPDX-License-Identifier: Apache-2.0

// Package fault defines the error kinds shared by the containers and
// allocators of this module.
//
// Recoverable conditions are returned as errors wrapping one of the sentinel
// kinds below, so callers match them with errors.Is. Contract violations
// (out-of-range indexing, releasing an allocator with live allocations,
// rolling back to a stale marker) are never returned: they panic through
// Violation with an error wrapping ErrPrecondition.
package fault

import (
	"github.com/pkg/errors"
)

var (
	// ErrOutOfMemory is returned when an allocator cannot satisfy a request
	// from its reserved block. Allocators never grow to recover from it.
	ErrOutOfMemory = errors.New("allocator out of memory")

	// ErrIllegalArgument is returned when an argument would break a
	// container invariant, e.g. shrinking capacity below the length.
	ErrIllegalArgument = errors.New("illegal argument")

	// ErrContainerEmpty is returned by accessors that need at least one element.
	ErrContainerEmpty = errors.New("container empty")

	// ErrPrecondition is the kind carried by Violation panics.
	ErrPrecondition = errors.New("precondition failed")
)

// Violation panics with an error wrapping ErrPrecondition.
// It never returns.
func Violation(format string, args ...any) {
	panic(errors.Wrapf(ErrPrecondition, format, args...))
}

// AsViolation reports whether a recovered panic value was raised by Violation.
// It returns the underlying error when it was.
func AsViolation(r any) (error, bool) {
	err, ok := r.(error)
	if !ok || !errors.Is(err, ErrPrecondition) {
		return nil, false
	}
	return err, true
}
