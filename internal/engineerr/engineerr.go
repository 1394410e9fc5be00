// Package engineerr implements the error taxonomy of spec.md §7 as a Kind
// enum plus a wrapping Error type that satisfies the standard errors.Is /
// errors.As / %w machinery. No third-party errors library is used: the
// teacher's own codebase (logging/router.go's errors.Join, the %w wrapping
// throughout) relies exclusively on the standard library for error
// composition, so this package follows the same idiom rather than
// introducing a dependency that would duplicate it.
package engineerr

import (
	"errors"
	"fmt"
)

// Kind identifies a distinct error category from the taxonomy.
type Kind string

const (
	StorageFull      Kind = "StorageFull"
	PermissionDenied Kind = "PermissionDenied"
	FileNotFound     Kind = "FileNotFound"
	InvalidPath      Kind = "InvalidPath"
	FileExists       Kind = "FileExists"
	Cancelled        Kind = "Cancelled"

	CorruptSnapshot Kind = "CorruptSnapshot"
	CorruptEvent    Kind = "CorruptEvent"
	CorruptStore    Kind = "CorruptStore"

	VersionMismatch Kind = "VersionMismatch"
	MigrationFailed Kind = "MigrationFailed"

	InvariantViolated Kind = "InvariantViolated"
	ReplayFailed      Kind = "ReplayFailed"
	StorageDegraded   Kind = "StorageDegraded"
	SchemaValidation  Kind = "SchemaValidation"
)

// Error wraps a Kind with the operation that produced it, an optional
// sequence number, and an optional underlying cause.
type Error struct {
	Kind Kind
	Op   string
	At   *uint64
	Err  error

	// Field and Reason are populated for SchemaValidation errors.
	Field  string
	Reason string
}

func (e *Error) Error() string {
	switch {
	case e.At != nil && e.Err != nil:
		return fmt.Sprintf("%s: %s at sequence %d: %v", e.Op, e.Kind, *e.At, e.Err)
	case e.At != nil:
		return fmt.Sprintf("%s: %s at sequence %d", e.Op, e.Kind, *e.At)
	case e.Kind == SchemaValidation:
		return fmt.Sprintf("%s: %s: field %q: %s", e.Op, e.Kind, e.Field, e.Reason)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is (or wraps) an *Error with the same Kind; only
// Kind is compared, letting callers write errors.Is(err, engineerr.New("", kind)).
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

// New constructs an Error for op with the given kind and no cause.
func New(op string, kind Kind) *Error {
	return &Error{Op: op, Kind: kind}
}

// Wrap constructs an Error for op with the given kind, wrapping cause.
func Wrap(op string, kind Kind, cause error) *Error {
	return &Error{Op: op, Kind: kind, Err: cause}
}

// AtSequence constructs an Error carrying a sequence number.
func AtSequence(op string, kind Kind, seq uint64) *Error {
	return &Error{Op: op, Kind: kind, At: &seq}
}

// Validation constructs a SchemaValidation error.
func Validation(op, field, reason string) *Error {
	return &Error{Op: op, Kind: SchemaValidation, Field: field, Reason: reason}
}

// KindOf returns the Kind carried by err, if err is or wraps an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsKind reports whether err is or wraps an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
