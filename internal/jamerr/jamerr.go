// Package jamerr defines the error taxonomy shared by every stage of the
// pipeline: Format, Integrity, Invariant and Resource errors, plus a thin
// IO wrapper. It lives below the root package so that every internal
// stage package can raise these errors without an import cycle; the root
// package re-exports the same types under its own names.
package jamerr

import "fmt"

// FormatError reports a malformed block or archive: bad magic, a declared
// length outside [MinBlockSize, MaxBlockSize], or inconsistent header
// fields.
type FormatError string

func (e FormatError) Error() string { return "jampack: format error: " + string(e) }

// IntegrityError reports a checksum mismatch between a block's header and
// its decoded payload.
type IntegrityError string

func (e IntegrityError) Error() string { return "jampack: integrity error: " + string(e) }

// InvariantError reports a violated internal invariant: a CDF that does
// not sum to PROB_SCALE, a required symbol normalized to zero frequency,
// a BWT index out of range, or an overlong LEB128 continuation chain.
type InvariantError string

func (e InvariantError) Error() string { return "jampack: invariant violated: " + string(e) }

// ResourceError reports an allocation failure or other unrecoverable
// resource exhaustion. Callers should treat it as fatal.
type ResourceError string

func (e ResourceError) Error() string { return "jampack: resource error: " + string(e) }

// Format constructs a FormatError with the given message.
func Format(msg string) error { return FormatError(msg) }

// Integrity constructs an IntegrityError with the given message.
func Integrity(msg string) error { return IntegrityError(msg) }

// Invariant constructs an InvariantError with the given message.
func Invariant(msg string) error { return InvariantError(msg) }

// Resource constructs a ResourceError with the given message.
func Resource(msg string) error { return ResourceError(msg) }

// IO wraps an I/O-layer failure (short read, write failure) with a stage
// tag, without converting it into one of the typed errors above: per the
// propagation policy, I/O errors pass through to the caller untouched in
// kind.
func IO(msg string) error { return fmt.Errorf("jampack: io: %s", msg) }

// Wrap annotates an underlying I/O error with a stage tag while
// preserving it for errors.Is/errors.As.
func Wrap(stage string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("jampack: %s: %w", stage, err)
}
