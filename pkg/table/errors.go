package table

import "errors"

// Sentinel errors for the table operation surface. Wire- and codec-level
// conditions (ErrMalformed, ErrUnexpectedEnd, ErrCorruptRecord, ...) live in
// pkg/dump and pkg/codec; operations wrap them, so errors.Is works across the
// whole surface.
var (
	// ErrInvalidArgument reports a type or shape mismatch on operation inputs,
	// detected before any mutation is attempted.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPermissionDenied reports a mutation attempted on a read-only table,
	// including Clear of a bound namespace.
	ErrPermissionDenied = errors.New("permission denied")
)
