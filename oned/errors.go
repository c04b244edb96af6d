package oned

import "errors"

// Sentinel errors returned by 1D FFT operations.
var (
	// ErrInvalidLength is returned when the FFT size is not valid (n < 1).
	ErrInvalidLength = errors.New("oned: invalid FFT length")

	// ErrNilSlice is returned when a nil slice is passed to a transform method.
	ErrNilSlice = errors.New("oned: nil slice")

	// ErrLengthMismatch is returned when input/output slice sizes don't match
	// the plan's expected dimensions.
	ErrLengthMismatch = errors.New("oned: slice length mismatch")

	// ErrInvalidStride is returned when a stride parameter is invalid
	// for the given data layout (e.g., stride < 1).
	ErrInvalidStride = errors.New("oned: invalid stride")

	// ErrNotImplemented is returned when a transform method is called on a
	// nil plan.
	ErrNotImplemented = errors.New("oned: not implemented")
)
