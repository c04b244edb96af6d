package fft3d

import (
	"errors"

	"github.com/cwbudde/fft3d/box"
	"github.com/cwbudde/fft3d/internal/dplan"
	"github.com/cwbudde/fft3d/internal/executor"
	"github.com/cwbudde/fft3d/transport"
)

// The module's error taxonomy. Every error a Plan constructor or transform
// call can return is, or wraps, one of these seven sentinels; check with
// errors.Is.
var (
	// ErrInvalidPartition is returned when a caller-supplied partition does
	// not tile its stated global box: gaps, overlaps, or a box outside the
	// global bounds.
	ErrInvalidPartition = box.ErrInvalidPartition

	// ErrInvalidR2CAxis is returned when the requested real-to-complex axis
	// is not 0, 1 or 2.
	ErrInvalidR2CAxis = dplan.ErrInvalidR2CAxis

	// ErrUnsupportedBackend is returned when Options.Backend names an
	// engine that has no implementation registered, e.g. BackendGPU, which
	// has no in-tree engine. Plan constructors also return it when
	// Options.UsePencils is false.
	ErrUnsupportedBackend = executor.ErrUnsupportedBackend

	// ErrExecutorFailure wraps an unexpected failure from the underlying
	// 1D transform engine.
	ErrExecutorFailure = executor.ErrExecutorFailure

	// ErrCommFailure wraps a failure from the transport.Group used to
	// exchange data between ranks.
	ErrCommFailure = transport.ErrCommFailure

	// ErrPrecisionMismatch reports a requested precision the caller cannot
	// be given. Plan and RealPlan never return it: their element types are
	// fixed by type parameters, so a mismatched buffer does not compile.
	// cmd/fft3dbench returns it for an unrecognized --precision value.
	ErrPrecisionMismatch = errors.New("fft3d: buffer precision does not match plan precision")

	// ErrSizeMismatch is returned when a caller-supplied buffer's length
	// does not match the size the Plan expects for that role (input,
	// output, or workspace).
	ErrSizeMismatch = errors.New("fft3d: buffer size does not match plan's expected size")
)
