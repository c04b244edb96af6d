// Package executor adapts the module's 1D FFT engines behind one interface
// the pipeline driver can call without caring which concrete engine,
// precision or transform kind is behind it.
package executor

import (
	"errors"
	"fmt"

	"github.com/cwbudde/fft3d/oned"
)

// Kind selects the transform family an Executor performs.
type Kind int

const (
	C2C Kind = iota
	R2C
)

// Backend selects which concrete 1D engine an Executor is built from. GPU
// vendor libraries are an opaque collaborator this module does not
// implement; New always reports GPU as unsupported.
type Backend int

const (
	CPU Backend = iota
	GPU
)

// ErrUnsupportedBackend is returned when the requested backend has no
// engine registered, e.g. GPU, which this module treats as an opaque
// collaborator with no in-tree implementation.
var ErrUnsupportedBackend = errors.New("executor: unsupported backend")

// ErrExecutorFailure wraps an unexpected failure from the underlying 1D
// engine: anything that indicates a planner bug rather than bad caller
// input, since callers only ever pass buffers the planner itself sized.
var ErrExecutorFailure = errors.New("executor: underlying transform failed")

// Options configures executor construction.
type Options struct {
	GPUDeviceIndex int
	GPUStreamCount int
}

// Executor performs one axis's worth of 1D transforms against pencils of
// data: batch lines, stride apart within a line, dist apart between lines.
//
// Only the methods matching the Executor's Kind are meaningful; calling a
// C2C method on an R2C executor (or vice versa) returns ErrExecutorFailure.
type Executor interface {
	// Len returns the untransformed line length.
	Len() int
	// SpectrumLen returns the transformed line length: Len() for C2C,
	// Len()/2+1 for R2C.
	SpectrumLen() int
	// ScratchSize returns how many elements of scratch space Forward/Inverse
	// need beyond the caller's source and destination buffers.
	ScratchSize() int

	ForwardC2C(dst, src []complex128, stride, dist, batch int) error
	InverseC2C(dst, src []complex128, stride, dist, batch int) error

	ForwardR2C(dst []complex128, src []float64, srcStride, srcDist, dstStride, dstDist, batch int) error
	InverseR2C(dst []float64, src []complex128, srcStride, srcDist, dstStride, dstDist, batch int) error
}

// New builds an Executor for a line of length n, of the given Kind, on the
// given Backend.
func New(n int, kind Kind, backend Backend, opts Options) (Executor, error) {
	switch backend {
	case CPU:
		return newCPU(n, kind)
	case GPU:
		return newGPU(n, kind, opts)
	default:
		return nil, fmt.Errorf("%w: backend %d is not recognized", ErrUnsupportedBackend, backend)
	}
}

func newCPU(n int, kind Kind) (Executor, error) {
	switch kind {
	case C2C:
		p, err := oned.NewPlanT[complex128](n)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExecutorFailure, err)
		}
		return &cpuC2C{plan: p}, nil
	case R2C:
		p, err := oned.NewPlanRealT[float64](n)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExecutorFailure, err)
		}
		return &cpuR2C{plan: p}, nil
	default:
		return nil, fmt.Errorf("%w: unknown transform kind %d", ErrExecutorFailure, kind)
	}
}

// newGPU has no vendor GPU library to build against; a real deployment
// registers one here the same way it would register a vendor CPU FFT
// library in place of oned. Device index/stream count stay on Options as
// the seam such a backend would consume.
func newGPU(n int, kind Kind, opts Options) (Executor, error) {
	return nil, fmt.Errorf("%w: no GPU backend is registered (device %d)", ErrUnsupportedBackend, opts.GPUDeviceIndex)
}
