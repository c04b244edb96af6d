package executor

import (
	"fmt"

	"github.com/cwbudde/fft3d/oned"
)

// cpuC2C wraps a CPU complex-to-complex plan. It already supports strided,
// batched transforms directly, so it just forwards.
type cpuC2C struct {
	plan *oned.Plan[complex128]
}

func (e *cpuC2C) Len() int         { return e.plan.Len() }
func (e *cpuC2C) SpectrumLen() int { return e.plan.Len() }
func (e *cpuC2C) ScratchSize() int { return e.plan.ScratchSize() }

func (e *cpuC2C) ForwardC2C(dst, src []complex128, stride, dist, batch int) error {
	if err := e.plan.ForwardStrided(dst, src, stride, dist, batch); err != nil {
		return fmt.Errorf("%w: %v", ErrExecutorFailure, err)
	}
	return nil
}

func (e *cpuC2C) InverseC2C(dst, src []complex128, stride, dist, batch int) error {
	if err := e.plan.InverseStrided(dst, src, stride, dist, batch); err != nil {
		return fmt.Errorf("%w: %v", ErrExecutorFailure, err)
	}
	return nil
}

func (e *cpuC2C) ForwardR2C(dst []complex128, src []float64, srcStride, srcDist, dstStride, dstDist, batch int) error {
	return fmt.Errorf("%w: this executor performs C2C transforms", ErrExecutorFailure)
}

func (e *cpuC2C) InverseR2C(dst []float64, src []complex128, srcStride, srcDist, dstStride, dstDist, batch int) error {
	return fmt.Errorf("%w: this executor performs C2C transforms", ErrExecutorFailure)
}

// cpuR2C wraps a CPU real-to-complex plan. oned.PlanReal has no notion of
// stride or batch, so this adapter extracts one line at a time into a
// contiguous scratch buffer, transforms it, and scatters the result back.
type cpuR2C struct {
	plan *oned.PlanReal[float64]
}

func (e *cpuR2C) Len() int         { return e.plan.Len() }
func (e *cpuR2C) SpectrumLen() int { return e.plan.SpectrumLen() }
func (e *cpuR2C) ScratchSize() int { return e.plan.Len() + e.plan.SpectrumLen() }

func (e *cpuR2C) ForwardC2C(dst, src []complex128, stride, dist, batch int) error {
	return fmt.Errorf("%w: this executor performs R2C transforms", ErrExecutorFailure)
}

func (e *cpuR2C) InverseC2C(dst, src []complex128, stride, dist, batch int) error {
	return fmt.Errorf("%w: this executor performs R2C transforms", ErrExecutorFailure)
}

func (e *cpuR2C) ForwardR2C(dst []complex128, src []float64, srcStride, srcDist, dstStride, dstDist, batch int) error {
	line := make([]float64, e.plan.Len())
	spec := make([]complex128, e.plan.SpectrumLen())
	for b := 0; b < batch; b++ {
		sbase := b * srcDist
		for i := 0; i < e.plan.Len(); i++ {
			line[i] = src[sbase+i*srcStride]
		}
		if err := e.plan.Forward(spec, line); err != nil {
			return fmt.Errorf("%w: %v", ErrExecutorFailure, err)
		}
		dbase := b * dstDist
		for i := 0; i < e.plan.SpectrumLen(); i++ {
			dst[dbase+i*dstStride] = spec[i]
		}
	}
	return nil
}

func (e *cpuR2C) InverseR2C(dst []float64, src []complex128, srcStride, srcDist, dstStride, dstDist, batch int) error {
	spec := make([]complex128, e.plan.SpectrumLen())
	line := make([]float64, e.plan.Len())
	for b := 0; b < batch; b++ {
		sbase := b * srcDist
		for i := 0; i < e.plan.SpectrumLen(); i++ {
			spec[i] = src[sbase+i*srcStride]
		}
		if err := e.plan.Inverse(line, spec); err != nil {
			return fmt.Errorf("%w: %v", ErrExecutorFailure, err)
		}
		dbase := b * dstDist
		for i := 0; i < e.plan.Len(); i++ {
			dst[dbase+i*dstStride] = line[i]
		}
	}
	return nil
}
