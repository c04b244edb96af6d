// Package pipeline drives one forward or backward 3D transform: it walks
// the logic plan's four layouts, alternating reshape and 1D transform
// stages, and applies scaling once at the end.
package pipeline

import (
	"fmt"

	"github.com/cwbudde/fft3d/box"
	"github.com/cwbudde/fft3d/internal/dplan"
	"github.com/cwbudde/fft3d/internal/executor"
	"github.com/cwbudde/fft3d/internal/reshape"
	"github.com/cwbudde/fft3d/transport"
)

// Pipeline holds everything one rank needs to execute a plan's transform:
// its communication group, the shared logic plan, one executor per FFT
// axis, and the reshape scheduling strategy.
type Pipeline struct {
	Group      transport.Group
	Logic      *dplan.Plan
	Exec       [3]executor.Executor // Exec[0] is Kind R2C iff Logic.R2CAxis != dplan.None
	Strategy   reshape.Strategy
	UseSubcomm bool
}

// New builds the three axis executors for a logic plan. When useSubcomm is
// set, each reshape stage restricts its communication to the ranks with a
// non-empty box on either side of that stage, via Group.Sub.
func New(g transport.Group, logic *dplan.Plan, backend executor.Backend, opts executor.Options, strategy reshape.Strategy, useSubcomm bool) (*Pipeline, error) {
	kind0 := executor.C2C
	if logic.R2CAxis != dplan.None {
		kind0 = executor.R2C
	}

	e0, err := executor.New(logic.FullLens[0], kind0, backend, opts)
	if err != nil {
		return nil, err
	}
	e1, err := executor.New(logic.FullLens[1], executor.C2C, backend, opts)
	if err != nil {
		return nil, err
	}
	e2, err := executor.New(logic.FullLens[2], executor.C2C, backend, opts)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		Group: g, Logic: logic, Exec: [3]executor.Executor{e0, e1, e2},
		Strategy: strategy, UseSubcomm: useSubcomm,
	}, nil
}

func (p *Pipeline) rank() int { return p.Group.Rank() }

// stageParticipants returns the ranks with a non-empty box in src or dst,
// the set that must join a reshape stage's sub-communicator.
func stageParticipants(src, dst box.Partition) []int {
	ranks := make([]int, 0, len(src))
	for r := range src {
		if !src[r].Empty() || !dst[r].Empty() {
			ranks = append(ranks, r)
		}
	}
	return ranks
}

func subPartition(p box.Partition, ranks []int) box.Partition {
	out := make(box.Partition, len(ranks))
	for i, r := range ranks {
		out[i] = p[r]
	}
	return out
}

// redistributeStage runs one reshape stage, honoring p.UseSubcomm: a rank
// with an empty box on both sides of this stage does not call the
// transport at all, and the remaining ranks exchange over a Group.Sub
// restricted to themselves rather than the full group.
func redistributeStage[T reshape.Elem](p *Pipeline, src, dst box.Partition, srcData, dstData []T) error {
	if !p.UseSubcomm {
		return reshape.Redistribute[T](p.Group, src, dst, srcData, dstData, p.Strategy)
	}

	r := p.rank()
	if src[r].Empty() && dst[r].Empty() {
		return nil
	}

	ranks := stageParticipants(src, dst)
	if len(ranks) == len(src) {
		return reshape.Redistribute[T](p.Group, src, dst, srcData, dstData, p.Strategy)
	}

	sub, err := p.Group.Sub(ranks)
	if err != nil {
		return err
	}
	return reshape.Redistribute[T](sub, subPartition(src, ranks), subPartition(dst, ranks), srcData, dstData, p.Strategy)
}

// SizeWorkspace returns the number of complex128 elements a caller-supplied
// workspace slice must have to avoid internal allocation in Forward*/Backward*.
func (p *Pipeline) SizeWorkspace() int64 {
	capA, capB := p.workspaceCaps()
	return capA + capB
}

// workspaceCaps returns the capacity the two ping-pong buffers need for
// this rank: bufA must hold whichever of Layouts[1]/Pencil is larger
// (it carries the axis-0 result first, then the axis-2 result), bufB
// only ever holds the axis-1 result.
func (p *Pipeline) workspaceCaps() (capA, capB int64) {
	r := p.rank()
	capA = p.Logic.Layouts[1][r].Count()
	if n := p.Logic.Pencil[r].Count(); n > capA {
		capA = n
	}
	capB = p.Logic.Layouts[2][r].Count()
	return capA, capB
}

// splitWorkspace carves the two ping-pong buffers out of an optional
// caller-supplied workspace slice, falling back to fresh allocations
// when none is given or it is too small. ws mimics an optional
// parameter: callers pass zero or one slice.
func (p *Pipeline) splitWorkspace(ws [][]complex128) (bufA, bufB []complex128) {
	capA, capB := p.workspaceCaps()
	if len(ws) > 0 && int64(len(ws[0])) >= capA+capB {
		full := ws[0]
		return full[:capA], full[capA : capA+capB]
	}
	return make([]complex128, capA), make([]complex128, capB)
}

// ForwardC2C runs a complex-to-complex forward transform. src must hold
// this rank's Logic.Layouts[0] data; dst is overwritten with this rank's
// Logic.Layouts[3] data, unscaled. workspace, if given, is reused for the
// intermediate pencil buffers instead of allocating them internally; it
// must have at least SizeWorkspace elements.
func (p *Pipeline) ForwardC2C(src, dst []complex128, workspace ...[]complex128) error {
	if p.Logic.R2CAxis != dplan.None {
		return fmt.Errorf("%w: this plan is a real-to-complex transform, call ForwardR2C", executor.ErrExecutorFailure)
	}
	r := p.rank()
	bufAFull, bufBFull := p.splitWorkspace(workspace)

	bufA := bufAFull[:p.Logic.Layouts[1][r].Count()]
	if err := redistributeStage[complex128](p, p.Logic.Layouts[0], p.Logic.Layouts[1], src, bufA); err != nil {
		return err
	}
	if err := runC2CInPlace(p.Exec[0], bufA, p.Logic.FullLens[0], true); err != nil {
		return err
	}

	bufA2, err := p.middleForward(bufA, bufAFull, bufBFull)
	if err != nil {
		return err
	}

	return redistributeStage[complex128](p, p.Logic.Pencil, p.Logic.Layouts[3], bufA2, dst)
}

// ForwardR2C runs a real-to-complex forward transform. src must hold this
// rank's real Logic.Layouts[0] data; dst is overwritten with this rank's
// complex Logic.Layouts[3] spectrum, unscaled. The real-domain scratch
// buffer is always allocated internally; workspace, if given, only backs
// the complex ping-pong stages.
func (p *Pipeline) ForwardR2C(src []float64, dst []complex128, workspace ...[]complex128) error {
	if p.Logic.R2CAxis == dplan.None {
		return fmt.Errorf("%w: this plan is a complex-to-complex transform, call ForwardC2C", executor.ErrExecutorFailure)
	}
	r := p.rank()
	bufAFull, bufBFull := p.splitWorkspace(workspace)

	real1 := make([]float64, p.Logic.PreFFT0[r].Count())
	if err := redistributeStage[float64](p, p.Logic.Layouts[0], p.Logic.PreFFT0, src, real1); err != nil {
		return err
	}

	bufA := bufAFull[:p.Logic.Layouts[1][r].Count()]
	n0 := p.Logic.FullLens[0]
	spectrumLen0 := p.Exec[0].SpectrumLen()
	batch0 := 0
	if n0 > 0 {
		batch0 = len(real1) / n0
	}
	if err := p.Exec[0].ForwardR2C(bufA, real1, 1, n0, 1, spectrumLen0, batch0); err != nil {
		return err
	}

	bufA2, err := p.middleForward(bufA, bufAFull, bufBFull)
	if err != nil {
		return err
	}

	return redistributeStage[complex128](p, p.Logic.Pencil, p.Logic.Layouts[3], bufA2, dst)
}

// middleForward runs FFT axis1 (reshape R1 then transform) and FFT axis2
// (reshape R2 then transform), returning the a2-pencil buffer ready for
// reshape R3. afterAxis0 is bufAFull's live prefix; bufAFull is reused
// for the axis-2 result once afterAxis0 has been fully consumed.
func (p *Pipeline) middleForward(afterAxis0, bufAFull, bufBFull []complex128) ([]complex128, error) {
	r := p.rank()

	bufB := bufBFull[:p.Logic.Layouts[2][r].Count()]
	if err := redistributeStage[complex128](p, p.Logic.Layouts[1], p.Logic.Layouts[2], afterAxis0, bufB); err != nil {
		return nil, err
	}
	if err := runC2CInPlace(p.Exec[1], bufB, p.Logic.FullLens[1], true); err != nil {
		return nil, err
	}

	bufA2 := bufAFull[:p.Logic.Pencil[r].Count()]
	if err := redistributeStage[complex128](p, p.Logic.Layouts[2], p.Logic.Pencil, bufB, bufA2); err != nil {
		return nil, err
	}
	if err := runC2CInPlace(p.Exec[2], bufA2, p.Logic.FullLens[2], true); err != nil {
		return nil, err
	}

	return bufA2, nil
}

// BackwardC2C runs the inverse complex-to-complex transform: src holds
// this rank's Logic.Layouts[3] data, dst is overwritten with Layouts[0]
// data, unscaled.
func (p *Pipeline) BackwardC2C(src, dst []complex128, workspace ...[]complex128) error {
	if p.Logic.R2CAxis != dplan.None {
		return fmt.Errorf("%w: this plan is a real-to-complex transform, call BackwardR2C", executor.ErrExecutorFailure)
	}
	r := p.rank()
	bufAFull, bufBFull := p.splitWorkspace(workspace)

	bufA2 := bufAFull[:p.Logic.Pencil[r].Count()]
	if err := redistributeStage[complex128](p, p.Logic.Layouts[3], p.Logic.Pencil, src, bufA2); err != nil {
		return err
	}

	bufA, err := p.middleBackward(bufA2, bufAFull, bufBFull)
	if err != nil {
		return err
	}

	if err := runC2CInPlace(p.Exec[0], bufA, p.Logic.FullLens[0], false); err != nil {
		return err
	}
	return redistributeStage[complex128](p, p.Logic.Layouts[1], p.Logic.Layouts[0], bufA, dst)
}

// BackwardR2C runs the inverse real-to-complex transform: src holds this
// rank's complex Logic.Layouts[3] spectrum, dst is overwritten with real
// Logic.Layouts[0] data, unscaled.
func (p *Pipeline) BackwardR2C(src []complex128, dst []float64, workspace ...[]complex128) error {
	if p.Logic.R2CAxis == dplan.None {
		return fmt.Errorf("%w: this plan is a complex-to-complex transform, call BackwardC2C", executor.ErrExecutorFailure)
	}
	r := p.rank()
	bufAFull, bufBFull := p.splitWorkspace(workspace)

	bufA2 := bufAFull[:p.Logic.Pencil[r].Count()]
	if err := redistributeStage[complex128](p, p.Logic.Layouts[3], p.Logic.Pencil, src, bufA2); err != nil {
		return err
	}

	spec1, err := p.middleBackward(bufA2, bufAFull, bufBFull)
	if err != nil {
		return err
	}

	real1 := make([]float64, p.Logic.PreFFT0[r].Count())
	n0 := p.Logic.FullLens[0]
	spectrumLen0 := p.Exec[0].SpectrumLen()
	batch0 := 0
	if n0 > 0 {
		batch0 = len(real1) / n0
	}
	if err := p.Exec[0].InverseR2C(real1, spec1, 1, spectrumLen0, 1, n0, batch0); err != nil {
		return err
	}

	return redistributeStage[float64](p, p.Logic.PreFFT0, p.Logic.Layouts[0], real1, dst)
}

// middleBackward runs the inverse axis2 and axis1 transforms in the
// reverse order Forward applied them, returning the a0-pencil (still
// shrunk, for R2C) buffer ready for the final stage. atPencil is
// bufAFull's live prefix; bufAFull is reused for the axis-0 result once
// atPencil has been fully consumed.
func (p *Pipeline) middleBackward(atPencil, bufAFull, bufBFull []complex128) ([]complex128, error) {
	r := p.rank()

	if err := runC2CInPlace(p.Exec[2], atPencil, p.Logic.FullLens[2], false); err != nil {
		return nil, err
	}
	bufB := bufBFull[:p.Logic.Layouts[2][r].Count()]
	if err := redistributeStage[complex128](p, p.Logic.Pencil, p.Logic.Layouts[2], atPencil, bufB); err != nil {
		return nil, err
	}

	if err := runC2CInPlace(p.Exec[1], bufB, p.Logic.FullLens[1], false); err != nil {
		return nil, err
	}
	bufA := bufAFull[:p.Logic.Layouts[1][r].Count()]
	if err := redistributeStage[complex128](p, p.Logic.Layouts[2], p.Logic.Layouts[1], bufB, bufA); err != nil {
		return nil, err
	}

	return bufA, nil
}

func runC2CInPlace(e executor.Executor, data []complex128, n int, forward bool) error {
	if n <= 0 || len(data) == 0 {
		return nil
	}
	batch := len(data) / n
	if forward {
		return e.ForwardC2C(data, data, 1, n, batch)
	}
	return e.InverseC2C(data, data, 1, n, batch)
}

// ApplyScaleComplex multiplies every element of buf by factor in place.
func ApplyScaleComplex(buf []complex128, factor float64) {
	if factor == 1 {
		return
	}
	f := complex(factor, 0)
	for i := range buf {
		buf[i] *= f
	}
}

// ApplyScaleReal multiplies every element of buf by factor in place.
func ApplyScaleReal(buf []float64, factor float64) {
	if factor == 1 {
		return
	}
	for i := range buf {
		buf[i] *= factor
	}
}
