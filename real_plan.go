package fft3d

import (
	"fmt"
	"sync"

	"github.com/cwbudde/fft3d/box"
	"github.com/cwbudde/fft3d/internal/dplan"
	"github.com/cwbudde/fft3d/internal/pipeline"
	"github.com/cwbudde/fft3d/oned"
	"github.com/cwbudde/fft3d/transport"
)

// RealPlan is a real-to-complex distributed 3D FFT plan for real element
// type F. The spectrum is always complex128, mirroring oned.PlanReal:
// only the real-domain side varies with F. Use NewRealPlan to construct
// one collectively across a transport.Group.
type RealPlan[F oned.Float] struct {
	mu    sync.Mutex
	state state

	group transport.Group
	logic *dplan.Plan
	pl    *pipeline.Pipeline
	opts  Options
}

// NewRealPlan constructs a real-to-complex distributed FFT plan.
//
// globalIn/localIn describe the real domain; globalOut/localOut describe
// the Hermitian-shortened complex spectrum, whose extent along r2cAxis
// must be globalIn.Extent(r2cAxis)/2+1. This call is collective in the
// same way NewPlan is.
func NewRealPlan[F oned.Float](g transport.Group, globalIn, globalOut, localIn, localOut box.Box, r2cAxis int, opts Options) (*RealPlan[F], error) {
	if !opts.UsePencils {
		return nil, fmt.Errorf("%w: slab-only planning is not implemented, Options.UsePencils must be true", ErrUnsupportedBackend)
	}
	if r2cAxis < 0 || r2cAxis > 2 {
		return nil, ErrInvalidR2CAxis
	}

	pIn, pOut, err := box.Gather(g, localIn, localOut)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCommFailure, err)
	}

	logic, err := dplan.Build(globalIn, globalOut, pIn, pOut, r2cAxis, opts.dplanOptions())
	if err != nil {
		return nil, err
	}

	pl, err := pipeline.New(g, logic, opts.executorBackend(), opts.executorOptions(), opts.Strategy, opts.UseSubcomm)
	if err != nil {
		return nil, err
	}

	return &RealPlan[F]{group: g, logic: logic, pl: pl, opts: opts}, nil
}

func (p *RealPlan[F]) checkAlive() error {
	if p.state == stateDestroyed {
		return fmt.Errorf("%w: plan has been destroyed", ErrExecutorFailure)
	}
	return nil
}

// Forward runs the real-to-complex forward transform. src must have
// SizeInbox() real elements, dst must have SizeOutbox() complex128
// elements; scaling is applied per Options.Scaling, except ScaleFull,
// which only Backward applies. Equivalent to
// ForwardWithWorkspace(dst, src, nil).
func (p *RealPlan[F]) Forward(dst []complex128, src []F) error {
	return p.ForwardWithWorkspace(dst, src, nil)
}

// ForwardWithWorkspace is Forward, but reuses workspace for the complex
// ping-pong buffers between the R2C stage and the two remaining C2C
// stages. workspace must have at least SizeWorkspace() complex128
// elements, or it is ignored and buffers are allocated as usual.
func (p *RealPlan[F]) ForwardWithWorkspace(dst []complex128, src []F, workspace []complex128) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.checkAlive(); err != nil {
		return err
	}
	if int64(len(src)) != p.SizeInbox() {
		return fmt.Errorf("%w: source buffer has %d elements, plan expects %d", ErrSizeMismatch, len(src), p.SizeInbox())
	}
	if int64(len(dst)) != p.SizeOutbox() {
		return fmt.Errorf("%w: destination buffer has %d elements, plan expects %d", ErrSizeMismatch, len(dst), p.SizeOutbox())
	}

	srcF := make([]float64, len(src))
	for i, v := range src {
		srcF[i] = float64(v)
	}
	if err := p.pl.ForwardR2C(srcF, dst, workspace); err != nil {
		return err
	}
	// ScaleFull divides by N once per round trip, on the backward leg.
	if p.opts.Scaling != ScaleFull {
		pipeline.ApplyScaleComplex(dst, pipeline.ScaleFactor(p.logic.FullLens, p.opts.Scaling))
	}
	return nil
}

// Backward runs the complex-to-real inverse transform. src must have
// SizeOutbox() complex128 elements, dst must have SizeInbox() real
// elements. Equivalent to BackwardWithWorkspace(dst, src, nil).
func (p *RealPlan[F]) Backward(dst []F, src []complex128) error {
	return p.BackwardWithWorkspace(dst, src, nil)
}

// BackwardWithWorkspace is Backward, but reuses workspace for the complex
// ping-pong buffers. workspace must have at least SizeWorkspace()
// complex128 elements, or it is ignored and buffers are allocated as
// usual.
func (p *RealPlan[F]) BackwardWithWorkspace(dst []F, src []complex128, workspace []complex128) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.checkAlive(); err != nil {
		return err
	}
	if int64(len(src)) != p.SizeOutbox() {
		return fmt.Errorf("%w: source buffer has %d elements, plan expects %d", ErrSizeMismatch, len(src), p.SizeOutbox())
	}
	if int64(len(dst)) != p.SizeInbox() {
		return fmt.Errorf("%w: destination buffer has %d elements, plan expects %d", ErrSizeMismatch, len(dst), p.SizeInbox())
	}

	dstF := make([]float64, len(dst))
	if err := p.pl.BackwardR2C(src, dstF, workspace); err != nil {
		return err
	}
	pipeline.ApplyScaleReal(dstF, pipeline.ScaleFactor(p.logic.FullLens, p.opts.Scaling))
	for i, v := range dstF {
		dst[i] = F(v)
	}
	return nil
}

// Destroy releases the RealPlan's resources. Idempotent.
func (p *RealPlan[F]) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = stateDestroyed
}

// Inbox returns this rank's local real input box.
func (p *RealPlan[F]) Inbox() box.Box { return p.logic.Layouts[0][p.group.Rank()] }

// Outbox returns this rank's local complex output box.
func (p *RealPlan[F]) Outbox() box.Box { return p.logic.Layouts[3][p.group.Rank()] }

// SizeInbox returns the number of real elements Forward's src (and
// Backward's dst) must have.
func (p *RealPlan[F]) SizeInbox() int64 { return p.Inbox().Count() }

// SizeOutbox returns the number of complex128 elements Forward's dst (and
// Backward's src) must have.
func (p *RealPlan[F]) SizeOutbox() int64 { return p.Outbox().Count() }

// SizeWorkspace returns the number of complex128 elements a workspace
// slice passed to ForwardWithWorkspace/BackwardWithWorkspace must have to
// avoid internal allocation. The real-domain scratch buffer is always
// allocated internally and is not part of this count.
func (p *RealPlan[F]) SizeWorkspace() int64 { return p.pl.SizeWorkspace() }

// ScaleFactor returns the multiplier for the Plan's configured
// Options.Scaling. Backward always applies it; Forward applies it too,
// except under ScaleFull.
func (p *RealPlan[F]) ScaleFactor() float64 {
	return pipeline.ScaleFactor(p.logic.FullLens, p.opts.Scaling)
}
