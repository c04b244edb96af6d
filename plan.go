// Package fft3d implements a distributed 3D FFT: a box-algebra description
// of who owns what, a logic planner that turns two arbitrary partitions
// into a sequence of pencil layouts, a redistribution operator that moves
// data between them, and a pipeline driver that interleaves redistribution
// with 1D transforms contributed by a pluggable 1D executor (the CPU engine
// in package oned; the GPU backend reports ErrUnsupportedBackend).
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

// state tracks a Plan's lifecycle: a destroyed Plan refuses further
// transforms, matching the construct/use/destroy lifecycle of a real
// distributed FFT engine holding communicator and device resources.
type state int32

const (
	stateConstructed state = iota
	stateDestroyed
)

// Plan is a complex-to-complex distributed 3D FFT plan for element type T.
// Use NewPlan to construct one collectively across a transport.Group.
type Plan[T oned.Complex] struct {
	mu    sync.Mutex
	state state

	group transport.Group
	logic *dplan.Plan
	pl    *pipeline.Pipeline
	opts  Options
}

// NewPlan constructs a complex-to-complex distributed FFT plan.
//
// This call is collective: every rank in g must call NewPlan with its own
// localIn/localOut boxes for the same globalIn/globalOut boxes and the
// same Options, or the call may deadlock or return ErrCommFailure.
func NewPlan[T oned.Complex](g transport.Group, globalIn, globalOut, localIn, localOut box.Box, opts Options) (*Plan[T], error) {
	if !opts.UsePencils {
		return nil, fmt.Errorf("%w: slab-only planning is not implemented, Options.UsePencils must be true", ErrUnsupportedBackend)
	}

	pIn, pOut, err := box.Gather(g, localIn, localOut)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCommFailure, err)
	}

	logic, err := dplan.Build(globalIn, globalOut, pIn, pOut, dplan.None, opts.dplanOptions())
	if err != nil {
		return nil, err
	}

	pl, err := pipeline.New(g, logic, opts.executorBackend(), opts.executorOptions(), opts.Strategy, opts.UseSubcomm)
	if err != nil {
		return nil, err
	}

	return &Plan[T]{group: g, logic: logic, pl: pl, opts: opts}, nil
}

func (p *Plan[T]) checkAlive() error {
	if p.state == stateDestroyed {
		return fmt.Errorf("%w: plan has been destroyed", ErrExecutorFailure)
	}
	return nil
}

// Forward runs the forward transform. src must have SizeInbox() elements,
// dst must have SizeOutbox() elements; scaling is applied per
// Options.Scaling, except ScaleFull, which only Backward applies.
// Equivalent to ForwardWithWorkspace(dst, src, nil).
func (p *Plan[T]) Forward(dst, src []T) error {
	return p.ForwardWithWorkspace(dst, src, nil)
}

// ForwardWithWorkspace is Forward, but reuses workspace for the pipeline's
// intermediate pencil buffers instead of allocating them internally.
// workspace must have at least SizeWorkspace() complex128 elements, or it
// is ignored and buffers are allocated as usual.
func (p *Plan[T]) ForwardWithWorkspace(dst, src []T, workspace []complex128) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.checkAlive(); err != nil {
		return err
	}
	if err := p.checkSize(src, p.SizeInbox()); err != nil {
		return err
	}
	if err := p.checkSize(dst, p.SizeOutbox()); err != nil {
		return err
	}

	srcC, dstC := widenSlice[T](src), make([]complex128, len(dst))
	if err := p.pl.ForwardC2C(srcC, dstC, workspace); err != nil {
		return err
	}
	// ScaleFull divides by N once per round trip, on the backward leg.
	if p.opts.Scaling != ScaleFull {
		pipeline.ApplyScaleComplex(dstC, pipeline.ScaleFactor(p.logic.FullLens, p.opts.Scaling))
	}
	narrowSliceInto[T](dst, dstC)
	return nil
}

// Backward runs the inverse transform. src must have SizeOutbox()
// elements, dst must have SizeInbox() elements; scaling is applied per
// Options.Scaling. Equivalent to BackwardWithWorkspace(dst, src, nil).
func (p *Plan[T]) Backward(dst, src []T) error {
	return p.BackwardWithWorkspace(dst, src, nil)
}

// BackwardWithWorkspace is Backward, but reuses workspace for the
// pipeline's intermediate pencil buffers instead of allocating them
// internally. workspace must have at least SizeWorkspace() complex128
// elements, or it is ignored and buffers are allocated as usual.
func (p *Plan[T]) BackwardWithWorkspace(dst, src []T, workspace []complex128) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.checkAlive(); err != nil {
		return err
	}
	if err := p.checkSize(src, p.SizeOutbox()); err != nil {
		return err
	}
	if err := p.checkSize(dst, p.SizeInbox()); err != nil {
		return err
	}

	srcC, dstC := widenSlice[T](src), make([]complex128, len(dst))
	if err := p.pl.BackwardC2C(srcC, dstC, workspace); err != nil {
		return err
	}
	pipeline.ApplyScaleComplex(dstC, pipeline.ScaleFactor(p.logic.FullLens, p.opts.Scaling))
	narrowSliceInto[T](dst, dstC)
	return nil
}

func (p *Plan[T]) checkSize(buf []T, want int64) error {
	if int64(len(buf)) != want {
		return fmt.Errorf("%w: buffer has %d elements, plan expects %d", ErrSizeMismatch, len(buf), want)
	}
	return nil
}

// Destroy releases the Plan's resources. Further Forward/Backward calls
// return an error. Destroy is idempotent.
func (p *Plan[T]) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = stateDestroyed
}

// Inbox returns this rank's local input box.
func (p *Plan[T]) Inbox() box.Box { return p.logic.Layouts[0][p.group.Rank()] }

// Outbox returns this rank's local output box.
func (p *Plan[T]) Outbox() box.Box { return p.logic.Layouts[3][p.group.Rank()] }

// SizeInbox returns the number of elements Forward's src (and Backward's
// dst) must have.
func (p *Plan[T]) SizeInbox() int64 { return p.Inbox().Count() }

// SizeOutbox returns the number of elements Forward's dst (and Backward's
// src) must have.
func (p *Plan[T]) SizeOutbox() int64 { return p.Outbox().Count() }

// SizeWorkspace returns the number of complex128 elements a workspace
// slice passed to ForwardWithWorkspace/BackwardWithWorkspace must have to
// avoid internal allocation.
func (p *Plan[T]) SizeWorkspace() int64 { return p.pl.SizeWorkspace() }

// ScaleFactor returns the multiplier for the Plan's configured
// Options.Scaling. Backward always applies it; Forward applies it too,
// except under ScaleFull.
func (p *Plan[T]) ScaleFactor() float64 {
	return pipeline.ScaleFactor(p.logic.FullLens, p.opts.Scaling)
}

func widenSlice[T oned.Complex](src []T) []complex128 {
	out := make([]complex128, len(src))
	for i, v := range src {
		out[i] = complex128(anyComplex(v))
	}
	return out
}

func narrowSliceInto[T oned.Complex](dst []T, src []complex128) {
	for i, v := range src {
		dst[i] = fromComplex128Elem[T](v)
	}
}

func anyComplex[T oned.Complex](v T) complex128 {
	switch x := any(v).(type) {
	case complex64:
		return complex128(x)
	case complex128:
		return x
	default:
		return 0
	}
}

func fromComplex128Elem[T oned.Complex](v complex128) T {
	var zero T
	switch any(zero).(type) {
	case complex64:
		return any(complex64(v)).(T)
	case complex128:
		return any(v).(T)
	default:
		return zero
	}
}
