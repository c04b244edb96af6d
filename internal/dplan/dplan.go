// Package dplan implements the logic planner: a pure function from a
// global domain, per-rank input/output partitions, and an optional R2C
// axis to the ordered sequence of pencil layouts and FFT axes the pipeline
// driver executes against.
package dplan

import (
	"errors"
	"fmt"

	"github.com/cwbudde/fft3d/box"
)

// ErrInvalidR2CAxis is returned when the R2C axis is not one of 0, 1, 2 (or
// None).
var ErrInvalidR2CAxis = errors.New("dplan: r2c axis must be 0, 1, 2 or none")

// None indicates no real-to-complex axis is selected.
const None = -1

// Options controls planner behavior. Zero value is the documented default
// for every field except that Go zero-values booleans to false; callers
// normally start from DefaultOptions.
type Options struct {
	ReorderAxes bool
	UsePencils  bool
	UseGPUAware bool
	UseSubcomm  bool
}

// DefaultOptions matches the module's documented defaults: reorder,
// use_pencils and use_gpu_aware on; use_subcomm off.
func DefaultOptions() Options {
	return Options{ReorderAxes: true, UsePencils: true, UseGPUAware: true, UseSubcomm: false}
}

// Plan is the logic plan: the four layouts plus the three FFT axes.
//
// Layouts[0] is the input partition, Layouts[3] the caller's output
// partition. Pencil is the pencil-along-Axes[2] partition the third 1D FFT
// actually runs against; reshape R2 targets it and reshape R3 moves its
// data into Layouts[3], since the caller's output partition is not
// guaranteed to be pencil-shaped.
type Plan struct {
	Global   [4]box.Box // global box for L0..L3 (L1..L3 shrink on R2C)
	Layouts  [4]box.Partition
	PreFFT0  box.Partition // a0-pencil at full (pre-shrink) extent; reshape R0's real-domain target for R2C
	Pencil   box.Partition // a2-pencil partition feeding reshape R3
	Axes     [3]int        // FFT axis performed at each of the three stages
	R2CAxis  int           // None if not an R2C transform
	FullLens [3]int        // full (unshortened) lengths of Axes[0..2], for scale_factor
}

// Build constructs a logic plan from the global input/output boxes and the
// per-rank partitions gathered from every rank.
func Build(globalIn, globalOut box.Box, pIn, pOut box.Partition, r2cAxis int, opts Options) (*Plan, error) {
	if r2cAxis != None && (r2cAxis < 0 || r2cAxis > 2) {
		return nil, ErrInvalidR2CAxis
	}
	if err := box.Validate(pIn, globalIn); err != nil {
		return nil, err
	}

	size := len(pIn)
	if len(pOut) != size {
		return nil, fmt.Errorf("%w: input partition has %d ranks, output has %d", box.ErrInvalidPartition, size, len(pOut))
	}

	axes := chooseAxisOrder(globalIn, pIn, r2cAxis)

	fullLens := [3]int{globalIn.Extent(axes[0]), globalIn.Extent(axes[1]), globalIn.Extent(axes[2])}

	l1 := buildPencilPartition(globalIn, axes[0], size)
	l2 := buildPencilPartition(globalIn, axes[1], size)
	pencil3 := buildPencilPartition(globalIn, axes[2], size)

	preFFT0 := l1

	globals := [4]box.Box{globalIn, globalIn, globalIn, globalOut}

	if r2cAxis != None {
		shrunk := shrinkGlobal(globalIn, r2cAxis)
		globals[1] = shrunk
		globals[2] = shrunk
		l1 = shrinkPartition(l1, r2cAxis, shrunk)
		l2 = shrinkPartition(l2, r2cAxis, shrunk)
		pencil3 = shrinkPartition(pencil3, r2cAxis, shrunk)

		if !box.Equal(unionBox(pOut), shrunk) {
			return nil, fmt.Errorf("%w: output partition must tile the shortened R2C box %v", box.ErrInvalidPartition, shrunk)
		}
	}

	// Every pencil layout is stamped with its own FFT axis fastest,
	// regardless of opts.ReorderAxes: the pipeline always runs each 1D
	// transform against contiguous lines. The planner does not read
	// opts.ReorderAxes at all.
	l1 = stampOrder(l1, axes[0])
	l2 = stampOrder(l2, axes[1])
	pencil3 = stampOrder(pencil3, axes[2])
	preFFT0 = stampOrder(preFFT0, axes[0])

	if err := box.Validate(pOut, globals[3]); err != nil {
		return nil, err
	}

	return &Plan{
		Global:   globals,
		Layouts:  [4]box.Partition{pIn, l1, l2, pOut},
		PreFFT0:  preFFT0,
		Pencil:   pencil3,
		Axes:     axes,
		R2CAxis:  r2cAxis,
		FullLens: fullLens,
	}, nil
}

// chooseAxisOrder picks (a0,a1,a2). When an R2C axis is set it is always
// a0. Otherwise axes are ranked by how pencil-like the input partition
// already is along them (fewer ranks would need data along that axis
// moved), ties broken by ascending axis index.
func chooseAxisOrder(global box.Box, pIn box.Partition, r2cAxis int) [3]int {
	if r2cAxis != None {
		rest := otherAxesSorted(r2cAxis)
		return [3]int{r2cAxis, rest[0], rest[1]}
	}

	score := func(axis int) int {
		n := 0
		for _, b := range pIn {
			if box.IsPencil(b, axis, global) {
				n++
			}
		}
		return n
	}

	remaining := []int{0, 1, 2}
	var order [3]int
	for i := 0; i < 3; i++ {
		best := 0
		for j := 1; j < len(remaining); j++ {
			if score(remaining[j]) > score(remaining[best]) {
				best = j
			}
		}
		order[i] = remaining[best]
		remaining = append(remaining[:best], remaining[best+1:]...)
	}
	return order
}

func otherAxesSorted(axis int) [2]int {
	var out [2]int
	i := 0
	for a := 0; a < 3; a++ {
		if a != axis {
			out[i] = a
			i++
		}
	}
	return out
}

func stampOrder(p box.Partition, fastAxis int) box.Partition {
	rest := otherAxesSorted(fastAxis)
	order := box.Perm{fastAxis, rest[0], rest[1]}
	out := make(box.Partition, len(p))
	for i, b := range p {
		out[i] = b.Reorder(order)
	}
	return out
}

func shrinkGlobal(global box.Box, axis int) box.Box {
	n := global.Extent(axis)
	shortened := n/2 + 1
	out := global
	out.Lo[axis] = global.Lo[axis]
	out.Hi[axis] = global.Lo[axis] + shortened - 1
	return out
}

// shrinkPartition clips each rank's box to the shrunk global extent along
// axis. Ranks entirely beyond the shortened range end up empty, which is
// valid.
func shrinkPartition(p box.Partition, axis int, shrunk box.Box) box.Partition {
	out := make(box.Partition, len(p))
	for i, b := range p {
		nb := b
		if nb.Lo[axis] < shrunk.Lo[axis] {
			nb.Lo[axis] = shrunk.Lo[axis]
		}
		if nb.Hi[axis] > shrunk.Hi[axis] {
			nb.Hi[axis] = shrunk.Hi[axis]
		}
		out[i] = nb
	}
	return out
}

func unionBox(p box.Partition) box.Box {
	var out box.Box
	first := true
	for _, b := range p {
		if b.Empty() {
			continue
		}
		if first {
			out = b
			first = false
			continue
		}
		for i := 0; i < 3; i++ {
			if b.Lo[i] < out.Lo[i] {
				out.Lo[i] = b.Lo[i]
			}
			if b.Hi[i] > out.Hi[i] {
				out.Hi[i] = b.Hi[i]
			}
		}
	}
	out.Order = box.IdentityOrder
	return out
}
