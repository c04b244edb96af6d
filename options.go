package fft3d

import (
	"github.com/cwbudde/fft3d/internal/dplan"
	"github.com/cwbudde/fft3d/internal/executor"
	"github.com/cwbudde/fft3d/internal/pipeline"
	"github.com/cwbudde/fft3d/internal/reshape"
)

// Backend selects which 1D engine executes each axis's transforms.
type Backend int

const (
	BackendCPU Backend = iota
	BackendGPU
)

// Scaling selects how a transform's output is normalized. See the
// internal/pipeline package for the exact factors.
type Scaling = pipeline.Scaling

const (
	ScaleNone      = pipeline.ScaleNone
	ScaleFull      = pipeline.ScaleFull
	ScaleSymmetric = pipeline.ScaleSymmetric
)

// ReshapeStrategy selects how the redistribution operator schedules its
// peer-to-peer exchanges. It affects memory footprint and how many tiles
// are in flight at once, never the result.
type ReshapeStrategy = reshape.Strategy

const (
	ReshapeAllToAll      = reshape.AllToAll
	ReshapePairwise      = reshape.Pairwise
	ReshapeAxisPipelined = reshape.AxisPipelined
)

// Options configures a Plan's construction. The zero value is not a valid
// Options; use DefaultOptions and override individual fields.
type Options struct {
	// ReorderAxes has no effect. Every pencil layout is stamped with its
	// FFT axis fastest in memory whether it is set or not, and the query
	// methods (Inbox, Outbox) report the caller's own boxes unchanged.
	ReorderAxes bool

	// UsePencils, when false, is reserved for a future slab-only planner;
	// this implementation always uses pencil decompositions and rejects
	// UsePencils == false at construction.
	UsePencils bool

	// UseGPUAware indicates the transport may exchange data directly out
	// of GPU buffers without a host round-trip. It has no effect on the
	// in-process transport, which has no GPU-resident buffers to begin
	// with; it is honored by a Group implementation that backs onto
	// GPU-aware MPI.
	UseGPUAware bool

	// UseSubcomm, when true, restricts each reshape stage's Group to the
	// ranks that actually own data at that stage via Group.Sub, excluding
	// idle ranks from that stage's collective calls.
	UseSubcomm bool

	Backend  Backend
	Scaling  Scaling
	Strategy ReshapeStrategy

	// GPUDeviceIndex and GPUStreamCount are forwarded to the GPU executor
	// when Backend is BackendGPU.
	GPUDeviceIndex int
	GPUStreamCount int
}

// DefaultOptions returns the module's documented defaults: pencils,
// reordered output, GPU-aware transport when available, no subcommunicator
// restriction, CPU backend, no scaling, and all-to-all reshape scheduling.
func DefaultOptions() Options {
	return Options{
		ReorderAxes: true,
		UsePencils:  true,
		UseGPUAware: true,
		UseSubcomm:  false,
		Backend:     BackendCPU,
		Scaling:     ScaleNone,
		Strategy:    ReshapeAllToAll,
	}
}

func (o Options) dplanOptions() dplan.Options {
	return dplan.Options{
		ReorderAxes: o.ReorderAxes,
		UsePencils:  o.UsePencils,
		UseGPUAware: o.UseGPUAware,
		UseSubcomm:  o.UseSubcomm,
	}
}

func (o Options) executorBackend() executor.Backend {
	if o.Backend == BackendGPU {
		return executor.GPU
	}
	return executor.CPU
}

func (o Options) executorOptions() executor.Options {
	return executor.Options{GPUDeviceIndex: o.GPUDeviceIndex, GPUStreamCount: o.GPUStreamCount}
}
