// Package transport defines the group-communication capability the
// distributed FFT planner treats as an opaque collaborator, in the manner
// of a minimal MPI binding: a fixed-size group of ranks that can gather
// small descriptors and exchange bulk payloads with each other.
//
// The real transport (an MPI communicator, a UCX endpoint set, ...) lives
// outside this module; Group is the seam a concrete binding implements.
// InProcess, in local.go, is the only binding shipped here: an in-memory
// simulation of a rank group used for single-process testing.
package transport

import "errors"

// ErrCommFailure is returned when a Group operation cannot complete,
// wrapping the taxonomy's CommFailure category.
var ErrCommFailure = errors.New("transport: communication failure")

// Group is a fixed-size, ordered set of communicating peers. Every method is
// collective: all ranks that share a Group must call the same sequence of
// methods with compatible arguments, or the call may deadlock or return
// ErrCommFailure. This mirrors the ordering contract of a real MPI
// communicator.
type Group interface {
	// Rank returns this process's rank, 0 <= Rank() < Size().
	Rank() int

	// Size returns the number of ranks in the group.
	Size() int

	// Barrier blocks until every rank in the group has called Barrier.
	Barrier() error

	// AllGather returns every rank's contribution, indexed by rank.
	AllGather(data []byte) ([][]byte, error)

	// Exchange performs a sparse all-to-all: outgoing[dst] is the payload
	// this rank sends to dst (absent or nil means nothing is sent to dst).
	// The returned map is keyed by source rank.
	Exchange(outgoing map[int][]byte) (map[int][]byte, error)

	// Sub returns a new Group restricted to the given ranks (which must
	// include this rank's Rank(), and must be given in the same order and
	// with the same content on every member across the parent group). Ranks
	// excluded from ranks must not call Sub for this subgroup.
	Sub(ranks []int) (Group, error)
}
