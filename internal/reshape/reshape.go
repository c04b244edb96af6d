// Package reshape implements the redistribution operator: moving each
// rank's slab of a box from one partition to another by computing, for
// every pair of ranks, the overlap between "what I own under the source
// partition" and "what they should own under the destination partition",
// then exchanging exactly those overlap tiles.
package reshape

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/cwbudde/fft3d/box"
	"github.com/cwbudde/fft3d/transport"
)

// Elem is the set of element types a reshape can move.
type Elem interface {
	~complex64 | ~complex128 | ~float32 | ~float64
}

// Strategy selects how the peer-to-peer overlap tiles are scheduled onto
// the underlying transport. All strategies produce identical data
// movement; they differ in how many tiles are in flight through Exchange
// at once.
type Strategy int

const (
	// AllToAll ships every peer's tile in a single Exchange call. Simplest,
	// highest peak memory: every outgoing tile is packed before the call.
	AllToAll Strategy = iota
	// Pairwise exchanges with one partner rank at a time, in Size-1 rounds,
	// bounding the number of tiles packed and in flight simultaneously to
	// one. Matches the classic pairwise-exchange all-to-all schedule.
	Pairwise
	// AxisPipelined groups peer tiles by their slowest-varying coordinate
	// (the outer axis of the tile) and issues one Exchange per group,
	// so packing of a later group can be prepared while an earlier
	// group's Exchange is outstanding on a real asynchronous transport.
	AxisPipelined
)

// Plan describes one redistribution: the source and destination partitions
// (as seen by every rank) plus this rank's role in it.
type Plan struct {
	Src, Dst box.Partition
	Rank     int
}

// Redistribute moves data owned locally under src (srcData, laid out per
// src.Order) into dstData (laid out per dst.Order), using g to exchange
// data with peer ranks. srcData must have length src.Count(); dstData must
// have length dst.Count() and is fully overwritten only where dst overlaps
// the union of source data — the caller must ensure src and dst cover the
// same global box, or dstData will be partially stale.
func Redistribute[T Elem](g transport.Group, srcPartition, dstPartition box.Partition, srcData, dstData []T, strategy Strategy) error {
	rank := g.Rank()
	size := g.Size()
	if rank < 0 || rank >= len(srcPartition) || rank >= len(dstPartition) {
		return fmt.Errorf("%w: rank %d out of range for partition of size %d", transport.ErrCommFailure, rank, len(srcPartition))
	}
	mySrc := srcPartition[rank]
	myDst := dstPartition[rank]

	if int64(len(srcData)) != mySrc.Count() {
		return fmt.Errorf("reshape: local source buffer has %d elements, box has %d", len(srcData), mySrc.Count())
	}
	if int64(len(dstData)) != myDst.Count() {
		return fmt.Errorf("reshape: local destination buffer has %d elements, box has %d", len(dstData), myDst.Count())
	}

	// Self tile: data that stays on this rank moves by direct copy, never
	// touching the transport.
	if self := box.Intersect(mySrc, myDst); !self.Empty() {
		copyTile(myDst, dstData, mySrc, srcData, self)
	}

	peers := make([]int, 0, size)
	for q := 0; q < size; q++ {
		if q != rank {
			peers = append(peers, q)
		}
	}

	switch strategy {
	case Pairwise:
		return redistributePairwise(g, srcPartition, dstPartition, srcData, dstData, peers)
	case AxisPipelined:
		return redistributeAxisPipelined(g, srcPartition, dstPartition, srcData, dstData, peers)
	default:
		return redistributeAllToAll(g, srcPartition, dstPartition, srcData, dstData, peers)
	}
}

func redistributeAllToAll[T Elem](g transport.Group, srcPartition, dstPartition box.Partition, srcData, dstData []T, peers []int) error {
	rank := g.Rank()
	mySrc := srcPartition[rank]
	myDst := dstPartition[rank]

	outgoing := make(map[int][]byte, len(peers))
	for _, q := range peers {
		tile := box.Intersect(mySrc, dstPartition[q])
		if tile.Empty() {
			continue
		}
		outgoing[q] = packTile(mySrc, srcData, tile)
	}

	incoming, err := g.Exchange(outgoing)
	if err != nil {
		return fmt.Errorf("reshape: exchange failed: %w", err)
	}

	for _, src := range peers {
		payload, ok := incoming[src]
		if !ok {
			continue
		}
		tile := box.Intersect(srcPartition[src], myDst)
		unpackTile(myDst, dstData, tile, payload)
	}
	return nil
}

func redistributePairwise[T Elem](g transport.Group, srcPartition, dstPartition box.Partition, srcData, dstData []T, peers []int) error {
	rank := g.Rank()
	size := g.Size()
	mySrc := srcPartition[rank]
	myDst := dstPartition[rank]

	for step := 1; step < size; step++ {
		send := (rank + step) % size
		recv := (rank - step + size) % size
		outgoing := map[int][]byte{}
		if tile := box.Intersect(mySrc, dstPartition[send]); !tile.Empty() {
			outgoing[send] = packTile(mySrc, srcData, tile)
		}
		incoming, err := g.Exchange(outgoing)
		if err != nil {
			return fmt.Errorf("reshape: pairwise exchange (step %d) failed: %w", step, err)
		}
		if payload, ok := incoming[recv]; ok {
			tile := box.Intersect(srcPartition[recv], myDst)
			unpackTile(myDst, dstData, tile, payload)
		}
	}
	_ = peers
	return nil
}

func redistributeAxisPipelined[T Elem](g transport.Group, srcPartition, dstPartition box.Partition, srcData, dstData []T, peers []int) error {
	rank := g.Rank()
	size := g.Size()
	mySrc := srcPartition[rank]
	myDst := dstPartition[rank]

	// Batch by the outer (slowest-varying, per src.Order) coordinate of the
	// overlap tile so each Exchange corresponds to one slab of the domain,
	// letting a caller with a truly asynchronous transport overlap packing
	// slab k+1 with the in-flight Exchange for slab k. Exchange is a strict
	// collective: every rank must issue the same number of calls in the
	// same order, so the set of batch keys is derived from srcPartition and
	// dstPartition directly (known identically to every rank, no exchange
	// needed to agree on it) rather than from this rank's own tiles, which
	// in general cover a different set of outer coordinates than a peer's.
	outerAxis := mySrc.Order[2]
	keySet := map[int]struct{}{}
	for p := 0; p < size; p++ {
		for q := 0; q < size; q++ {
			if p == q {
				continue
			}
			if tile := box.Intersect(srcPartition[p], dstPartition[q]); !tile.Empty() {
				keySet[tile.Lo[outerAxis]] = struct{}{}
			}
		}
	}
	keys := make([]int, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	for _, key := range keys {
		outgoing := map[int][]byte{}
		for _, q := range peers {
			tile := box.Intersect(mySrc, dstPartition[q])
			if tile.Empty() || tile.Lo[outerAxis] != key {
				continue
			}
			outgoing[q] = packTile(mySrc, srcData, tile)
		}
		incoming, err := g.Exchange(outgoing)
		if err != nil {
			return fmt.Errorf("reshape: axis-pipelined exchange (batch %d) failed: %w", key, err)
		}
		for _, q := range peers {
			payload, ok := incoming[q]
			if !ok {
				continue
			}
			tile := box.Intersect(srcPartition[q], myDst)
			unpackTile(myDst, dstData, tile, payload)
		}
	}
	return nil
}

// --- local tile packing --------------------------------------------------

func strides(b box.Box) [3]int {
	var ext [3]int
	for i := 0; i < 3; i++ {
		ext[i] = b.Extent(i)
	}
	var s [3]int
	acc := 1
	for _, axis := range b.Order {
		s[axis] = acc
		acc *= ext[axis]
	}
	return s
}

func offset(b box.Box, pt [3]int, s [3]int) int {
	o := 0
	for i := 0; i < 3; i++ {
		o += (pt[i] - b.Lo[i]) * s[i]
	}
	return o
}

// copyTile moves the overlap tile directly between two local buffers with
// possibly different axis orders, without going through the transport.
func copyTile[T Elem](dstBox box.Box, dstData []T, srcBox box.Box, srcData []T, tile box.Box) {
	ds, ss := strides(dstBox), strides(srcBox)
	for z := tile.Lo[2]; z <= tile.Hi[2]; z++ {
		for y := tile.Lo[1]; y <= tile.Hi[1]; y++ {
			for x := tile.Lo[0]; x <= tile.Hi[0]; x++ {
				pt := [3]int{x, y, z}
				dstData[offset(dstBox, pt, ds)] = srcData[offset(srcBox, pt, ss)]
			}
		}
	}
}

// packTile serializes the overlap tile out of a local buffer in a fixed
// (z,y,x) lattice order, independent of srcBox.Order, so the receiver can
// unpack it into a differently-ordered local buffer.
func packTile[T Elem](srcBox box.Box, srcData []T, tile box.Box) []byte {
	sz := elemSize[T]()
	n := tile.Count()
	buf := make([]byte, int(n)*sz)
	s := strides(srcBox)
	idx := 0
	for z := tile.Lo[2]; z <= tile.Hi[2]; z++ {
		for y := tile.Lo[1]; y <= tile.Hi[1]; y++ {
			for x := tile.Lo[0]; x <= tile.Hi[0]; x++ {
				pt := [3]int{x, y, z}
				encodeElem(buf[idx*sz:], srcData[offset(srcBox, pt, s)])
				idx++
			}
		}
	}
	return buf
}

func unpackTile[T Elem](dstBox box.Box, dstData []T, tile box.Box, buf []byte) {
	sz := elemSize[T]()
	s := strides(dstBox)
	idx := 0
	for z := tile.Lo[2]; z <= tile.Hi[2]; z++ {
		for y := tile.Lo[1]; y <= tile.Hi[1]; y++ {
			for x := tile.Lo[0]; x <= tile.Hi[0]; x++ {
				pt := [3]int{x, y, z}
				dstData[offset(dstBox, pt, s)] = decodeElem[T](buf[idx*sz:])
				idx++
			}
		}
	}
}

// --- generic element encoding ---------------------------------------------

func elemSize[T Elem]() int {
	var zero T
	switch any(zero).(type) {
	case complex64:
		return 8
	case complex128:
		return 16
	case float32:
		return 4
	case float64:
		return 8
	}
	return 0
}

func encodeElem[T Elem](dst []byte, v T) {
	switch x := any(v).(type) {
	case complex64:
		binary.LittleEndian.PutUint32(dst[0:], math.Float32bits(real(x)))
		binary.LittleEndian.PutUint32(dst[4:], math.Float32bits(imag(x)))
	case complex128:
		binary.LittleEndian.PutUint64(dst[0:], math.Float64bits(real(x)))
		binary.LittleEndian.PutUint64(dst[8:], math.Float64bits(imag(x)))
	case float32:
		binary.LittleEndian.PutUint32(dst[0:], math.Float32bits(x))
	case float64:
		binary.LittleEndian.PutUint64(dst[0:], math.Float64bits(x))
	}
}

func decodeElem[T Elem](src []byte) T {
	var zero T
	switch any(zero).(type) {
	case complex64:
		r := math.Float32frombits(binary.LittleEndian.Uint32(src[0:]))
		i := math.Float32frombits(binary.LittleEndian.Uint32(src[4:]))
		return any(complex(r, i)).(T)
	case complex128:
		r := math.Float64frombits(binary.LittleEndian.Uint64(src[0:]))
		i := math.Float64frombits(binary.LittleEndian.Uint64(src[8:]))
		return any(complex(r, i)).(T)
	case float32:
		return any(math.Float32frombits(binary.LittleEndian.Uint32(src[0:]))).(T)
	case float64:
		return any(math.Float64frombits(binary.LittleEndian.Uint64(src[0:]))).(T)
	}
	return zero
}
