package box

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cwbudde/fft3d/transport"
)

// Partition is an ordered sequence of boxes, one per rank, whose union is
// meant to equal some stated global box with pairwise-disjoint interiors.
// It is the canonical description of "who owns what".
type Partition []Box

// ErrInvalidPartition is returned when a partition's boxes don't tile the
// stated global box: the union misses lattice points, or two boxes overlap.
var ErrInvalidPartition = errors.New("box: partition does not tile the global box")

// Validate checks that p tiles global exactly: every rank's non-empty box
// lies within global, no two boxes overlap, and the total point count
// equals global's count.
func Validate(p Partition, global Box) error {
	var total int64
	for i, bi := range p {
		if bi.Empty() {
			continue
		}
		if !within(bi, global) {
			return fmt.Errorf("%w: rank %d box %v is not contained in global box %v", ErrInvalidPartition, i, bi, global)
		}
		total += bi.Count()
		for j := i + 1; j < len(p); j++ {
			bj := p[j]
			if bj.Empty() {
				continue
			}
			if !Intersect(bi, bj).Empty() {
				return fmt.Errorf("%w: rank %d and rank %d overlap", ErrInvalidPartition, i, j)
			}
		}
	}
	if total != global.Count() {
		return fmt.Errorf("%w: partition covers %d points, global box has %d", ErrInvalidPartition, total, global.Count())
	}
	return nil
}

func within(b, global Box) bool {
	for i := 0; i < 3; i++ {
		if b.Lo[i] < global.Lo[i] || b.Hi[i] > global.Hi[i] {
			return false
		}
	}
	return true
}

// Gather is collective: every rank contributes its own input and output
// box, and every rank receives the full per-rank partitions in rank order.
func Gather(g transport.Group, localIn, localOut Box) (Partition, Partition, error) {
	payload := make([]byte, 2*boxWireSize)
	encodeBox(payload[:boxWireSize], localIn)
	encodeBox(payload[boxWireSize:], localOut)

	all, err := g.AllGather(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("box: gather failed: %w", err)
	}

	ins := make(Partition, len(all))
	outs := make(Partition, len(all))
	for i, buf := range all {
		if len(buf) != 2*boxWireSize {
			return nil, nil, fmt.Errorf("box: gather: malformed payload from rank %d", i)
		}
		ins[i] = decodeBox(buf[:boxWireSize])
		outs[i] = decodeBox(buf[boxWireSize:])
	}
	return ins, outs, nil
}

const boxWireSize = 8 * 6 // 6 int64 fields (Lo, Hi); axis order is not needed by peers

func encodeBox(buf []byte, b Box) {
	for i := 0; i < 3; i++ {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(b.Lo[i]))
		binary.LittleEndian.PutUint64(buf[24+i*8:], uint64(b.Hi[i]))
	}
}

func decodeBox(buf []byte) Box {
	var b Box
	b.Order = IdentityOrder
	for i := 0; i < 3; i++ {
		b.Lo[i] = int(int64(binary.LittleEndian.Uint64(buf[i*8:])))
		b.Hi[i] = int(int64(binary.LittleEndian.Uint64(buf[24+i*8:])))
	}
	return b
}
