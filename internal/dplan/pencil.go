package dplan

import "github.com/cwbudde/fft3d/box"

// buildPencilPartition tiles global into size boxes, each spanning the full
// extent along pencilAxis and a near-square grid slice of the other two
// axes. Grid dimensions are chosen as a near-square factorization of size so
// no rank goes unused and no partition ever produces overlap or gaps.
func buildPencilPartition(global box.Box, pencilAxis int, size int) box.Partition {
	other := otherAxesSorted(pencilAxis)
	gx, gy := nearSquareFactors(size)

	splitsX := splitAxis(global.Lo[other[0]], global.Extent(other[0]), gx)
	splitsY := splitAxis(global.Lo[other[1]], global.Extent(other[1]), gy)

	out := make(box.Partition, size)
	for r := 0; r < size; r++ {
		ix := r % gx
		iy := r / gx

		var b box.Box
		b.Order = box.IdentityOrder
		b.Lo[pencilAxis], b.Hi[pencilAxis] = global.Lo[pencilAxis], global.Hi[pencilAxis]
		b.Lo[other[0]], b.Hi[other[0]] = splitsX[ix].lo, splitsX[ix].hi
		b.Lo[other[1]], b.Hi[other[1]] = splitsY[iy].lo, splitsY[iy].hi
		out[r] = b
	}
	return out
}

type span struct{ lo, hi int }

// splitAxis divides [lo, lo+count) into parts contiguous, near-equal chunks,
// front-loading the one-element remainder onto the first chunks.
func splitAxis(lo, count, parts int) []span {
	spans := make([]span, parts)
	base := count / parts
	rem := count % parts
	cur := lo
	for i := 0; i < parts; i++ {
		n := base
		if i < rem {
			n++
		}
		if n == 0 {
			spans[i] = span{lo: cur, hi: cur - 1} // empty
			continue
		}
		spans[i] = span{lo: cur, hi: cur + n - 1}
		cur += n
	}
	return spans
}

// nearSquareFactors returns (p, q) with p*q == n, p <= q, and p as close to
// sqrt(n) as possible.
func nearSquareFactors(n int) (int, int) {
	if n <= 1 {
		return 1, n
	}
	best := 1
	for d := 1; d*d <= n; d++ {
		if n%d == 0 {
			best = d
		}
	}
	return best, n / best
}
