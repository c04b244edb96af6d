// Package box implements axis-aligned integer box algebra: the geometric
// primitives the distributed FFT planner uses to describe who owns what.
//
// A Box is a closed, inclusive-corner rectangular region of the integer
// lattice plus an axis order recording which lattice axis varies fastest in
// memory. Two boxes with identical corners but different Order describe the
// same set of lattice points laid out differently in memory.
package box

import "fmt"

// Perm is a permutation of the three lattice axes (0, 1, 2). Perm[0] is the
// axis that varies fastest in memory, Perm[2] the slowest.
type Perm [3]int

// IdentityOrder is the natural axis order: axis 0 fastest, axis 2 slowest.
var IdentityOrder = Perm{0, 1, 2}

// Box is a closed, axis-aligned box over the integer lattice: Lo and Hi are
// inclusive corners, Lo[i] <= Hi[i]. Order records the in-memory axis order.
type Box struct {
	Lo, Hi [3]int
	Order  Perm
}

// New returns a box with the identity axis order.
func New(lo, hi [3]int) Box {
	return Box{Lo: lo, Hi: hi, Order: IdentityOrder}
}

// Empty reports whether b contains no lattice points.
func (b Box) Empty() bool {
	for i := 0; i < 3; i++ {
		if b.Lo[i] > b.Hi[i] {
			return true
		}
	}
	return false
}

// Extent returns hi-lo+1 along axis i, or 0 if the box is empty along it.
func (b Box) Extent(axis int) int {
	n := b.Hi[axis] - b.Lo[axis] + 1
	if n < 0 {
		return 0
	}
	return n
}

// Count returns the number of lattice points in b, 0 if b is empty.
func (b Box) Count() int64 {
	if b.Empty() {
		return 0
	}
	count := int64(1)
	for i := 0; i < 3; i++ {
		count *= int64(b.Extent(i))
	}
	return count
}

// Reorder returns a box over the same lattice points, stamped with a
// different axis order.
func (b Box) Reorder(perm Perm) Box {
	return Box{Lo: b.Lo, Hi: b.Hi, Order: perm}
}

// Intersect returns the box covered by both a and b, or an empty box if
// they don't overlap. The result carries a's axis order.
func Intersect(a, b Box) Box {
	var out Box
	out.Order = a.Order
	for i := 0; i < 3; i++ {
		if a.Lo[i] > b.Lo[i] {
			out.Lo[i] = a.Lo[i]
		} else {
			out.Lo[i] = b.Lo[i]
		}
		if a.Hi[i] < b.Hi[i] {
			out.Hi[i] = a.Hi[i]
		} else {
			out.Hi[i] = b.Hi[i]
		}
	}
	return out
}

// IsPencil reports whether b spans the full extent of global along axis,
// i.e. b owns every lattice index along that axis.
func IsPencil(b Box, axis int, global Box) bool {
	if b.Empty() {
		return false
	}
	return b.Lo[axis] == global.Lo[axis] && b.Hi[axis] == global.Hi[axis]
}

// Equal reports whether a and b cover the same corners (axis order ignored).
func Equal(a, b Box) bool {
	return a.Lo == b.Lo && a.Hi == b.Hi
}

func (b Box) String() string {
	return fmt.Sprintf("[(%d,%d,%d)-(%d,%d,%d) order=%v]", b.Lo[0], b.Lo[1], b.Lo[2], b.Hi[0], b.Hi[1], b.Hi[2], b.Order)
}
