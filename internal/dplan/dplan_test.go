package dplan

import (
	"errors"
	"testing"

	"github.com/cwbudde/fft3d/box"
)

func slabPartition(global box.Box, axis int, size int) box.Partition {
	splits := splitAxis(global.Lo[axis], global.Extent(axis), size)
	out := make(box.Partition, size)
	for r := 0; r < size; r++ {
		b := global
		b.Lo[axis], b.Hi[axis] = splits[r].lo, splits[r].hi
		out[r] = b
	}
	return out
}

func TestBuildC2CProducesConsistentLayouts(t *testing.T) {
	global := box.New([3]int{0, 0, 0}, [3]int{7, 7, 7})
	pIn := slabPartition(global, 2, 4)
	pOut := slabPartition(global, 2, 4)

	plan, err := Build(global, global, pIn, pOut, None, DefaultOptions())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for k, p := range plan.Layouts {
		if err := box.Validate(p, plan.Global[k]); err != nil {
			t.Errorf("layout %d invalid: %v", k, err)
		}
	}
	if err := box.Validate(plan.Pencil, global); err != nil {
		t.Errorf("pencil partition invalid: %v", err)
	}

	seen := map[int]bool{}
	for _, a := range plan.Axes {
		if a < 0 || a > 2 || seen[a] {
			t.Fatalf("axes %v is not a permutation of {0,1,2}", plan.Axes)
		}
		seen[a] = true
	}

	for r, b := range plan.Layouts[1] {
		if !box.IsPencil(b, plan.Axes[0], global) && !b.Empty() {
			t.Errorf("L1 rank %d is not a pencil along a0=%d: %v", r, plan.Axes[0], b)
		}
	}
	for r, b := range plan.Layouts[2] {
		if !box.IsPencil(b, plan.Axes[1], global) && !b.Empty() {
			t.Errorf("L2 rank %d is not a pencil along a1=%d: %v", r, plan.Axes[1], b)
		}
	}
	for r, b := range plan.Pencil {
		if !box.IsPencil(b, plan.Axes[2], global) && !b.Empty() {
			t.Errorf("pencil rank %d is not a pencil along a2=%d: %v", r, plan.Axes[2], b)
		}
	}
}

func TestBuildR2CAxisIsAlwaysA0(t *testing.T) {
	global := box.New([3]int{0, 0, 0}, [3]int{15, 9, 7})
	pIn := slabPartition(global, 2, 4)

	shrunk := shrinkGlobal(global, 1)
	pOut := slabPartition(shrunk, 2, 4)

	plan, err := Build(global, shrunk, pIn, pOut, 1, DefaultOptions())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if plan.Axes[0] != 1 {
		t.Fatalf("a0 = %d, want the R2C axis 1", plan.Axes[0])
	}
	if got := plan.Global[1].Extent(1); got != global.Extent(1)/2+1 {
		t.Errorf("shrunk extent along r2c axis = %d, want %d", got, global.Extent(1)/2+1)
	}
	if plan.FullLens[0] != global.Extent(1) {
		t.Errorf("FullLens[0] = %d, want unshortened extent %d", plan.FullLens[0], global.Extent(1))
	}
}

func TestBuildInvalidR2CAxis(t *testing.T) {
	global := box.New([3]int{0, 0, 0}, [3]int{3, 3, 3})
	p := box.Partition{global}
	_, err := Build(global, global, p, p, 3, DefaultOptions())
	if !errors.Is(err, ErrInvalidR2CAxis) {
		t.Fatalf("err = %v, want ErrInvalidR2CAxis", err)
	}
}

func TestBuildInvalidPartitionOverlap(t *testing.T) {
	global := box.New([3]int{0, 0, 0}, [3]int{3, 3, 3})
	bad := box.Partition{
		box.New([3]int{0, 0, 0}, [3]int{3, 3, 1}),
		box.New([3]int{0, 0, 1}, [3]int{3, 3, 3}), // overlaps at z=1
	}
	_, err := Build(global, global, bad, bad, None, DefaultOptions())
	if !errors.Is(err, box.ErrInvalidPartition) {
		t.Fatalf("err = %v, want ErrInvalidPartition", err)
	}
}

func TestNearSquareFactors(t *testing.T) {
	cases := map[int][2]int{
		1:  {1, 1},
		4:  {2, 2},
		6:  {2, 3},
		7:  {1, 7},
		16: {4, 4},
	}
	for n, want := range cases {
		p, q := nearSquareFactors(n)
		if p != want[0] || q != want[1] || p*q != n {
			t.Errorf("nearSquareFactors(%d) = (%d,%d), want (%d,%d)", n, p, q, want[0], want[1])
		}
	}
}

func TestSplitAxisCoversExactlyOnce(t *testing.T) {
	spans := splitAxis(10, 17, 4)
	total := 0
	prevHi := 9
	for _, s := range spans {
		if s.hi < s.lo {
			continue
		}
		if s.lo != prevHi+1 {
			t.Fatalf("spans not contiguous: %v", spans)
		}
		prevHi = s.hi
		total += s.hi - s.lo + 1
	}
	if total != 17 {
		t.Fatalf("spans cover %d points, want 17", total)
	}
}
