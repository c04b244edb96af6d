package fft3d

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/cwbudde/fft3d/box"
	"github.com/cwbudde/fft3d/transport"
)

func slabBox(global box.Box, axis, size, rank int) box.Box {
	n := global.Extent(axis)
	base, rem := n/size, n%size
	lo := global.Lo[axis]
	for r := 0; r < rank; r++ {
		count := base
		if r < rem {
			count++
		}
		lo += count
	}
	count := base
	if rank < rem {
		count++
	}
	b := global
	b.Lo[axis], b.Hi[axis] = lo, lo+count-1
	return b
}

func TestPlanC2CRoundTripFullScale(t *testing.T) {
	global := box.New([3]int{0, 0, 0}, [3]int{3, 5, 4})
	size := 4
	groups := transport.NewInProcessGroup(size)

	opts := DefaultOptions()
	opts.Scaling = ScaleFull

	var wg sync.WaitGroup
	for r := 0; r < size; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			local := slabBox(global, 2, size, r)

			plan, err := NewPlan[complex128](groups[r], global, global, local, local, opts)
			if err != nil {
				t.Errorf("rank %d: NewPlan: %v", r, err)
				return
			}
			defer plan.Destroy()

			src := make([]complex128, plan.SizeInbox())
			for i := range src {
				src[i] = complex(float64(i%7)-3, float64(i%5)-2)
			}

			freq := make([]complex128, plan.SizeOutbox())
			if err := plan.Forward(freq, src); err != nil {
				t.Errorf("rank %d: Forward: %v", r, err)
				return
			}

			back := make([]complex128, plan.SizeInbox())
			if err := plan.Backward(back, freq); err != nil {
				t.Errorf("rank %d: Backward: %v", r, err)
				return
			}

			for i := range back {
				if diff := back[i] - src[i]; math.Hypot(real(diff), imag(diff)) > 1e-8 {
					t.Errorf("rank %d: element %d = %v, want %v", r, i, back[i], src[i])
				}
			}
		}(r)
	}
	wg.Wait()
}

func TestRealPlanRoundTripSymmetricScale(t *testing.T) {
	global := box.New([3]int{0, 0, 0}, [3]int{7, 3, 5})
	size := 2
	r2cAxis := 0
	n := global.Extent(r2cAxis)
	shrunk := global
	shrunk.Hi[r2cAxis] = global.Lo[r2cAxis] + (n/2 + 1) - 1

	groups := transport.NewInProcessGroup(size)
	opts := DefaultOptions()
	opts.Scaling = ScaleSymmetric

	var wg sync.WaitGroup
	for r := 0; r < size; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			localIn := slabBox(global, 2, size, r)
			localOut := slabBox(shrunk, 2, size, r)

			plan, err := NewRealPlan[float64](groups[r], global, shrunk, localIn, localOut, r2cAxis, opts)
			if err != nil {
				t.Errorf("rank %d: NewRealPlan: %v", r, err)
				return
			}
			defer plan.Destroy()

			src := make([]float64, plan.SizeInbox())
			for i := range src {
				src[i] = float64(i%9) - 4
			}

			freq := make([]complex128, plan.SizeOutbox())
			if err := plan.Forward(freq, src); err != nil {
				t.Errorf("rank %d: Forward: %v", r, err)
				return
			}

			back := make([]float64, plan.SizeInbox())
			if err := plan.Backward(back, freq); err != nil {
				t.Errorf("rank %d: Backward: %v", r, err)
				return
			}

			// Symmetric scaling divides by sqrt(N) on each leg, so a full
			// Forward+Backward round trip recovers src directly.
			for i := range back {
				if math.Abs(back[i]-src[i]) > 1e-6 {
					t.Errorf("rank %d: element %d = %v, want %v", r, i, back[i], src[i])
				}
			}
		}(r)
	}
	wg.Wait()
}

func TestPlanForwardWithWorkspaceMatchesInternalAllocation(t *testing.T) {
	global := box.New([3]int{0, 0, 0}, [3]int{3, 3, 3})
	groups := transport.NewInProcessGroup(1)
	plan, err := NewPlan[complex128](groups[0], global, global, global, global, DefaultOptions())
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	defer plan.Destroy()

	src := make([]complex128, plan.SizeInbox())
	for i := range src {
		src[i] = complex(float64(i), float64(-i))
	}

	want := make([]complex128, plan.SizeOutbox())
	if err := plan.Forward(want, src); err != nil {
		t.Fatalf("Forward: %v", err)
	}

	ws := make([]complex128, plan.SizeWorkspace())
	got := make([]complex128, plan.SizeOutbox())
	if err := plan.ForwardWithWorkspace(got, src, ws); err != nil {
		t.Fatalf("ForwardWithWorkspace: %v", err)
	}

	for i := range want {
		if diff := got[i] - want[i]; math.Hypot(real(diff), imag(diff)) > 1e-12 {
			t.Errorf("element %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPlanSizeMismatch(t *testing.T) {
	global := box.New([3]int{0, 0, 0}, [3]int{3, 3, 3})
	groups := transport.NewInProcessGroup(1)
	plan, err := NewPlan[complex128](groups[0], global, global, global, global, DefaultOptions())
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	err = plan.Forward(make([]complex128, plan.SizeOutbox()), make([]complex128, 1))
	if !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("err = %v, want ErrSizeMismatch", err)
	}
}

func TestPlanInvalidPartition(t *testing.T) {
	global := box.New([3]int{0, 0, 0}, [3]int{3, 3, 3})
	bad := box.New([3]int{0, 0, 0}, [3]int{3, 3, 1}) // covers half of global, alone
	groups := transport.NewInProcessGroup(1)
	_, err := NewPlan[complex128](groups[0], global, global, bad, bad, DefaultOptions())
	if !errors.Is(err, ErrInvalidPartition) {
		t.Fatalf("err = %v, want ErrInvalidPartition", err)
	}
}

func TestRealPlanInvalidR2CAxis(t *testing.T) {
	global := box.New([3]int{0, 0, 0}, [3]int{3, 3, 3})
	groups := transport.NewInProcessGroup(1)
	_, err := NewRealPlan[float64](groups[0], global, global, global, global, 5, DefaultOptions())
	if !errors.Is(err, ErrInvalidR2CAxis) {
		t.Fatalf("err = %v, want ErrInvalidR2CAxis", err)
	}
}

func TestPlanDestroyRejectsFurtherUse(t *testing.T) {
	global := box.New([3]int{0, 0, 0}, [3]int{1, 1, 1})
	groups := transport.NewInProcessGroup(1)
	plan, err := NewPlan[complex128](groups[0], global, global, global, global, DefaultOptions())
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	plan.Destroy()
	err = plan.Forward(make([]complex128, plan.SizeOutbox()), make([]complex128, plan.SizeInbox()))
	if !errors.Is(err, ErrExecutorFailure) {
		t.Fatalf("err = %v, want ErrExecutorFailure after Destroy", err)
	}
}
