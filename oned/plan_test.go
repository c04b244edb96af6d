package oned

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestPlanForwardInverseRoundTrip(t *testing.T) {
	for _, n := range []int{1, 2, 4, 8, 16, 5, 6, 9} {
		p, err := NewPlanT[complex128](n)
		if err != nil {
			t.Fatalf("NewPlanT(%d): %v", n, err)
		}

		src := make([]complex128, n)
		for i := range src {
			src[i] = complex(float64(i+1), float64(-i))
		}

		freq := make([]complex128, n)
		if err := p.Forward(freq, src); err != nil {
			t.Fatalf("Forward: %v", err)
		}

		back := make([]complex128, n)
		if err := p.Inverse(back, freq); err != nil {
			t.Fatalf("Inverse: %v", err)
		}
		for i := range back {
			back[i] /= complex(float64(n), 0)
		}

		for i := range src {
			if cmplx.Abs(back[i]-src[i]) > 1e-9 {
				t.Fatalf("n=%d round-trip mismatch at %d: got %v want %v", n, i, back[i], src[i])
			}
		}
	}
}

func TestPlanDeltaIsFlatMagnitude(t *testing.T) {
	n := 8
	p, err := NewPlanT[complex128](n)
	if err != nil {
		t.Fatal(err)
	}
	src := make([]complex128, n)
	src[0] = 1
	dst := make([]complex128, n)
	if err := p.Forward(dst, src); err != nil {
		t.Fatal(err)
	}
	for i, v := range dst {
		if math.Abs(cmplx.Abs(v)-1) > 1e-9 {
			t.Fatalf("bin %d magnitude = %v, want 1", i, cmplx.Abs(v))
		}
	}
}

func TestPlanRealForwardInverseRoundTrip(t *testing.T) {
	for _, n := range []int{2, 4, 6, 16, 5, 7} {
		p, err := NewPlanRealT[float64](n)
		if err != nil {
			t.Fatalf("NewPlanRealT(%d): %v", n, err)
		}

		src := make([]float64, n)
		for i := range src {
			src[i] = float64(i) - float64(n)/2
		}

		spec := make([]complex128, p.SpectrumLen())
		if err := p.Forward(spec, src); err != nil {
			t.Fatalf("Forward: %v", err)
		}

		back := make([]float64, n)
		if err := p.Inverse(back, spec); err != nil {
			t.Fatalf("Inverse: %v", err)
		}
		for i := range back {
			back[i] /= float64(n)
		}

		for i := range src {
			if math.Abs(back[i]-src[i]) > 1e-6 {
				t.Fatalf("n=%d mismatch at %d: got %v want %v", n, i, back[i], src[i])
			}
		}
	}
}

func TestPlanStridedBatch(t *testing.T) {
	p, err := NewPlanT[complex128](4)
	if err != nil {
		t.Fatal(err)
	}

	// Two contiguous lines of length 4: stride 1, distance 4 (a simple
	// stride/distance sanity check rather than a real pencil).
	batch := 2
	stride := 1
	dist := 4
	src := make([]complex128, batch*dist)
	for b := 0; b < batch; b++ {
		src[b*dist] = complex(float64(b+1), 0)
	}

	dst := make([]complex128, batch*dist)
	if err := p.ForwardStrided(dst, src, stride, dist, batch); err != nil {
		t.Fatalf("ForwardStrided: %v", err)
	}

	back := make([]complex128, batch*dist)
	if err := p.InverseStrided(back, dst, stride, dist, batch); err != nil {
		t.Fatalf("InverseStrided: %v", err)
	}
	for i := range back {
		back[i] /= 4
	}
	for i := range src {
		if cmplx.Abs(back[i]-src[i]) > 1e-9 {
			t.Fatalf("mismatch at %d: got %v want %v", i, back[i], src[i])
		}
	}
}

func TestPlanErrors(t *testing.T) {
	if _, err := NewPlanT[complex128](0); err != ErrInvalidLength {
		t.Fatalf("expected ErrInvalidLength, got %v", err)
	}

	p, _ := NewPlanT[complex128](4)
	if err := p.Forward(nil, make([]complex128, 4)); err != ErrNilSlice {
		t.Fatalf("expected ErrNilSlice, got %v", err)
	}
	if err := p.Forward(make([]complex128, 2), make([]complex128, 4)); err != ErrLengthMismatch {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
}
