package oned

import "math"

// Plan is a one-dimensional complex-to-complex FFT plan for a fixed length.
//
// Plan applies no scaling on either Forward or Inverse; callers that need
// normalized transforms divide by n themselves. This mirrors the convention
// used throughout the distributed pipeline, which applies scaling once at
// the end of the whole 3D transform rather than once per axis.
type Plan[T Complex] struct {
	n       int
	pow2    bool
	twiddle []T // length n, W_n^k = exp(-2*pi*i*k/n)
	bitrev  []int
	scratch []T
}

// NewPlanT creates a plan for a 1D complex FFT of length n.
//
// Power-of-two lengths use an iterative radix-2 Cooley-Tukey kernel.
// Any other length falls back to a direct O(n^2) evaluation; the module
// treats mixed-radix acceleration beyond power-of-two as an engine detail
// out of scope for the distributed planner.
func NewPlanT[T Complex](n int) (*Plan[T], error) {
	if n < 1 {
		return nil, ErrInvalidLength
	}

	p := &Plan[T]{
		n:    n,
		pow2: isPowerOfTwo(n),
	}

	p.twiddle = computeTwiddle[T](n, -1)
	if p.pow2 {
		p.bitrev = computeBitReversal(n)
	}
	p.scratch = make([]T, n)

	return p, nil
}

// Len returns the FFT length.
func (p *Plan[T]) Len() int {
	if p == nil {
		return 0
	}
	return p.n
}

// ScratchSize returns the number of elements of scratch space this plan
// uses for Forward/Inverse. The plan allocates and owns that scratch itself.
func (p *Plan[T]) ScratchSize() int {
	if p == nil {
		return 0
	}
	return p.n
}

// Forward computes the forward (sign -1) FFT. dst and src may alias.
func (p *Plan[T]) Forward(dst, src []T) error {
	return p.transform(dst, src, -1)
}

// Inverse computes the inverse (sign +1) FFT, unscaled. dst and src may alias.
func (p *Plan[T]) Inverse(dst, src []T) error {
	return p.transform(dst, src, +1)
}

func (p *Plan[T]) transform(dst, src []T, sign int) error {
	if p == nil {
		return ErrNotImplemented
	}
	if dst == nil || src == nil {
		return ErrNilSlice
	}
	if len(dst) < p.n || len(src) < p.n {
		return ErrLengthMismatch
	}
	if p.n == 1 {
		dst[0] = src[0]
		return nil
	}

	if p.pow2 {
		p.radix2(dst, src, sign)
		return nil
	}

	p.naiveDFT(dst, src, sign)
	return nil
}

// radix2 performs an in-place-safe iterative Cooley-Tukey transform using
// bit-reversal reordering followed by butterfly stages.
func (p *Plan[T]) radix2(dst, src []T, sign int) {
	n := p.n
	buf := p.scratch
	for i := 0; i < n; i++ {
		buf[i] = src[p.bitrev[i]]
	}

	twiddle := p.twiddle

	for size := 2; size <= n; size <<= 1 {
		half := size / 2
		step := n / size
		for start := 0; start < n; start += size {
			for k := 0; k < half; k++ {
				var w T
				tw := twiddle[k*step]
				if sign > 0 {
					w = conjT(tw)
				} else {
					w = tw
				}
				even := buf[start+k]
				odd := mulT(w, buf[start+k+half])
				buf[start+k] = addT(even, odd)
				buf[start+k+half] = subT(even, odd)
			}
		}
	}

	copy(dst[:n], buf[:n])
}

// naiveDFT computes X[k] = sum_j src[j] * exp(sign*2*pi*i*k*j/n).
func (p *Plan[T]) naiveDFT(dst, src []T, sign int) {
	n := p.n
	buf := p.scratch
	for k := 0; k < n; k++ {
		var acc complex128
		for j := 0; j < n; j++ {
			angle := float64(sign) * 2 * math.Pi * float64(k) * float64(j) / float64(n)
			w := complex(math.Cos(angle), math.Sin(angle))
			acc += complex128(anyComplex(src[j])) * w
		}
		buf[k] = fromComplex128[T](acc)
	}
	copy(dst[:n], buf[:n])
}

func computeTwiddle[T Complex](n int, sign int) []T {
	tw := make([]T, n)
	for k := 0; k < n; k++ {
		angle := float64(sign) * 2 * math.Pi * float64(k) / float64(n)
		tw[k] = fromComplex128[T](complex(math.Cos(angle), math.Sin(angle)))
	}
	return tw
}

func computeBitReversal(n int) []int {
	bits := 0
	for m := n; m > 1; m >>= 1 {
		bits++
	}
	rev := make([]int, n)
	for i := 0; i < n; i++ {
		x, r := i, 0
		for b := 0; b < bits; b++ {
			r = (r << 1) | (x & 1)
			x >>= 1
		}
		rev[i] = r
	}
	return rev
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// The helpers below let Plan[T] stay generic over complex64/complex128
// without runtime type switches scattered through the hot loop.

func anyComplex[T Complex](v T) complex128 {
	switch x := any(v).(type) {
	case complex64:
		return complex128(x)
	case complex128:
		return x
	default:
		return 0
	}
}

func fromComplex128[T Complex](v complex128) T {
	var zero T
	switch any(zero).(type) {
	case complex64:
		return any(complex64(v)).(T)
	case complex128:
		return any(v).(T)
	default:
		return zero
	}
}

func addT[T Complex](a, b T) T { return fromComplex128[T](anyComplex(a) + anyComplex(b)) }
func subT[T Complex](a, b T) T { return fromComplex128[T](anyComplex(a) - anyComplex(b)) }
func mulT[T Complex](a, b T) T { return fromComplex128[T](anyComplex(a) * anyComplex(b)) }
func conjT[T Complex](a T) T {
	c := anyComplex(a)
	return fromComplex128[T](complex(real(c), -imag(c)))
}
