package oned

import "math"

// PlanReal is a one-dimensional real-to-complex FFT plan.
//
// Forward produces n/2+1 complex bins (the non-redundant Hermitian half);
// Inverse reconstructs n real samples from that half-spectrum. Neither
// direction applies scaling.
type PlanReal[F Float] struct {
	n      int
	half   int
	even   bool
	weight []complex128
	inner  *Plan[complex128] // always double precision internally; narrowed on the way out
}

// NewPlanRealT creates a real FFT plan for n real samples.
//
// When n is even the classic "pack two reals per complex sample, run a
// half-length complex FFT, then recombine" trick is used. Odd n falls back
// to a direct O(n^2) real DFT, matching Plan's own fallback for lengths the
// packing trick cannot handle.
func NewPlanRealT[F Float](n int) (*PlanReal[F], error) {
	if n < 1 {
		return nil, ErrInvalidLength
	}

	half := n / 2
	pr := &PlanReal[F]{n: n, half: half, even: n%2 == 0}

	if pr.even && n >= 2 {
		inner, err := NewPlanT[complex128](half)
		if err != nil {
			return nil, err
		}
		pr.inner = inner

		weight := make([]complex128, half+1)
		for k := range weight {
			theta := 2 * math.Pi * float64(k) / float64(n)
			weight[k] = complex(0.5*(1+math.Sin(theta)), 0.5*math.Cos(theta))
		}
		pr.weight = weight
	}

	return pr, nil
}

// Len returns the number of real samples.
func (p *PlanReal[F]) Len() int {
	if p == nil {
		return 0
	}
	return p.n
}

// SpectrumLen returns the number of complex frequency bins, n/2+1.
func (p *PlanReal[F]) SpectrumLen() int {
	if p == nil {
		return 0
	}
	return p.n/2 + 1
}

// Forward computes the real-to-complex FFT.
// dst must have length >= SpectrumLen(); src must have length >= Len().
func (p *PlanReal[F]) Forward(dst []complex128, src []F) error {
	if p == nil {
		return ErrNotImplemented
	}
	if dst == nil || src == nil {
		return ErrNilSlice
	}
	if len(src) < p.n || len(dst) < p.SpectrumLen() {
		return ErrLengthMismatch
	}

	if p.n == 1 {
		dst[0] = complex(float64(src[0]), 0)
		return nil
	}

	if p.even {
		return p.forwardEven(dst, src)
	}
	p.forwardOdd(dst, src)
	return nil
}

// Inverse reconstructs n real samples from the n/2+1 complex spectrum.
// dst must have length >= Len(); src must have length >= SpectrumLen().
func (p *PlanReal[F]) Inverse(dst []F, src []complex128) error {
	if p == nil {
		return ErrNotImplemented
	}
	if dst == nil || src == nil {
		return ErrNilSlice
	}
	if len(dst) < p.n || len(src) < p.SpectrumLen() {
		return ErrLengthMismatch
	}

	if p.n == 1 {
		dst[0] = F(real(src[0]))
		return nil
	}

	if p.even {
		return p.inverseEven(dst, src)
	}
	p.inverseOdd(dst, src)
	return nil
}

func (p *PlanReal[F]) forwardEven(dst []complex128, src []F) error {
	half := p.half
	buf := make([]complex128, half)
	for i := 0; i < half; i++ {
		buf[i] = complex(float64(src[2*i]), float64(src[2*i+1]))
	}

	if err := p.inner.Forward(buf, buf); err != nil {
		return err
	}

	y0r, y0i := real(buf[0]), imag(buf[0])
	dst[0] = complex(y0r+y0i, 0)
	dst[half] = complex(y0r-y0i, 0)

	for k := 1; k < half; k++ {
		a := buf[k]
		bSrc := buf[half-k]
		b := complex(real(bSrc), -imag(bSrc))
		w := p.weight[k]
		c := w * (a - b)
		dst[k] = a - c
	}

	return nil
}

func (p *PlanReal[F]) inverseEven(dst []F, src []complex128) error {
	half := p.half
	buf := make([]complex128, half)

	repackInverse(buf, src, p.weight)

	if err := p.inner.Inverse(buf, buf); err != nil {
		return err
	}

	// p.inner.Inverse is the unscaled length-half C2C inverse, so buf here
	// holds half*x_packed. Plan's C2C convention has each transformed axis
	// contribute a factor of its own length to the unscaled round trip; this
	// axis has length n = 2*half, so buf still needs one more factor of 2.
	for i := 0; i < half; i++ {
		dst[2*i] = F(2 * real(buf[i]))
		dst[2*i+1] = F(2 * imag(buf[i]))
	}

	return nil
}

// repackInverse reconstructs the packed half-length spectrum from the
// n/2+1 half-spectrum, undoing the recombination Forward performs.
func repackInverse(dst, src, weight []complex128) {
	half := len(dst)
	if half == 0 {
		return
	}

	x0 := real(src[0])
	xh := real(src[half])
	dst[0] = complex(0.5*(x0+xh), 0.5*(x0-xh))

	for k := 1; k < half; k++ {
		m := half - k
		if k > m {
			continue
		}

		xk := src[k]
		xmk := src[m]
		xmkc := complex(real(xmk), -imag(xmk))

		u := weight[k]
		oneMinusU := complex(1, 0) - u
		det := complex(1, 0) - 2*u
		invDet := complex(real(det), -imag(det)) // det lies on the unit circle

		a := (xk*oneMinusU - xmkc*u) * invDet
		b := (oneMinusU*xmkc - u*xk) * invDet

		dst[k] = a
		if k != m {
			dst[m] = complex(real(b), -imag(b))
		}
	}
}

func (p *PlanReal[F]) forwardOdd(dst []complex128, src []F) {
	n := p.n
	for k := 0; k <= p.half; k++ {
		var acc complex128
		for j := 0; j < n; j++ {
			angle := -2 * math.Pi * float64(k) * float64(j) / float64(n)
			acc += complex(float64(src[j]), 0) * complex(math.Cos(angle), math.Sin(angle))
		}
		dst[k] = acc
	}
}

func (p *PlanReal[F]) inverseOdd(dst []F, src []complex128) {
	n := p.n
	for j := 0; j < n; j++ {
		var acc complex128
		for k := 0; k < n; k++ {
			var xk complex128
			if k <= p.half {
				xk = src[k]
			} else {
				xk = complex(real(src[n-k]), -imag(src[n-k]))
			}
			angle := 2 * math.Pi * float64(k) * float64(j) / float64(n)
			acc += xk * complex(math.Cos(angle), math.Sin(angle))
		}
		// acc is already the unscaled inverse (n*x_true), matching Plan's own
		// unscaled C2C convention: no further division by n here.
		dst[j] = F(real(acc))
	}
}
