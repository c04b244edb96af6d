// Package oned wraps a self-contained one-dimensional FFT engine behind the
// same shape of API the rest of the module treats as an opaque 1D executor:
// a batched, strided complex-to-complex transform and a real-to-complex
// variant that halves the spectrum along the transformed axis.
package oned

// Complex is a type constraint for the complex number types supported by
// the engine.
type Complex interface {
	~complex64 | ~complex128
}

// Float is a type constraint for the floating-point types used by the
// real-to-complex transform.
type Float interface {
	~float32 | ~float64
}
