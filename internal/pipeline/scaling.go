package pipeline

import "math"

// Scaling selects how a transform's output is normalized against the
// unscaled convention every executor and reshape stage uses internally.
type Scaling int

const (
	// ScaleNone applies no normalization: a forward transform followed by
	// a backward transform scales the data by N, the total point count.
	ScaleNone Scaling = iota
	// ScaleFull divides by N once, so backward(forward(x)) == x.
	ScaleFull
	// ScaleSymmetric divides by sqrt(N) on both forward and backward, so
	// each direction is unitary.
	ScaleSymmetric
)

// ScaleFactor computes the scaling multiplier for s against a transform
// whose three FFT axis lengths are fullLens.
func ScaleFactor(fullLens [3]int, s Scaling) float64 {
	n := float64(fullLens[0]) * float64(fullLens[1]) * float64(fullLens[2])
	switch s {
	case ScaleFull:
		return 1 / n
	case ScaleSymmetric:
		return 1 / math.Sqrt(n)
	default:
		return 1
	}
}
