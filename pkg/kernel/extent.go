package kernel

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// extentStep is the sampling step along the principal axis.
	extentStep = 0.1

	// extentCutoff is the relative kernel value below which the window ends.
	extentCutoff = 0.1
)

// Extent is the size of the cubic lookup window. N is always odd.
type Extent struct {
	N int `json:"n"`
}

// HalfWidth returns (N-1)/2, the offset of the centre cell.
func (e Extent) HalfWidth() int { return (e.N - 1) / 2 }

// Cells returns N³.
func (e Extent) Cells() int { return e.N * e.N * e.N }

// EstimateExtent samples the kernel along the z axis in steps of 0.1 until it
// falls strictly below 10% of its peak, then returns the odd window diameter
// 2·ceil(z), minus one if even. Only one axis is sampled.
func EstimateExtent(e Evaluator) Extent {
	kernelmax := e.Max()
	origin := r3.Vec{}
	z := scanExtent(func(z float64) float64 {
		return e.K2(r3.Vec{Z: z}, origin, Axis, Axis) / kernelmax
	})

	n := int(math.Ceil(z)) * 2
	if n%2 == 0 {
		n--
	}
	return Extent{N: n}
}

// scanExtent returns the first z on the 0.1 grid where ratio(z) is below
// the cutoff. A ratio exactly at the cutoff keeps scanning.
func scanExtent(ratio func(z float64) float64) float64 {
	// z accumulates the step instead of multiplying it out; the stopping
	// point depends on that rounding.
	z := 0.0
	for r := 1.0; r >= extentCutoff; {
		z += extentStep
		r = ratio(z)
	}
	return z
}
