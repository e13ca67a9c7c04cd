package sphere

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// defaultConst is the initial step size of the dispersion, relative to the
// largest initial force.
const defaultConst = 0.2

// DisperseCharges spreads hemisphere charges apart by gradient steps on the
// electrostatic potential. Every charge also repels the antipode of every
// other charge, so the result covers the sphere symmetrically. A step is
// accepted only if it does not raise the potential; otherwise the step size is
// halved. It returns the final charges and the potential after each iteration.
func DisperseCharges(charges []r3.Vec, iters int, stepConst float64) ([]r3.Vec, []float64) {
	cur := make([]r3.Vec, len(charges))
	for i, c := range charges {
		cur[i] = r3.Unit(c)
	}
	potential := make([]float64, iters)
	if len(cur) < 2 || iters <= 0 {
		return cur, potential
	}

	forces, vMin := chargeForces(cur)
	var mag float64
	for _, f := range forces {
		mag += r3.Norm2(f)
	}
	mag = math.Sqrt(mag)
	if mag == 0 {
		for i := range potential {
			potential[i] = vMin
		}
		return cur, potential
	}
	step := stepConst / mag

	next := make([]r3.Vec, len(cur))
	for ii := 0; ii < iters; ii++ {
		for i := range cur {
			next[i] = r3.Unit(r3.Add(cur[i], r3.Scale(step, forces[i])))
		}
		nf, v := chargeForces(next)
		if v <= vMin {
			cur, next = next, cur
			forces = nf
			vMin = v
		} else {
			step /= 2
		}
		potential[ii] = vMin
	}
	return cur, potential
}

// chargeForces returns the tangential Coulomb force on each charge from all
// other charges and all antipodes, and the total potential.
func chargeForces(charges []r3.Vec) ([]r3.Vec, float64) {
	n := len(charges)
	forces := make([]r3.Vec, n)
	var potential float64
	for i, ci := range charges {
		var f r3.Vec
		for j, cj := range charges {
			for _, src := range [2]r3.Vec{cj, r3.Scale(-1, cj)} {
				// a charge and its own image are excluded only for the
				// direct term; the antipode still pushes
				if j == i && src == cj {
					continue
				}
				d := r3.Sub(ci, src)
				dm := r3.Norm(d)
				f = r3.Add(f, r3.Scale(1/(dm*dm*dm), d))
				potential += 1 / dm
			}
		}
		radial := r3.Dot(ci, f)
		forces[i] = r3.Sub(f, r3.Scale(radial, ci))
	}
	return forces, 2 * potential
}
