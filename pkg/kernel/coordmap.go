package kernel

import "math"

// Coordinate6 is the canonical coordinate consumed by [Params.Kernel]:
// three spatial components, two angular components and a trailing zero.
type Coordinate6 [6]float64

// CoordinateMap maps a local position (x,y,z) and a relative rotation
// (beta, gamma) to the exponential coordinates of the SE(3) logarithm.
//
// beta == 0 is the flat case and returns (x,y,z,0,0,0) for any gamma. The
// general branch divides by beta and by tan(beta/2); values of beta close to
// but not equal to zero are not special-cased and lose precision there.
func CoordinateMap(x, y, z, beta, gamma float64) Coordinate6 {
	if beta == 0 {
		return Coordinate6{x, y, z, 0, 0, 0}
	}

	q := math.Abs(beta)
	cg, sg := math.Cos(gamma), math.Sin(gamma)
	cotq2 := 1.0 / math.Tan(q/2)
	k := 1 - 0.5*q*cotq2
	b2 := beta * beta
	q2 := q * q

	var c Coordinate6
	c[0] = -0.5*z*beta*cg + x*(1-(b2*cg*cg*k)/q2) - (y*b2*cg*k*sg)/q2
	c[1] = -0.5*z*beta*sg - (x*b2*cg*k*sg)/q2 + y*(1-(b2*k*sg*sg)/q2)
	c[2] = 0.5*x*beta*cg + 0.5*y*beta*sg + z*(1+(k*(-b2*cg*cg-b2*sg*sg))/q2)
	c[3] = -beta * sg
	c[4] = beta * cg
	c[5] = 0
	return c
}
