package kernel

import "math"

// Norm returns the normalisation constant of the kernel for these parameters.
func (p Params) Norm() float64 {
	d33, d44, t := p.D33, p.D44, p.T
	n := 1 / (8 * math.Sqrt2)
	n *= math.Sqrt(math.Pi) * t * math.Sqrt(t*d33) * math.Sqrt(d33*d44)
	n *= 1 / (16 * math.Pi * math.Pi * d33 * d33 * d44 * d44 * t * t * t * t)
	return n
}

// Kernel evaluates the closed-form anisotropic diffusion kernel on c.
// The result is never negative; far from the origin it underflows to zero.
func (p Params) Kernel(c Coordinate6) float64 {
	return p.kernel(p.Norm(), c)
}

func (p Params) kernel(norm float64, c Coordinate6) float64 {
	d33, d44 := p.D33, p.D44
	ang := c[2]*c[2]/d33 + (c[3]*c[3]+c[4]*c[4])/d44
	a := (c[0]*c[0]+c[1]*c[1])/(d33*d44) + ang*ang + c[5]*c[5]/d44
	return norm * math.Exp(-math.Sqrt(a)/(4*p.T))
}
