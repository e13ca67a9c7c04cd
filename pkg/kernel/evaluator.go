package kernel

import "gonum.org/v1/gonum/spatial/r3"

// Axis is the canonical orientation (0,0,1).
var Axis = r3.Vec{Z: 1}

// Evaluator evaluates the kernel for arbitrary position/orientation pairs.
// It holds no mutable state and is safe for concurrent use by value.
type Evaluator struct {
	params Params
	norm   float64
}

// NewEvaluator precomputes the normalisation constant for p.
func NewEvaluator(p Params) Evaluator {
	return Evaluator{params: p, norm: p.Norm()}
}

// Params returns the parameters the evaluator was built with.
func (e Evaluator) Params() Params { return e.params }

// K2 evaluates the kernel between position x with orientation r and
// position y with orientation v. The offset and r are expressed in the
// local frame of v before mapping to canonical coordinates.
func (e Evaluator) K2(x, y, r, v r3.Vec) float64 {
	a := r3.Sub(x, y)
	m := Rotation(EulerAngles(v)).Transpose()
	arg1 := m.MulVec(a)
	beta, gamma := EulerAngles(m.MulVec(r))
	c := CoordinateMap(arg1.X, arg1.Y, arg1.Z, beta, gamma)
	return e.params.kernel(e.norm, c)
}

// Max is the kernel value at zero offset with coinciding orientations, the
// global maximum the extent estimator normalises against.
func (e Evaluator) Max() float64 {
	return e.K2(r3.Vec{}, r3.Vec{}, Axis, Axis)
}
