package kernel

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// poleTol is the squared per-component distance under which a vector is
// treated as one of the poles (0,0,±1).
const poleTol = 1e-5

// Mat3 is a 3×3 row-major matrix. Value type, no heap allocation in the hot loop.
type Mat3 [3][3]float64

// Transpose returns Aᵀ.
func (A Mat3) Transpose() Mat3 {
	var R Mat3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			R[r][c] = A[c][r]
		}
	}
	return R
}

// MulVec returns A·v.
func (A Mat3) MulVec(v r3.Vec) r3.Vec {
	return r3.Vec{
		X: A[0][0]*v.X + A[0][1]*v.Y + A[0][2]*v.Z,
		Y: A[1][0]*v.X + A[1][1]*v.Y + A[1][2]*v.Z,
		Z: A[2][0]*v.X + A[2][1]*v.Y + A[2][2]*v.Z,
	}
}

// EulerAngles maps a unit vector to (beta, gamma) such that
// Rotation(beta, gamma)·(0,0,1) reproduces it. Vectors within poleTol of
// (0,0,1) map to (0,0) and of (0,0,-1) to (π,0). Non-unit input is not
// checked.
func EulerAngles(v r3.Vec) (beta, gamma float64) {
	x2, y2 := v.X*v.X, v.Y*v.Y
	switch {
	case x2 < poleTol && y2 < poleTol && (v.Z-1)*(v.Z-1) < poleTol:
		return 0, 0
	case x2 < poleTol && y2 < poleTol && (v.Z+1)*(v.Z+1) < poleTol:
		return math.Pi, 0
	}
	return math.Acos(v.Z), math.Atan2(v.Y, v.X)
}

// Rotation builds the rotation matrix for the given Euler angles.
func Rotation(beta, gamma float64) Mat3 {
	cb, sb := math.Cos(beta), math.Sin(beta)
	cg, sg := math.Cos(gamma), math.Sin(gamma)
	return Mat3{
		{cb * cg, -sg, cg * sb},
		{cb * sg, cg, sb * sg},
		{-sb, 0, cb},
	}
}
