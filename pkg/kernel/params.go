// Package kernel implements the closed-form SE(3) contextual-enhancement
// kernel: Euler-angle and rotation helpers, the coordinate map that reduces a
// position/orientation pair to a canonical 6-vector, the kernel function
// itself, the pairwise evaluator and the extent estimator.
//
// Everything here is pure numeric code. Functions never fail and never
// validate their inputs: non-unit orientations or NaN parameters propagate as
// NaN results. Validate parameters with [Params.Validate] before use.
//
// # Usage
//
//	p := kernel.Params{D33: 1.0, D44: 0.04, T: 1.0}
//	if err := p.Validate(); err != nil {
//	    return err
//	}
//	e := kernel.NewEvaluator(p)
//	ext := kernel.EstimateExtent(e)
//	v := e.K2(x, y, r, v)
package kernel

import (
	"fmt"

	"github.com/matzehuels/sekernel/pkg/errors"
)

// Default diffusion parameters, the values the reference datasets were
// regularised with.
const (
	DefaultD33 = 1.0
	DefaultD44 = 0.02
	DefaultT   = 1.0
)

// Params holds the diffusion coefficients and time of the kernel.
type Params struct {
	D33 float64 `json:"d33" toml:"d33"` // spatial diffusion
	D44 float64 `json:"d44" toml:"d44"` // angular diffusion
	T   float64 `json:"t" toml:"t"`     // diffusion time
}

// DefaultParams returns the default parameter set.
func DefaultParams() Params {
	return Params{D33: DefaultD33, D44: DefaultD44, T: DefaultT}
}

// Validate rejects non-positive, NaN and infinite parameters.
func (p Params) Validate() error {
	if err := errors.ValidatePositive("D33", p.D33); err != nil {
		return err
	}
	if err := errors.ValidatePositive("D44", p.D44); err != nil {
		return err
	}
	return errors.ValidatePositive("t", p.T)
}

// String formats the parameters the way they show up in logs.
func (p Params) String() string {
	return fmt.Sprintf("D33=%g D44=%g t=%g", p.D33, p.D44, p.T)
}
