// Package sphere provides the discretised orientation sets the kernel is
// tabulated on, and the sources they are resolved from.
//
// A [Source] is one of three variants, resolved once when a kernel is built:
//
//	sphere.FromSet(vs)         // explicit unit vectors
//	sphere.FromCount(n, seed)  // n charges dispersed on the hemisphere
//	sphere.Default()           // the fixed "repulsion100" reference set
package sphere

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/sekernel/pkg/errors"
)

// Sphere is an ordered set of unit orientation vectors.
type Sphere struct {
	Name     string
	vertices []r3.Vec
}

// New builds a sphere from vertices, normalising each one.
// A zero or non-finite vertex is rejected.
func New(name string, vertices []r3.Vec) (*Sphere, error) {
	if len(vertices) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidOrientations, "orientation set is empty")
	}
	vs := make([]r3.Vec, len(vertices))
	for i, v := range vertices {
		n := r3.Norm(v)
		if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, errors.New(errors.ErrCodeInvalidOrientations, "orientation %d is degenerate: %v", i, v)
		}
		vs[i] = r3.Scale(1/n, v)
	}
	return &Sphere{Name: name, vertices: vs}, nil
}

// Len returns the number of orientations.
func (s *Sphere) Len() int { return len(s.vertices) }

// Vertices returns a copy of the orientations.
func (s *Sphere) Vertices() []r3.Vec {
	out := make([]r3.Vec, len(s.vertices))
	copy(out, s.vertices)
	return out
}

// String implements fmt.Stringer.
func (s *Sphere) String() string {
	if s.Name != "" {
		return fmt.Sprintf("%s (%d orientations)", s.Name, len(s.vertices))
	}
	return fmt.Sprintf("%d orientations", len(s.vertices))
}
