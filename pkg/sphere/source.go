package sphere

import (
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/sekernel/pkg/errors"
)

const (
	// DefaultSeed seeds the charge placement for FromCount when none is given.
	DefaultSeed = uint64(42)

	// DefaultName names the fixed reference set returned by Default.
	DefaultName = "repulsion100"

	// countIters is the number of dispersion steps for FromCount.
	countIters = 1000

	// defaultIters is the number of dispersion steps for the reference set.
	defaultIters = 5000

	// defaultCharges is the number of hemisphere charges in the reference set;
	// mirrored, they give 100 vertices.
	defaultCharges = 50
)

// Kind identifies which variant a Source is.
type Kind string

const (
	KindSet     Kind = "set"
	KindCount   Kind = "count"
	KindDefault Kind = "default"
)

// Source describes where a kernel's orientations come from.
// The three variants are created with FromSet, FromCount and Default.
type Source interface {
	// Kind returns the variant tag.
	Kind() Kind

	// Resolve produces the orientation set.
	Resolve() (*Sphere, error)

	sealed()
}

// FromSet uses an explicit list of orientation vectors. Each is normalised.
func FromSet(vertices []r3.Vec) Source {
	vs := make([]r3.Vec, len(vertices))
	copy(vs, vertices)
	return setSource{vertices: vs}
}

// FromCount generates n orientations by dispersing n random charges on the
// hemisphere. The result is deterministic for a given seed; seed 0 selects
// DefaultSeed.
func FromCount(n int, seed uint64) Source {
	if seed == 0 {
		seed = DefaultSeed
	}
	return countSource{n: n, seed: seed}
}

// Default returns the fixed 100-orientation reference set.
func Default() Source {
	return defaultSource{}
}

type setSource struct{ vertices []r3.Vec }

func (setSource) Kind() Kind { return KindSet }
func (setSource) sealed()    {}

func (s setSource) Resolve() (*Sphere, error) {
	return New("", s.vertices)
}

type countSource struct {
	n    int
	seed uint64
}

func (countSource) Kind() Kind { return KindCount }
func (countSource) sealed()    {}

func (s countSource) Resolve() (*Sphere, error) {
	if err := errors.ValidateOrientationCount(s.n); err != nil {
		return nil, err
	}
	charges, _ := DisperseCharges(randomHemisphere(s.n, s.seed), countIters, defaultConst)
	return New("", charges)
}

type defaultSource struct{}

func (defaultSource) Kind() Kind { return KindDefault }
func (defaultSource) sealed()    {}

// Resolve returns the reference set. It is dispersed once per process; later
// calls share the vertices.
func (defaultSource) Resolve() (*Sphere, error) {
	s, err := defaultSphere()
	if err != nil {
		return nil, err
	}
	return &Sphere{Name: s.Name, vertices: s.vertices}, nil
}

// defaultBuilds counts dispersions of the reference set.
var defaultBuilds atomic.Int64

var defaultSphere = sync.OnceValues(func() (*Sphere, error) {
	defaultBuilds.Add(1)
	charges, _ := DisperseCharges(randomHemisphere(defaultCharges, DefaultSeed), defaultIters, defaultConst)
	vs := make([]r3.Vec, 0, 2*len(charges))
	vs = append(vs, charges...)
	for _, c := range charges {
		vs = append(vs, r3.Scale(-1, c))
	}
	return New(DefaultName, vs)
})

// randomHemisphere places n points with theta uniform in [0,π) and phi
// uniform in [0,2π).
func randomHemisphere(n int, seed uint64) []r3.Vec {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	vs := make([]r3.Vec, n)
	for i := range vs {
		theta := math.Pi * rng.Float64()
		phi := 2 * math.Pi * rng.Float64()
		st := math.Sin(theta)
		vs[i] = r3.Vec{X: st * math.Cos(phi), Y: st * math.Sin(phi), Z: math.Cos(theta)}
	}
	return vs
}
