package sphere

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/sekernel/pkg/errors"
)

func TestFromSetNormalises(t *testing.T) {
	s, err := FromSet([]r3.Vec{{X: 2}, {Y: 0.5}, {X: 1, Y: 1, Z: 1}}).Resolve()
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())
	assertUnit(t, s)
	assert.Equal(t, r3.Vec{X: 1}, s.Vertices()[0])
	assert.Equal(t, r3.Vec{Y: 1}, s.Vertices()[1])
}

func TestFromSetRejectsDegenerate(t *testing.T) {
	_, err := FromSet([]r3.Vec{{X: 1}, {}}).Resolve()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidOrientations))

	_, err = FromSet(nil).Resolve()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidOrientations))
}

func TestFromSetCopiesInput(t *testing.T) {
	in := []r3.Vec{{Z: 1}}
	src := FromSet(in)
	in[0] = r3.Vec{X: 1}
	s, err := src.Resolve()
	require.NoError(t, err)
	assert.Equal(t, r3.Vec{Z: 1}, s.Vertices()[0])
}

func TestVerticesReturnsCopy(t *testing.T) {
	s, err := New("", []r3.Vec{{Z: 1}})
	require.NoError(t, err)
	vs := s.Vertices()
	vs[0] = r3.Vec{X: 1}
	assert.Equal(t, r3.Vec{Z: 1}, s.Vertices()[0])
}

func TestFromCount(t *testing.T) {
	s, err := FromCount(12, 7).Resolve()
	require.NoError(t, err)
	assert.Equal(t, 12, s.Len())
	assertUnit(t, s)

	again, err := FromCount(12, 7).Resolve()
	require.NoError(t, err)
	assert.Equal(t, s.Vertices(), again.Vertices(), "same seed must give same set")

	other, err := FromCount(12, 8).Resolve()
	require.NoError(t, err)
	assert.NotEqual(t, s.Vertices(), other.Vertices())
}

func TestFromCountRejectsBadCount(t *testing.T) {
	for _, n := range []int{0, -3, 5000} {
		_, err := FromCount(n, 0).Resolve()
		require.Error(t, err, "n=%d", n)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidOrientations), "n=%d", n)
	}
}

func TestDisperseChargesLowersPotential(t *testing.T) {
	charges, potential := DisperseCharges(randomHemisphere(20, 3), 200, defaultConst)
	require.Len(t, charges, 20)
	require.Len(t, potential, 200)
	for i := 1; i < len(potential); i++ {
		assert.LessOrEqual(t, potential[i], potential[i-1], "potential rose at step %d", i)
	}
	for _, c := range charges {
		assert.InDelta(t, 1.0, r3.Norm(c), 1e-12)
	}

	_, start := chargeForces(randomHemisphere(20, 3))
	assert.Less(t, potential[len(potential)-1], start)
}

func TestDisperseChargesDegenerate(t *testing.T) {
	charges, potential := DisperseCharges([]r3.Vec{{X: 3}}, 10, defaultConst)
	assert.Equal(t, []r3.Vec{{X: 1}}, charges)
	assert.Len(t, potential, 10)
}

func TestDefault(t *testing.T) {
	src := Default()
	assert.Equal(t, KindDefault, src.Kind())

	s, err := src.Resolve()
	require.NoError(t, err)
	assert.Equal(t, DefaultName, s.Name)
	assert.Equal(t, 100, s.Len())
	assertUnit(t, s)

	// second half mirrors the first
	vs := s.Vertices()
	for i := 0; i < 50; i++ {
		assert.InDelta(t, 0, r3.Norm(r3.Add(vs[i], vs[i+50])), 1e-12)
	}
}

func TestDefaultDispersedOnce(t *testing.T) {
	first, err := Default().Resolve()
	require.NoError(t, err)
	builds := defaultBuilds.Load()

	second, err := Default().Resolve()
	require.NoError(t, err)
	assert.Equal(t, int64(1), builds)
	assert.Equal(t, builds, defaultBuilds.Load(), "reference set dispersed again")
	assert.Equal(t, first.Vertices(), second.Vertices())

	// callers own their copy of the name
	second.Name = "renamed"
	third, err := Default().Resolve()
	require.NoError(t, err)
	assert.Equal(t, DefaultName, first.Name)
	assert.Equal(t, DefaultName, third.Name)
}

func assertUnit(t *testing.T, s *Sphere) {
	t.Helper()
	for i, v := range s.Vertices() {
		assert.InDelta(t, 1, r3.Norm(v), 1e-12, "vertex %d", i)
	}
}

func TestKinds(t *testing.T) {
	assert.Equal(t, KindSet, FromSet(nil).Kind())
	assert.Equal(t, KindCount, FromCount(3, 0).Kind())
	assert.Equal(t, KindDefault, Default().Kind())
}

func TestString(t *testing.T) {
	s, err := New("demo", []r3.Vec{{Z: 1}, {X: 1}})
	require.NoError(t, err)
	assert.Equal(t, "demo (2 orientations)", s.String())
	s.Name = ""
	assert.Equal(t, "2 orientations", s.String())
}
