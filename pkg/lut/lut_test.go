package lut

import (
	"bytes"
	"context"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/sekernel/pkg/errors"
	"github.com/matzehuels/sekernel/pkg/kernel"
)

var (
	testParams = kernel.Params{D33: 1.0, D44: 0.04, T: 1.0}
	testOrient = []r3.Vec{{Z: 1}, {X: 1}, {Y: 1}, r3.Unit(r3.Vec{X: 1, Y: 1, Z: 1})}
)

func TestBuildTestMode(t *testing.T) {
	e := kernel.NewEvaluator(testParams)
	ext := kernel.EstimateExtent(e)
	o := testOrient[:2]

	tab, err := Build(context.Background(), e, o, ext, BuildOptions{TestMode: true, Workers: 1})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, ext.N, ext.N, ext.N}, tab.Shape().Dims())

	// centre cell of the first slab is the kernel maximum
	assert.Equal(t, e.K2(r3.Vec{}, r3.Vec{}, o[0], o[0]), tab.At(0, 0, 0, 0, 0))
	assert.Equal(t, e.Max(), tab.At(0, 0, 0, 0, 0))
	assert.Equal(t, e.Max(), tab.Max())

	// every v slab holds the single r = o[0] column
	for v := range o {
		want := e.K2(r3.Vec{}, r3.Vec{}, o[0], o[v])
		assert.Equal(t, want, tab.At(v, 0, 0, 0, 0), "v=%d", v)
	}
	assert.NotEqual(t, tab.At(0, 0, 0, 0, 0), tab.At(1, 0, 0, 0, 0))
}

func TestBuildCellValues(t *testing.T) {
	e := kernel.NewEvaluator(testParams)
	ext := kernel.Extent{N: 5}
	tab, err := Build(context.Background(), e, testOrient, ext, BuildOptions{})
	require.NoError(t, err)
	require.Equal(t, Shape{NumV: 4, NumR: 4, N: 5}, tab.Shape())

	hn := ext.HalfWidth()
	for v := range testOrient {
		for r := range testOrient {
			for _, d := range [][3]int{{0, 0, 0}, {-hn, 1, hn}, {2, -2, 0}} {
				x := r3.Vec{X: float64(d[0]), Y: float64(d[1]), Z: float64(d[2])}
				want := e.K2(x, r3.Vec{}, testOrient[r], testOrient[v])
				assert.Equal(t, want, tab.At(v, r, d[0], d[1], d[2]), "v=%d r=%d d=%v", v, r, d)
			}
		}
	}
}

func TestBuildParallelMatchesSerial(t *testing.T) {
	e := kernel.NewEvaluator(testParams)
	ext := kernel.EstimateExtent(e)

	serial, err := Build(context.Background(), e, testOrient, ext, BuildOptions{Workers: 1})
	require.NoError(t, err)
	for _, w := range []int{2, 3, 8, 0} {
		par, err := Build(context.Background(), e, testOrient, ext, BuildOptions{Workers: w})
		require.NoError(t, err)
		assert.True(t, serial.Equal(par), "workers=%d", w)
	}
}

func TestBuildProgress(t *testing.T) {
	e := kernel.NewEvaluator(testParams)
	calls := make(chan int, len(testOrient))
	_, err := Build(context.Background(), e, testOrient, kernel.Extent{N: 3}, BuildOptions{
		Workers:  1,
		Progress: func(done, total int) { calls <- done; assert.Equal(t, len(testOrient), total) },
	})
	require.NoError(t, err)
	close(calls)
	var got []int
	for c := range calls {
		got = append(got, c)
	}
	assert.Equal(t, []int{1, 2, 3, 4}, got)
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, kernel.NewEvaluator(testParams), testOrient, kernel.Extent{N: 3}, BuildOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildRejectsBadInput(t *testing.T) {
	e := kernel.NewEvaluator(testParams)
	_, err := Build(context.Background(), e, nil, kernel.Extent{N: 3}, BuildOptions{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidOrientations))

	_, err = Build(context.Background(), e, testOrient, kernel.Extent{N: 3}, BuildOptions{Workers: -1})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestTableSlab(t *testing.T) {
	e := kernel.NewEvaluator(testParams)
	ext := kernel.Extent{N: 3}
	tab, err := Build(context.Background(), e, testOrient, ext, BuildOptions{})
	require.NoError(t, err)

	shape := tab.Shape()
	assert.Equal(t, 4*27, shape.SlabLen())
	assert.Equal(t, 4*shape.SlabLen(), shape.Len())

	slab := tab.Slab(2)
	require.Len(t, slab, shape.SlabLen())
	// r=1, offset (-1, 0, 1)
	assert.Equal(t, tab.At(2, 1, -1, 0, 1), slab[27+0*9+1*3+2])
	assert.Equal(t, cap(slab), len(slab), "slab must not expose the next one")
}

func TestWorkers(t *testing.T) {
	procs := runtime.GOMAXPROCS(0)
	tests := []struct {
		requested, n, want int
	}{
		{0, 1 << 20, procs},
		{0, 1, 1},
		{3, 10, 3},
		{8, 4, 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Workers(tt.requested, tt.n), "Workers(%d, %d)", tt.requested, tt.n)
	}
}

func TestPartition(t *testing.T) {
	for _, tc := range []struct{ n, workers int }{{10, 3}, {4, 4}, {7, 1}, {100, 8}} {
		next := 0
		for w := 0; w < tc.workers; w++ {
			lo, hi := Partition(tc.n, tc.workers, w)
			assert.Equal(t, next, lo, "n=%d workers=%d w=%d", tc.n, tc.workers, w)
			assert.GreaterOrEqual(t, hi, lo)
			next = hi
		}
		assert.Equal(t, tc.n, next)
	}
}

func TestCodecRoundTrip(t *testing.T) {
	e := kernel.NewEvaluator(testParams)
	tab, err := Build(context.Background(), e, testOrient[:3], kernel.Extent{N: 5}, BuildOptions{})
	require.NoError(t, err)

	data, err := Encode(tab)
	require.NoError(t, err)
	got, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, tab.Shape(), got.Shape())
	assert.True(t, tab.Equal(got))
	if diff := cmp.Diff(tab.Data(), got.Data()); diff != "" {
		t.Errorf("decoded data mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("not an npy file"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

func TestDecodeRejectsWrongRank(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteNpy(&buf, []int{2, 3}, make([]float64, 6)))
	_, err := Decode(buf.Bytes())
	assert.True(t, errors.Is(err, errors.ErrCodeShapeMismatch))
}

func TestFromData(t *testing.T) {
	_, err := FromData(Shape{NumV: 1, NumR: 1, N: 3}, make([]float64, 26))
	assert.True(t, errors.Is(err, errors.ErrCodeShapeMismatch))

	_, err = FromData(Shape{NumV: 1, NumR: 1, N: 2}, make([]float64, 8))
	assert.True(t, errors.Is(err, errors.ErrCodeShapeMismatch))

	tab, err := FromData(Shape{NumV: 1, NumR: 1, N: 1}, []float64{4.5})
	require.NoError(t, err)
	assert.Equal(t, 4.5, tab.At(0, 0, 0, 0, 0))
}

func TestDataIsCopy(t *testing.T) {
	tab, err := FromData(Shape{NumV: 1, NumR: 1, N: 1}, []float64{1})
	require.NoError(t, err)
	d := tab.Data()
	d[0] = 99
	assert.Equal(t, 1.0, tab.At(0, 0, 0, 0, 0))
}

func TestAtPanicsOutOfRange(t *testing.T) {
	tab, err := FromData(Shape{NumV: 1, NumR: 1, N: 3}, make([]float64, 27))
	require.NoError(t, err)
	assert.Panics(t, func() { tab.At(0, 0, 2, 0, 0) })
	assert.Panics(t, func() { tab.At(1, 0, 0, 0, 0) })
}
