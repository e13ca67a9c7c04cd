package lut

import (
	"context"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/sekernel/pkg/errors"
	"github.com/matzehuels/sekernel/pkg/kernel"
)

// BuildOptions configures Build.
type BuildOptions struct {
	// TestMode restricts the r axis to the first orientation.
	TestMode bool

	// Workers is the number of goroutines. Zero uses GOMAXPROCS.
	Workers int

	// Progress, if set, is called after each finished v slab with the number
	// of slabs done so far. It may be called from several goroutines.
	Progress func(done, total int)
}

// Build evaluates the kernel on every cell of the table:
//
//	cell[v, r, dx+hn, dy+hn, dz+hn] = K2((dx,dy,dz), 0, o[r], o[v])
//
// The v axis is split into contiguous ranges, one per worker, and each worker
// writes only its own slabs. The result does not depend on the worker count.
// Cancellation is observed between slabs.
func Build(ctx context.Context, e kernel.Evaluator, orientations []r3.Vec, ext kernel.Extent, opts BuildOptions) (*Table, error) {
	if len(orientations) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidOrientations, "no orientations to tabulate")
	}
	if err := errors.ValidateWorkers(opts.Workers); err != nil {
		return nil, err
	}

	numR := len(orientations)
	if opts.TestMode {
		numR = 1
	}
	b, err := NewBuilder(Shape{NumV: len(orientations), NumR: numR, N: ext.N})
	if err != nil {
		return nil, err
	}

	numV := len(orientations)
	workers := Workers(opts.Workers, numV)

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo, hi := Partition(numV, workers, w)
		g.Go(func() error {
			for v := lo; v < hi; v++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				fillSlab(b.VSlab(v), e, orientations, v, numR, ext)
				if opts.Progress != nil {
					opts.Progress(int(done.Add(1)), numV)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return b.Freeze(), nil
}

// fillSlab computes the [r][i][j][k] block for orientation index v.
func fillSlab(slab []float64, e kernel.Evaluator, o []r3.Vec, v, numR int, ext kernel.Extent) {
	n := ext.N
	hn := ext.HalfWidth()
	origin := r3.Vec{}
	idx := 0
	for r := 0; r < numR; r++ {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				for k := 0; k < n; k++ {
					x := r3.Vec{X: float64(i - hn), Y: float64(j - hn), Z: float64(k - hn)}
					slab[idx] = e.K2(x, origin, o[r], o[v])
					idx++
				}
			}
		}
	}
}

// Workers resolves a worker-count hint for n slabs: zero selects
// runtime.GOMAXPROCS(0), and the result never exceeds n.
func Workers(requested, n int) int {
	w := requested
	if w == 0 {
		w = runtime.GOMAXPROCS(0)
	}
	return max(1, min(w, n))
}

// Partition returns the half-open range of items owned by worker w when n
// items are split as evenly as possible over the given number of workers.
func Partition(n, workers, w int) (lo, hi int) {
	base, rem := n/workers, n%workers
	lo = w*base + min(w, rem)
	hi = lo + base
	if w < rem {
		hi++
	}
	return lo, hi
}
