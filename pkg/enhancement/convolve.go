package enhancement

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/sekernel/pkg/errors"
	"github.com/matzehuels/sekernel/pkg/lut"
	"github.com/matzehuels/sekernel/pkg/observability"
)

// ConvolveOptions configures ConvolveSF.
type ConvolveOptions struct {
	// Workers is the number of goroutines. Zero uses GOMAXPROCS.
	Workers int

	// Normalize rescales the output so its maximum equals the input maximum.
	Normalize bool
}

// ConvolveSF applies the shift-twist convolution of a lookup table to an
// orientation field:
//
//	out[c, cv] = Σ_{p in window(c) ∩ volume} Σ_r field[p, r] · T[cv, r, p-c]
//
// The field must have one channel per table v orientation. Output channels
// are split into contiguous ranges, one per worker.
func ConvolveSF(ctx context.Context, f Field, t *lut.Table, opts ConvolveOptions) (Field, error) {
	if err := f.validate(); err != nil {
		return Field{}, err
	}
	if err := errors.ValidateWorkers(opts.Workers); err != nil {
		return Field{}, err
	}
	shape := t.Shape()
	if f.NOrient != shape.NumV {
		return Field{}, errors.New(errors.ErrCodeShapeMismatch,
			"field has %d orientations, table has %d", f.NOrient, shape.NumV)
	}

	start := time.Now()
	observability.Pipeline().OnEnhanceStart(ctx, f.Voxels())

	out, _ := NewField(f.Nx, f.Ny, f.Nz, f.NOrient)
	workers := lut.Workers(opts.Workers, shape.NumV)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo, hi := lut.Partition(shape.NumV, workers, w)
		g.Go(func() error {
			for cv := lo; cv < hi; cv++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				convolveChannel(out, f, t, cv)
			}
			return nil
		})
	}
	err := g.Wait()
	observability.Pipeline().OnEnhanceComplete(ctx, f.Voxels(), time.Since(start), err)
	if err != nil {
		return Field{}, err
	}

	if opts.Normalize {
		if m := out.Max(); m > 0 {
			scale := f.Max() / m
			for i := range out.Data {
				out.Data[i] *= scale
			}
		}
	}
	return out, nil
}

// convolveChannel fills output orientation cv for every voxel. Only indices
// with that cv are written.
func convolveChannel(out, f Field, t *lut.Table, cv int) {
	hn := t.HalfWidth()
	n := t.Shape().N
	numR := t.Shape().NumR
	slab := t.Slab(cv)
	cube := n * n * n
	for cx := 0; cx < f.Nx; cx++ {
		x0, x1 := max(0, cx-hn), min(f.Nx, cx+hn+1)
		for cy := 0; cy < f.Ny; cy++ {
			y0, y1 := max(0, cy-hn), min(f.Ny, cy+hn+1)
			for cz := 0; cz < f.Nz; cz++ {
				z0, z1 := max(0, cz-hn), min(f.Nz, cz+hn+1)
				var total float64
				for x := x0; x < x1; x++ {
					for y := y0; y < y1; y++ {
						for z := z0; z < z1; z++ {
							base := f.Index(x, y, z, 0)
							cell := ((x-cx+hn)*n+y-cy+hn)*n + z - cz + hn
							for r := 0; r < numR; r++ {
								total += f.Data[base+r] * slab[r*cube+cell]
							}
						}
					}
				}
				out.Set(cx, cy, cz, cv, total)
			}
		}
	}
}
