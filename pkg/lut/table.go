// Package lut holds the dense lookup table of kernel values and the builder
// that fills it.
//
// A table has shape [NumV][NumR][N][N][N] and is stored row-major in a single
// float64 slice. The first axis indexes the orientation of the receiving
// voxel, the second the orientation of the contributing voxel, and the last
// three the spatial offset shifted by the half width so that offset 0 lands
// at index (N-1)/2.
//
// Tables are immutable. They are produced by [Build], by [Builder.Freeze] or
// by [Decode], and may be shared freely between goroutines.
package lut

import (
	"fmt"
	"math"

	"github.com/matzehuels/sekernel/pkg/errors"
	"github.com/matzehuels/sekernel/pkg/kernel"
)

// Shape is the five-dimensional size of a table.
type Shape struct {
	NumV int `json:"num_v"`
	NumR int `json:"num_r"`
	N    int `json:"n"`
}

// Dims returns the shape as a slice, outermost axis first.
func (s Shape) Dims() []int {
	return []int{s.NumV, s.NumR, s.N, s.N, s.N}
}

// Len returns the total number of cells.
func (s Shape) Len() int {
	return s.NumV * s.SlabLen()
}

// SlabLen returns the number of cells belonging to one v index.
func (s Shape) SlabLen() int {
	return s.NumR * kernel.Extent{N: s.N}.Cells()
}

func (s Shape) String() string {
	return fmt.Sprintf("[%d %d %d %d %d]", s.NumV, s.NumR, s.N, s.N, s.N)
}

func (s Shape) validate() error {
	if s.NumV < 1 || s.NumR < 1 || s.N < 1 {
		return errors.New(errors.ErrCodeShapeMismatch, "invalid table shape %s", s)
	}
	if s.N%2 == 0 {
		return errors.New(errors.ErrCodeShapeMismatch, "table extent must be odd, got %d", s.N)
	}
	return nil
}

// Table is an immutable lookup table.
type Table struct {
	shape Shape
	data  []float64
}

// Shape returns the table dimensions.
func (t *Table) Shape() Shape { return t.shape }

// Extent returns the spatial window of the table.
func (t *Table) Extent() kernel.Extent { return kernel.Extent{N: t.shape.N} }

// HalfWidth returns the largest offset the table covers along each axis.
func (t *Table) HalfWidth() int { return (t.shape.N - 1) / 2 }

// At returns the kernel value for orientation indices v, r and spatial offset
// (dx, dy, dz), each offset in [-HalfWidth, HalfWidth]. It panics on
// out-of-range arguments like a slice index would.
func (t *Table) At(v, r, dx, dy, dz int) float64 {
	hn := t.HalfWidth()
	return t.data[t.index(v, r, dx+hn, dy+hn, dz+hn)]
}

// Slab returns a read-only view of the cells for one v index. The caller must
// not modify it.
func (t *Table) Slab(v int) []float64 {
	n := t.shape.SlabLen()
	return t.data[v*n : (v+1)*n : (v+1)*n]
}

// Data returns a copy of the flat row-major cell values.
func (t *Table) Data() []float64 {
	out := make([]float64, len(t.data))
	copy(out, t.data)
	return out
}

// Max returns the largest cell value.
func (t *Table) Max() float64 {
	m := math.Inf(-1)
	for _, x := range t.data {
		if x > m {
			m = x
		}
	}
	return m
}

// Equal reports whether two tables have the same shape and bit-identical
// cells.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.shape != o.shape || len(t.data) != len(o.data) {
		return false
	}
	for i := range t.data {
		if math.Float64bits(t.data[i]) != math.Float64bits(o.data[i]) {
			return false
		}
	}
	return true
}

func (t *Table) index(v, r, i, j, k int) int {
	s := t.shape
	if v < 0 || v >= s.NumV || r < 0 || r >= s.NumR ||
		i < 0 || i >= s.N || j < 0 || j >= s.N || k < 0 || k >= s.N {
		panic(fmt.Sprintf("lut: index (%d,%d,%d,%d,%d) out of range for shape %s", v, r, i, j, k, s))
	}
	return (((v*s.NumR+r)*s.N+i)*s.N+j)*s.N + k
}

// Builder is the mutable precursor of a Table. Distinct v slabs may be
// written concurrently; a single slab must have one writer.
type Builder struct {
	t      *Table
	frozen bool
}

// NewBuilder allocates a zeroed table of the given shape.
func NewBuilder(shape Shape) (*Builder, error) {
	if err := shape.validate(); err != nil {
		return nil, err
	}
	return &Builder{t: &Table{shape: shape, data: make([]float64, shape.Len())}}, nil
}

// Shape returns the shape being built.
func (b *Builder) Shape() Shape { return b.t.shape }

// VSlab returns the writable cells for orientation index v, laid out as
// [r][i][j][k].
func (b *Builder) VSlab(v int) []float64 {
	if b.frozen {
		panic("lut: write to frozen builder")
	}
	n := b.t.shape.SlabLen()
	return b.t.data[v*n : (v+1)*n : (v+1)*n]
}

// Freeze ends construction and returns the table. The builder must not be
// used afterwards.
func (b *Builder) Freeze() *Table {
	b.frozen = true
	return b.t
}

// FromData wraps existing row-major data as a table. The slice is retained.
func FromData(shape Shape, data []float64) (*Table, error) {
	if err := shape.validate(); err != nil {
		return nil, err
	}
	if len(data) != shape.Len() {
		return nil, errors.New(errors.ErrCodeShapeMismatch,
			"table data has %d cells, shape %s needs %d", len(data), shape, shape.Len())
	}
	return &Table{shape: shape, data: data}, nil
}
