// Package render draws heat maps of lookup table slices.
//
// A table cell depends on two orientations and a 3-D offset. [Slice] fixes
// both orientations and one spatial axis and exposes the remaining plane as a
// gonum/plot grid; [HeatMap] turns it into a plot that [Encode] or [Save]
// writes as PNG, SVG or PDF.
//
//	g, err := render.Slice(table, v, r, render.AxisZ, 0)
//	p, err := render.HeatMap(g, "v=0 r=0 dz=0")
//	err = render.Save(p, "slice.png")
package render

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/matzehuels/sekernel/pkg/errors"
	"github.com/matzehuels/sekernel/pkg/lut"
)

// Output formats.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
	FormatPDF = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG: true,
	FormatSVG: true,
	FormatPDF: true,
}

// Default plot size.
const (
	DefaultWidth  = 6 * vg.Inch
	DefaultHeight = 5 * vg.Inch
)

// paletteSize is the number of colours in the heat map palette.
const paletteSize = 255

// Axis names the spatial axis held fixed by a slice.
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
	AxisZ Axis = "z"
)

// ParseAxis accepts "x", "y" or "z" in any case.
func ParseAxis(s string) (Axis, error) {
	switch a := Axis(strings.ToLower(s)); a {
	case AxisX, AxisY, AxisZ:
		return a, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "invalid axis %q (must be one of: x, y, z)", s)
}

// Grid is a plane of table values. It implements plotter.GridXYZ with
// columns and rows indexed by spatial offset.
type Grid struct {
	hn     int
	values [][]float64 // [col][row]
	labels [2]string
}

// Slice extracts the plane of table t at orientations (v, r) where the given
// axis has offset index. Offsets run from -HalfWidth to HalfWidth.
func Slice(t *lut.Table, v, r int, axis Axis, index int) (Grid, error) {
	s := t.Shape()
	hn := t.HalfWidth()
	if v < 0 || v >= s.NumV {
		return Grid{}, errors.New(errors.ErrCodeInvalidInput, "v index %d out of range [0,%d)", v, s.NumV)
	}
	if r < 0 || r >= s.NumR {
		return Grid{}, errors.New(errors.ErrCodeInvalidInput, "r index %d out of range [0,%d)", r, s.NumR)
	}
	if index < -hn || index > hn {
		return Grid{}, errors.New(errors.ErrCodeInvalidInput, "offset %d out of range [%d,%d]", index, -hn, hn)
	}

	g := Grid{hn: hn, values: make([][]float64, s.N)}
	for c := range g.values {
		g.values[c] = make([]float64, s.N)
		for row := range g.values[c] {
			a, b := c-hn, row-hn
			switch axis {
			case AxisX:
				g.values[c][row] = t.At(v, r, index, a, b)
			case AxisY:
				g.values[c][row] = t.At(v, r, a, index, b)
			case AxisZ:
				g.values[c][row] = t.At(v, r, a, b, index)
			default:
				return Grid{}, errors.New(errors.ErrCodeInvalidInput, "invalid axis %q", axis)
			}
		}
	}
	switch axis {
	case AxisX:
		g.labels = [2]string{"dy", "dz"}
	case AxisY:
		g.labels = [2]string{"dx", "dz"}
	default:
		g.labels = [2]string{"dx", "dy"}
	}
	return g, nil
}

// Dims implements plotter.GridXYZ.
func (g Grid) Dims() (c, r int) {
	if len(g.values) == 0 {
		return 0, 0
	}
	return len(g.values), len(g.values[0])
}

// Z implements plotter.GridXYZ.
func (g Grid) Z(c, r int) float64 { return g.values[c][r] }

// X implements plotter.GridXYZ.
func (g Grid) X(c int) float64 { return float64(c - g.hn) }

// Y implements plotter.GridXYZ.
func (g Grid) Y(r int) float64 { return float64(r - g.hn) }

// Labels returns the names of the column and row axes.
func (g Grid) Labels() (x, y string) { return g.labels[0], g.labels[1] }

// HeatMap plots g with a smooth blue-red palette.
func HeatMap(g Grid, title string) (*plot.Plot, error) {
	c, r := g.Dims()
	if c == 0 || r == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty grid")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text, p.Y.Label.Text = g.Labels()

	cm := moreland.SmoothBlueRed()
	h := plotter.NewHeatMap(g, cm.Palette(paletteSize))
	if h.Min == h.Max {
		// a flat plane would divide by zero when picking colours
		h.Max = h.Min + 1
	}
	p.Add(h)
	return p, nil
}

// Encode renders p in the given format.
func Encode(p *plot.Plot, format string) ([]byte, error) {
	if !ValidFormats[format] {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: png, svg, pdf)", format)
	}
	w, err := p.WriterTo(DefaultWidth, DefaultHeight, format)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
	}
	return buf.Bytes(), nil
}

// Save writes p to path; the format follows the file extension.
func Save(p *plot.Plot, path string) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidPath, "unsupported output extension %q", filepath.Ext(path))
	}
	if err := p.Save(DefaultWidth, DefaultHeight, path); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "save %s", path)
	}
	return nil
}

// Title formats the default heat map title for a slice.
func Title(v, r int, axis Axis, index int) string {
	return fmt.Sprintf("v=%d r=%d d%s=%d", v, r, axis, index)
}
