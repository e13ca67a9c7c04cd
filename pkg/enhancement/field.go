package enhancement

import (
	"os"

	"gonum.org/v1/gonum/floats"

	"github.com/matzehuels/sekernel/pkg/errors"
	"github.com/matzehuels/sekernel/pkg/lut"
)

// Field is a volume of orientation distributions laid out [x][y][z][o].
type Field struct {
	Nx, Ny, Nz int
	NOrient    int
	Data       []float64
}

// NewField allocates a zeroed field.
func NewField(nx, ny, nz, nOrient int) (Field, error) {
	if nx < 1 || ny < 1 || nz < 1 || nOrient < 1 {
		return Field{}, errors.New(errors.ErrCodeShapeMismatch, "invalid field shape [%d %d %d %d]", nx, ny, nz, nOrient)
	}
	return Field{Nx: nx, Ny: ny, Nz: nz, NOrient: nOrient, Data: make([]float64, nx*ny*nz*nOrient)}, nil
}

// Voxels returns the number of spatial positions.
func (f Field) Voxels() int { return f.Nx * f.Ny * f.Nz }

// Index returns the flat offset of (x, y, z, o).
func (f Field) Index(x, y, z, o int) int {
	return ((x*f.Ny+y)*f.Nz+z)*f.NOrient + o
}

// At returns the value at (x, y, z, o).
func (f Field) At(x, y, z, o int) float64 { return f.Data[f.Index(x, y, z, o)] }

// Set stores a value at (x, y, z, o).
func (f Field) Set(x, y, z, o int, v float64) { f.Data[f.Index(x, y, z, o)] = v }

// Max returns the largest value, or 0 for an empty field.
func (f Field) Max() float64 {
	if len(f.Data) == 0 {
		return 0
	}
	return floats.Max(f.Data)
}

func (f Field) validate() error {
	if f.Nx < 1 || f.Ny < 1 || f.Nz < 1 || f.NOrient < 1 {
		return errors.New(errors.ErrCodeShapeMismatch, "invalid field shape [%d %d %d %d]", f.Nx, f.Ny, f.Nz, f.NOrient)
	}
	if len(f.Data) != f.Voxels()*f.NOrient {
		return errors.New(errors.ErrCodeShapeMismatch, "field data has %d values, shape needs %d", len(f.Data), f.Voxels()*f.NOrient)
	}
	return nil
}

// ReadField loads a float64 .npy array of shape [nx, ny, nz, n].
func ReadField(path string) (Field, error) {
	fh, err := os.Open(path)
	if os.IsNotExist(err) {
		return Field{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open field %s", path)
	}
	if err != nil {
		return Field{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "open field %s", path)
	}
	defer fh.Close()

	dims, data, err := lut.ReadNpy(fh)
	if err != nil {
		return Field{}, err
	}
	if len(dims) != 4 {
		return Field{}, errors.New(errors.ErrCodeShapeMismatch, "field must have 4 dimensions, got %v", dims)
	}
	f := Field{Nx: dims[0], Ny: dims[1], Nz: dims[2], NOrient: dims[3], Data: data}
	return f, f.validate()
}

// WriteField stores f as a float64 .npy array.
func WriteField(path string, f Field) error {
	if err := f.validate(); err != nil {
		return err
	}
	fh, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	if err := lut.WriteNpy(fh, []int{f.Nx, f.Ny, f.Nz, f.NOrient}, f.Data); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}
