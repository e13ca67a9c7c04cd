package lut

import (
	"bytes"
	"io"

	"github.com/kshedden/gonpy"

	"github.com/matzehuels/sekernel/pkg/errors"
)

// Encode serialises a table as a .npy array of float64 with its five
// dimensions in C order.
func Encode(t *Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteNpy(&buf, t.shape.Dims(), t.data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses a table written by Encode.
func Decode(data []byte) (*Table, error) {
	dims, values, err := ReadNpy(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(dims) != 5 {
		return nil, errors.New(errors.ErrCodeShapeMismatch, "table must have 5 dimensions, got %d", len(dims))
	}
	if dims[2] != dims[3] || dims[3] != dims[4] {
		return nil, errors.New(errors.ErrCodeShapeMismatch, "table window must be cubic, got %v", dims)
	}
	return FromData(Shape{NumV: dims[0], NumR: dims[1], N: dims[2]}, values)
}

// WriteNpy writes a row-major float64 array with the given shape to w.
func WriteNpy(w io.Writer, shape []int, data []float64) error {
	npw, err := gonpy.NewWriter(nopCloser{w})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create npy writer")
	}
	npw.Shape = shape
	if err := npw.WriteFloat64(data); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write npy data")
	}
	return nil
}

// ReadNpy reads a float64 .npy array and returns its shape and row-major
// values.
func ReadNpy(r io.Reader) ([]int, []float64, error) {
	npr, err := gonpy.NewReader(r)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read npy header")
	}
	if npr.ColumnMajor {
		return nil, nil, errors.New(errors.ErrCodeInvalidFormat, "fortran-ordered arrays are not supported")
	}
	values, err := npr.GetFloat64()
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read npy data")
	}
	n := 1
	for _, d := range npr.Shape {
		n *= d
	}
	if n != len(values) {
		return nil, nil, errors.New(errors.ErrCodeInvalidFormat, "npy shape %v does not match %d values", npr.Shape, len(values))
	}
	return npr.Shape, values, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
