package cotangent

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/pullback/internal/tensor"
)

// Dense is the accumulator for array-shaped values.
//
// Storage is allocated once at construction. After that every write goes
// through Accumulate, AccumulateAt or AccumulateRange and is counted by
// Touched, so callers can verify that a backward pass only paid for the
// positions its pullbacks named.
type Dense struct {
	shape   tensor.Shape
	data    []float64
	touched int  // element writes since construction
	live    bool // false while structurally zero
}

// NewDense allocates a zero-filled dense accumulator.
func NewDense(shape tensor.Shape) (*Dense, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	return &Dense{
		shape: shape.Clone(),
		data:  make([]float64, shape.NumElements()),
	}, nil
}

// DenseFrom creates a dense cotangent holding a copy of data.
func DenseFrom(data []float64, shape tensor.Shape) (*Dense, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	buf := make([]float64, len(data))
	copy(buf, data)
	return &Dense{shape: shape.Clone(), data: buf, live: true}, nil
}

// Shape returns the dense value's shape.
func (d *Dense) Shape() tensor.Shape {
	return d.shape
}

// Data returns the row-major storage. Callers must not modify it.
func (d *Dense) Data() []float64 {
	return d.data
}

// At returns the element at a flat offset.
func (d *Dense) At(offset int) float64 {
	return d.data[offset]
}

// Touched returns the number of element writes performed by accumulation.
func (d *Dense) Touched() int {
	return d.touched
}

// IsZero reports whether nothing has been written since construction.
func (d *Dense) IsZero() bool {
	return !d.live
}

// Clone returns a deep copy. The access counter is not carried over.
func (d *Dense) Clone() Value {
	buf := make([]float64, len(d.data))
	copy(buf, d.data)
	return &Dense{shape: d.shape.Clone(), data: buf, live: d.live}
}

// Accumulate adds a *Dense or *Sparse contribution of the same shape.
func (d *Dense) Accumulate(c Value) error {
	switch c := c.(type) {
	case *Dense:
		if c == nil || !d.shape.Equal(c.shape) {
			return mismatch(d, c, "")
		}
		if !c.live {
			return nil
		}
		floats.Add(d.data, c.data)
		d.touched += len(c.data)
		d.live = true
		return nil
	case *Sparse:
		if c == nil || !d.shape.Equal(c.shape) {
			return mismatch(d, c, "")
		}
		for i, off := range c.offsets {
			d.data[off] += c.values[i]
		}
		d.touched += len(c.offsets)
		d.live = d.live || len(c.offsets) > 0
		return nil
	default:
		return mismatch(d, c, fmt.Sprintf("dense target cannot absorb %T", c))
	}
}

// AccumulateAt adds v at a single flat offset.
func (d *Dense) AccumulateAt(offset int, v float64) error {
	if offset < 0 || offset >= len(d.data) {
		return &ShapeError{
			Target:       d.shape,
			Contribution: tensor.Shape{},
			Details:      fmt.Sprintf("offset %d outside %d elements", offset, len(d.data)),
		}
	}
	d.data[offset] += v
	d.touched++
	d.live = true
	return nil
}

// AccumulateRange adds vals element-wise starting at a flat offset.
func (d *Dense) AccumulateRange(offset int, vals []float64) error {
	if offset < 0 || offset+len(vals) > len(d.data) {
		return &ShapeError{
			Target:       d.shape,
			Contribution: tensor.Shape{len(vals)},
			Details:      fmt.Sprintf("range [%d, %d) outside %d elements", offset, offset+len(vals), len(d.data)),
		}
	}
	if len(vals) == 0 {
		return nil
	}
	floats.Add(d.data[offset:offset+len(vals)], vals)
	d.touched += len(vals)
	d.live = true
	return nil
}
