package cotangent

import (
	"fmt"

	"github.com/born-ml/pullback/internal/tensor"
)

// Sparse is a contribution to an array-shaped cotangent that names only the
// positions it affects. Repeated offsets are allowed and sum on accumulation.
type Sparse struct {
	shape   tensor.Shape
	offsets []int
	values  []float64
}

// NewSparse creates an empty sparse contribution for a shape.
func NewSparse(shape tensor.Shape) *Sparse {
	return &Sparse{shape: shape.Clone()}
}

// OneHot creates a sparse contribution with a single entry.
func OneHot(shape tensor.Shape, offset int, v float64) (*Sparse, error) {
	s := NewSparse(shape)
	if err := s.Add(offset, v); err != nil {
		return nil, err
	}
	return s, nil
}

// Add appends an entry.
func (s *Sparse) Add(offset int, v float64) error {
	if offset < 0 || offset >= s.shape.NumElements() {
		return fmt.Errorf("%w: offset %d outside shape %v", ErrShapeMismatch, offset, s.shape)
	}
	s.offsets = append(s.offsets, offset)
	s.values = append(s.values, v)
	return nil
}

// Len returns the number of entries.
func (s *Sparse) Len() int {
	return len(s.offsets)
}

// Shape returns the shape of the array the contribution targets.
func (s *Sparse) Shape() tensor.Shape {
	return s.shape
}

// IsZero reports whether the contribution has no entries.
func (s *Sparse) IsZero() bool {
	return len(s.offsets) == 0
}

// Clone returns a deep copy.
func (s *Sparse) Clone() Value {
	return &Sparse{
		shape:   s.shape.Clone(),
		offsets: append([]int(nil), s.offsets...),
		values:  append([]float64(nil), s.values...),
	}
}

// Densify materializes the contribution as a *Dense.
func (s *Sparse) Densify() (*Dense, error) {
	d, err := NewDense(s.shape)
	if err != nil {
		return nil, err
	}
	if err := d.Accumulate(s); err != nil {
		return nil, err
	}
	d.touched = 0
	return d, nil
}
