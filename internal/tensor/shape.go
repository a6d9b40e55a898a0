package tensor

import "fmt"

// Shape represents the dimensions of a forward value.
// An empty shape describes a scalar.
type Shape []int

// NumElements returns the total number of elements in the shape.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// IsScalar reports whether the shape describes a scalar.
func (s Shape) IsScalar() bool {
	return len(s) == 0
}

// Validate checks if the shape is valid (all dimensions > 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// Offset converts a multi-dimensional index into a flat row-major offset.
//
// Examples:
//
//	Shape{4}.Offset(2)       → 2
//	Shape{2, 3}.Offset(1, 2) → 5
func (s Shape) Offset(index ...int) (int, error) {
	if len(index) != len(s) {
		return 0, fmt.Errorf("index %v has %d dimensions, shape %v has %d", index, len(index), s, len(s))
	}
	strides := s.ComputeStrides()
	offset := 0
	for i, idx := range index {
		if idx < 0 || idx >= s[i] {
			return 0, fmt.Errorf("index %d out of range for dimension %d of shape %v", idx, i, s)
		}
		offset += idx * strides[i]
	}
	return offset, nil
}

// String formats the shape as (d0, d1, ...).
func (s Shape) String() string {
	if len(s) == 0 {
		return "()"
	}
	out := "("
	for i, dim := range s {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprint(dim)
	}
	return out + ")"
}
