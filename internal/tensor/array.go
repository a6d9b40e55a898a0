package tensor

import "fmt"

// Array is a dense, row-major float64 aggregate used as a forward value.
//
// Arrays are treated as immutable once they flow into a computation:
// primitives read them and allocate fresh results, they never write in place.
type Array struct {
	shape Shape
	data  []float64
}

// FromSlice creates an array from a Go slice.
// The slice is copied into the array's memory.
func FromSlice(data []float64, shape Shape) (*Array, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	buf := make([]float64, len(data))
	copy(buf, data)
	return &Array{shape: shape.Clone(), data: buf}, nil
}

// Vector creates a one-dimensional array holding a copy of values.
func Vector(values ...float64) *Array {
	buf := make([]float64, len(values))
	copy(buf, values)
	return &Array{shape: Shape{len(values)}, data: buf}
}

// Zeros creates a zero-filled array of the given shape.
func Zeros(shape Shape) (*Array, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	return &Array{shape: shape.Clone(), data: make([]float64, shape.NumElements())}, nil
}

// Shape returns the array's shape.
func (a *Array) Shape() Shape {
	return a.shape
}

// Len returns the number of elements.
func (a *Array) Len() int {
	return len(a.data)
}

// Data returns the underlying row-major storage.
// Callers must not modify it.
func (a *Array) Data() []float64 {
	return a.data
}

// At returns the element at a multi-dimensional index.
func (a *Array) At(index ...int) (float64, error) {
	offset, err := a.shape.Offset(index...)
	if err != nil {
		return 0, err
	}
	return a.data[offset], nil
}

// Clone returns a deep copy of the array.
func (a *Array) Clone() *Array {
	buf := make([]float64, len(a.data))
	copy(buf, a.data)
	return &Array{shape: a.shape.Clone(), data: buf}
}

func (a *Array) String() string {
	return fmt.Sprintf("Array%v%v", a.shape, a.data)
}

// Tuple is a composite forward value: an ordered set of fields, each of
// which is a float64, an *Array or a nested Tuple.
type Tuple []any
