// Package cotangent defines the algebra gradient-carrying values satisfy.
//
// A cotangent space has an additive identity (Zero, ZeroLike) and an in-place
// Accumulate that is associative and commutative over the contributions it
// receives. The backward pass relies on nothing else:
//
//   - Scalar: a float64 cell, accumulation is numeric addition.
//   - Dense: an aggregate accumulator with the shape of an array forward
//     value. Localized AccumulateAt/AccumulateRange touch only the named
//     positions, and Touched counts element writes.
//   - Sparse: a contribution naming (offset, value) pairs. Accumulating it
//     into a Dense costs O(entries), not O(size).
//   - Composite: a struct-of-values cotangent whose fields are themselves
//     accumulators that field-read pullbacks update in place.
package cotangent

import (
	"errors"
	"fmt"

	"github.com/born-ml/pullback/internal/tensor"
)

// Common errors.
var (
	ErrShapeMismatch    = errors.New("cotangent shape mismatch")
	ErrUnsupportedValue = errors.New("unsupported forward value")
	ErrNotScalar        = errors.New("cotangent is not a scalar")
)

// Value is an element of a cotangent space.
type Value interface {
	// Shape returns the shape descriptor. Scalars return an empty shape,
	// composites return a one-dimensional shape holding the field count.
	Shape() tensor.Shape

	// IsZero reports whether the value is structurally or numerically zero:
	// either nothing has been written into it since it was created, or, for
	// scalars, the accumulated total is exactly zero. It must be cheap:
	// implementations never scan their storage.
	IsZero() bool

	// Clone returns a deep copy.
	Clone() Value
}

// Accumulator is a mutable cotangent cell.
//
// Accumulate adds c into the receiver in place. It copies what it needs from
// c and never retains it, so one contribution can be accumulated into several
// targets. A contribution whose shape disagrees with the target is rejected
// with a *ShapeError.
type Accumulator interface {
	Value
	Accumulate(c Value) error
}

// ShapeError reports a contribution that does not fit its target.
type ShapeError struct {
	Target       tensor.Shape
	Contribution tensor.Shape
	Details      string
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	msg := fmt.Sprintf("%v: target %v, contribution %v", ErrShapeMismatch, e.Target, e.Contribution)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	return msg
}

// Unwrap lets errors.Is match ErrShapeMismatch.
func (e *ShapeError) Unwrap() error {
	return ErrShapeMismatch
}

func mismatch(target, contribution Value, details string) error {
	var cs tensor.Shape
	if contribution != nil {
		cs = contribution.Shape()
	}
	return &ShapeError{Target: target.Shape(), Contribution: cs, Details: details}
}

// Zero returns the additive identity for a shape.
// An empty shape yields a *Scalar, anything else a *Dense.
func Zero(shape tensor.Shape) (Accumulator, error) {
	if shape.IsScalar() {
		return NewScalar(0), nil
	}
	d, err := NewDense(shape)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// One returns the multiplicative-identity seed for a shape: a scalar 1 or an
// all-ones dense value.
func One(shape tensor.Shape) (Accumulator, error) {
	if shape.IsScalar() {
		return NewScalar(1), nil
	}
	ones := make([]float64, shape.NumElements())
	for i := range ones {
		ones[i] = 1
	}
	d, err := DenseFrom(ones, shape)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ZeroLike returns the additive identity matching the structure of a forward
// value: float64 maps to *Scalar, *tensor.Array to *Dense and tensor.Tuple to
// *Composite with one zero field per element.
func ZeroLike(v any) (Accumulator, error) {
	switch v := v.(type) {
	case float64:
		return NewScalar(0), nil
	case *tensor.Array:
		if v == nil {
			return nil, fmt.Errorf("%w: nil array", ErrUnsupportedValue)
		}
		d, err := NewDense(v.Shape())
		if err != nil {
			return nil, err
		}
		return d, nil
	case tensor.Tuple:
		fields := make([]Value, len(v))
		for i, f := range v {
			z, err := ZeroLike(f)
			if err != nil {
				return nil, fmt.Errorf("field %d: %w", i, err)
			}
			fields[i] = z
		}
		return &Composite{fields: fields}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

// AsScalar extracts the float64 carried by a scalar cotangent.
func AsScalar(v Value) (float64, error) {
	s, ok := v.(*Scalar)
	if !ok || s == nil {
		return 0, fmt.Errorf("%w: got %T", ErrNotScalar, v)
	}
	return float64(*s), nil
}
