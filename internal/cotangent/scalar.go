package cotangent

import "github.com/born-ml/pullback/internal/tensor"

// Scalar is a float64 cotangent.
type Scalar float64

// NewScalar returns a scalar cotangent holding v.
func NewScalar(v float64) *Scalar {
	s := Scalar(v)
	return &s
}

// Float returns the scalar's value.
func (s *Scalar) Float() float64 {
	return float64(*s)
}

// Shape returns the empty shape.
func (s *Scalar) Shape() tensor.Shape {
	return tensor.Shape{}
}

// IsZero reports whether the scalar is exactly zero.
func (s *Scalar) IsZero() bool {
	return *s == 0
}

// Clone returns a copy of the scalar.
func (s *Scalar) Clone() Value {
	return NewScalar(float64(*s))
}

// Accumulate adds a scalar contribution.
func (s *Scalar) Accumulate(c Value) error {
	other, ok := c.(*Scalar)
	if !ok || other == nil {
		return mismatch(s, c, "scalar target accepts only scalar contributions")
	}
	*s += *other
	return nil
}
