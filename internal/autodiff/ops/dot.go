package ops

import (
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/pullback/internal/cotangent"
	"github.com/born-ml/pullback/internal/tensor"
)

// DotOp represents the inner product of two same-shaped arrays: y = Σ a_i b_i.
//
// Backward pass:
//   - grad_a = grad * b
//   - grad_b = grad * a
type DotOp struct {
	a, b *tensor.Array
}

// Dot computes the inner product of a and b and returns its pullback.
func Dot(a, b *tensor.Array) (float64, *DotOp, error) {
	if a == nil || b == nil {
		return 0, nil, invalid("dot", "nil array")
	}
	if !a.Shape().Equal(b.Shape()) {
		return 0, nil, invalid("dot", "shapes %v and %v differ", a.Shape(), b.Shape())
	}
	return floats.Dot(a.Data(), b.Data()), &DotOp{a: a, b: b}, nil
}

// Name returns "dot".
func (op *DotOp) Name() string { return "dot" }

// NumInputs returns 2.
func (op *DotOp) NumInputs() int { return 2 }

// Backward computes grad*b and grad*a.
func (op *DotOp) Backward(out cotangent.Value) ([]cotangent.Value, error) {
	g, err := scalarOut(op, out)
	if err != nil {
		return nil, err
	}
	gradA := floats.ScaleTo(make([]float64, op.b.Len()), g, op.b.Data())
	gradB := floats.ScaleTo(make([]float64, op.a.Len()), g, op.a.Data())

	da, err := cotangent.DenseFrom(gradA, op.a.Shape())
	if err != nil {
		return nil, err
	}
	db, err := cotangent.DenseFrom(gradB, op.b.Shape())
	if err != nil {
		return nil, err
	}
	return []cotangent.Value{da, db}, nil
}
