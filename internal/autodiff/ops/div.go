package ops

import "github.com/born-ml/pullback/internal/cotangent"

// DivOp represents scalar division: output = a / b.
//
// Backward pass:
//   - d(a/b)/da = 1/b, so grad_a = grad / b
//   - d(a/b)/db = -a/b², so grad_b = -grad * a / b²
type DivOp struct {
	a, b float64
}

// Div computes a / b and its pullback. Division by zero follows IEEE 754.
func Div(a, b float64) (float64, *DivOp) {
	return a / b, &DivOp{a: a, b: b}
}

// Name returns "div".
func (op *DivOp) Name() string { return "div" }

// NumInputs returns 2.
func (op *DivOp) NumInputs() int { return 2 }

// Backward computes input gradients for division.
func (op *DivOp) Backward(out cotangent.Value) ([]cotangent.Value, error) {
	g, err := scalarOut(op, out)
	if err != nil {
		return nil, err
	}
	return scalars(g/op.b, -g*op.a/(op.b*op.b)), nil
}
