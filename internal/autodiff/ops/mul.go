package ops

import "github.com/born-ml/pullback/internal/cotangent"

// MulOp represents scalar multiplication: output = a * b.
//
// Backward pass:
//   - d(a*b)/da = b, so grad_a = grad * b
//   - d(a*b)/db = a, so grad_b = grad * a
//
// For a*a both contributions land on the same producer and sum to 2*a*grad.
type MulOp struct {
	a, b float64
}

// Mul computes a * b and its pullback.
func Mul(a, b float64) (float64, *MulOp) {
	return a * b, &MulOp{a: a, b: b}
}

// Name returns "mul".
func (op *MulOp) Name() string { return "mul" }

// NumInputs returns 2.
func (op *MulOp) NumInputs() int { return 2 }

// Backward computes input gradients for multiplication.
func (op *MulOp) Backward(out cotangent.Value) ([]cotangent.Value, error) {
	g, err := scalarOut(op, out)
	if err != nil {
		return nil, err
	}
	return scalars(g*op.b, g*op.a), nil
}
