package ops

import "github.com/born-ml/pullback/internal/cotangent"

// SubOp represents scalar subtraction: output = a - b.
//
// Backward pass:
//   - grad_a = grad
//   - grad_b = -grad
type SubOp struct{}

// Sub computes a - b and its pullback.
func Sub(a, b float64) (float64, *SubOp) {
	return a - b, &SubOp{}
}

// Name returns "sub".
func (op *SubOp) Name() string { return "sub" }

// NumInputs returns 2.
func (op *SubOp) NumInputs() int { return 2 }

// Backward computes input gradients for subtraction.
func (op *SubOp) Backward(out cotangent.Value) ([]cotangent.Value, error) {
	g, err := scalarOut(op, out)
	if err != nil {
		return nil, err
	}
	return scalars(g, -g), nil
}
