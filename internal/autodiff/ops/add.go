package ops

import "github.com/born-ml/pullback/internal/cotangent"

// AddOp represents scalar addition: output = a + b.
//
// Backward pass:
//   - d(a+b)/da = 1, so grad_a = grad
//   - d(a+b)/db = 1, so grad_b = grad
//
// The cotangent is routed to both operands, never to just one of them.
type AddOp struct{}

// Add computes a + b and its pullback.
func Add(a, b float64) (float64, *AddOp) {
	return a + b, &AddOp{}
}

// Name returns "add".
func (op *AddOp) Name() string { return "add" }

// NumInputs returns 2.
func (op *AddOp) NumInputs() int { return 2 }

// Backward computes input gradients for addition.
func (op *AddOp) Backward(out cotangent.Value) ([]cotangent.Value, error) {
	g, err := scalarOut(op, out)
	if err != nil {
		return nil, err
	}
	return scalars(g, g), nil
}
