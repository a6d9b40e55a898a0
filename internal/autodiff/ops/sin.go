package ops

import (
	"math"

	"github.com/born-ml/pullback/internal/cotangent"
)

// SinOp represents the sine operation: y = sin(x).
//
// Backward pass:
//   - d(sin(x))/dx = cos(x)
//   - grad_input = grad_output * cos(input)
type SinOp struct {
	x float64
}

// Sin computes sin(x) and its pullback.
func Sin(x float64) (float64, *SinOp) {
	return math.Sin(x), &SinOp{x: x}
}

// Name returns "sin".
func (op *SinOp) Name() string { return "sin" }

// NumInputs returns 1.
func (op *SinOp) NumInputs() int { return 1 }

// Backward computes input gradient for sin.
func (op *SinOp) Backward(out cotangent.Value) ([]cotangent.Value, error) {
	g, err := scalarOut(op, out)
	if err != nil {
		return nil, err
	}
	return scalars(g * math.Cos(op.x)), nil
}
