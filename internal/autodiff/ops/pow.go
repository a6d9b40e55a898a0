package ops

import (
	"math"

	"github.com/born-ml/pullback/internal/cotangent"
)

// PowOp represents a power with a constant exponent: y = x^p.
//
// Backward pass:
//   - d(x^p)/dx = p * x^(p-1)
type PowOp struct {
	x, p float64
}

// Pow computes x^p and its pullback.
func Pow(x, p float64) (float64, *PowOp) {
	return math.Pow(x, p), &PowOp{x: x, p: p}
}

// Name returns "pow".
func (op *PowOp) Name() string { return "pow" }

// NumInputs returns 1.
func (op *PowOp) NumInputs() int { return 1 }

// Backward computes grad * p * x^(p-1).
func (op *PowOp) Backward(out cotangent.Value) ([]cotangent.Value, error) {
	g, err := scalarOut(op, out)
	if err != nil {
		return nil, err
	}
	if op.p == 0 {
		return scalars(0), nil
	}
	return scalars(g * op.p * math.Pow(op.x, op.p-1)), nil
}
