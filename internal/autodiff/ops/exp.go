package ops

import (
	"math"

	"github.com/born-ml/pullback/internal/cotangent"
)

// ExpOp represents the exponential operation: y = exp(x).
//
// The derivative is the output itself, so the output is captured instead of x.
type ExpOp struct {
	y float64
}

// Exp computes exp(x) and its pullback.
func Exp(x float64) (float64, *ExpOp) {
	y := math.Exp(x)
	return y, &ExpOp{y: y}
}

// Name returns "exp".
func (op *ExpOp) Name() string { return "exp" }

// NumInputs returns 1.
func (op *ExpOp) NumInputs() int { return 1 }

// Backward computes grad * exp(x).
func (op *ExpOp) Backward(out cotangent.Value) ([]cotangent.Value, error) {
	g, err := scalarOut(op, out)
	if err != nil {
		return nil, err
	}
	return scalars(g * op.y), nil
}
