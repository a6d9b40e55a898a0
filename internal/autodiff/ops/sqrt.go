package ops

import (
	"math"

	"github.com/born-ml/pullback/internal/cotangent"
)

// SqrtOp represents the square root: y = sqrt(x).
//
// Backward pass:
//   - d(sqrt(x))/dx = 1 / (2 * sqrt(x)) = 1 / (2y)
type SqrtOp struct {
	y float64
}

// Sqrt computes sqrt(x) and its pullback.
func Sqrt(x float64) (float64, *SqrtOp) {
	y := math.Sqrt(x)
	return y, &SqrtOp{y: y}
}

// Name returns "sqrt".
func (op *SqrtOp) Name() string { return "sqrt" }

// NumInputs returns 1.
func (op *SqrtOp) NumInputs() int { return 1 }

// Backward computes grad / (2y).
func (op *SqrtOp) Backward(out cotangent.Value) ([]cotangent.Value, error) {
	g, err := scalarOut(op, out)
	if err != nil {
		return nil, err
	}
	return scalars(g / (2 * op.y)), nil
}
