package ops

import (
	"math"

	"github.com/born-ml/pullback/internal/cotangent"
)

// CosOp represents the cosine operation: y = cos(x).
//
// Backward pass:
//   - d(cos(x))/dx = -sin(x)
type CosOp struct {
	x float64
}

// Cos computes cos(x) and its pullback.
func Cos(x float64) (float64, *CosOp) {
	return math.Cos(x), &CosOp{x: x}
}

// Name returns "cos".
func (op *CosOp) Name() string { return "cos" }

// NumInputs returns 1.
func (op *CosOp) NumInputs() int { return 1 }

// Backward computes input gradient for cos.
func (op *CosOp) Backward(out cotangent.Value) ([]cotangent.Value, error) {
	g, err := scalarOut(op, out)
	if err != nil {
		return nil, err
	}
	return scalars(-g * math.Sin(op.x)), nil
}
