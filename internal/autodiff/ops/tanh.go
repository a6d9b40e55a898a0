package ops

import (
	"math"

	"github.com/born-ml/pullback/internal/cotangent"
)

// TanhOp represents the hyperbolic tangent: y = tanh(x).
//
// Backward pass:
//   - d(tanh(x))/dx = 1 - tanh²(x) = 1 - y²
type TanhOp struct {
	y float64
}

// Tanh computes tanh(x) and its pullback.
func Tanh(x float64) (float64, *TanhOp) {
	y := math.Tanh(x)
	return y, &TanhOp{y: y}
}

// Name returns "tanh".
func (op *TanhOp) Name() string { return "tanh" }

// NumInputs returns 1.
func (op *TanhOp) NumInputs() int { return 1 }

// Backward computes grad * (1 - y²).
func (op *TanhOp) Backward(out cotangent.Value) ([]cotangent.Value, error) {
	g, err := scalarOut(op, out)
	if err != nil {
		return nil, err
	}
	return scalars(g * (1 - op.y*op.y)), nil
}
