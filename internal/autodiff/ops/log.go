package ops

import (
	"math"

	"github.com/born-ml/pullback/internal/cotangent"
)

// LogOp represents the natural logarithm: y = log(x).
//
// Backward pass:
//   - d(log(x))/dx = 1/x
type LogOp struct {
	x float64
}

// Log computes log(x) and its pullback. Non-positive inputs follow math.Log.
func Log(x float64) (float64, *LogOp) {
	return math.Log(x), &LogOp{x: x}
}

// Name returns "log".
func (op *LogOp) Name() string { return "log" }

// NumInputs returns 1.
func (op *LogOp) NumInputs() int { return 1 }

// Backward computes grad / x.
func (op *LogOp) Backward(out cotangent.Value) ([]cotangent.Value, error) {
	g, err := scalarOut(op, out)
	if err != nil {
		return nil, err
	}
	return scalars(g / op.x), nil
}
