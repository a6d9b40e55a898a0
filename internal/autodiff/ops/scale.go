package ops

import "github.com/born-ml/pullback/internal/cotangent"

// NegOp represents negation: output = -x.
type NegOp struct{}

// Neg computes -x and its pullback.
func Neg(x float64) (float64, *NegOp) {
	return -x, &NegOp{}
}

// Name returns "neg".
func (op *NegOp) Name() string { return "neg" }

// NumInputs returns 1.
func (op *NegOp) NumInputs() int { return 1 }

// Backward returns -grad.
func (op *NegOp) Backward(out cotangent.Value) ([]cotangent.Value, error) {
	g, err := scalarOut(op, out)
	if err != nil {
		return nil, err
	}
	return scalars(-g), nil
}

// ScaleOp represents multiplication by a constant: output = k * x.
//
// Unlike MulOp the factor is not an input, so no contribution is produced
// for it.
type ScaleOp struct {
	k float64
}

// Scale computes k * x and its pullback.
func Scale(x, k float64) (float64, *ScaleOp) {
	return k * x, &ScaleOp{k: k}
}

// Name returns "scale".
func (op *ScaleOp) Name() string { return "scale" }

// NumInputs returns 1.
func (op *ScaleOp) NumInputs() int { return 1 }

// Backward returns k * grad.
func (op *ScaleOp) Backward(out cotangent.Value) ([]cotangent.Value, error) {
	g, err := scalarOut(op, out)
	if err != nil {
		return nil, err
	}
	return scalars(op.k * g), nil
}
