package ops

import (
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/pullback/internal/cotangent"
	"github.com/born-ml/pullback/internal/tensor"
)

// SumOp represents a full reduction: y = sum(x).
//
// Backward:
//
//	grad_x = broadcast(grad_y, x.shape). Every element was read in the
//	forward pass, so the O(size) pullback mirrors the forward cost.
type SumOp struct {
	shape tensor.Shape
}

// Sum reduces x to a scalar and returns its pullback.
func Sum(x *tensor.Array) (float64, *SumOp, error) {
	if x == nil {
		return 0, nil, invalid("sum", "nil array")
	}
	return floats.Sum(x.Data()), &SumOp{shape: x.Shape()}, nil
}

// Name returns "sum".
func (op *SumOp) Name() string { return "sum" }

// NumInputs returns 1.
func (op *SumOp) NumInputs() int { return 1 }

// Backward broadcasts the scalar cotangent to the input shape.
func (op *SumOp) Backward(out cotangent.Value) ([]cotangent.Value, error) {
	g, err := scalarOut(op, out)
	if err != nil {
		return nil, err
	}
	data := make([]float64, op.shape.NumElements())
	for i := range data {
		data[i] = g
	}
	d, err := cotangent.DenseFrom(data, op.shape)
	if err != nil {
		return nil, err
	}
	return []cotangent.Value{d}, nil
}
