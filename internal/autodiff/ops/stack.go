package ops

import (
	"github.com/born-ml/pullback/internal/cotangent"
	"github.com/born-ml/pullback/internal/tensor"
)

// StackOp represents building a one-dimensional array from scalars:
// y = [x_0, x_1, ..., x_{n-1}].
//
// Backward:
//
//	Element i of grad_y flows to input i. A Sparse output cotangent only
//	produces contributions for the positions it names.
type StackOp struct {
	n int
}

// Stack builds an array from scalars and returns its pullback.
func Stack(xs ...float64) (*tensor.Array, *StackOp, error) {
	if len(xs) == 0 {
		return nil, nil, invalid("stack", "no elements")
	}
	return tensor.Vector(xs...), &StackOp{n: len(xs)}, nil
}

// Name returns "stack".
func (op *StackOp) Name() string { return "stack" }

// NumInputs returns the number of stacked scalars.
func (op *StackOp) NumInputs() int { return op.n }

// Backward splits the array cotangent into scalar contributions.
func (op *StackOp) Backward(out cotangent.Value) ([]cotangent.Value, error) {
	if s, ok := out.(*cotangent.Sparse); ok && s.Shape().Equal(tensor.Shape{op.n}) {
		d, err := s.Densify()
		if err != nil {
			return nil, err
		}
		contribs := make([]cotangent.Value, op.n)
		for i, v := range d.Data() {
			if v != 0 {
				contribs[i] = cotangent.NewScalar(v)
			}
		}
		return contribs, nil
	}
	g, err := denseOut(op, out, tensor.Shape{op.n})
	if err != nil {
		return nil, err
	}
	return scalars(g.Data()...), nil
}
