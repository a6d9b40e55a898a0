package ops

import (
	"github.com/born-ml/pullback/internal/cotangent"
	"github.com/born-ml/pullback/internal/tensor"
)

// IndexOp represents reading one element of an array: y = x[i...].
//
// Backward:
//
//	The cotangent lands at a single position of the input's accumulator.
//	BackwardInto adds it there directly, an O(1) write. Backward (used when
//	no slot is available) returns a one-entry Sparse contribution, still O(1).
//
// Only the flat offset and the input shape are captured, never the array.
type IndexOp struct {
	shape  tensor.Shape
	offset int
}

// Index reads x at a multi-dimensional index and returns its pullback.
func Index(x *tensor.Array, index ...int) (float64, *IndexOp, error) {
	if x == nil {
		return 0, nil, invalid("index", "nil array")
	}
	offset, err := x.Shape().Offset(index...)
	if err != nil {
		return 0, nil, invalid("index", "%v", err)
	}
	return x.Data()[offset], &IndexOp{shape: x.Shape(), offset: offset}, nil
}

// Name returns "index".
func (op *IndexOp) Name() string { return "index" }

// NumInputs returns 1.
func (op *IndexOp) NumInputs() int { return 1 }

// Offset returns the flat offset that was read.
func (op *IndexOp) Offset() int { return op.offset }

// Backward returns a one-hot sparse contribution.
func (op *IndexOp) Backward(out cotangent.Value) ([]cotangent.Value, error) {
	g, err := scalarOut(op, out)
	if err != nil {
		return nil, err
	}
	hot, err := cotangent.OneHot(op.shape, op.offset, g)
	if err != nil {
		return nil, err
	}
	return []cotangent.Value{hot}, nil
}

// BackwardInto adds the cotangent at the read position of the input slot.
func (op *IndexOp) BackwardInto(out cotangent.Value, inputs []cotangent.Accumulator) error {
	if inputs[0] == nil {
		return nil
	}
	g, err := scalarOut(op, out)
	if err != nil {
		return err
	}
	if d, ok := inputs[0].(*cotangent.Dense); ok {
		if !d.Shape().Equal(op.shape) {
			return &cotangent.ShapeError{Target: d.Shape(), Contribution: op.shape, Details: "index backward"}
		}
		return d.AccumulateAt(op.offset, g)
	}
	hot, err := cotangent.OneHot(op.shape, op.offset, g)
	if err != nil {
		return err
	}
	return inputs[0].Accumulate(hot)
}
