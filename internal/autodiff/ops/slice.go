package ops

import (
	"github.com/born-ml/pullback/internal/cotangent"
	"github.com/born-ml/pullback/internal/tensor"
)

// SliceOp represents reading a contiguous flat range of an array:
// y = x.flat[lo:hi], a one-dimensional array of hi-lo elements.
//
// Backward:
//
//	grad_x.flat[lo:hi] += grad_y, an O(hi-lo) write into the input slot.
type SliceOp struct {
	shape tensor.Shape
	lo, n int
}

// Slice reads the flat range [lo, hi) of x and returns its pullback.
func Slice(x *tensor.Array, lo, hi int) (*tensor.Array, *SliceOp, error) {
	if x == nil {
		return nil, nil, invalid("slice", "nil array")
	}
	if lo < 0 || hi > x.Len() || lo >= hi {
		return nil, nil, invalid("slice", "range [%d, %d) invalid for %d elements", lo, hi, x.Len())
	}
	y, err := tensor.FromSlice(x.Data()[lo:hi], tensor.Shape{hi - lo})
	if err != nil {
		return nil, nil, err
	}
	return y, &SliceOp{shape: x.Shape(), lo: lo, n: hi - lo}, nil
}

// Name returns "slice".
func (op *SliceOp) Name() string { return "slice" }

// NumInputs returns 1.
func (op *SliceOp) NumInputs() int { return 1 }

// Backward returns a sparse contribution covering the range.
func (op *SliceOp) Backward(out cotangent.Value) ([]cotangent.Value, error) {
	g, err := denseOut(op, out, tensor.Shape{op.n})
	if err != nil {
		return nil, err
	}
	s := cotangent.NewSparse(op.shape)
	for i, v := range g.Data() {
		if err := s.Add(op.lo+i, v); err != nil {
			return nil, err
		}
	}
	return []cotangent.Value{s}, nil
}

// BackwardInto adds the cotangent over the range of the input slot.
func (op *SliceOp) BackwardInto(out cotangent.Value, inputs []cotangent.Accumulator) error {
	if inputs[0] == nil {
		return nil
	}
	d, ok := inputs[0].(*cotangent.Dense)
	if !ok {
		contribs, err := op.Backward(out)
		if err != nil {
			return err
		}
		return inputs[0].Accumulate(contribs[0])
	}
	if !d.Shape().Equal(op.shape) {
		return &cotangent.ShapeError{Target: d.Shape(), Contribution: op.shape, Details: "slice backward"}
	}
	g, err := denseOut(op, out, tensor.Shape{op.n})
	if err != nil {
		return err
	}
	return d.AccumulateRange(op.lo, g.Data())
}
