package ops

import (
	"fmt"

	"github.com/born-ml/pullback/internal/cotangent"
	"github.com/born-ml/pullback/internal/tensor"
)

// PackOp represents building a composite from its fields:
// y = (x_0, ..., x_{n-1}).
//
// Backward:
//
//	Field i of the composite cotangent flows to input i. Nil fields mean
//	the corresponding input receives nothing.
type PackOp struct {
	n int
}

// Pack builds a tensor.Tuple and returns its pullback.
// Fields must be float64, *tensor.Array or tensor.Tuple values.
func Pack(fields ...any) (tensor.Tuple, *PackOp, error) {
	if len(fields) == 0 {
		return nil, nil, invalid("pack", "no fields")
	}
	for i, f := range fields {
		switch f.(type) {
		case float64, *tensor.Array, tensor.Tuple:
		default:
			return nil, nil, invalid("pack", "field %d has unsupported type %T", i, f)
		}
	}
	return append(tensor.Tuple(nil), fields...), &PackOp{n: len(fields)}, nil
}

// Name returns "pack".
func (op *PackOp) Name() string { return "pack" }

// NumInputs returns the number of fields.
func (op *PackOp) NumInputs() int { return op.n }

// Backward routes each field of the cotangent to its input.
func (op *PackOp) Backward(out cotangent.Value) ([]cotangent.Value, error) {
	c, ok := out.(*cotangent.Composite)
	if !ok || c.NumFields() != op.n {
		return nil, fmt.Errorf("pack backward: %w: want %d-field composite, got %T",
			cotangent.ErrShapeMismatch, op.n, out)
	}
	contribs := make([]cotangent.Value, op.n)
	for i := range contribs {
		contribs[i] = c.Field(i)
	}
	return contribs, nil
}

// FieldOp represents reading field i of a composite: y = x.i.
//
// Backward:
//
//	AliasSlot exposes field i of the input's composite slot, so consumers
//	of the field accumulate into the parent in place and the pullback is
//	skipped. When no alias was taken, BackwardInto accumulates into field i
//	of the input slot and Backward returns a composite contribution in
//	which only field i is set.
type FieldOp struct {
	n, i int
}

// Field reads field i of x and returns its pullback.
func Field(x tensor.Tuple, i int) (any, *FieldOp, error) {
	if i < 0 || i >= len(x) {
		return nil, nil, invalid("field", "field %d outside %d fields", i, len(x))
	}
	return x[i], &FieldOp{n: len(x), i: i}, nil
}

// Name returns "field".
func (op *FieldOp) Name() string { return "field" }

// NumInputs returns 1.
func (op *FieldOp) NumInputs() int { return 1 }

// Index returns the position of the field that was read.
func (op *FieldOp) Index() int { return op.i }

// AliasSlot returns field i of a composite input slot.
func (op *FieldOp) AliasSlot(input cotangent.Accumulator) (cotangent.Accumulator, bool, error) {
	c, ok := input.(*cotangent.Composite)
	if !ok {
		return nil, false, nil
	}
	slot, err := c.Slot(op.i)
	if err != nil {
		return nil, false, err
	}
	return slot, true, nil
}

// Backward returns a composite contribution with only field i set.
func (op *FieldOp) Backward(out cotangent.Value) ([]cotangent.Value, error) {
	sole, err := cotangent.Sole(op.n, op.i, out)
	if err != nil {
		return nil, err
	}
	return []cotangent.Value{sole}, nil
}

// BackwardInto accumulates the cotangent into field i of the input slot.
func (op *FieldOp) BackwardInto(out cotangent.Value, inputs []cotangent.Accumulator) error {
	if inputs[0] == nil {
		return nil
	}
	c, ok := inputs[0].(*cotangent.Composite)
	if !ok {
		contribs, err := op.Backward(out)
		if err != nil {
			return err
		}
		return inputs[0].Accumulate(contribs[0])
	}
	slot, err := c.Slot(op.i)
	if err != nil {
		return err
	}
	return slot.Accumulate(out)
}
