package autodiff

import "github.com/born-ml/pullback/internal/tensor"

// Var is a forward value as seen by differentiable code: the value itself
// plus, when it was produced on a tape, the node that produced it.
//
// A Var with no tape is a constant. Primitives applied only to constants
// produce constants and record nothing.
type Var struct {
	tape  *Tape
	index int
	value any
}

// Const wraps a value that gradients do not flow into.
func Const(value any) Var {
	return Var{index: -1, value: value}
}

// Value returns the forward value.
func (v Var) Value() any {
	return v.value
}

// Scalar returns the forward value as a float64.
func (v Var) Scalar() (float64, bool) {
	f, ok := v.value.(float64)
	return f, ok
}

// Array returns the forward value as an array.
func (v Var) Array() (*tensor.Array, bool) {
	a, ok := v.value.(*tensor.Array)
	return a, ok && a != nil
}

// Tuple returns the forward value as a composite.
func (v Var) Tuple() (tensor.Tuple, bool) {
	t, ok := v.value.(tensor.Tuple)
	return t, ok
}

// IsConst reports whether the value is not recorded on any tape.
func (v Var) IsConst() bool {
	return v.tape == nil
}

// Index returns the node index on the tape, -1 for constants.
func (v Var) Index() int {
	if v.tape == nil {
		return -1
	}
	return v.index
}

// Tape returns the tape the value was recorded on, nil for constants.
func (v Var) Tape() *Tape {
	return v.tape
}
