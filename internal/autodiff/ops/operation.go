// Package ops defines the primitive operations of the reverse-mode engine.
//
// Every primitive is a plain function that takes concrete forward values and
// returns the forward result together with an Operation, the pullback half of
// the primitive. An Operation captures only the forward data its local
// derivative needs (Index keeps an offset and a shape, never the array) and
// maps the output cotangent to one contribution per input.
//
// Supported operations:
//   - AddOp, SubOp, MulOp, DivOp: binary scalar arithmetic
//   - NegOp, ScaleOp, PowOp: unary scalar arithmetic
//   - SinOp, CosOp, ExpOp, LogOp, SqrtOp, TanhOp: elementary functions
//   - IndexOp, SliceOp: reads of an array, pulled back in place
//   - SumOp, DotOp, StackOp: array reductions and construction
//   - PackOp, FieldOp: composite construction and field reads
package ops

import "github.com/born-ml/pullback/internal/cotangent"

// Operation represents the pullback of one primitive invocation.
type Operation interface {
	// Name identifies the primitive in errors and logs.
	Name() string

	// NumInputs returns the number of inputs the primitive was applied to.
	NumInputs() int

	// Backward computes one cotangent contribution per input given the
	// output cotangent. A nil entry means the input receives nothing.
	//
	// Example for AddOp:
	//   out: dL/d(a+b)
	//   returns: [dL/d(a+b), dL/d(a+b)] (the cotangent flows to both inputs)
	Backward(out cotangent.Value) ([]cotangent.Value, error)
}

// InPlaceOperation is an Operation that can write its contributions straight
// into the producers' accumulator slots.
//
// Reads of a substructure (an array element, a slice, a composite field)
// implement it so the backward pass touches only the positions that were
// read instead of materializing a zero-filled copy of the whole structure.
// The engine prefers BackwardInto when it is available.
type InPlaceOperation interface {
	Operation

	// BackwardInto accumulates the contributions for out directly into
	// inputs, which holds one accumulator per input in order. Entries are nil
	// for inputs that are constants. The accumulators may only be used for
	// the duration of the call.
	BackwardInto(out cotangent.Value, inputs []cotangent.Accumulator) error
}

// AliasOperation is an Operation whose output cotangent lives inside its
// input's accumulator, such as a composite field read. The engine hands the
// node's consumers that inner accumulator as the node's slot, so they write
// into the producer directly and the node's own pullback is never run.
type AliasOperation interface {
	Operation

	// AliasSlot returns the part of input that holds the output cotangent.
	// It reports false when input has no such part; the engine then
	// allocates a separate slot and runs the pullback as usual.
	AliasSlot(input cotangent.Accumulator) (cotangent.Accumulator, bool, error)
}
