// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation.
//
// A differentiable function is ordinary Go code written in terms of the
// primitives in this package. Gradient records every primitive on a tape
// during the forward pass and walks the tape once in reverse, summing the
// contributions of every consumer before a value's own pullback runs.
//
// Example:
//
//	import (
//	    "github.com/born-ml/pullback/autodiff"
//	    "github.com/born-ml/pullback/tensor"
//	)
//
//	func main() {
//	    f := func(in []autodiff.Var) autodiff.Var {
//	        x, w := in[0], in[1]
//	        return autodiff.Mul(autodiff.Index(x, 2), autodiff.Sin(w))
//	    }
//	    res, err := autodiff.Gradient(ctx, f, []any{tensor.Vector(1, 2, 3), 0.5})
//	    dx, _ := res.Dense(0)  // [0 0 sin(0.5)]
//	    dw, _ := res.Scalar(1) // 3*cos(0.5)
//	}
package autodiff

import (
	"context"
	"log/slog"

	"github.com/born-ml/pullback/internal/autodiff"
	"github.com/born-ml/pullback/internal/autodiff/ops"
	"github.com/born-ml/pullback/internal/cotangent"
	"github.com/born-ml/pullback/internal/tensor"
)

// Var is a forward value together with the tape node that produced it.
type Var = autodiff.Var

// Func is a differentiable function.
type Func = autodiff.Func

// Result is the outcome of Gradient.
type Result = autodiff.Result

// Stats summarizes one backward pass.
type Stats = autodiff.Stats

// Option configures Gradient.
type Option = autodiff.Option

// Tape records primitive invocations for one backward pass.
type Tape = autodiff.Tape

// Grads holds the leaf cotangents of a walked tape.
type Grads = autodiff.Grads

// NodeInfo describes a recorded node.
type NodeInfo = autodiff.NodeInfo

// TapeError describes a tape integrity violation.
type TapeError = autodiff.TapeError

// Operation is the pullback of a primitive.
type Operation = ops.Operation

// InPlaceOperation is a pullback that writes into producer slots directly.
type InPlaceOperation = ops.InPlaceOperation

// AliasOperation is a pullback whose output slot is part of its input's slot.
type AliasOperation = ops.AliasOperation

// Cotangent types.
type (
	Cotangent   = cotangent.Value
	Accumulator = cotangent.Accumulator
	Scalar      = cotangent.Scalar
	Dense       = cotangent.Dense
	Sparse      = cotangent.Sparse
	Composite   = cotangent.Composite
	ShapeError  = cotangent.ShapeError
)

// Errors.
var (
	ErrTapeIntegrity    = autodiff.ErrTapeIntegrity
	ErrTapeConsumed     = autodiff.ErrTapeConsumed
	ErrArity            = autodiff.ErrArity
	ErrValueType        = autodiff.ErrValueType
	ErrSeedRequired     = autodiff.ErrSeedRequired
	ErrNotLeaf          = autodiff.ErrNotLeaf
	ErrShapeMismatch    = cotangent.ErrShapeMismatch
	ErrUnsupportedValue = cotangent.ErrUnsupportedValue
)

// Gradient evaluates f on inputs and returns its value and one gradient per
// input. Inputs are float64, *tensor.Array or tensor.Tuple values; each
// gradient has the structure of its input. Inputs the output does not
// depend on get a zero gradient.
func Gradient(ctx context.Context, f Func, inputs []any, opts ...Option) (*Result, error) {
	return autodiff.Gradient(ctx, f, inputs, opts...)
}

// Eval evaluates f on inputs without recording a tape.
func Eval(f Func, inputs []any) (any, error) {
	return autodiff.Eval(f, inputs)
}

// WithSeed sets the output cotangent. Required for non-scalar outputs.
func WithSeed(seed Cotangent) Option {
	return autodiff.WithSeed(seed)
}

// WithLogger sets the logger used by Gradient.
func WithLogger(logger *slog.Logger) Option {
	return autodiff.WithLogger(logger)
}

// NewTape creates an empty tape for manual recording.
func NewTape() *Tape {
	return autodiff.NewTape()
}

// Const wraps a value that is not differentiated.
func Const(value any) Var {
	return autodiff.Const(value)
}

// Apply records a primitive defined outside this package.
func Apply(op Operation, value any, inputs ...Var) (Var, error) {
	return autodiff.Apply(op, value, inputs...)
}

// NewScalar creates a scalar cotangent.
func NewScalar(v float64) *Scalar {
	return cotangent.NewScalar(v)
}

// DenseFrom creates a dense cotangent holding a copy of data.
func DenseFrom(data []float64, shape tensor.Shape) (*Dense, error) {
	return cotangent.DenseFrom(data, shape)
}

// NewComposite creates a composite cotangent; nil fields receive nothing.
func NewComposite(fields ...Cotangent) *Composite {
	return cotangent.NewComposite(fields...)
}

// ZeroLike returns the zero cotangent for a forward value.
func ZeroLike(value any) (Accumulator, error) {
	return cotangent.ZeroLike(value)
}

// Add returns a + b.
func Add(a, b Var) Var {
	return autodiff.Add(a, b)
}

// Sub returns a - b.
func Sub(a, b Var) Var {
	return autodiff.Sub(a, b)
}

// Mul returns a * b.
func Mul(a, b Var) Var {
	return autodiff.Mul(a, b)
}

// Div returns a / b.
func Div(a, b Var) Var {
	return autodiff.Div(a, b)
}

// Neg returns -x.
func Neg(x Var) Var {
	return autodiff.Neg(x)
}

// Scale returns k * x for a constant k.
func Scale(x Var, k float64) Var {
	return autodiff.Scale(x, k)
}

// Pow returns x^p for a constant p.
func Pow(x Var, p float64) Var {
	return autodiff.Pow(x, p)
}

// Sin returns sin(x).
func Sin(x Var) Var {
	return autodiff.Sin(x)
}

// Cos returns cos(x).
func Cos(x Var) Var {
	return autodiff.Cos(x)
}

// Exp returns exp(x).
func Exp(x Var) Var {
	return autodiff.Exp(x)
}

// Log returns the natural logarithm of x.
func Log(x Var) Var {
	return autodiff.Log(x)
}

// Sqrt returns the square root of x.
func Sqrt(x Var) Var {
	return autodiff.Sqrt(x)
}

// Tanh returns tanh(x).
func Tanh(x Var) Var {
	return autodiff.Tanh(x)
}

// Index returns the element of array x at index. Its pullback touches one element.
func Index(x Var, index ...int) Var {
	return autodiff.Index(x, index...)
}

// Slice returns the flat range [lo, hi) of array x.
func Slice(x Var, lo, hi int) Var {
	return autodiff.Slice(x, lo, hi)
}

// Sum returns the sum of the elements of array x.
func Sum(x Var) Var {
	return autodiff.Sum(x)
}

// Dot returns the inner product of arrays a and b.
func Dot(a, b Var) Var {
	return autodiff.Dot(a, b)
}

// Stack builds a one-dimensional array from scalars.
func Stack(xs ...Var) Var {
	return autodiff.Stack(xs...)
}

// Pack builds a tensor.Tuple from fields.
func Pack(fields ...Var) Var {
	return autodiff.Pack(fields...)
}

// Field returns field i of tuple x. Its pullback updates only that field.
func Field(x Var, i int) Var {
	return autodiff.Field(x, i)
}
