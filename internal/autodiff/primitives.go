package autodiff

import (
	"fmt"

	"github.com/born-ml/pullback/internal/autodiff/ops"
	"github.com/born-ml/pullback/internal/tensor"
)

// Apply records a primitive invocation.
//
// This is the registration point for primitives defined outside this
// package: compute the forward value, build an ops.Operation that returns one
// contribution per input, and pass both here with the inputs in the order the
// operation expects. If every input is a constant the result is a constant.
func Apply(op ops.Operation, value any, inputs ...Var) (Var, error) {
	var tape *Tape
	for i, in := range inputs {
		if in.tape == nil {
			continue
		}
		if tape == nil {
			tape = in.tape
			continue
		}
		if in.tape != tape {
			return Var{}, &TapeError{Tape: tape.id, Node: tape.Len(), Input: i,
				Reason: fmt.Sprintf("inputs mix tapes %s and %s", tape.id, in.tape.id)}
		}
	}
	if tape == nil {
		if err := checkValue(value); err != nil {
			return Var{}, err
		}
		return Const(value), nil
	}
	return tape.Record(op, value, inputs...)
}

func apply(op ops.Operation, value any, inputs ...Var) Var {
	v, err := Apply(op, value, inputs...)
	if err != nil {
		throw(err)
	}
	return v
}

func scalar(name string, v Var) float64 {
	f, ok := v.Scalar()
	if !ok {
		throw(fmt.Errorf("%s: %w: want float64, got %T", name, ErrValueType, v.value))
	}
	return f
}

func array(name string, v Var) *tensor.Array {
	a, ok := v.Array()
	if !ok {
		throw(fmt.Errorf("%s: %w: want *tensor.Array, got %T", name, ErrValueType, v.value))
	}
	return a
}

func check(err error) {
	if err != nil {
		throw(err)
	}
}

// Add returns a + b.
func Add(a, b Var) Var {
	y, op := ops.Add(scalar("add", a), scalar("add", b))
	return apply(op, y, a, b)
}

// Sub returns a - b.
func Sub(a, b Var) Var {
	y, op := ops.Sub(scalar("sub", a), scalar("sub", b))
	return apply(op, y, a, b)
}

// Mul returns a * b.
func Mul(a, b Var) Var {
	y, op := ops.Mul(scalar("mul", a), scalar("mul", b))
	return apply(op, y, a, b)
}

// Div returns a / b.
func Div(a, b Var) Var {
	y, op := ops.Div(scalar("div", a), scalar("div", b))
	return apply(op, y, a, b)
}

// Neg returns -x.
func Neg(x Var) Var {
	y, op := ops.Neg(scalar("neg", x))
	return apply(op, y, x)
}

// Scale returns k * x for a constant k.
func Scale(x Var, k float64) Var {
	y, op := ops.Scale(scalar("scale", x), k)
	return apply(op, y, x)
}

// Pow returns x^p for a constant p.
func Pow(x Var, p float64) Var {
	y, op := ops.Pow(scalar("pow", x), p)
	return apply(op, y, x)
}

// Sin returns sin(x).
func Sin(x Var) Var {
	y, op := ops.Sin(scalar("sin", x))
	return apply(op, y, x)
}

// Cos returns cos(x).
func Cos(x Var) Var {
	y, op := ops.Cos(scalar("cos", x))
	return apply(op, y, x)
}

// Exp returns exp(x).
func Exp(x Var) Var {
	y, op := ops.Exp(scalar("exp", x))
	return apply(op, y, x)
}

// Log returns log(x).
func Log(x Var) Var {
	y, op := ops.Log(scalar("log", x))
	return apply(op, y, x)
}

// Sqrt returns sqrt(x).
func Sqrt(x Var) Var {
	y, op := ops.Sqrt(scalar("sqrt", x))
	return apply(op, y, x)
}

// Tanh returns tanh(x).
func Tanh(x Var) Var {
	y, op := ops.Tanh(scalar("tanh", x))
	return apply(op, y, x)
}

// Index returns x[index...].
func Index(x Var, index ...int) Var {
	y, op, err := ops.Index(array("index", x), index...)
	check(err)
	return apply(op, y, x)
}

// Slice returns the flat range [lo, hi) of x as a one-dimensional array.
func Slice(x Var, lo, hi int) Var {
	y, op, err := ops.Slice(array("slice", x), lo, hi)
	check(err)
	return apply(op, y, x)
}

// Sum returns the sum of all elements of x.
func Sum(x Var) Var {
	y, op, err := ops.Sum(array("sum", x))
	check(err)
	return apply(op, y, x)
}

// Dot returns the inner product of a and b.
func Dot(a, b Var) Var {
	y, op, err := ops.Dot(array("dot", a), array("dot", b))
	check(err)
	return apply(op, y, a, b)
}

// Stack builds a one-dimensional array from scalars.
func Stack(xs ...Var) Var {
	vals := make([]float64, len(xs))
	for i, x := range xs {
		vals[i] = scalar("stack", x)
	}
	y, op, err := ops.Stack(vals...)
	check(err)
	return apply(op, y, xs...)
}

// Pack builds a composite from fields.
func Pack(fields ...Var) Var {
	vals := make([]any, len(fields))
	for i, f := range fields {
		vals[i] = f.value
	}
	y, op, err := ops.Pack(vals...)
	check(err)
	return apply(op, y, fields...)
}

// Field returns field i of a composite.
func Field(x Var, i int) Var {
	t, ok := x.Tuple()
	if !ok {
		throw(fmt.Errorf("field: %w: want tensor.Tuple, got %T", ErrValueType, x.value))
	}
	y, op, err := ops.Field(t, i)
	check(err)
	return apply(op, y, x)
}
