package ops

import (
	"errors"
	"fmt"

	"github.com/born-ml/pullback/internal/cotangent"
	"github.com/born-ml/pullback/internal/tensor"
)

// ErrInvalidArgument reports forward inputs a primitive cannot be applied to.
var ErrInvalidArgument = errors.New("invalid primitive argument")

// scalarOut reads the output cotangent of a scalar-valued primitive.
func scalarOut(op Operation, out cotangent.Value) (float64, error) {
	g, err := cotangent.AsScalar(out)
	if err != nil {
		return 0, fmt.Errorf("%s backward: %w", op.Name(), err)
	}
	return g, nil
}

// denseOut reads the output cotangent of an array-valued primitive.
func denseOut(op Operation, out cotangent.Value, shape tensor.Shape) (*cotangent.Dense, error) {
	d, ok := out.(*cotangent.Dense)
	if !ok {
		if s, isSparse := out.(*cotangent.Sparse); isSparse {
			dense, err := s.Densify()
			if err != nil {
				return nil, err
			}
			d = dense
		} else {
			return nil, fmt.Errorf("%s backward: %w: want dense %v, got %T",
				op.Name(), cotangent.ErrShapeMismatch, shape, out)
		}
	}
	if !d.Shape().Equal(shape) {
		return nil, fmt.Errorf("%s backward: %w: want %v, got %v",
			op.Name(), cotangent.ErrShapeMismatch, shape, d.Shape())
	}
	return d, nil
}

// scalars wraps float64 contributions.
func scalars(vs ...float64) []cotangent.Value {
	out := make([]cotangent.Value, len(vs))
	for i, v := range vs {
		out[i] = cotangent.NewScalar(v)
	}
	return out
}

func invalid(name, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", name, ErrInvalidArgument, fmt.Sprintf(format, args...))
}
