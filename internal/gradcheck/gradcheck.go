// Package gradcheck verifies reverse-mode gradients against central finite
// differences.
//
// A check flattens every input into one parameter vector, computes the
// analytic gradient with autodiff.Gradient and the numeric gradient with
// gonum's diff/fd over autodiff.Eval, and compares them element by element.
package gradcheck

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"

	"github.com/born-ml/pullback/internal/autodiff"
	"github.com/born-ml/pullback/internal/cotangent"
	"github.com/born-ml/pullback/internal/tensor"
)

// Errors returned by checks.
var (
	ErrMismatch       = errors.New("analytic and numeric gradients disagree")
	ErrUnsupported    = errors.New("input kind not supported by finite differences")
	ErrNonScalarValue = errors.New("function value is not a scalar")
)

// Settings controls the finite-difference estimate.
type Settings struct {
	Step      float64 // Central-difference step
	Tolerance float64 // Maximum absolute error per element
}

// DefaultSettings returns step 1e-3 and tolerance 1e-3.
func DefaultSettings() Settings {
	return Settings{Step: 1e-3, Tolerance: 1e-3}
}

// Report is the outcome of one check.
type Report struct {
	Name     string
	Point    []float64 // Flattened inputs
	Analytic []float64
	Numeric  []float64
	MaxError float64 // Largest absolute element difference
	Worst    int     // Element index of MaxError
	Stats    autodiff.Stats
}

// Passed reports whether every element is within tol.
func (r *Report) Passed(tol float64) bool {
	return r.MaxError <= tol
}

// Check compares the analytic gradient of f at inputs with a central
// finite-difference estimate. Inputs must be float64 or *tensor.Array values
// and f must return a float64. A report is returned even when the gradients
// disagree; the error then wraps ErrMismatch.
func Check(ctx context.Context, name string, f autodiff.Func, inputs []any, s Settings, opts ...autodiff.Option) (*Report, error) {
	l, point, err := flattenInputs(inputs)
	if err != nil {
		return nil, err
	}

	res, err := autodiff.Gradient(ctx, f, inputs, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if _, ok := res.Value.(float64); !ok {
		return nil, fmt.Errorf("%s: %w: %T", name, ErrNonScalarValue, res.Value)
	}

	analytic := make([]float64, 0, len(point))
	for i, g := range res.Gradients {
		flat, err := Flatten(g)
		if err != nil {
			return nil, fmt.Errorf("%s: gradient %d: %w", name, i, err)
		}
		analytic = append(analytic, flat...)
	}

	var evalErr error
	objective := func(x []float64) float64 {
		v, err := autodiff.Eval(f, l.rebuild(x))
		if err != nil {
			if evalErr == nil {
				evalErr = err
			}
			return math.NaN()
		}
		return v.(float64)
	}
	numeric := fd.Gradient(nil, objective, point, &fd.Settings{
		Formula: fd.Central,
		Step:    s.Step,
	})
	if evalErr != nil {
		return nil, fmt.Errorf("%s: finite differences: %w", name, evalErr)
	}

	report := &Report{
		Name:     name,
		Point:    point,
		Analytic: analytic,
		Numeric:  numeric,
		Stats:    res.Stats,
	}
	for i := range analytic {
		if d := math.Abs(analytic[i] - numeric[i]); d > report.MaxError || math.IsNaN(d) {
			report.MaxError = d
			report.Worst = i
		}
	}
	if !report.Passed(s.Tolerance) {
		return report, fmt.Errorf("%s: %w: element %d analytic %g numeric %g",
			name, ErrMismatch, report.Worst, analytic[report.Worst], numeric[report.Worst])
	}
	return report, nil
}

// Flatten returns the elements of a cotangent in row-major order. Composite
// fields are concatenated in field order.
func Flatten(v cotangent.Value) ([]float64, error) {
	switch v := v.(type) {
	case *cotangent.Scalar:
		return []float64{v.Float()}, nil
	case *cotangent.Dense:
		return append([]float64(nil), v.Data()...), nil
	case *cotangent.Sparse:
		d, err := v.Densify()
		if err != nil {
			return nil, err
		}
		return d.Data(), nil
	case *cotangent.Composite:
		var out []float64
		for i := 0; i < v.NumFields(); i++ {
			field := v.Field(i)
			if field == nil {
				return nil, fmt.Errorf("field %d is unset", i)
			}
			flat, err := Flatten(field)
			if err != nil {
				return nil, fmt.Errorf("field %d: %w", i, err)
			}
			out = append(out, flat...)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %T", cotangent.ErrUnsupportedValue, v)
	}
}

// layout records how a flat parameter vector maps back onto inputs.
type layout struct {
	shapes []tensor.Shape
	arrays []bool // false for float64 inputs
}

func flattenInputs(inputs []any) (layout, []float64, error) {
	l := layout{shapes: make([]tensor.Shape, len(inputs)), arrays: make([]bool, len(inputs))}
	var point []float64
	for i, in := range inputs {
		switch in := in.(type) {
		case float64:
			point = append(point, in)
		case *tensor.Array:
			l.shapes[i] = in.Shape()
			l.arrays[i] = true
			point = append(point, in.Data()...)
		default:
			return layout{}, nil, fmt.Errorf("input %d: %w: %T", i, ErrUnsupported, in)
		}
	}
	return l, point, nil
}

func (l layout) rebuild(x []float64) []any {
	inputs := make([]any, len(l.shapes))
	off := 0
	for i, shape := range l.shapes {
		if !l.arrays[i] {
			inputs[i] = x[off]
			off++
			continue
		}
		n := shape.NumElements()
		arr, err := tensor.FromSlice(append([]float64(nil), x[off:off+n]...), shape)
		if err != nil {
			// Shapes come from valid arrays.
			panic(err)
		}
		inputs[i] = arr
		off += n
	}
	return inputs
}
