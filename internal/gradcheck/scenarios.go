package gradcheck

import (
	"context"
	"fmt"
	"math"

	"github.com/born-ml/pullback/internal/autodiff"
	"github.com/born-ml/pullback/internal/parallel"
	"github.com/born-ml/pullback/internal/tensor"
)

// Scenario is a function with a known value and gradient at a fixed point.
type Scenario struct {
	Name   string
	Func   autodiff.Func
	Inputs []any
	Value  float64
	Grad   []float64 // Flattened expected gradient over all inputs
}

// Outcome is the result of running a scenario.
type Outcome struct {
	Scenario *Scenario
	Value    float64
	Grad     []float64
	Stats    autodiff.Stats
}

// Scenarios returns the reference catalog, evaluated with seed 1.
func Scenarios() []Scenario {
	square := func(in []autodiff.Var) autodiff.Var {
		return autodiff.Mul(in[0], in[0])
	}
	sinSquare := func(in []autodiff.Var) autodiff.Var {
		return autodiff.Sin(square(in))
	}
	indexSum := func(a, b int) autodiff.Func {
		return func(in []autodiff.Var) autodiff.Var {
			return autodiff.Add(autodiff.Index(in[0], a), autodiff.Index(in[0], b))
		}
	}

	return []Scenario{
		{
			Name:   "square",
			Func:   square,
			Inputs: []any{3.0},
			Value:  9,
			Grad:   []float64{6},
		},
		{
			Name:   "sin_square",
			Func:   sinSquare,
			Inputs: []any{1.3},
			Value:  math.Sin(1.69),
			Grad:   []float64{2 * 1.3 * math.Cos(1.69)},
		},
		{
			Name: "sin_square_plus_x",
			Func: func(in []autodiff.Var) autodiff.Var {
				return autodiff.Add(sinSquare(in), in[0])
			},
			Inputs: []any{2.0},
			Value:  math.Sin(4) + 2,
			Grad:   []float64{4*math.Cos(4) + 1},
		},
		{
			Name:   "index_alias",
			Func:   indexSum(0, 0),
			Inputs: []any{tensor.Vector(1, 2, 3, 4)},
			Value:  2,
			Grad:   []float64{2, 0, 0, 0},
		},
		{
			Name:   "index_distinct",
			Func:   indexSum(0, 2),
			Inputs: []any{tensor.Vector(1, 2, 3, 4)},
			Value:  4,
			Grad:   []float64{1, 0, 1, 0},
		},
	}
}

// Run evaluates the scenario and compares value and gradient with the
// expected ones within tol.
func (s *Scenario) Run(ctx context.Context, tol float64, opts ...autodiff.Option) (*Outcome, error) {
	res, err := autodiff.Gradient(ctx, s.Func, s.Inputs, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name, err)
	}
	value, ok := res.Value.(float64)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %T", s.Name, ErrNonScalarValue, res.Value)
	}

	out := &Outcome{Scenario: s, Value: value, Stats: res.Stats}
	for i, g := range res.Gradients {
		flat, err := Flatten(g)
		if err != nil {
			return nil, fmt.Errorf("%s: gradient %d: %w", s.Name, i, err)
		}
		out.Grad = append(out.Grad, flat...)
	}

	if math.Abs(value-s.Value) > tol {
		return out, fmt.Errorf("%s: %w: value %g, want %g", s.Name, ErrMismatch, value, s.Value)
	}
	if len(out.Grad) != len(s.Grad) {
		return out, fmt.Errorf("%s: %w: %d gradient elements, want %d", s.Name, ErrMismatch, len(out.Grad), len(s.Grad))
	}
	for i := range s.Grad {
		if math.Abs(out.Grad[i]-s.Grad[i]) > tol {
			return out, fmt.Errorf("%s: %w: gradient[%d] %g, want %g", s.Name, ErrMismatch, i, out.Grad[i], s.Grad[i])
		}
	}
	return out, nil
}

// Result pairs a scenario outcome with its finite-difference report.
type Result struct {
	Scenario *Scenario
	Outcome  *Outcome
	Report   *Report
	Err      error
}

// RunAll runs every scenario and its finite-difference check. Scenarios own
// their tapes, so they run concurrently as cfg allows. Results are in
// scenario order.
func RunAll(ctx context.Context, scenarios []Scenario, tol float64, s Settings, cfg parallel.Config, opts ...autodiff.Option) []Result {
	results := make([]Result, len(scenarios))
	errs := parallel.For(ctx, len(scenarios), func(ctx context.Context, i int) error {
		sc := &scenarios[i]
		r := &results[i]
		r.Scenario = sc

		out, err := sc.Run(ctx, tol, opts...)
		r.Outcome = out
		if err != nil {
			return err
		}
		r.Report, err = Check(ctx, sc.Name, sc.Func, sc.Inputs, s, opts...)
		return err
	}, cfg)
	for i, err := range errs {
		results[i].Err = err
	}
	return results
}
