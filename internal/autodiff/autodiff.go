// Package autodiff implements reverse-mode automatic differentiation on an
// explicit tape.
//
// Architecture:
//   - Var: a forward value plus the tape node that produced it
//   - Tape: arena of nodes in creation order, each holding the pullback of
//     the primitive that created it (see package ops)
//   - Backward: reverse walk that sums every consumer's contribution into a
//     node's slot before that node's own pullback runs
//   - Gradient: the driver that owns one tape per call
//
// Usage:
//
//	square := func(in []autodiff.Var) autodiff.Var {
//	    return autodiff.Mul(in[0], in[0])
//	}
//	res, err := autodiff.Gradient(ctx, square, []any{3.0})
//	// res.Value == 9.0, res.Scalar(0) == 6.0
package autodiff

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/born-ml/pullback/internal/cotangent"
	"github.com/born-ml/pullback/internal/tensor"
)

// Func is a differentiable function written in terms of primitives.
// It receives one Var per input, in order.
type Func func(in []Var) Var

// Result is the outcome of Gradient.
type Result struct {
	Value     any               // Forward value of the function
	Gradients []cotangent.Value // One per input, shaped like the input
	Stats     Stats
	TapeID    uuid.UUID
}

// Scalar returns gradient i as a float64.
func (r *Result) Scalar(i int) (float64, error) {
	if i < 0 || i >= len(r.Gradients) {
		return 0, fmt.Errorf("gradient %d outside %d inputs", i, len(r.Gradients))
	}
	return cotangent.AsScalar(r.Gradients[i])
}

// Dense returns gradient i as a dense array cotangent.
func (r *Result) Dense(i int) (*cotangent.Dense, error) {
	if i < 0 || i >= len(r.Gradients) {
		return nil, fmt.Errorf("gradient %d outside %d inputs", i, len(r.Gradients))
	}
	d, ok := r.Gradients[i].(*cotangent.Dense)
	if !ok {
		return nil, fmt.Errorf("%w: gradient %d is %T", ErrValueType, i, r.Gradients[i])
	}
	return d, nil
}

// Option configures Gradient.
type Option func(*options)

type options struct {
	seed   cotangent.Value
	logger *slog.Logger
}

// WithSeed sets the cotangent the output's slot starts from. Scalar outputs
// default to 1; non-scalar outputs require a seed.
func WithSeed(seed cotangent.Value) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithLogger sets the logger. If nil, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Gradient evaluates f on inputs and returns its value together with one
// gradient per input.
//
// Each call builds a fresh tape, registers every input as a leaf, runs f,
// seeds the output and walks the tape backwards. The tape is discarded on
// return. Inputs may be float64, *tensor.Array or tensor.Tuple values and
// their gradients have the same structure: *cotangent.Scalar,
// *cotangent.Dense and *cotangent.Composite respectively. Inputs with no path
// to the output get a zero gradient.
//
// Shape mismatches, tape integrity violations and invalid primitive
// arguments abort the call with an error; no partial gradients are returned.
// ctx carries tracing only, the computation itself is not cancellable.
func Gradient(ctx context.Context, f Func, inputs []any, opts ...Option) (*Result, error) {
	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	initMetrics(cfg.logger)

	tape := NewTape()
	ctx, span := tracer.Start(ctx, "autodiff.Gradient",
		trace.WithAttributes(
			attribute.String("tape_id", tape.ID().String()),
			attribute.Int("inputs", len(inputs)),
		),
	)
	defer span.End()

	start := time.Now()
	res, err := gradient(tape, f, inputs, cfg.seed)
	elapsed := time.Since(start)

	var stats Stats
	if res != nil {
		stats = res.Stats
	} else {
		stats.Nodes = tape.Len()
	}
	recordMetrics(ctx, stats, elapsed, err != nil)
	span.SetAttributes(
		attribute.Int("nodes", stats.Nodes),
		attribute.Int("pullbacks_invoked", stats.Invoked),
		attribute.Int("pullbacks_skipped", stats.Skipped),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		cfg.logger.Warn("gradient aborted",
			slog.String("tape_id", tape.ID().String()),
			slog.Int("nodes", tape.Len()),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	cfg.logger.Debug("gradient computed",
		slog.String("tape_id", tape.ID().String()),
		slog.Int("nodes", stats.Nodes),
		slog.Int("pullbacks_invoked", stats.Invoked),
		slog.Int("pullbacks_skipped", stats.Skipped),
		slog.Int("pullbacks_in_place", stats.InPlace),
		slog.Int("pullbacks_aliased", stats.Aliased),
		slog.Duration("duration", elapsed),
	)
	return res, nil
}

func gradient(tape *Tape, f Func, inputs []any, seed cotangent.Value) (*Result, error) {
	leaves := make([]Var, len(inputs))
	for i, in := range inputs {
		v, err := tape.Leaf(in)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		leaves[i] = v
	}

	output, err := run(f, leaves)
	if err != nil {
		return nil, err
	}

	if seed == nil {
		if _, ok := output.Scalar(); !ok {
			return nil, fmt.Errorf("%w: output is %T", ErrSeedRequired, output.value)
		}
		one, err := cotangent.One(tensor.Shape{})
		if err != nil {
			return nil, err
		}
		seed = one
	}

	grads, err := tape.Backward(output, seed)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Value:     output.value,
		Gradients: make([]cotangent.Value, len(leaves)),
		Stats:     grads.Stats,
		TapeID:    tape.ID(),
	}
	for i, leaf := range leaves {
		g, err := grads.Of(leaf)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		res.Gradients[i] = g
	}
	return res, nil
}

// Eval evaluates f on inputs without recording a tape. Inputs are passed as
// constants, so the value is computed by exactly the same primitives Gradient
// uses with none of its bookkeeping.
func Eval(f Func, inputs []any) (any, error) {
	consts := make([]Var, len(inputs))
	for i, in := range inputs {
		if err := checkValue(in); err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		consts[i] = Const(in)
	}
	out, err := run(f, consts)
	if err != nil {
		return nil, err
	}
	return out.value, nil
}
