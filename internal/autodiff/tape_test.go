package autodiff_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/pullback/internal/autodiff"
	"github.com/born-ml/pullback/internal/autodiff/ops"
	"github.com/born-ml/pullback/internal/cotangent"
	"github.com/born-ml/pullback/internal/tensor"
)

// brokenOp declares one input but returns two contributions.
type brokenOp struct{}

func (brokenOp) Name() string   { return "broken" }
func (brokenOp) NumInputs() int { return 1 }
func (brokenOp) Backward(out cotangent.Value) ([]cotangent.Value, error) {
	return []cotangent.Value{out, out}, nil
}

// countingOp doubles its input and counts pullback invocations.
type countingOp struct {
	calls *int
}

func (op countingOp) Name() string   { return "double" }
func (op countingOp) NumInputs() int { return 1 }
func (op countingOp) Backward(out cotangent.Value) ([]cotangent.Value, error) {
	*op.calls++
	g, err := cotangent.AsScalar(out)
	if err != nil {
		return nil, err
	}
	return []cotangent.Value{cotangent.NewScalar(2 * g)}, nil
}

func TestTape_RecordOrder(t *testing.T) {
	tape := autodiff.NewTape()
	x, err := tape.Leaf(3.0)
	require.NoError(t, err)

	y := autodiff.Mul(x, x)
	z := autodiff.Sin(y)

	assert.Equal(t, 3, tape.Len())
	assert.Equal(t, 0, x.Index())
	assert.Equal(t, 1, y.Index())
	assert.Equal(t, 2, z.Index())

	info, err := tape.Node(1)
	require.NoError(t, err)
	assert.Equal(t, "mul", info.Op)
	assert.Equal(t, []int{0, 0}, info.Inputs)

	info, err = tape.Node(0)
	require.NoError(t, err)
	assert.Equal(t, "leaf", info.Op)

	_, err = tape.Node(3)
	assert.Error(t, err)
}

func TestTape_ConstantInputsHaveNoProducer(t *testing.T) {
	tape := autodiff.NewTape()
	x, err := tape.Leaf(2.0)
	require.NoError(t, err)

	y := autodiff.Add(autodiff.Const(1.0), x)
	info, err := tape.Node(y.Index())
	require.NoError(t, err)
	assert.Equal(t, []int{-1, 0}, info.Inputs)

	c := autodiff.Add(autodiff.Const(1.0), autodiff.Const(2.0))
	assert.True(t, c.IsConst())
	assert.Equal(t, -1, c.Index())
	assert.Equal(t, 2, tape.Len())
}

func TestTape_RejectsForeignProducer(t *testing.T) {
	a, b := autodiff.NewTape(), autodiff.NewTape()
	xa, err := a.Leaf(1.0)
	require.NoError(t, err)
	xb, err := b.Leaf(1.0)
	require.NoError(t, err)

	_, op := ops.Add(1, 1)
	_, err = a.Record(op, 2.0, xa, xb)
	require.ErrorIs(t, err, autodiff.ErrTapeIntegrity)

	var tapeErr *autodiff.TapeError
	require.ErrorAs(t, err, &tapeErr)
	assert.Equal(t, 1, tapeErr.Input)
	assert.Equal(t, a.ID(), tapeErr.Tape)

	_, err = autodiff.Apply(op, 2.0, xa, xb)
	assert.ErrorIs(t, err, autodiff.ErrTapeIntegrity)

	// Nothing was appended.
	assert.Equal(t, 1, a.Len())
}

func TestTape_RejectsArityMismatch(t *testing.T) {
	tape := autodiff.NewTape()
	x, err := tape.Leaf(1.0)
	require.NoError(t, err)

	_, op := ops.Add(1, 1)
	_, err = tape.Record(op, 2.0, x)
	assert.ErrorIs(t, err, autodiff.ErrArity)

	_, err = tape.Record(nil, 2.0, x)
	assert.ErrorIs(t, err, autodiff.ErrTapeIntegrity)

	_, sinOp := ops.Sin(1)
	_, err = tape.Record(sinOp, "not a value", x)
	assert.ErrorIs(t, err, cotangent.ErrUnsupportedValue)
}

func TestTape_BackwardOnce(t *testing.T) {
	tape := autodiff.NewTape()
	x, err := tape.Leaf(3.0)
	require.NoError(t, err)
	y := autodiff.Mul(x, x)

	grads, err := tape.Backward(y, cotangent.NewScalar(1))
	require.NoError(t, err)
	g, err := grads.Of(x)
	require.NoError(t, err)
	assert.Equal(t, 6.0, g.(*cotangent.Scalar).Float())

	assert.True(t, tape.Consumed())
	_, err = tape.Backward(y, cotangent.NewScalar(1))
	assert.ErrorIs(t, err, autodiff.ErrTapeConsumed)
	_, err = tape.Leaf(1.0)
	assert.ErrorIs(t, err, autodiff.ErrTapeConsumed)

	// Pullbacks are released once they ran.
	info, err := tape.Node(y.Index())
	require.NoError(t, err)
	assert.Equal(t, "released", info.Op)

	_, err = grads.Of(y)
	assert.ErrorIs(t, err, autodiff.ErrNotLeaf)
	_, err = grads.Of(autodiff.Const(1.0))
	assert.ErrorIs(t, err, autodiff.ErrNotLeaf)
}

func TestTape_BackwardRejectsForeignOutput(t *testing.T) {
	a, b := autodiff.NewTape(), autodiff.NewTape()
	xb, err := b.Leaf(1.0)
	require.NoError(t, err)

	_, err = a.Backward(xb, cotangent.NewScalar(1))
	assert.ErrorIs(t, err, autodiff.ErrTapeIntegrity)

	_, err = b.Backward(xb, nil)
	assert.ErrorIs(t, err, autodiff.ErrSeedRequired)
}

func TestTape_PullbackArityViolation(t *testing.T) {
	tape := autodiff.NewTape()
	x, err := tape.Leaf(1.0)
	require.NoError(t, err)
	y, err := tape.Record(brokenOp{}, 1.0, x)
	require.NoError(t, err)

	_, err = tape.Backward(y, cotangent.NewScalar(1))
	assert.ErrorIs(t, err, autodiff.ErrArity)
}

// TestTape_FanOutRunsPullbackOnce checks that a node consumed three times
// runs its pullback exactly once, with the summed cotangent.
func TestTape_FanOutRunsPullbackOnce(t *testing.T) {
	calls := 0
	tape := autodiff.NewTape()
	x, err := tape.Leaf(1.5)
	require.NoError(t, err)

	d, err := autodiff.Apply(countingOp{calls: &calls}, 3.0, x)
	require.NoError(t, err)

	// out = d*d + sin(d) + d
	out := autodiff.Add(autodiff.Add(autodiff.Mul(d, d), autodiff.Sin(d)), d)
	grads, err := tape.Backward(out, cotangent.NewScalar(1))
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	g, err := grads.Of(x)
	require.NoError(t, err)

	// d(out)/dd = 2d + cos(d) + 1 at d = 3, and dd/dx = 2.
	want := 2 * (2*3.0 + math.Cos(3.0) + 1)
	assert.InDelta(t, want, g.(*cotangent.Scalar).Float(), 1e-12)
	assert.Equal(t, tape.Len(), grads.Stats.Visited)
}

func TestTape_DeadBranchSkipped(t *testing.T) {
	tape := autodiff.NewTape()
	x, err := tape.Leaf(tensor.Vector(1, 2, 3))
	require.NoError(t, err)

	live := autodiff.Index(x, 0)
	_ = autodiff.Sum(x) // dead
	_ = autodiff.Exp(autodiff.Index(x, 2))

	grads, err := tape.Backward(live, cotangent.NewScalar(1))
	require.NoError(t, err)
	assert.Equal(t, 3, grads.Stats.Skipped)
	assert.Equal(t, 1, grads.Stats.Invoked)

	g, err := grads.Of(x)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 0}, g.(*cotangent.Dense).Data())
	assert.Equal(t, 1, g.(*cotangent.Dense).Touched())
}
