package ops

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"

	"github.com/born-ml/pullback/internal/cotangent"
	"github.com/born-ml/pullback/internal/tensor"
)

var central = &fd.Settings{Formula: fd.Central, Step: 1e-5}

// pullback invokes op.Backward with a scalar cotangent and unwraps scalars.
func pullback(t *testing.T, op Operation, g float64) []float64 {
	t.Helper()
	contribs, err := op.Backward(cotangent.NewScalar(g))
	require.NoError(t, err)
	require.Len(t, contribs, op.NumInputs())
	out := make([]float64, len(contribs))
	for i, c := range contribs {
		v, err := cotangent.AsScalar(c)
		require.NoError(t, err)
		out[i] = v
	}
	return out
}

func TestUnaryOps_MatchFiniteDifferences(t *testing.T) {
	tests := []struct {
		name string
		x    float64
		prim func(float64) (float64, Operation)
	}{
		{"sin", 1.3, func(x float64) (float64, Operation) { return Sin(x) }},
		{"cos", 0.7, func(x float64) (float64, Operation) { return Cos(x) }},
		{"exp", -0.4, func(x float64) (float64, Operation) { return Exp(x) }},
		{"log", 2.5, func(x float64) (float64, Operation) { return Log(x) }},
		{"sqrt", 3.0, func(x float64) (float64, Operation) { return Sqrt(x) }},
		{"tanh", 0.3, func(x float64) (float64, Operation) { return Tanh(x) }},
		{"neg", 4.0, func(x float64) (float64, Operation) { return Neg(x) }},
		{"scale", 1.5, func(x float64) (float64, Operation) { return Scale(x, -3) }},
		{"pow", 1.7, func(x float64) (float64, Operation) { return Pow(x, 3) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := func(x float64) float64 {
				y, _ := tt.prim(x)
				return y
			}
			_, op := tt.prim(tt.x)
			assert.Equal(t, 1, op.NumInputs())
			assert.Equal(t, tt.name, op.Name())

			got := pullback(t, op, 2)[0]
			want := 2 * fd.Derivative(f, tt.x, central)
			assert.InDelta(t, want, got, 1e-6)
		})
	}
}

func TestBinaryOps_MatchFiniteDifferences(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
		prim func(a, b float64) (float64, Operation)
	}{
		{"add", 1.5, -2, func(a, b float64) (float64, Operation) { return Add(a, b) }},
		{"sub", 1.5, -2, func(a, b float64) (float64, Operation) { return Sub(a, b) }},
		{"mul", 3, 4, func(a, b float64) (float64, Operation) { return Mul(a, b) }},
		{"div", 3, 4, func(a, b float64) (float64, Operation) { return Div(a, b) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, op := tt.prim(tt.a, tt.b)
			got := pullback(t, op, 1)

			fa := func(a float64) float64 { y, _ := tt.prim(a, tt.b); return y }
			fb := func(b float64) float64 { y, _ := tt.prim(tt.a, b); return y }
			assert.InDelta(t, fd.Derivative(fa, tt.a, central), got[0], 1e-6)
			assert.InDelta(t, fd.Derivative(fb, tt.b, central), got[1], 1e-6)
		})
	}
}

func TestAddOp_RoutesToBothOperands(t *testing.T) {
	_, op := Add(1, 2)
	assert.Equal(t, []float64{0.25, 0.25}, pullback(t, op, 0.25))
}

func TestPowOp_ZeroExponent(t *testing.T) {
	y, op := Pow(0, 0)
	assert.Equal(t, 1.0, y)
	assert.Equal(t, []float64{0}, pullback(t, op, 1))
}

func TestScalarOps_RejectNonScalarCotangent(t *testing.T) {
	_, op := Sin(1)
	d, err := cotangent.NewDense(tensor.Shape{2})
	require.NoError(t, err)
	_, err = op.Backward(d)
	assert.ErrorIs(t, err, cotangent.ErrNotScalar)
}

func TestIndexOp(t *testing.T) {
	x, err := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	require.NoError(t, err)

	v, op, err := Index(x, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)
	assert.Equal(t, 3, op.Offset())

	contribs, err := op.Backward(cotangent.NewScalar(2))
	require.NoError(t, err)
	sparse := contribs[0].(*cotangent.Sparse)
	assert.Equal(t, 1, sparse.Len())

	slot, err := cotangent.NewDense(x.Shape())
	require.NoError(t, err)
	require.NoError(t, op.BackwardInto(cotangent.NewScalar(2), []cotangent.Accumulator{slot}))
	require.NoError(t, op.BackwardInto(cotangent.NewScalar(1), []cotangent.Accumulator{slot}))
	assert.Equal(t, []float64{0, 0, 0, 3, 0, 0}, slot.Data())
	assert.Equal(t, 2, slot.Touched())

	// Constant inputs get no slot.
	assert.NoError(t, op.BackwardInto(cotangent.NewScalar(1), []cotangent.Accumulator{nil}))

	wrong, err := cotangent.NewDense(tensor.Shape{6})
	require.NoError(t, err)
	err = op.BackwardInto(cotangent.NewScalar(1), []cotangent.Accumulator{wrong})
	assert.ErrorIs(t, err, cotangent.ErrShapeMismatch)
}

func TestIndexOp_OutOfRange(t *testing.T) {
	_, _, err := Index(tensor.Vector(1, 2), 2)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, _, err = Index(nil, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSliceOp(t *testing.T) {
	x := tensor.Vector(1, 2, 3, 4, 5)
	y, op, err := Slice(x, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3, 4}, y.Data())

	g, err := cotangent.DenseFrom([]float64{1, 2, 3}, tensor.Shape{3})
	require.NoError(t, err)

	slot, err := cotangent.NewDense(x.Shape())
	require.NoError(t, err)
	require.NoError(t, op.BackwardInto(g, []cotangent.Accumulator{slot}))
	assert.Equal(t, []float64{0, 1, 2, 3, 0}, slot.Data())
	assert.Equal(t, 3, slot.Touched())

	contribs, err := op.Backward(g)
	require.NoError(t, err)
	dense, err := contribs[0].(*cotangent.Sparse).Densify()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2, 3, 0}, dense.Data())

	_, _, err = Slice(x, 3, 3)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, _, err = Slice(x, 0, 6)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSumOp(t *testing.T) {
	v, op, err := Sum(tensor.Vector(1, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, 6.0, v)

	contribs, err := op.Backward(cotangent.NewScalar(0.5))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5, 0.5}, contribs[0].(*cotangent.Dense).Data())
}

func TestDotOp(t *testing.T) {
	a, b := tensor.Vector(1, 2, 3), tensor.Vector(4, 5, 6)
	v, op, err := Dot(a, b)
	require.NoError(t, err)
	assert.Equal(t, 32.0, v)

	contribs, err := op.Backward(cotangent.NewScalar(2))
	require.NoError(t, err)
	assert.Equal(t, []float64{8, 10, 12}, contribs[0].(*cotangent.Dense).Data())
	assert.Equal(t, []float64{2, 4, 6}, contribs[1].(*cotangent.Dense).Data())

	_, _, err = Dot(a, tensor.Vector(1, 2))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestStackOp(t *testing.T) {
	y, op, err := Stack(1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, y.Data())
	assert.Equal(t, 3, op.NumInputs())

	g, err := cotangent.DenseFrom([]float64{0.1, 0.2, 0.3}, tensor.Shape{3})
	require.NoError(t, err)
	contribs, err := op.Backward(g)
	require.NoError(t, err)
	require.Len(t, contribs, 3)
	v, err := cotangent.AsScalar(contribs[2])
	require.NoError(t, err)
	assert.Equal(t, 0.3, v)

	hot, err := cotangent.OneHot(tensor.Shape{3}, 1, 7)
	require.NoError(t, err)
	contribs, err = op.Backward(hot)
	require.NoError(t, err)
	assert.Nil(t, contribs[0])
	assert.Nil(t, contribs[2])
	v, err = cotangent.AsScalar(contribs[1])
	require.NoError(t, err)
	assert.Equal(t, 7.0, v)

	_, _, err = Stack()
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestPackAndFieldOps(t *testing.T) {
	tuple, pack, err := Pack(2.0, tensor.Vector(1, 2))
	require.NoError(t, err)
	require.Len(t, tuple, 2)

	v, field, err := Field(tuple, 0)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	slot, err := cotangent.ZeroLike(tuple)
	require.NoError(t, err)
	require.NoError(t, field.BackwardInto(cotangent.NewScalar(3), []cotangent.Accumulator{slot}))
	require.NoError(t, field.BackwardInto(cotangent.NewScalar(1), []cotangent.Accumulator{slot}))

	composite := slot.(*cotangent.Composite)
	got, err := cotangent.AsScalar(composite.Field(0))
	require.NoError(t, err)
	assert.Equal(t, 4.0, got)
	assert.True(t, composite.Field(1).IsZero())

	contribs, err := pack.Backward(composite)
	require.NoError(t, err)
	require.Len(t, contribs, 2)
	got, err = cotangent.AsScalar(contribs[0])
	require.NoError(t, err)
	assert.Equal(t, 4.0, got)

	sole, err := field.Backward(cotangent.NewScalar(1))
	require.NoError(t, err)
	assert.Nil(t, sole[0].(*cotangent.Composite).Field(1))

	_, _, err = Field(tuple, 2)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, _, err = Pack("x")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestFieldOp_AliasSlot(t *testing.T) {
	tuple := tensor.Tuple{tensor.Vector(1, 2, 3), 4.0}
	_, field, err := Field(tuple, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, field.Index())

	parent, err := cotangent.ZeroLike(tuple)
	require.NoError(t, err)
	slot, ok, err := field.AliasSlot(parent)
	require.NoError(t, err)
	require.True(t, ok)

	// Writes through the alias land in the parent's field.
	d := slot.(*cotangent.Dense)
	require.NoError(t, d.AccumulateAt(1, 5))
	assert.Same(t, d, parent.(*cotangent.Composite).Field(0))
	assert.Equal(t, []float64{0, 5, 0}, d.Data())
	assert.Equal(t, 1, d.Touched())

	_, ok, err = field.AliasSlot(cotangent.NewScalar(0))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDivOp_ByZeroFollowsIEEE(t *testing.T) {
	y, _ := Div(1, 0)
	assert.True(t, math.IsInf(y, 1))
}
