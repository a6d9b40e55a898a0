package tensor

import (
	"testing"
)

// Test helpers

func assertEqualShape(t *testing.T, expected, actual Shape, msg string) {
	t.Helper()
	if !expected.Equal(actual) {
		t.Errorf("%s: expected shape %v, got %v", msg, expected, actual)
	}
}

// Shape Tests

func TestShapeNumElements(t *testing.T) {
	tests := []struct {
		shape Shape
		want  int
	}{
		{Shape{}, 1},
		{Shape{4}, 4},
		{Shape{2, 3}, 6},
		{Shape{2, 3, 4}, 24},
	}

	for _, tt := range tests {
		if got := tt.shape.NumElements(); got != tt.want {
			t.Errorf("%v.NumElements() = %d, want %d", tt.shape, got, tt.want)
		}
	}
}

func TestShapeValidate(t *testing.T) {
	if err := (Shape{2, 3}).Validate(); err != nil {
		t.Errorf("valid shape rejected: %v", err)
	}
	if err := (Shape{2, 0}).Validate(); err == nil {
		t.Error("zero dimension should be rejected")
	}
	if err := (Shape{-1}).Validate(); err == nil {
		t.Error("negative dimension should be rejected")
	}
}

func TestShapeStrides(t *testing.T) {
	strides := Shape{2, 3, 4}.ComputeStrides()
	want := []int{12, 4, 1}
	for i := range want {
		if strides[i] != want[i] {
			t.Errorf("stride[%d] = %d, want %d", i, strides[i], want[i])
		}
	}
	if len(Shape{}.ComputeStrides()) != 0 {
		t.Error("scalar shape should have no strides")
	}
}

func TestShapeOffset(t *testing.T) {
	tests := []struct {
		shape Shape
		index []int
		want  int
	}{
		{Shape{4}, []int{2}, 2},
		{Shape{2, 3}, []int{1, 2}, 5},
		{Shape{2, 3, 4}, []int{1, 0, 3}, 15},
		{Shape{}, nil, 0},
	}

	for _, tt := range tests {
		got, err := tt.shape.Offset(tt.index...)
		if err != nil {
			t.Fatalf("%v.Offset(%v): %v", tt.shape, tt.index, err)
		}
		if got != tt.want {
			t.Errorf("%v.Offset(%v) = %d, want %d", tt.shape, tt.index, got, tt.want)
		}
	}
}

func TestShapeOffset_Errors(t *testing.T) {
	if _, err := (Shape{4}).Offset(4); err == nil {
		t.Error("out of range index should fail")
	}
	if _, err := (Shape{4}).Offset(-1); err == nil {
		t.Error("negative index should fail")
	}
	if _, err := (Shape{2, 2}).Offset(1); err == nil {
		t.Error("rank mismatch should fail")
	}
}

func TestShapeString(t *testing.T) {
	if got := (Shape{}).String(); got != "()" {
		t.Errorf("scalar String() = %q", got)
	}
	if got := (Shape{2, 3}).String(); got != "(2, 3)" {
		t.Errorf("String() = %q, want (2, 3)", got)
	}
}

// Array Tests

func TestFromSlice(t *testing.T) {
	src := []float64{1, 2, 3, 4, 5, 6}
	a, err := FromSlice(src, Shape{2, 3})
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	assertEqualShape(t, Shape{2, 3}, a.Shape(), "FromSlice shape")

	// Source must be copied.
	src[0] = 100
	if a.Data()[0] != 1 {
		t.Errorf("FromSlice did not copy input, got %v", a.Data()[0])
	}

	v, err := a.At(1, 1)
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	if v != 5 {
		t.Errorf("At(1, 1) = %v, want 5", v)
	}
}

func TestFromSlice_ShapeMismatch(t *testing.T) {
	if _, err := FromSlice([]float64{1, 2, 3}, Shape{2, 2}); err == nil {
		t.Error("expected element count error")
	}
}

func TestVectorAndZeros(t *testing.T) {
	v := Vector(1, 2, 3, 4)
	assertEqualShape(t, Shape{4}, v.Shape(), "Vector shape")
	if v.Len() != 4 {
		t.Errorf("Len() = %d, want 4", v.Len())
	}

	z, err := Zeros(Shape{3})
	if err != nil {
		t.Fatalf("Zeros: %v", err)
	}
	for i, x := range z.Data() {
		if x != 0 {
			t.Errorf("Zeros[%d] = %v", i, x)
		}
	}
}

func TestArrayClone(t *testing.T) {
	a := Vector(1, 2)
	b := a.Clone()
	b.data[0] = 9
	if a.Data()[0] != 1 {
		t.Error("Clone shares storage with original")
	}
}
