// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the forward-value types differentiated by package
// autodiff.
//
// The package defines:
//   - Shape: dimensions of a value, empty for scalars
//   - Array: dense row-major float64 aggregate
//   - Tuple: composite value whose fields are float64, *Array or Tuple
//
// Example:
//
//	x, _ := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
//	v, _ := x.At(1, 2) // 6
//	params := tensor.Tuple{x, 0.5}
package tensor

import (
	"github.com/born-ml/pullback/internal/tensor"
)

// Shape represents the dimensions of a value.
type Shape = tensor.Shape

// Array is a dense, row-major float64 aggregate.
type Array = tensor.Array

// Tuple is a composite value.
type Tuple = tensor.Tuple

// FromSlice creates an array holding a copy of data.
func FromSlice(data []float64, shape Shape) (*Array, error) {
	return tensor.FromSlice(data, shape)
}

// Vector creates a one-dimensional array holding a copy of values.
func Vector(values ...float64) *Array {
	return tensor.Vector(values...)
}

// Zeros creates a zero-filled array.
func Zeros(shape Shape) (*Array, error) {
	return tensor.Zeros(shape)
}
