// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package hwy provides the packet layer used by the dense kernels: a
// fixed-width vector of scalars with load, store, broadcast, fused
// multiply-add and horizontal reduction, plus the scalar helpers that
// generic code needs for complex arithmetic.
//
// The lane count is a compile-time constant so that register-tile kernels
// can be written as straight-line code. The Go compiler keeps small Vec
// values in registers and contracts a*b+c into FMA where the target has it.
//
// Basic usage:
//
//	import "github.com/ajroetker/go-gemm/hwy"
//
//	a := hwy.Load(data1)
//	b := hwy.Load(data2)
//	acc := hwy.MulAdd(a, b, hwy.Zero[float64]())
//	sum := hwy.ReduceSum(acc)
package hwy

// Floats is a constraint for real floating-point types.
type Floats interface {
	float32 | float64
}

// Complexes is a constraint for complex floating-point types.
type Complexes interface {
	complex64 | complex128
}

// Scalar is the set of element types supported by the dense kernels.
type Scalar interface {
	Floats | Complexes
}

// Lanes is the number of scalars held by one Vec.
const Lanes = 4

// Vec is one packet of Lanes scalars.
//
// Vec instances should not be created directly; use Load, Set, or Zero instead.
type Vec[T Scalar] struct {
	data [Lanes]T
}

// NumLanes returns the number of lanes (elements) in this vector.
func (v Vec[T]) NumLanes() int {
	return Lanes
}

// Lane returns the i-th element.
func (v Vec[T]) Lane(i int) T {
	return v.data[i]
}

// Data returns a copy of the vector's elements.
// This is primarily for testing and should not be used in performance-critical code.
func (v Vec[T]) Data() []T {
	out := make([]T, Lanes)
	copy(out, v.data[:])
	return out
}

// Store writes the vector's data to a slice.
// This is the method form of the hwy.Store function.
func (v Vec[T]) Store(dst []T) {
	Store(v, dst)
}
