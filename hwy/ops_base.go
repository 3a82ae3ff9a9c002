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

package hwy

// This file provides the packet operations. All of them are pure: they never
// modify their inputs and only Store/StoreN write to memory.

// Load creates a vector from the first Lanes elements of src.
// src must hold at least Lanes elements.
func Load[T Scalar](src []T) Vec[T] {
	_ = src[Lanes-1]
	return Vec[T]{data: [Lanes]T{src[0], src[1], src[2], src[3]}}
}

// LoadAligned is Load for a slice whose first element is aligned to
// Lanes*sizeof(T) bytes. See IsAligned.
func LoadAligned[T Scalar](src []T) Vec[T] {
	_ = src[Lanes-1]
	return Vec[T]{data: [Lanes]T{src[0], src[1], src[2], src[3]}}
}

// LoadN loads min(n, len(src), Lanes) elements and zero-fills the rest.
func LoadN[T Scalar](src []T, n int) Vec[T] {
	var v Vec[T]
	n = min(n, len(src), Lanes)
	copy(v.data[:n], src[:n])
	return v
}

// Store writes all lanes of v to dst. dst must hold at least Lanes elements.
func Store[T Scalar](v Vec[T], dst []T) {
	_ = dst[Lanes-1]
	dst[0], dst[1], dst[2], dst[3] = v.data[0], v.data[1], v.data[2], v.data[3]
}

// StoreAligned is Store for an aligned destination.
func StoreAligned[T Scalar](v Vec[T], dst []T) {
	Store(v, dst)
}

// StoreN writes the first min(n, len(dst), Lanes) lanes of v to dst.
func StoreN[T Scalar](v Vec[T], dst []T, n int) {
	n = min(n, len(dst), Lanes)
	copy(dst[:n], v.data[:n])
}

// Set broadcasts value to all lanes.
func Set[T Scalar](value T) Vec[T] {
	return Vec[T]{data: [Lanes]T{value, value, value, value}}
}

// Zero returns a vector with all lanes set to zero.
func Zero[T Scalar]() Vec[T] {
	return Vec[T]{}
}

// Add returns a + b lane-wise.
func Add[T Scalar](a, b Vec[T]) Vec[T] {
	return Vec[T]{data: [Lanes]T{
		a.data[0] + b.data[0],
		a.data[1] + b.data[1],
		a.data[2] + b.data[2],
		a.data[3] + b.data[3],
	}}
}

// Sub returns a - b lane-wise.
func Sub[T Scalar](a, b Vec[T]) Vec[T] {
	return Vec[T]{data: [Lanes]T{
		a.data[0] - b.data[0],
		a.data[1] - b.data[1],
		a.data[2] - b.data[2],
		a.data[3] - b.data[3],
	}}
}

// Mul returns a * b lane-wise.
func Mul[T Scalar](a, b Vec[T]) Vec[T] {
	return Vec[T]{data: [Lanes]T{
		a.data[0] * b.data[0],
		a.data[1] * b.data[1],
		a.data[2] * b.data[2],
		a.data[3] * b.data[3],
	}}
}

// MulAdd returns a*b + c lane-wise. On targets with FMA the compiler may fuse
// the multiply and add, so results can differ in the last bit from Add(Mul()).
func MulAdd[T Scalar](a, b, c Vec[T]) Vec[T] {
	return Vec[T]{data: [Lanes]T{
		a.data[0]*b.data[0] + c.data[0],
		a.data[1]*b.data[1] + c.data[1],
		a.data[2]*b.data[2] + c.data[2],
		a.data[3]*b.data[3] + c.data[3],
	}}
}

// Scale returns s*v.
func Scale[T Scalar](s T, v Vec[T]) Vec[T] {
	return Mul(Set(s), v)
}

// Conj returns the lane-wise complex conjugate. It is the identity for real types.
func Conj[T Scalar](v Vec[T]) Vec[T] {
	if !IsComplex[T]() {
		return v
	}
	for i := range v.data {
		v.data[i] = ConjOf(v.data[i])
	}
	return v
}

// ReduceSum returns the sum of all lanes, pairwise.
func ReduceSum[T Scalar](v Vec[T]) T {
	return (v.data[0] + v.data[1]) + (v.data[2] + v.data[3])
}
