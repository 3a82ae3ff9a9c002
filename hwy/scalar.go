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

import (
	"math"
	"math/cmplx"
	"unsafe"
)

// Scalar helpers switch on a pointer to the value so the conversion to an
// interface does not allocate.

// IsComplex reports whether T is a complex type.
func IsComplex[T Scalar]() bool {
	var z T
	switch any(&z).(type) {
	case *complex64, *complex128:
		return true
	}
	return false
}

// SizeOf returns sizeof(T) in bytes.
func SizeOf[T Scalar]() int {
	var z T
	return int(unsafe.Sizeof(z))
}

// Epsilon returns the machine epsilon of the real type underlying T.
func Epsilon[T Scalar]() float64 {
	var z T
	switch any(&z).(type) {
	case *float32, *complex64:
		return 0x1p-23
	}
	return 0x1p-52
}

// ConjOf returns the complex conjugate of x, or x for real types.
func ConjOf[T Scalar](x T) T {
	switch p := any(&x).(type) {
	case *complex64:
		*p = complex(real(*p), -imag(*p))
	case *complex128:
		*p = cmplx.Conj(*p)
	}
	return x
}

// RealOf returns the real part of x as a float64.
func RealOf[T Scalar](x T) float64 {
	switch p := any(&x).(type) {
	case *float32:
		return float64(*p)
	case *float64:
		return *p
	case *complex64:
		return float64(real(*p))
	case *complex128:
		return real(*p)
	}
	panic("hwy: unsupported scalar type")
}

// ImagOf returns the imaginary part of x, 0 for real types.
func ImagOf[T Scalar](x T) float64 {
	switch p := any(&x).(type) {
	case *complex64:
		return float64(imag(*p))
	case *complex128:
		return imag(*p)
	}
	return 0
}

// FromReal converts r to T.
func FromReal[T Scalar](r float64) T {
	return FromParts[T](r, 0)
}

// FromParts builds re + i*im. The imaginary part is dropped for real types.
func FromParts[T Scalar](re, im float64) T {
	var z T
	switch p := any(&z).(type) {
	case *float32:
		*p = float32(re)
	case *float64:
		*p = re
	case *complex64:
		*p = complex(float32(re), float32(im))
	case *complex128:
		*p = complex(re, im)
	}
	return z
}

// Abs2 returns |x|^2.
func Abs2[T Scalar](x T) float64 {
	re, im := RealOf(x), ImagOf(x)
	return re*re + im*im
}

// Abs returns |x|.
func Abs[T Scalar](x T) float64 {
	switch p := any(&x).(type) {
	case *complex64:
		return cmplx.Abs(complex128(*p))
	case *complex128:
		return cmplx.Abs(*p)
	}
	return math.Abs(RealOf(x))
}

// IsFinite reports whether every component of x is finite.
func IsFinite[T Scalar](x T) bool {
	re, im := RealOf(x), ImagOf(x)
	return !math.IsNaN(re) && !math.IsInf(re, 0) && !math.IsNaN(im) && !math.IsInf(im, 0)
}

// PacketsPerRegister returns how many scalars of type T fit in one native
// SIMD register at the current dispatch level.
func PacketsPerRegister[T Scalar]() int {
	return max(currentWidth/SizeOf[T](), 1)
}
