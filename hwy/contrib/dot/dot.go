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

// Package dot provides inner products over contiguous and strided vectors.
// It serves the 1x1 product shape and the norms used by Householder reflectors.
package dot

import (
	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/ajroetker/go-gemm/hwy"
)

// Dot computes sum(a[i]*b[i]) over the first min(len(a), len(b)) elements.
// No conjugation is applied.
func Dot[T hwy.Scalar](a, b []T) T {
	n := min(len(a), len(b))
	if af, ok := any(a).([]float64); ok {
		return any(dotFloat64(af[:n], any(b).([]float64)[:n])).(T)
	}
	return dotPackets(a[:n], b[:n])
}

// DotC computes sum(conj(a[i])*b[i]), the Hermitian inner product.
func DotC[T hwy.Scalar](a, b []T) T {
	if !hwy.IsComplex[T]() {
		return Dot(a, b)
	}
	n := min(len(a), len(b))
	var sum T
	for i := range n {
		sum += hwy.ConjOf(a[i]) * b[i]
	}
	return sum
}

// DotStrided computes sum(op(x[i*incX])*y[i*incY]) for i < n, where op
// conjugates when conjX is set.
func DotStrided[T hwy.Scalar](n int, x []T, incX int, y []T, incY int, conjX bool) T {
	if incX == 1 && incY == 1 {
		if conjX {
			return DotC(x[:n], y[:n])
		}
		return Dot(x[:n], y[:n])
	}
	var sum T
	ix, iy := 0, 0
	if conjX && hwy.IsComplex[T]() {
		for range n {
			sum += hwy.ConjOf(x[ix]) * y[iy]
			ix += incX
			iy += incY
		}
		return sum
	}
	for range n {
		sum += x[ix] * y[iy]
		ix += incX
		iy += incY
	}
	return sum
}

// SquaredNorm returns sum(|x[i]|^2).
func SquaredNorm[T hwy.Scalar](x []T) float64 {
	if xf, ok := any(x).([]float64); ok {
		return dotFloat64(xf, xf)
	}
	var sum float64
	for _, v := range x {
		sum += hwy.Abs2(v)
	}
	return sum
}

// SquaredNormStrided returns sum(|x[i*inc]|^2) for i < n.
func SquaredNormStrided[T hwy.Scalar](n int, x []T, inc int) float64 {
	if inc == 1 {
		return SquaredNorm(x[:n])
	}
	var sum float64
	for i := range n {
		sum += hwy.Abs2(x[i*inc])
	}
	return sum
}

// dotPackets accumulates in four independent packets to hide FMA latency.
func dotPackets[T hwy.Scalar](a, b []T) T {
	n := len(a)
	acc0, acc1 := hwy.Zero[T](), hwy.Zero[T]()
	acc2, acc3 := hwy.Zero[T](), hwy.Zero[T]()
	i := 0
	for ; i+4*hwy.Lanes <= n; i += 4 * hwy.Lanes {
		acc0 = hwy.MulAdd(hwy.Load(a[i:]), hwy.Load(b[i:]), acc0)
		acc1 = hwy.MulAdd(hwy.Load(a[i+hwy.Lanes:]), hwy.Load(b[i+hwy.Lanes:]), acc1)
		acc2 = hwy.MulAdd(hwy.Load(a[i+2*hwy.Lanes:]), hwy.Load(b[i+2*hwy.Lanes:]), acc2)
		acc3 = hwy.MulAdd(hwy.Load(a[i+3*hwy.Lanes:]), hwy.Load(b[i+3*hwy.Lanes:]), acc3)
	}
	for ; i+hwy.Lanes <= n; i += hwy.Lanes {
		acc0 = hwy.MulAdd(hwy.Load(a[i:]), hwy.Load(b[i:]), acc0)
	}
	sum := hwy.ReduceSum(hwy.Add(hwy.Add(acc0, acc1), hwy.Add(acc2, acc3)))
	for ; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

const dotChunk = 256

// dotFloat64 multiplies chunks element-wise with vecmath and reduces them
// with packets.
func dotFloat64(a, b []float64) float64 {
	var buf [dotChunk]float64
	var sum float64
	for i := 0; i < len(a); i += dotChunk {
		c := min(dotChunk, len(a)-i)
		vecmath.MulBlock(buf[:c], a[i:i+c], b[i:i+c])
		sum += sumFloat64(buf[:c])
	}
	return sum
}

func sumFloat64(s []float64) float64 {
	acc := hwy.Zero[float64]()
	i := 0
	for ; i+hwy.Lanes <= len(s); i += hwy.Lanes {
		acc = hwy.Add(acc, hwy.Load(s[i:]))
	}
	sum := hwy.ReduceSum(acc)
	for ; i < len(s); i++ {
		sum += s[i]
	}
	return sum
}
