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

import "math/cmplx"

// ScaleInPlace computes s[i] *= alpha for every element.
func ScaleInPlace[T Scalar](s []T, alpha T) {
	if alpha == 1 {
		return
	}
	va := Set(alpha)
	i := 0
	for ; i+Lanes <= len(s); i += Lanes {
		Store(Mul(va, Load(s[i:])), s[i:])
	}
	for ; i < len(s); i++ {
		s[i] *= alpha
	}
}

// AxpyInPlace computes y[i] += alpha*x[i] for i < min(len(x), len(y)).
func AxpyInPlace[T Scalar](y []T, alpha T, x []T) {
	n := min(len(x), len(y))
	va := Set(alpha)
	i := 0
	for ; i+Lanes <= n; i += Lanes {
		Store(MulAdd(va, Load(x[i:]), Load(y[i:])), y[i:])
	}
	for ; i < n; i++ {
		y[i] += alpha * x[i]
	}
}

// ConjInPlace conjugates every element of s. It is a no-op for real types.
func ConjInPlace[T Scalar](s []T) {
	switch p := any(s).(type) {
	case []complex64:
		for i, v := range p {
			p[i] = complex(real(v), -imag(v))
		}
	case []complex128:
		for i, v := range p {
			p[i] = cmplx.Conj(v)
		}
	}
}

// FillZero sets every element of s to zero.
func FillZero[T Scalar](s []T) {
	clear(s)
}
