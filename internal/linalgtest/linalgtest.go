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

// Package linalgtest holds helpers shared by the tests of the dense kernels:
// random tiles, naive reference products, norms and tolerances, and
// independent oracles backed by gonum.
package linalgtest

import (
	"math"
	"math/rand"
	"testing"

	"github.com/ajroetker/go-gemm/hwy"
	"github.com/ajroetker/go-gemm/hwy/contrib/dense"
)

// NewRand returns the deterministic source used by the tests.
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

// RandScalar returns a value with real (and imaginary) parts in [-1, 1).
func RandScalar[T hwy.Scalar](rng *rand.Rand) T {
	re := rng.Float64()*2 - 1
	if !hwy.IsComplex[T]() {
		return hwy.FromReal[T](re)
	}
	return hwy.FromParts[T](re, rng.Float64()*2-1)
}

// Rand returns a random rows x cols tile in the given order whose outer
// stride exceeds the minimum by pad, so tests exercise non-packed layouts.
func Rand[T hwy.Scalar](rng *rand.Rand, rows, cols int, order dense.Order, pad int) dense.Tile[T] {
	inner, outer := rows, cols
	if order == dense.RowMajor {
		inner, outer = cols, rows
	}
	ld := inner + pad
	data := make([]T, max(ld*outer, 1))
	for i := range data {
		data[i] = RandScalar[T](rng)
	}
	if order == dense.RowMajor {
		return dense.FromRowMajor(data, rows, cols, ld)
	}
	return dense.FromColMajor(data, rows, cols, ld)
}

// RandSelfAdjoint returns a random n x n self-adjoint column-major tile
// with a real diagonal.
func RandSelfAdjoint[T hwy.Scalar](rng *rand.Rand, n int) dense.Tile[T] {
	a := dense.NewColMajor[T](n, n)
	for j := range n {
		a.Set(j, j, hwy.FromReal[T](rng.Float64()*2-1))
		for i := j + 1; i < n; i++ {
			v := RandScalar[T](rng)
			a.Set(i, j, v)
			a.Set(j, i, hwy.ConjOf(v))
		}
	}
	return a
}

// Naive computes C += alpha * A * B one coefficient at a time.
func Naive[T hwy.Scalar](c, a, b dense.Tile[T], alpha T) {
	for i := range c.Rows {
		for j := range c.Cols {
			var sum T
			for p := range a.Cols {
				sum += a.At(i, p) * b.At(p, j)
			}
			c.Set(i, j, c.At(i, j)+alpha*sum)
		}
	}
}

// Mul returns A * B as a new column-major tile.
func Mul[T hwy.Scalar](a, b dense.Tile[T]) dense.Tile[T] {
	c := dense.NewColMajor[T](a.Rows, b.Cols)
	Naive(c, a, b, 1)
	return c
}

// Sub returns X - Y as a new column-major tile. Shapes must match.
func Sub[T hwy.Scalar](x, y dense.Tile[T]) dense.Tile[T] {
	d := x.Copy()
	for j := range d.Cols {
		for i := range d.Rows {
			d.Set(i, j, d.At(i, j)-y.At(i, j))
		}
	}
	return d
}

// Triangular materializes tri(A) for mode as a dense column-major tile:
// the opposite triangle is zero and the diagonal follows mode.Diag.
func Triangular[T hwy.Scalar](a dense.Tile[T], mode dense.Mode) dense.Tile[T] {
	t := dense.NewColMajor[T](a.Rows, a.Cols)
	for j := range a.Cols {
		for i := range a.Rows {
			switch {
			case i == j && mode.Diag == dense.Unit:
				t.Set(i, j, 1)
			case i == j && mode.Diag == dense.ZeroDiag:
			case i == j, (i > j) == (mode.UpLo == dense.Lower):
				t.Set(i, j, a.At(i, j))
			}
		}
	}
	return t
}

// MaxAbsDiff returns the largest |x(i,j) - y(i,j)|. Shapes must match.
func MaxAbsDiff[T hwy.Scalar](x, y dense.Tile[T]) float64 {
	if x.Rows != y.Rows || x.Cols != y.Cols {
		return math.Inf(1)
	}
	var d float64
	for j := range x.Cols {
		for i := range x.Rows {
			d = max(d, hwy.Abs(x.At(i, j)-y.At(i, j)))
		}
	}
	return d
}

// Frobenius returns the Frobenius norm of t.
func Frobenius[T hwy.Scalar](t dense.Tile[T]) float64 {
	var s float64
	for j := range t.Cols {
		for i := range t.Rows {
			s += hwy.Abs2(t.At(i, j))
		}
	}
	return math.Sqrt(s)
}

// Tolerance returns an error bound for a result accumulated over k terms
// of magnitude up to scale.
func Tolerance[T hwy.Scalar](k int, scale float64) float64 {
	return 16 * float64(max(k, 1)) * hwy.Epsilon[T]() * max(scale, 1)
}

// AssertClose reports an error when got and want differ by more than tol in
// any element.
func AssertClose[T hwy.Scalar](t testing.TB, got, want dense.Tile[T], tol float64) {
	t.Helper()
	if got.Rows != want.Rows || got.Cols != want.Cols {
		t.Fatalf("shape: got %dx%d, want %dx%d", got.Rows, got.Cols, want.Rows, want.Cols)
	}
	for j := range got.Cols {
		for i := range got.Rows {
			g, w := got.At(i, j), want.At(i, j)
			if hwy.Abs(g-w) > tol {
				t.Errorf("(%d,%d): got %v, want %v (tol %g)", i, j, g, w, tol)
				return
			}
		}
	}
}

// IsIdentityWithin reports whether t is within tol of the identity.
func IsIdentityWithin[T hwy.Scalar](t dense.Tile[T], tol float64) bool {
	if t.Rows != t.Cols {
		return false
	}
	return MaxAbsDiff(t, dense.Identity[T](t.Rows)) <= tol
}
