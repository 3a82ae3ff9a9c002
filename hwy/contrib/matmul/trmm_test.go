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

package matmul

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-gemm/hwy"
	"github.com/ajroetker/go-gemm/hwy/contrib/dense"
	"github.com/ajroetker/go-gemm/internal/linalgtest"
)

var allModes = []dense.Mode{
	{UpLo: dense.Lower, Diag: dense.NonUnit},
	{UpLo: dense.Lower, Diag: dense.Unit},
	{UpLo: dense.Lower, Diag: dense.ZeroDiag},
	{UpLo: dense.Upper, Diag: dense.NonUnit},
	{UpLo: dense.Upper, Diag: dense.Unit},
	{UpLo: dense.Upper, Diag: dense.ZeroDiag},
}

func TestTrmmSmall(t *testing.T) {
	a := dense.FromRows([][]float64{{2, 3}, {0, 5}})
	b := dense.FromRows([][]float64{{1, 0}, {1, 1}})
	for _, tc := range []struct {
		diag dense.Diag
		want [][]float64
	}{
		{dense.NonUnit, [][]float64{{5, 3}, {5, 5}}},
		{dense.Unit, [][]float64{{4, 3}, {1, 1}}},
	} {
		for _, order := range []dense.Order{dense.ColMajor, dense.RowMajor} {
			c := dense.NewColMajor[float64](2, 2)
			if order == dense.RowMajor {
				c = dense.NewRowMajor[float64](2, 2)
			}
			err := Trmm(c, a, b, 1, dense.Mode{UpLo: dense.Upper, Diag: tc.diag}, dense.Left)
			require.NoError(t, err)
			require.Equal(t, tc.want, c.ToRows(), "diag=%v order=%v", tc.diag, order)
		}
	}
}

// poison fills the part of a that mode never reads with NaN.
func poison[T hwy.Scalar](a dense.Tile[T], mode dense.Mode) {
	nan := hwy.FromReal[T](math.NaN())
	for j := range a.Cols {
		for i := range a.Rows {
			switch {
			case i == j && mode.Diag != dense.NonUnit:
				a.Set(i, j, nan)
			case i != j && (i > j) != (mode.UpLo == dense.Lower):
				a.Set(i, j, nan)
			}
		}
	}
}

// triShape returns the (rows, cols) of a triangular operand of size n with
// extra trapezoid rows (lower) or columns (upper).
func triShape(n, extra int, uplo dense.UpLo) (int, int) {
	if uplo == dense.Lower {
		return n + extra, n
	}
	return n, n + extra
}

func testTrmm[T hwy.Scalar](t *testing.T, alpha T) {
	rng := linalgtest.NewRand()
	orders := []dense.Order{dense.ColMajor, dense.RowMajor}
	sizes := []struct{ n, extra, other int }{
		{1, 0, 1},
		{3, 0, 5},
		{9, 0, 4},
		{17, 0, 11},
		{30, 0, 19},
		{12, 7, 9},
		{21, 14, 6},
	}
	for _, mode := range allModes {
		for _, side := range []dense.Side{dense.Left, dense.Right} {
			for _, s := range sizes {
				for _, oc := range orders {
					for _, ot := range orders {
						name := fmt.Sprintf("%v-%v/%v/n%d+%d/C%v/T%v", mode.UpLo, mode.Diag, side, s.n, s.extra, oc, ot)
						t.Run(name, func(t *testing.T) {
							tr, tc := triShape(s.n, s.extra, mode.UpLo)
							tri := linalgtest.Rand[T](rng, tr, tc, ot, 1)
							poison(tri, mode)
							var a, b, c dense.Tile[T]
							if side == dense.Left {
								a = tri
								b = linalgtest.Rand[T](rng, tc, s.other, dense.ColMajor, 0)
								c = linalgtest.Rand[T](rng, tr, s.other, oc, 2)
							} else {
								a = linalgtest.Rand[T](rng, s.other, tr, dense.RowMajor, 0)
								b = tri
								c = linalgtest.Rand[T](rng, s.other, tc, oc, 2)
							}
							want := c.Copy()
							if side == dense.Left {
								linalgtest.Naive(want, linalgtest.Triangular(a, mode), b, alpha)
							} else {
								linalgtest.Naive(want, a, linalgtest.Triangular(b, mode), alpha)
							}
							require.NoError(t, Trmm(c, a, b, alpha, mode, side, WithConfig(tinyCaches)))
							linalgtest.AssertClose(t, c, want, linalgtest.Tolerance[T](s.n+s.extra, 1))
						})
					}
				}
			}
		}
	}
}

func TestTrmm(t *testing.T) {
	t.Run("float32", func(t *testing.T) { testTrmm[float32](t, 1.5) })
	t.Run("float64", func(t *testing.T) { testTrmm[float64](t, -0.75) })
	t.Run("complex64", func(t *testing.T) { testTrmm[complex64](t, 1+0.5i) })
	t.Run("complex128", func(t *testing.T) { testTrmm[complex128](t, -1i) })
}

func TestTrmmDefaultBlocking(t *testing.T) {
	rng := linalgtest.NewRand()
	for _, mode := range allModes {
		for _, side := range []dense.Side{dense.Left, dense.Right} {
			n := 150
			tri := linalgtest.Rand[float64](rng, n, n, dense.ColMajor, 0)
			other := linalgtest.Rand[float64](rng, n, 70, dense.ColMajor, 0)
			a, b := tri, other
			c := dense.NewColMajor[float64](n, 70)
			want := dense.NewColMajor[float64](n, 70)
			linalgtest.Naive(want, linalgtest.Triangular(tri, mode), other, 2)
			if side == dense.Right {
				a, b = other.T(), tri
				c = dense.NewColMajor[float64](70, n)
				want = dense.NewColMajor[float64](70, n)
				linalgtest.Naive(want, other.T(), linalgtest.Triangular(tri, mode), 2)
			}
			require.NoError(t, Trmm(c, a, b, 2, mode, side))
			linalgtest.AssertClose(t, c, want, linalgtest.Tolerance[float64](n, 2))
		}
	}
}

func TestTrmmConjugated(t *testing.T) {
	rng := linalgtest.NewRand()
	mode := dense.Mode{UpLo: dense.Lower, Diag: dense.NonUnit}
	a := linalgtest.Rand[complex128](rng, 13, 13, dense.ColMajor, 0)
	b := linalgtest.Rand[complex128](rng, 13, 6, dense.ColMajor, 0)
	c := dense.NewColMajor[complex128](13, 6)
	want := dense.NewColMajor[complex128](13, 6)
	linalgtest.Naive(want, linalgtest.Triangular(a.H(), mode.Transposed()), b, 1)

	require.NoError(t, Trmm(c, a.H(), b, 1, mode.Transposed(), dense.Left, WithConfig(tinyCaches)))
	linalgtest.AssertClose(t, c, want, linalgtest.Tolerance[complex128](13, 1))

	c.Fill(0)
	want.Fill(0)
	linalgtest.Naive(want, linalgtest.Triangular(a, mode), b.WithConj(true), 1)
	require.NoError(t, Trmm(c, a, b, 1, mode, dense.Left, WithConj(false, true)))
	linalgtest.AssertClose(t, c, want, linalgtest.Tolerance[complex128](13, 1))
}

func TestTrmmErrors(t *testing.T) {
	sq := dense.NewColMajor[float64](3, 3)
	wide := dense.NewColMajor[float64](3, 5)
	tall := dense.NewColMajor[float64](5, 3)

	lower := dense.Mode{UpLo: dense.Lower}
	upper := dense.Mode{UpLo: dense.Upper}

	// A wide lower or tall upper operand is rejected on both sides.
	err := Trmm(dense.NewColMajor[float64](3, 3), wide, tall, 1, lower, dense.Left)
	require.ErrorIs(t, err, dense.ErrUnsupportedMode)
	err = Trmm(dense.NewColMajor[float64](5, 3), tall, sq, 1, upper, dense.Left)
	require.ErrorIs(t, err, dense.ErrUnsupportedMode)
	err = Trmm(dense.NewColMajor[float64](3, 5), sq, wide, 1, lower, dense.Right)
	require.ErrorIs(t, err, dense.ErrUnsupportedMode)
	err = Trmm(dense.NewColMajor[float64](5, 3), tall, sq, 1, upper, dense.Right)
	require.NoError(t, err)

	err = Trmm(sq, sq, wide, 1, lower, dense.Left)
	require.ErrorIs(t, err, dense.ErrShape)

	err = Trmm(sq, sq, sq, 1, dense.Mode{UpLo: 7}, dense.Left)
	require.ErrorIs(t, err, dense.ErrUnsupportedMode)
	err = Trmm(sq, sq, sq, 1, lower, dense.Side(9))
	require.ErrorIs(t, err, dense.ErrUnsupportedMode)
}
