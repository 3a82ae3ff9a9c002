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

func TestSymmSmall(t *testing.T) {
	// Only the upper triangle is meaningful.
	nan := math.NaN()
	s := dense.FromRows([][]float64{
		{4, 1, 2},
		{nan, 5, 3},
		{nan, nan, 6},
	})
	x := dense.FromRows([][]float64{{1}, {1}, {1}})
	y := dense.NewColMajor[float64](3, 1)
	require.NoError(t, Symm(y, s, x, 1, dense.Upper, dense.Left))
	require.Equal(t, [][]float64{{7}, {9}, {11}}, y.ToRows())

	// The same product from the right: x^T * S.
	yt := dense.NewRowMajor[float64](1, 3)
	require.NoError(t, Symm(yt, x.T(), s, 1, dense.Upper, dense.Right))
	require.Equal(t, [][]float64{{7, 9, 11}}, yt.ToRows())
}

// hermitianStorage returns a random n x n tile whose uplo triangle defines
// a Hermitian matrix. The opposite triangle holds NaN and the diagonal a
// spurious imaginary part, neither of which may be read.
func hermitianStorage[T hwy.Scalar](t *testing.T, n int, uplo dense.UpLo, order dense.Order) dense.Tile[T] {
	t.Helper()
	rng := linalgtest.NewRand()
	s := linalgtest.Rand[T](rng, n, n, order, 1)
	nan := hwy.FromReal[T](math.NaN())
	for j := range n {
		for i := range n {
			if i != j && (i > j) != (uplo == dense.Lower) {
				s.Set(i, j, nan)
			}
		}
	}
	return s
}

func testSymm[T hwy.Scalar](t *testing.T, alpha T) {
	rng := linalgtest.NewRand()
	orders := []dense.Order{dense.ColMajor, dense.RowMajor}
	for _, uplo := range []dense.UpLo{dense.Lower, dense.Upper} {
		for _, side := range []dense.Side{dense.Left, dense.Right} {
			for _, n := range []int{1, 4, 13, 29} {
				for _, oc := range orders {
					for _, os := range orders {
						name := fmt.Sprintf("%v/%v/n%d/C%v/S%v", uplo, side, n, oc, os)
						t.Run(name, func(t *testing.T) {
							const other = 7
							s := hermitianStorage[T](t, n, uplo, os)
							full := ExpandSelfAdjoint(s, uplo)

							var a, b, c, want dense.Tile[T]
							if side == dense.Left {
								a, b = s, linalgtest.Rand[T](rng, n, other, dense.ColMajor, 0)
								c = linalgtest.Rand[T](rng, n, other, oc, 1)
								want = c.Copy()
								require.NoError(t, Gemm(want, full, b, alpha))
							} else {
								a, b = linalgtest.Rand[T](rng, other, n, dense.RowMajor, 0), s
								c = linalgtest.Rand[T](rng, other, n, oc, 1)
								want = c.Copy()
								require.NoError(t, Gemm(want, a, full, alpha))
							}
							require.NoError(t, Symm(c, a, b, alpha, uplo, side, WithConfig(tinyCaches)))
							linalgtest.AssertClose(t, c, want, linalgtest.Tolerance[T](n, 2))
						})
					}
				}
			}
		}
	}
}

func TestSymm(t *testing.T) {
	t.Run("float32", func(t *testing.T) { testSymm[float32](t, 2) })
	t.Run("float64", func(t *testing.T) { testSymm[float64](t, -1) })
	t.Run("complex64", func(t *testing.T) { testSymm[complex64](t, 1i) })
	t.Run("complex128", func(t *testing.T) { testSymm[complex128](t, 0.5-0.5i) })
}

func TestExpandSelfAdjoint(t *testing.T) {
	s := dense.FromRows([][]complex128{
		{1 + 5i, 2 + 1i},
		{3 - 1i, 4},
	})
	lower := ExpandSelfAdjoint(s, dense.Lower)
	require.Equal(t, [][]complex128{{1, 3 + 1i}, {3 - 1i, 4}}, lower.ToRows())
	upper := ExpandSelfAdjoint(s, dense.Upper)
	require.Equal(t, [][]complex128{{1, 2 + 1i}, {2 - 1i, 4}}, upper.ToRows())
}

func TestSymmErrors(t *testing.T) {
	rect := dense.NewColMajor[float64](3, 4)
	b := dense.NewColMajor[float64](4, 2)
	err := Symm(dense.NewColMajor[float64](3, 2), rect, b, 1, dense.Lower, dense.Left)
	require.ErrorIs(t, err, dense.ErrShape)

	sq := dense.NewColMajor[float64](3, 3)
	err = Symm(sq, sq, sq, 1, dense.UpLo(5), dense.Left)
	require.ErrorIs(t, err, dense.ErrUnsupportedMode)
}

func testRankUpdate[T hwy.Scalar](t *testing.T, alpha T) {
	rng := linalgtest.NewRand()
	for _, uplo := range []dense.UpLo{dense.Lower, dense.Upper} {
		for _, dims := range [][2]int{{1, 1}, {5, 3}, {16, 9}, {37, 20}} {
			n, k := dims[0], dims[1]
			for _, order := range []dense.Order{dense.ColMajor, dense.RowMajor} {
				t.Run(fmt.Sprintf("%v/n%d/k%d/%v", uplo, n, k, order), func(t *testing.T) {
					a := linalgtest.Rand[T](rng, n, k, order, 1)
					c := linalgtest.Rand[T](rng, n, n, dense.ColMajor, 0)
					want := c.Copy()
					require.NoError(t, Gemm(want, a, a.H(), alpha))

					before := c.Copy()
					require.NoError(t, RankUpdate(c, a, alpha, uplo, WithConfig(tinyCaches)))

					tol := linalgtest.Tolerance[T](k, 2)
					for j := range n {
						for i := range n {
							inside := i == j || (i > j) == (uplo == dense.Lower)
							got := c.At(i, j)
							switch {
							case inside && hwy.Abs(got-want.At(i, j)) > tol:
								t.Fatalf("(%d,%d): got %v, want %v", i, j, got, want.At(i, j))
							case !inside && got != before.At(i, j):
								t.Fatalf("(%d,%d) outside the triangle changed: %v -> %v", i, j, before.At(i, j), got)
							}
						}
					}
				})
			}
		}
	}
}

func TestRankUpdate(t *testing.T) {
	t.Run("float64", func(t *testing.T) { testRankUpdate[float64](t, 0.5) })
	t.Run("complex128", func(t *testing.T) { testRankUpdate[complex128](t, 2) })
	t.Run("float32", func(t *testing.T) { testRankUpdate[float32](t, 1) })
}

func TestRankUpdateErrors(t *testing.T) {
	a := dense.NewColMajor[float64](3, 2)
	err := RankUpdate(dense.NewColMajor[float64](3, 4), a, 1, dense.Lower)
	require.ErrorIs(t, err, dense.ErrShape)
	err = RankUpdate(dense.NewColMajor[float64](4, 4), a, 1, dense.Lower)
	require.ErrorIs(t, err, dense.ErrShape)
	err = RankUpdate(dense.NewColMajor[float64](3, 3), a, 1, dense.UpLo(3))
	require.ErrorIs(t, err, dense.ErrUnsupportedMode)
}
