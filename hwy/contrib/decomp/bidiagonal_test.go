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

package decomp

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-gemm/hwy"
	"github.com/ajroetker/go-gemm/hwy/contrib/dense"
	"github.com/ajroetker/go-gemm/internal/linalgtest"
)

// reassemble returns U[:, :n] * B * V^H.
func reassemble[T hwy.Scalar](f BidiagonalForm[T]) dense.Tile[T] {
	n := len(f.Diagonal)
	thin := f.U.Slice(0, 0, f.U.Rows, n)
	return linalgtest.Mul(linalgtest.Mul(thin, f.Matrix()), f.V.H())
}

func testBidiagonalRoundTrip[T hwy.Scalar](t *testing.T) {
	rng := linalgtest.NewRand()
	for _, dims := range [][2]int{{1, 1}, {2, 2}, {4, 4}, {5, 1}, {7, 3}, {20, 11}, {33, 33}} {
		m, n := dims[0], dims[1]
		for _, order := range []dense.Order{dense.ColMajor, dense.RowMajor} {
			t.Run(fmt.Sprintf("%dx%d/%v", m, n, order), func(t *testing.T) {
				a := linalgtest.Rand[T](rng, m, n, order, 2)
				form, err := Bidiagonalize(a)
				require.NoError(t, err)
				require.Len(t, form.Diagonal, n)
				require.Len(t, form.SuperDiagonal, max(n-1, 0))
				require.Equal(t, m, form.U.Rows)
				require.Equal(t, n, form.V.Rows)

				tol := linalgtest.Tolerance[T](m*n, 1)
				linalgtest.AssertClose(t, reassemble(form), a, tol)
				if !linalgtest.IsIdentityWithin(linalgtest.Mul(form.U, form.U.H()), tol) {
					t.Errorf("U*U^H is not the identity")
				}
				if !linalgtest.IsIdentityWithin(linalgtest.Mul(form.V, form.V.H()), tol) {
					t.Errorf("V*V^H is not the identity")
				}
			})
		}
	}
}

func TestBidiagonalRoundTrip(t *testing.T) {
	t.Run("float32", testBidiagonalRoundTrip[float32])
	t.Run("float64", testBidiagonalRoundTrip[float64])
	t.Run("complex64", testBidiagonalRoundTrip[complex64])
	t.Run("complex128", testBidiagonalRoundTrip[complex128])
}

func TestBidiagonalReducesA(t *testing.T) {
	// U^H * A * V is B padded with zero rows.
	rng := linalgtest.NewRand()
	a := linalgtest.Rand[complex128](rng, 9, 6, dense.ColMajor, 0)
	var b UpperBidiagonalization[complex128]
	require.NoError(t, b.Compute(a))
	u, err := b.MatrixU()
	require.NoError(t, err)
	v, err := b.MatrixV()
	require.NoError(t, err)
	bd, err := b.Bidiagonal()
	require.NoError(t, err)

	got := linalgtest.Mul(linalgtest.Mul(u.H(), a), v)
	want := dense.NewColMajor[complex128](9, 6)
	require.NoError(t, want.Slice(0, 0, 6, 6).CopyFrom(bd))
	linalgtest.AssertClose(t, got, want, 1e-13)

	// The packed storage keeps B's entries in place.
	h := b.Householder()
	for k, d := range b.Diagonal() {
		assert.InDelta(t, d, hwy.RealOf(h.At(k, k)), 0)
	}
	for k, s := range b.SuperDiagonal() {
		assert.InDelta(t, s, hwy.RealOf(h.At(k, k+1)), 0)
	}
	assert.Len(t, b.CoeffsU(), 6)
	assert.Len(t, b.CoeffsV(), 5)
}

func TestBidiagonalSequences(t *testing.T) {
	rng := linalgtest.NewRand()
	a := linalgtest.Rand[float64](rng, 8, 5, dense.RowMajor, 1)
	var b UpperBidiagonalization[float64]
	require.NoError(t, b.Compute(a))

	su, err := b.HouseholderU()
	require.NoError(t, err)
	require.Equal(t, 8, su.Size())
	sv, err := b.HouseholderV()
	require.NoError(t, err)
	require.Equal(t, 5, sv.Size())
	require.Equal(t, 4, sv.Len())

	// U^H * A = B * V^H, whose first column is d_0 * e_1.
	m := a.Copy()
	require.NoError(t, su.Adjoint().ApplyOnTheLeft(m))
	bd, err := b.Bidiagonal()
	require.NoError(t, err)
	want := dense.NewColMajor[float64](8, 5)
	require.NoError(t, want.Slice(0, 0, 5, 5).CopyFrom(linalgtest.Mul(bd, sv.ToDense().T())))
	linalgtest.AssertClose(t, m, want, 1e-13)
	assert.InDelta(t, b.Diagonal()[0], m.At(0, 0), 1e-14)
	for i := 1; i < 8; i++ {
		assert.InDelta(t, 0, m.At(i, 0), 1e-14, "row %d", i)
	}
}

func TestBidiagonalSingularValues(t *testing.T) {
	rng := linalgtest.NewRand()
	for _, dims := range [][2]int{{6, 6}, {15, 7}, {40, 25}} {
		a := linalgtest.Rand[float64](rng, dims[0], dims[1], dense.ColMajor, 0)
		form, err := Bidiagonalize(a)
		require.NoError(t, err)
		want := linalgtest.SingularValues(a)
		got := linalgtest.SingularValues(form.Matrix())
		require.NotNil(t, want)
		if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-11)); diff != "" {
			t.Errorf("%v: singular values differ (-want +got):\n%s", dims, diff)
		}
	}
}

func TestBidiagonalizationState(t *testing.T) {
	var b UpperBidiagonalization[complex64]
	assert.Nil(t, b.Diagonal())
	assert.Nil(t, b.SuperDiagonal())
	assert.Nil(t, b.CoeffsU())
	assert.Nil(t, b.CoeffsV())
	assert.True(t, b.Householder().IsEmpty())

	_, err := b.MatrixU()
	require.ErrorIs(t, err, dense.ErrNotInitialized)
	_, err = b.MatrixV()
	require.ErrorIs(t, err, dense.ErrNotInitialized)
	_, err = b.Bidiagonal()
	require.ErrorIs(t, err, dense.ErrNotInitialized)
	_, err = b.HouseholderU()
	require.ErrorIs(t, err, dense.ErrNotInitialized)
	_, err = b.HouseholderV()
	require.ErrorIs(t, err, dense.ErrNotInitialized)
	_, err = b.Form()
	require.ErrorIs(t, err, dense.ErrNotInitialized)
	_, err = b.Info()
	require.ErrorIs(t, err, dense.ErrNotInitialized)
}

func TestBidiagonalizationWide(t *testing.T) {
	var b UpperBidiagonalization[float64]
	err := b.Compute(dense.NewColMajor[float64](3, 4))
	require.ErrorIs(t, err, dense.ErrUnsupportedMode)
	assert.Equal(t, dense.KindUnsupportedMode, dense.KindOf(err))

	_, err = Bidiagonalize(dense.NewRowMajor[float64](2, 5))
	require.ErrorIs(t, err, dense.ErrUnsupportedMode)
}

func TestBidiagonalizationReuse(t *testing.T) {
	rng := linalgtest.NewRand()
	b := NewUpperBidiagonalization[float64](6, 4)
	require.NoError(t, b.Compute(linalgtest.Rand[float64](rng, 6, 4, dense.ColMajor, 0)))
	first := &b.Householder().Data[0]

	a := linalgtest.Rand[float64](rng, 6, 4, dense.RowMajor, 0)
	require.NoError(t, b.Compute(a))
	assert.Same(t, first, &b.Householder().Data[0])
	form, err := b.Form()
	require.NoError(t, err)
	linalgtest.AssertClose(t, reassemble(form), a, 1e-13)

	require.NoError(t, b.Compute(linalgtest.Rand[float64](rng, 6, 5, dense.ColMajor, 0)))
	assert.Equal(t, 5, b.Householder().Cols)
	info, err := b.Info()
	require.NoError(t, err)
	assert.Equal(t, dense.Success, info)
}
