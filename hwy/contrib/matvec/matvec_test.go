package matvec

import (
	"fmt"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-gemm/hwy"
	"github.com/ajroetker/go-gemm/hwy/contrib/dense"
	"github.com/ajroetker/go-gemm/internal/linalgtest"
)

func TestGemv(t *testing.T) {
	rows := [][]float64{
		{1, 2, 3},
		{4, 5, 6},
	}
	rm := dense.FromRows(rows)
	cm := rm.Copy()
	x := []float64{1, -1, 2}
	// A*x = [5, 11]
	for _, a := range []dense.Tile[float64]{rm, cm} {
		t.Run(a.Order.String(), func(t *testing.T) {
			y := []float64{1, 1}
			require.NoError(t, Gemv(y, 1, a, x, 1, 2))
			if y[0] != 11 || y[1] != 23 {
				t.Errorf("Gemv() = %v, want [11 23]", y)
			}
		})
	}

	// Transposed view with strided x and y: y += A^T * x.
	y := []float64{0, 99, 0, 99, 0}
	require.NoError(t, Gemv(y, 2, cm.T(), []float64{1, 0, 1}, 2, 1))
	if y[0] != 5 || y[2] != 7 || y[4] != 9 || y[1] != 99 {
		t.Errorf("Gemv(transposed) = %v, want [5 99 7 99 9]", y)
	}
}

func TestGemvConjugate(t *testing.T) {
	a := dense.FromRows([][]complex128{
		{1 + 1i, 2},
		{0, 3 - 1i},
	})
	x := []complex128{1, 1i}
	for _, view := range []dense.Tile[complex128]{a.WithConj(true), a.Copy().WithConj(true)} {
		y := make([]complex128, 2)
		require.NoError(t, Gemv(y, 1, view, x, 1, 1))
		// conj(A)*x = [1-1i + 2i, (3+1i)*1i] = [1+1i, -1+3i]
		want := []complex128{1 + 1i, -1 + 3i}
		for i := range want {
			if cmplx.Abs(y[i]-want[i]) > 1e-14 {
				t.Errorf("%s: Gemv()[%d] = %v, want %v", view.Order, i, y[i], want[i])
			}
		}
	}
}

func TestGemvErrors(t *testing.T) {
	a := dense.NewColMajor[float32](3, 2)
	err := Gemv(make([]float32, 3), 1, a, make([]float32, 1), 1, 1)
	require.ErrorIs(t, err, dense.ErrShape)
	var de *dense.Error
	require.ErrorAs(t, err, &de)
	if de.Arg != "x" {
		t.Errorf("error arg = %q, want x", de.Arg)
	}
	require.ErrorIs(t, Gemv(make([]float32, 3), 0, a, make([]float32, 2), 1, 1), dense.ErrBadTile)
}

func TestGer(t *testing.T) {
	x := []complex64{1, 2i}
	y := []complex64{1i, 3}
	for _, a := range []dense.Tile[complex64]{dense.NewColMajor[complex64](2, 2), dense.NewRowMajor[complex64](2, 2)} {
		for _, conj := range []bool{false, true} {
			b := a.Copy()
			if a.Order == dense.RowMajor {
				b = dense.NewRowMajor[complex64](2, 2)
			}
			require.NoError(t, Ger(b, 2, x, 1, y, 1, conj))
			for i := range 2 {
				for j := range 2 {
					yj := y[j]
					if conj {
						yj = complex(real(yj), -imag(yj))
					}
					want := 2 * x[i] * yj
					if b.At(i, j) != want {
						t.Errorf("%s conj=%v: A[%d,%d] = %v, want %v", b.Order, conj, i, j, b.At(i, j), want)
					}
				}
			}
		}
	}
	require.ErrorIs(t, Ger(dense.NewColMajor[complex64](2, 2).WithConj(true), 1, x, 1, y, 1, false), dense.ErrUnsupportedMode)
}

func testGemvRandom[T hwy.Scalar](t *testing.T) {
	rng := linalgtest.NewRand()
	alpha := linalgtest.RandScalar[T](rng)
	for _, shape := range [][2]int{{1, 1}, {3, 7}, {17, 5}, {64, 33}} {
		for _, order := range []dense.Order{dense.ColMajor, dense.RowMajor} {
			for _, conj := range []bool{false, true} {
				for _, inc := range []int{1, 3} {
					rows, cols := shape[0], shape[1]
					a := linalgtest.Rand[T](rng, rows, cols, order, 2).WithConj(conj)
					x := linalgtest.Rand[T](rng, cols, 1, dense.ColMajor, 0)
					y0 := linalgtest.Rand[T](rng, rows, 1, dense.ColMajor, 0)

					want := y0.Copy()
					linalgtest.Naive(want, a, x, alpha)

					xs := make([]T, (cols-1)*inc+1)
					ys := make([]T, (rows-1)*inc+1)
					for j := range cols {
						xs[j*inc] = x.At(j, 0)
					}
					for i := range rows {
						ys[i*inc] = y0.At(i, 0)
					}
					require.NoError(t, Gemv(ys, inc, a, xs, inc, alpha))
					got := dense.NewColMajor[T](rows, 1)
					for i := range rows {
						got.Set(i, 0, ys[i*inc])
					}
					name := fmt.Sprintf("%dx%d/%s/conj=%v/inc=%d", rows, cols, order, conj, inc)
					if d := linalgtest.MaxAbsDiff(got, want); d > linalgtest.Tolerance[T](cols, 1) {
						t.Errorf("%s: max |y - want| = %g", name, d)
					}
				}
			}
		}
	}
}

func TestGemvRandom(t *testing.T) {
	t.Run("float32", testGemvRandom[float32])
	t.Run("float64", testGemvRandom[float64])
	t.Run("complex64", testGemvRandom[complex64])
	t.Run("complex128", testGemvRandom[complex128])
}

func testGerRandom[T hwy.Scalar](t *testing.T) {
	rng := linalgtest.NewRand()
	alpha := linalgtest.RandScalar[T](rng)
	for _, shape := range [][2]int{{1, 1}, {5, 9}, {23, 4}} {
		for _, order := range []dense.Order{dense.ColMajor, dense.RowMajor} {
			for _, conj := range []bool{false, true} {
				rows, cols := shape[0], shape[1]
				a := linalgtest.Rand[T](rng, rows, cols, order, 1)
				x := linalgtest.Rand[T](rng, rows, 1, dense.ColMajor, 0)
				y := linalgtest.Rand[T](rng, 1, cols, dense.RowMajor, 0)

				want := a.Copy()
				linalgtest.Naive(want, x, y.WithConj(conj), alpha)
				require.NoError(t, Ger(a, alpha, x.Data, 1, y.Data, 1, conj))
				if d := linalgtest.MaxAbsDiff(a, want); d > linalgtest.Tolerance[T](1, 1) {
					t.Errorf("%dx%d/%s/conj=%v: max |A - want| = %g", rows, cols, order, conj, d)
				}
			}
		}
	}
}

func TestGerRandom(t *testing.T) {
	t.Run("float32", testGerRandom[float32])
	t.Run("float64", testGerRandom[float64])
	t.Run("complex64", testGerRandom[complex64])
	t.Run("complex128", testGerRandom[complex128])
}

func BenchmarkGemv(b *testing.B) {
	rng := linalgtest.NewRand()
	for _, n := range []int{64, 256, 1024} {
		for _, order := range []dense.Order{dense.ColMajor, dense.RowMajor} {
			a := linalgtest.Rand[float32](rng, n, n, order, 0)
			x := make([]float32, n)
			y := make([]float32, n)
			for i := range x {
				x[i] = float32(i % 7)
			}
			b.Run(fmt.Sprintf("%s/%d", order, n), func(b *testing.B) {
				b.ReportAllocs()
				for b.Loop() {
					_ = Gemv(y, 1, a, x, 1, 1)
				}
			})
		}
	}
}
