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
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-gemm/hwy"
	"github.com/ajroetker/go-gemm/hwy/contrib/dense"
	"github.com/ajroetker/go-gemm/hwy/contrib/workerpool"
	"github.com/ajroetker/go-gemm/internal/linalgtest"
)

// tinyCaches forces many Kc, Mc and Nc blocks on small problems.
var tinyCaches = Config{
	L1CacheBytes:            1 << 10,
	L2CacheBytes:            4 << 10,
	L3CacheBytes:            16 << 10,
	MaxWorkers:              1,
	PreferParallelThreshold: DefaultParallelThreshold,
}

var gemmShapes = []struct{ m, n, k int }{
	{1, 1, 1},
	{2, 3, 4},
	{4, 8, 16},
	{5, 7, 3},
	{17, 9, 33},
	{33, 65, 17},
	{64, 64, 64},
	{70, 41, 130},
}

func TestGemmSmall(t *testing.T) {
	// [[1,2],[3,4]] * [[5,6],[7,8]]
	a := dense.FromRows([][]float64{{1, 2}, {3, 4}})
	b := dense.FromRows([][]float64{{5, 6}, {7, 8}})
	want := [][]float64{{19, 22}, {43, 50}}

	for _, order := range []dense.Order{dense.RowMajor, dense.ColMajor} {
		c := dense.NewRowMajor[float64](2, 2)
		if order == dense.ColMajor {
			c = dense.NewColMajor[float64](2, 2)
		}
		if err := Gemm(c, a, b, 1); err != nil {
			t.Fatalf("%v: %v", order, err)
		}
		for i := range 2 {
			for j := range 2 {
				if got := c.At(i, j); got != want[i][j] {
					t.Errorf("%v: c[%d][%d] = %v, want %v", order, i, j, got, want[i][j])
				}
			}
		}
	}
}

func TestGemmScaledIdentity(t *testing.T) {
	rng := linalgtest.NewRand()
	m := linalgtest.Rand[float64](rng, 4, 4, dense.ColMajor, 0)
	c := m.Copy()

	if err := Gemm(c, dense.Identity[float64](4), m, -2); err != nil {
		t.Fatal(err)
	}
	for i := range 4 {
		for j := range 4 {
			if got, want := c.At(i, j), -m.At(i, j); got != want {
				t.Errorf("c[%d][%d] = %v, want %v", i, j, got, want)
			}
		}
	}
}

func testGemmRandom[T hwy.Scalar](t *testing.T) {
	rng := linalgtest.NewRand()
	orders := []dense.Order{dense.ColMajor, dense.RowMajor}
	for _, s := range gemmShapes {
		for _, oc := range orders {
			for _, oa := range orders {
				for _, ob := range orders {
					name := fmt.Sprintf("%dx%dx%d/C%v/A%v/B%v", s.m, s.n, s.k, oc, oa, ob)
					t.Run(name, func(t *testing.T) {
						a := linalgtest.Rand[T](rng, s.m, s.k, oa, 1)
						b := linalgtest.Rand[T](rng, s.k, s.n, ob, 2)
						c := linalgtest.Rand[T](rng, s.m, s.n, oc, 3)
						want := c.Copy()
						alpha := linalgtest.RandScalar[T](rng)

						linalgtest.Naive(want, a, b, alpha)
						if err := Gemm(c, a, b, alpha, WithConfig(tinyCaches)); err != nil {
							t.Fatal(err)
						}
						linalgtest.AssertClose(t, c, want, linalgtest.Tolerance[T](s.k, 1))
					})
				}
			}
		}
	}
}

func TestGemmRandom(t *testing.T) {
	t.Run("float32", testGemmRandom[float32])
	t.Run("float64", testGemmRandom[float64])
	t.Run("complex64", testGemmRandom[complex64])
	t.Run("complex128", testGemmRandom[complex128])
}

func TestGemmMatchesGonum(t *testing.T) {
	rng := linalgtest.NewRand()
	for _, s := range gemmShapes {
		a := linalgtest.Rand[float64](rng, s.m, s.k, dense.ColMajor, 0)
		b := linalgtest.Rand[float64](rng, s.k, s.n, dense.RowMajor, 0)
		c := linalgtest.Rand[float64](rng, s.m, s.n, dense.ColMajor, 0)
		want := c.Copy()
		linalgtest.GonumGemm64(want, a, b, 0.5)
		if err := Gemm(c, a, b, 0.5); err != nil {
			t.Fatal(err)
		}
		linalgtest.AssertClose(t, c, want, linalgtest.Tolerance[float64](s.k, 1))

		ac := linalgtest.Rand[complex128](rng, s.m, s.k, dense.RowMajor, 1)
		bc := linalgtest.Rand[complex128](rng, s.k, s.n, dense.ColMajor, 1)
		cc := linalgtest.Rand[complex128](rng, s.m, s.n, dense.ColMajor, 0)
		wantC := cc.Copy()
		linalgtest.GonumGemm128(wantC, ac, bc, 1-2i)
		if err := Gemm(cc, ac, bc, 1-2i); err != nil {
			t.Fatal(err)
		}
		linalgtest.AssertClose(t, cc, wantC, linalgtest.Tolerance[complex128](s.k, 3))
	}
}

func TestGemmAlphaZero(t *testing.T) {
	rng := linalgtest.NewRand()
	a := linalgtest.Rand[float64](rng, 9, 7, dense.ColMajor, 0)
	a.Set(3, 3, math.NaN())
	b := linalgtest.Rand[float64](rng, 7, 5, dense.ColMajor, 0)
	c := linalgtest.Rand[float64](rng, 9, 5, dense.ColMajor, 0)
	before := c.Copy()

	if err := Gemm(c, a, b, 0); err != nil {
		t.Fatal(err)
	}
	for i := range c.Rows {
		for j := range c.Cols {
			if c.At(i, j) != before.At(i, j) {
				t.Fatalf("c[%d][%d] changed: %v -> %v", i, j, before.At(i, j), c.At(i, j))
			}
		}
	}

	// An empty depth is a no-op as well.
	empty := dense.NewColMajor[float64](9, 0)
	if err := Gemm(c, empty, dense.NewColMajor[float64](0, 5), 1); err != nil {
		t.Fatal(err)
	}
	if d := linalgtest.MaxAbsDiff(c, before); d != 0 {
		t.Errorf("empty depth changed C by %g", d)
	}
}

func TestGemmTransposeIdentity(t *testing.T) {
	rng := linalgtest.NewRand()
	a := linalgtest.Rand[float32](rng, 23, 31, dense.RowMajor, 0)
	b := linalgtest.Rand[float32](rng, 31, 19, dense.RowMajor, 0)

	rowC := dense.NewRowMajor[float32](23, 19)
	if err := Gemm(rowC, a, b, 1.5); err != nil {
		t.Fatal(err)
	}
	colC := dense.NewColMajor[float32](19, 23)
	if err := Gemm(colC, b.T(), a.T(), 1.5); err != nil {
		t.Fatal(err)
	}
	for i := range 23 {
		for j := range 19 {
			if rowC.At(i, j) != colC.At(j, i) {
				t.Fatalf("(%d,%d): row-major %v, transposed %v", i, j, rowC.At(i, j), colC.At(j, i))
			}
		}
	}
}

func TestGemmConjugation(t *testing.T) {
	rng := linalgtest.NewRand()
	a := linalgtest.Rand[complex128](rng, 13, 11, dense.ColMajor, 0)
	b := linalgtest.Rand[complex128](rng, 11, 9, dense.RowMajor, 0)
	c0 := linalgtest.Rand[complex128](rng, 13, 9, dense.ColMajor, 0)
	alpha := complex(0.5, -1.5)

	// C + alpha*conj(A)*B == conj(conj(C) + conj(alpha)*A*conj(B))
	left := c0.Copy()
	if err := Gemm(left, a.WithConj(true), b, alpha); err != nil {
		t.Fatal(err)
	}
	right := c0.WithConj(true).Copy()
	if err := Gemm(right, a, b, hwy.ConjOf(alpha), WithConj(false, true)); err != nil {
		t.Fatal(err)
	}
	linalgtest.AssertClose(t, left, right.WithConj(true), linalgtest.Tolerance[complex128](11, 2))

	// WithConj and Tile.Conj are interchangeable.
	viaOption := c0.Copy()
	if err := Gemm(viaOption, a, b, alpha, WithConj(true, false)); err != nil {
		t.Fatal(err)
	}
	linalgtest.AssertClose(t, viaOption, left, 0)
}

func TestGemmErrors(t *testing.T) {
	a := dense.NewColMajor[float64](3, 4)
	b := dense.NewColMajor[float64](4, 5)
	c := dense.NewColMajor[float64](3, 5)

	err := Gemm(c, a, dense.NewColMajor[float64](3, 5), 1)
	require.ErrorIs(t, err, dense.ErrShape)
	var de *dense.Error
	require.True(t, errors.As(err, &de))
	require.Equal(t, "B", de.Arg)
	require.Equal(t, "rows", de.Dim)
	require.Equal(t, 3, de.Got)
	require.Equal(t, 4, de.Want)

	require.ErrorIs(t, Gemm(dense.NewColMajor[float64](3, 4), a, b, 1), dense.ErrShape)
	require.ErrorIs(t, Gemm(c.WithConj(true), a, b, 1), dense.ErrUnsupportedMode)

	bad := a
	bad.Stride = 1
	require.ErrorIs(t, Gemm(c, bad, b, 1), dense.ErrBadTile)

	require.ErrorIs(t, Gemm(c, a, b, 1, WithConfig(Config{})), dense.ErrUnsupportedMode)

	h, err := NewBlockingHandle[float32](DefaultConfig(), 3, 5, 4)
	require.NoError(t, err)
	require.ErrorIs(t, Gemm(c, a, b, 1, WithBlocking(h)), dense.ErrAllocation)
}

func TestGemmBlockingHandle(t *testing.T) {
	rng := linalgtest.NewRand()
	h, err := NewBlockingHandle[float64](tinyCaches, Dynamic, Dynamic, Dynamic)
	require.NoError(t, err)

	for _, s := range gemmShapes {
		a := linalgtest.Rand[float64](rng, s.m, s.k, dense.ColMajor, 0)
		b := linalgtest.Rand[float64](rng, s.k, s.n, dense.ColMajor, 0)
		got := dense.NewColMajor[float64](s.m, s.n)
		want := dense.NewColMajor[float64](s.m, s.n)
		require.NoError(t, Gemm(got, a, b, 1, WithBlocking(h)))
		linalgtest.Naive(want, a, b, 1)
		linalgtest.AssertClose(t, got, want, linalgtest.Tolerance[float64](s.k, 1))
	}
}

func TestGemmParallelMatchesSequential(t *testing.T) {
	rng := linalgtest.NewRand()
	cfg := tinyCaches
	cfg.MaxWorkers = 4
	pool := workerpool.New(3)
	defer pool.Close()

	for _, s := range []struct{ m, n, k int }{{150, 130, 140}, {9, 200, 50}, {64, 3, 300}} {
		a := linalgtest.Rand[float64](rng, s.m, s.k, dense.ColMajor, 0)
		b := linalgtest.Rand[float64](rng, s.k, s.n, dense.RowMajor, 0)
		seq := dense.NewColMajor[float64](s.m, s.n)
		require.NoError(t, Gemm(seq, a, b, 2, WithConfig(cfg), WithParallel(false)))
		tol := linalgtest.Tolerance[float64](s.k, 2)

		par := dense.NewColMajor[float64](s.m, s.n)
		require.NoError(t, Gemm(par, a, b, 2, WithConfig(cfg), WithParallel(true)))
		linalgtest.AssertClose(t, par, seq, tol)

		pooled := dense.NewColMajor[float64](s.m, s.n)
		require.NoError(t, Gemm(pooled, a, b, 2, WithConfig(cfg), WithParallel(true), WithPool(pool)))
		linalgtest.AssertClose(t, pooled, seq, tol)
	}
}

func TestGemmSharedPool(t *testing.T) {
	rng := linalgtest.NewRand()
	cfg := tinyCaches
	cfg.MaxWorkers = 4
	pool := workerpool.New(4)
	defer pool.Close()

	a := linalgtest.Rand[float64](rng, 48, 64, dense.ColMajor, 0)
	b := linalgtest.Rand[float64](rng, 64, 48, dense.ColMajor, 0)
	want := dense.NewColMajor[float64](48, 48)
	linalgtest.Naive(want, a, b, 1)
	tol := linalgtest.Tolerance[float64](64, 1)
	opts := []Option{WithConfig(cfg), WithParallel(true), WithPool(pool)}

	const callers = 16
	results := make([]dense.Tile[float64], callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = dense.NewColMajor[float64](48, 48)
			errs[i] = Gemm(results[i], a, b, 1, opts...)
		}()
	}
	wg.Wait()
	for i := range callers {
		require.NoError(t, errs[i])
		linalgtest.AssertClose(t, results[i], want, tol)
	}

	// Products issued from the pool's own workers.
	nested := make([]dense.Tile[float64], 8)
	nestedErrs := make([]error, len(nested))
	pool.ParallelFor(len(nested), func(start, end int) {
		for i := start; i < end; i++ {
			nested[i] = dense.NewColMajor[float64](48, 48)
			nestedErrs[i] = Gemm(nested[i], a, b, 1, opts...)
		}
	})
	for i := range nested {
		require.NoError(t, nestedErrs[i])
		linalgtest.AssertClose(t, nested[i], want, tol)
	}
}

func TestGemmParallelComplex(t *testing.T) {
	rng := linalgtest.NewRand()
	cfg := tinyCaches
	cfg.MaxWorkers = 3
	a := linalgtest.Rand[complex64](rng, 40, 37, dense.RowMajor, 0)
	b := linalgtest.Rand[complex64](rng, 37, 45, dense.ColMajor, 0)
	got := dense.NewRowMajor[complex64](40, 45)
	want := dense.NewRowMajor[complex64](40, 45)

	require.NoError(t, Gemm(got, a, b, 1i, WithConfig(cfg), WithParallel(true)))
	linalgtest.Naive(want, a, b, 1i)
	linalgtest.AssertClose(t, got, want, linalgtest.Tolerance[complex64](37, 2))
}

func BenchmarkGemm(b *testing.B) {
	for _, n := range []int{64, 256, 512} {
		rng := linalgtest.NewRand()
		x := linalgtest.Rand[float32](rng, n, n, dense.ColMajor, 0)
		y := linalgtest.Rand[float32](rng, n, n, dense.ColMajor, 0)
		c := dense.NewColMajor[float32](n, n)
		b.Run(fmt.Sprintf("%d", n), func(b *testing.B) {
			flops := 2 * float64(n) * float64(n) * float64(n)
			iters := 0
			for b.Loop() {
				if err := Gemm(c, x, y, 1); err != nil {
					b.Fatal(err)
				}
				iters++
			}
			b.ReportMetric(flops*float64(iters)/b.Elapsed().Seconds()/1e9, "GFLOPS")
		})
	}
}
