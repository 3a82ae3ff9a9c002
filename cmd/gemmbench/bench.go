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

package main

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/ajroetker/go-gemm/hwy"
	"github.com/ajroetker/go-gemm/hwy/contrib/decomp"
	"github.com/ajroetker/go-gemm/hwy/contrib/dense"
	"github.com/ajroetker/go-gemm/hwy/contrib/matmul"
	"github.com/ajroetker/go-gemm/hwy/contrib/workerpool"
	"github.com/ajroetker/go-gemm/internal/linalgtest"
)

// flopScale is the number of real flops per multiply-add of T.
func flopScale[T hwy.Scalar]() float64 {
	if hwy.IsComplex[T]() {
		return 8
	}
	return 2
}

// timeBest runs fn o.repeat times and returns the fastest run.
func timeBest(o *benchOptions, name string, fn func() error) (time.Duration, error) {
	best := time.Duration(math.MaxInt64)
	for i := range o.repeat {
		start := time.Now()
		if err := fn(); err != nil {
			return 0, err
		}
		d := time.Since(start)
		slog.Debug("run", "bench", name, "iteration", i, "elapsed", d)
		best = min(best, d)
	}
	return best, nil
}

func report(cmd *cobra.Command, o *benchOptions, name string, best time.Duration, flops float64) {
	gflops := flops / best.Seconds() / 1e9
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s n=%d: %v, %.2f GFLOP/s\n", name, o.typ, o.size, best, gflops)
}

func newRand() *rand.Rand {
	return rand.New(rand.NewSource(1))
}

func runGemm(o *benchOptions, cmd *cobra.Command) error {
	return byType(o.typ,
		func() error { return benchGemm[float32](o, cmd) },
		func() error { return benchGemm[float64](o, cmd) },
		func() error { return benchGemm[complex64](o, cmd) },
		func() error { return benchGemm[complex128](o, cmd) })
}

func benchGemm[T hwy.Scalar](o *benchOptions, cmd *cobra.Command) error {
	n := o.size
	rng := newRand()
	a := linalgtest.Rand[T](rng, n, n, dense.ColMajor, 0)
	b := linalgtest.Rand[T](rng, n, n, dense.ColMajor, 0)
	c := dense.NewColMajor[T](n, n)

	pool := workerpool.New(o.workers)
	defer pool.Close()
	h, err := matmul.NewBlockingHandle[T](matmul.CurrentConfig(), n, n, n)
	if err != nil {
		return err
	}
	opts := []matmul.Option{matmul.WithPool(pool), matmul.WithBlocking(h), matmul.WithParallel(pool.NumWorkers() > 1)}

	best, err := timeBest(o, "gemm", func() error {
		c.Fill(0)
		return matmul.Gemm(c, a, b, 1, opts...)
	})
	if err != nil {
		return err
	}
	report(cmd, o, "gemm", best, flopScale[T]()*float64(n)*float64(n)*float64(n))
	if o.check {
		return checkProduct(c, a, b)
	}
	return nil
}

func runTrmm(o *benchOptions, cmd *cobra.Command) error {
	return byType(o.typ,
		func() error { return benchTrmm[float32](o, cmd) },
		func() error { return benchTrmm[float64](o, cmd) },
		func() error { return benchTrmm[complex64](o, cmd) },
		func() error { return benchTrmm[complex128](o, cmd) })
}

func benchTrmm[T hwy.Scalar](o *benchOptions, cmd *cobra.Command) error {
	n := o.size
	rng := newRand()
	a := linalgtest.Rand[T](rng, n, n, dense.ColMajor, 0)
	b := linalgtest.Rand[T](rng, n, n, dense.ColMajor, 0)
	c := dense.NewColMajor[T](n, n)
	mode := dense.Mode{UpLo: dense.Lower, Diag: dense.NonUnit}

	best, err := timeBest(o, "trmm", func() error {
		c.Fill(0)
		return matmul.Trmm(c, a, b, 1, mode, dense.Left)
	})
	if err != nil {
		return err
	}
	report(cmd, o, "trmm", best, flopScale[T]()*float64(n)*float64(n)*float64(n)/2)
	if o.check {
		return checkProduct(c, linalgtest.Triangular(a, mode), b)
	}
	return nil
}

func runTridiag(o *benchOptions, cmd *cobra.Command) error {
	return byType(o.typ,
		func() error { return benchTridiag[float32](o, cmd) },
		func() error { return benchTridiag[float64](o, cmd) },
		func() error { return benchTridiag[complex64](o, cmd) },
		func() error { return benchTridiag[complex128](o, cmd) })
}

func benchTridiag[T hwy.Scalar](o *benchOptions, cmd *cobra.Command) error {
	n := o.size
	a := linalgtest.RandSelfAdjoint[T](newRand(), n)
	tr := decomp.NewTridiagonalization[T](n)

	best, err := timeBest(o, "tridiag", func() error { return tr.Compute(a) })
	if err != nil {
		return err
	}
	report(cmd, o, "tridiag", best, flopScale[T]()*2*float64(n)*float64(n)*float64(n)/3)
	if info, _ := tr.Info(); info != dense.Success {
		return fmt.Errorf("tridiagonalization: %v", info)
	}
	if !o.check {
		return nil
	}
	af, ok := any(a).(dense.Tile[float64])
	if !ok {
		slog.Warn("check skipped: eigenvalue oracle needs float64", "type", o.typ)
		return nil
	}
	want := linalgtest.SymEigenvalues(af)
	got := linalgtest.TridiagonalEigenvalues(tr.Diagonal(), tr.SubDiagonal())
	return checkValues("eigenvalue", want, got)
}

func runBidiag(o *benchOptions, cmd *cobra.Command) error {
	return byType(o.typ,
		func() error { return benchBidiag[float32](o, cmd) },
		func() error { return benchBidiag[float64](o, cmd) },
		func() error { return benchBidiag[complex64](o, cmd) },
		func() error { return benchBidiag[complex128](o, cmd) })
}

func benchBidiag[T hwy.Scalar](o *benchOptions, cmd *cobra.Command) error {
	n := o.size
	a := linalgtest.Rand[T](newRand(), n, n, dense.ColMajor, 0)
	bd := decomp.NewUpperBidiagonalization[T](n, n)

	best, err := timeBest(o, "bidiag", func() error { return bd.Compute(a) })
	if err != nil {
		return err
	}
	report(cmd, o, "bidiag", best, flopScale[T]()*4*float64(n)*float64(n)*float64(n)/3)
	if info, _ := bd.Info(); info != dense.Success {
		return fmt.Errorf("bidiagonalization: %v", info)
	}
	if !o.check {
		return nil
	}
	af, ok := any(a).(dense.Tile[float64])
	if !ok {
		slog.Warn("check skipped: singular value oracle needs float64", "type", o.typ)
		return nil
	}
	b, err := bd.Bidiagonal()
	if err != nil {
		return err
	}
	return checkValues("singular value", linalgtest.SingularValues(af), linalgtest.SingularValues(any(b).(dense.Tile[float64])))
}

// checkProduct compares c with a*b computed by gonum.
func checkProduct[T hwy.Scalar](c, a, b dense.Tile[T]) error {
	var diff float64
	switch cc := any(c).(type) {
	case dense.Tile[float64]:
		want := dense.NewColMajor[float64](c.Rows, c.Cols)
		linalgtest.GonumGemm64(want, any(a).(dense.Tile[float64]), any(b).(dense.Tile[float64]), 1)
		diff = linalgtest.MaxAbsDiff(cc, want)
	case dense.Tile[complex128]:
		want := dense.NewColMajor[complex128](c.Rows, c.Cols)
		linalgtest.GonumGemm128(want, any(a).(dense.Tile[complex128]), any(b).(dense.Tile[complex128]), 1)
		diff = linalgtest.MaxAbsDiff(cc, want)
	default:
		slog.Warn("check skipped: gonum oracle needs float64 or complex128")
		return nil
	}
	tol := linalgtest.Tolerance[T](a.Cols, 1)
	if diff > tol {
		return fmt.Errorf("max |C - gonum| = %g exceeds %g", diff, tol)
	}
	slog.Info("check passed", "maxAbsDiff", diff)
	return nil
}

func checkValues(what string, want, got []float64) error {
	if want == nil || got == nil {
		return fmt.Errorf("gonum %s decomposition did not converge", what)
	}
	var diff float64
	for i := range want {
		diff = max(diff, math.Abs(want[i]-got[i]))
	}
	tol := 1e-9 * max(1, math.Abs(want[0]), math.Abs(want[len(want)-1]))
	if diff > tol {
		return fmt.Errorf("max %s difference %g exceeds %g", what, diff, tol)
	}
	slog.Info("check passed", "values", len(want), "maxAbsDiff", diff)
	return nil
}
