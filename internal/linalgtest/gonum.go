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

package linalgtest

import (
	"sort"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/blas/cblas128"
	"gonum.org/v1/gonum/mat"

	"github.com/ajroetker/go-gemm/hwy/contrib/dense"
)

func general64(t dense.Tile[float64]) blas64.General {
	g := blas64.General{Rows: t.Rows, Cols: t.Cols, Stride: max(t.Cols, 1), Data: make([]float64, max(t.Rows*t.Cols, 1))}
	for i := range t.Rows {
		for j := range t.Cols {
			g.Data[i*g.Stride+j] = t.At(i, j)
		}
	}
	return g
}

func general128(t dense.Tile[complex128]) cblas128.General {
	g := cblas128.General{Rows: t.Rows, Cols: t.Cols, Stride: max(t.Cols, 1), Data: make([]complex128, max(t.Rows*t.Cols, 1))}
	for i := range t.Rows {
		for j := range t.Cols {
			g.Data[i*g.Stride+j] = t.At(i, j)
		}
	}
	return g
}

// GonumGemm64 computes C += alpha * A * B with gonum's BLAS.
func GonumGemm64(c, a, b dense.Tile[float64], alpha float64) {
	cg := general64(c)
	blas64.Gemm(blas.NoTrans, blas.NoTrans, alpha, general64(a), general64(b), 1, cg)
	for i := range c.Rows {
		for j := range c.Cols {
			c.Set(i, j, cg.Data[i*cg.Stride+j])
		}
	}
}

// GonumGemm128 computes C += alpha * A * B with gonum's complex BLAS.
func GonumGemm128(c, a, b dense.Tile[complex128], alpha complex128) {
	cg := general128(c)
	cblas128.Gemm(blas.NoTrans, blas.NoTrans, alpha, general128(a), general128(b), 1, cg)
	for i := range c.Rows {
		for j := range c.Cols {
			c.Set(i, j, cg.Data[i*cg.Stride+j])
		}
	}
}

// SymEigenvalues returns the ascending eigenvalues of the symmetric tile a,
// or nil if gonum fails to converge.
func SymEigenvalues(a dense.Tile[float64]) []float64 {
	n := a.Rows
	sym := mat.NewSymDense(n, nil)
	for i := range n {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, a.At(i, j))
		}
	}
	var es mat.EigenSym
	if !es.Factorize(sym, false) {
		return nil
	}
	vals := es.Values(nil)
	sort.Float64s(vals)
	return vals
}

// TridiagonalEigenvalues returns the ascending eigenvalues of the symmetric
// tridiagonal matrix with the given diagonal and sub-diagonal.
func TridiagonalEigenvalues(diag, sub []float64) []float64 {
	n := len(diag)
	t := dense.NewColMajor[float64](n, n)
	for i := range n {
		t.Set(i, i, diag[i])
		if i+1 < n {
			t.Set(i+1, i, sub[i])
			t.Set(i, i+1, sub[i])
		}
	}
	return SymEigenvalues(t)
}

// SingularValues returns the descending singular values of a, or nil if
// gonum fails to converge.
func SingularValues(a dense.Tile[float64]) []float64 {
	g := general64(a)
	m := mat.NewDense(a.Rows, a.Cols, g.Data[:a.Rows*a.Cols])
	var svd mat.SVD
	if !svd.Factorize(m, mat.SVDNone) {
		return nil
	}
	return svd.Values(nil)
}
