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
	"github.com/ajroetker/go-gemm/hwy"
	"github.com/ajroetker/go-gemm/hwy/contrib/dense"
	"github.com/ajroetker/go-gemm/hwy/contrib/householder"
)

// UpperBidiagonalization reduces an m x n matrix A, m >= n, to real upper
// bidiagonal form B with A = U * B * V^H. U is m x m and V is n x n; the
// identity uses the first n columns of U.
//
// Step k builds a left reflector that annihilates column k below the
// diagonal and, for k < n-1, a right reflector that annihilates row k right
// of the super-diagonal. The zero value is ready to use.
type UpperBidiagonalization[T hwy.Scalar] struct {
	packed  dense.Tile[T]
	coeffsU []T
	coeffsV []T
	diag    []float64
	super   []float64
	work    []T

	info        dense.Info
	initialized bool
}

// NewUpperBidiagonalization returns an uninitialized decomposition with
// storage preallocated for m x n matrices.
func NewUpperBidiagonalization[T hwy.Scalar](m, n int) *UpperBidiagonalization[T] {
	b := &UpperBidiagonalization[T]{}
	b.resize(max(m, 0), max(n, 0))
	return b
}

func (b *UpperBidiagonalization[T]) resize(m, n int) {
	if b.packed.Data != nil && b.packed.Rows == m && b.packed.Cols == n {
		return
	}
	b.packed = dense.NewColMajor[T](m, n)
	b.coeffsU = make([]T, n)
	b.coeffsV = make([]T, max(n-1, 0))
	b.diag = make([]float64, n)
	b.super = make([]float64, max(n-1, 0))
	b.work = make([]T, max(m, n))
}

// Compute factors a. It fails with dense.ErrUnsupportedMode when a has
// more columns than rows.
func (b *UpperBidiagonalization[T]) Compute(a dense.Tile[T]) error {
	const op = "bidiagonalization"
	if err := a.Check(op, "A"); err != nil {
		return err
	}
	m, n := a.Rows, a.Cols
	if m < n {
		return dense.ModeError(op, "A must have at least as many rows as columns")
	}
	b.resize(m, n)
	h := b.packed
	if err := h.CopyFrom(a); err != nil {
		return err
	}

	for k := range n {
		col := h.Data[k*m+k : (k+1)*m]
		tau, beta := householder.MakeInPlace(col, 1)
		b.coeffsU[k], b.diag[k] = tau, beta
		err := householder.ApplyLeft(h.Slice(k, k+1, m-k, n-k-1), col[1:], 1, tau, b.work)
		if err != nil {
			return err
		}
		if k == n-1 {
			break
		}

		// Row k right of the diagonal, strided by the leading dimension.
		row := h.Data[(k+1)*m+k : (n-1)*m+k+1]
		tau, beta = householder.MakeInPlace(row, m)
		b.coeffsV[k], b.super[k] = tau, beta
		err = householder.ApplyRight(h.Slice(k+1, k+1, m-k-1, n-k-1), row[min(m, len(row)):], m, tau, b.work)
		if err != nil {
			return err
		}
	}
	b.info = statusOf(b.diag, b.super)
	b.initialized = true
	return nil
}

// Householder returns the m x n packed storage: B's diagonal and
// super-diagonal, the essential parts of the left reflectors below the
// diagonal and those of the right reflectors right of the super-diagonal.
// It aliases the decomposition and is empty before Compute.
func (b *UpperBidiagonalization[T]) Householder() dense.Tile[T] {
	if !b.initialized {
		return dense.Tile[T]{}
	}
	return b.packed
}

// Diagonal returns the diagonal of B.
func (b *UpperBidiagonalization[T]) Diagonal() []float64 {
	if !b.initialized {
		return nil
	}
	return b.diag
}

// SuperDiagonal returns the super-diagonal of B.
func (b *UpperBidiagonalization[T]) SuperDiagonal() []float64 {
	if !b.initialized {
		return nil
	}
	return b.super
}

// CoeffsU returns tau of each left reflector.
func (b *UpperBidiagonalization[T]) CoeffsU() []T {
	if !b.initialized {
		return nil
	}
	return b.coeffsU
}

// CoeffsV returns tau of each right reflector.
func (b *UpperBidiagonalization[T]) CoeffsV() []T {
	if !b.initialized {
		return nil
	}
	return b.coeffsV
}

// Info reports whether the factorization holds only finite values.
func (b *UpperBidiagonalization[T]) Info() (dense.Info, error) {
	if !b.initialized {
		return dense.Success, dense.NotInitializedError("bidiagonalization.info")
	}
	return b.info, nil
}

// HouseholderU returns U as a sequence of the left reflectors' adjoints.
func (b *UpperBidiagonalization[T]) HouseholderU() (householder.Sequence[T], error) {
	if !b.initialized {
		return householder.Sequence[T]{}, dense.NotInitializedError("bidiagonalization.householderU")
	}
	adj := make([]T, len(b.coeffsU))
	for i, c := range b.coeffsU {
		adj[i] = hwy.ConjOf(c)
	}
	return householder.NewSequence(b.packed, adj, false, 0), nil
}

// HouseholderV returns V as a sequence over the rows of the packed storage.
// Right reflector k maps row k to mu*e1^T by multiplication with
// I - tau*conj(v)*v^T, which is the reflector of conj(v) stored by rows.
func (b *UpperBidiagonalization[T]) HouseholderV() (householder.Sequence[T], error) {
	if !b.initialized {
		return householder.Sequence[T]{}, dense.NotInitializedError("bidiagonalization.householderV")
	}
	return householder.NewSequence(b.packed, b.coeffsV, true, 1), nil
}

// MatrixU returns U as a new m x m column-major matrix.
func (b *UpperBidiagonalization[T]) MatrixU() (dense.Tile[T], error) {
	seq, err := b.HouseholderU()
	if err != nil {
		return dense.Tile[T]{}, err
	}
	return seq.ToDense(), nil
}

// MatrixV returns V as a new n x n column-major matrix.
func (b *UpperBidiagonalization[T]) MatrixV() (dense.Tile[T], error) {
	seq, err := b.HouseholderV()
	if err != nil {
		return dense.Tile[T]{}, err
	}
	return seq.ToDense(), nil
}

// Bidiagonal returns B as a new n x n column-major matrix.
func (b *UpperBidiagonalization[T]) Bidiagonal() (dense.Tile[T], error) {
	if !b.initialized {
		return dense.Tile[T]{}, dense.NotInitializedError("bidiagonalization.bidiagonal")
	}
	return bidiagonalMatrix[T](b.diag, b.super), nil
}

// Form returns copies of B's diagonals together with U and V.
func (b *UpperBidiagonalization[T]) Form() (BidiagonalForm[T], error) {
	u, err := b.MatrixU()
	if err != nil {
		return BidiagonalForm[T]{}, err
	}
	v, _ := b.MatrixV()
	return BidiagonalForm[T]{
		Diagonal:      append([]float64(nil), b.diag...),
		SuperDiagonal: append([]float64(nil), b.super...),
		U:             u,
		V:             v,
	}, nil
}

// BidiagonalForm is a computed reduction A = U * B * V^H.
type BidiagonalForm[T hwy.Scalar] struct {
	Diagonal      []float64
	SuperDiagonal []float64
	U             dense.Tile[T]
	V             dense.Tile[T]
}

// Matrix returns B as a dense n x n column-major matrix.
func (f BidiagonalForm[T]) Matrix() dense.Tile[T] {
	return bidiagonalMatrix[T](f.Diagonal, f.SuperDiagonal)
}

// Bidiagonalize computes the upper bidiagonal form of a.
func Bidiagonalize[T hwy.Scalar](a dense.Tile[T]) (BidiagonalForm[T], error) {
	var b UpperBidiagonalization[T]
	if err := b.Compute(a); err != nil {
		return BidiagonalForm[T]{}, err
	}
	return b.Form()
}

func bidiagonalMatrix[T hwy.Scalar](diag, super []float64) dense.Tile[T] {
	n := len(diag)
	m := dense.NewColMajor[T](n, n)
	for i, d := range diag {
		m.Set(i, i, hwy.FromReal[T](d))
	}
	for i, s := range super {
		m.Set(i, i+1, hwy.FromReal[T](s))
	}
	return m
}
