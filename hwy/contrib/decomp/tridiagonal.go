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
	"math"

	"github.com/ajroetker/go-gemm/hwy"
	"github.com/ajroetker/go-gemm/hwy/contrib/dense"
	"github.com/ajroetker/go-gemm/hwy/contrib/dot"
	"github.com/ajroetker/go-gemm/hwy/contrib/householder"
	"github.com/ajroetker/go-gemm/hwy/contrib/matmul"
)

// Tridiagonalization reduces a self-adjoint matrix A to real symmetric
// tridiagonal form T with A = Q * T * Q^H, where
// Q = H_0^H * H_1^H * ... * H_{n-2}^H and H_i annihilates column i below
// the sub-diagonal.
//
// Only the lower triangle of A is read. The zero value is ready to use.
type Tridiagonalization[T hwy.Scalar] struct {
	packed dense.Tile[T]
	coeffs []T
	diag   []float64
	sub    []float64
	work   []T

	info        dense.Info
	initialized bool
}

// NewTridiagonalization returns an uninitialized decomposition with storage
// preallocated for n x n matrices.
func NewTridiagonalization[T hwy.Scalar](n int) *Tridiagonalization[T] {
	t := &Tridiagonalization[T]{}
	t.resize(max(n, 0))
	return t
}

func (t *Tridiagonalization[T]) resize(n int) {
	if t.packed.Data != nil && t.packed.Rows == n {
		return
	}
	t.packed = dense.NewColMajor[T](n, n)
	t.coeffs = make([]T, max(n-1, 0))
	t.diag = make([]float64, n)
	t.sub = make([]float64, max(n-1, 0))
	t.work = make([]T, n)
}

// Compute factors the square self-adjoint matrix a. The imaginary part of
// its diagonal is ignored.
func (t *Tridiagonalization[T]) Compute(a dense.Tile[T]) error {
	const op = "tridiagonalization"
	if err := a.Check(op, "A"); err != nil {
		return err
	}
	if a.Rows != a.Cols {
		return dense.ShapeError(op, "A", "cols", a.Cols, a.Rows)
	}
	n := a.Rows
	t.resize(n)
	if err := t.packed.CopyFrom(a); err != nil {
		return err
	}
	if err := tridiagonalizeInPlace(t.packed, t.coeffs, t.sub, t.work); err != nil {
		return err
	}
	for i := range n {
		t.diag[i] = hwy.RealOf(t.packed.At(i, i))
	}
	t.info = statusOf(t.diag, t.sub)
	t.initialized = true
	return nil
}

// Packed returns the internal n x n storage: the diagonal and sub-diagonal
// of T (with Householder-modified values), the essential parts of the
// reflectors below the sub-diagonal, and the strict upper triangle of the
// input. It aliases the decomposition and is empty before Compute.
func (t *Tridiagonalization[T]) Packed() dense.Tile[T] {
	if !t.initialized {
		return dense.Tile[T]{}
	}
	return t.packed
}

// HouseholderCoefficients returns tau of each reflector H_i.
func (t *Tridiagonalization[T]) HouseholderCoefficients() []T {
	if !t.initialized {
		return nil
	}
	return t.coeffs
}

// Diagonal returns the diagonal of T.
func (t *Tridiagonalization[T]) Diagonal() []float64 {
	if !t.initialized {
		return nil
	}
	return t.diag
}

// SubDiagonal returns the sub-diagonal of T.
func (t *Tridiagonalization[T]) SubDiagonal() []float64 {
	if !t.initialized {
		return nil
	}
	return t.sub
}

// Info reports whether the factorization holds only finite values.
func (t *Tridiagonalization[T]) Info() (dense.Info, error) {
	if !t.initialized {
		return dense.Success, dense.NotInitializedError("tridiagonalization.info")
	}
	return t.info, nil
}

// HouseholderQ returns Q as a sequence of reflectors over the packed
// storage. The sequence aliases the decomposition.
func (t *Tridiagonalization[T]) HouseholderQ() (householder.Sequence[T], error) {
	if !t.initialized {
		return householder.Sequence[T]{}, dense.NotInitializedError("tridiagonalization.householderQ")
	}
	adj := make([]T, len(t.coeffs))
	for i, c := range t.coeffs {
		adj[i] = hwy.ConjOf(c)
	}
	return householder.NewSequence(t.packed, adj, false, 1), nil
}

// MatrixQ returns Q as a new n x n column-major matrix.
func (t *Tridiagonalization[T]) MatrixQ() (dense.Tile[T], error) {
	if !t.initialized {
		return dense.Tile[T]{}, dense.NotInitializedError("tridiagonalization.matrixQ")
	}
	seq, _ := t.HouseholderQ()
	return seq.ToDense(), nil
}

// Form returns copies of T's diagonals together with Q.
func (t *Tridiagonalization[T]) Form() (TridiagonalForm[T], error) {
	q, err := t.MatrixQ()
	if err != nil {
		return TridiagonalForm[T]{}, err
	}
	return TridiagonalForm[T]{
		Diagonal:    append([]float64(nil), t.diag...),
		SubDiagonal: append([]float64(nil), t.sub...),
		Q:           q,
	}, nil
}

// TridiagonalForm is a computed reduction A = Q * T * Q^H.
type TridiagonalForm[T hwy.Scalar] struct {
	Diagonal    []float64
	SubDiagonal []float64
	Q           dense.Tile[T]
}

// Matrix returns T as a dense n x n column-major matrix.
func (f TridiagonalForm[T]) Matrix() dense.Tile[T] {
	n := len(f.Diagonal)
	m := dense.NewColMajor[T](n, n)
	for i, d := range f.Diagonal {
		m.Set(i, i, hwy.FromReal[T](d))
	}
	for i, s := range f.SubDiagonal {
		m.Set(i+1, i, hwy.FromReal[T](s))
		m.Set(i, i+1, hwy.FromReal[T](s))
	}
	return m
}

// Tridiagonalize computes the tridiagonal form of the self-adjoint matrix a.
func Tridiagonalize[T hwy.Scalar](a dense.Tile[T]) (TridiagonalForm[T], error) {
	var t Tridiagonalization[T]
	if err := t.Compute(a); err != nil {
		return TridiagonalForm[T]{}, err
	}
	return t.Form()
}

// DecomposeInPlace writes the diagonal and sub-diagonal of the tridiagonal
// form of a into diag and sub, and overwrites a with Q when extractQ is set.
// Otherwise a is left unchanged.
//
// Real 3 x 3 matrices take a closed form that reads only the upper
// triangle; all other inputs are read through the lower triangle.
func DecomposeInPlace[T hwy.Scalar](a dense.Tile[T], diag, sub []float64, extractQ bool) error {
	const op = "tridiagonalization.decomposeInPlace"
	if err := a.Check(op, "A"); err != nil {
		return err
	}
	n := a.Rows
	if a.Cols != n {
		return dense.ShapeError(op, "A", "cols", a.Cols, n)
	}
	if len(diag) < n {
		return dense.ShapeError(op, "diag", "length", len(diag), n)
	}
	if len(sub) < max(n-1, 0) {
		return dense.ShapeError(op, "sub", "length", len(sub), n-1)
	}
	if n == 3 && !hwy.IsComplex[T]() {
		decompose3x3(a, diag, sub, extractQ)
		return nil
	}

	var t Tridiagonalization[T]
	if err := t.Compute(a); err != nil {
		return err
	}
	copy(diag, t.diag)
	copy(sub, t.sub)
	if !extractQ {
		return nil
	}
	q, _ := t.MatrixQ()
	return a.CopyFrom(q)
}

// decompose3x3 reduces a real symmetric 3 x 3 matrix with a single
// reflection in the (1, 2) plane, Q = [1 0 0; 0 c s; 0 s -c].
func decompose3x3[T hwy.Scalar](a dense.Tile[T], diag, sub []float64, extractQ bool) {
	at := func(i, j int) float64 { return hwy.RealOf(a.At(i, j)) }
	m00, m01, m02 := at(0, 0), at(0, 1), at(0, 2)
	m11, m12, m22 := at(1, 1), at(1, 2), at(2, 2)
	eps := hwy.Epsilon[T]()

	diag[0] = m00
	if m02*m02 <= eps*eps*m01*m01 {
		diag[1], diag[2] = m11, m22
		sub[0], sub[1] = m01, m12
		if extractQ {
			setRows(a, [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}})
		}
		return
	}

	beta := math.Sqrt(m01*m01 + m02*m02)
	c, s := m01/beta, m02/beta
	q := 2*c*m12 + s*(m22-m11)
	diag[1] = m11 + s*q
	diag[2] = m22 - s*q
	sub[0] = beta
	sub[1] = m12 - c*q
	if extractQ {
		setRows(a, [3][3]float64{{1, 0, 0}, {0, c, s}, {0, s, -c}})
	}
}

func setRows[T hwy.Scalar](a dense.Tile[T], rows [3][3]float64) {
	for i, row := range rows {
		for j, v := range row {
			a.Set(i, j, hwy.FromReal[T](v))
		}
	}
}

// tridiagonalizeInPlace reduces the lower triangle of the contiguous
// column-major matrix a. On return column i holds mu_i at row i+1 and the
// essential part of H_i below it; coeffs[i] is tau_i and sub[i] is mu_i.
// work must hold n elements.
//
// Step i applies H * A22 * H^H to the trailing block A22 with v the
// reflector vector:
//
//	p = conj(tau) * A22 * v
//	w = p - (tau/2) * (v^H * p) * v
//	A22 -= v * w^H + w * v^H
func tridiagonalizeInPlace[T hwy.Scalar](a dense.Tile[T], coeffs []T, sub []float64, work []T) error {
	n, ld := a.Rows, a.Stride
	for i := 0; i < n-1; i++ {
		rs := n - i - 1
		v := a.Data[i*ld+i+1 : i*ld+n]
		tau, beta := householder.MakeInPlace(v, 1)
		coeffs[i], sub[i] = tau, beta
		if tau == 0 {
			continue
		}

		v[0] = 1
		a22 := a.Slice(i+1, i+1, rs, rs)
		p := work[:rs]
		clear(p)
		err := matmul.Symm(dense.FromColMajor(p, rs, 1, rs), a22, dense.FromColMajor(v, rs, 1, rs),
			hwy.ConjOf(tau), dense.Lower, dense.Left)
		if err != nil {
			return err
		}
		vp := dot.DotStrided(rs, v, 1, p, 1, true)
		hwy.AxpyInPlace(p, -tau*vp/2, v)

		for j := range rs {
			col := a22.Data[j*ld+j : j*ld+rs]
			hwy.AxpyInPlace(col, -hwy.ConjOf(p[j]), v[j:])
			hwy.AxpyInPlace(col, -hwy.ConjOf(v[j]), p[j:])
		}
		v[0] = hwy.FromReal[T](beta)
	}
	return nil
}

func statusOf(vals ...[]float64) dense.Info {
	for _, vs := range vals {
		for _, v := range vs {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return dense.NumericalIssue
			}
		}
	}
	return dense.Success
}
