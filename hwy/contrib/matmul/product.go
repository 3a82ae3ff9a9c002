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
	"github.com/ajroetker/go-gemm/hwy"
	"github.com/ajroetker/go-gemm/hwy/contrib/dense"
	"github.com/ajroetker/go-gemm/hwy/contrib/dot"
	"github.com/ajroetker/go-gemm/hwy/contrib/matvec"
)

// minParallelGemvRows is the smallest GEMV that is split across a pool.
const minParallelGemvRows = 1024

// Product describes alpha * op(A) * op(B) before it is evaluated.
//
// Kind selects the driver: Dense products go through shape dispatch,
// triangular kinds through Trmm and self-adjoint kinds through Symm. For the
// structured kinds Side names the structured operand (Left: A, Right: B)
// and Kind carries its UpLo.
type Product[T hwy.Scalar] struct {
	Kind  dense.ShapeKind
	Alpha T
	A, B  dense.Tile[T]
	ConjA bool
	ConjB bool
	Side  dense.Side
	Diag  dense.Diag
}

// NewProduct returns the dense product A * B.
func NewProduct[T hwy.Scalar](a, b dense.Tile[T]) Product[T] {
	return Product[T]{Kind: dense.Dense, Alpha: 1, A: a, B: b}
}

// Scaled returns s * p.
func (p Product[T]) Scaled(s T) Product[T] {
	p.Alpha *= s
	return p
}

// Conjugated returns p with A and/or B additionally conjugated on read.
func (p Product[T]) Conjugated(conjA, conjB bool) Product[T] {
	p.ConjA = p.ConjA != conjA
	p.ConjB = p.ConjB != conjB
	return p
}

// Rows returns the number of rows of the result.
func (p Product[T]) Rows() int { return p.A.Rows }

// Cols returns the number of columns of the result.
func (p Product[T]) Cols() int { return p.B.Cols }

// Depth returns the inner dimension.
func (p Product[T]) Depth() int { return p.A.Cols }

// ProductImpl names the implementation selected for a dense product.
type ProductImpl uint8

const (
	ImplNone ProductImpl = iota
	ImplInner
	ImplOuter
	ImplGemv
	ImplCoeffBased
	ImplSmall
	ImplGemm
)

func (i ProductImpl) String() string {
	switch i {
	case ImplNone:
		return "none"
	case ImplInner:
		return "inner"
	case ImplOuter:
		return "outer"
	case ImplGemv:
		return "gemv"
	case ImplCoeffBased:
		return "coeff-based"
	case ImplSmall:
		return "small"
	case ImplGemm:
		return "gemm"
	default:
		return "unknown"
	}
}

// SelectImpl returns the implementation used for a dense m x n x k product.
func SelectImpl(m, n, k int) ProductImpl {
	switch {
	case m == 0 || n == 0 || k == 0:
		return ImplNone
	case m == 1 && n == 1:
		return ImplInner
	case k == 1:
		return ImplOuter
	case m == 1 || n == 1:
		return ImplGemv
	case m+n+k < CoeffBasedThreshold:
		return ImplCoeffBased
	case m <= SmallDim && n <= SmallDim && k <= SmallDim:
		return ImplSmall
	default:
		return ImplGemm
	}
}

// Evaluate computes C += p.
func Evaluate[T hwy.Scalar](c dense.Tile[T], p Product[T], opts ...Option) error {
	a := p.A.WithConj(p.ConjA)
	b := p.B.WithConj(p.ConjB)
	switch {
	case p.Kind.IsTriangular():
		return Trmm(c, a, b, p.Alpha, dense.Mode{UpLo: p.Kind.UpLo(), Diag: p.Diag}, p.Side, opts...)
	case p.Kind.IsSelfAdjoint():
		return Symm(c, a, b, p.Alpha, p.Kind.UpLo(), p.Side, opts...)
	}

	o, err := buildOptions(opts)
	if err != nil {
		return err
	}
	if err := checkGemm("product", c, a, b); err != nil {
		return err
	}
	a = a.WithConj(o.conjA)
	b = b.WithConj(o.conjB)
	if p.Alpha == 0 {
		return nil
	}

	switch SelectImpl(c.Rows, c.Cols, a.Cols) {
	case ImplNone:
		return nil
	case ImplInner:
		innerProduct(c, a, b, p.Alpha)
		return nil
	case ImplOuter:
		return outerProduct(c, a, b, p.Alpha)
	case ImplGemv:
		return gemvProduct(c, a, b, p.Alpha, &o)
	case ImplCoeffBased:
		lazyProduct(c, a, b, p.Alpha)
		return nil
	case ImplSmall:
		smallProduct(c, a, b, p.Alpha)
		return nil
	default:
		return gemm(c, a, b, p.Alpha, &o)
	}
}

// Assign computes C = p, overwriting the previous contents of C.
func Assign[T hwy.Scalar](c dense.Tile[T], p Product[T], opts ...Option) error {
	if err := c.Check("product", "C"); err != nil {
		return err
	}
	c.Fill(0)
	return Evaluate(c, p, opts...)
}

// vectorOf returns the data, element count and increment of a tile with a
// single row or column.
func vectorOf[T hwy.Scalar](t dense.Tile[T]) (data []T, n, inc int) {
	if t.Rows == 1 {
		if t.Order == dense.RowMajor {
			return t.Data, t.Cols, t.Inc
		}
		return t.Data, t.Cols, t.Stride
	}
	if t.Order == dense.ColMajor {
		return t.Data, t.Rows, t.Inc
	}
	return t.Data, t.Rows, t.Stride
}

// innerProduct handles the 1 x 1 result of a row times a column.
func innerProduct[T hwy.Scalar](c, a, b dense.Tile[T], alpha T) {
	x, k, incX := vectorOf(a)
	y, _, incY := vectorOf(b)
	var s T
	switch {
	case !a.Conj && !b.Conj:
		s = dot.DotStrided(k, x, incX, y, incY, false)
	case a.Conj && !b.Conj:
		s = dot.DotStrided(k, x, incX, y, incY, true)
	case !a.Conj && b.Conj:
		s = dot.DotStrided(k, y, incY, x, incX, true)
	default:
		s = hwy.ConjOf(dot.DotStrided(k, x, incX, y, incY, false))
	}
	c.Data[0] += alpha * s
}

// materialize copies a vector-shaped tile into a unit-stride slice with
// conjugation applied.
func materialize[T hwy.Scalar](t dense.Tile[T]) []T {
	out := make([]T, t.Rows*t.Cols)
	if t.Rows == 1 {
		for j := range out {
			out[j] = t.At(0, j)
		}
		return out
	}
	for i := range out {
		out[i] = t.At(i, 0)
	}
	return out
}

// outerProduct handles k == 1 as a rank-1 update.
func outerProduct[T hwy.Scalar](c, a, b dense.Tile[T], alpha T) error {
	x := materialize(a)
	y := materialize(b)
	return matvec.Ger(c, alpha, x, 1, y, 1, false)
}

// gemvProduct handles a result with a single row or column. With a pool,
// tall products are split into row blocks.
func gemvProduct[T hwy.Scalar](c, a, b dense.Tile[T], alpha T, o *options) error {
	mat, vec := a, b
	if c.Cols != 1 {
		// c = a * b with c a row: c^T = b^T * a^T.
		c, mat, vec = c.T(), b.T(), a.T()
	}
	y, _, incY := vectorOf(c)
	x := materialize(vec)

	rows := mat.Rows
	if o.pool == nil || rows < minParallelGemvRows || o.parallel == parallelOff {
		return matvec.Gemv(y, incY, mat, x, 1, alpha)
	}
	errs := make([]error, rows)
	o.pool.ParallelFor(rows, func(start, end int) {
		block := mat.Slice(start, 0, end-start, mat.Cols)
		errs[start] = matvec.Gemv(y[start*incY:], incY, block, x, 1, alpha)
	})
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
