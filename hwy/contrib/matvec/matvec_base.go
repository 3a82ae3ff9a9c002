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

package matvec

import (
	"github.com/ajroetker/go-gemm/hwy"
	"github.com/ajroetker/go-gemm/hwy/contrib/dense"
	"github.com/ajroetker/go-gemm/hwy/contrib/dot"
)

// Gemv computes y <- y + alpha*A*x where A is read through its conjugation
// flag. x and y are strided vectors of length A.Cols and A.Rows.
func Gemv[T hwy.Scalar](y []T, incY int, a dense.Tile[T], x []T, incX int, alpha T) error {
	if err := a.Check("gemv", "A"); err != nil {
		return err
	}
	if err := checkVector("gemv", "x", x, incX, a.Cols); err != nil {
		return err
	}
	if err := checkVector("gemv", "y", y, incY, a.Rows); err != nil {
		return err
	}
	if a.IsEmpty() || alpha == 0 {
		return nil
	}

	switch {
	case a.Order == dense.RowMajor:
		// Row i of A is a strided vector; one inner product per output.
		for i := range a.Rows {
			row := a.Data[i*a.Stride:]
			y[i*incY] += alpha * dot.DotStrided(a.Cols, row, a.Inc, x, incX, a.Conj)
		}
	case a.Inc == 1 && incY == 1 && !a.Conj:
		// Column sweep: y += (alpha*x[j]) * A[:,j].
		for j := range a.Cols {
			s := alpha * x[j*incX]
			if s == 0 {
				continue
			}
			hwy.AxpyInPlace(y[:a.Rows], s, a.Data[j*a.Stride:j*a.Stride+a.Rows])
		}
	default:
		for j := range a.Cols {
			s := alpha * x[j*incX]
			if s == 0 {
				continue
			}
			for i := range a.Rows {
				y[i*incY] += s * a.At(i, j)
			}
		}
	}
	return nil
}

// Ger computes the rank-1 update A <- A + alpha*x*op(y)^T, where op
// conjugates y when conjY is set. A must not be a conjugated view.
func Ger[T hwy.Scalar](a dense.Tile[T], alpha T, x []T, incX int, y []T, incY int, conjY bool) error {
	if err := a.Check("ger", "A"); err != nil {
		return err
	}
	if a.Conj {
		return dense.ModeError("ger", "destination cannot be a conjugated view")
	}
	if err := checkVector("ger", "x", x, incX, a.Rows); err != nil {
		return err
	}
	if err := checkVector("ger", "y", y, incY, a.Cols); err != nil {
		return err
	}
	if a.IsEmpty() || alpha == 0 {
		return nil
	}
	conj := conjY && hwy.IsComplex[T]()

	if a.Order == dense.ColMajor && a.Inc == 1 && incX == 1 {
		for j := range a.Cols {
			yj := y[j*incY]
			if conj {
				yj = hwy.ConjOf(yj)
			}
			if yj == 0 {
				continue
			}
			col := a.Data[j*a.Stride : j*a.Stride+a.Rows]
			hwy.AxpyInPlace(col, alpha*yj, x[:a.Rows])
		}
		return nil
	}
	if a.Order == dense.RowMajor && a.Inc == 1 && incY == 1 && !conj {
		for i := range a.Rows {
			s := alpha * x[i*incX]
			if s == 0 {
				continue
			}
			row := a.Data[i*a.Stride : i*a.Stride+a.Cols]
			hwy.AxpyInPlace(row, s, y[:a.Cols])
		}
		return nil
	}
	for j := range a.Cols {
		yj := y[j*incY]
		if conj {
			yj = hwy.ConjOf(yj)
		}
		s := alpha * yj
		for i := range a.Rows {
			a.Data[a.Index(i, j)] += x[i*incX] * s
		}
	}
	return nil
}

func checkVector[T hwy.Scalar](op, arg string, v []T, inc, n int) error {
	if inc < 1 {
		return &dense.Error{Kind: dense.KindBadTile, Op: op, Arg: arg, Dim: "inc", Got: inc, Want: 1}
	}
	if n > 0 && (n-1)*inc >= len(v) {
		return dense.ShapeError(op, arg, "length", len(v), (n-1)*inc+1)
	}
	return nil
}
