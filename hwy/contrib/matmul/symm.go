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

	"github.com/ajroetker/go-gemm/hwy"
	"github.com/ajroetker/go-gemm/hwy/contrib/dense"
)

// Symm computes C += alpha * S * B (side Left) or C += alpha * B * S (side
// Right), where S is the self-adjoint matrix defined by the uplo triangle of
// the structured operand (A for Left, B for Right). The opposite triangle is
// never read: it is taken as the conjugate mirror of the declared one, and
// the imaginary part of the diagonal is treated as zero.
//
// The product runs as two triangular passes, the declared triangle with
// its real diagonal and then the adjoint of its strict part.
func Symm[T hwy.Scalar](c, a, b dense.Tile[T], alpha T, uplo dense.UpLo, side dense.Side, opts ...Option) error {
	o, err := buildOptions(opts)
	if err != nil {
		return err
	}
	if err := checkGemm("symm", c, a, b); err != nil {
		return err
	}
	if uplo > dense.Upper || side > dense.Right {
		return dense.ModeError("symm", fmt.Sprintf("invalid mode %d on side %d", uplo, side))
	}
	s, arg := a, "A"
	if side == dense.Right {
		s, arg = b, "B"
	}
	if s.Rows != s.Cols {
		return dense.ShapeError("symm", arg, "cols", s.Cols, s.Rows)
	}
	a = a.WithConj(o.conjA)
	b = b.WithConj(o.conjB)

	if err := trmm(c, a, b, alpha, dense.Mode{UpLo: uplo, Diag: dense.NonUnit}, side, true, &o); err != nil {
		return err
	}
	strict := dense.Mode{UpLo: uplo.Flip(), Diag: dense.ZeroDiag}
	if side == dense.Left {
		return trmm(c, a.H(), b, alpha, strict, side, false, &o)
	}
	return trmm(c, a, b.H(), alpha, strict, side, false, &o)
}

// ExpandSelfAdjoint returns the full column-major matrix defined by the uplo
// triangle of the square tile s.
func ExpandSelfAdjoint[T hwy.Scalar](s dense.Tile[T], uplo dense.UpLo) dense.Tile[T] {
	n := s.Rows
	full := dense.NewColMajor[T](n, n)
	for j := range n {
		for i := range n {
			var v T
			switch {
			case i == j:
				v = hwy.FromReal[T](hwy.RealOf(s.At(i, i)))
			case (i > j) == (uplo == dense.Lower):
				v = s.At(i, j)
			default:
				v = hwy.ConjOf(s.At(j, i))
			}
			full.Data[j*n+i] = v
		}
	}
	return full
}
