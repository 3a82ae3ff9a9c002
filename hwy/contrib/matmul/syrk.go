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

// RankUpdate computes C += alpha * A * A^H, writing only the uplo triangle of
// the square C. The other triangle is left untouched.
//
// C is processed in column blocks: blocks off the diagonal are plain GEMM
// products with B = A^H, and each diagonal block is computed into a scratch
// block whose declared triangle is then added to C.
func RankUpdate[T hwy.Scalar](c, a dense.Tile[T], alpha T, uplo dense.UpLo, opts ...Option) error {
	o, err := buildOptions(opts)
	if err != nil {
		return err
	}
	if err := a.Check("rankupdate", "A"); err != nil {
		return err
	}
	if err := c.Check("rankupdate", "C"); err != nil {
		return err
	}
	if c.Cols != c.Rows {
		return dense.ShapeError("rankupdate", "C", "cols", c.Cols, c.Rows)
	}
	if a.Rows != c.Rows {
		return dense.ShapeError("rankupdate", "A", "rows", a.Rows, c.Rows)
	}
	if c.Conj {
		return dense.ModeError("rankupdate", "destination must not be a conjugated view")
	}
	if uplo > dense.Upper {
		return dense.ModeError("rankupdate", fmt.Sprintf("invalid triangle %d", uplo))
	}

	n, k := c.Rows, a.Cols
	if n == 0 || k == 0 || alpha == 0 {
		return nil
	}
	a = a.WithConj(o.conjA)
	ah := a.H()

	p := BlockingFor[T](o.cfg, n, n, k)
	nb := max(p.Mc, p.SmallPanelWidth())
	nb = min(nb, n)
	scratch := dense.NewColMajor[T](nb, nb)

	for j0 := 0; j0 < n; j0 += nb {
		bs := min(nb, n-j0)

		blk := scratch.Slice(0, 0, bs, bs)
		blk.Fill(0)
		if err := gemm(blk, a.Slice(j0, 0, bs, k), ah.Slice(0, j0, k, bs), alpha, &o); err != nil {
			return err
		}
		for j := range bs {
			lo, hi := j, bs
			if uplo == dense.Upper {
				lo, hi = 0, j+1
			}
			for i := lo; i < hi; i++ {
				c.Data[c.Index(j0+i, j0+j)] += blk.Data[j*nb+i]
			}
		}

		var err error
		switch {
		case uplo == dense.Lower && j0+bs < n:
			rest := n - j0 - bs
			err = gemm(c.Slice(j0+bs, j0, rest, bs), a.Slice(j0+bs, 0, rest, k), ah.Slice(0, j0, k, bs), alpha, &o)
		case uplo == dense.Upper && j0 > 0:
			err = gemm(c.Slice(0, j0, j0, bs), a.Slice(0, 0, j0, k), ah.Slice(0, j0, k, bs), alpha, &o)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
