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

// Trmm computes C += alpha * tri(A) * B (side Left) or
// C += alpha * A * tri(B) (side Right), where tri reads only the triangle
// selected by mode.UpLo and takes the diagonal from mode.Diag.
//
// The triangular operand may be trapezoidal: a lower operand may have more
// rows than columns and an upper operand more columns than rows. The other
// non-square combinations are rejected with ErrUnsupportedMode.
func Trmm[T hwy.Scalar](c, a, b dense.Tile[T], alpha T, mode dense.Mode, side dense.Side, opts ...Option) error {
	o, err := buildOptions(opts)
	if err != nil {
		return err
	}
	if err := checkGemm("trmm", c, a, b); err != nil {
		return err
	}
	if err := checkTriangular("trmm", a, b, mode, side); err != nil {
		return err
	}
	return trmm(c, a.WithConj(o.conjA), b.WithConj(o.conjB), alpha, mode, side, false, &o)
}

func checkTriangular[T hwy.Scalar](op string, a, b dense.Tile[T], mode dense.Mode, side dense.Side) error {
	if mode.UpLo > dense.Upper || mode.Diag > dense.ZeroDiag || side > dense.Right {
		return dense.ModeError(op, fmt.Sprintf("invalid mode %d/%d on side %d", mode.UpLo, mode.Diag, side))
	}
	tri := a
	if side == dense.Right {
		tri = b
	}
	if mode.UpLo == dense.Lower && tri.Rows < tri.Cols {
		return dense.ModeError(op, fmt.Sprintf("lower triangular operand must not be wide, got %dx%d", tri.Rows, tri.Cols))
	}
	if mode.UpLo == dense.Upper && tri.Rows > tri.Cols {
		return dense.ModeError(op, fmt.Sprintf("upper triangular operand must not be tall, got %dx%d", tri.Rows, tri.Cols))
	}
	return nil
}

// trmm runs the triangular product on validated operands. With realDiag
// the imaginary part of the stored diagonal is dropped, as the self-adjoint
// driver requires.
func trmm[T hwy.Scalar](c, a, b dense.Tile[T], alpha T, mode dense.Mode, side dense.Side, realDiag bool, o *options) error {
	if c.Rows == 0 || c.Cols == 0 || a.Cols == 0 || alpha == 0 {
		return nil
	}
	// C^T = B^T * tri(A)^T moves the triangular operand to the other side
	// and flips its triangle.
	if c.Order == dense.RowMajor {
		c, a, b = c.T(), b.T(), a.T()
		side = side.Flip()
		mode = mode.Transposed()
	}
	h, err := handleFor[T](o, "trmm", c.Rows, c.Cols, a.Cols)
	if err != nil {
		return err
	}
	if side == dense.Left {
		trmmLeft(c, a, b, alpha, mode, realDiag, h.params)
	} else {
		trmmRight(c, a, b, alpha, mode, realDiag, h.params)
	}
	return nil
}

// triangularScratch returns the zeroed width x width buffer the diagonal
// blocks are copied into, with the diagonal preset for Unit mode.
func triangularScratch[T hwy.Scalar](width int, diag dense.Diag) dense.Tile[T] {
	tri := dense.NewColMajor[T](width, width)
	if diag == dense.Unit {
		for i := range width {
			tri.Data[i*width+i] = 1
		}
	}
	return tri
}

// diagonalEntry returns the diagonal value copied into the triangular
// scratch for NonUnit mode.
func diagonalEntry[T hwy.Scalar](v T, realDiag bool) T {
	if realDiag {
		return hwy.FromReal[T](hwy.RealOf(v))
	}
	return v
}

// trmmLeft computes C += alpha * tri(A) * B for a column-major C.
//
// The depth is tiled into kc strips. Within a strip the triangular operand
// splits into the zero part (skipped), diagonal blocks of SmallPanelWidth
// columns (copied to a zero-padded scratch triangle and packed as a dense
// tile) and the rectangle below (lower) or above (upper) the strip, which
// is a plain GEMM block. Lower operands walk the strips from the bottom.
func trmmLeft[T hwy.Scalar](c, a, b dense.Tile[T], alpha T, mode dense.Mode, realDiag bool, p CacheParams) {
	isLower := mode.UpLo == dense.Lower
	rows, depth, cols := a.Rows, a.Cols, b.Cols
	diagSize := min(rows, depth)
	if isLower {
		depth = diagSize
	} else {
		rows = diagSize
	}
	mr, nr := p.Mr, p.Nr
	kc := min(p.Kc, depth)
	mc := min(p.Mc, rows)
	panelWidth := min(p.SmallPanelWidth(), kc, max(mc, 1))

	kern := kernelFor[T](mr, nr)
	blockA := hwy.AlignedSlice[T](max(roundUp(mc, mr)*kc, roundUp(kc, mr)*panelWidth))
	blockB := hwy.AlignedSlice[T](roundUp(cols, nr) * kc)
	w := hwy.AlignedSlice[T](p.ScratchSize())
	tri := triangularScratch[T](panelWidth, mode.Diag)

	k2 := 0
	if isLower {
		k2 = depth
	}
	for (isLower && k2 > 0) || (!isLower && k2 < depth) {
		actualKc := min(depth-k2, kc)
		actualK2 := k2
		if isLower {
			actualKc = min(k2, kc)
			actualK2 = k2 - actualKc
		}
		// Align the strip with the end of the triangle of a trapezoidal
		// operand.
		if !isLower && actualK2 < rows && actualK2+actualKc > rows {
			actualKc = rows - actualK2
			k2 = actualK2 + actualKc - kc
		}

		packRHS(blockB, b, actualK2, 0, actualKc, cols, nr, alpha)

		// Diagonal blocks and the part of the strip next to them.
		if isLower || actualK2 < rows {
			for k1 := 0; k1 < actualKc; k1 += panelWidth {
				width := min(actualKc-k1, panelWidth)
				startBlock := actualK2 + k1
				lengthTarget := k1
				if isLower {
					lengthTarget = actualKc - k1 - width
				}

				for kk := range width {
					if mode.Diag == dense.NonUnit {
						tri.Data[kk*panelWidth+kk] = diagonalEntry(a.At(startBlock+kk, startBlock+kk), realDiag)
					}
					lo, hi := 0, kk
					if isLower {
						lo, hi = kk+1, width
					}
					for i := lo; i < hi; i++ {
						tri.Data[kk*panelWidth+i] = a.At(startBlock+i, startBlock+kk)
					}
				}
				packLHS(blockA, tri, 0, 0, width, width, mr, 1)
				gebp(c.Slice(startBlock, 0, width, cols), blockA, blockB, width, width, cols, width, actualKc, 0, k1, w, kern, mr, nr)

				if lengthTarget > 0 {
					startTarget := actualK2
					if isLower {
						startTarget = actualK2 + k1 + width
					}
					packLHS(blockA, a, startTarget, startBlock, lengthTarget, width, mr, 1)
					gebp(c.Slice(startTarget, 0, lengthTarget, cols), blockA, blockB, lengthTarget, width, cols, width, actualKc, 0, k1, w, kern, mr, nr)
				}
			}
		}

		// The dense rectangle below (lower) or above (upper) the strip.
		start, end := 0, min(actualK2, rows)
		if isLower {
			start, end = actualK2+actualKc, rows
		}
		for i2 := start; i2 < end; i2 += mc {
			actualMc := min(i2+mc, end) - i2
			packLHS(blockA, a, i2, actualK2, actualMc, actualKc, mr, 1)
			gebp(c.Slice(i2, 0, actualMc, cols), blockA, blockB, actualMc, actualKc, cols, -1, -1, 0, 0, w, kern, mr, nr)
		}

		if isLower {
			k2 -= kc
		} else {
			k2 += kc
		}
	}
}

// trmmRight computes C += alpha * A * tri(B) for a column-major C.
//
// Each kc strip of B rows is packed in two parts: the dense columns left
// (lower) or right (upper) of the strip's triangle, and the triangle itself
// as SmallPanelWidth-wide column panels whose diagonal blocks go through the
// scratch triangle. The triangle panels are multiplied with positive gebp
// strides so each panel only reads the depth rows it covers.
func trmmRight[T hwy.Scalar](c, a, b dense.Tile[T], alpha T, mode dense.Mode, realDiag bool, p CacheParams) {
	isLower := mode.UpLo == dense.Lower
	rows, depth, cols := a.Rows, b.Rows, b.Cols
	diagSize := min(cols, depth)
	if isLower {
		cols = diagSize
	} else {
		depth = diagSize
	}
	mr, nr := p.Mr, p.Nr
	kc := min(p.Kc, depth)
	mc := min(p.Mc, rows)
	panelWidth := p.SmallPanelWidth()

	kern := kernelFor[T](mr, nr)
	blockA := hwy.AlignedSlice[T](roundUp(mc, mr) * kc)
	blockTri := hwy.AlignedSlice[T](roundUp(kc, panelWidth) * kc)
	blockGeb := hwy.AlignedSlice[T](roundUp(b.Cols, nr) * kc)
	w := hwy.AlignedSlice[T](p.ScratchSize())
	tri := triangularScratch[T](panelWidth, mode.Diag)

	k2 := depth
	if isLower {
		k2 = 0
	}
	for (isLower && k2 < depth) || (!isLower && k2 > 0) {
		actualKc := min(k2, kc)
		actualK2 := k2 - actualKc
		if isLower {
			actualKc = min(depth-k2, kc)
			actualK2 = k2
		}
		// Align the strip with the end of the triangle of a trapezoidal
		// operand.
		if isLower && k2 < cols && actualK2+actualKc > cols {
			actualKc = cols - k2
			k2 = actualK2 + actualKc - kc
		}

		// rs dense columns start at gebCol; ts is the triangle's extent.
		rs, gebCol := cols-k2, k2
		if isLower {
			rs, gebCol = min(cols, actualK2), 0
		}
		ts := actualKc
		if isLower && actualK2 >= cols {
			ts = 0
		}

		if rs > 0 {
			packRHS(blockGeb, b, actualK2, gebCol, actualKc, rs, nr, alpha)
		}
		if ts > 0 {
			for j2 := 0; j2 < actualKc; j2 += panelWidth {
				width := min(actualKc-j2, panelWidth)
				actualJ2 := actualK2 + j2
				panelOffset, panelLength := 0, j2
				if isLower {
					panelOffset, panelLength = j2+width, actualKc-j2-width
				}
				dst := blockTri[j2*actualKc:]
				if panelLength > 0 {
					packRHSPanel(dst, b, actualK2+panelOffset, actualJ2, panelLength, width, nr, alpha, actualKc, panelOffset)
				}

				for j := range width {
					if mode.Diag == dense.NonUnit {
						tri.Data[j*panelWidth+j] = diagonalEntry(b.At(actualJ2+j, actualJ2+j), realDiag)
					}
					lo, hi := 0, j
					if isLower {
						lo, hi = j+1, width
					}
					for kk := lo; kk < hi; kk++ {
						tri.Data[j*panelWidth+kk] = b.At(actualJ2+kk, actualJ2+j)
					}
				}
				packRHSPanel(dst, tri, 0, 0, width, width, nr, alpha, actualKc, j2)
			}
		}

		for i2 := 0; i2 < rows; i2 += mc {
			actualMc := min(mc, rows-i2)
			packLHS(blockA, a, i2, actualK2, actualMc, actualKc, mr, 1)

			if ts > 0 {
				for j2 := 0; j2 < actualKc; j2 += panelWidth {
					width := min(actualKc-j2, panelWidth)
					panelLength, blockOffset := j2+width, 0
					if isLower {
						panelLength, blockOffset = actualKc-j2, j2
					}
					gebp(c.Slice(i2, actualK2+j2, actualMc, width), blockA, blockTri[j2*actualKc:], actualMc, panelLength, width,
						actualKc, actualKc, blockOffset, blockOffset, w, kern, mr, nr)
				}
			}
			if rs > 0 {
				gebp(c.Slice(i2, gebCol, actualMc, rs), blockA, blockGeb, actualMc, actualKc, rs, -1, -1, 0, 0, w, kern, mr, nr)
			}
		}

		if isLower {
			k2 += kc
		} else {
			k2 -= kc
		}
	}
}
