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
)

// packLHS packs a block of the LHS matrix (A) into a cache-friendly layout.
//
// It packs rows [i0, i0+mc) and columns [k0, k0+kc) of a. The packed layout
// is organized as micro-panels of mr rows each:
//   - For each micro-panel i (rows i*mr to (i+1)*mr):
//   - For each k in [0, kc):
//   - Store A[i0+i*mr+0, k0+k], ..., A[i0+i*mr+mr-1, k0+k]
//
// This gives memory layout: [num_micro_panels, kc, mr] where
// num_micro_panels = ceil(mc/mr). The last micro-panel is zero-padded so the
// micro-kernel never needs a row fringe.
//
// Reads honor a.Conj, and every packed value is multiplied by alpha.
// Returns the number of active rows in the last micro-panel (may be < mr).
func packLHS[T hwy.Scalar](dst []T, a dense.Tile[T], i0, k0, mc, kc, mr int, alpha T) int {
	numMicroPanels := (mc + mr - 1) / mr
	activeRowsLast := mc - (numMicroPanels-1)*mr

	packIdx := 0
	for panel := range numMicroPanels {
		baseRow := i0 + panel*mr
		rows := mr
		if panel == numMicroPanels-1 {
			rows = activeRowsLast
		}
		out := dst[packIdx : packIdx+kc*mr]
		switch {
		case a.IsContiguousColMajor():
			// Each k holds mr consecutive elements of one column.
			for kk := range kc {
				src := a.Data[(k0+kk)*a.Stride+baseRow:]
				copy(out[kk*mr:kk*mr+rows], src[:rows])
				clear(out[kk*mr+rows : (kk+1)*mr])
			}
		case a.IsContiguousRowMajor():
			// Walk each row once and scatter it across the k slots.
			for r := range rows {
				src := a.Data[(baseRow+r)*a.Stride+k0:]
				for kk, v := range src[:kc] {
					out[kk*mr+r] = v
				}
			}
			for kk := range kc {
				clear(out[kk*mr+rows : (kk+1)*mr])
			}
		default:
			for kk := range kc {
				for r := range rows {
					out[kk*mr+r] = a.Data[a.Index(baseRow+r, k0+kk)]
				}
				clear(out[kk*mr+rows : (kk+1)*mr])
			}
		}
		packIdx += kc * mr
	}

	finishPack(dst[:packIdx], a.Conj, alpha)
	return activeRowsLast
}

// packRHS packs a block of the RHS matrix (B) into a cache-friendly layout.
//
// It packs rows [k0, k0+kc) and columns [j0, j0+nc) of b as micro-panels of
// nr columns each, with memory layout [num_micro_panels, kc, nr]. The last
// micro-panel is zero-padded to nr columns.
//
// Reads honor b.Conj, and every packed value is multiplied by alpha.
// Returns the number of active columns in the last micro-panel.
func packRHS[T hwy.Scalar](dst []T, b dense.Tile[T], k0, j0, kc, nc, nr int, alpha T) int {
	return packRHSPanel(dst, b, k0, j0, kc, nc, nr, alpha, kc, 0)
}

// packRHSPanel is the panel variant of packRHS used by the triangular
// drivers. Micro-panels are laid out with a depth stride of stride rows, and
// the depth rows of b are written at rows [offset, offset+depth) of each
// micro-panel. Rows outside that range are left untouched, so several calls
// can fill one panel piece by piece. Columns beyond nc are zero-padded.
func packRHSPanel[T hwy.Scalar](dst []T, b dense.Tile[T], k0, j0, depth, nc, nr int, alpha T, stride, offset int) int {
	numMicroPanels := (nc + nr - 1) / nr
	activeColsLast := nc - (numMicroPanels-1)*nr

	for panel := range numMicroPanels {
		baseCol := j0 + panel*nr
		cols := nr
		if panel == numMicroPanels-1 {
			cols = activeColsLast
		}
		start := panel*stride*nr + offset*nr
		out := dst[start : start+depth*nr]
		switch {
		case b.IsContiguousRowMajor():
			// Each k holds nr consecutive elements of one row.
			for kk := range depth {
				src := b.Data[(k0+kk)*b.Stride+baseCol:]
				copy(out[kk*nr:kk*nr+cols], src[:cols])
				clear(out[kk*nr+cols : (kk+1)*nr])
			}
		case b.IsContiguousColMajor():
			for c := range cols {
				src := b.Data[(baseCol+c)*b.Stride+k0:]
				for kk, v := range src[:depth] {
					out[kk*nr+c] = v
				}
			}
			for kk := range depth {
				clear(out[kk*nr+cols : (kk+1)*nr])
			}
		default:
			for kk := range depth {
				for c := range cols {
					out[kk*nr+c] = b.Data[b.Index(k0+kk, baseCol+c)]
				}
				clear(out[kk*nr+cols : (kk+1)*nr])
			}
		}
		finishPack(out, b.Conj, alpha)
	}
	return activeColsLast
}

// finishPack applies conjugation and the scalar factor to packed values, in
// that order, so that alpha*conj(x) is stored.
func finishPack[T hwy.Scalar](packed []T, conj bool, alpha T) {
	if conj {
		hwy.ConjInPlace(packed)
	}
	hwy.ScaleInPlace(packed, alpha)
}

// absorbAlphaOnLHS reports whether alpha should be applied while packing
// the LHS. Alpha goes to the side with the smaller packet count, so the
// scaling pass touches the cheaper operand; ties go to the RHS.
func absorbAlphaOnLHS(lhsPackets, rhsPackets int) bool {
	return lhsPackets < rhsPackets
}

// splitAlpha returns the factors applied by the LHS and RHS packers.
func splitAlpha[T hwy.Scalar](alpha T) (alphaL, alphaR T) {
	p := hwy.PacketsPerRegister[T]()
	if absorbAlphaOnLHS(p, p) {
		return alpha, 1
	}
	return 1, alpha
}
