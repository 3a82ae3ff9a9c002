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

//go:generate go run ../../../cmd/kernelgen gen --out kernel_gen.go --shapes 4x8:float32,float64 --shapes 4x4:complex64,complex128

import (
	"github.com/ajroetker/go-gemm/hwy"
	"github.com/ajroetker/go-gemm/hwy/contrib/dense"
)

// microKernel computes one mr x nr register tile of packedA * packedB over
// depth kc and stores it row-major into w (w[r*nr+c]). The previous contents
// of w are overwritten.
//
//   - packedA: one micro-panel, laid out [kc, mr]
//   - packedB: one micro-panel, laid out [kc, nr]
type microKernel[T hwy.Scalar] func(packedA, packedB []T, kc int, w []T)

// kernelFor returns the micro-kernel for an mr x nr tile of T. The
// generated straight-line kernels cover the default register tiles; any
// other shape uses the generic loop kernel.
func kernelFor[T hwy.Scalar](mr, nr int) microKernel[T] {
	var k any
	var zero T
	switch any(zero).(type) {
	case float32:
		if mr == 4 && nr == 2*hwy.Lanes {
			k = microKernel[float32](kernel4x8Float32)
		}
	case float64:
		if mr == 4 && nr == 2*hwy.Lanes {
			k = microKernel[float64](kernel4x8Float64)
		}
	case complex64:
		if mr == 4 && nr == hwy.Lanes {
			k = microKernel[complex64](kernel4x4Complex64)
		}
	case complex128:
		if mr == 4 && nr == hwy.Lanes {
			k = microKernel[complex128](kernel4x4Complex128)
		}
	}
	if fn, ok := k.(microKernel[T]); ok {
		return fn
	}
	return func(packedA, packedB []T, kc int, w []T) {
		genericKernel(packedA, packedB, kc, mr, nr, w)
	}
}

// genericKernel handles arbitrary micro-tile sizes, one packet of columns
// at a time with a scalar column tail.
func genericKernel[T hwy.Scalar](packedA, packedB []T, kc, mr, nr int, w []T) {
	for r := range mr {
		row := w[r*nr : (r+1)*nr]
		var col int
		for col = 0; col+hwy.Lanes <= nr; col += hwy.Lanes {
			acc := hwy.Zero[T]()
			for p := range kc {
				vA := hwy.Set(packedA[p*mr+r])
				vB := hwy.Load(packedB[p*nr+col:])
				acc = hwy.MulAdd(vA, vB, acc)
			}
			hwy.Store(acc, row[col:])
		}
		for ; col < nr; col++ {
			var sum T
			for p := range kc {
				sum += packedA[p*mr+r] * packedB[p*nr+col]
			}
			row[col] = sum
		}
	}
}

// gebp performs the GEBP (GEneral Block Panel) multiplication
//
//	C[0:mc, 0:nc] += packedA * packedB
//
// where c is a view of the destination block. packedA holds ceil(mc/mr)
// micro-panels and packedB ceil(nc/nr) micro-panels; the product runs over
// depth steps of each.
//
// strideA and strideB are the depth strides of the packed micro-panels and
// offsetA and offsetB the depth offset where the product starts. A negative
// stride selects the plain packed layout (stride = depth, offset = 0). The
// triangular drivers use explicit strides to multiply sub-panels of a
// packed block.
func gebp[T hwy.Scalar](c dense.Tile[T], packedA, packedB []T, mc, depth, nc, strideA, strideB, offsetA, offsetB int, w []T, kern microKernel[T], mr, nr int) {
	if strideA < 0 {
		strideA, offsetA = depth, 0
	}
	if strideB < 0 {
		strideB, offsetB = depth, 0
	}
	numPanelsA := (mc + mr - 1) / mr
	numPanelsB := (nc + nr - 1) / nr

	// Loop 2: micro-tile columns
	for jp := range numPanelsB {
		jr := jp * nr
		cols := min(nr, nc-jr)
		pb := packedB[jp*strideB*nr+offsetB*nr:]

		// Loop 1: micro-tile rows
		for ip := range numPanelsA {
			ir := ip * mr
			rows := min(mr, mc-ir)
			pa := packedA[ip*strideA*mr+offsetA*mr:]

			kern(pa, pb, depth, w)
			addTile(c, ir, jr, rows, cols, w, nr)
		}
	}
}

// addTile accumulates the active rows x cols corner of the row-major
// scratch tile w into c at (ir, jr).
func addTile[T hwy.Scalar](c dense.Tile[T], ir, jr, rows, cols int, w []T, nr int) {
	if c.Order == dense.ColMajor && c.Inc == 1 {
		for j := range cols {
			dst := c.Data[(jr+j)*c.Stride+ir:]
			for i := range rows {
				dst[i] += w[i*nr+j]
			}
		}
		return
	}
	for i := range rows {
		for j := range cols {
			c.Data[c.Index(ir+i, jr+j)] += w[i*nr+j]
		}
	}
}
