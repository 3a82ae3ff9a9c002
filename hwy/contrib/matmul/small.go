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

const (
	// CoeffBasedThreshold is the m+n+k below which products are evaluated
	// coefficient by coefficient, without packing.
	CoeffBasedThreshold = 20

	// SmallDim bounds every dimension of the fixed-size path.
	SmallDim = 16

	smallPackedLen  = SmallDim * SmallDim
	smallScratchLen = 4 * 2 * hwy.Lanes
)

// lazyProduct computes C += alpha * A * B with one dot product per
// coefficient.
func lazyProduct[T hwy.Scalar](c, a, b dense.Tile[T], alpha T) {
	m, n, k := c.Rows, c.Cols, a.Cols
	for j := range n {
		for i := range m {
			var sum T
			for p := range k {
				sum += a.At(i, p) * b.At(p, j)
			}
			c.Data[c.Index(i, j)] += alpha * sum
		}
	}
}

// smallProduct computes C += alpha * A * B for products whose dimensions
// are all at most SmallDim. The packed panels live in fixed-size arrays,
// so no planning or allocation takes place.
func smallProduct[T hwy.Scalar](c, a, b dense.Tile[T], alpha T) {
	m, n, k := c.Rows, c.Cols, a.Cols
	mr, nr := RegisterTile[T]()

	var packedA, packedB [smallPackedLen]T
	var w [smallScratchLen]T

	alphaL, alphaR := splitAlpha(alpha)
	packLHS(packedA[:], a, 0, 0, m, k, mr, alphaL)
	packRHS(packedB[:], b, 0, 0, k, n, nr, alphaR)
	gebp(c, packedA[:], packedB[:], m, k, n, -1, -1, 0, 0, w[:], kernelFor[T](mr, nr), mr, nr)
}
