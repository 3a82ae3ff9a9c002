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

// Package matmul provides blocked, packed matrix products on dense tiles:
// the general product (Gemm), triangular products (Trmm), self-adjoint
// products (Symm) and the self-adjoint rank update (RankUpdate).
//
// Example usage:
//
//	// C += A * B where A is MxK, B is KxN, C is MxN
//	a := dense.NewColMajor[float64](M, K)
//	b := dense.NewColMajor[float64](K, N)
//	c := dense.NewColMajor[float64](M, N)
//
//	if err := matmul.Gemm(c, a, b, 1); err != nil {
//	    return err
//	}
//
// Gemm follows the GotoBLAS 5-loop algorithm: B is packed into Kc x Nc
// panels of Nr-column micro-panels, A into Mc x Kc blocks of Mr-row
// micro-panels, and a register-tile micro-kernel multiplies one micro-panel
// pair at a time. Block sizes come from the cache sizes in Config. Large
// products are split by rows across a gang of workers that share the packed
// B panel.
//
// Evaluate dispatches a Product descriptor by shape: inner and outer
// products, matrix-vector products, small products evaluated coefficient by
// coefficient or with fixed-size buffers, and Gemm for everything else.
package matmul
