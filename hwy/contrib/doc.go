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

// Package contrib groups the dense linear-algebra kernels built on the hwy
// packet layer.
//
// # Subpackages
//
//   - dense: strided matrix views (Tile), triangular and side modes, errors
//   - dot: strided and batched dot products
//   - matvec: matrix-vector product and rank-1 update
//   - matmul: GEMM, TRMM, self-adjoint product and rank update
//   - householder: elementary reflectors and reflector sequences
//   - decomp: tridiagonalization and upper bidiagonalization
//   - workerpool: persistent workers for the parallel GEMM driver
//
// # Example
//
//	import (
//	    "github.com/ajroetker/go-gemm/hwy/contrib/dense"
//	    "github.com/ajroetker/go-gemm/hwy/contrib/matmul"
//	)
//
//	a := dense.FromRows([][]float64{{1, 2}, {3, 4}})
//	b := dense.FromRows([][]float64{{5, 6}, {7, 8}})
//	c := dense.NewColMajor[float64](2, 2)
//	_ = matmul.Gemm(c, a, b, 1) // c = [[19 22] [43 50]]
//
// All entry points accumulate into the destination and report problems as
// errors wrapping the sentinels in package dense.
package contrib
