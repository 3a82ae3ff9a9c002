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

// Package matvec provides matrix-vector operations on dense tiles.
//
// # Operations
//
//   - Gemv(y, incY, A, x, incX, alpha) - y += alpha*op(A)*x on a Tile
//   - Ger(A, alpha, x, incX, y, incY, conjY) - A += alpha*x*op(y)^T
//
// Gemv and Ger are the matrix-vector shapes of the product dispatcher and
// the workhorses of Householder reflector application.
//
// # Algorithm
//
// For a row-major A each output element is an inner product of one row
// with x. For a column-major A the product sweeps columns, adding
// alpha*x[j] times column j into y with packet-wide multiply-adds.
//
// # Example Usage
//
//	import "github.com/ajroetker/go-gemm/hwy/contrib/matvec"
//
//	a := dense.FromRows([][]float32{
//	    {1, 2, 3, 4},
//	    {5, 6, 7, 8},
//	    {9, 0, 1, 2},
//	})
//	x := []float32{1, 2, 3, 4}
//	y := make([]float32, 3)
//
//	_ = matvec.Gemv(y, 1, a, x, 1, 1)
//	// y = [30, 70, 20]
package matvec
