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

// Package decomp reduces dense matrices to condensed forms with Householder
// reflectors, as the first stage of eigenvalue and singular value solvers:
//
//   - Tridiagonalization: A = Q * T * Q^H for self-adjoint A, with T real
//     symmetric tridiagonal.
//   - UpperBidiagonalization: A = U * B * V^H for m x n A with m >= n, with
//     B real upper bidiagonal.
//
// A decomposition object is created empty and becomes usable after
// Compute. Calling Compute again with a matrix of the same shape reuses
// the object's storage. Operations that need a factorization return
// dense.ErrNotInitialized when called before Compute.
//
// The trailing updates run through the blocked products of package matmul
// and the reflector kernels of package householder.
//
// Example:
//
//	var tr decomp.Tridiagonalization[float64]
//	if err := tr.Compute(a); err != nil {
//	    return err
//	}
//	q, err := tr.MatrixQ()
package decomp
