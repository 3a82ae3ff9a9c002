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

// Package householder builds and applies elementary reflectors
//
//	H = I - tau * v * v^H,  v = (1, essential)
//
// chosen so that H*x = mu*e1 for a given vector x, with mu real. The
// reflector is kept in compact form: the essential part of v and the
// coefficient tau. For real data tau is real and H is symmetric and
// involutory; for complex data H is unitary and H^H = I - conj(tau)*v*v^H.
//
// ApplyLeft and ApplyRight update a block with one reflector through the
// GEMV and rank-1 kernels of package matvec. A Sequence holds the
// reflectors of a factorization in packed storage and reconstructs the
// unitary factor they define.
package householder
