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

package householder

import (
	"github.com/ajroetker/go-gemm/hwy"
	"github.com/ajroetker/go-gemm/hwy/contrib/dense"
)

// Sequence is the product Q = H_0 * H_1 * ... * H_{r-1} of reflectors held
// in packed storage, as left behind by the reductions of package decomp.
//
// Reflector k acts on coordinates [k+shift, size). Its essential part is
// stored below position k+shift of column k of the packed matrix, or, for a
// sequence stored by rows, right of position k+shift of row k; in that case
// the essential part is the conjugate of the stored row. H_k uses coeffs[k]
// as tau.
type Sequence[T hwy.Scalar] struct {
	vectors dense.Tile[T]
	coeffs  []T
	byRows  bool
	shift   int
	adjoint bool
}

// NewSequence returns the sequence of len(coeffs) reflectors stored in
// vectors.
func NewSequence[T hwy.Scalar](vectors dense.Tile[T], coeffs []T, byRows bool, shift int) Sequence[T] {
	return Sequence[T]{vectors: vectors, coeffs: coeffs, byRows: byRows, shift: shift}
}

// Len returns the number of reflectors.
func (s Sequence[T]) Len() int { return len(s.coeffs) }

// Size returns the order of the unitary matrix the sequence defines.
func (s Sequence[T]) Size() int {
	if s.byRows {
		return s.vectors.Cols
	}
	return s.vectors.Rows
}

// Adjoint returns the sequence of Q^H: the reflectors in reverse order with
// conjugated coefficients.
func (s Sequence[T]) Adjoint() Sequence[T] {
	s.adjoint = !s.adjoint
	return s
}

// Reflector returns reflector k of the sequence as stored, ignoring any
// adjoint flag, with the essential part copied out.
func (s Sequence[T]) Reflector(k int) Reflector[T] {
	start := k + s.shift
	n := max(s.Size()-start-1, 0)
	ess := make([]T, n)
	for i := range ess {
		if s.byRows {
			ess[i] = hwy.ConjOf(s.vectors.At(k, start+1+i))
		} else {
			ess[i] = s.vectors.At(start+1+i, k)
		}
	}
	return Reflector[T]{Essential: ess, Tau: s.coeffs[k]}
}

// ApplyOnTheLeft computes M <- Q*M, or M <- Q^H*M for an adjoint sequence.
func (s Sequence[T]) ApplyOnTheLeft(m dense.Tile[T]) error {
	size := s.Size()
	if m.Rows != size {
		return dense.ShapeError("householder.sequence", "M", "rows", m.Rows, size)
	}
	work := make([]T, m.Cols)
	r := s.Len()
	for step := range r {
		// Q*M applies H_{r-1} first; Q^H*M applies H_0^H first.
		k := r - 1 - step
		if s.adjoint {
			k = step
		}
		start := k + s.shift
		if start >= size {
			continue
		}
		h := s.Reflector(k)
		if s.adjoint {
			h = h.Adjoint()
		}
		if err := h.ApplyLeft(m.Slice(start, 0, size-start, m.Cols), work); err != nil {
			return err
		}
	}
	return nil
}

// ToDense returns Q (or Q^H) as a Size x Size column-major matrix.
//
// Without the adjoint flag the reflectors are applied in reverse order to
// an identity, each only to its trailing block: the leading columns of the
// partial product are still unit vectors the reflector cannot touch.
func (s Sequence[T]) ToDense() dense.Tile[T] {
	size := s.Size()
	q := dense.Identity[T](size)
	if s.adjoint {
		// Cannot fail: q has Size rows.
		_ = s.ApplyOnTheLeft(q)
		return q
	}
	work := make([]T, size)
	for k := s.Len() - 1; k >= 0; k-- {
		start := k + s.shift
		if start >= size {
			continue
		}
		block := q.Slice(start, start, size-start, size-start)
		_ = s.Reflector(k).ApplyLeft(block, work)
	}
	return q
}
