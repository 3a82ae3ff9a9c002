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
	"math"

	"github.com/ajroetker/go-gemm/hwy"
	"github.com/ajroetker/go-gemm/hwy/contrib/dense"
	"github.com/ajroetker/go-gemm/hwy/contrib/dot"
	"github.com/ajroetker/go-gemm/hwy/contrib/matvec"
)

// Reflector is H = I - Tau * v * v^H with v = (1, Essential). Beta is the
// value mu of H*x = mu*e1 for the vector the reflector was built from.
type Reflector[T hwy.Scalar] struct {
	Essential []T
	Tau       T
	Beta      float64
}

// IsIdentity reports whether the reflector leaves every vector unchanged.
func (r Reflector[T]) IsIdentity() bool {
	return r.Tau == 0
}

// ApplyLeft computes B <- H*B.
func (r Reflector[T]) ApplyLeft(b dense.Tile[T], work []T) error {
	return ApplyLeft(b, r.Essential, 1, r.Tau, work)
}

// ApplyRight computes B <- B*(I - Tau*conj(v)*v^T).
func (r Reflector[T]) ApplyRight(b dense.Tile[T], work []T) error {
	return ApplyRight(b, r.Essential, 1, r.Tau, work)
}

// Adjoint returns H^H.
func (r Reflector[T]) Adjoint() Reflector[T] {
	r.Tau = hwy.ConjOf(r.Tau)
	return r
}

// Make builds the reflector of the strided vector x without modifying it.
// The vector has elements x[0], x[inc], ... up to the end of the slice.
func Make[T hwy.Scalar](x []T, inc int) (Reflector[T], error) {
	if inc < 1 {
		return Reflector[T]{}, &dense.Error{Kind: dense.KindBadTile, Op: "householder", Arg: "x", Dim: "inc", Got: inc, Want: 1}
	}
	n := vectorLen(x, inc)
	if n == 0 {
		return Reflector[T]{}, dense.ShapeError("householder", "x", "length", 0, 1)
	}
	v := make([]T, n)
	for i := range n {
		v[i] = x[i*inc]
	}
	tau, beta := MakeInPlace(v, 1)
	return Reflector[T]{Essential: v[1:], Tau: tau, Beta: beta}, nil
}

// MakeInPlace builds the reflector of the strided vector x and overwrites
// x[0] with mu and the tail with the essential part. It returns tau and mu.
//
// When the tail is negligible against x[0] (||tail|| <= eps*|x[0]|) and
// x[0] is real, the reflector is the identity: tau = 0, mu = x[0] and the
// tail is zeroed. Otherwise mu = -sign(Re x[0]) * ||x||, the essential part
// is tail/(x[0]-mu) and tau = conj((mu-x[0])/mu).
func MakeInPlace[T hwy.Scalar](x []T, inc int) (tau T, beta float64) {
	n := vectorLen(x, inc)
	if n == 0 {
		return 0, 0
	}
	x0 := x[0]
	var tailSq float64
	if n > 1 {
		tailSq = dot.SquaredNormStrided(n-1, x[inc:], inc)
	}
	x0Sq := hwy.Abs2(x0)
	eps := hwy.Epsilon[T]()

	// The tail is below eps relative to x0, so dropping it is invisible in
	// beta at any scale of x.
	if tailSq <= eps*eps*x0Sq && hwy.ImagOf(x0) == 0 {
		for i := 1; i < n; i++ {
			x[i*inc] = 0
		}
		return 0, hwy.RealOf(x0)
	}

	beta = math.Sqrt(x0Sq + tailSq)
	if hwy.RealOf(x0) >= 0 {
		beta = -beta
	}
	mu := hwy.FromReal[T](beta)
	scale := 1 / (x0 - mu)
	for i := 1; i < n; i++ {
		x[i*inc] *= scale
	}
	x[0] = mu
	return hwy.ConjOf((mu - x0) / mu), beta
}

// ApplyLeft computes B <- (I - tau*v*v^H)*B with v = (1, essential), where
// essential is strided by incE and has B.Rows-1 elements:
//
//	t = B[0,:] + essential^H * B[1:,:]
//	B[0,:]  -= tau * t
//	B[1:,:] -= tau * essential * t
//
// work holds t and is reallocated when shorter than B.Cols.
func ApplyLeft[T hwy.Scalar](b dense.Tile[T], essential []T, incE int, tau T, work []T) error {
	if err := checkTarget("householder.left", b); err != nil {
		return err
	}
	if b.IsEmpty() || tau == 0 {
		return nil
	}
	if b.Rows == 1 {
		scaleRow(b, 0, 1-tau)
		return nil
	}
	if len(work) < b.Cols {
		work = make([]T, b.Cols)
	}
	t := work[:b.Cols]
	for j := range t {
		t[j] = hwy.ConjOf(b.At(0, j))
	}
	bottom := b.Slice(1, 0, b.Rows-1, b.Cols)
	// conj(t) = conj(B[0,:])^T + B[1:,:]^H * essential.
	if err := matvec.Gemv(t, 1, bottom.H(), essential, incE, 1); err != nil {
		return err
	}
	hwy.ConjInPlace(t)

	for j, v := range t {
		b.Data[b.Index(0, j)] -= tau * v
	}
	return matvec.Ger(bottom, -tau, essential, incE, t, 1, false)
}

// ApplyRight computes B <- B*(I - tau*conj(v)*v^T) with v = (1, essential),
// where essential is strided by incE and has B.Cols-1 elements:
//
//	t = B[:,0] + B[:,1:] * conj(essential)
//	B[:,0]  -= tau * t
//	B[:,1:] -= tau * t * essential^T
//
// Applied to a row vector x built with MakeInPlace from the same x, the
// result is mu*e1^T. work holds t and is reallocated when shorter than
// B.Rows.
func ApplyRight[T hwy.Scalar](b dense.Tile[T], essential []T, incE int, tau T, work []T) error {
	if err := checkTarget("householder.right", b); err != nil {
		return err
	}
	if b.IsEmpty() || tau == 0 {
		return nil
	}
	if b.Cols == 1 {
		scaleCol(b, 0, 1-tau)
		return nil
	}
	if len(work) < b.Rows {
		work = make([]T, b.Rows)
	}
	t := work[:b.Rows]
	for i := range t {
		t[i] = hwy.ConjOf(b.At(i, 0))
	}
	right := b.Slice(0, 1, b.Rows, b.Cols-1)
	// conj(t) = conj(B[:,0]) + conj(B[:,1:]) * essential.
	if err := matvec.Gemv(t, 1, right.WithConj(true), essential, incE, 1); err != nil {
		return err
	}
	hwy.ConjInPlace(t)

	for i, v := range t {
		b.Data[b.Index(i, 0)] -= tau * v
	}
	return matvec.Ger(right, -tau, t, 1, essential, incE, false)
}

func checkTarget[T hwy.Scalar](op string, b dense.Tile[T]) error {
	if err := b.Check(op, "B"); err != nil {
		return err
	}
	if b.Conj {
		return dense.ModeError(op, "destination must not be a conjugated view")
	}
	return nil
}

func scaleRow[T hwy.Scalar](b dense.Tile[T], i int, s T) {
	for j := range b.Cols {
		b.Data[b.Index(i, j)] *= s
	}
}

func scaleCol[T hwy.Scalar](b dense.Tile[T], j int, s T) {
	for i := range b.Rows {
		b.Data[b.Index(i, j)] *= s
	}
}

// vectorLen returns the number of elements of a strided vector that ends
// inside x.
func vectorLen[T hwy.Scalar](x []T, inc int) int {
	if len(x) == 0 || inc < 1 {
		return 0
	}
	return (len(x)-1)/inc + 1
}
