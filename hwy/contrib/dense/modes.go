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

package dense

// UpLo selects the stored triangle of a triangular or self-adjoint operand.
type UpLo uint8

const (
	Lower UpLo = iota
	Upper
)

func (u UpLo) String() string {
	if u == Upper {
		return "upper"
	}
	return "lower"
}

// Flip returns the opposite triangle. Transposing a triangular matrix flips it.
func (u UpLo) Flip() UpLo {
	if u == Upper {
		return Lower
	}
	return Upper
}

// Diag describes how the diagonal of a triangular operand is read.
type Diag uint8

const (
	// NonUnit reads the stored diagonal.
	NonUnit Diag = iota
	// Unit treats the diagonal as ones without reading it.
	Unit
	// ZeroDiag treats the diagonal as zeros (strict triangle).
	ZeroDiag
)

func (d Diag) String() string {
	switch d {
	case Unit:
		return "unit"
	case ZeroDiag:
		return "zero-diag"
	default:
		return "non-unit"
	}
}

// Mode is a triangular mode: which triangle plus how its diagonal is read.
type Mode struct {
	UpLo UpLo
	Diag Diag
}

func (m Mode) String() string {
	return m.UpLo.String() + "/" + m.Diag.String()
}

// Transposed returns the mode of the transposed operand.
func (m Mode) Transposed() Mode {
	return Mode{UpLo: m.UpLo.Flip(), Diag: m.Diag}
}

// Common modes.
var (
	LowerNonUnit = Mode{Lower, NonUnit}
	LowerUnit    = Mode{Lower, Unit}
	UpperNonUnit = Mode{Upper, NonUnit}
	UpperUnit    = Mode{Upper, Unit}
)

// Side is the position of the structured operand in a product.
type Side uint8

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// Flip returns the other side. Transposing a product swaps the sides.
func (s Side) Flip() Side {
	if s == Right {
		return Left
	}
	return Right
}

// ShapeKind tags the structure of the first operand of a product.
type ShapeKind uint8

const (
	Dense ShapeKind = iota
	TriangularUpper
	TriangularLower
	SelfAdjointUpper
	SelfAdjointLower
)

func (k ShapeKind) String() string {
	switch k {
	case TriangularUpper:
		return "triangular-upper"
	case TriangularLower:
		return "triangular-lower"
	case SelfAdjointUpper:
		return "self-adjoint-upper"
	case SelfAdjointLower:
		return "self-adjoint-lower"
	default:
		return "dense"
	}
}

// UpLo returns the triangle named by a structured kind. It is Lower for Dense.
func (k ShapeKind) UpLo() UpLo {
	if k == TriangularUpper || k == SelfAdjointUpper {
		return Upper
	}
	return Lower
}

// IsTriangular reports whether k is a triangular kind.
func (k ShapeKind) IsTriangular() bool {
	return k == TriangularUpper || k == TriangularLower
}

// IsSelfAdjoint reports whether k is a self-adjoint kind.
func (k ShapeKind) IsSelfAdjoint() bool {
	return k == SelfAdjointUpper || k == SelfAdjointLower
}

// Info is the numerical status of a computed decomposition. Numerical trouble
// is a status, never an error.
type Info uint8

const (
	Success Info = iota
	NumericalIssue
)

func (i Info) String() string {
	if i == NumericalIssue {
		return "numerical issue"
	}
	return "success"
}
