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

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Every error returned by the kernels wraps exactly one of
// these, so callers can branch with errors.Is.
var (
	// ErrShape indicates operand dimensions that do not agree.
	ErrShape = errors.New("dense: shape mismatch")

	// ErrUnsupportedMode indicates a mode combination the kernel cannot
	// serve, such as an upper trapezoid with more rows than columns or a
	// bidiagonalization with rows < cols.
	ErrUnsupportedMode = errors.New("dense: unsupported mode")

	// ErrAllocation indicates a scratch buffer that could not be sized or
	// a caller-supplied buffer that is too small. The caller may retry with
	// a smaller problem.
	ErrAllocation = errors.New("dense: allocation failure")

	// ErrNotInitialized indicates an accessor called on a decomposition
	// that has not been computed yet.
	ErrNotInitialized = errors.New("dense: decomposition not initialized")

	// ErrBadTile indicates a Tile whose strides or backing slice violate
	// the view invariants.
	ErrBadTile = errors.New("dense: invalid tile")
)

// Kind discriminates the error categories.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindShape
	KindUnsupportedMode
	KindAllocation
	KindNotInitialized
	KindBadTile
)

// String returns a short name for the kind.
func (k Kind) String() string {
	switch k {
	case KindShape:
		return "shape"
	case KindUnsupportedMode:
		return "unsupported mode"
	case KindAllocation:
		return "allocation"
	case KindNotInitialized:
		return "not initialized"
	case KindBadTile:
		return "bad tile"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindShape:
		return ErrShape
	case KindUnsupportedMode:
		return ErrUnsupportedMode
	case KindAllocation:
		return ErrAllocation
	case KindNotInitialized:
		return ErrNotInitialized
	case KindBadTile:
		return ErrBadTile
	default:
		return nil
	}
}

// Error is the typed failure returned by every kernel. Op names the failing
// operation, Arg the offending argument and Dim the dimension involved.
type Error struct {
	Kind Kind
	Op   string
	Arg  string
	Dim  string
	Got  int
	Want int
	Msg  string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("dense: ")
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Arg != "" {
		fmt.Fprintf(&b, " (arg %s", e.Arg)
		if e.Dim != "" {
			fmt.Fprintf(&b, ", %s", e.Dim)
		}
		if e.Got != 0 || e.Want != 0 {
			fmt.Fprintf(&b, ": got %d, want %d", e.Got, e.Want)
		}
		b.WriteString(")")
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	return b.String()
}

// Unwrap returns the sentinel matching the error's kind.
func (e *Error) Unwrap() error {
	return e.Kind.sentinel()
}

// WithOp returns a copy of the error attributed to op, keeping other context.
func (e *Error) WithOp(op string) *Error {
	c := *e
	c.Op = op
	return &c
}

// ShapeError reports that dimension dim of argument arg is got instead of want.
func ShapeError(op, arg, dim string, got, want int) error {
	return &Error{Kind: KindShape, Op: op, Arg: arg, Dim: dim, Got: got, Want: want}
}

// ModeError reports an unsupported mode combination.
func ModeError(op, msg string) error {
	return &Error{Kind: KindUnsupportedMode, Op: op, Msg: msg}
}

// AllocError reports that a buffer for arg could not hold want elements.
func AllocError(op, arg string, got, want int) error {
	return &Error{Kind: KindAllocation, Op: op, Arg: arg, Got: got, Want: want}
}

// NotInitializedError reports use of an uncomputed decomposition.
func NotInitializedError(op string) error {
	return &Error{Kind: KindNotInitialized, Op: op}
}

// KindOf returns the Kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}
