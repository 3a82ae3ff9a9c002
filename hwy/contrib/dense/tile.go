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

// Package dense defines the matrix views shared by the dense kernels: Tile,
// storage orders, triangular and self-adjoint modes, and the typed errors
// every kernel reports.
//
// A Tile never owns its memory. Slicing, transposing and taking the adjoint
// of a Tile only produce a new view over the same backing slice.
package dense

import "github.com/ajroetker/go-gemm/hwy"

// Order is the storage order of a Tile.
type Order uint8

const (
	// ColMajor stores each column contiguously (element (i,j) at i*Inc + j*Stride).
	ColMajor Order = iota
	// RowMajor stores each row contiguously (element (i,j) at i*Stride + j*Inc).
	RowMajor
)

// String returns a human-readable name for the storage order.
func (o Order) String() string {
	if o == RowMajor {
		return "row-major"
	}
	return "col-major"
}

// Tile is a rectangular strided view into caller memory.
//
// Stride is the outer stride (distance between columns for ColMajor, rows for
// RowMajor) and Inc the inner stride, both in elements. When Conj is set,
// reads through At return the complex conjugate of the stored value.
type Tile[T hwy.Scalar] struct {
	Data   []T
	Rows   int
	Cols   int
	Stride int
	Inc    int
	Order  Order
	Conj   bool
}

// NewColMajor allocates a zeroed rows x cols column-major tile.
func NewColMajor[T hwy.Scalar](rows, cols int) Tile[T] {
	return Tile[T]{
		Data:   make([]T, rows*cols),
		Rows:   rows,
		Cols:   cols,
		Stride: max(rows, 1),
		Inc:    1,
		Order:  ColMajor,
	}
}

// NewRowMajor allocates a zeroed rows x cols row-major tile.
func NewRowMajor[T hwy.Scalar](rows, cols int) Tile[T] {
	return Tile[T]{
		Data:   make([]T, rows*cols),
		Rows:   rows,
		Cols:   cols,
		Stride: max(cols, 1),
		Inc:    1,
		Order:  RowMajor,
	}
}

// FromColMajor wraps data as a rows x cols column-major tile with leading dimension ld.
func FromColMajor[T hwy.Scalar](data []T, rows, cols, ld int) Tile[T] {
	return Tile[T]{Data: data, Rows: rows, Cols: cols, Stride: ld, Inc: 1, Order: ColMajor}
}

// FromRowMajor wraps data as a rows x cols row-major tile with leading dimension ld.
func FromRowMajor[T hwy.Scalar](data []T, rows, cols, ld int) Tile[T] {
	return Tile[T]{Data: data, Rows: rows, Cols: cols, Stride: ld, Inc: 1, Order: RowMajor}
}

// FromRows copies a slice of equal-length rows into a new row-major tile.
func FromRows[T hwy.Scalar](rows [][]T) Tile[T] {
	r := len(rows)
	c := 0
	if r > 0 {
		c = len(rows[0])
	}
	t := NewRowMajor[T](r, c)
	for i, row := range rows {
		copy(t.Data[i*c:(i+1)*c], row)
	}
	return t
}

// Identity returns an n x n column-major identity matrix.
func Identity[T hwy.Scalar](n int) Tile[T] {
	t := NewColMajor[T](n, n)
	for i := range n {
		t.Data[i*n+i] = 1
	}
	return t
}

// Index returns the offset of element (i, j) in Data.
func (t Tile[T]) Index(i, j int) int {
	if t.Order == RowMajor {
		return i*t.Stride + j*t.Inc
	}
	return i*t.Inc + j*t.Stride
}

// At returns element (i, j), conjugated when the view is conjugated.
func (t Tile[T]) At(i, j int) T {
	v := t.Data[t.Index(i, j)]
	if t.Conj {
		return hwy.ConjOf(v)
	}
	return v
}

// Set stores v at (i, j) so that a later At(i, j) returns v.
func (t Tile[T]) Set(i, j int, v T) {
	if t.Conj {
		v = hwy.ConjOf(v)
	}
	t.Data[t.Index(i, j)] = v
}

// IsEmpty reports whether the tile has no elements.
func (t Tile[T]) IsEmpty() bool {
	return t.Rows == 0 || t.Cols == 0
}

// IsContiguousColMajor reports whether columns are unit-stride, which lets
// packers copy whole columns.
func (t Tile[T]) IsContiguousColMajor() bool {
	return t.Order == ColMajor && t.Inc == 1
}

// IsContiguousRowMajor reports whether rows are unit-stride.
func (t Tile[T]) IsContiguousRowMajor() bool {
	return t.Order == RowMajor && t.Inc == 1
}

// Slice returns the r x c sub-view starting at (i, j).
func (t Tile[T]) Slice(i, j, r, c int) Tile[T] {
	if i < 0 || j < 0 || r < 0 || c < 0 || i+r > t.Rows || j+c > t.Cols {
		panic("dense: slice out of range")
	}
	s := t
	s.Rows, s.Cols = r, c
	if r == 0 || c == 0 {
		s.Data = nil
		return s
	}
	s.Data = t.Data[t.Index(i, j):]
	return s
}

// Row returns row i as a 1 x Cols view.
func (t Tile[T]) Row(i int) Tile[T] {
	return t.Slice(i, 0, 1, t.Cols)
}

// Col returns column j as a Rows x 1 view.
func (t Tile[T]) Col(j int) Tile[T] {
	return t.Slice(0, j, t.Rows, 1)
}

// T returns the transpose view. No data is moved.
func (t Tile[T]) T() Tile[T] {
	s := t
	s.Rows, s.Cols = t.Cols, t.Rows
	if t.Order == RowMajor {
		s.Order = ColMajor
	} else {
		s.Order = RowMajor
	}
	return s
}

// H returns the adjoint (conjugate transpose) view.
func (t Tile[T]) H() Tile[T] {
	s := t.T()
	s.Conj = !t.Conj
	return s
}

// WithConj returns the view with conjugate-on-read toggled by c.
func (t Tile[T]) WithConj(c bool) Tile[T] {
	s := t
	s.Conj = t.Conj != c
	return s
}

// Validate checks the stride invariants and that Data covers every element.
func (t Tile[T]) Validate() error {
	if t.Rows < 0 || t.Cols < 0 {
		return &Error{Kind: KindBadTile, Msg: "negative dimension"}
	}
	if t.Inc < 1 {
		return &Error{Kind: KindBadTile, Arg: "inc", Got: t.Inc, Want: 1, Msg: "inner stride must be >= 1"}
	}
	if t.IsEmpty() {
		return nil
	}
	inner, outer := t.Rows, t.Cols
	if t.Order == RowMajor {
		inner, outer = t.Cols, t.Rows
	}
	if outer > 1 && t.Stride < (inner-1)*t.Inc+1 {
		return &Error{Kind: KindBadTile, Arg: "stride", Got: t.Stride, Want: (inner-1)*t.Inc + 1,
			Msg: "outer stride smaller than inner extent"}
	}
	if last := t.Index(t.Rows-1, t.Cols-1); last >= len(t.Data) {
		return &Error{Kind: KindBadTile, Arg: "data", Got: len(t.Data), Want: last + 1,
			Msg: "backing slice shorter than the view"}
	}
	return nil
}

// Copy returns a dense column-major copy with conjugation applied.
func (t Tile[T]) Copy() Tile[T] {
	c := NewColMajor[T](t.Rows, t.Cols)
	for j := 0; j < t.Cols; j++ {
		for i := 0; i < t.Rows; i++ {
			c.Data[j*c.Stride+i] = t.At(i, j)
		}
	}
	return c
}

// CopyFrom copies src element-wise into t. Shapes must match.
func (t Tile[T]) CopyFrom(src Tile[T]) error {
	if t.Rows != src.Rows {
		return ShapeError("copy", "src", "rows", src.Rows, t.Rows)
	}
	if t.Cols != src.Cols {
		return ShapeError("copy", "src", "cols", src.Cols, t.Cols)
	}
	for j := 0; j < t.Cols; j++ {
		for i := 0; i < t.Rows; i++ {
			t.Set(i, j, src.At(i, j))
		}
	}
	return nil
}

// Fill sets every element of t to v.
func (t Tile[T]) Fill(v T) {
	for j := 0; j < t.Cols; j++ {
		for i := 0; i < t.Rows; i++ {
			t.Set(i, j, v)
		}
	}
}

// ToRows returns the view as freshly allocated rows. Useful in tests and demos.
func (t Tile[T]) ToRows() [][]T {
	out := make([][]T, t.Rows)
	for i := range out {
		out[i] = make([]T, t.Cols)
		for j := range out[i] {
			out[i][j] = t.At(i, j)
		}
	}
	return out
}

// Check validates t and attributes any failure to operation op and argument arg.
func (t Tile[T]) Check(op, arg string) error {
	err := t.Validate()
	if err == nil {
		return nil
	}
	e := err.(*Error).WithOp(op)
	e.Dim = e.Arg
	e.Arg = arg
	return e
}
