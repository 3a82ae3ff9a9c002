package dense

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTileIndexing(t *testing.T) {
	// 2x3 column-major with padding: ld = 4
	data := []float64{1, 4, 0, 0, 2, 5, 0, 0, 3, 6}
	a := FromColMajor(data, 2, 3, 4)
	require.NoError(t, a.Validate())

	want := [][]float64{{1, 2, 3}, {4, 5, 6}}
	assert.Equal(t, want, a.ToRows())

	at := a.T()
	assert.Equal(t, RowMajor, at.Order)
	assert.Equal(t, 3, at.Rows)
	assert.Equal(t, 2, at.Cols)
	for i := range 2 {
		for j := range 3 {
			assert.Equal(t, a.At(i, j), at.At(j, i))
		}
	}
}

func TestTileSliceAndRowMajor(t *testing.T) {
	a := FromRows([][]float32{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 9},
	})
	s := a.Slice(1, 1, 2, 2)
	assert.Equal(t, [][]float32{{5, 6}, {8, 9}}, s.ToRows())

	s.Set(0, 0, 50)
	assert.Equal(t, float32(50), a.At(1, 1))

	assert.Equal(t, [][]float32{{2}, {5}, {8}}, a.Col(1).ToRows())
	assert.Equal(t, [][]float32{{7, 8, 9}}, a.Row(2).ToRows())
	assert.True(t, a.Slice(3, 0, 0, 3).IsEmpty())
}

func TestTileAdjoint(t *testing.T) {
	a := FromRows([][]complex128{
		{1 + 1i, 2},
		{3 - 2i, 4i},
	})
	h := a.H()
	assert.Equal(t, complex(1, -1), h.At(0, 0))
	assert.Equal(t, complex(3, 2), h.At(0, 1))
	assert.Equal(t, complex(0, -4), h.At(1, 1))

	// Setting through a conjugated view stores the conjugate.
	h.Set(1, 0, 5i)
	assert.Equal(t, complex(0, -5), a.At(0, 1))

	c := h.Copy()
	assert.False(t, c.Conj)
	assert.Equal(t, h.ToRows(), c.ToRows())
	assert.Equal(t, a.ToRows(), h.H().ToRows())
}

func TestTileValidate(t *testing.T) {
	tests := []struct {
		name string
		tile Tile[float64]
		dim  string
	}{
		{"zero inc", Tile[float64]{Data: make([]float64, 4), Rows: 2, Cols: 2, Stride: 2}, "inc"},
		{"short stride", FromColMajor(make([]float64, 6), 3, 2, 2), "stride"},
		{"short data", FromColMajor(make([]float64, 5), 3, 2, 3), "data"},
		{"row-major short stride", FromRowMajor(make([]float64, 6), 2, 3, 2), "stride"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tile.Check("gemm", "A")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrBadTile))
			var de *Error
			require.ErrorAs(t, err, &de)
			assert.Equal(t, "gemm", de.Op)
			assert.Equal(t, "A", de.Arg)
			assert.Equal(t, tt.dim, de.Dim)
		})
	}

	// A single column needs no outer stride.
	col := Tile[float64]{Data: make([]float64, 7), Rows: 4, Cols: 1, Stride: 0, Inc: 2}
	assert.NoError(t, col.Validate())
	assert.NoError(t, Tile[float64]{Inc: 1}.Validate())
}

func TestIdentityAndFill(t *testing.T) {
	id := Identity[complex64](3)
	for i := range 3 {
		for j := range 3 {
			want := complex64(0)
			if i == j {
				want = 1
			}
			assert.Equal(t, want, id.At(i, j))
		}
	}
	id.Slice(0, 1, 3, 2).Fill(7)
	assert.Equal(t, complex64(7), id.At(2, 2))
	assert.Equal(t, complex64(1), id.At(0, 0))

	dst := NewRowMajor[complex64](3, 3)
	require.NoError(t, dst.CopyFrom(id))
	assert.Equal(t, id.ToRows(), dst.ToRows())
	assert.ErrorIs(t, dst.CopyFrom(NewColMajor[complex64](2, 3)), ErrShape)
}
