package bitutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func arrayOf(pattern string) *BitArray {
	a := NewBitArray(len(pattern))
	for i, c := range pattern {
		if c == 'X' {
			a.Set(i)
		}
	}
	return a
}

func TestBitArrayGetSetFlip(t *testing.T) {
	a := NewBitArray(130)
	for i := 0; i < a.Size(); i++ {
		require.False(t, a.Get(i), "bit %d", i)
	}
	for _, i := range []int{0, 63, 64, 129} {
		a.Set(i)
		assert.True(t, a.Get(i), "bit %d", i)
	}
	assert.False(t, a.Get(1))
	assert.False(t, a.Get(65))

	a.Flip(63)
	assert.False(t, a.Get(63))
	a.Flip(63)
	assert.True(t, a.Get(63))

	a.Clear()
	assert.Equal(t, 130, a.GetNextSet(0))
}

func TestBitArrayNegativeSize(t *testing.T) {
	a := NewBitArray(-4)
	assert.Zero(t, a.Size())
	assert.Zero(t, a.GetNextSet(0))
}

func TestBitArrayNext(t *testing.T) {
	a := NewBitArray(200)
	a.Set(10)
	a.Set(70)
	a.Set(199)

	assert.Equal(t, 10, a.GetNextSet(0))
	assert.Equal(t, 10, a.GetNextSet(10))
	assert.Equal(t, 70, a.GetNextSet(11))
	assert.Equal(t, 199, a.GetNextSet(71))
	assert.Equal(t, 200, a.GetNextSet(200))

	assert.Equal(t, 0, a.GetNextUnset(0))
	assert.Equal(t, 11, a.GetNextUnset(10))

	full := NewBitArray(70)
	for i := 0; i < 70; i++ {
		full.Set(i)
	}
	assert.Equal(t, 70, full.GetNextUnset(0))
	assert.Equal(t, 70, full.GetNextUnset(69))
}

func TestBitArrayIsRange(t *testing.T) {
	a := NewBitArray(150)
	for i := 60; i < 130; i++ {
		a.Set(i)
	}
	assert.True(t, a.IsRange(60, 130, true))
	assert.True(t, a.IsRange(64, 128, true))
	assert.False(t, a.IsRange(59, 130, true))
	assert.False(t, a.IsRange(60, 131, true))
	assert.True(t, a.IsRange(0, 60, false))
	assert.True(t, a.IsRange(130, 150, false))
	assert.False(t, a.IsRange(0, 61, false))
	assert.True(t, a.IsRange(5, 5, true))
	assert.Panics(t, func() { a.IsRange(10, 151, false) })
	assert.Panics(t, func() { a.IsRange(-1, 3, false) })
}

func TestBitArrayReverse(t *testing.T) {
	for _, pattern := range []string{
		"X..XX.X",
		"X..X.....X...........................................................XX",
		"XXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX.",
		"X..............................................................X",
	} {
		a := arrayOf(pattern)
		a.Reverse()
		for i := 0; i < len(pattern); i++ {
			assert.Equal(t, pattern[len(pattern)-1-i] == 'X', a.Get(i), "pattern %q bit %d", pattern, i)
		}
		a.Reverse()
		assert.Equal(t, arrayOf(pattern).String(), a.String())
	}
}

func TestBitArrayAppendAndToBytes(t *testing.T) {
	a := NewBitArray(0)
	a.AppendBits(0x5, 3)
	a.AppendBits(0x1F, 5)
	a.AppendBits(0xA5A5, 16)
	a.AppendBits(0, 0)
	require.Equal(t, 24, a.Size())

	out := make([]byte, 3)
	a.ToBytes(0, out, 0, 3)
	assert.Equal(t, []byte{0xBF, 0xA5, 0xA5}, out)
	assert.Panics(t, func() { a.AppendBits(1, 33) })
}

func TestBitArrayCloneIsIndependent(t *testing.T) {
	a := arrayOf("X.X")
	b := a.Clone()
	b.Set(1)
	assert.False(t, a.Get(1))
	assert.Equal(t, " X.X", a.String())
}

func TestBitMatrixBasics(t *testing.T) {
	m := NewBitMatrixWithSize(70, 3)
	assert.Equal(t, 70, m.Width())
	assert.Equal(t, 3, m.Height())
	m.Set(69, 2)
	m.Set(0, 1)
	assert.True(t, m.Get(69, 2))
	assert.False(t, m.Get(68, 2))
	m.Flip(0, 1)
	assert.False(t, m.Get(0, 1))

	row := m.Row(2, nil)
	assert.True(t, row.Get(69))
	assert.Equal(t, 69, row.GetNextSet(0))

	reused := m.Row(1, row)
	assert.Same(t, row, reused)
	assert.Equal(t, 70, reused.GetNextSet(0))

	assert.Panics(t, func() { NewBitMatrix(0) })
}

func TestBitMatrixSetRegion(t *testing.T) {
	m := NewBitMatrix(10)
	m.SetRegion(2, 3, 4, 5)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			assert.Equal(t, x >= 2 && x < 6 && y >= 3 && y < 8, m.Get(x, y), "(%d,%d)", x, y)
		}
	}
	assert.Panics(t, func() { m.SetRegion(8, 0, 3, 1) })
	assert.Panics(t, func() { m.SetRegion(0, 0, 0, 1) })
}

func TestBitMatrixOnBits(t *testing.T) {
	m := NewBitMatrix(100)
	assert.Nil(t, m.TopLeftOnBit())
	assert.Nil(t, m.BottomRightOnBit())

	m.Set(70, 4)
	m.Set(5, 9)
	m.Set(90, 9)
	m.Set(3, 40)
	assert.Equal(t, []int{70, 4}, m.TopLeftOnBit())
	assert.Equal(t, []int{3, 40}, m.BottomRightOnBit())
}

func TestBitMatrixCloneAndEquals(t *testing.T) {
	m := ParseBoolMatrix([][]bool{
		{true, false, true},
		{false, true, false},
	})
	assert.Equal(t, "X   X \n  X   \n", m.String())

	c := m.Clone()
	assert.True(t, m.Equals(c))
	c.Flip(1, 0)
	assert.False(t, m.Equals(c))
	assert.False(t, m.Get(1, 0))
	assert.False(t, m.Equals(NewBitMatrixWithSize(3, 3)))
}

func TestBitSource(t *testing.T) {
	s := NewBitSource([]byte{0x01, 0x02, 0x03, 0x04, 0x05})
	assert.Equal(t, 40, s.Available())

	for _, tc := range []struct{ n, want int }{
		{1, 0}, {6, 0}, {2, 2}, {3, 0}, {12, 0x203}, {16, 0x0405},
	} {
		got, err := s.ReadBits(tc.n)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%d bits", tc.n)
	}
	assert.Zero(t, s.Available())

	_, err := s.ReadBits(1)
	assert.ErrorIs(t, err, ErrShortRead)
	_, err = NewBitSource(make([]byte, 8)).ReadBits(33)
	assert.ErrorIs(t, err, ErrShortRead)
}
