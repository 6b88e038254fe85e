package bitutil

import (
	"fmt"
	"math/bits"
	"slices"
	"strings"
)

// BitMatrix is a 2D grid of bits, x the column and y the row, origin top
// left. Each row starts on a fresh 64-bit word.
type BitMatrix struct {
	width, height int
	stride        int
	words         []uint64
}

// NewBitMatrix returns a cleared dimension x dimension matrix.
func NewBitMatrix(dimension int) *BitMatrix {
	return NewBitMatrixWithSize(dimension, dimension)
}

// NewBitMatrixWithSize returns a cleared width x height matrix. It panics
// on a non-positive dimension.
func NewBitMatrixWithSize(width, height int) *BitMatrix {
	if width < 1 || height < 1 {
		panic(fmt.Sprintf("bitutil: matrix dimensions %dx%d", width, height))
	}
	stride := wordsFor(width)
	return &BitMatrix{width: width, height: height, stride: stride, words: make([]uint64, stride*height)}
}

// ParseBoolMatrix builds a matrix from rows of booleans, true meaning set.
func ParseBoolMatrix(rows [][]bool) *BitMatrix {
	m := NewBitMatrixWithSize(len(rows[0]), len(rows))
	for y, row := range rows {
		for x, on := range row {
			if on {
				m.Set(x, y)
			}
		}
	}
	return m
}

func (m *BitMatrix) index(x, y int) (int, uint) {
	return y*m.stride + x/wordBits, uint(x % wordBits)
}

// Get reports whether (x, y) is set.
func (m *BitMatrix) Get(x, y int) bool {
	i, b := m.index(x, y)
	return m.words[i]>>b&1 != 0
}

// Set sets (x, y).
func (m *BitMatrix) Set(x, y int) {
	i, b := m.index(x, y)
	m.words[i] |= 1 << b
}

// Flip inverts (x, y).
func (m *BitMatrix) Flip(x, y int) {
	i, b := m.index(x, y)
	m.words[i] ^= 1 << b
}

// SetRegion sets every bit of the width x height rectangle at (left, top).
// It panics if the rectangle is empty or leaves the matrix.
func (m *BitMatrix) SetRegion(left, top, width, height int) {
	if left < 0 || top < 0 || width < 1 || height < 1 || left+width > m.width || top+height > m.height {
		panic(fmt.Sprintf("bitutil: region %dx%d at (%d,%d) outside %dx%d matrix",
			width, height, left, top, m.width, m.height))
	}
	for y := top; y < top+height; y++ {
		for x := left; x < left+width; x++ {
			m.Set(x, y)
		}
	}
}

// Row copies row y into row, allocating a new array when row is nil or
// too short.
func (m *BitMatrix) Row(y int, row *BitArray) *BitArray {
	if row == nil || row.Size() < m.width {
		row = NewBitArray(m.width)
	} else {
		row.Clear()
	}
	copy(row.words, m.words[y*m.stride:(y+1)*m.stride])
	return row
}

// TopLeftOnBit returns {x, y} of the first set bit in row-major order, or
// nil for an empty matrix.
func (m *BitMatrix) TopLeftOnBit() []int {
	i := slices.IndexFunc(m.words, func(w uint64) bool { return w != 0 })
	if i < 0 {
		return nil
	}
	return []int{(i%m.stride)*wordBits + bits.TrailingZeros64(m.words[i]), i / m.stride}
}

// BottomRightOnBit returns {x, y} of the last set bit in row-major order,
// or nil for an empty matrix.
func (m *BitMatrix) BottomRightOnBit() []int {
	for i := len(m.words) - 1; i >= 0; i-- {
		if w := m.words[i]; w != 0 {
			return []int{(i%m.stride)*wordBits + wordBits - 1 - bits.LeadingZeros64(w), i / m.stride}
		}
	}
	return nil
}

// Width returns the number of columns.
func (m *BitMatrix) Width() int { return m.width }

// Height returns the number of rows.
func (m *BitMatrix) Height() int { return m.height }

// Clone returns an independent copy.
func (m *BitMatrix) Clone() *BitMatrix {
	c := *m
	c.words = slices.Clone(m.words)
	return &c
}

// Equals reports whether both matrices have the same size and bits.
func (m *BitMatrix) Equals(o *BitMatrix) bool {
	return m.width == o.width && m.height == o.height && slices.Equal(m.words, o.words)
}

// String draws the matrix with "X " for set and "  " for unset bits.
func (m *BitMatrix) String() string {
	var sb strings.Builder
	sb.Grow(m.height * (2*m.width + 1))
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if m.Get(x, y) {
				sb.WriteString("X ")
			} else {
				sb.WriteString("  ")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
