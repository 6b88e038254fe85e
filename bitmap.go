package zxpipe

import (
	"fmt"

	"github.com/ericlevine/zxpipe/bitutil"
)

// BinaryBitmap represents a bitmap of binary (black/white) values. It owns
// one Binarizer and caches each row and the full matrix the first time they
// are requested, so a bitmap never re-binarizes the same data.
type BinaryBitmap struct {
	binarizer Binarizer
	matrix    *bitutil.BitMatrix
	rows      map[int]*bitutil.BitArray
}

// NewBinaryBitmap creates a new BinaryBitmap from the given Binarizer.
func NewBinaryBitmap(binarizer Binarizer) *BinaryBitmap {
	return &BinaryBitmap{binarizer: binarizer}
}

// Width returns the width of the bitmap.
func (b *BinaryBitmap) Width() int {
	return b.binarizer.Width()
}

// Height returns the height of the bitmap.
func (b *BinaryBitmap) Height() int {
	return b.binarizer.Height()
}

// LuminanceSource returns the source the bitmap was binarized from.
func (b *BinaryBitmap) LuminanceSource() LuminanceSource {
	return b.binarizer.LuminanceSource()
}

// BlackRow returns row y. The returned array is a copy the caller may
// modify; the cached row is left untouched.
func (b *BinaryBitmap) BlackRow(y int) (*bitutil.BitArray, error) {
	if y < 0 || y >= b.Height() {
		return nil, fmt.Errorf("row %d outside bitmap of height %d: %w", y, b.Height(), ErrInvalidInput)
	}
	if row, ok := b.rows[y]; ok {
		return row.Clone(), nil
	}
	row, err := b.binarizer.BlackRow(y, nil)
	if err != nil {
		return nil, err
	}
	if b.rows == nil {
		b.rows = make(map[int]*bitutil.BitArray)
	}
	b.rows[y] = row
	return row.Clone(), nil
}

// BlackMatrix returns the 2D matrix of black/white values. The matrix is
// shared between callers and must not be modified.
func (b *BinaryBitmap) BlackMatrix() (*bitutil.BitMatrix, error) {
	if b.matrix != nil {
		return b.matrix, nil
	}
	m, err := b.binarizer.BlackMatrix()
	if err != nil {
		return nil, err
	}
	b.matrix = m
	return m, nil
}

// CropSupported reports whether the underlying source can be cropped.
func (b *BinaryBitmap) CropSupported() bool {
	return b.LuminanceSource().CropSupported()
}

// Crop returns a new bitmap over a sub-rectangle, binarized afresh.
func (b *BinaryBitmap) Crop(left, top, width, height int) (*BinaryBitmap, error) {
	src, err := b.LuminanceSource().Crop(left, top, width, height)
	if err != nil {
		return nil, err
	}
	return NewBinaryBitmap(b.binarizer.CreateBinarizer(src)), nil
}

// RotateSupported reports whether the underlying source can be rotated.
func (b *BinaryBitmap) RotateSupported() bool {
	return b.LuminanceSource().RotateSupported()
}

// RotateCounterClockwise returns a new bitmap turned 90 degrees
// counter-clockwise.
func (b *BinaryBitmap) RotateCounterClockwise() (*BinaryBitmap, error) {
	src, err := b.LuminanceSource().RotateCounterClockwise()
	if err != nil {
		return nil, err
	}
	return NewBinaryBitmap(b.binarizer.CreateBinarizer(src)), nil
}

// Inverted returns a new bitmap over the inverted source.
func (b *BinaryBitmap) Inverted() *BinaryBitmap {
	return NewBinaryBitmap(b.binarizer.CreateBinarizer(b.LuminanceSource().Invert()))
}
