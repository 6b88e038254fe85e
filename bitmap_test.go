package zxpipe_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericlevine/zxpipe"
	"github.com/ericlevine/zxpipe/bitutil"
)

// countingBinarizer thresholds at 128 and counts how often it is asked.
type countingBinarizer struct {
	source   zxpipe.LuminanceSource
	rows     int
	matrices int
	children *int
}

func (c *countingBinarizer) BlackRow(y int, row *bitutil.BitArray) (*bitutil.BitArray, error) {
	c.rows++
	lum := c.source.Row(y, nil)
	out := bitutil.NewBitArray(c.source.Width())
	for x, v := range lum[:c.source.Width()] {
		if v < 128 {
			out.Set(x)
		}
	}
	return out, nil
}

func (c *countingBinarizer) BlackMatrix() (*bitutil.BitMatrix, error) {
	c.matrices++
	m := bitutil.NewBitMatrixWithSize(c.source.Width(), c.source.Height())
	lum := c.source.Matrix()
	for i, v := range lum {
		if v < 128 {
			m.Set(i%c.source.Width(), i/c.source.Width())
		}
	}
	return m, nil
}

func (c *countingBinarizer) LuminanceSource() zxpipe.LuminanceSource { return c.source }

func (c *countingBinarizer) CreateBinarizer(source zxpipe.LuminanceSource) zxpipe.Binarizer {
	*c.children++
	return &countingBinarizer{source: source, children: c.children}
}

func (c *countingBinarizer) Width() int  { return c.source.Width() }
func (c *countingBinarizer) Height() int { return c.source.Height() }

func newCountingBitmap(t *testing.T) (*zxpipe.BinaryBitmap, *countingBinarizer) {
	t.Helper()
	// 4x2: dark left column on both rows, dark right column on row 1.
	src, err := zxpipe.NewGraySource([]byte{
		0, 255, 255, 255,
		0, 255, 255, 0,
	}, 4, 2)
	require.NoError(t, err)
	b := &countingBinarizer{source: src, children: new(int)}
	return zxpipe.NewBinaryBitmap(b), b
}

func TestBinaryBitmapCachesRows(t *testing.T) {
	bitmap, b := newCountingBitmap(t)

	row, err := bitmap.BlackRow(1)
	require.NoError(t, err)
	assert.True(t, row.Get(0))
	assert.True(t, row.Get(3))

	// Callers get a copy, so mutating it does not poison the cache.
	row.Clear()
	again, err := bitmap.BlackRow(1)
	require.NoError(t, err)
	assert.True(t, again.Get(3))
	assert.Equal(t, 1, b.rows)

	_, err = bitmap.BlackRow(0)
	require.NoError(t, err)
	assert.Equal(t, 2, b.rows)

	_, err = bitmap.BlackRow(2)
	assert.ErrorIs(t, err, zxpipe.ErrInvalidInput)
	_, err = bitmap.BlackRow(-1)
	assert.ErrorIs(t, err, zxpipe.ErrInvalidInput)
}

func TestBinaryBitmapCachesMatrix(t *testing.T) {
	bitmap, b := newCountingBitmap(t)

	m1, err := bitmap.BlackMatrix()
	require.NoError(t, err)
	m2, err := bitmap.BlackMatrix()
	require.NoError(t, err)
	assert.Same(t, m1, m2)
	assert.Equal(t, 1, b.matrices)
	assert.True(t, m1.Get(3, 1))
	assert.False(t, m1.Get(3, 0))
}

func TestBinaryBitmapDerivedBitmapsRebinarize(t *testing.T) {
	bitmap, b := newCountingBitmap(t)
	assert.Equal(t, 4, bitmap.Width())
	assert.Equal(t, 2, bitmap.Height())
	require.True(t, bitmap.CropSupported())
	require.True(t, bitmap.RotateSupported())

	crop, err := bitmap.Crop(2, 0, 2, 2)
	require.NoError(t, err)
	m, err := crop.BlackMatrix()
	require.NoError(t, err)
	assert.True(t, m.Get(1, 1))
	assert.False(t, m.Get(0, 0))

	rotated, err := bitmap.RotateCounterClockwise()
	require.NoError(t, err)
	assert.Equal(t, 2, rotated.Width())
	assert.Equal(t, 4, rotated.Height())

	inverted := bitmap.Inverted()
	m, err = inverted.BlackMatrix()
	require.NoError(t, err)
	assert.False(t, m.Get(0, 0))
	assert.True(t, m.Get(1, 0))

	assert.Equal(t, 3, *b.children)
	assert.Zero(t, b.matrices)

	_, err = bitmap.Crop(3, 0, 2, 2)
	assert.ErrorIs(t, err, zxpipe.ErrInvalidInput)
}
