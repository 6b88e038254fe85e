package binarizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericlevine/zxpipe"
)

// emptySource reports a zero-area grid; every other method panics if hit.
type emptySource struct {
	zxpipe.LuminanceSource
	width, height int
}

func (s emptySource) Width() int  { return s.width }
func (s emptySource) Height() int { return s.height }

func graySource(t *testing.T, width, height int, px func(x, y int) byte) zxpipe.LuminanceSource {
	t.Helper()
	data := make([]byte, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			data[y*width+x] = px(x, y)
		}
	}
	src, err := zxpipe.NewGraySource(data, width, height)
	require.NoError(t, err)
	return src
}

func TestBinarizeRejectsDegenerateSources(t *testing.T) {
	_, err := Binarize(nil)
	assert.ErrorIs(t, err, zxpipe.ErrInvalidInput)

	for _, src := range []emptySource{{width: 0, height: 10}, {width: 10, height: 0}, {}} {
		_, err := Binarize(src)
		assert.ErrorIs(t, err, zxpipe.ErrInvalidInput)

		_, err = NewHybrid(src).BlackMatrix()
		assert.ErrorIs(t, err, zxpipe.ErrInvalidInput)

		_, err = NewGlobalHistogram(src).BlackMatrix()
		assert.ErrorIs(t, err, zxpipe.ErrInvalidInput)

		_, err = NewGlobalHistogram(src).BlackRow(0, nil)
		assert.ErrorIs(t, err, zxpipe.ErrInvalidInput)
	}
}

func TestBlackRowOutOfRange(t *testing.T) {
	src := graySource(t, 10, 10, func(x, y int) byte { return 255 })
	_, err := NewGlobalHistogram(src).BlackRow(10, nil)
	assert.ErrorIs(t, err, zxpipe.ErrInvalidInput)
	_, err = NewGlobalHistogram(src).BlackRow(-1, nil)
	assert.ErrorIs(t, err, zxpipe.ErrInvalidInput)
}

func TestHybridWhiteImageIsBlank(t *testing.T) {
	src := graySource(t, 100, 100, func(x, y int) byte { return 255 })
	m, err := NewHybrid(src).BlackMatrix()
	require.NoError(t, err)
	assert.Nil(t, m.TopLeftOnBit())
}

func TestGlobalHistogramNeedsContrast(t *testing.T) {
	src := graySource(t, 100, 100, func(x, y int) byte { return 255 })
	_, err := NewGlobalHistogram(src).BlackMatrix()
	assert.ErrorIs(t, err, zxpipe.ErrNotFound)
	_, err = NewGlobalHistogram(src).BlackRow(50, nil)
	assert.ErrorIs(t, err, zxpipe.ErrNotFound)
}

// A checkerboard of 4px squares lit by a left-to-right ramp: the dark squares
// on the right are brighter than the light squares would need to be for a
// single global threshold near the left edge.
func TestHybridFollowsIlluminationGradient(t *testing.T) {
	const size = 80
	dark := func(x, y int) bool { return (x/4+y/4)%2 == 0 }
	src := graySource(t, size, size, func(x, y int) byte {
		if dark(x, y) {
			return byte(20 + x)
		}
		return byte(140 + x)
	})

	m, err := NewHybrid(src).BlackMatrix()
	require.NoError(t, err)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			require.Equal(t, dark(x, y), m.Get(x, y), "pixel (%d,%d)", x, y)
		}
	}
}

func TestHybridIsDeterministicAndCached(t *testing.T) {
	src := graySource(t, 64, 64, func(x, y int) byte { return byte((x*7 + y*13) % 256) })

	a := NewHybrid(src)
	m1, err := a.BlackMatrix()
	require.NoError(t, err)
	m2, err := a.BlackMatrix()
	require.NoError(t, err)
	assert.Same(t, m1, m2)

	m3, err := NewHybrid(src).BlackMatrix()
	require.NoError(t, err)
	assert.Equal(t, m1.String(), m3.String())
}

func TestHybridSmallSourceUsesGlobalHistogram(t *testing.T) {
	src := graySource(t, 20, 20, func(x, y int) byte {
		if x < 10 {
			return 10
		}
		return 240
	})
	m, err := NewHybrid(src).BlackMatrix()
	require.NoError(t, err)
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			assert.Equal(t, x < 10, m.Get(x, y), "pixel (%d,%d)", x, y)
		}
	}
}

func TestBlackRowSharpensStripes(t *testing.T) {
	const width = 64
	dark := func(x int) bool { return (x/4)%2 == 0 }
	src := graySource(t, width, 3, func(x, y int) byte {
		if dark(x) {
			return 30
		}
		return 220
	})

	b := NewHybrid(src)
	row, err := b.BlackRow(1, nil)
	require.NoError(t, err)
	require.Equal(t, width, row.Size())
	for x := 1; x < width-1; x++ {
		assert.Equal(t, dark(x), row.Get(x), "column %d", x)
	}

	reused, err := b.BlackRow(2, row)
	require.NoError(t, err)
	assert.Same(t, row, reused)
}

func TestBinarizeBitmapRotates(t *testing.T) {
	src := graySource(t, 60, 40, func(x, y int) byte {
		if x < 30 {
			return 0
		}
		return 255
	})
	bitmap, err := Binarize(src)
	require.NoError(t, err)
	require.True(t, bitmap.RotateSupported())

	rotated, err := bitmap.RotateCounterClockwise()
	require.NoError(t, err)
	assert.Equal(t, 40, rotated.Width())
	assert.Equal(t, 60, rotated.Height())

	m, err := rotated.BlackMatrix()
	require.NoError(t, err)
	// The dark left half ends up at the bottom.
	assert.True(t, m.Get(20, 59))
	assert.False(t, m.Get(20, 0))
}

func TestFactory(t *testing.T) {
	src := graySource(t, 8, 8, func(x, y int) byte { return 0 })
	for name, want := range map[string]any{
		"":          &Hybrid{},
		"hybrid":    &Hybrid{},
		"global":    &GlobalHistogram{},
		"histogram": &GlobalHistogram{},
	} {
		f, err := Factory(name)
		require.NoError(t, err, name)
		assert.IsType(t, want, f(src), name)
	}
	_, err := Factory("otsu")
	assert.ErrorIs(t, err, zxpipe.ErrConfiguration)

	assert.IsType(t, &Hybrid{}, NewHybrid(src).CreateBinarizer(src))
	assert.IsType(t, &GlobalHistogram{}, NewGlobalHistogram(src).CreateBinarizer(src))
}
