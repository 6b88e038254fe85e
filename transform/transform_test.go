package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericlevine/zxpipe"
	"github.com/ericlevine/zxpipe/bitutil"
)

func pt(x, y float64) zxpipe.ResultPoint { return zxpipe.ResultPoint{X: x, Y: y} }

func TestQuadToQuadMapsCorners(t *testing.T) {
	from := Quad{pt(0, 0), pt(10, 0), pt(10, 10), pt(0, 10)}
	to := Quad{pt(3, 5), pt(40, 8), pt(42, 39), pt(1, 30)}
	p := QuadToQuad(from, to)
	for i := range from {
		got := p.Point(from[i])
		assert.InDelta(t, to[i].X, got.X, 1e-6, "corner %d", i)
		assert.InDelta(t, to[i].Y, got.Y, 1e-6, "corner %d", i)
	}
}

func TestQuadToQuadAffine(t *testing.T) {
	from := Quad{pt(0, 0), pt(1, 0), pt(1, 1), pt(0, 1)}
	to := Quad{pt(10, 10), pt(30, 10), pt(30, 30), pt(10, 30)}
	got := QuadToQuad(from, to).Point(pt(0.5, 0.25))
	assert.InDelta(t, 20.0, got.X, 1e-9)
	assert.InDelta(t, 15.0, got.Y, 1e-9)
}

func TestSampleGridScales(t *testing.T) {
	// A 4x4 checkerboard drawn with 5 pixel modules.
	img := bitutil.NewBitMatrix(20)
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			if (x/5+y/5)%2 == 0 {
				img.Set(x, y)
			}
		}
	}
	p := QuadToQuad(
		Quad{pt(0, 0), pt(4, 0), pt(4, 4), pt(0, 4)},
		Quad{pt(0, 0), pt(20, 0), pt(20, 20), pt(0, 20)},
	)
	bits, err := SampleGrid(img, 4, 4, p)
	require.NoError(t, err)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			assert.Equal(t, (x+y)%2 == 0, bits.Get(x, y), "module %d,%d", x, y)
		}
	}
}

func TestSampleGridOutsideImage(t *testing.T) {
	img := bitutil.NewBitMatrix(10)
	p := QuadToQuad(
		Quad{pt(0, 0), pt(4, 0), pt(4, 4), pt(0, 4)},
		Quad{pt(0, 0), pt(40, 0), pt(40, 40), pt(0, 40)},
	)
	_, err := SampleGrid(img, 4, 4, p)
	assert.ErrorIs(t, err, zxpipe.ErrNotFound)

	_, err = SampleGrid(img, 0, 4, p)
	assert.ErrorIs(t, err, zxpipe.ErrNotFound)
}

func TestNudgeEdgePoints(t *testing.T) {
	img := bitutil.NewBitMatrix(10)
	points := []float64{-0.5, 3, 5, 5, 10.2, 10.5}
	require.NoError(t, nudge(img, points))
	assert.Equal(t, []float64{-0.5, 3, 5, 5, 9, 9}, points)
}
