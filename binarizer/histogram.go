// Package binarizer turns luminance sources into black/white bitmaps.
//
// Hybrid is the default. It thresholds each 8x8 block against the average
// black point of its 5x5 block neighbourhood, which copes with shadows and
// gradients. GlobalHistogram picks one threshold for the whole source and
// is used by Hybrid for sources too small to split into blocks.
package binarizer

import (
	"fmt"

	"github.com/ericlevine/zxpipe"
	"github.com/ericlevine/zxpipe/bitutil"
)

const (
	histogramBits  = 5
	histogramShift = 8 - histogramBits
	numBuckets     = 1 << histogramBits
)

type histogram [numBuckets]int

func (h *histogram) add(samples []byte) {
	for _, s := range samples {
		h[s>>histogramShift]++
	}
}

// GlobalHistogram thresholds a source at the valley between the two
// dominant peaks of its luminance histogram.
type GlobalHistogram struct {
	source zxpipe.LuminanceSource
	row    []byte
	matrix *bitutil.BitMatrix
}

// NewGlobalHistogram binds a GlobalHistogram binarizer to source.
func NewGlobalHistogram(source zxpipe.LuminanceSource) *GlobalHistogram {
	return &GlobalHistogram{source: source}
}

func (g *GlobalHistogram) LuminanceSource() zxpipe.LuminanceSource { return g.source }
func (g *GlobalHistogram) Width() int                               { return g.source.Width() }
func (g *GlobalHistogram) Height() int                              { return g.source.Height() }

// CreateBinarizer returns a GlobalHistogram bound to source.
func (g *GlobalHistogram) CreateBinarizer(source zxpipe.LuminanceSource) zxpipe.Binarizer {
	return NewGlobalHistogram(source)
}

// BlackRow thresholds row y against a histogram of that row alone and
// sharpens with a [-1 4 -1]/2 kernel. row is reused when large enough.
func (g *GlobalHistogram) BlackRow(y int, row *bitutil.BitArray) (*bitutil.BitArray, error) {
	if err := checkSource(g.source); err != nil {
		return nil, err
	}
	width, height := g.source.Width(), g.source.Height()
	if y < 0 || y >= height {
		return nil, fmt.Errorf("row %d outside source of height %d: %w", y, height, zxpipe.ErrInvalidInput)
	}
	if row == nil || row.Size() < width {
		row = bitutil.NewBitArray(width)
	} else {
		row.Clear()
	}

	if len(g.row) < width {
		g.row = make([]byte, width)
	}
	samples := g.source.Row(y, g.row)[:width]
	var h histogram
	h.add(samples)
	blackPoint, err := h.blackPoint()
	if err != nil {
		return nil, fmt.Errorf("row %d: %w", y, err)
	}

	if width < 3 {
		for x, s := range samples {
			if int(s) < blackPoint {
				row.Set(x)
			}
		}
		return row, nil
	}
	left, center := int(samples[0]), int(samples[1])
	for x := 1; x < width-1; x++ {
		right := int(samples[x+1])
		if (4*center-left-right)/2 < blackPoint {
			row.Set(x)
		}
		left, center = center, right
	}
	return row, nil
}

// BlackMatrix thresholds the whole source at a single black point taken
// from four rows through the central three fifths of the image.
func (g *GlobalHistogram) BlackMatrix() (*bitutil.BitMatrix, error) {
	if g.matrix != nil {
		return g.matrix, nil
	}
	if err := checkSource(g.source); err != nil {
		return nil, err
	}
	width, height := g.source.Width(), g.source.Height()

	if len(g.row) < width {
		g.row = make([]byte, width)
	}
	var h histogram
	for i := 1; i < 5; i++ {
		samples := g.source.Row(height*i/5, g.row)
		h.add(samples[width/5 : width*4/5])
	}
	blackPoint, err := h.blackPoint()
	if err != nil {
		return nil, err
	}

	luminances := g.source.Matrix()
	matrix := bitutil.NewBitMatrixWithSize(width, height)
	for y := 0; y < height; y++ {
		line := luminances[y*width : (y+1)*width]
		for x, s := range line {
			if int(s) < blackPoint {
				matrix.Set(x, y)
			}
		}
	}
	g.matrix = matrix
	return matrix, nil
}

// blackPoint finds the two tallest, well separated peaks and returns the
// luminance of the deepest valley between them. A histogram with a single
// peak has no usable contrast and yields ErrNotFound.
func (h *histogram) blackPoint() (int, error) {
	firstPeak, tallest := 0, 0
	for i, n := range h {
		if n > tallest {
			firstPeak, tallest = i, n
		}
	}

	// Favour peaks far from the first one.
	secondPeak, bestScore := 0, 0
	for i, n := range h {
		d := i - firstPeak
		if score := n * d * d; score > bestScore {
			secondPeak, bestScore = i, score
		}
	}
	if firstPeak > secondPeak {
		firstPeak, secondPeak = secondPeak, firstPeak
	}
	if secondPeak-firstPeak <= numBuckets/16 {
		return 0, fmt.Errorf("histogram has no contrast: %w", zxpipe.ErrNotFound)
	}

	valley, valleyScore := secondPeak-1, -1
	for i := secondPeak - 1; i > firstPeak; i-- {
		fromFirst := i - firstPeak
		score := fromFirst * fromFirst * (secondPeak - i) * (tallest - h[i])
		if score > valleyScore {
			valley, valleyScore = i, score
		}
	}
	return valley << histogramShift, nil
}
