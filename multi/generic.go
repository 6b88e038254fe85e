// Package multi finds several symbols in one image with a single-symbol
// reader by decoding, then searching the regions around each hit.
package multi

import (
	"fmt"
	"slices"

	"github.com/ericlevine/zxpipe"
)

const (
	// Regions narrower than this beside a hit are not searched.
	minDimensionToRecur = 100
	maxDepth            = 4
)

// GenericReader repeatedly runs a delegate Reader. After each symbol it
// recurses into the strips left of, above, right of and below the symbol's
// points. Results are de-duplicated by text and their points translated
// back to the full image.
type GenericReader struct {
	delegate zxpipe.Reader
}

var _ zxpipe.MultipleBarcodeReader = (*GenericReader)(nil)

// NewGenericReader wraps delegate.
func NewGenericReader(delegate zxpipe.Reader) *GenericReader {
	return &GenericReader{delegate: delegate}
}

// DecodeMultiple returns every distinct symbol found, or ErrNotFound.
func (r *GenericReader) DecodeMultiple(image *zxpipe.BinaryBitmap, hints *zxpipe.Hints) ([]*zxpipe.Result, error) {
	s := &search{delegate: r.delegate, hints: hints}
	s.visit(image, 0, 0, 0)
	if len(s.results) == 0 {
		return nil, fmt.Errorf("no symbols in %dx%d image: %w", image.Width(), image.Height(), zxpipe.ErrNotFound)
	}
	return s.results, nil
}

type search struct {
	delegate zxpipe.Reader
	hints    *zxpipe.Hints
	results  []*zxpipe.Result
}

func (s *search) seen(text string) bool {
	return slices.ContainsFunc(s.results, func(r *zxpipe.Result) bool { return r.Text == text })
}

func (s *search) visit(image *zxpipe.BinaryBitmap, xOffset, yOffset, depth int) {
	if depth > maxDepth {
		return
	}
	result, err := s.delegate.Decode(image, s.hints)
	if err != nil {
		return
	}
	if !s.seen(result.Text) {
		s.results = append(s.results, translate(result, xOffset, yOffset))
	}
	if len(result.Points) == 0 || !image.CropSupported() {
		return
	}

	width, height := image.Width(), image.Height()
	minX, minY := float64(width), float64(height)
	maxX, maxY := 0.0, 0.0
	for _, p := range result.Points {
		minX, minY = min(minX, p.X), min(minY, p.Y)
		maxX, maxY = max(maxX, p.X), max(maxY, p.Y)
	}

	recur := func(left, top, w, h int) {
		sub, err := image.Crop(left, top, w, h)
		if err != nil {
			return
		}
		s.visit(sub, xOffset+left, yOffset+top, depth+1)
	}
	if minX > minDimensionToRecur {
		recur(0, 0, int(minX), height)
	}
	if minY > minDimensionToRecur {
		recur(0, 0, width, int(minY))
	}
	if maxX < float64(width-minDimensionToRecur) {
		recur(int(maxX), 0, width-int(maxX), height)
	}
	if maxY < float64(height-minDimensionToRecur) {
		recur(0, int(maxY), width, height-int(maxY))
	}
}

// translate returns result with its points shifted by the crop offset. The
// original is returned when there is nothing to shift.
func translate(result *zxpipe.Result, xOffset, yOffset int) *zxpipe.Result {
	if len(result.Points) == 0 || (xOffset == 0 && yOffset == 0) {
		return result
	}
	points := make([]zxpipe.ResultPoint, len(result.Points))
	for i, p := range result.Points {
		points[i] = zxpipe.ResultPoint{X: p.X + float64(xOffset), Y: p.Y + float64(yOffset)}
	}
	moved := zxpipe.NewResult(result.Text, result.RawBytes, points, result.Format)
	moved.NumBits = result.NumBits
	moved.Timestamp = result.Timestamp
	moved.PutAllMetadata(result.Metadata)
	return moved
}
