package zxpipe

import "github.com/ericlevine/zxpipe/bitutil"

// LuminanceSource provides access to greyscale luminance values for an image.
// Implementations are immutable: Crop, RotateCounterClockwise and Invert
// return new sources.
type LuminanceSource interface {
	// Row returns a row of luminance data. If row is non-nil and large enough,
	// it should be reused.
	Row(y int, row []byte) []byte

	// Matrix returns the entire luminance matrix, row-major, Width*Height bytes.
	// Callers must not modify the returned slice.
	Matrix() []byte

	Width() int
	Height() int

	// CropSupported reports whether Crop is available.
	CropSupported() bool
	// Crop returns the given sub-rectangle as a new source.
	Crop(left, top, width, height int) (LuminanceSource, error)

	// RotateSupported reports whether RotateCounterClockwise is available.
	RotateSupported() bool
	// RotateCounterClockwise returns the source turned 90 degrees
	// counter-clockwise.
	RotateCounterClockwise() (LuminanceSource, error)

	// Invert returns a source where black is white and white is black.
	Invert() LuminanceSource
}

// Binarizer converts luminance data to 1-bit black/white data. A Binarizer is
// bound to one source and may cache what it computes from it.
type Binarizer interface {
	// BlackRow returns a row of black/white values.
	BlackRow(y int, row *bitutil.BitArray) (*bitutil.BitArray, error)

	// BlackMatrix returns the 2D matrix of black/white values.
	BlackMatrix() (*bitutil.BitMatrix, error)

	// LuminanceSource returns the underlying LuminanceSource.
	LuminanceSource() LuminanceSource

	// CreateBinarizer returns a fresh binarizer of the same kind bound to source.
	CreateBinarizer(source LuminanceSource) Binarizer

	Width() int
	Height() int
}

// BinarizerFactory builds a Binarizer for a source.
type BinarizerFactory func(source LuminanceSource) Binarizer

// InvertedSource wraps a source and inverts its luminance values.
type InvertedSource struct {
	delegate LuminanceSource
}

// NewInvertedSource returns delegate with every sample inverted.
func NewInvertedSource(delegate LuminanceSource) *InvertedSource {
	return &InvertedSource{delegate: delegate}
}

func (s *InvertedSource) Row(y int, row []byte) []byte {
	row = s.delegate.Row(y, row)
	for i := 0; i < s.Width() && i < len(row); i++ {
		row[i] = 255 - row[i]
	}
	return row
}

func (s *InvertedSource) Matrix() []byte {
	m := s.delegate.Matrix()
	out := make([]byte, s.Width()*s.Height())
	for i := range out {
		out[i] = 255 - m[i]
	}
	return out
}

func (s *InvertedSource) Width() int  { return s.delegate.Width() }
func (s *InvertedSource) Height() int { return s.delegate.Height() }

func (s *InvertedSource) CropSupported() bool { return s.delegate.CropSupported() }

func (s *InvertedSource) Crop(left, top, width, height int) (LuminanceSource, error) {
	c, err := s.delegate.Crop(left, top, width, height)
	if err != nil {
		return nil, err
	}
	return NewInvertedSource(c), nil
}

func (s *InvertedSource) RotateSupported() bool { return s.delegate.RotateSupported() }

func (s *InvertedSource) RotateCounterClockwise() (LuminanceSource, error) {
	r, err := s.delegate.RotateCounterClockwise()
	if err != nil {
		return nil, err
	}
	return NewInvertedSource(r), nil
}

// Invert returns the original source.
func (s *InvertedSource) Invert() LuminanceSource { return s.delegate }
