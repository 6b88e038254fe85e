package zxpipe

import (
	"fmt"
	"image"
	"image/color"
)

// PlanarSource is a LuminanceSource over a row-major 8-bit grayscale buffer.
// It views a window of a larger data grid so crops share the backing array.
type PlanarSource struct {
	data       []byte
	dataWidth  int
	dataHeight int
	left       int
	top        int
	width      int
	height     int
}

// NewPlanarSource creates a source over the left/top/width/height window of
// a dataWidth x dataHeight buffer. The source keeps data, so the caller must
// not modify it afterwards.
func NewPlanarSource(data []byte, dataWidth, dataHeight, left, top, width, height int) (*PlanarSource, error) {
	switch {
	case data == nil:
		return nil, fmt.Errorf("nil luminance buffer: %w", ErrInvalidInput)
	case dataWidth <= 0 || dataHeight <= 0:
		return nil, fmt.Errorf("degenerate dimensions %dx%d: %w", dataWidth, dataHeight, ErrInvalidInput)
	case len(data) < dataWidth*dataHeight:
		return nil, fmt.Errorf("buffer holds %d bytes, need %d: %w", len(data), dataWidth*dataHeight, ErrInvalidInput)
	case width <= 0 || height <= 0 || left < 0 || top < 0 ||
		left+width > dataWidth || top+height > dataHeight:
		return nil, fmt.Errorf("crop rectangle does not fit inside the image data: %w", ErrInvalidInput)
	}
	return &PlanarSource{
		data:       data,
		dataWidth:  dataWidth,
		dataHeight: dataHeight,
		left:       left,
		top:        top,
		width:      width,
		height:     height,
	}, nil
}

// NewGraySource creates a source over a copy of a width x height grayscale
// buffer.
func NewGraySource(data []byte, width, height int) (*PlanarSource, error) {
	s, err := grayView(data, width, height)
	if err != nil {
		return nil, err
	}
	s.data = append([]byte(nil), data[:width*height]...)
	return s, nil
}

// grayView is NewGraySource without the copy, for buffers built here.
func grayView(data []byte, width, height int) (*PlanarSource, error) {
	return NewPlanarSource(data, width, height, 0, 0, width, height)
}

// NewImageSource converts img to luminance. Fully transparent pixels become
// white. *image.Gray is copied without conversion.
func NewImageSource(img image.Image) (*PlanarSource, error) {
	if img == nil {
		return nil, fmt.Errorf("nil image: %w", ErrInvalidInput)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("degenerate image %dx%d: %w", w, h, ErrInvalidInput)
	}
	lum := make([]byte, w*h)

	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < h; y++ {
			off := g.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(lum[y*w:], g.Pix[off:off+w])
		}
		return grayView(lum, w, h)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			if a == 0 {
				lum[y*w+x] = 0xFF
				continue
			}
			lum[y*w+x] = luminance(r>>8, g>>8, b>>8)
		}
	}
	return grayView(lum, w, h)
}

// luminance weights 8-bit channels as (306R + 601G + 117B) / 1024, rounded.
func luminance(r, g, b uint32) byte {
	return byte((306*r + 601*g + 117*b + 0x200) >> 10)
}

func (s *PlanarSource) Row(y int, row []byte) []byte {
	if y < 0 || y >= s.height {
		panic(fmt.Sprintf("requested row is outside the image: %d", y))
	}
	if len(row) < s.width {
		row = make([]byte, s.width)
	}
	off := (y+s.top)*s.dataWidth + s.left
	copy(row, s.data[off:off+s.width])
	return row
}

func (s *PlanarSource) Matrix() []byte {
	if s.width == s.dataWidth && s.height == s.dataHeight {
		return s.data[:s.width*s.height]
	}
	m := make([]byte, s.width*s.height)
	off := s.top*s.dataWidth + s.left
	if s.width == s.dataWidth {
		copy(m, s.data[off:off+len(m)])
		return m
	}
	for y := 0; y < s.height; y++ {
		copy(m[y*s.width:], s.data[off:off+s.width])
		off += s.dataWidth
	}
	return m
}

func (s *PlanarSource) Width() int  { return s.width }
func (s *PlanarSource) Height() int { return s.height }

func (s *PlanarSource) CropSupported() bool { return true }

func (s *PlanarSource) Crop(left, top, width, height int) (LuminanceSource, error) {
	if left < 0 || top < 0 || width <= 0 || height <= 0 ||
		left+width > s.width || top+height > s.height {
		return nil, fmt.Errorf("crop %dx%d+%d+%d outside %dx%d: %w",
			width, height, left, top, s.width, s.height, ErrInvalidInput)
	}
	return NewPlanarSource(s.data, s.dataWidth, s.dataHeight, s.left+left, s.top+top, width, height)
}

func (s *PlanarSource) RotateSupported() bool { return true }

// RotateCounterClockwise maps (x, y) to (y, width-1-x).
func (s *PlanarSource) RotateCounterClockwise() (LuminanceSource, error) {
	src := s.Matrix()
	newWidth, newHeight := s.height, s.width
	rotated := make([]byte, newWidth*newHeight)
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			rotated[(s.width-1-x)*newWidth+y] = src[y*s.width+x]
		}
	}
	return grayView(rotated, newWidth, newHeight)
}

func (s *PlanarSource) Invert() LuminanceSource {
	return NewInvertedSource(s)
}

// Image renders the source as a grayscale image.
func (s *PlanarSource) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, s.width, s.height))
	copy(img.Pix, s.Matrix())
	return img
}

// BitMatrixToImage converts a black/white matrix to a grayscale image where
// set modules are black.
func BitMatrixToImage(matrix interface {
	Width() int
	Height() int
	Get(x, y int) bool
}) *image.Gray {
	w, h := matrix.Width(), matrix.Height()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if matrix.Get(x, y) {
				img.SetGray(x, y, color.Gray{Y: 0})
			} else {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}
