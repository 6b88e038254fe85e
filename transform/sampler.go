package transform

import (
	"fmt"

	"github.com/ericlevine/zxpipe"
	"github.com/ericlevine/zxpipe/bitutil"
)

// SampleGrid reads a dimX by dimY module grid from image, taking each
// module at the image point p maps the module center to.
func SampleGrid(image *bitutil.BitMatrix, dimX, dimY int, p *Perspective) (*bitutil.BitMatrix, error) {
	if dimX <= 0 || dimY <= 0 {
		return nil, fmt.Errorf("sample grid %dx%d: %w", dimX, dimY, zxpipe.ErrNotFound)
	}
	bits := bitutil.NewBitMatrixWithSize(dimX, dimY)
	row := make([]float64, 2*dimX)
	for y := 0; y < dimY; y++ {
		for x := 0; x < dimX; x++ {
			row[2*x] = float64(x) + 0.5
			row[2*x+1] = float64(y) + 0.5
		}
		p.Apply(row)
		if err := nudge(image, row); err != nil {
			return nil, err
		}
		for x := 0; x < dimX; x++ {
			ix, iy := int(row[2*x]), int(row[2*x+1])
			if ix < 0 || ix >= image.Width() || iy < 0 || iy >= image.Height() {
				return nil, fmt.Errorf("module (%d,%d) maps outside the image: %w", x, y, zxpipe.ErrNotFound)
			}
			if image.Get(ix, iy) {
				bits.Set(x, y)
			}
		}
	}
	return bits, nil
}

// nudge pulls points lying one pixel off the image back onto its edge,
// walking in from both ends of the row until a point needs no nudge.
// Anything further out is an error.
func nudge(image *bitutil.BitMatrix, points []float64) error {
	w, h := image.Width(), image.Height()
	fix := func(i int) (bool, error) {
		x, y := int(points[i]), int(points[i+1])
		if x < -1 || x > w || y < -1 || y > h {
			return false, fmt.Errorf("point (%d,%d) outside %dx%d image: %w", x, y, w, h, zxpipe.ErrNotFound)
		}
		moved := false
		switch x {
		case -1:
			points[i], moved = 0, true
		case w:
			points[i], moved = float64(w-1), true
		}
		switch y {
		case -1:
			points[i+1], moved = 0, true
		case h:
			points[i+1], moved = float64(h-1), true
		}
		return moved, nil
	}
	for i := 0; i+1 < len(points); i += 2 {
		moved, err := fix(i)
		if err != nil {
			return err
		}
		if !moved {
			break
		}
	}
	for i := len(points) - 2; i >= 0; i -= 2 {
		moved, err := fix(i)
		if err != nil {
			return err
		}
		if !moved {
			break
		}
	}
	return nil
}
