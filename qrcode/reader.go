// Package qrcode reads QR Code symbols.
package qrcode

import (
	"fmt"
	"math"

	"github.com/ericlevine/zxpipe"
	"github.com/ericlevine/zxpipe/bitutil"
	"github.com/ericlevine/zxpipe/internal"
	"github.com/ericlevine/zxpipe/qrcode/decoder"
	"github.com/ericlevine/zxpipe/qrcode/detector"
)

// Reader locates and decodes a single QR symbol.
type Reader struct {
	dec *decoder.Decoder
}

// NewReader creates a Reader.
func NewReader() *Reader {
	return &Reader{dec: decoder.NewDecoder()}
}

// Decode reads one symbol from image. With PureBarcode set the image must
// hold nothing but an upright symbol on a light border, and no finder
// search is done. hints may be nil.
func (r *Reader) Decode(image *zxpipe.BinaryBitmap, hints *zxpipe.Hints) (*zxpipe.Result, error) {
	matrix, err := image.BlackMatrix()
	if err != nil {
		return nil, err
	}

	var (
		dr     *internal.DecoderResult
		points []zxpipe.ResultPoint
	)
	if hints.PureBarcode() {
		bits, err := extractPureBits(matrix)
		if err != nil {
			return nil, err
		}
		if dr, err = r.dec.Decode(bits, hints.CharacterSet()); err != nil {
			return nil, err
		}
	} else {
		det, err := detector.NewDetector(matrix).Detect(hints.TryHarder(), false)
		if err != nil {
			return nil, err
		}
		if dr, err = r.dec.Decode(det.Bits, hints.CharacterSet()); err != nil {
			return nil, err
		}
		points = det.Points
	}

	// A transposed read sees bottom-left and top-right swapped.
	if dr.Mirrored && len(points) >= 3 {
		points[0], points[2] = points[2], points[0]
	}
	return NewResult(dr, points), nil
}

// Reset is a no-op; the reader keeps no state between images.
func (r *Reader) Reset() {}

// NewResult converts a decoder result into a Result carrying the QR
// metadata: byte segments, EC level, structured append, errors corrected
// and the "]Qm" symbology identifier.
func NewResult(dr *internal.DecoderResult, points []zxpipe.ResultPoint) *zxpipe.Result {
	result := zxpipe.NewResult(dr.Text, dr.RawBytes, points, zxpipe.FormatQRCode)
	if len(dr.ByteSegments) > 0 {
		result.PutMetadata(zxpipe.MetadataByteSegments, dr.ByteSegments)
	}
	if dr.ECLevel != "" {
		result.PutMetadata(zxpipe.MetadataErrorCorrectionLevel, dr.ECLevel)
	}
	if sa := dr.Append; sa != nil {
		result.PutMetadata(zxpipe.MetadataStructuredAppendSequence, sa.Sequence)
		result.PutMetadata(zxpipe.MetadataStructuredAppendParity, sa.Parity)
	}
	result.PutMetadata(zxpipe.MetadataErrorsCorrected, dr.ErrorsCorrected)
	result.PutMetadata(zxpipe.MetadataSymbologyIdentifier, fmt.Sprintf("]Q%d", dr.SymbologyModifier))
	return result
}

// extractPureBits samples a symbol that is the only dark content of image,
// upright and unskewed.
func extractPureBits(image *bitutil.BitMatrix) (*bitutil.BitMatrix, error) {
	topLeft := image.TopLeftOnBit()
	bottomRight := image.BottomRightOnBit()
	if topLeft == nil || bottomRight == nil {
		return nil, fmt.Errorf("pure barcode: empty image: %w", zxpipe.ErrNotFound)
	}
	moduleSize, err := pureModuleSize(topLeft, image)
	if err != nil {
		return nil, err
	}

	top, bottom := topLeft[1], bottomRight[1]
	left, right := topLeft[0], bottomRight[0]
	if left >= right || top >= bottom {
		return nil, fmt.Errorf("pure barcode: degenerate bounds: %w", zxpipe.ErrNotFound)
	}
	if bottom-top != right-left {
		// Assume square and trust the height.
		right = left + (bottom - top)
		if right >= image.Width() {
			return nil, fmt.Errorf("pure barcode: not square: %w", zxpipe.ErrNotFound)
		}
	}

	cols := int(math.Round(float64(right-left+1) / moduleSize))
	rows := int(math.Round(float64(bottom-top+1) / moduleSize))
	if cols <= 0 || rows <= 0 || rows != cols {
		return nil, fmt.Errorf("pure barcode: %dx%d modules: %w", cols, rows, zxpipe.ErrNotFound)
	}

	// Sample module centers, pulling back any that land past the edge.
	nudge := int(moduleSize / 2)
	top += nudge
	left += nudge
	if over := left + int(float64(cols-1)*moduleSize) - right; over > 0 {
		if over > nudge {
			return nil, fmt.Errorf("pure barcode: module grid overruns right edge: %w", zxpipe.ErrNotFound)
		}
		left -= over
	}
	if over := top + int(float64(rows-1)*moduleSize) - bottom; over > 0 {
		if over > nudge {
			return nil, fmt.Errorf("pure barcode: module grid overruns bottom edge: %w", zxpipe.ErrNotFound)
		}
		top -= over
	}

	bits := bitutil.NewBitMatrix(cols)
	for y := 0; y < rows; y++ {
		py := top + int(float64(y)*moduleSize)
		for x := 0; x < cols; x++ {
			if image.Get(left+int(float64(x)*moduleSize), py) {
				bits.Set(x, y)
			}
		}
	}
	return bits, nil
}

// pureModuleSize walks the diagonal of the top-left finder pattern, which
// crosses five edges over seven modules.
func pureModuleSize(topLeft []int, image *bitutil.BitMatrix) (float64, error) {
	x, y := topLeft[0], topLeft[1]
	inBlack := true
	transitions := 0
	for x < image.Width() && y < image.Height() {
		if inBlack != image.Get(x, y) {
			if transitions++; transitions == 5 {
				break
			}
			inBlack = !inBlack
		}
		x++
		y++
	}
	if x == image.Width() || y == image.Height() {
		return 0, fmt.Errorf("pure barcode: finder diagonal runs off image: %w", zxpipe.ErrNotFound)
	}
	return float64(x-topLeft[0]) / 7, nil
}
