package oned

import (
	"fmt"

	"github.com/ericlevine/zxpipe"
	"github.com/ericlevine/zxpipe/bitutil"
)

const (
	upceanMaxAvgVariance        = 0.48
	upceanMaxIndividualVariance = 0.7
)

var (
	upceanGuard  = []int{1, 1, 1}
	upceanMiddle = []int{1, 1, 1, 1, 1}
)

// digitPatterns holds the L patterns for 0-9 followed by the mirrored G
// patterns for 10-19.
var digitPatterns = func() [][]int {
	l := [][]int{
		{3, 2, 1, 1}, {2, 2, 2, 1}, {2, 1, 2, 2}, {1, 4, 1, 1}, {1, 1, 3, 2},
		{1, 2, 3, 1}, {1, 1, 1, 4}, {1, 3, 1, 2}, {1, 2, 1, 3}, {3, 1, 1, 2},
	}
	all := make([][]int, 0, 20)
	all = append(all, l...)
	for _, p := range l {
		all = append(all, []int{p[3], p[2], p[1], p[0]})
	}
	return all
}()

// ean13Parity maps the first digit of an EAN-13 to the G/L parity of the
// six left-hand digits, G as 1, most significant digit first.
var ean13Parity = [10]int{0x00, 0x0B, 0x0D, 0x0E, 0x13, 0x19, 0x1C, 0x15, 0x16, 0x1A}

// EANReader decodes EAN-13 or EAN-8 symbols. UPC-A is EAN-13 with a
// leading zero and is reported without it.
type EANReader struct {
	format zxpipe.Format
}

// NewEAN13Reader creates an EAN-13 reader.
func NewEAN13Reader() *EANReader { return &EANReader{format: zxpipe.FormatEAN13} }

// NewEAN8Reader creates an EAN-8 reader.
func NewEAN8Reader() *EANReader { return &EANReader{format: zxpipe.FormatEAN8} }

// NewUPCAReader creates a UPC-A reader.
func NewUPCAReader() *EANReader { return &EANReader{format: zxpipe.FormatUPCA} }

// Decode scans image for a symbol of the reader's format.
func (r *EANReader) Decode(image *zxpipe.BinaryBitmap, hints *zxpipe.Hints) (*zxpipe.Result, error) {
	return DecodeOneD(image, r, hints)
}

// Reset is a no-op.
func (r *EANReader) Reset() {}

// DecodeRow decodes guard, left half, middle guard, right half and end
// guard, then verifies the check digit.
func (r *EANReader) DecodeRow(rowNumber int, row *bitutil.BitArray, hints *zxpipe.Hints) (*zxpipe.Result, error) {
	start, err := findStartGuard(row)
	if err != nil {
		return nil, err
	}

	half := 6
	if r.format == zxpipe.FormatEAN8 {
		half = 4
	}
	digits := make([]byte, 0, 2*half+1)
	counters := make([]int, 4)
	offset := start[1]

	parity := 0
	for i := 0; i < half; i++ {
		d, err := decodeDigit(row, counters, offset, r.format != zxpipe.FormatEAN8)
		if err != nil {
			return nil, err
		}
		if d >= 10 {
			parity |= 1 << (half - 1 - i)
		}
		digits = append(digits, byte('0'+d%10))
		offset += sum(counters)
	}
	if r.format != zxpipe.FormatEAN8 {
		first := -1
		for d, p := range ean13Parity {
			if p == parity {
				first = d
				break
			}
		}
		if first < 0 {
			return nil, fmt.Errorf("ean-13 parity %#x: %w", parity, zxpipe.ErrNotFound)
		}
		digits = append([]byte{byte('0' + first)}, digits...)
	}

	middle, err := findGuard(row, offset, true, upceanMiddle)
	if err != nil {
		return nil, err
	}
	offset = middle[1]
	for i := 0; i < half; i++ {
		d, err := decodeDigit(row, counters, offset, false)
		if err != nil {
			return nil, err
		}
		digits = append(digits, byte('0'+d))
		offset += sum(counters)
	}

	end, err := findGuard(row, offset, false, upceanGuard)
	if err != nil {
		return nil, err
	}
	quietEnd := end[1] + (end[1] - end[0])
	if quietEnd >= row.Size() || !row.IsRange(end[1], quietEnd, false) {
		return nil, fmt.Errorf("no quiet zone after end guard: %w", zxpipe.ErrNotFound)
	}

	text := string(digits)
	if !validCheckDigit(text) {
		return nil, fmt.Errorf("check digit of %s: %w", text, zxpipe.ErrChecksum)
	}

	symbology := "]E0"
	switch r.format {
	case zxpipe.FormatEAN8:
		symbology = "]E4"
	case zxpipe.FormatUPCA:
		if text[0] != '0' {
			return nil, fmt.Errorf("%s is not a UPC-A number: %w", text, zxpipe.ErrFormat)
		}
		text = text[1:]
	}

	y := float64(rowNumber)
	res := zxpipe.NewResult(text, nil, []zxpipe.ResultPoint{
		{X: float64(start[0]+start[1]) / 2, Y: y},
		{X: float64(end[0]+end[1]) / 2, Y: y},
	}, r.format)
	res.PutMetadata(zxpipe.MetadataSymbologyIdentifier, symbology)
	return res, nil
}

// validCheckDigit applies the UPC/EAN weighting of 3 and 1 from the right.
func validCheckDigit(s string) bool {
	if len(s) < 2 {
		return false
	}
	total := 0
	for i := len(s) - 2; i >= 0; i-- {
		d := int(s[i] - '0')
		if d < 0 || d > 9 {
			return false
		}
		if (len(s)-2-i)%2 == 0 {
			d *= 3
		}
		total += d
	}
	return (10-total%10)%10 == int(s[len(s)-1]-'0')
}

func findStartGuard(row *bitutil.BitArray) ([2]int, error) {
	next := 0
	for {
		r, err := findGuard(row, next, false, upceanGuard)
		if err != nil {
			return r, err
		}
		next = r[1]
		quietStart := r[0] - (r[1] - r[0])
		if quietStart >= 0 && row.IsRange(quietStart, r[0], false) {
			return r, nil
		}
	}
}

// findGuard returns the [start, end) of the first run sequence from offset
// that matches pattern, starting on a space when whiteFirst.
func findGuard(row *bitutil.BitArray, offset int, whiteFirst bool, pattern []int) ([2]int, error) {
	counters := make([]int, len(pattern))
	start, end, ok := findPattern(row, offset, whiteFirst, counters, func(int, int) bool {
		return PatternMatchVariance(counters, pattern, upceanMaxIndividualVariance) < upceanMaxAvgVariance
	})
	if !ok {
		return [2]int{}, fmt.Errorf("no guard from %d: %w", offset, zxpipe.ErrNotFound)
	}
	return [2]int{start, end}, nil
}

// decodeDigit matches the four runs at offset against the L patterns, and
// the G patterns too when withG is set. G matches are returned as 10-19.
func decodeDigit(row *bitutil.BitArray, counters []int, offset int, withG bool) (int, error) {
	if err := RecordPattern(row, offset, counters); err != nil {
		return 0, err
	}
	patterns := digitPatterns[:10]
	if withG {
		patterns = digitPatterns
	}
	best, bestVariance := -1, upceanMaxAvgVariance
	for i, p := range patterns {
		if v := PatternMatchVariance(counters, p, upceanMaxIndividualVariance); v < bestVariance {
			best, bestVariance = i, v
		}
	}
	if best < 0 {
		return 0, fmt.Errorf("no digit at %d: %w", offset, zxpipe.ErrNotFound)
	}
	return best, nil
}
