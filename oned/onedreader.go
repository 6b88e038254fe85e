// Package oned implements row-scanning readers for linear barcodes.
package oned

import (
	"errors"
	"math"

	"github.com/ericlevine/zxpipe"
	"github.com/ericlevine/zxpipe/bitutil"
)

// RowDecoder decodes a single row of a 1D barcode.
type RowDecoder interface {
	// DecodeRow attempts to decode a barcode from a single row. The row may
	// be modified.
	DecodeRow(rowNumber int, row *bitutil.BitArray, hints *zxpipe.Hints) (*zxpipe.Result, error)
}

// DecodeOneD scans image with decoder. Under try-harder, when nothing is
// found and the image can be rotated, it scans the image turned 90 degrees
// counter-clockwise and reports ORIENTATION 90, added to any orientation
// the row decode already recorded. That is the value the pipeline stamps for
// the same quarter turn.
func DecodeOneD(image *zxpipe.BinaryBitmap, decoder RowDecoder, hints *zxpipe.Hints) (*zxpipe.Result, error) {
	result, err := scanRows(image, decoder, hints)
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, zxpipe.ErrNotFound) || !hints.TryHarder() || !image.RotateSupported() {
		return nil, err
	}
	rotated, rerr := image.RotateCounterClockwise()
	if rerr != nil {
		return nil, err
	}
	result, err = scanRows(rotated, decoder, hints)
	if err != nil {
		return nil, err
	}

	orientation := 90
	if prev, ok := result.Orientation(); ok {
		orientation = (orientation + prev) % 360
	}
	result.PutMetadata(zxpipe.MetadataOrientation, orientation)

	// Map points back into the unrotated frame.
	h := float64(rotated.Height())
	for i, p := range result.Points {
		result.Points[i] = zxpipe.ResultPoint{X: h - p.Y - 1, Y: p.X}
	}
	return result, nil
}

// scanRows tries rows from the middle outward, each forward and reversed.
func scanRows(image *zxpipe.BinaryBitmap, decoder RowDecoder, hints *zxpipe.Hints) (*zxpipe.Result, error) {
	width := image.Width()
	height := image.Height()
	tryHarder := hints.TryHarder()

	shift := 5
	maxLines := 15
	if tryHarder {
		shift = 8
		maxLines = height
	}
	rowStep := max(1, height>>shift)

	middle := height / 2
	for x := 0; x < maxLines; x++ {
		offset := rowStep * ((x + 1) / 2)
		rowNumber := middle - offset
		if x&1 == 0 {
			rowNumber = middle + offset
		}
		if rowNumber < 0 || rowNumber >= height {
			break
		}

		row, err := image.BlackRow(rowNumber)
		if err != nil {
			continue
		}

		for attempt := 0; attempt < 2; attempt++ {
			reversed := attempt == 1
			if reversed {
				row.Reverse()
			}
			result, err := decoder.DecodeRow(rowNumber, row, hints)
			if err != nil {
				continue
			}
			if reversed {
				result.PutMetadata(zxpipe.MetadataOrientation, 180)
				for i := 0; i < len(result.Points) && i < 2; i++ {
					result.Points[i].X = float64(width) - result.Points[i].X - 1
				}
			}
			return result, nil
		}
	}
	return nil, zxpipe.ErrNotFound
}

// findPattern slides a window of len(counters) runs along row from offset
// and returns the [start, end) of the first window match accepts. The first
// run is light when whiteFirst is set.
func findPattern(row *bitutil.BitArray, offset int, whiteFirst bool, counters []int, match func(start, end int) bool) (int, int, bool) {
	clear(counters)
	if whiteFirst {
		offset = row.GetNextUnset(offset)
	} else {
		offset = row.GetNextSet(offset)
	}
	pos, start, white := 0, offset, whiteFirst
	for x := offset; x < row.Size(); x++ {
		if row.Get(x) != white {
			counters[pos]++
			continue
		}
		if pos < len(counters)-1 {
			pos++
			counters[pos] = 1
			white = !white
			continue
		}
		if match(start, x) {
			return start, x, true
		}
		start += counters[0] + counters[1]
		copy(counters, counters[2:])
		counters[pos-1], counters[pos] = 1, 0
		pos--
		white = !white
	}
	return 0, 0, false
}

// RecordPattern records the widths of successive runs of black and white
// pixels in a row, starting at the given position.
func RecordPattern(row *bitutil.BitArray, start int, counters []int) error {
	clear(counters)
	end := row.Size()
	if start >= end {
		return zxpipe.ErrNotFound
	}
	isWhite := !row.Get(start)
	pos := 0
	i := start
	for ; i < end; i++ {
		if row.Get(i) != isWhite {
			counters[pos]++
			continue
		}
		pos++
		if pos == len(counters) {
			break
		}
		counters[pos] = 1
		isWhite = !isWhite
	}
	if pos != len(counters) && !(pos == len(counters)-1 && i == end) {
		return zxpipe.ErrNotFound
	}
	return nil
}

// PatternMatchVariance determines how closely observed counter widths match
// a target pattern. Returns the ratio of total variance to pattern size, or
// +Inf if any single counter is off by more than maxIndividualVariance.
func PatternMatchVariance(counters []int, pattern []int, maxIndividualVariance float64) float64 {
	total, patternLength := 0, 0
	for i := range counters {
		total += counters[i]
		patternLength += pattern[i]
	}
	if total < patternLength {
		return math.Inf(1)
	}

	unitBarWidth := float64(total) / float64(patternLength)
	maxIndividualVariance *= unitBarWidth

	totalVariance := 0.0
	for i, c := range counters {
		variance := math.Abs(float64(c) - float64(pattern[i])*unitBarWidth)
		if variance > maxIndividualVariance {
			return math.Inf(1)
		}
		totalVariance += variance
	}
	return totalVariance / float64(total)
}
