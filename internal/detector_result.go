package internal

import (
	"github.com/ericlevine/zxpipe"
	"github.com/ericlevine/zxpipe/bitutil"
)

// DetectorResult is a sampled module grid plus the image points it was
// sampled from.
type DetectorResult struct {
	Bits   *bitutil.BitMatrix
	Points []zxpipe.ResultPoint
}

// NewDetectorResult creates a new DetectorResult.
func NewDetectorResult(bits *bitutil.BitMatrix, points []zxpipe.ResultPoint) *DetectorResult {
	return &DetectorResult{Bits: bits, Points: points}
}
