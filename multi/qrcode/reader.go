// Package qrcode reads every QR symbol in an image in one pass and merges
// structured append sequences.
package qrcode

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/ericlevine/zxpipe"
	"github.com/ericlevine/zxpipe/qrcode"
	"github.com/ericlevine/zxpipe/qrcode/decoder"
	"github.com/ericlevine/zxpipe/qrcode/detector"
)

// Reader detects all finder pattern triples in a bitmap and decodes each
// one. It is used instead of region splitting when QR is the only format
// wanted.
type Reader struct {
	dec *decoder.Decoder
}

var (
	_ zxpipe.MultipleBarcodeReader = (*Reader)(nil)
	_ zxpipe.Reader                = (*Reader)(nil)
)

// NewReader creates a Reader.
func NewReader() *Reader {
	return &Reader{dec: decoder.NewDecoder()}
}

// DecodeMultiple returns every symbol that decodes. Symbols that are
// located but fail to decode are skipped. Structured append parts are
// merged into one result appended after the standalone ones.
func (r *Reader) DecodeMultiple(image *zxpipe.BinaryBitmap, hints *zxpipe.Hints) ([]*zxpipe.Result, error) {
	matrix, err := image.BlackMatrix()
	if err != nil {
		return nil, err
	}
	detected, err := detector.DetectMulti(matrix, hints.TryHarder())
	if err != nil {
		return nil, err
	}

	var results []*zxpipe.Result
	for _, det := range detected {
		dr, err := r.dec.Decode(det.Bits, hints.CharacterSet())
		if err != nil {
			continue
		}
		points := slices.Clone(det.Points)
		if dr.Mirrored && len(points) >= 3 {
			points[0], points[2] = points[2], points[0]
		}
		results = append(results, qrcode.NewResult(dr, points))
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%d candidate symbols, none decoded: %w", len(detected), zxpipe.ErrNotFound)
	}
	return MergeStructuredAppend(results), nil
}

// Decode returns the first symbol DecodeMultiple finds.
func (r *Reader) Decode(image *zxpipe.BinaryBitmap, hints *zxpipe.Hints) (*zxpipe.Result, error) {
	results, err := r.DecodeMultiple(image, hints)
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// Reset is a no-op.
func (r *Reader) Reset() {}

// MergeStructuredAppend replaces the results carrying a structured append
// sequence number with one result whose text, raw bytes and byte segments
// are the parts concatenated in sequence order. Other results pass through
// unchanged. The merged result has no points.
func MergeStructuredAppend(results []*zxpipe.Result) []*zxpipe.Result {
	var standalone, parts []*zxpipe.Result
	for _, res := range results {
		if _, ok := sequence(res); ok {
			parts = append(parts, res)
		} else {
			standalone = append(standalone, res)
		}
	}
	if len(parts) == 0 {
		return results
	}

	slices.SortStableFunc(parts, func(a, b *zxpipe.Result) int {
		sa, _ := sequence(a)
		sb, _ := sequence(b)
		return cmp.Compare(sa, sb)
	})

	var (
		text    strings.Builder
		raw     []byte
		segment []byte
	)
	for _, p := range parts {
		text.WriteString(p.Text)
		raw = append(raw, p.RawBytes...)
		if segs, ok := p.Metadata[zxpipe.MetadataByteSegments].([][]byte); ok {
			for _, s := range segs {
				segment = append(segment, s...)
			}
		}
	}

	merged := zxpipe.NewResult(text.String(), raw, nil, zxpipe.FormatQRCode)
	if len(segment) > 0 {
		merged.PutMetadata(zxpipe.MetadataByteSegments, [][]byte{segment})
	}
	return append(standalone, merged)
}

func sequence(r *zxpipe.Result) (int, bool) {
	v, ok := r.Metadata[zxpipe.MetadataStructuredAppendSequence]
	if !ok {
		return 0, false
	}
	n, ok := v.(int)
	return n, ok
}
