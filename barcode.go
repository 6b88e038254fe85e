// Package zxpipe turns grayscale pixel grids into decoded barcode results.
//
// The pipeline runs LuminanceSource -> Binarizer -> BinaryBitmap -> Reader.
// Symbology packages register their readers with RegisterReader; the
// pipeline package drives rotation retries and state reuse on top.
package zxpipe

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Format represents a barcode format.
type Format int

const (
	FormatQRCode Format = iota
	FormatPDF417
	FormatCode128
	FormatCode39
	FormatEAN13
	FormatEAN8
	FormatUPCA
	FormatUPCE
	FormatITF
	FormatCodabar
	FormatDataMatrix
	FormatAztec
)

var formatNames = [...]string{
	FormatQRCode:     "QR_CODE",
	FormatPDF417:     "PDF_417",
	FormatCode128:    "CODE_128",
	FormatCode39:     "CODE_39",
	FormatEAN13:      "EAN_13",
	FormatEAN8:       "EAN_8",
	FormatUPCA:       "UPC_A",
	FormatUPCE:       "UPC_E",
	FormatITF:        "ITF",
	FormatCodabar:    "CODABAR",
	FormatDataMatrix: "DATA_MATRIX",
	FormatAztec:      "AZTEC",
}

// String returns the name of the barcode format.
func (f Format) String() string {
	if f >= 0 && int(f) < len(formatNames) {
		return formatNames[f]
	}
	return "UNKNOWN"
}

// ParseFormat maps a name such as "QR_CODE" or "code128" to a Format.
func ParseFormat(s string) (Format, error) {
	norm := strings.ToUpper(strings.NewReplacer("-", "", "_", "", " ", "").Replace(s))
	for f, name := range formatNames {
		if strings.ReplaceAll(name, "_", "") == norm {
			return Format(f), nil
		}
	}
	return 0, fmt.Errorf("unknown barcode format %q: %w", s, ErrConfiguration)
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// MetadataKey identifies a type of metadata about a barcode result.
type MetadataKey int

const (
	MetadataOther MetadataKey = iota
	MetadataOrientation
	MetadataByteSegments
	MetadataErrorCorrectionLevel
	MetadataErrorsCorrected
	MetadataErasuresCorrected
	MetadataStructuredAppendSequence
	MetadataStructuredAppendParity
	MetadataSymbologyIdentifier
)

var metadataNames = [...]string{
	MetadataOther:                    "OTHER",
	MetadataOrientation:              "ORIENTATION",
	MetadataByteSegments:             "BYTE_SEGMENTS",
	MetadataErrorCorrectionLevel:     "ERROR_CORRECTION_LEVEL",
	MetadataErrorsCorrected:          "ERRORS_CORRECTED",
	MetadataErasuresCorrected:        "ERASURES_CORRECTED",
	MetadataStructuredAppendSequence: "STRUCTURED_APPEND_SEQUENCE",
	MetadataStructuredAppendParity:   "STRUCTURED_APPEND_PARITY",
	MetadataSymbologyIdentifier:      "SYMBOLOGY_IDENTIFIER",
}

func (k MetadataKey) String() string {
	if k >= 0 && int(k) < len(metadataNames) {
		return metadataNames[k]
	}
	return fmt.Sprintf("METADATA_%d", int(k))
}

// MarshalText implements encoding.TextMarshaler so metadata maps encode
// with readable keys.
func (k MetadataKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ResultPoint represents a point of interest in an image.
type ResultPoint struct {
	X, Y float64
}

// Distance returns the distance between two points.
func Distance(a, b ResultPoint) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// CrossProductZ computes the z component of the cross product between vectors
// (bX-aX, bY-aY) and (cX-aX, cY-aY).
func CrossProductZ(a, b, c ResultPoint) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// OrderBestPatterns orders three finder patterns as bottom-left, top-left,
// top-right. Top-left is the corner opposite the longest side.
func OrderBestPatterns(patterns [3]ResultPoint) [3]ResultPoint {
	d01 := Distance(patterns[0], patterns[1])
	d12 := Distance(patterns[1], patterns[2])
	d02 := Distance(patterns[0], patterns[2])

	corner, a, c := patterns[2], patterns[0], patterns[1]
	switch {
	case d12 >= d01 && d12 >= d02:
		corner, a, c = patterns[0], patterns[1], patterns[2]
	case d02 >= d01 && d02 >= d12:
		corner, a, c = patterns[1], patterns[0], patterns[2]
	}
	if CrossProductZ(corner, c, a) < 0 {
		a, c = c, a
	}
	return [3]ResultPoint{a, corner, c}
}

// Result encapsulates the result of decoding a barcode.
type Result struct {
	Text      string              `json:"text" yaml:"text"`
	RawBytes  []byte              `json:"raw_bytes,omitempty" yaml:"raw_bytes,omitempty"`
	NumBits   int                 `json:"num_bits,omitempty" yaml:"num_bits,omitempty"`
	Points    []ResultPoint       `json:"points,omitempty" yaml:"points,omitempty"`
	Format    Format              `json:"format" yaml:"format"`
	Metadata  map[MetadataKey]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Timestamp time.Time           `json:"timestamp" yaml:"timestamp"`
}

// NewResult creates a new Result with the given text, format, and points.
func NewResult(text string, rawBytes []byte, points []ResultPoint, format Format) *Result {
	return &Result{
		Text:      text,
		RawBytes:  rawBytes,
		NumBits:   8 * len(rawBytes),
		Points:    points,
		Format:    format,
		Metadata:  make(map[MetadataKey]any),
		Timestamp: time.Now(),
	}
}

// PutMetadata adds a metadata key/value pair.
func (r *Result) PutMetadata(key MetadataKey, value any) {
	if r.Metadata == nil {
		r.Metadata = make(map[MetadataKey]any)
	}
	r.Metadata[key] = value
}

// PutAllMetadata copies every entry of md into the result.
func (r *Result) PutAllMetadata(md map[MetadataKey]any) {
	for k, v := range md {
		r.PutMetadata(k, v)
	}
}

// Orientation returns the ORIENTATION metadata in degrees.
func (r *Result) Orientation() (int, bool) {
	v, ok := r.Metadata[MetadataOrientation]
	if !ok {
		return 0, false
	}
	deg, ok := v.(int)
	return deg, ok
}

// AddResultPoints appends additional result points.
func (r *Result) AddResultPoints(points []ResultPoint) {
	r.Points = append(r.Points, points...)
}
