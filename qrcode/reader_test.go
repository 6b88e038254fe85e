package qrcode

import (
	"image"
	"testing"

	"github.com/disintegration/imaging"
	goqrcode "github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericlevine/zxpipe"
	"github.com/ericlevine/zxpipe/binarizer"
	"github.com/ericlevine/zxpipe/internal/testimage"
)

func bitmapOf(t *testing.T, img image.Image) *zxpipe.BinaryBitmap {
	t.Helper()
	src, err := zxpipe.NewImageSource(img)
	require.NoError(t, err)
	bitmap, err := binarizer.Binarize(src)
	require.NoError(t, err)
	return bitmap
}

func hints(kinds ...zxpipe.HintKind) *zxpipe.Hints {
	h := &zxpipe.Hints{}
	for _, k := range kinds {
		h.SetFlag(k, true)
	}
	return h
}

func TestReaderDecodesRenderedSymbols(t *testing.T) {
	tests := []struct {
		content string
		level   goqrcode.RecoveryLevel
		ec      string
	}{
		{"1234567890", goqrcode.Medium, "M"},
		{"HELLO WORLD", goqrcode.Low, "L"},
		{"Hello, World! This is a test.", goqrcode.High, "Q"},
		{"TEST123", goqrcode.Highest, "H"},
	}
	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			bitmap := bitmapOf(t, testimage.QR(t, tt.content, tt.level, 300))
			res, err := NewReader().Decode(bitmap, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.content, res.Text)
			assert.Equal(t, zxpipe.FormatQRCode, res.Format)
			assert.Equal(t, tt.ec, res.Metadata[zxpipe.MetadataErrorCorrectionLevel])
			assert.Equal(t, "]Q1", res.Metadata[zxpipe.MetadataSymbologyIdentifier])
			assert.GreaterOrEqual(t, len(res.Points), 3)
			_, hasOrientation := res.Orientation()
			assert.False(t, hasOrientation)
		})
	}
}

func TestReaderPureBarcode(t *testing.T) {
	bitmap := bitmapOf(t, testimage.QR(t, "PURE 0001", goqrcode.Medium, 200))
	res, err := NewReader().Decode(bitmap, hints(zxpipe.HintPureBarcode))
	require.NoError(t, err)
	assert.Equal(t, "PURE 0001", res.Text)
	assert.Empty(t, res.Points)
}

// The finder patterns fix the symbol's orientation, so rotated symbols
// decode without the pipeline's rotation retries.
func TestReaderRotatedSymbol(t *testing.T) {
	img := testimage.QR(t, "ROTATED", goqrcode.Medium, 300)
	for _, deg := range []int{90, 180, 270} {
		res, err := NewReader().Decode(bitmapOf(t, testimage.RotateCCW(img, deg)), nil)
		require.NoError(t, err, "%d degrees", deg)
		assert.Equal(t, "ROTATED", res.Text)
	}
}

func TestReaderMirroredSymbol(t *testing.T) {
	img := imaging.Transpose(testimage.QR(t, "MIRRORED", goqrcode.Medium, 300))
	res, err := NewReader().Decode(bitmapOf(t, img), nil)
	require.NoError(t, err)
	assert.Equal(t, "MIRRORED", res.Text)
}

func TestReaderBlankImage(t *testing.T) {
	_, err := NewReader().Decode(bitmapOf(t, testimage.Canvas(100, 100)), nil)
	assert.ErrorIs(t, err, zxpipe.ErrNotFound)

	_, err = NewReader().Decode(bitmapOf(t, testimage.Canvas(100, 100)), hints(zxpipe.HintPureBarcode))
	assert.ErrorIs(t, err, zxpipe.ErrNotFound)
}

func TestReaderIsRegistered(t *testing.T) {
	assert.Contains(t, zxpipe.RegisteredFormats(), zxpipe.FormatQRCode)

	r := zxpipe.NewMultiFormatReader()
	res, err := r.Decode(bitmapOf(t, testimage.QR(t, "VIA REGISTRY", goqrcode.Low, 240)),
		&zxpipe.Hints{})
	require.NoError(t, err)
	assert.Equal(t, "VIA REGISTRY", res.Text)
}
