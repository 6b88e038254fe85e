package qrcode

import (
	"image"
	"testing"

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

func texts(results []*zxpipe.Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Text
	}
	return out
}

func TestDecodeMultipleFindsEverySymbol(t *testing.T) {
	canvas := testimage.Canvas(700, 300)
	canvas = testimage.Place(canvas, testimage.QR(t, "LEFT SYMBOL", goqrcode.Medium, 200), 20, 40)
	canvas = testimage.Place(canvas, testimage.QR(t, "RIGHT SYMBOL", goqrcode.Medium, 200), 460, 60)

	results, err := NewReader().DecodeMultiple(bitmapOf(t, canvas), nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"LEFT SYMBOL", "RIGHT SYMBOL"}, texts(results))
	for _, r := range results {
		assert.Equal(t, zxpipe.FormatQRCode, r.Format)
		assert.GreaterOrEqual(t, len(r.Points), 3)
	}
}

func TestDecodeMultipleNothingThere(t *testing.T) {
	_, err := NewReader().DecodeMultiple(bitmapOf(t, testimage.Canvas(200, 200)), nil)
	assert.ErrorIs(t, err, zxpipe.ErrNotFound)

	_, err = NewReader().Decode(bitmapOf(t, testimage.Canvas(200, 200)), nil)
	assert.ErrorIs(t, err, zxpipe.ErrNotFound)
}

func part(text string, seq int, segment string) *zxpipe.Result {
	r := zxpipe.NewResult(text, []byte(text), []zxpipe.ResultPoint{{X: 1, Y: 1}}, zxpipe.FormatQRCode)
	r.PutMetadata(zxpipe.MetadataStructuredAppendSequence, seq)
	r.PutMetadata(zxpipe.MetadataStructuredAppendParity, 0x42)
	if segment != "" {
		r.PutMetadata(zxpipe.MetadataByteSegments, [][]byte{[]byte(segment)})
	}
	return r
}

func TestMergeStructuredAppend(t *testing.T) {
	plain := zxpipe.NewResult("plain", nil, nil, zxpipe.FormatQRCode)
	merged := MergeStructuredAppend([]*zxpipe.Result{
		part("c", 2, "3"),
		plain,
		part("a", 0, "1"),
		part("b", 1, ""),
	})

	require.Len(t, merged, 2)
	assert.Same(t, plain, merged[0])
	assert.Equal(t, "abc", merged[1].Text)
	assert.Equal(t, []byte("abc"), merged[1].RawBytes)
	assert.Empty(t, merged[1].Points)
	assert.Equal(t, [][]byte{[]byte("13")}, merged[1].Metadata[zxpipe.MetadataByteSegments])
}

func TestMergeStructuredAppendWithoutParts(t *testing.T) {
	in := []*zxpipe.Result{zxpipe.NewResult("x", nil, nil, zxpipe.FormatQRCode)}
	assert.Equal(t, in, MergeStructuredAppend(in))
}
