package multi

import (
	"image"
	"testing"

	goqrcode "github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericlevine/zxpipe"
	"github.com/ericlevine/zxpipe/binarizer"
	"github.com/ericlevine/zxpipe/internal/testimage"
	"github.com/ericlevine/zxpipe/qrcode"
)

func bitmapOf(t *testing.T, img image.Image) *zxpipe.BinaryBitmap {
	t.Helper()
	src, err := zxpipe.NewImageSource(img)
	require.NoError(t, err)
	bitmap, err := binarizer.Binarize(src)
	require.NoError(t, err)
	return bitmap
}

type stubReader struct {
	calls  int
	result func(image *zxpipe.BinaryBitmap) (*zxpipe.Result, error)
}

func (s *stubReader) Decode(image *zxpipe.BinaryBitmap, _ *zxpipe.Hints) (*zxpipe.Result, error) {
	s.calls++
	return s.result(image)
}

func (s *stubReader) Reset() {}

func TestGenericReaderFindsSymbolsInSeparateRegions(t *testing.T) {
	canvas := testimage.Canvas(720, 260)
	canvas = testimage.Place(canvas, testimage.QR(t, "FIRST", goqrcode.Medium, 200), 10, 30)
	canvas = testimage.Place(canvas, testimage.QR(t, "SECOND", goqrcode.Medium, 200), 500, 30)

	results, err := NewGenericReader(qrcode.NewReader()).DecodeMultiple(bitmapOf(t, canvas), nil)
	require.NoError(t, err)
	require.Len(t, results, 2)

	byText := map[string]*zxpipe.Result{}
	for _, r := range results {
		byText[r.Text] = r
	}
	require.Contains(t, byText, "FIRST")
	require.Contains(t, byText, "SECOND")
	for _, p := range byText["FIRST"].Points {
		assert.Less(t, p.X, 220.0)
	}
	for _, p := range byText["SECOND"].Points {
		assert.Greater(t, p.X, 500.0)
	}
}

func TestGenericReaderDeduplicatesByText(t *testing.T) {
	stub := &stubReader{result: func(image *zxpipe.BinaryBitmap) (*zxpipe.Result, error) {
		// A small symbol in the middle of whatever region is searched.
		cx, cy := float64(image.Width())/2, float64(image.Height())/2
		pts := []zxpipe.ResultPoint{{X: cx - 5, Y: cy - 5}, {X: cx + 5, Y: cy + 5}}
		return zxpipe.NewResult("same", nil, pts, zxpipe.FormatCode128), nil
	}}
	results, err := NewGenericReader(stub).DecodeMultiple(bitmapOf(t, testimage.Canvas(400, 400)), nil)
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Greater(t, stub.calls, 1)
}

func TestGenericReaderStopsAtMaxDepth(t *testing.T) {
	stub := &stubReader{result: func(image *zxpipe.BinaryBitmap) (*zxpipe.Result, error) {
		// Hits in the top-left corner leave room to the right and below.
		pts := []zxpipe.ResultPoint{{X: 1, Y: 1}, {X: 2, Y: 2}}
		return zxpipe.NewResult("corner", nil, pts, zxpipe.FormatCode128), nil
	}}
	_, err := NewGenericReader(stub).DecodeMultiple(bitmapOf(t, testimage.Canvas(2000, 2000)), nil)
	require.NoError(t, err)
	// Two children per level, five levels.
	assert.Equal(t, 1+2+4+8+16, stub.calls)
}

func TestGenericReaderNothingFound(t *testing.T) {
	stub := &stubReader{result: func(*zxpipe.BinaryBitmap) (*zxpipe.Result, error) {
		return nil, zxpipe.ErrNotFound
	}}
	_, err := NewGenericReader(stub).DecodeMultiple(bitmapOf(t, testimage.Canvas(300, 300)), nil)
	assert.ErrorIs(t, err, zxpipe.ErrNotFound)
	assert.Equal(t, 1, stub.calls)
}

func TestTranslate(t *testing.T) {
	r := zxpipe.NewResult("t", []byte{1}, []zxpipe.ResultPoint{{X: 1, Y: 2}}, zxpipe.FormatQRCode)
	r.PutMetadata(zxpipe.MetadataOrientation, 90)

	assert.Same(t, r, translate(r, 0, 0))

	moved := translate(r, 10, 20)
	assert.Equal(t, []zxpipe.ResultPoint{{X: 11, Y: 22}}, moved.Points)
	assert.Equal(t, 90, moved.Metadata[zxpipe.MetadataOrientation])
	assert.Equal(t, []zxpipe.ResultPoint{{X: 1, Y: 2}}, r.Points)
}
