// Package testimage renders symbols with external encoders for tests.
package testimage

import (
	"image"
	"image/color"
	"testing"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/code39"
	"github.com/boombuler/barcode/ean"
	"github.com/disintegration/imaging"
	goqrcode "github.com/skip2/go-qrcode"
)

// QR renders content as a QR symbol with its standard quiet zone, scaled
// to at least size pixels square.
func QR(tb testing.TB, content string, level goqrcode.RecoveryLevel, size int) image.Image {
	tb.Helper()
	q, err := goqrcode.New(content, level)
	if err != nil {
		tb.Fatalf("encode %q: %v", content, err)
	}
	return q.Image(size)
}

// Code128 renders content as a Code 128 symbol of the given bar area,
// centred on a white canvas with margin pixels on every side.
func Code128(tb testing.TB, content string, width, height, margin int) image.Image {
	tb.Helper()
	bc, err := code128.Encode(content)
	return linear(tb, content, bc, err, width, height, margin)
}

// Code39 renders content as a Code 39 symbol, optionally with the mod 43
// check character.
func Code39(tb testing.TB, content string, checksum bool, width, height, margin int) image.Image {
	tb.Helper()
	bc, err := code39.Encode(content, checksum, false)
	return linear(tb, content, bc, err, width, height, margin)
}

// EAN renders a 7, 8, 12 or 13 digit EAN number. Shorter forms get their
// check digit computed.
func EAN(tb testing.TB, digits string, width, height, margin int) image.Image {
	tb.Helper()
	bc, err := ean.Encode(digits)
	return linear(tb, digits, bc, err, width, height, margin)
}

func linear(tb testing.TB, content string, bc barcode.Barcode, err error, width, height, margin int) image.Image {
	tb.Helper()
	if err != nil {
		tb.Fatalf("encode %q: %v", content, err)
	}
	scaled, err := barcode.Scale(bc, width, height)
	if err != nil {
		tb.Fatalf("scale %q to %dx%d: %v", content, width, height, err)
	}
	canvas := Canvas(width+2*margin, height+2*margin)
	return imaging.Paste(canvas, scaled, image.Pt(margin, margin))
}

// Canvas returns a white image.
func Canvas(width, height int) *image.NRGBA {
	return imaging.New(width, height, color.White)
}

// Place pastes src onto dst with its top-left corner at (x, y).
func Place(dst, src image.Image, x, y int) *image.NRGBA {
	return imaging.Paste(dst, src, image.Pt(x, y))
}

// RotateCCW turns img counter-clockwise by a multiple of 90 degrees.
func RotateCCW(img image.Image, degrees int) image.Image {
	switch ((degrees % 360) + 360) % 360 {
	case 90:
		return imaging.Rotate90(img)
	case 180:
		return imaging.Rotate180(img)
	case 270:
		return imaging.Rotate270(img)
	}
	return img
}
