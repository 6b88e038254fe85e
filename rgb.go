package zxpipe

import "fmt"

// PixelFormat describes the channel layout of a raw pixel buffer.
type PixelFormat int

const (
	PixelGray8 PixelFormat = iota
	PixelRGB24
	PixelBGR24
	PixelRGBA32
	PixelBGRA32
	PixelARGB32
	PixelRGB565
)

var pixelFormatNames = [...]string{
	PixelGray8:  "gray8",
	PixelRGB24:  "rgb24",
	PixelBGR24:  "bgr24",
	PixelRGBA32: "rgba32",
	PixelBGRA32: "bgra32",
	PixelARGB32: "argb32",
	PixelRGB565: "rgb565",
}

func (p PixelFormat) String() string {
	if p >= 0 && int(p) < len(pixelFormatNames) {
		return pixelFormatNames[p]
	}
	return fmt.Sprintf("PixelFormat(%d)", int(p))
}

// BytesPerPixel returns the packed size of one pixel, or 0 if unknown.
func (p PixelFormat) BytesPerPixel() int {
	switch p {
	case PixelGray8:
		return 1
	case PixelRGB565:
		return 2
	case PixelRGB24, PixelBGR24:
		return 3
	case PixelRGBA32, PixelBGRA32, PixelARGB32:
		return 4
	}
	return 0
}

// ParsePixelFormat maps a name such as "rgba32" to a PixelFormat.
func ParsePixelFormat(s string) (PixelFormat, error) {
	for p, name := range pixelFormatNames {
		if name == s {
			return PixelFormat(p), nil
		}
	}
	return 0, fmt.Errorf("unknown pixel format %q: %w", s, ErrConfiguration)
}

// NewRGBSource converts a packed width x height pixel buffer to luminance.
// RGB565 is read little-endian. Pixels with zero alpha become white.
func NewRGBSource(pix []byte, width, height int, format PixelFormat) (*PlanarSource, error) {
	if len(pix) == 0 {
		return nil, fmt.Errorf("empty pixel buffer: %w", ErrInvalidInput)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("degenerate dimensions %dx%d: %w", width, height, ErrInvalidInput)
	}
	bpp := format.BytesPerPixel()
	if bpp == 0 {
		return nil, fmt.Errorf("unsupported pixel format %s: %w", format, ErrConfiguration)
	}
	if len(pix) < width*height*bpp {
		return nil, fmt.Errorf("%s buffer holds %d bytes, need %d: %w",
			format, len(pix), width*height*bpp, ErrInvalidInput)
	}
	if format == PixelGray8 {
		lum := make([]byte, width*height)
		copy(lum, pix)
		return grayView(lum, width, height)
	}

	lum := make([]byte, width*height)
	for i := range lum {
		p := pix[i*bpp : i*bpp+bpp]
		var r, g, b uint32
		alpha := byte(0xFF)
		switch format {
		case PixelRGB24:
			r, g, b = uint32(p[0]), uint32(p[1]), uint32(p[2])
		case PixelBGR24:
			r, g, b = uint32(p[2]), uint32(p[1]), uint32(p[0])
		case PixelRGBA32:
			r, g, b, alpha = uint32(p[0]), uint32(p[1]), uint32(p[2]), p[3]
		case PixelBGRA32:
			r, g, b, alpha = uint32(p[2]), uint32(p[1]), uint32(p[0]), p[3]
		case PixelARGB32:
			r, g, b, alpha = uint32(p[1]), uint32(p[2]), uint32(p[3]), p[0]
		case PixelRGB565:
			v := uint32(p[0]) | uint32(p[1])<<8
			r = (v >> 11) & 0x1F
			g = (v >> 5) & 0x3F
			b = v & 0x1F
			r = r<<3 | r>>2
			g = g<<2 | g>>4
			b = b<<3 | b>>2
		}
		if alpha == 0 {
			lum[i] = 0xFF
			continue
		}
		lum[i] = luminance(r, g, b)
	}
	return grayView(lum, width, height)
}
