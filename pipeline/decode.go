package pipeline

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/ericlevine/zxpipe"
)

const (
	modeSingle = "single"
	modeMulti  = "multi"
)

// Decode looks for one symbol in source. found is false when no attempt
// located a symbol; err is reserved for configuration and input faults.
func (p *Pipeline) Decode(source zxpipe.LuminanceSource) (result *zxpipe.Result, found bool, err error) {
	start := time.Now()
	defer func() { p.metrics.observe(modeSingle, start, found, err) }()

	attempt, found, err := p.rotate(modeSingle, source, func(bitmap *zxpipe.BinaryBitmap) bool {
		result = p.decodeOnce(bitmap)
		return result != nil
	})
	if !found {
		return nil, false, err
	}
	stampOrientation(result, attempt)
	p.metrics.rotated(attempt)
	return result, true, nil
}

// DecodeBytes converts a packed pixel buffer and decodes it.
func (p *Pipeline) DecodeBytes(pix []byte, width, height int, format zxpipe.PixelFormat) (*zxpipe.Result, bool, error) {
	source, err := p.rawToSource(pix, width, height, format)
	if err != nil {
		p.metrics.failed(modeSingle)
		return nil, false, err
	}
	return p.Decode(source)
}

// DecodeImage converts img and decodes it.
func (p *Pipeline) DecodeImage(img image.Image) (*zxpipe.Result, bool, error) {
	source, err := p.imageToSource(img)
	if err != nil {
		p.metrics.failed(modeSingle)
		return nil, false, err
	}
	return p.Decode(source)
}

// DecodeMultiple looks for every symbol in source. When the hints restrict
// decoding to QR Code alone the dedicated QR multi-reader is used,
// otherwise the generic region search over the pipeline's reader. Each
// result is stamped with the orientation it was found at.
func (p *Pipeline) DecodeMultiple(source zxpipe.LuminanceSource) (results []*zxpipe.Result, found bool, err error) {
	start := time.Now()
	defer func() { p.metrics.observe(modeMulti, start, found, err) }()

	hints := p.hints.Clone()
	reader, strategy := p.multiReaderFor(hints)
	attempt, found, err := p.rotate(modeMulti, source, func(bitmap *zxpipe.BinaryBitmap) bool {
		results = p.decodeMultipleOnce(reader, strategy, bitmap, hints)
		return len(results) > 0
	})
	if !found {
		return nil, false, err
	}
	for _, r := range results {
		stampOrientation(r, attempt)
	}
	p.metrics.rotated(attempt)
	return results, true, nil
}

// DecodeMultipleBytes converts a packed pixel buffer and decodes every
// symbol in it.
func (p *Pipeline) DecodeMultipleBytes(pix []byte, width, height int, format zxpipe.PixelFormat) ([]*zxpipe.Result, bool, error) {
	source, err := p.rawToSource(pix, width, height, format)
	if err != nil {
		p.metrics.failed(modeMulti)
		return nil, false, err
	}
	return p.DecodeMultiple(source)
}

// DecodeMultipleImage converts img and decodes every symbol in it.
func (p *Pipeline) DecodeMultipleImage(img image.Image) ([]*zxpipe.Result, bool, error) {
	source, err := p.imageToSource(img)
	if err != nil {
		p.metrics.failed(modeMulti)
		return nil, false, err
	}
	return p.DecodeMultiple(source)
}

func (p *Pipeline) rawToSource(pix []byte, width, height int, format zxpipe.PixelFormat) (zxpipe.LuminanceSource, error) {
	if p.fromRaw == nil {
		return nil, fmt.Errorf("no converter for raw %s pixels: %w", format, zxpipe.ErrConfiguration)
	}
	return p.fromRaw(pix, width, height, format)
}

func (p *Pipeline) imageToSource(img image.Image) (zxpipe.LuminanceSource, error) {
	if p.fromImage == nil {
		return nil, fmt.Errorf("no converter for %T: %w", img, zxpipe.ErrConfiguration)
	}
	return p.fromImage(img)
}

// multiReaderFor picks the multi-symbol strategy for a hints snapshot.
func (p *Pipeline) multiReaderFor(hints *zxpipe.Hints) (zxpipe.MultipleBarcodeReader, string) {
	formats := hints.PossibleFormats()
	if len(formats) == 1 && formats[0] == zxpipe.FormatQRCode {
		return p.qrMulti(), "qrcode"
	}
	return p.generic(p.reader), "generic"
}

// rotate runs try on source and, while it fails and auto-rotation is on,
// on source turned a further 90 degrees counter-clockwise, up to four
// orientations. It returns the number of quarter turns applied when try
// succeeded. Only input faults are returned as errors.
func (p *Pipeline) rotate(mode string, source zxpipe.LuminanceSource, try func(*zxpipe.BinaryBitmap) bool) (int, bool, error) {
	bitmap, err := p.bitmap(source)
	if err != nil {
		return 0, false, err
	}
	maxAttempts := 1
	if p.autoRotate {
		maxAttempts = 4
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		p.metrics.attempted(mode)
		ok := p.guard(mode, attempt, func() bool { return try(bitmap) })
		p.logger.Debug("decode attempt", "mode", mode, "attempt", attempt,
			"width", source.Width(), "height", source.Height(), "found", ok)
		if ok {
			return attempt, true, nil
		}
		if !p.autoRotate || !source.RotateSupported() || attempt+1 == maxAttempts {
			break
		}
		if source, err = source.RotateCounterClockwise(); err != nil {
			p.logger.Debug("rotation failed", "mode", mode, "attempt", attempt, "error", err)
			break
		}
		if bitmap, err = p.bitmap(source); err != nil {
			break
		}
	}
	return 0, false, nil
}

func (p *Pipeline) bitmap(source zxpipe.LuminanceSource) (*zxpipe.BinaryBitmap, error) {
	if source == nil {
		return nil, fmt.Errorf("nil luminance source: %w", zxpipe.ErrInvalidInput)
	}
	if source.Width() <= 0 || source.Height() <= 0 {
		return nil, fmt.Errorf("luminance source is %dx%d: %w", source.Width(), source.Height(), zxpipe.ErrInvalidInput)
	}
	return zxpipe.NewBinaryBitmap(p.binarizer(source)), nil
}

// guard turns a panic inside a reader into a failed attempt.
func (p *Pipeline) guard(mode string, attempt int, fn func() bool) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("reader panic", "mode", mode, "attempt", attempt, "panic", r)
			ok = false
		}
	}()
	return fn()
}

// decodeOnce runs the reader on one orientation. The state-reusing path is
// taken once a full decode has succeeded and the hints are unchanged.
func (p *Pipeline) decodeOnce(bitmap *zxpipe.BinaryBitmap) *zxpipe.Result {
	var (
		result *zxpipe.Result
		err    error
	)
	stateful, canReuse := p.reader.(zxpipe.StatefulReader)
	if p.usePreviousState && canReuse {
		result, err = stateful.DecodeWithState(bitmap)
	} else {
		result, err = p.reader.Decode(bitmap, p.hints.Clone())
		if err == nil {
			p.usePreviousState = true
		}
	}
	if err != nil {
		p.logFailure(modeSingle, err)
		return nil
	}
	return result
}

func (p *Pipeline) decodeMultipleOnce(reader zxpipe.MultipleBarcodeReader, strategy string,
	bitmap *zxpipe.BinaryBitmap, hints *zxpipe.Hints) []*zxpipe.Result {
	results, err := reader.DecodeMultiple(bitmap, hints)
	if err != nil {
		p.logFailure(modeMulti, err, "strategy", strategy)
		return nil
	}
	return results
}

func (p *Pipeline) logFailure(mode string, err error, attrs ...any) {
	kind := "not_found"
	switch {
	case errors.Is(err, zxpipe.ErrDecoderInternal):
		kind = "decoder_internal"
	case !errors.Is(err, zxpipe.ErrNotFound):
		kind = "other"
	}
	p.logger.Debug("attempt failed", append([]any{"mode", mode, "kind", kind, "error", err}, attrs...)...)
}

// stampOrientation records the quarter turns applied before the symbol was
// found, added to any orientation the reader reported itself.
func stampOrientation(r *zxpipe.Result, attempt int) {
	degrees := attempt * 90
	if prev, ok := r.Orientation(); ok {
		degrees = (prev + degrees) % 360
	}
	r.PutMetadata(zxpipe.MetadataOrientation, degrees)
}
