// Package pipeline drives decoding of caller-supplied pixels: it converts
// them to luminance, binarizes, runs a reader and retries the image turned
// 90 degrees counter-clockwise until a symbol is found or all four
// orientations have been tried.
//
// A Pipeline keeps hints and a state-reuse flag between calls and is not
// safe for concurrent use. Use one Pipeline per goroutine.
package pipeline

import (
	"image"
	"log/slog"

	"github.com/ericlevine/zxpipe"
	"github.com/ericlevine/zxpipe/binarizer"
	"github.com/ericlevine/zxpipe/multi"
	multiqr "github.com/ericlevine/zxpipe/multi/qrcode"

	// Readers register themselves with the root package.
	_ "github.com/ericlevine/zxpipe/oned"
	_ "github.com/ericlevine/zxpipe/qrcode"
)

// ImageConverter turns a decoded image into a luminance source.
type ImageConverter func(img image.Image) (zxpipe.LuminanceSource, error)

// RawConverter turns a packed pixel buffer into a luminance source.
type RawConverter func(pix []byte, width, height int, format zxpipe.PixelFormat) (zxpipe.LuminanceSource, error)

// Pipeline is the decode orchestrator. Build it with New.
type Pipeline struct {
	reader    zxpipe.Reader
	binarizer zxpipe.BinarizerFactory
	fromImage ImageConverter
	fromRaw   RawConverter

	hints      zxpipe.Hints
	autoRotate bool
	// usePreviousState is set after a full decode succeeds and cleared by
	// every hint setter.
	usePreviousState bool

	qrMulti func() zxpipe.MultipleBarcodeReader
	generic func(zxpipe.Reader) zxpipe.MultipleBarcodeReader

	logger  *slog.Logger
	metrics *Metrics
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithAutoRotate enables or disables the rotation retries. It is on by
// default.
func WithAutoRotate(on bool) Option {
	return func(p *Pipeline) { p.autoRotate = on }
}

// WithReader replaces the default MultiFormatReader.
func WithReader(r zxpipe.Reader) Option {
	return func(p *Pipeline) { p.reader = r }
}

// WithBinarizer replaces the default Hybrid binarizer.
func WithBinarizer(f zxpipe.BinarizerFactory) Option {
	return func(p *Pipeline) { p.binarizer = f }
}

// WithImageConverter sets how DecodeImage builds a luminance source. A nil
// converter makes DecodeImage fail with ErrConfiguration.
func WithImageConverter(c ImageConverter) Option {
	return func(p *Pipeline) { p.fromImage = c }
}

// WithRawConverter sets how DecodeBytes builds a luminance source. A nil
// converter makes DecodeBytes fail with ErrConfiguration.
func WithRawConverter(c RawConverter) Option {
	return func(p *Pipeline) { p.fromRaw = c }
}

// WithLogger sets the logger. Attempts and outcomes are logged at debug.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithMetrics records every call in m.
func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithHints starts the pipeline with a copy of h.
func WithHints(h *zxpipe.Hints) Option {
	return func(p *Pipeline) { p.hints = *h.Clone() }
}

// New builds a Pipeline with auto-rotation, a MultiFormatReader over every
// registered format and the Hybrid binarizer.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		reader:     zxpipe.NewMultiFormatReader(),
		binarizer:  func(s zxpipe.LuminanceSource) zxpipe.Binarizer { return binarizer.NewHybrid(s) },
		fromImage:  imageSource,
		fromRaw:    rawSource,
		autoRotate: true,
		qrMulti:    func() zxpipe.MultipleBarcodeReader { return multiqr.NewReader() },
		generic:    func(r zxpipe.Reader) zxpipe.MultipleBarcodeReader { return multi.NewGenericReader(r) },
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func imageSource(img image.Image) (zxpipe.LuminanceSource, error) {
	return zxpipe.NewImageSource(img)
}

func rawSource(pix []byte, width, height int, format zxpipe.PixelFormat) (zxpipe.LuminanceSource, error) {
	return zxpipe.NewRGBSource(pix, width, height, format)
}

// AutoRotate reports whether rotation retries are enabled.
func (p *Pipeline) AutoRotate() bool { return p.autoRotate }

// SetAutoRotate enables or disables rotation retries. It does not touch
// the hints, so the reader state stays valid.
func (p *Pipeline) SetAutoRotate(on bool) { p.autoRotate = on }

// UsesPreviousState reports whether the next decode will reuse the reader
// state prepared by the last full decode.
func (p *Pipeline) UsesPreviousState() bool { return p.usePreviousState }

// Hints returns a copy of the current hints.
func (p *Pipeline) Hints() *zxpipe.Hints { return p.hints.Clone() }

// TryHarder reports whether HintTryHarder is set.
func (p *Pipeline) TryHarder() bool { return p.hints.TryHarder() }

// PureBarcode reports whether HintPureBarcode is set.
func (p *Pipeline) PureBarcode() bool { return p.hints.PureBarcode() }

// AlsoInverted reports whether HintAlsoInverted is set.
func (p *Pipeline) AlsoInverted() bool { return p.hints.AlsoInverted() }

// AssumeGS1 reports whether HintAssumeGS1 is set.
func (p *Pipeline) AssumeGS1() bool { return p.hints.AssumeGS1() }

// AssumeCode39CheckDigit reports whether HintAssumeCode39CheckDigit is set.
func (p *Pipeline) AssumeCode39CheckDigit() bool { return p.hints.AssumeCode39CheckDigit() }

// Code39FullASCII reports whether HintCode39FullASCII is set.
func (p *Pipeline) Code39FullASCII() bool { return p.hints.Code39FullASCII() }

// CharacterSet returns the character set hint, or "".
func (p *Pipeline) CharacterSet() string { return p.hints.CharacterSet() }

// PossibleFormats returns the format restriction, or nil.
func (p *Pipeline) PossibleFormats() []zxpipe.Format { return p.hints.PossibleFormats() }

// SetTryHarder sets or clears HintTryHarder.
func (p *Pipeline) SetTryHarder(on bool) { p.setFlag(zxpipe.HintTryHarder, on) }

// SetPureBarcode sets or clears HintPureBarcode.
func (p *Pipeline) SetPureBarcode(on bool) { p.setFlag(zxpipe.HintPureBarcode, on) }

// SetAlsoInverted sets or clears HintAlsoInverted.
func (p *Pipeline) SetAlsoInverted(on bool) { p.setFlag(zxpipe.HintAlsoInverted, on) }

// SetAssumeGS1 sets or clears HintAssumeGS1.
func (p *Pipeline) SetAssumeGS1(on bool) { p.setFlag(zxpipe.HintAssumeGS1, on) }

// SetAssumeCode39CheckDigit sets or clears HintAssumeCode39CheckDigit.
func (p *Pipeline) SetAssumeCode39CheckDigit(on bool) {
	p.setFlag(zxpipe.HintAssumeCode39CheckDigit, on)
}

// SetCode39FullASCII sets or clears HintCode39FullASCII.
func (p *Pipeline) SetCode39FullASCII(on bool) { p.setFlag(zxpipe.HintCode39FullASCII, on) }

// SetCharacterSet sets the character set hint. An empty name clears it.
func (p *Pipeline) SetCharacterSet(name string) {
	if name == "" {
		p.hints.Delete(zxpipe.HintCharacterSet)
	} else {
		p.hints.Set(zxpipe.HintCharacterSet, zxpipe.CharacterSet(name))
	}
	p.invalidate()
}

// SetPossibleFormats restricts decoding to formats. No formats clears the
// restriction.
func (p *Pipeline) SetPossibleFormats(formats ...zxpipe.Format) {
	if len(formats) == 0 {
		p.hints.Delete(zxpipe.HintPossibleFormats)
	} else {
		p.hints.Set(zxpipe.HintPossibleFormats, zxpipe.Formats(formats...))
	}
	p.invalidate()
}

func (p *Pipeline) setFlag(k zxpipe.HintKind, on bool) {
	p.hints.SetFlag(k, on)
	p.invalidate()
}

// invalidate runs on every hint change, including one that sets the value
// already in effect.
func (p *Pipeline) invalidate() {
	p.usePreviousState = false
}
