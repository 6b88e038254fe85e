package binarizer

import (
	"fmt"

	"github.com/ericlevine/zxpipe"
)

// Binarize wraps source in a Hybrid binarizer and a BinaryBitmap.
func Binarize(source zxpipe.LuminanceSource) (*zxpipe.BinaryBitmap, error) {
	if err := checkSource(source); err != nil {
		return nil, err
	}
	return zxpipe.NewBinaryBitmap(NewHybrid(source)), nil
}

// Factory returns the binarizer constructor registered under name.
func Factory(name string) (zxpipe.BinarizerFactory, error) {
	switch name {
	case "", "hybrid":
		return func(s zxpipe.LuminanceSource) zxpipe.Binarizer { return NewHybrid(s) }, nil
	case "global", "histogram":
		return func(s zxpipe.LuminanceSource) zxpipe.Binarizer { return NewGlobalHistogram(s) }, nil
	}
	return nil, fmt.Errorf("unknown binarizer %q: %w", name, zxpipe.ErrConfiguration)
}

func checkSource(source zxpipe.LuminanceSource) error {
	if source == nil {
		return fmt.Errorf("nil luminance source: %w", zxpipe.ErrInvalidInput)
	}
	if source.Width() <= 0 || source.Height() <= 0 {
		return fmt.Errorf("luminance source is %dx%d: %w", source.Width(), source.Height(), zxpipe.ErrInvalidInput)
	}
	return nil
}
