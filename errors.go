package zxpipe

import "errors"

var (
	// ErrNotFound is returned by readers when no symbol could be located.
	// The pipeline reports it as a negative outcome rather than an error.
	ErrNotFound = errors.New("barcode not found")

	// ErrConfiguration is returned when the pipeline has no way to turn the
	// caller's input into a LuminanceSource.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidInput is returned for nil or empty pixel buffers and
	// degenerate dimensions.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDecoderInternal matches any failure where a symbol was located but
	// did not pass structural or error-correction validation.
	ErrDecoderInternal = errors.New("decoder internal error")

	// ErrChecksum is returned when a symbol's checksum does not match.
	ErrChecksum error = &decodeError{msg: "checksum error"}

	// ErrFormat is returned when a located symbol violates its format rules.
	ErrFormat error = &decodeError{msg: "format error"}
)

type decodeError struct {
	msg string
}

func (e *decodeError) Error() string { return e.msg }

// Is reports ErrChecksum and ErrFormat as kinds of ErrDecoderInternal.
func (e *decodeError) Is(target error) bool {
	return target == ErrDecoderInternal
}
