package zxpipe

// Reader decodes barcodes from a BinaryBitmap.
type Reader interface {
	// Decode attempts to decode a barcode from the image. A nil hints value
	// means no hints.
	Decode(image *BinaryBitmap, hints *Hints) (*Result, error)

	// Reset resets any internal state.
	Reset()
}

// StatefulReader is a Reader that can reuse the configuration prepared by
// its last full Decode.
type StatefulReader interface {
	Reader

	// DecodeWithState decodes using the readers and hints set up by the
	// previous Decode or SetHints call.
	DecodeWithState(image *BinaryBitmap) (*Result, error)
}

// MultipleBarcodeReader can decode multiple barcodes from a single image.
type MultipleBarcodeReader interface {
	// DecodeMultiple attempts to decode all barcodes in the image.
	DecodeMultiple(image *BinaryBitmap, hints *Hints) ([]*Result, error)
}
