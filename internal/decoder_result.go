// Package internal holds the result carriers passed between a symbology's
// detector, decoder and reader.
package internal

// StructuredAppend places one symbol within a message split over several.
type StructuredAppend struct {
	// Sequence holds the symbol's position in the high nibble and the
	// symbol count minus one in the low nibble.
	Sequence int
	Parity   int
}

// DecoderResult is what a symbology decoder extracts from a sampled grid.
type DecoderResult struct {
	RawBytes          []byte
	Text              string
	ByteSegments      [][]byte
	ECLevel           string
	ErrorsCorrected   int
	SymbologyModifier int
	// Append is nil unless the symbol is part of a structured append set.
	Append *StructuredAppend
	// Mirrored is set when the grid only decoded after transposing it.
	Mirrored bool
}
