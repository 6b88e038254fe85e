package zxpipe

import (
	"fmt"
	"slices"
	"sync"
)

// MultiFormatReader is a factory/dispatcher that selects appropriate Reader
// implementations based on format hints and tries them in sequence.
//
// Decode rebuilds the reader set from the hints it is given. DecodeWithState
// reuses the set prepared by the last Decode or SetHints, which is the fast
// path for scanning many images with one configuration.
type MultiFormatReader struct {
	hints   *Hints
	readers []Reader
}

// NewMultiFormatReader creates a new multi-format reader with no hints.
func NewMultiFormatReader() *MultiFormatReader {
	return &MultiFormatReader{}
}

// Decode sets hints and decodes image with every applicable reader.
func (r *MultiFormatReader) Decode(image *BinaryBitmap, hints *Hints) (*Result, error) {
	r.SetHints(hints)
	return r.decodeInternal(image)
}

// DecodeWithState decodes with the readers prepared by the previous call.
func (r *MultiFormatReader) DecodeWithState(image *BinaryBitmap) (*Result, error) {
	if r.readers == nil {
		r.SetHints(nil)
	}
	return r.decodeInternal(image)
}

// SetHints snapshots hints and builds the matching reader set.
func (r *MultiFormatReader) SetHints(hints *Hints) {
	r.hints = hints.Clone()
	r.readers = buildReaders(r.hints)
}

// Formats lists the formats the current reader set was built for.
func (r *MultiFormatReader) Formats() []Format {
	if formats := r.hints.PossibleFormats(); len(formats) > 0 {
		return formats
	}
	return RegisteredFormats()
}

// Reset resets all internal readers.
func (r *MultiFormatReader) Reset() {
	for _, reader := range r.readers {
		reader.Reset()
	}
}

func (r *MultiFormatReader) decodeInternal(image *BinaryBitmap) (*Result, error) {
	if len(r.readers) == 0 {
		return nil, fmt.Errorf("no readers registered for %v: %w", r.hints.PossibleFormats(), ErrNotFound)
	}
	var firstErr error
	for _, reader := range r.readers {
		result, err := reader.Decode(image, r.hints)
		if err == nil {
			return result, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if r.hints.AlsoInverted() {
		inverted := image.Inverted()
		for _, reader := range r.readers {
			result, err := reader.Decode(inverted, r.hints)
			if err == nil {
				return result, nil
			}
		}
	}
	if firstErr == nil {
		firstErr = ErrNotFound
	}
	return nil, firstErr
}

// ReaderFactory creates a Reader configured by hints. Format packages
// register one per format they handle.
type ReaderFactory func(hints *Hints) Reader

var (
	registryMu      sync.RWMutex
	readerFactories = map[Format]ReaderFactory{}
)

// RegisterReader registers a reader factory for the given format. This should
// be called from an init() function in format-specific packages.
func RegisterReader(format Format, factory ReaderFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	readerFactories[format] = factory
}

// RegisteredFormats returns every format with a registered reader, in
// Format order.
func RegisteredFormats() []Format {
	registryMu.RLock()
	defer registryMu.RUnlock()
	formats := make([]Format, 0, len(readerFactories))
	for f := range readerFactories {
		formats = append(formats, f)
	}
	slices.Sort(formats)
	return formats
}

// buildReaders creates one reader per requested format that has a factory,
// falling back to every registered format.
func buildReaders(hints *Hints) []Reader {
	formats := hints.PossibleFormats()
	if len(formats) == 0 {
		formats = RegisteredFormats()
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	var readers []Reader
	for _, f := range formats {
		if factory, ok := readerFactories[f]; ok {
			readers = append(readers, factory(hints))
		}
	}
	return readers
}
