package zxpipe

import (
	"fmt"
	"slices"
	"strings"
)

// HintKind enumerates the decode options a reader understands.
type HintKind int

const (
	// HintTryHarder spends more time looking for a symbol.
	HintTryHarder HintKind = iota
	// HintPureBarcode says the image holds only the symbol with no rotation.
	HintPureBarcode
	// HintCharacterSet names the character set for byte segments.
	HintCharacterSet
	// HintPossibleFormats limits which formats are tried.
	HintPossibleFormats
	// HintAlsoInverted retries on the inverted bitmap.
	HintAlsoInverted
	// HintAssumeGS1 treats a leading FNC1 as a GS1 marker.
	HintAssumeGS1
	// HintAssumeCode39CheckDigit verifies and strips a trailing Code 39 mod
	// 43 check character.
	HintAssumeCode39CheckDigit
	// HintCode39FullASCII expands the Code 39 full ASCII escapes.
	HintCode39FullASCII
)

var hintNames = [...]string{
	HintTryHarder:       "TRY_HARDER",
	HintPureBarcode:     "PURE_BARCODE",
	HintCharacterSet:    "CHARACTER_SET",
	HintPossibleFormats: "POSSIBLE_FORMATS",
	HintAlsoInverted:    "ALSO_INVERTED",
	HintAssumeGS1:       "ASSUME_GS1",

	HintAssumeCode39CheckDigit: "ASSUME_CODE_39_CHECK_DIGIT",
	HintCode39FullASCII:        "CODE_39_FULL_ASCII",
}

func (k HintKind) String() string {
	if k >= 0 && int(k) < len(hintNames) {
		return hintNames[k]
	}
	return fmt.Sprintf("HintKind(%d)", int(k))
}

type hintVariant uint8

const (
	variantFlag hintVariant = iota + 1
	variantString
	variantFormats
)

// HintValue is a tagged union holding the native value of one hint kind.
// Build it with Flag, CharacterSet or Formats.
type HintValue struct {
	variant hintVariant
	str     string
	formats []Format
}

// Flag is the value of a boolean hint. Only enabled flags are stored.
func Flag() HintValue { return HintValue{variant: variantFlag} }

// CharacterSet wraps a character set name.
func CharacterSet(name string) HintValue { return HintValue{variant: variantString, str: name} }

// Formats wraps a list of formats.
func Formats(formats ...Format) HintValue {
	return HintValue{variant: variantFormats, formats: slices.Clone(formats)}
}

// Text returns the character set of a CharacterSet value.
func (v HintValue) Text() (string, bool) {
	return v.str, v.variant == variantString
}

// Formats returns a copy of the formats of a Formats value.
func (v HintValue) Formats() ([]Format, bool) {
	return slices.Clone(v.formats), v.variant == variantFormats
}

func (v HintValue) equal(o HintValue) bool {
	return v.variant == o.variant && v.str == o.str && slices.Equal(v.formats, o.formats)
}

func (v HintValue) accepts(k HintKind) bool {
	switch k {
	case HintCharacterSet:
		return v.variant == variantString
	case HintPossibleFormats:
		return v.variant == variantFormats
	default:
		return v.variant == variantFlag
	}
}

// Hints maps hint kinds to values. A missing key means the hint is unset.
// The zero value is ready to use.
type Hints struct {
	m map[HintKind]HintValue
}

// Set stores v under k. It panics if v is the wrong variant for k.
func (h *Hints) Set(k HintKind, v HintValue) {
	if !v.accepts(k) {
		panic(fmt.Sprintf("zxpipe: hint %s cannot hold this value", k))
	}
	if h.m == nil {
		h.m = make(map[HintKind]HintValue)
	}
	h.m[k] = v
}

// Delete removes k.
func (h *Hints) Delete(k HintKind) {
	delete(h.m, k)
}

// Get returns the value stored under k.
func (h *Hints) Get(k HintKind) (HintValue, bool) {
	if h == nil {
		return HintValue{}, false
	}
	v, ok := h.m[k]
	return v, ok
}

// Has reports whether k is set.
func (h *Hints) Has(k HintKind) bool {
	_, ok := h.Get(k)
	return ok
}

// Len returns the number of set hints.
func (h *Hints) Len() int {
	if h == nil {
		return 0
	}
	return len(h.m)
}

// SetFlag sets k when on is true and removes it otherwise.
func (h *Hints) SetFlag(k HintKind, on bool) {
	if on {
		h.Set(k, Flag())
	} else {
		h.Delete(k)
	}
}

// TryHarder reports whether HintTryHarder is set.
func (h *Hints) TryHarder() bool { return h.Has(HintTryHarder) }

// PureBarcode reports whether HintPureBarcode is set.
func (h *Hints) PureBarcode() bool { return h.Has(HintPureBarcode) }

// AlsoInverted reports whether HintAlsoInverted is set.
func (h *Hints) AlsoInverted() bool { return h.Has(HintAlsoInverted) }

// AssumeGS1 reports whether HintAssumeGS1 is set.
func (h *Hints) AssumeGS1() bool { return h.Has(HintAssumeGS1) }

// AssumeCode39CheckDigit reports whether HintAssumeCode39CheckDigit is set.
func (h *Hints) AssumeCode39CheckDigit() bool { return h.Has(HintAssumeCode39CheckDigit) }

// Code39FullASCII reports whether HintCode39FullASCII is set.
func (h *Hints) Code39FullASCII() bool { return h.Has(HintCode39FullASCII) }

// CharacterSet returns the configured character set, or "".
func (h *Hints) CharacterSet() string {
	v, _ := h.Get(HintCharacterSet)
	s, _ := v.Text()
	return s
}

// PossibleFormats returns the configured formats, or nil.
func (h *Hints) PossibleFormats() []Format {
	v, _ := h.Get(HintPossibleFormats)
	f, _ := v.Formats()
	return f
}

// Clone returns a deep copy. Cloning nil yields an empty set.
func (h *Hints) Clone() *Hints {
	c := &Hints{}
	if h == nil {
		return c
	}
	for k, v := range h.m {
		c.Set(k, HintValue{variant: v.variant, str: v.str, formats: slices.Clone(v.formats)})
	}
	return c
}

// Equal reports whether both sets hold the same keys and values.
func (h *Hints) Equal(o *Hints) bool {
	if h.Len() != o.Len() {
		return false
	}
	if h == nil || o == nil {
		return true
	}
	for k, v := range h.m {
		ov, ok := o.m[k]
		if !ok || !v.equal(ov) {
			return false
		}
	}
	return true
}

// String renders the set sorted by kind, for logs.
func (h *Hints) String() string {
	if h.Len() == 0 {
		return "{}"
	}
	keys := make([]HintKind, 0, len(h.m))
	for k := range h.m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k.String())
		v := h.m[k]
		switch v.variant {
		case variantString:
			fmt.Fprintf(&b, "=%s", v.str)
		case variantFormats:
			fmt.Fprintf(&b, "=%v", v.formats)
		}
	}
	b.WriteByte('}')
	return b.String()
}
