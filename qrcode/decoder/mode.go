package decoder

// Mode is the 4-bit segment indicator that precedes each data segment.
type Mode int

const (
	ModeTerminator         Mode = 0x0
	ModeNumeric            Mode = 0x1
	ModeAlphanumeric       Mode = 0x2
	ModeStructuredAppend   Mode = 0x3
	ModeByte               Mode = 0x4
	ModeFNC1FirstPosition  Mode = 0x5
	ModeECI                Mode = 0x7
	ModeKanji              Mode = 0x8
	ModeFNC1SecondPosition Mode = 0x9
	ModeHanzi              Mode = 0xD
)

// countBits holds the character count width for versions 1-9, 10-26 and
// 27-40. Modes without a count are absent.
var countBits = map[Mode][3]int{
	ModeNumeric:      {10, 12, 14},
	ModeAlphanumeric: {9, 11, 13},
	ModeByte:         {8, 16, 16},
	ModeKanji:        {8, 10, 12},
	ModeHanzi:        {8, 10, 12},
}

var modeNames = map[Mode]string{
	ModeTerminator:         "TERMINATOR",
	ModeNumeric:            "NUMERIC",
	ModeAlphanumeric:       "ALPHANUMERIC",
	ModeStructuredAppend:   "STRUCTURED_APPEND",
	ModeByte:               "BYTE",
	ModeFNC1FirstPosition:  "FNC1_FIRST_POSITION",
	ModeECI:                "ECI",
	ModeKanji:              "KANJI",
	ModeFNC1SecondPosition: "FNC1_SECOND_POSITION",
	ModeHanzi:              "HANZI",
}

func modeForBits(bits int) (Mode, error) {
	m := Mode(bits)
	if _, ok := modeNames[m]; !ok {
		return 0, formatError("invalid mode indicator %#x", bits)
	}
	return m, nil
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "UNKNOWN"
}

// countBitsFor returns the width of the character count field in version v.
func (m Mode) countBitsFor(v *Version) int {
	widths := countBits[m]
	switch {
	case v.Number <= 9:
		return widths[0]
	case v.Number <= 26:
		return widths[1]
	}
	return widths[2]
}
