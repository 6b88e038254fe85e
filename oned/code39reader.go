package oned

import (
	"fmt"
	"math"
	"strings"

	"github.com/ericlevine/zxpipe"
	"github.com/ericlevine/zxpipe/bitutil"
)

const code39Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ-. $/+%"

// code39Patterns holds one 9-bit narrow/wide pattern per alphabet
// character, most significant bit first, bars and spaces alternating.
var code39Patterns = [len(code39Alphabet)]int{
	0x034, 0x121, 0x061, 0x160, 0x031, 0x130, 0x070, 0x025, 0x124, 0x064,
	0x109, 0x049, 0x148, 0x019, 0x118, 0x058, 0x00D, 0x10C, 0x04C, 0x01C,
	0x103, 0x043, 0x142, 0x013, 0x112, 0x052, 0x007, 0x106, 0x046, 0x016,
	0x181, 0x0C1, 0x1C0, 0x091, 0x190, 0x0D0, 0x085, 0x184, 0x0C4, 0x0A8,
	0x0A2, 0x08A, 0x02A,
}

// code39Guard is the '*' start/stop character.
const code39Guard = 0x094

// Code39Reader decodes Code 39. With CheckDigit the last character is a
// mod 43 check character and is stripped. With Extended, the two-character
// escapes for full ASCII are expanded.
type Code39Reader struct {
	CheckDigit bool
	Extended   bool
}

// NewCode39Reader creates a reader for plain Code 39 without check digit.
func NewCode39Reader() *Code39Reader {
	return &Code39Reader{}
}

// Decode scans image for a Code 39 symbol.
func (r *Code39Reader) Decode(image *zxpipe.BinaryBitmap, hints *zxpipe.Hints) (*zxpipe.Result, error) {
	return DecodeOneD(image, r, hints)
}

// Reset is a no-op.
func (r *Code39Reader) Reset() {}

// DecodeRow reads characters between two '*' guards.
func (r *Code39Reader) DecodeRow(rowNumber int, row *bitutil.BitArray, hints *zxpipe.Hints) (*zxpipe.Result, error) {
	counters := make([]int, 9)
	guardStart, guardEnd, err := findCode39Guard(row, counters)
	if err != nil {
		return nil, err
	}

	var (
		text      strings.Builder
		next      = row.GetNextSet(guardEnd)
		lastStart int
		lastWidth int
	)
	for {
		if err := RecordPattern(row, next, counters); err != nil {
			return nil, err
		}
		ch, ok := code39Char(narrowWidePattern(counters))
		if !ok {
			return nil, fmt.Errorf("code 39 pattern at %d: %w", next, zxpipe.ErrNotFound)
		}
		lastStart, lastWidth = next, sum(counters)
		next = row.GetNextSet(next + lastWidth)
		if ch == '*' {
			break
		}
		text.WriteByte(ch)
	}

	// The stop guard needs a quiet zone of at least half its width unless
	// it runs into the edge of the row.
	trailing := next - lastStart - lastWidth
	if next != row.Size() && 2*trailing < lastWidth {
		return nil, zxpipe.ErrNotFound
	}

	s := text.String()
	if r.CheckDigit {
		if len(s) == 0 {
			return nil, zxpipe.ErrNotFound
		}
		body, check := s[:len(s)-1], s[len(s)-1]
		total := 0
		for i := 0; i < len(body); i++ {
			total += strings.IndexByte(code39Alphabet, body[i])
		}
		if check != code39Alphabet[total%len(code39Alphabet)] {
			return nil, fmt.Errorf("code 39 check character %q: %w", check, zxpipe.ErrChecksum)
		}
		s = body
	}
	if s == "" {
		return nil, zxpipe.ErrNotFound
	}
	if r.Extended {
		if s, err = expandCode39(s); err != nil {
			return nil, err
		}
	}

	y := float64(rowNumber)
	res := zxpipe.NewResult(s, nil, []zxpipe.ResultPoint{
		{X: float64(guardStart+guardEnd) / 2, Y: y},
		{X: float64(lastStart) + float64(lastWidth)/2, Y: y},
	}, zxpipe.FormatCode39)
	res.PutMetadata(zxpipe.MetadataSymbologyIdentifier, "]A0")
	return res, nil
}

// findCode39Guard finds a '*' with a light quiet zone of half its width
// before it.
func findCode39Guard(row *bitutil.BitArray, counters []int) (int, int, error) {
	start, end, ok := findPattern(row, 0, false, counters, func(start, end int) bool {
		return narrowWidePattern(counters) == code39Guard &&
			row.IsRange(max(0, start-(end-start)/2), start, false)
	})
	if !ok {
		return 0, 0, fmt.Errorf("no code 39 guard: %w", zxpipe.ErrNotFound)
	}
	return start, end, nil
}

// narrowWidePattern classifies each run as narrow or wide by raising the
// narrow threshold until exactly three runs are wide. It returns -1 when
// no threshold works or one wide run dominates the others.
func narrowWidePattern(counters []int) int {
	narrowMax := 0
	for {
		threshold := math.MaxInt
		for _, c := range counters {
			if c > narrowMax && c < threshold {
				threshold = c
			}
		}
		narrowMax = threshold

		pattern, wide, wideWidth := 0, 0, 0
		for i, c := range counters {
			if c > narrowMax {
				pattern |= 1 << (len(counters) - 1 - i)
				wide++
				wideWidth += c
			}
		}
		if wide == 3 {
			for _, c := range counters {
				if c > narrowMax && 2*c >= wideWidth {
					return -1
				}
			}
			return pattern
		}
		if wide < 3 {
			return -1
		}
	}
}

func code39Char(pattern int) (byte, bool) {
	if pattern == code39Guard {
		return '*', true
	}
	for i, p := range code39Patterns {
		if p == pattern {
			return code39Alphabet[i], true
		}
	}
	return 0, false
}

// expandCode39 decodes the full ASCII escapes: +X lower case, $X control
// characters, %X punctuation and /X symbols.
func expandCode39(s string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !strings.ContainsRune("+$%/", rune(c)) {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(s) {
			return "", fmt.Errorf("dangling code 39 escape %q: %w", c, zxpipe.ErrFormat)
		}
		i++
		ch, ok := code39Escape(c, s[i])
		if !ok {
			return "", fmt.Errorf("invalid code 39 escape %q%q: %w", c, s[i], zxpipe.ErrFormat)
		}
		b.WriteByte(ch)
	}
	return b.String(), nil
}

func code39Escape(shift, next byte) (byte, bool) {
	switch shift {
	case '+':
		if next >= 'A' && next <= 'Z' {
			return next + 32, true
		}
	case '$':
		if next >= 'A' && next <= 'Z' {
			return next - 64, true
		}
	case '/':
		switch {
		case next >= 'A' && next <= 'O':
			return next - 32, true
		case next == 'Z':
			return ':', true
		}
	case '%':
		switch {
		case next >= 'A' && next <= 'E':
			return next - 38, true
		case next >= 'F' && next <= 'J':
			return next - 11, true
		case next >= 'K' && next <= 'O':
			return next + 16, true
		case next >= 'P' && next <= 'T':
			return next + 43, true
		case next == 'U':
			return 0, true
		case next == 'V':
			return '@', true
		case next == 'W':
			return '`', true
		case next >= 'X' && next <= 'Z':
			return 127, true
		}
	}
	return 0, false
}

func sum(counters []int) int {
	total := 0
	for _, c := range counters {
		total += c
	}
	return total
}
