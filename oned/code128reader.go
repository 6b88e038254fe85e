package oned

import (
	"fmt"
	"strings"

	"github.com/ericlevine/zxpipe"
	"github.com/ericlevine/zxpipe/bitutil"
)

// Symbol values that switch sets or carry a function rather than data.
const (
	c128FNC3   = 96
	c128FNC2   = 97
	c128Shift  = 98
	c128CodeC  = 99
	c128CodeB  = 100 // FNC4 while in set B
	c128CodeA  = 101 // FNC4 while in set A
	c128FNC1   = 102
	c128StartA = 103
	c128StartC = 105
	c128Stop   = 106
)

const (
	code128MaxAvgVariance        = 0.25
	code128MaxIndividualVariance = 0.7
)

// code128Table gives the bar and space widths of each symbol value in
// modules. Stop carries a trailing terminator bar.
var code128Table = [...]string{
	"212222", "222122", "222221", "121223", "121322", "131222", "122213", "122312", "132212",
	"221213", "221312", "231212", "112232", "122132", "122231", "113222", "123122", "123221",
	"223211", "221132", "221231", "213212", "223112", "312131", "311222", "321122", "321221",
	"312212", "322112", "322211", "212123", "212321", "232121", "111323", "131123", "131321",
	"112313", "132113", "132311", "211313", "231113", "231311", "112133", "112331", "132131",
	"113123", "113321", "133121", "313121", "211331", "231131", "213113", "213311", "213131",
	"311123", "311321", "331121", "312113", "312311", "332111", "314111", "221411", "431111",
	"111224", "111422", "121124", "121421", "141122", "141221", "112214", "112412", "122114",
	"122411", "142112", "142211", "241211", "221114", "413111", "241112", "134111", "111242",
	"121142", "121241", "114212", "124112", "124211", "411212", "421112", "421211", "212141",
	"214121", "412121", "111143", "111341", "131141", "114113", "114311", "411113", "411311",
	"113141", "114131", "311141", "411131", "211412", "211214", "211232", "2331112",
}

var code128Patterns = func() [][]int {
	out := make([][]int, len(code128Table))
	for i, widths := range code128Table {
		p := make([]int, len(widths))
		for j := range widths {
			p[j] = int(widths[j] - '0')
		}
		out[i] = p
	}
	return out
}()

// Code128Reader decodes Code 128 in all three code sets, including FNC4
// extended characters. With HintAssumeGS1 a leading FNC1 becomes "]C1" and
// later ones the group separator.
type Code128Reader struct{}

// NewCode128Reader creates a Code 128 reader.
func NewCode128Reader() *Code128Reader {
	return &Code128Reader{}
}

// Decode scans image for a Code 128 symbol.
func (r *Code128Reader) Decode(image *zxpipe.BinaryBitmap, hints *zxpipe.Hints) (*zxpipe.Result, error) {
	return DecodeOneD(image, r, hints)
}

// Reset is a no-op.
func (r *Code128Reader) Reset() {}

// code128State turns a stream of symbol values into text.
type code128State struct {
	text      strings.Builder
	gs1       bool
	modifier  int
	set       int
	shifted   bool // current symbol is read in the other of sets A and B
	upper     bool
	upperOnce bool
	printable bool // last data symbol produced text
}

func (s *code128State) put(ch byte) {
	if s.upper != s.upperOnce {
		ch += 128
	}
	s.text.WriteByte(ch)
	s.upperOnce = false
}

func (s *code128State) fnc1() {
	switch s.text.Len() {
	case 0:
		s.modifier = 1
	case 1:
		s.modifier = 2
	}
	switch {
	case !s.gs1:
	case s.text.Len() == 0:
		s.text.WriteString("]C1")
	default:
		s.text.WriteByte(0x1D)
	}
}

func (s *code128State) fnc4() {
	if s.upperOnce {
		s.upper, s.upperOnce = !s.upper, false
		return
	}
	s.upperOnce = true
}

// apply interprets one data or function symbol.
func (s *code128State) apply(code int) error {
	if code >= c128StartA && code <= c128StartC {
		return fmt.Errorf("start symbol %d inside code 128 data: %w", code, zxpipe.ErrFormat)
	}
	restore := s.shifted
	s.shifted = false
	s.printable = true

	switch {
	case s.set == c128CodeA && code < 64:
		s.put(byte(' ' + code))
	case s.set == c128CodeA && code < 96:
		s.put(byte(code - 64))
	case s.set == c128CodeB && code < 96:
		s.put(byte(' ' + code))
	case s.set == c128CodeC && code < 100:
		fmt.Fprintf(&s.text, "%02d", code)
	default:
		s.printable = false
		switch code {
		case c128FNC1:
			s.fnc1()
		case c128FNC2:
			s.modifier = 4
		case c128FNC3:
		case c128Shift:
			s.shifted = true
			s.set = otherTextSet(s.set)
		case c128CodeA, c128CodeB:
			if s.set == code {
				s.fnc4()
			} else {
				s.set = code
			}
		case c128CodeC:
			s.set = c128CodeC
		}
	}
	if restore {
		s.set = otherTextSet(s.set)
	}
	return nil
}

func otherTextSet(set int) int {
	if set == c128CodeA {
		return c128CodeB
	}
	return c128CodeA
}

// DecodeRow reads symbols from the start code to the stop code, then checks
// the quiet zone and the mod 103 check symbol.
func (r *Code128Reader) DecodeRow(rowNumber int, row *bitutil.BitArray, hints *zxpipe.Hints) (*zxpipe.Result, error) {
	counters := make([]int, 6)
	startBegin, startEnd, startCode, err := findCode128Start(row, counters)
	if err != nil {
		return nil, err
	}

	// Start A, B and C select sets A, B and C, whose latch values run the
	// other way.
	state := &code128State{gs1: hints.AssumeGS1(), set: c128CodeA + c128StartA - startCode}
	codes := []byte{byte(startCode)}
	next := startEnd
	var symbolStart, symbolWidth int
	for {
		code, err := decodeCode128(row, counters, next)
		if err != nil {
			return nil, err
		}
		codes = append(codes, byte(code))
		symbolStart, symbolWidth = next, sum(counters)
		next += symbolWidth
		if code == c128Stop {
			break
		}
		if err := state.apply(code); err != nil {
			return nil, err
		}
	}

	next = row.GetNextUnset(next)
	quietEnd := min(row.Size(), next+(next-symbolStart)/2)
	if !row.IsRange(next, quietEnd, false) {
		return nil, fmt.Errorf("no quiet zone after code 128 stop: %w", zxpipe.ErrNotFound)
	}
	// Start, at least one data symbol, check symbol and stop.
	if len(codes) < 4 {
		return nil, zxpipe.ErrNotFound
	}
	if err := verifyCode128Checksum(codes[:len(codes)-1]); err != nil {
		return nil, err
	}

	text := state.text.String()
	if text == "" {
		return nil, zxpipe.ErrNotFound
	}
	// The check symbol was rendered as data; drop it.
	if state.printable {
		n := 1
		if state.set == c128CodeC {
			n = 2
		}
		text = text[:max(0, len(text)-n)]
	}

	y := float64(rowNumber)
	res := zxpipe.NewResult(text, codes, []zxpipe.ResultPoint{
		{X: float64(startBegin+startEnd) / 2, Y: y},
		{X: float64(symbolStart) + float64(symbolWidth)/2, Y: y},
	}, zxpipe.FormatCode128)
	res.PutMetadata(zxpipe.MetadataSymbologyIdentifier, fmt.Sprintf("]C%d", state.modifier))
	return res, nil
}

// verifyCode128Checksum checks codes, start first and check symbol last,
// against the position-weighted sum mod 103.
func verifyCode128Checksum(codes []byte) error {
	data, check := codes[:len(codes)-1], int(codes[len(codes)-1])
	total := int(data[0])
	for i := 1; i < len(data); i++ {
		total += i * int(data[i])
	}
	if total%103 != check {
		return fmt.Errorf("code 128 check symbol %d, want %d: %w", check, total%103, zxpipe.ErrChecksum)
	}
	return nil
}

// findCode128Start locates a start symbol with a quiet zone of half its
// width before it.
func findCode128Start(row *bitutil.BitArray, counters []int) (int, int, int, error) {
	code := -1
	begin, end, ok := findPattern(row, 0, false, counters, func(begin, end int) bool {
		c, ok := bestCode128Match(counters, c128StartA, c128StartC)
		if !ok || !row.IsRange(max(0, begin-(end-begin)/2), begin, false) {
			return false
		}
		code = c
		return true
	})
	if !ok {
		return 0, 0, 0, fmt.Errorf("no code 128 start: %w", zxpipe.ErrNotFound)
	}
	return begin, end, code, nil
}

func decodeCode128(row *bitutil.BitArray, counters []int, offset int) (int, error) {
	if err := RecordPattern(row, offset, counters); err != nil {
		return 0, err
	}
	code, ok := bestCode128Match(counters, 0, len(code128Patterns)-1)
	if !ok {
		return 0, fmt.Errorf("no code 128 symbol at %d: %w", offset, zxpipe.ErrNotFound)
	}
	return code, nil
}

// bestCode128Match returns the value in [from, to] closest to counters
// within the average variance limit.
func bestCode128Match(counters []int, from, to int) (int, bool) {
	best, bestVariance := -1, code128MaxAvgVariance
	for code := from; code <= to; code++ {
		if v := PatternMatchVariance(counters, code128Patterns[code], code128MaxIndividualVariance); v < bestVariance {
			best, bestVariance = code, v
		}
	}
	return best, best >= 0
}
