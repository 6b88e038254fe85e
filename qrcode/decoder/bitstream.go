package decoder

import (
	"strconv"
	"strings"

	"github.com/ericlevine/zxpipe/bitutil"
	"github.com/ericlevine/zxpipe/charset"
	"github.com/ericlevine/zxpipe/internal"
)

const alphanumericTable = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:"

const gb2312Subset = 1

// streamDecoder walks the segments of a corrected data codeword stream.
type streamDecoder struct {
	bs           *bitutil.BitSource
	version      *Version
	characterSet string

	text         strings.Builder
	byteSegments [][]byte
	eci          *charset.ECI
	fnc1First    bool
	fnc1Second   bool
	structured   *internal.StructuredAppend
}

func decodeBitStream(data []byte, v *Version, level ECLevel, characterSet string) (*internal.DecoderResult, error) {
	s := &streamDecoder{
		bs:           bitutil.NewBitSource(data),
		version:      v,
		characterSet: characterSet,
	}
	if err := s.run(); err != nil {
		return nil, err
	}
	return &internal.DecoderResult{
		RawBytes:          data,
		Text:              s.text.String(),
		ByteSegments:      s.byteSegments,
		ECLevel:           level.String(),
		SymbologyModifier: s.symbologyModifier(),
		Append:            s.structured,
	}, nil
}

func (s *streamDecoder) read(n int) (int, error) {
	v, err := s.bs.ReadBits(n)
	if err != nil {
		return 0, formatError("truncated bit stream")
	}
	return v, nil
}

func (s *streamDecoder) run() error {
	for {
		// Fewer than four bits left is an implicit terminator.
		if s.bs.Available() < 4 {
			return nil
		}
		bits, _ := s.read(4)
		mode, err := modeForBits(bits)
		if err != nil {
			return err
		}
		switch mode {
		case ModeTerminator:
			return nil
		case ModeFNC1FirstPosition:
			s.fnc1First = true
		case ModeFNC1SecondPosition:
			// The application indicator is dropped.
			s.fnc1Second = true
		case ModeStructuredAppend:
			if s.bs.Available() < 16 {
				return formatError("truncated structured append header")
			}
			seq, _ := s.read(8)
			parity, _ := s.read(8)
			s.structured = &internal.StructuredAppend{Sequence: seq, Parity: parity}
		case ModeECI:
			if err := s.readECI(); err != nil {
				return err
			}
		case ModeHanzi:
			subset, err := s.read(4)
			if err != nil {
				return err
			}
			count, err := s.read(mode.countBitsFor(s.version))
			if err != nil {
				return err
			}
			if subset == gb2312Subset {
				if err := s.doubleByte(count, 0x060, 0x00A00, 0x0A1A1, 0x0A6A1, "GB2312"); err != nil {
					return err
				}
			}
		default:
			count, err := s.read(mode.countBitsFor(s.version))
			if err != nil {
				return err
			}
			if err := s.segment(mode, count); err != nil {
				return err
			}
		}
	}
}

func (s *streamDecoder) segment(mode Mode, count int) error {
	switch mode {
	case ModeNumeric:
		return s.numeric(count)
	case ModeAlphanumeric:
		return s.alphanumeric(count)
	case ModeByte:
		return s.byteSegment(count)
	case ModeKanji:
		return s.doubleByte(count, 0x0C0, 0x01F00, 0x08140, 0x0C140, "Shift_JIS")
	}
	return formatError("mode %v carries no data", mode)
}

func (s *streamDecoder) readECI() error {
	first, err := s.read(8)
	if err != nil {
		return err
	}
	var value int
	switch {
	case first&0x80 == 0:
		value = first & 0x7F
	case first&0xC0 == 0x80:
		second, err := s.read(8)
		if err != nil {
			return err
		}
		value = (first&0x3F)<<8 | second
	case first&0xE0 == 0xC0:
		rest, err := s.read(16)
		if err != nil {
			return err
		}
		value = (first&0x1F)<<16 | rest
	default:
		return formatError("bad ECI designator %#x", first)
	}
	eci, err := charset.ECIByValue(value)
	if err != nil {
		return formatError("%v", err)
	}
	s.eci = eci
	return nil
}

// doubleByte decodes 13-bit Kanji or Hanzi characters. Each value is split
// into a lead byte (value/divisor) and trail byte (value%divisor), then
// offset into the two-byte code range of charsetName.
func (s *streamDecoder) doubleByte(count, divisor, split, lowOffset, highOffset int, charsetName string) error {
	if count*13 > s.bs.Available() {
		return formatError("truncated %s segment", charsetName)
	}
	buf := make([]byte, 0, 2*count)
	for range count {
		v, _ := s.read(13)
		assembled := (v/divisor)<<8 | v%divisor
		if assembled < split {
			assembled += lowOffset
		} else {
			assembled += highOffset
		}
		buf = append(buf, byte(assembled>>8), byte(assembled))
	}
	s.text.WriteString(charset.DecodeBytes(buf, charsetName))
	return nil
}

func (s *streamDecoder) byteSegment(count int) error {
	if 8*count > s.bs.Available() {
		return formatError("truncated byte segment")
	}
	raw := make([]byte, count)
	for i := range raw {
		v, _ := s.read(8)
		raw[i] = byte(v)
	}
	var name string
	if s.eci != nil {
		name = s.eci.Name
	} else {
		name = charset.GuessEncoding(raw, s.characterSet)
	}
	s.text.WriteString(charset.DecodeBytes(raw, name))
	s.byteSegments = append(s.byteSegments, raw)
	return nil
}

func (s *streamDecoder) alphanumeric(count int) error {
	var seg strings.Builder
	for count > 1 {
		if s.bs.Available() < 11 {
			return formatError("truncated alphanumeric segment")
		}
		pair, _ := s.read(11)
		if pair/45 >= len(alphanumericTable) {
			return formatError("alphanumeric value out of range")
		}
		seg.WriteByte(alphanumericTable[pair/45])
		seg.WriteByte(alphanumericTable[pair%45])
		count -= 2
	}
	if count == 1 {
		if s.bs.Available() < 6 {
			return formatError("truncated alphanumeric segment")
		}
		v, _ := s.read(6)
		if v >= len(alphanumericTable) {
			return formatError("alphanumeric value out of range")
		}
		seg.WriteByte(alphanumericTable[v])
	}
	out := seg.String()
	if s.fnc1First || s.fnc1Second {
		out = expandFNC1(out)
	}
	s.text.WriteString(out)
	return nil
}

// expandFNC1 turns "%%" into "%" and a lone "%" into the GS separator.
func expandFNC1(in string) string {
	var b strings.Builder
	for i := 0; i < len(in); i++ {
		if in[i] != '%' {
			b.WriteByte(in[i])
			continue
		}
		if i+1 < len(in) && in[i+1] == '%' {
			b.WriteByte('%')
			i++
			continue
		}
		b.WriteByte(0x1D)
	}
	return b.String()
}

func (s *streamDecoder) numeric(count int) error {
	groups := []struct{ digits, bits, limit int }{{3, 10, 1000}, {2, 7, 100}, {1, 4, 10}}
	for _, g := range groups {
		for count >= g.digits {
			if s.bs.Available() < g.bits {
				return formatError("truncated numeric segment")
			}
			v, _ := s.read(g.bits)
			if v >= g.limit {
				return formatError("numeric group %d out of range", v)
			}
			digits := strconv.Itoa(v)
			s.text.WriteString(strings.Repeat("0", g.digits-len(digits)) + digits)
			count -= g.digits
		}
	}
	return nil
}

// symbologyModifier is the m in the "]Qm" symbology identifier.
func (s *streamDecoder) symbologyModifier() int {
	m := 1
	switch {
	case s.fnc1First:
		m = 3
	case s.fnc1Second:
		m = 5
	}
	if s.eci != nil {
		m++
	}
	return m
}
