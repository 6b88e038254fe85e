package charset

import (
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Names returned by GuessEncoding.
const (
	UTF8      = "UTF-8"
	UTF16     = "UTF-16"
	ShiftJIS  = "Shift_JIS"
	ISO8859_1 = "ISO-8859-1"
)

// DecodeBytes converts data in the named character set to a UTF-8 string.
// Unknown names and undecodable input fall back to the raw bytes.
func DecodeBytes(data []byte, name string) string {
	enc := unicode.UTF8
	if name == UTF16 {
		enc = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	} else if e := ECIByName(name); e != nil {
		enc = e.Encoding
	}
	if enc == unicode.UTF8 {
		return string(data)
	}
	decoded, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

// GuessEncoding picks a character set for bytes that carry no ECI. A
// non-empty hint wins outright.
func GuessEncoding(data []byte, hint string) string {
	if hint != "" {
		return hint
	}
	if len(data) > 2 && (data[0] == 0xFE && data[1] == 0xFF || data[0] == 0xFF && data[1] == 0xFE) {
		return UTF16
	}

	u := utf8Scan{ok: true}
	iso := isoScan{ok: true}
	sj := sjisScan{ok: true}
	for _, b := range data {
		if !u.ok && !iso.ok && !sj.ok {
			break
		}
		u.feed(b)
		iso.feed(b)
		sj.feed(b)
	}
	u.ok = u.ok && u.pending == 0
	sj.ok = sj.ok && sj.pending == 0

	bom := len(data) > 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF
	switch {
	case u.ok && (bom || u.multiByte > 0):
		return UTF8
	case sj.ok && (sj.maxKatakanaRun >= 3 || sj.maxDoubleRun >= 3):
		return ShiftJIS
	case iso.ok && sj.ok:
		if sj.maxKatakanaRun == 2 && sj.katakana == 2 || iso.highOther*10 >= len(data) {
			return ShiftJIS
		}
		return ISO8859_1
	case iso.ok:
		return ISO8859_1
	case sj.ok:
		return ShiftJIS
	}
	return UTF8
}

type utf8Scan struct {
	ok        bool
	pending   int
	multiByte int
}

func (s *utf8Scan) feed(b byte) {
	if !s.ok {
		return
	}
	switch {
	case s.pending > 0:
		if b&0x80 == 0 {
			s.ok = false
			return
		}
		s.pending--
	case b&0x80 == 0:
	case b&0x40 == 0:
		s.ok = false
	case b&0x20 == 0:
		s.pending, s.multiByte = 1, s.multiByte+1
	case b&0x10 == 0:
		s.pending, s.multiByte = 2, s.multiByte+1
	case b&0x08 == 0:
		s.pending, s.multiByte = 3, s.multiByte+1
	default:
		s.ok = false
	}
}

type isoScan struct {
	ok        bool
	highOther int
}

func (s *isoScan) feed(b byte) {
	if !s.ok {
		return
	}
	switch {
	case b > 0x7F && b < 0xA0:
		s.ok = false
	case b > 0x9F && (b < 0xC0 || b == 0xD7 || b == 0xF7):
		s.highOther++
	}
}

type sjisScan struct {
	ok             bool
	pending        int
	katakana       int
	katakanaRun    int
	doubleRun      int
	maxKatakanaRun int
	maxDoubleRun   int
}

func (s *sjisScan) feed(b byte) {
	if !s.ok {
		return
	}
	switch {
	case s.pending > 0:
		if b < 0x40 || b == 0x7F || b > 0xFC {
			s.ok = false
			return
		}
		s.pending--
	case b == 0x80 || b == 0xA0 || b > 0xEF:
		s.ok = false
	case b > 0xA0 && b < 0xE0:
		s.katakana++
		s.doubleRun = 0
		s.katakanaRun++
		s.maxKatakanaRun = max(s.maxKatakanaRun, s.katakanaRun)
	case b > 0x7F:
		s.pending++
		s.katakanaRun = 0
		s.doubleRun++
		s.maxDoubleRun = max(s.maxDoubleRun, s.doubleRun)
	default:
		s.katakanaRun, s.doubleRun = 0, 0
	}
}
