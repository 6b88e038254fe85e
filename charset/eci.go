// Package charset maps ECI designators and character set names onto
// golang.org/x/text encodings, and guesses the encoding of unlabeled bytes.
package charset

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// ErrUnknownECI is returned for ECI values outside the character set range
// or without an assigned character set.
var ErrUnknownECI = errors.New("charset: unknown ECI value")

// ECI is an Extended Channel Interpretation that selects a character set.
type ECI struct {
	Values   []int
	Name     string
	Aliases  []string
	Encoding encoding.Encoding
}

var ecis = []*ECI{
	{[]int{0, 2}, "Cp437", []string{"IBM437"}, charmap.CodePage437},
	{[]int{1, 3}, "ISO-8859-1", []string{"ISO8859_1"}, charmap.ISO8859_1},
	{[]int{4}, "ISO-8859-2", []string{"ISO8859_2"}, charmap.ISO8859_2},
	{[]int{5}, "ISO-8859-3", []string{"ISO8859_3"}, charmap.ISO8859_3},
	{[]int{6}, "ISO-8859-4", []string{"ISO8859_4"}, charmap.ISO8859_4},
	{[]int{7}, "ISO-8859-5", []string{"ISO8859_5"}, charmap.ISO8859_5},
	{[]int{8}, "ISO-8859-6", []string{"ISO8859_6"}, charmap.ISO8859_6},
	{[]int{9}, "ISO-8859-7", []string{"ISO8859_7"}, charmap.ISO8859_7},
	{[]int{10}, "ISO-8859-8", []string{"ISO8859_8"}, charmap.ISO8859_8},
	{[]int{11}, "ISO-8859-9", []string{"ISO8859_9"}, charmap.ISO8859_9},
	{[]int{12}, "ISO-8859-10", []string{"ISO8859_10"}, charmap.ISO8859_10},
	// Windows-874 is the x/text superset of ISO-8859-11.
	{[]int{13}, "ISO-8859-11", []string{"ISO8859_11", "TIS-620"}, charmap.Windows874},
	{[]int{15}, "ISO-8859-13", []string{"ISO8859_13"}, charmap.ISO8859_13},
	{[]int{16}, "ISO-8859-14", []string{"ISO8859_14"}, charmap.ISO8859_14},
	{[]int{17}, "ISO-8859-15", []string{"ISO8859_15"}, charmap.ISO8859_15},
	{[]int{18}, "ISO-8859-16", []string{"ISO8859_16"}, charmap.ISO8859_16},
	{[]int{20}, "Shift_JIS", []string{"SJIS"}, japanese.ShiftJIS},
	{[]int{21}, "windows-1250", []string{"Cp1250"}, charmap.Windows1250},
	{[]int{22}, "windows-1251", []string{"Cp1251"}, charmap.Windows1251},
	{[]int{23}, "windows-1252", []string{"Cp1252"}, charmap.Windows1252},
	{[]int{24}, "windows-1256", []string{"Cp1256"}, charmap.Windows1256},
	{[]int{25}, "UTF-16BE", []string{"UnicodeBigUnmarked", "UnicodeBig"}, unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)},
	{[]int{26}, "UTF-8", []string{"UTF8"}, unicode.UTF8},
	{[]int{27, 170}, "US-ASCII", []string{"ASCII"}, unicode.UTF8},
	{[]int{28}, "Big5", nil, traditionalchinese.Big5},
	{[]int{29}, "GB18030", []string{"GB2312", "EUC_CN", "GBK"}, simplifiedchinese.GB18030},
	{[]int{30}, "EUC-KR", []string{"EUC_KR"}, korean.EUCKR},
}

var (
	byValue = map[int]*ECI{}
	byName  = map[string]*ECI{}
)

func init() {
	for _, e := range ecis {
		for _, v := range e.Values {
			byValue[v] = e
		}
		byName[normalize(e.Name)] = e
		for _, a := range e.Aliases {
			byName[normalize(a)] = e
		}
	}
}

func normalize(name string) string {
	return strings.ToUpper(strings.NewReplacer("-", "", "_", "").Replace(name))
}

// ECIByValue returns the character set an ECI value designates.
func ECIByValue(value int) (*ECI, error) {
	if value < 0 || value >= 900 {
		return nil, fmt.Errorf("ECI %d: %w", value, ErrUnknownECI)
	}
	e, ok := byValue[value]
	if !ok {
		return nil, fmt.Errorf("ECI %d: %w", value, ErrUnknownECI)
	}
	return e, nil
}

// ECIByName returns the ECI for a character set name, or nil. Matching
// ignores case, dashes and underscores.
func ECIByName(name string) *ECI {
	return byName[normalize(name)]
}
