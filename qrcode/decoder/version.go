package decoder

import (
	"github.com/ericlevine/zxpipe/bitutil"
)

// ECBlock is a run of Count blocks with the same number of data codewords.
type ECBlock struct {
	Count         int
	DataCodewords int
}

// ECBlocks describes the block structure for one version and level.
type ECBlocks struct {
	ECCodewordsPerBlock int
	Blocks              []ECBlock
}

func (e ECBlocks) numBlocks() int {
	n := 0
	for _, b := range e.Blocks {
		n += b.Count
	}
	return n
}

// Version is a QR symbol version, 1 through 40.
type Version struct {
	Number           int
	AlignmentCenters []int
	ecBlocks         [4]ECBlocks
	TotalCodewords   int
}

// Dimension returns the side length in modules.
func (v *Version) Dimension() int {
	return 17 + 4*v.Number
}

// ECBlocks returns the block structure used at level.
func (v *Version) ECBlocks(level ECLevel) ECBlocks {
	return v.ecBlocks[level]
}

// functionPattern marks the modules that carry no data: finder patterns
// with separators and format information, alignment patterns, timing
// patterns and, from version 7, the version information blocks.
func (v *Version) functionPattern() *bitutil.BitMatrix {
	n := v.Dimension()
	m := bitutil.NewBitMatrix(n)
	m.SetRegion(0, 0, 9, 9)
	m.SetRegion(n-8, 0, 8, 9)
	m.SetRegion(0, n-8, 9, 8)

	last := len(v.AlignmentCenters) - 1
	for xi, cx := range v.AlignmentCenters {
		for yi, cy := range v.AlignmentCenters {
			// The three corners holding finder patterns get no alignment pattern.
			if xi == 0 && (yi == 0 || yi == last) || xi == last && yi == 0 {
				continue
			}
			m.SetRegion(cy-2, cx-2, 5, 5)
		}
	}

	m.SetRegion(6, 9, 1, n-17)
	m.SetRegion(9, 6, n-17, 1)
	if v.Number > 6 {
		m.SetRegion(n-11, 0, 3, 6)
		m.SetRegion(0, n-11, 6, 3)
	}
	return m
}

// versionInfoCodewords holds the 18-bit version information for versions
// 7 through 40.
var versionInfoCodewords = []int{
	0x07C94, 0x085BC, 0x09A99, 0x0A4D3, 0x0BBF6,
	0x0C762, 0x0D847, 0x0E60D, 0x0F928, 0x10B78,
	0x1145D, 0x12A17, 0x13532, 0x149A6, 0x15683,
	0x168C9, 0x177EC, 0x18EC4, 0x191E1, 0x1AFAB,
	0x1B08E, 0x1CC1A, 0x1D33F, 0x1ED75, 0x1F250,
	0x209D5, 0x216F0, 0x228BA, 0x2379F, 0x24B0B,
	0x2542E, 0x26A64, 0x27541, 0x28C69,
}

// VersionForNumber returns version n.
func VersionForNumber(n int) (*Version, error) {
	if n < 1 || n > len(versions) {
		return nil, formatError("version %d out of range", n)
	}
	return &versions[n-1], nil
}

// VersionForDimension returns the version whose symbols are dimension
// modules wide.
func VersionForDimension(dimension int) (*Version, error) {
	if dimension%4 != 1 {
		return nil, formatError("dimension %d is not 1 mod 4", dimension)
	}
	return VersionForNumber((dimension - 17) / 4)
}

// decodeVersionInfo returns the version whose information codeword is
// within three bits of read.
func decodeVersionInfo(read int) (*Version, bool) {
	idx, ok := nearestCodeword(versionInfoCodewords, read)
	if !ok {
		return nil, false
	}
	return &versions[idx+6], true
}

func defineVersion(number int, centers []int, l, m, q, h ECBlocks) Version {
	total := 0
	for _, b := range l.Blocks {
		total += b.Count * (b.DataCodewords + l.ECCodewordsPerBlock)
	}
	return Version{
		Number:           number,
		AlignmentCenters: centers,
		ecBlocks:         [4]ECBlocks{l, m, q, h},
		TotalCodewords:   total,
	}
}

func ec(perBlock int, blocks ...ECBlock) ECBlocks {
	return ECBlocks{ECCodewordsPerBlock: perBlock, Blocks: blocks}
}

func blk(count, data int) ECBlock {
	return ECBlock{Count: count, DataCodewords: data}
}

var versions = [40]Version{
	defineVersion(1, nil, ec(7, blk(1, 19)), ec(10, blk(1, 16)), ec(13, blk(1, 13)), ec(17, blk(1, 9))),
	defineVersion(2, []int{6, 18}, ec(10, blk(1, 34)), ec(16, blk(1, 28)), ec(22, blk(1, 22)), ec(28, blk(1, 16))),
	defineVersion(3, []int{6, 22}, ec(15, blk(1, 55)), ec(26, blk(1, 44)), ec(18, blk(2, 17)), ec(22, blk(2, 13))),
	defineVersion(4, []int{6, 26}, ec(20, blk(1, 80)), ec(18, blk(2, 32)), ec(26, blk(2, 24)), ec(16, blk(4, 9))),
	defineVersion(5, []int{6, 30}, ec(26, blk(1, 108)), ec(24, blk(2, 43)), ec(18, blk(2, 15), blk(2, 16)), ec(22, blk(2, 11), blk(2, 12))),
	defineVersion(6, []int{6, 34}, ec(18, blk(2, 68)), ec(16, blk(4, 27)), ec(24, blk(4, 19)), ec(28, blk(4, 15))),
	defineVersion(7, []int{6, 22, 38}, ec(20, blk(2, 78)), ec(18, blk(4, 31)), ec(18, blk(2, 14), blk(4, 15)), ec(26, blk(4, 13), blk(1, 14))),
	defineVersion(8, []int{6, 24, 42}, ec(24, blk(2, 97)), ec(22, blk(2, 38), blk(2, 39)), ec(22, blk(4, 18), blk(2, 19)), ec(26, blk(4, 14), blk(2, 15))),
	defineVersion(9, []int{6, 26, 46}, ec(30, blk(2, 116)), ec(22, blk(3, 36), blk(2, 37)), ec(20, blk(4, 16), blk(4, 17)), ec(24, blk(4, 12), blk(4, 13))),
	defineVersion(10, []int{6, 28, 50}, ec(18, blk(2, 68), blk(2, 69)), ec(26, blk(4, 43), blk(1, 44)), ec(24, blk(6, 19), blk(2, 20)), ec(28, blk(6, 15), blk(2, 16))),
	defineVersion(11, []int{6, 30, 54}, ec(20, blk(4, 81)), ec(30, blk(1, 50), blk(4, 51)), ec(28, blk(4, 22), blk(4, 23)), ec(24, blk(3, 12), blk(8, 13))),
	defineVersion(12, []int{6, 32, 58}, ec(24, blk(2, 92), blk(2, 93)), ec(22, blk(6, 36), blk(2, 37)), ec(26, blk(4, 20), blk(6, 21)), ec(28, blk(7, 14), blk(4, 15))),
	defineVersion(13, []int{6, 34, 62}, ec(26, blk(4, 107)), ec(22, blk(8, 37), blk(1, 38)), ec(24, blk(8, 20), blk(4, 21)), ec(22, blk(12, 11), blk(4, 12))),
	defineVersion(14, []int{6, 26, 46, 66}, ec(30, blk(3, 115), blk(1, 116)), ec(24, blk(4, 40), blk(5, 41)), ec(20, blk(11, 16), blk(5, 17)), ec(24, blk(11, 12), blk(5, 13))),
	defineVersion(15, []int{6, 26, 48, 70}, ec(22, blk(5, 87), blk(1, 88)), ec(24, blk(5, 41), blk(5, 42)), ec(30, blk(5, 24), blk(7, 25)), ec(24, blk(11, 12), blk(7, 13))),
	defineVersion(16, []int{6, 26, 50, 74}, ec(24, blk(5, 98), blk(1, 99)), ec(28, blk(7, 45), blk(3, 46)), ec(24, blk(15, 19), blk(2, 20)), ec(30, blk(3, 15), blk(13, 16))),
	defineVersion(17, []int{6, 30, 54, 78}, ec(28, blk(1, 107), blk(5, 108)), ec(28, blk(10, 46), blk(1, 47)), ec(28, blk(1, 22), blk(15, 23)), ec(28, blk(2, 14), blk(17, 15))),
	defineVersion(18, []int{6, 30, 56, 82}, ec(30, blk(5, 120), blk(1, 121)), ec(26, blk(9, 43), blk(4, 44)), ec(28, blk(17, 22), blk(1, 23)), ec(28, blk(2, 14), blk(19, 15))),
	defineVersion(19, []int{6, 30, 58, 86}, ec(28, blk(3, 113), blk(4, 114)), ec(26, blk(3, 44), blk(11, 45)), ec(26, blk(17, 21), blk(4, 22)), ec(26, blk(9, 13), blk(16, 14))),
	defineVersion(20, []int{6, 34, 62, 90}, ec(28, blk(3, 107), blk(5, 108)), ec(26, blk(3, 41), blk(13, 42)), ec(30, blk(15, 24), blk(5, 25)), ec(28, blk(15, 15), blk(10, 16))),
	defineVersion(21, []int{6, 28, 50, 72, 94}, ec(28, blk(4, 116), blk(4, 117)), ec(26, blk(17, 42)), ec(28, blk(17, 22), blk(6, 23)), ec(30, blk(19, 16), blk(6, 17))),
	defineVersion(22, []int{6, 26, 50, 74, 98}, ec(28, blk(2, 111), blk(7, 112)), ec(28, blk(17, 46)), ec(30, blk(7, 24), blk(16, 25)), ec(24, blk(34, 13))),
	defineVersion(23, []int{6, 30, 54, 78, 102}, ec(30, blk(4, 121), blk(5, 122)), ec(28, blk(4, 47), blk(14, 48)), ec(30, blk(11, 24), blk(14, 25)), ec(30, blk(16, 15), blk(14, 16))),
	defineVersion(24, []int{6, 28, 54, 80, 106}, ec(30, blk(6, 117), blk(4, 118)), ec(28, blk(6, 45), blk(14, 46)), ec(30, blk(11, 24), blk(16, 25)), ec(30, blk(30, 16), blk(2, 17))),
	defineVersion(25, []int{6, 32, 58, 84, 110}, ec(26, blk(8, 106), blk(4, 107)), ec(28, blk(8, 47), blk(13, 48)), ec(30, blk(7, 24), blk(22, 25)), ec(30, blk(22, 15), blk(13, 16))),
	defineVersion(26, []int{6, 30, 58, 86, 114}, ec(28, blk(10, 114), blk(2, 115)), ec(28, blk(19, 46), blk(4, 47)), ec(28, blk(28, 22), blk(6, 23)), ec(30, blk(33, 16), blk(4, 17))),
	defineVersion(27, []int{6, 34, 62, 90, 118}, ec(30, blk(8, 122), blk(4, 123)), ec(28, blk(22, 45), blk(3, 46)), ec(30, blk(8, 23), blk(26, 24)), ec(30, blk(12, 15), blk(28, 16))),
	defineVersion(28, []int{6, 26, 50, 74, 98, 122}, ec(30, blk(3, 117), blk(10, 118)), ec(28, blk(3, 45), blk(23, 46)), ec(30, blk(4, 24), blk(31, 25)), ec(30, blk(11, 15), blk(31, 16))),
	defineVersion(29, []int{6, 30, 54, 78, 102, 126}, ec(30, blk(7, 116), blk(7, 117)), ec(28, blk(21, 45), blk(7, 46)), ec(30, blk(1, 23), blk(37, 24)), ec(30, blk(19, 15), blk(26, 16))),
	defineVersion(30, []int{6, 26, 52, 78, 104, 130}, ec(30, blk(5, 115), blk(10, 116)), ec(28, blk(19, 47), blk(10, 48)), ec(30, blk(15, 24), blk(25, 25)), ec(30, blk(23, 15), blk(25, 16))),
	defineVersion(31, []int{6, 30, 56, 82, 108, 134}, ec(30, blk(13, 115), blk(3, 116)), ec(28, blk(2, 46), blk(29, 47)), ec(30, blk(42, 24), blk(1, 25)), ec(30, blk(23, 15), blk(28, 16))),
	defineVersion(32, []int{6, 34, 60, 86, 112, 138}, ec(30, blk(17, 115)), ec(28, blk(10, 46), blk(23, 47)), ec(30, blk(10, 24), blk(35, 25)), ec(30, blk(19, 15), blk(35, 16))),
	defineVersion(33, []int{6, 30, 58, 86, 114, 142}, ec(30, blk(17, 115), blk(1, 116)), ec(28, blk(14, 46), blk(21, 47)), ec(30, blk(29, 24), blk(19, 25)), ec(30, blk(11, 15), blk(46, 16))),
	defineVersion(34, []int{6, 34, 62, 90, 118, 146}, ec(30, blk(13, 115), blk(6, 116)), ec(28, blk(14, 46), blk(23, 47)), ec(30, blk(44, 24), blk(7, 25)), ec(30, blk(59, 16), blk(1, 17))),
	defineVersion(35, []int{6, 30, 54, 78, 102, 126, 150}, ec(30, blk(12, 121), blk(7, 122)), ec(28, blk(12, 47), blk(26, 48)), ec(30, blk(39, 24), blk(14, 25)), ec(30, blk(22, 15), blk(41, 16))),
	defineVersion(36, []int{6, 24, 50, 76, 102, 128, 154}, ec(30, blk(6, 121), blk(14, 122)), ec(28, blk(6, 47), blk(34, 48)), ec(30, blk(46, 24), blk(10, 25)), ec(30, blk(2, 15), blk(64, 16))),
	defineVersion(37, []int{6, 28, 54, 80, 106, 132, 158}, ec(30, blk(17, 122), blk(4, 123)), ec(28, blk(29, 46), blk(14, 47)), ec(30, blk(49, 24), blk(10, 25)), ec(30, blk(24, 15), blk(46, 16))),
	defineVersion(38, []int{6, 32, 58, 84, 110, 136, 162}, ec(30, blk(4, 122), blk(18, 123)), ec(28, blk(13, 46), blk(32, 47)), ec(30, blk(48, 24), blk(14, 25)), ec(30, blk(42, 15), blk(32, 16))),
	defineVersion(39, []int{6, 26, 54, 82, 110, 138, 166}, ec(30, blk(20, 117), blk(4, 118)), ec(28, blk(40, 47), blk(7, 48)), ec(30, blk(43, 24), blk(22, 25)), ec(30, blk(10, 15), blk(67, 16))),
	defineVersion(40, []int{6, 30, 58, 86, 114, 142, 170}, ec(30, blk(19, 118), blk(6, 119)), ec(28, blk(18, 47), blk(31, 48)), ec(30, blk(34, 24), blk(34, 25)), ec(30, blk(20, 15), blk(61, 16))),
}
