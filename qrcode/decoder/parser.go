package decoder

import "github.com/ericlevine/zxpipe/bitutil"

// symbolParser reads format information, version and codewords out of a
// square module grid. In mirrored mode it reads the transposed grid.
type symbolParser struct {
	bits     *bitutil.BitMatrix
	version  *Version
	format   *formatInfo
	mirrored bool
}

func newSymbolParser(bits *bitutil.BitMatrix) (*symbolParser, error) {
	n := bits.Height()
	if n < 21 || n&0x03 != 1 {
		return nil, formatError("grid dimension %d is not a QR size", n)
	}
	return &symbolParser{bits: bits}, nil
}

// appendBit shifts the module at column x, row y onto acc.
func (p *symbolParser) appendBit(x, y, acc int) int {
	bit := p.bits.Get(x, y)
	if p.mirrored {
		bit = p.bits.Get(y, x)
	}
	acc <<= 1
	if bit {
		acc |= 1
	}
	return acc
}

// readFormat reads both copies of the 15-bit format information.
func (p *symbolParser) readFormat() (formatInfo, error) {
	if p.format != nil {
		return *p.format, nil
	}
	// Around the top-left finder pattern, skipping the timing pattern.
	first := 0
	for x := 0; x < 6; x++ {
		first = p.appendBit(x, 8, first)
	}
	first = p.appendBit(7, 8, first)
	first = p.appendBit(8, 8, first)
	first = p.appendBit(8, 7, first)
	for y := 5; y >= 0; y-- {
		first = p.appendBit(8, y, first)
	}

	// Split between the top-right and bottom-left finder patterns.
	n := p.bits.Height()
	second := 0
	for y := n - 1; y >= n-7; y-- {
		second = p.appendBit(8, y, second)
	}
	for x := n - 8; x < n; x++ {
		second = p.appendBit(x, 8, second)
	}

	fi, ok := decodeFormatInfo(first, second)
	if !ok {
		return formatInfo{}, formatError("unreadable format information")
	}
	p.format = &fi
	return fi, nil
}

// readVersion derives the version from the dimension, and for version 7
// and up confirms it against either version information block.
func (p *symbolParser) readVersion() (*Version, error) {
	if p.version != nil {
		return p.version, nil
	}
	n := p.bits.Height()
	provisional := (n - 17) / 4
	if provisional <= 6 {
		return VersionForNumber(provisional)
	}

	// Top-right block, 3 wide by 6 tall.
	read := 0
	for y := 5; y >= 0; y-- {
		for x := n - 9; x >= n-11; x-- {
			read = p.appendBit(x, y, read)
		}
	}
	if v, ok := decodeVersionInfo(read); ok && v.Dimension() == n {
		p.version = v
		return v, nil
	}

	// Bottom-left block, 6 wide by 3 tall.
	read = 0
	for x := 5; x >= 0; x-- {
		for y := n - 9; y >= n-11; y-- {
			read = p.appendBit(x, y, read)
		}
	}
	if v, ok := decodeVersionInfo(read); ok && v.Dimension() == n {
		p.version = v
		return v, nil
	}
	return nil, formatError("unreadable version information")
}

// readCodewords unmasks the grid and reads the data modules in the
// two-column zigzag starting at the bottom-right corner.
func (p *symbolParser) readCodewords() ([]byte, error) {
	fi, err := p.readFormat()
	if err != nil {
		return nil, err
	}
	v, err := p.readVersion()
	if err != nil {
		return nil, err
	}
	unmask(p.bits, fi.mask)
	function := v.functionPattern()

	n := p.bits.Height()
	out := make([]byte, 0, v.TotalCodewords)
	cur, nbits := 0, 0
	up := true
	for x := n - 1; x > 0; x -= 2 {
		if x == 6 {
			// The vertical timing pattern occupies a whole column.
			x--
		}
		for k := 0; k < n; k++ {
			y := k
			if up {
				y = n - 1 - k
			}
			for col := x; col > x-2; col-- {
				if function.Get(col, y) {
					continue
				}
				cur <<= 1
				if p.bits.Get(col, y) {
					cur |= 1
				}
				if nbits++; nbits == 8 {
					out = append(out, byte(cur))
					cur, nbits = 0, 0
				}
			}
		}
		up = !up
	}
	if len(out) != v.TotalCodewords {
		return nil, formatError("read %d codewords, version %d has %d", len(out), v.Number, v.TotalCodewords)
	}
	return out, nil
}

// remask undoes the unmask done by readCodewords.
func (p *symbolParser) remask() {
	if p.format != nil {
		unmask(p.bits, p.format.mask)
	}
}

// setMirrored switches read direction and forgets what was parsed.
func (p *symbolParser) setMirrored(mirrored bool) {
	p.version = nil
	p.format = nil
	p.mirrored = mirrored
}

// transpose swaps the grid across its main diagonal.
func (p *symbolParser) transpose() {
	n := p.bits.Width()
	for x := 0; x < n; x++ {
		for y := x + 1; y < p.bits.Height(); y++ {
			if p.bits.Get(x, y) != p.bits.Get(y, x) {
				p.bits.Flip(y, x)
				p.bits.Flip(x, y)
			}
		}
	}
}
