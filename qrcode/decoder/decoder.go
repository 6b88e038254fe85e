package decoder

import (
	"fmt"

	"github.com/ericlevine/zxpipe"
	"github.com/ericlevine/zxpipe/bitutil"
	"github.com/ericlevine/zxpipe/internal"
	"github.com/ericlevine/zxpipe/reedsolomon"
)

// Decoder decodes sampled QR grids. It holds no per-symbol state.
type Decoder struct {
	rs *reedsolomon.Decoder
}

// NewDecoder creates a Decoder.
func NewDecoder() *Decoder {
	return &Decoder{rs: reedsolomon.NewDecoder(reedsolomon.QRCodeField256)}
}

// Decode reads bits as a QR symbol. When the grid does not decode as is,
// it is tried once more transposed, which recovers symbols imaged from
// behind; such results are flagged Mirrored. characterSet is used for
// byte segments that carry no ECI. bits is modified.
func (d *Decoder) Decode(bits *bitutil.BitMatrix, characterSet string) (*internal.DecoderResult, error) {
	p, err := newSymbolParser(bits)
	if err != nil {
		return nil, err
	}
	result, err := d.decodeSymbol(p, characterSet)
	if err == nil {
		return result, nil
	}

	p.remask()
	p.setMirrored(true)
	if _, verr := p.readVersion(); verr != nil {
		return nil, err
	}
	if _, ferr := p.readFormat(); ferr != nil {
		return nil, err
	}
	p.transpose()
	result, merr := d.decodeSymbol(p, characterSet)
	if merr != nil {
		return nil, err
	}
	result.Mirrored = true
	return result, nil
}

func (d *Decoder) decodeSymbol(p *symbolParser, characterSet string) (*internal.DecoderResult, error) {
	v, err := p.readVersion()
	if err != nil {
		return nil, err
	}
	fi, err := p.readFormat()
	if err != nil {
		return nil, err
	}
	raw, err := p.readCodewords()
	if err != nil {
		return nil, err
	}

	blocks := splitBlocks(raw, v, fi.level)
	var data []byte
	corrected := 0
	for _, b := range blocks {
		n, err := d.correct(b)
		if err != nil {
			return nil, err
		}
		corrected += n
		data = append(data, b.codewords[:b.numData]...)
	}

	result, err := decodeBitStream(data, v, fi.level, characterSet)
	if err != nil {
		return nil, err
	}
	result.ErrorsCorrected = corrected
	return result, nil
}

// correct repairs one block in place.
func (d *Decoder) correct(b dataBlock) (int, error) {
	ints := make([]int, len(b.codewords))
	for i, c := range b.codewords {
		ints[i] = int(c)
	}
	n, err := d.rs.Decode(ints, len(b.codewords)-b.numData)
	if err != nil {
		return 0, fmt.Errorf("qrcode: %v: %w", err, zxpipe.ErrChecksum)
	}
	for i := 0; i < b.numData; i++ {
		b.codewords[i] = byte(ints[i])
	}
	return n, nil
}
