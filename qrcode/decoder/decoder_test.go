package decoder

import (
	"errors"
	"testing"

	goqrcode "github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericlevine/zxpipe"
	"github.com/ericlevine/zxpipe/bitutil"
)

func symbolGrid(t *testing.T, content string, level goqrcode.RecoveryLevel) *bitutil.BitMatrix {
	t.Helper()
	q, err := goqrcode.New(content, level)
	require.NoError(t, err)
	q.DisableBorder = true
	return bitutil.ParseBoolMatrix(q.Bitmap())
}

func transposed(m *bitutil.BitMatrix) *bitutil.BitMatrix {
	out := bitutil.NewBitMatrixWithSize(m.Height(), m.Width())
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			if m.Get(x, y) {
				out.Set(y, x)
			}
		}
	}
	return out
}

func TestDecodeGeneratedSymbols(t *testing.T) {
	tests := []struct {
		content string
		level   goqrcode.RecoveryLevel
		ec      string
	}{
		{"0123456789012345", goqrcode.Medium, "M"},
		{"HELLO WORLD", goqrcode.Low, "L"},
		{"Hello, World! lower case goes to byte mode.", goqrcode.High, "Q"},
		{"https://example.com/a/rather/long/path/to/push/the/version/above/six?x=1&y=2", goqrcode.Highest, "H"},
	}
	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			res, err := NewDecoder().Decode(symbolGrid(t, tt.content, tt.level), "")
			require.NoError(t, err)
			assert.Equal(t, tt.content, res.Text)
			assert.Equal(t, tt.ec, res.ECLevel)
			assert.False(t, res.Mirrored)
			assert.Zero(t, res.ErrorsCorrected)
			assert.Equal(t, 1, res.SymbologyModifier)
			assert.Nil(t, res.Append)
		})
	}
}

func TestDecodeMirroredSymbol(t *testing.T) {
	grid := transposed(symbolGrid(t, "MIRROR 42", goqrcode.Medium))
	res, err := NewDecoder().Decode(grid, "")
	require.NoError(t, err)
	assert.Equal(t, "MIRROR 42", res.Text)
	assert.True(t, res.Mirrored)
}

func TestDecodeCorrectsDamage(t *testing.T) {
	grid := symbolGrid(t, "DAMAGED BUT READABLE", goqrcode.Highest)
	// Flip a few data modules in the lower right, away from function patterns.
	n := grid.Width()
	for _, d := range []int{1, 2, 3} {
		grid.Flip(n-d, n-1)
	}
	res, err := NewDecoder().Decode(grid, "")
	require.NoError(t, err)
	assert.Equal(t, "DAMAGED BUT READABLE", res.Text)
	assert.Positive(t, res.ErrorsCorrected)
}

func TestDecodeRejectsBadDimension(t *testing.T) {
	_, err := NewDecoder().Decode(bitutil.NewBitMatrix(20), "")
	assert.ErrorIs(t, err, zxpipe.ErrFormat)
	assert.ErrorIs(t, err, zxpipe.ErrDecoderInternal)
}

func TestDecodeRejectsNoise(t *testing.T) {
	grid := bitutil.NewBitMatrix(25)
	for y := 0; y < 25; y++ {
		for x := 0; x < 25; x++ {
			if (x*7+y*13)%5 < 2 {
				grid.Set(x, y)
			}
		}
	}
	_, err := NewDecoder().Decode(grid, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, zxpipe.ErrFormat) || errors.Is(err, zxpipe.ErrChecksum), err)
}

func TestDecodeFormatInfo(t *testing.T) {
	// 0x5412 is level bits 00 (M) with mask 0 after masking.
	fi, ok := decodeFormatInfo(0x5412, 0x5412)
	require.True(t, ok)
	assert.Equal(t, ECLevelM, fi.level)
	assert.Equal(t, 0, fi.mask)

	// Three flipped bits are tolerated.
	fi, ok = decodeFormatInfo(0x5412^0x0007, 0)
	require.True(t, ok)
	assert.Equal(t, ECLevelM, fi.level)
}

func TestDecodeVersionInfo(t *testing.T) {
	v, ok := decodeVersionInfo(0x07C94)
	require.True(t, ok)
	assert.Equal(t, 7, v.Number)

	v, ok = decodeVersionInfo(0x28C69 ^ 0x3)
	require.True(t, ok)
	assert.Equal(t, 40, v.Number)
	assert.Equal(t, 177, v.Dimension())
}

func TestVersionTables(t *testing.T) {
	for n := 1; n <= 40; n++ {
		v, err := VersionForNumber(n)
		require.NoError(t, err)
		for level := ECLevelL; level <= ECLevelH; level++ {
			ecb := v.ECBlocks(level)
			total := 0
			for _, b := range ecb.Blocks {
				total += b.Count * (b.DataCodewords + ecb.ECCodewordsPerBlock)
			}
			assert.Equal(t, v.TotalCodewords, total, "version %d level %v", n, level)
		}
	}
	_, err := VersionForNumber(41)
	assert.ErrorIs(t, err, zxpipe.ErrFormat)

	v, err := VersionForDimension(25)
	require.NoError(t, err)
	assert.Equal(t, 2, v.Number)
	_, err = VersionForDimension(24)
	assert.Error(t, err)
}

func TestFunctionPatternLeavesDataModules(t *testing.T) {
	v, err := VersionForNumber(1)
	require.NoError(t, err)
	fp := v.functionPattern()
	data := 0
	for y := 0; y < fp.Height(); y++ {
		for x := 0; x < fp.Width(); x++ {
			if !fp.Get(x, y) {
				data++
			}
		}
	}
	assert.Equal(t, 8*v.TotalCodewords, data)
}

func TestUnmaskIsInvolution(t *testing.T) {
	for mask := 0; mask < 8; mask++ {
		m := bitutil.NewBitMatrix(21)
		unmask(m, mask)
		unmask(m, mask)
		assert.True(t, m.Equals(bitutil.NewBitMatrix(21)), "mask %d", mask)
	}
}

func TestSplitBlocksInterleaving(t *testing.T) {
	// Version 5-Q: two blocks of 15 data and two of 16, 18 EC each.
	v, err := VersionForNumber(5)
	require.NoError(t, err)
	raw := make([]byte, v.TotalCodewords)
	for i := range raw {
		raw[i] = byte(i)
	}
	blocks := splitBlocks(raw, v, ECLevelQ)
	require.Len(t, blocks, 4)
	assert.Equal(t, []int{15, 15, 16, 16}, []int{blocks[0].numData, blocks[1].numData, blocks[2].numData, blocks[3].numData})
	assert.Equal(t, byte(0), blocks[0].codewords[0])
	assert.Equal(t, byte(1), blocks[1].codewords[0])
	assert.Equal(t, byte(4), blocks[0].codewords[1])
	// Only the long blocks get a sixteenth data codeword.
	assert.Equal(t, byte(60), blocks[2].codewords[15])
	assert.Equal(t, byte(61), blocks[3].codewords[15])
	assert.Equal(t, byte(62), blocks[0].codewords[15])
}

func TestExpandFNC1(t *testing.T) {
	assert.Equal(t, "01\x1d10", expandFNC1("01%10"))
	assert.Equal(t, "100%", expandFNC1("100%%"))
	assert.Equal(t, "AB", expandFNC1("AB"))
}

func TestDecodeBitStreamSegments(t *testing.T) {
	v, err := VersionForNumber(1)
	require.NoError(t, err)

	ba := bitutil.NewBitArray(0)
	// ECI 26 (UTF-8), then numeric "123", then byte "é".
	ba.AppendBits(uint32(ModeECI), 4)
	ba.AppendBits(26, 8)
	ba.AppendBits(uint32(ModeNumeric), 4)
	ba.AppendBits(3, 10)
	ba.AppendBits(123, 10)
	ba.AppendBits(uint32(ModeByte), 4)
	ba.AppendBits(2, 8)
	ba.AppendBits(0xC3, 8)
	ba.AppendBits(0xA9, 8)
	ba.AppendBits(uint32(ModeTerminator), 4)
	data := make([]byte, (ba.Size()+7)/8)
	ba.ToBytes(0, data, 0, len(data))

	res, err := decodeBitStream(data, v, ECLevelL, "")
	require.NoError(t, err)
	assert.Equal(t, "123é", res.Text)
	assert.Equal(t, [][]byte{{0xC3, 0xA9}}, res.ByteSegments)
	assert.Equal(t, 2, res.SymbologyModifier)
	assert.Equal(t, "L", res.ECLevel)
}

func TestDecodeBitStreamStructuredAppend(t *testing.T) {
	v, err := VersionForNumber(1)
	require.NoError(t, err)
	ba := bitutil.NewBitArray(0)
	ba.AppendBits(uint32(ModeStructuredAppend), 4)
	ba.AppendBits(0x12, 8)
	ba.AppendBits(0x7F, 8)
	ba.AppendBits(uint32(ModeAlphanumeric), 4)
	ba.AppendBits(1, 9)
	ba.AppendBits(10, 6)
	data := make([]byte, (ba.Size()+7)/8)
	ba.ToBytes(0, data, 0, len(data))

	res, err := decodeBitStream(data, v, ECLevelM, "")
	require.NoError(t, err)
	assert.Equal(t, "A", res.Text)
	require.NotNil(t, res.Append)
	assert.Equal(t, 0x12, res.Append.Sequence)
	assert.Equal(t, 0x7F, res.Append.Parity)
}

func TestModeForBits(t *testing.T) {
	m, err := modeForBits(0x4)
	require.NoError(t, err)
	assert.Equal(t, ModeByte, m)
	assert.Equal(t, "BYTE", m.String())
	_, err = modeForBits(0x6)
	assert.ErrorIs(t, err, zxpipe.ErrFormat)
}
