package reedsolomon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encode appends numEC check codewords to data by polynomial division.
func encode(f *Field, data []int, numEC int) []int {
	gen := f.one
	for i := range numEC {
		gen = gen.mul(newPoly(f, []int{1, f.Exp(i + f.base)}))
	}
	info := newPoly(f, append([]int(nil), data...)).shift(numEC, 1)
	rem := info
	lead := f.Inverse(gen.at(gen.degree()))
	for rem.degree() >= gen.degree() && !rem.isZero() {
		diff := rem.degree() - gen.degree()
		rem = rem.add(gen.shift(diff, f.Multiply(rem.at(rem.degree()), lead)))
	}
	out := make([]int, len(data)+numEC)
	copy(out, data)
	ec := out[len(data):]
	offset := numEC - len(rem.coef)
	copy(ec[offset:], rem.coef)
	return out
}

func TestDecodeCorrectsUpToHalfTheECCodewords(t *testing.T) {
	data := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	want := encode(QRCodeField256, data, 7)

	received := append([]int(nil), want...)
	received[0] = 0
	received[3] = 200
	received[12] = 100

	n, err := NewDecoder(QRCodeField256).Decode(received, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, want, received)
}

func TestDecodeCleanBlock(t *testing.T) {
	want := encode(QRCodeField256, []int{10, 20, 30, 40, 50}, 4)
	received := append([]int(nil), want...)

	n, err := NewDecoder(QRCodeField256).Decode(received, 4)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, want, received)
}

func TestDecodeTooManyErrors(t *testing.T) {
	want := encode(QRCodeField256, []int{1, 2, 3, 4, 5, 6, 7, 8}, 4)
	received := append([]int(nil), want...)
	for i := range 5 {
		received[i] ^= 0x5A
	}
	// Five errors exceed what four check codewords repair: either the
	// decoder notices or it lands on a different codeword.
	_, err := NewDecoder(QRCodeField256).Decode(received, 4)
	if err != nil {
		assert.ErrorIs(t, err, ErrUncorrectable)
		return
	}
	assert.NotEqual(t, want, received)
}

func TestFieldArithmetic(t *testing.T) {
	f := QRCodeField256
	assert.Equal(t, 256, f.Size())
	assert.Equal(t, 1, f.Exp(0))
	assert.Equal(t, 2, f.Exp(1))
	for a := 1; a < f.Size(); a++ {
		assert.Equal(t, 1, f.Multiply(a, f.Inverse(a)), "a=%d", a)
		assert.Equal(t, a, f.Exp(f.Log(a)), "a=%d", a)
	}
	assert.Zero(t, f.Multiply(0, 77))
	assert.Equal(t, "GF(0x11d,256)", f.String())
}

func TestPolyOperations(t *testing.T) {
	f := QRCodeField256
	p := newPoly(f, []int{0, 0, 3, 1})
	assert.Equal(t, 1, p.degree())
	assert.Equal(t, 3, p.at(1))
	assert.Equal(t, 1, p.eval(0))
	assert.Equal(t, 2, p.eval(1))

	q := newPoly(f, []int{3, 1})
	assert.True(t, p.add(q).isZero())
	assert.Equal(t, 2, p.mul(q).degree())
	assert.True(t, p.scale(0).isZero())
	assert.Same(t, p, p.scale(1))
}
