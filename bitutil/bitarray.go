// Package bitutil holds the packed bit containers shared by binarizers,
// detectors and decoders.
package bitutil

import (
	"fmt"
	"math/bits"
	"strings"
)

const wordBits = 64

// BitArray is a fixed-size row of bits packed into 64-bit words, bit i
// living at position i%64 of word i/64. AppendBits grows it.
type BitArray struct {
	words []uint64
	size  int
}

// NewBitArray returns size cleared bits.
func NewBitArray(size int) *BitArray {
	size = max(size, 0)
	return &BitArray{words: make([]uint64, wordsFor(size)), size: size}
}

func wordsFor(n int) int { return (n + wordBits - 1) / wordBits }

// Size returns the number of bits.
func (a *BitArray) Size() int { return a.size }

// Get reports whether bit i is set.
func (a *BitArray) Get(i int) bool {
	return a.words[i/wordBits]>>(i%wordBits)&1 != 0
}

// Set sets bit i.
func (a *BitArray) Set(i int) {
	a.words[i/wordBits] |= 1 << (i % wordBits)
}

// Flip inverts bit i.
func (a *BitArray) Flip(i int) {
	a.words[i/wordBits] ^= 1 << (i % wordBits)
}

// Clear unsets every bit.
func (a *BitArray) Clear() {
	clear(a.words)
}

// GetNextSet returns the first set bit at or after from, or Size.
func (a *BitArray) GetNextSet(from int) int {
	return a.next(from, 0)
}

// GetNextUnset returns the first unset bit at or after from, or Size.
func (a *BitArray) GetNextUnset(from int) int {
	return a.next(from, ^uint64(0))
}

// next scans words XORed with flip for the first one bit.
func (a *BitArray) next(from int, flip uint64) int {
	if from >= a.size {
		return a.size
	}
	i := from / wordBits
	w := (a.words[i] ^ flip) & (^uint64(0) << (from % wordBits))
	for w == 0 {
		i++
		if i == len(a.words) {
			return a.size
		}
		w = a.words[i] ^ flip
	}
	return min(a.size, i*wordBits+bits.TrailingZeros64(w))
}

// IsRange reports whether every bit in [start, end) equals value. It
// panics if the range is outside the array.
func (a *BitArray) IsRange(start, end int, value bool) bool {
	if start < 0 || end < start || end > a.size {
		panic(fmt.Sprintf("bitutil: range [%d, %d) outside %d bits", start, end, a.size))
	}
	if start == end {
		return true
	}
	last := end - 1
	for w := start / wordBits; w <= last/wordBits; w++ {
		lo, hi := 0, wordBits-1
		if w == start/wordBits {
			lo = start % wordBits
		}
		if w == last/wordBits {
			hi = last % wordBits
		}
		mask := (^uint64(0) >> (wordBits - 1 - hi)) &^ (1<<lo - 1)
		got := a.words[w] & mask
		if value && got != mask || !value && got != 0 {
			return false
		}
	}
	return true
}

// AppendBits appends the low n bits of value, most significant first.
func (a *BitArray) AppendBits(value uint32, n int) {
	if n < 0 || n > 32 {
		panic(fmt.Sprintf("bitutil: cannot append %d bits", n))
	}
	if need := wordsFor(a.size + n); need > len(a.words) {
		a.words = append(a.words, make([]uint64, need-len(a.words))...)
	}
	for i := n - 1; i >= 0; i-- {
		if value>>i&1 != 0 {
			a.Set(a.size)
		}
		a.size++
	}
}

// ToBytes packs n bytes starting at bit offset into dst, first bit in the
// high bit of each byte.
func (a *BitArray) ToBytes(offset int, dst []byte, dstOffset, n int) {
	for i := 0; i < n; i++ {
		var b byte
		for j := 0; j < 8; j++ {
			b <<= 1
			if a.Get(offset) {
				b |= 1
			}
			offset++
		}
		dst[dstOffset+i] = b
	}
}

// Reverse mirrors the array in place so bit i moves to Size-1-i.
func (a *BitArray) Reverse() {
	n := len(a.words)
	rev := make([]uint64, n)
	for i, w := range a.words {
		rev[n-1-i] = bits.Reverse64(w)
	}
	if pad := n*wordBits - a.size; pad > 0 {
		for i := range rev {
			rev[i] >>= pad
			if i+1 < n {
				rev[i] |= rev[i+1] << (wordBits - pad)
			}
		}
	}
	a.words = rev
}

// Clone returns an independent copy.
func (a *BitArray) Clone() *BitArray {
	return &BitArray{words: append([]uint64(nil), a.words...), size: a.size}
}

// String renders set bits as 'X' and unset as '.', in groups of eight.
func (a *BitArray) String() string {
	var sb strings.Builder
	sb.Grow(a.size + a.size/8 + 1)
	for i := 0; i < a.size; i++ {
		if i%8 == 0 {
			sb.WriteByte(' ')
		}
		if a.Get(i) {
			sb.WriteByte('X')
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}
