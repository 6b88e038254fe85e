package decoder

import "math/bits"

const formatInfoMask = 0x5412

// formatInfoCodewords is indexed by the five data bits of the format
// information: two level bits followed by the three mask bits.
var formatInfoCodewords = []int{
	0x5412, 0x5125, 0x5E7C, 0x5B4B, 0x45F9, 0x40CE, 0x4F97, 0x4AA0,
	0x77C4, 0x72F3, 0x7DAA, 0x789D, 0x662F, 0x6318, 0x6C41, 0x6976,
	0x1689, 0x13BE, 0x1CE7, 0x19D0, 0x0762, 0x0255, 0x0D0C, 0x083B,
	0x355F, 0x3068, 0x3F31, 0x3A06, 0x24B4, 0x2183, 0x2EDA, 0x2BED,
}

// formatInfo is the decoded error correction level and data mask.
type formatInfo struct {
	level ECLevel
	mask  int
}

// decodeFormatInfo matches the two read copies of the format information
// against the valid codewords, unmasked and then masked.
func decodeFormatInfo(read1, read2 int) (formatInfo, bool) {
	idx, ok := nearestCodeword(formatInfoCodewords, read1, read2)
	if !ok {
		idx, ok = nearestCodeword(formatInfoCodewords, read1^formatInfoMask, read2^formatInfoMask)
	}
	if !ok {
		return formatInfo{}, false
	}
	return formatInfo{level: ecLevelForBits[idx>>3&0x03], mask: idx & 0x07}, true
}

// nearestCodeword returns the index of the codeword closest in Hamming
// distance to any of the reads, accepting at most three flipped bits.
func nearestCodeword(codewords []int, reads ...int) (int, bool) {
	best, bestDiff := -1, 32
	for i, cw := range codewords {
		for _, r := range reads {
			if d := bits.OnesCount(uint(r ^ cw)); d < bestDiff {
				best, bestDiff = i, d
			}
		}
		if bestDiff == 0 {
			break
		}
	}
	return best, bestDiff <= 3
}
