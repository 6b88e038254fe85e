// Package decoder turns a sampled QR module grid into text and bytes.
package decoder

// ECLevel is one of the four QR error correction levels.
type ECLevel int

const (
	ECLevelL ECLevel = iota // ~7% recovery
	ECLevelM                // ~15%
	ECLevelQ                // ~25%
	ECLevelH                // ~30%
)

// ecLevelForBits is indexed by the two level bits of the format information.
var ecLevelForBits = [4]ECLevel{ECLevelM, ECLevelL, ECLevelH, ECLevelQ}

func (l ECLevel) String() string {
	if l < ECLevelL || l > ECLevelH {
		return "?"
	}
	return "LMQH"[l : l+1]
}
