package decoder

import "github.com/ericlevine/zxpipe/bitutil"

// masked reports whether data mask pattern mask inverts the module at
// row i, column j.
func masked(mask, i, j int) bool {
	switch mask {
	case 0:
		return (i+j)&1 == 0
	case 1:
		return i&1 == 0
	case 2:
		return j%3 == 0
	case 3:
		return (i+j)%3 == 0
	case 4:
		return (i/2+j/3)&1 == 0
	case 5:
		return i*j%6 == 0
	case 6:
		return i*j%6 < 3
	case 7:
		return (i+j+i*j%3)&1 == 0
	}
	return false
}

// unmask toggles every module of the square grid selected by mask. It is
// its own inverse.
func unmask(bits *bitutil.BitMatrix, mask int) {
	n := bits.Height()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if masked(mask, i, j) {
				bits.Flip(j, i)
			}
		}
	}
}
