package binarizer

import (
	"github.com/ericlevine/zxpipe"
	"github.com/ericlevine/zxpipe/bitutil"
)

const (
	blockPower = 3
	blockSize  = 1 << blockPower
	blockMask  = blockSize - 1
	// MinimumDimension is the smallest width and height Hybrid thresholds
	// locally. Smaller sources fall back to GlobalHistogram.
	MinimumDimension = 5 * blockSize
	// Blocks whose luminance spread is at most minDynamicRange are treated
	// as flat and borrow their neighbours' black point.
	minDynamicRange = 24
)

// Hybrid thresholds each block of the source against the black points of
// its neighbourhood. Rows still come from the global histogram, which
// is what row-scanning readers expect.
type Hybrid struct {
	*GlobalHistogram
	matrix *bitutil.BitMatrix
}

// NewHybrid binds a Hybrid binarizer to source.
func NewHybrid(source zxpipe.LuminanceSource) *Hybrid {
	return &Hybrid{GlobalHistogram: NewGlobalHistogram(source)}
}

// CreateBinarizer returns a Hybrid bound to source.
func (h *Hybrid) CreateBinarizer(source zxpipe.LuminanceSource) zxpipe.Binarizer {
	return NewHybrid(source)
}

// BlackMatrix computes the matrix once and returns the cached copy on
// later calls.
func (h *Hybrid) BlackMatrix() (*bitutil.BitMatrix, error) {
	if h.matrix != nil {
		return h.matrix, nil
	}
	if err := checkSource(h.source); err != nil {
		return nil, err
	}
	width, height := h.source.Width(), h.source.Height()
	if width < MinimumDimension || height < MinimumDimension {
		m, err := h.GlobalHistogram.BlackMatrix()
		if err != nil {
			return nil, err
		}
		h.matrix = m
		return m, nil
	}

	g := grid{
		luminances: h.source.Matrix(),
		width:      width,
		height:     height,
		cols:       (width + blockMask) >> blockPower,
		rows:       (height + blockMask) >> blockPower,
	}
	h.matrix = g.threshold(g.blackPoints())
	return h.matrix, nil
}

// grid is a luminance buffer split into blockSize squares. The last block
// in each direction is shifted back so it stays inside the image.
type grid struct {
	luminances    []byte
	width, height int
	cols, rows    int
}

func (g *grid) origin(col, row int) (int, int) {
	return min(col<<blockPower, g.width-blockSize), min(row<<blockPower, g.height-blockSize)
}

func (g *grid) blackPoints() [][]int {
	points := make([][]int, g.rows)
	for row := range points {
		points[row] = make([]int, g.cols)
		for col := range points[row] {
			points[row][col] = g.blockBlackPoint(points, col, row)
		}
	}
	return points
}

// blockBlackPoint is the block mean, or for flat blocks half the minimum,
// raised to the neighbour average when that is higher. Flat blocks are
// assumed to be background unless their neighbours say otherwise.
func (g *grid) blockBlackPoint(points [][]int, col, row int) int {
	x0, y0 := g.origin(col, row)
	sum, lo, hi := 0, 0xff, 0
	for y := 0; y < blockSize; y++ {
		line := g.luminances[(y0+y)*g.width+x0:][:blockSize]
		for _, s := range line {
			px := int(s)
			sum += px
			lo = min(lo, px)
			hi = max(hi, px)
		}
	}
	if hi-lo > minDynamicRange {
		return sum >> (2 * blockPower)
	}

	bp := lo / 2
	if row > 0 && col > 0 {
		neighbours := (points[row-1][col] + 2*points[row][col-1] + points[row-1][col-1]) / 4
		if lo < neighbours {
			bp = neighbours
		}
	}
	return bp
}

// threshold marks a pixel black when it is at or below the mean black point
// of the 5x5 blocks centred on its own block, clamped to the grid edges.
func (g *grid) threshold(points [][]int) *bitutil.BitMatrix {
	matrix := bitutil.NewBitMatrixWithSize(g.width, g.height)
	for row := 0; row < g.rows; row++ {
		top := clampCenter(row, g.rows)
		for col := 0; col < g.cols; col++ {
			left := clampCenter(col, g.cols)
			sum := 0
			for dy := -2; dy <= 2; dy++ {
				for dx := -2; dx <= 2; dx++ {
					sum += points[top+dy][left+dx]
				}
			}
			g.thresholdBlock(matrix, col, row, sum/25)
		}
	}
	return matrix
}

func (g *grid) thresholdBlock(matrix *bitutil.BitMatrix, col, row, limit int) {
	x0, y0 := g.origin(col, row)
	for y := 0; y < blockSize; y++ {
		line := g.luminances[(y0+y)*g.width+x0:][:blockSize]
		for x, s := range line {
			if int(s) <= limit {
				matrix.Set(x0+x, y0+y)
			}
		}
	}
}

func clampCenter(i, n int) int {
	return max(2, min(i, n-3))
}
