package detector

import (
	"math"

	"github.com/ericlevine/zxpipe/bitutil"
)

// AlignmentPattern is the small square near a symbol's bottom-right corner
// that versions 2 and up carry.
type AlignmentPattern struct {
	X, Y                float64
	EstimatedModuleSize float64
}

func (ap *AlignmentPattern) aboutEquals(moduleSize, i, j float64) bool {
	if math.Abs(i-ap.Y) > moduleSize || math.Abs(j-ap.X) > moduleSize {
		return false
	}
	diff := math.Abs(moduleSize - ap.EstimatedModuleSize)
	return diff <= 1.0 || diff <= ap.EstimatedModuleSize
}

func (ap *AlignmentPattern) combineEstimate(i, j, newModuleSize float64) *AlignmentPattern {
	return &AlignmentPattern{
		X:                   (ap.X + j) / 2,
		Y:                   (ap.Y + i) / 2,
		EstimatedModuleSize: (ap.EstimatedModuleSize + newModuleSize) / 2,
	}
}

// alignmentFinder searches a small window for the 1:1:1 white/black/white
// cross-section through an alignment pattern's center module. Rows are
// visited from the middle of the window outward.
type alignmentFinder struct {
	image      *bitutil.BitMatrix
	startX     int
	startY     int
	width      int
	height     int
	moduleSize float64
	candidates []*AlignmentPattern
}

// findAlignmentInRegion looks for the alignment pattern within
// allowanceFactor modules of the estimated position.
func (d *Detector) findAlignmentInRegion(moduleSize float64, estX, estY int, allowanceFactor float64) *AlignmentPattern {
	allowance := int(allowanceFactor * moduleSize)
	left := max(0, estX-allowance)
	right := min(d.image.Width()-1, estX+allowance)
	top := max(0, estY-allowance)
	bottom := min(d.image.Height()-1, estY+allowance)
	if float64(right-left) < moduleSize*3 || float64(bottom-top) < moduleSize*3 {
		return nil
	}
	f := &alignmentFinder{
		image:      d.image,
		startX:     left,
		startY:     top,
		width:      right - left,
		height:     bottom - top,
		moduleSize: moduleSize,
	}
	return f.find()
}

func (f *alignmentFinder) find() *AlignmentPattern {
	maxJ := f.startX + f.width
	middleI := f.startY + f.height/2
	for gen := 0; gen < f.height; gen++ {
		i := middleI - (gen+1)/2
		if gen&1 == 0 {
			i = middleI + (gen+1)/2
		}
		var stateCount [3]int
		j := f.startX
		// A white run cut by the window edge has no meaningful length.
		for j < maxJ && !f.image.Get(j, i) {
			j++
		}
		state := 0
		for ; j < maxJ; j++ {
			if !f.image.Get(j, i) {
				if state == 1 {
					state++
				}
				stateCount[state]++
				continue
			}
			switch state {
			case 1:
				stateCount[1]++
			case 2:
				if f.foundPatternCross(stateCount) {
					if ap := f.handlePossibleCenter(stateCount, i, j); ap != nil {
						return ap
					}
				}
				stateCount = [3]int{stateCount[2], 1, 0}
				state = 1
			default:
				state++
				stateCount[state]++
			}
		}
		if f.foundPatternCross(stateCount) {
			if ap := f.handlePossibleCenter(stateCount, i, maxJ); ap != nil {
				return ap
			}
		}
	}
	if len(f.candidates) > 0 {
		return f.candidates[0]
	}
	return nil
}

func (f *alignmentFinder) foundPatternCross(stateCount [3]int) bool {
	maxVariance := f.moduleSize / 2.0
	for _, count := range stateCount {
		if math.Abs(f.moduleSize-float64(count)) >= maxVariance {
			return false
		}
	}
	return true
}

func alignmentCenterFromEnd(stateCount [3]int, end int) float64 {
	return float64(end-stateCount[2]) - float64(stateCount[1])/2.0
}

// handlePossibleCenter returns a pattern once the same center has been seen
// twice; a first sighting is only remembered.
func (f *alignmentFinder) handlePossibleCenter(stateCount [3]int, i, j int) *AlignmentPattern {
	total := stateCount[0] + stateCount[1] + stateCount[2]
	centerJ := alignmentCenterFromEnd(stateCount, j)
	centerI := f.crossCheckVertical(i, int(centerJ), 2*stateCount[1], total)
	if math.IsNaN(centerI) {
		return nil
	}
	estModuleSize := float64(total) / 3.0
	for _, c := range f.candidates {
		if c.aboutEquals(estModuleSize, centerI, centerJ) {
			return c.combineEstimate(centerI, centerJ, estModuleSize)
		}
	}
	f.candidates = append(f.candidates, &AlignmentPattern{X: centerJ, Y: centerI, EstimatedModuleSize: estModuleSize})
	return nil
}

func (f *alignmentFinder) crossCheckVertical(startI, centerJ, maxCount, originalTotal int) float64 {
	maxI := f.image.Height()
	var stateCount [3]int

	i := startI
	for i >= 0 && f.image.Get(centerJ, i) && stateCount[1] <= maxCount {
		stateCount[1]++
		i--
	}
	if i < 0 || stateCount[1] > maxCount {
		return math.NaN()
	}
	for i >= 0 && !f.image.Get(centerJ, i) && stateCount[0] <= maxCount {
		stateCount[0]++
		i--
	}
	if stateCount[0] > maxCount {
		return math.NaN()
	}

	i = startI + 1
	for i < maxI && f.image.Get(centerJ, i) && stateCount[1] <= maxCount {
		stateCount[1]++
		i++
	}
	if i == maxI || stateCount[1] > maxCount {
		return math.NaN()
	}
	for i < maxI && !f.image.Get(centerJ, i) && stateCount[2] <= maxCount {
		stateCount[2]++
		i++
	}
	if stateCount[2] > maxCount {
		return math.NaN()
	}

	total := stateCount[0] + stateCount[1] + stateCount[2]
	if 5*abs(total-originalTotal) >= 2*originalTotal {
		return math.NaN()
	}
	if !f.foundPatternCross(stateCount) {
		return math.NaN()
	}
	return alignmentCenterFromEnd(stateCount, i)
}
