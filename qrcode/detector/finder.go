package detector

import (
	"math"
	"slices"

	"github.com/ericlevine/zxpipe"
	"github.com/ericlevine/zxpipe/bitutil"
)

const (
	// centerQuorum is how many scan rows must confirm a finder pattern
	// before it is trusted over single sightings.
	centerQuorum = 2
	minSkip      = 3
	// maxModules bounds the row skip so a version 20 symbol still gets
	// three rows through each finder pattern.
	maxModules = 97
)

// FinderPattern is one of the three concentric squares in a QR symbol's
// corners, with its estimated module size and how often it was seen.
type FinderPattern struct {
	X, Y                float64
	EstimatedModuleSize float64
	Count               int
}

func (fp *FinderPattern) point() zxpipe.ResultPoint {
	return zxpipe.ResultPoint{X: fp.X, Y: fp.Y}
}

func (fp *FinderPattern) aboutEquals(moduleSize, i, j float64) bool {
	if math.Abs(i-fp.Y) > moduleSize || math.Abs(j-fp.X) > moduleSize {
		return false
	}
	diff := math.Abs(moduleSize - fp.EstimatedModuleSize)
	return diff <= 1.0 || diff <= fp.EstimatedModuleSize
}

func (fp *FinderPattern) combineEstimate(i, j, newModuleSize float64) *FinderPattern {
	n := float64(fp.Count)
	return &FinderPattern{
		X:                   (n*fp.X + j) / (n + 1),
		Y:                   (n*fp.Y + i) / (n + 1),
		EstimatedModuleSize: (n*fp.EstimatedModuleSize + newModuleSize) / (n + 1),
		Count:               fp.Count + 1,
	}
}

// FinderPatternInfo holds the three finder patterns of one symbol.
type FinderPatternInfo struct {
	BottomLeft, TopLeft, TopRight *FinderPattern
}

// finderScanner walks rows of a matrix looking for the 1:1:3:1:1
// dark/light ratio of a finder pattern and confirms hits along the column
// and row through the candidate center.
type finderScanner struct {
	image   *bitutil.BitMatrix
	centers []*FinderPattern
}

// scan visits every skip-th row. After a confirmed center the run counts
// restart from scratch, otherwise they shift by two.
func (f *finderScanner) scan(skip int) {
	maxI := f.image.Height()
	maxJ := f.image.Width()
	for i := skip - 1; i < maxI; i += skip {
		var stateCount [5]int
		state := 0
		for j := 0; j < maxJ; j++ {
			if f.image.Get(j, i) {
				if state&1 == 1 {
					state++
				}
				stateCount[state]++
				continue
			}
			if state&1 == 1 {
				stateCount[state]++
				continue
			}
			if state < 4 {
				state++
				stateCount[state]++
				continue
			}
			if foundFinderPattern(stateCount) && f.handlePossibleCenter(stateCount, i, j) {
				stateCount = [5]int{}
				state = 0
				continue
			}
			stateCount = [5]int{stateCount[2], stateCount[3], stateCount[4], 1, 0}
			state = 3
		}
		if state == 4 && foundFinderPattern(stateCount) {
			f.handlePossibleCenter(stateCount, i, maxJ)
		}
	}
}

// quorum returns the centers seen at least centerQuorum times, or every
// center when fewer than three pass.
func (f *finderScanner) quorum() []*FinderPattern {
	var confirmed []*FinderPattern
	for _, c := range f.centers {
		if c.Count >= centerQuorum {
			confirmed = append(confirmed, c)
		}
	}
	if len(confirmed) < 3 {
		return slices.Clone(f.centers)
	}
	return confirmed
}

func foundFinderPattern(stateCount [5]int) bool {
	total := 0
	for _, count := range stateCount {
		if count == 0 {
			return false
		}
		total += count
	}
	if total < 7 {
		return false
	}
	moduleSize := float64(total) / 7.0
	maxVariance := moduleSize / 2.0
	return math.Abs(moduleSize-float64(stateCount[0])) < maxVariance &&
		math.Abs(moduleSize-float64(stateCount[1])) < maxVariance &&
		math.Abs(3*moduleSize-float64(stateCount[2])) < 3*maxVariance &&
		math.Abs(moduleSize-float64(stateCount[3])) < maxVariance &&
		math.Abs(moduleSize-float64(stateCount[4])) < maxVariance
}

func centerFromEnd(stateCount [5]int, end int) float64 {
	return float64(end-stateCount[4]-stateCount[3]) - float64(stateCount[2])/2.0
}

// handlePossibleCenter cross-checks a horizontal hit at row i ending at
// column j and records it. It reports whether the hit was confirmed.
func (f *finderScanner) handlePossibleCenter(stateCount [5]int, i, j int) bool {
	total := 0
	for _, c := range stateCount {
		total += c
	}
	centerJ := centerFromEnd(stateCount, j)
	centerI := f.crossCheck(i, int(centerJ), stateCount[2], total, true)
	if math.IsNaN(centerI) {
		return false
	}
	centerJ = f.crossCheck(int(centerI), int(centerJ), stateCount[2], total, false)
	if math.IsNaN(centerJ) {
		return false
	}

	estModuleSize := float64(total) / 7.0
	for idx, center := range f.centers {
		if center.aboutEquals(estModuleSize, centerI, centerJ) {
			f.centers[idx] = center.combineEstimate(centerI, centerJ, estModuleSize)
			return true
		}
	}
	f.centers = append(f.centers, &FinderPattern{
		X: centerJ, Y: centerI, EstimatedModuleSize: estModuleSize, Count: 1,
	})
	return true
}

// crossCheck counts the five runs through (startJ, startI) along the column
// when vertical is set and along the row otherwise. It returns the center
// coordinate on that axis, or NaN if the runs do not look like a finder.
func (f *finderScanner) crossCheck(startI, startJ, maxCount, originalTotal int, vertical bool) float64 {
	get := func(pos int) bool {
		if vertical {
			return f.image.Get(startJ, pos)
		}
		return f.image.Get(pos, startI)
	}
	start, limit := startJ, f.image.Width()
	if vertical {
		start, limit = startI, f.image.Height()
	}

	var stateCount [5]int
	pos := start
	for pos >= 0 && get(pos) {
		stateCount[2]++
		pos--
	}
	if pos < 0 {
		return math.NaN()
	}
	for pos >= 0 && !get(pos) && stateCount[1] <= maxCount {
		stateCount[1]++
		pos--
	}
	if pos < 0 || stateCount[1] > maxCount {
		return math.NaN()
	}
	for pos >= 0 && get(pos) && stateCount[0] <= maxCount {
		stateCount[0]++
		pos--
	}
	if stateCount[0] > maxCount {
		return math.NaN()
	}

	pos = start + 1
	for pos < limit && get(pos) {
		stateCount[2]++
		pos++
	}
	if pos == limit {
		return math.NaN()
	}
	for pos < limit && !get(pos) && stateCount[3] <= maxCount {
		stateCount[3]++
		pos++
	}
	if pos == limit || stateCount[3] > maxCount {
		return math.NaN()
	}
	for pos < limit && get(pos) && stateCount[4] <= maxCount {
		stateCount[4]++
		pos++
	}
	if stateCount[4] > maxCount {
		return math.NaN()
	}

	total := 0
	for _, c := range stateCount {
		total += c
	}
	// Vertical runs may be skewed more than horizontal ones.
	tolerance := originalTotal
	if vertical {
		tolerance = 2 * originalTotal
	}
	if 5*abs(total-originalTotal) >= tolerance {
		return math.NaN()
	}
	if !foundFinderPattern(stateCount) {
		return math.NaN()
	}
	return centerFromEnd(stateCount, pos)
}

// selectBestPatterns picks the three centers whose triangle is closest to
// right isosceles, among centers of similar module size.
func selectBestPatterns(candidates []*FinderPattern) ([]*FinderPattern, bool) {
	if len(candidates) < 3 {
		return nil, false
	}
	sorted := slices.Clone(candidates)
	slices.SortFunc(sorted, func(a, b *FinderPattern) int {
		switch {
		case a.EstimatedModuleSize < b.EstimatedModuleSize:
			return -1
		case a.EstimatedModuleSize > b.EstimatedModuleSize:
			return 1
		}
		return 0
	})

	distortion := math.MaxFloat64
	var best []*FinderPattern
	for i := 0; i < len(sorted)-2; i++ {
		fpi := sorted[i]
		for j := i + 1; j < len(sorted)-1; j++ {
			fpj := sorted[j]
			for k := j + 1; k < len(sorted); k++ {
				fpk := sorted[k]
				if fpk.EstimatedModuleSize > fpi.EstimatedModuleSize*1.4 {
					continue
				}
				sides := []float64{
					squaredDistance(fpi, fpj),
					squaredDistance(fpj, fpk),
					squaredDistance(fpi, fpk),
				}
				slices.Sort(sides)
				// a^2 + b^2 = c^2 and a = b.
				a, b, c := sides[0], sides[1], sides[2]
				d := math.Abs(c-2*b) + math.Abs(c-2*a)
				if d < distortion {
					distortion = d
					best = []*FinderPattern{fpi, fpj, fpk}
				}
			}
		}
	}
	return best, best != nil
}

// orderFinderPatterns assigns corners: the top-left pattern is opposite the
// longest side, and bottom-left/top-right are chosen so the symbol is not
// read mirrored.
func orderFinderPatterns(patterns []*FinderPattern) *FinderPatternInfo {
	p0, p1, p2 := patterns[0], patterns[1], patterns[2]
	d01 := squaredDistance(p0, p1)
	d12 := squaredDistance(p1, p2)
	d02 := squaredDistance(p0, p2)

	topLeft, a, c := p2, p0, p1
	switch {
	case d12 >= d01 && d12 >= d02:
		topLeft, a, c = p0, p1, p2
	case d02 >= d12 && d02 >= d01:
		topLeft, a, c = p1, p0, p2
	}
	// With y pointing down, (topRight-topLeft) x (bottomLeft-topLeft) > 0.
	if zxpipe.CrossProductZ(topLeft.point(), c.point(), a.point()) < 0 {
		a, c = c, a
	}
	return &FinderPatternInfo{BottomLeft: a, TopLeft: topLeft, TopRight: c}
}

func squaredDistance(a, b *FinderPattern) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

func distanceFP(a, b *FinderPattern) float64 {
	return math.Sqrt(squaredDistance(a, b))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
