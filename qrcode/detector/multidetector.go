package detector

import (
	"math"
	"slices"

	"github.com/ericlevine/zxpipe"
	"github.com/ericlevine/zxpipe/bitutil"
	"github.com/ericlevine/zxpipe/internal"
)

const (
	maxModuleCountPerEdge    = 180.0
	minModuleCountPerEdge    = 9.0
	diffModSizeCutoffPercent = 0.05
	diffModSizeCutoff        = 0.5
)

// DetectMulti finds every plausible finder pattern triple in image and
// samples each one. Triples that fail sampling are skipped.
func DetectMulti(image *bitutil.BitMatrix, tryHarder bool) ([]*internal.DetectorResult, error) {
	f := &finderScanner{image: image}
	f.scan(rowSkip(image.Height(), tryHarder, false))

	infos := selectMultipleBestPatterns(f.centers)
	if len(infos) == 0 {
		return nil, zxpipe.ErrNotFound
	}

	det := NewDetector(image)
	var results []*internal.DetectorResult
	for _, info := range infos {
		if r, err := det.sample(info); err == nil {
			results = append(results, r)
		}
	}
	if len(results) == 0 {
		return nil, zxpipe.ErrNotFound
	}
	return results, nil
}

// selectMultipleBestPatterns groups confirmed centers of similar module size
// into triples that form a plausible right isosceles triangle.
func selectMultipleBestPatterns(centers []*FinderPattern) []*FinderPatternInfo {
	var confirmed []*FinderPattern
	for _, fp := range centers {
		if fp.Count >= centerQuorum {
			confirmed = append(confirmed, fp)
		}
	}
	if len(confirmed) < 3 {
		return nil
	}
	if len(confirmed) == 3 {
		return []*FinderPatternInfo{orderFinderPatterns(confirmed)}
	}

	// Largest module size first.
	slices.SortFunc(confirmed, func(a, b *FinderPattern) int {
		switch {
		case a.EstimatedModuleSize > b.EstimatedModuleSize:
			return -1
		case a.EstimatedModuleSize < b.EstimatedModuleSize:
			return 1
		}
		return 0
	})

	size := len(confirmed)
	var results []*FinderPatternInfo
	for i1 := 0; i1 < size-2; i1++ {
		p1 := confirmed[i1]
		for i2 := i1 + 1; i2 < size-1; i2++ {
			p2 := confirmed[i2]
			if !similarModuleSize(p1, p2) {
				break
			}
			for i3 := i2 + 1; i3 < size; i3++ {
				p3 := confirmed[i3]
				if !similarModuleSize(p2, p3) {
					break
				}
				info := orderFinderPatterns([]*FinderPattern{p1, p2, p3})
				if plausibleSymbol(info, p1.EstimatedModuleSize) {
					results = append(results, info)
				}
			}
		}
	}
	return results
}

func similarModuleSize(a, b *FinderPattern) bool {
	diff := math.Abs(a.EstimatedModuleSize - b.EstimatedModuleSize)
	rel := diff / math.Min(a.EstimatedModuleSize, b.EstimatedModuleSize)
	return diff <= diffModSizeCutoff || rel < diffModSizeCutoffPercent
}

// plausibleSymbol checks the triangle's legs are about equal, its
// hypotenuse matches, and the implied size is within QR limits.
func plausibleSymbol(info *FinderPatternInfo, moduleSize float64) bool {
	dA := distanceFP(info.TopLeft, info.BottomLeft)
	dC := distanceFP(info.TopRight, info.BottomLeft)
	dB := distanceFP(info.TopLeft, info.TopRight)

	modules := (dA + dB) / (moduleSize * 2.0)
	if modules > maxModuleCountPerEdge || modules < minModuleCountPerEdge {
		return false
	}
	if math.Abs((dA-dB)/math.Min(dA, dB)) >= 0.1 {
		return false
	}
	dCpy := math.Hypot(dA, dB)
	return math.Abs((dC-dCpy)/math.Min(dC, dCpy)) < 0.1
}
