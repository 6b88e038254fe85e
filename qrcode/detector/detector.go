// Package detector locates QR symbols in a binarized image and samples
// their module grid.
package detector

import (
	"fmt"
	"math"

	"github.com/ericlevine/zxpipe"
	"github.com/ericlevine/zxpipe/bitutil"
	"github.com/ericlevine/zxpipe/internal"
	"github.com/ericlevine/zxpipe/qrcode/decoder"
	"github.com/ericlevine/zxpipe/transform"
)

// Detector detects QR codes in binary images.
type Detector struct {
	image *bitutil.BitMatrix
}

// NewDetector creates a new Detector for the given image.
func NewDetector(image *bitutil.BitMatrix) *Detector {
	return &Detector{image: image}
}

// Detect finds the best-looking finder pattern triple and samples the grid
// it spans. pureBarcode scans every row; tryHarder scans at the minimum
// row skip regardless of image size.
func (d *Detector) Detect(tryHarder, pureBarcode bool) (*internal.DetectorResult, error) {
	f := &finderScanner{image: d.image}
	f.scan(rowSkip(d.image.Height(), tryHarder, pureBarcode))
	best, ok := selectBestPatterns(f.quorum())
	if !ok {
		return nil, fmt.Errorf("no finder pattern triple: %w", zxpipe.ErrNotFound)
	}
	return d.sample(orderFinderPatterns(best))
}

func rowSkip(height int, tryHarder, pureBarcode bool) int {
	if pureBarcode {
		return 1
	}
	skip := (3 * height) / (4 * maxModules)
	if skip < minSkip || tryHarder {
		skip = minSkip
	}
	return skip
}

// sample sizes the symbol spanned by info, refines its fourth corner with
// the alignment pattern when the version has one, and reads the grid.
func (d *Detector) sample(info *FinderPatternInfo) (*internal.DetectorResult, error) {
	moduleSize := (d.moduleSizeAlong(info.TopLeft, info.TopRight) +
		d.moduleSizeAlong(info.TopLeft, info.BottomLeft)) / 2
	if moduleSize < 1 {
		return nil, fmt.Errorf("module size %.2f below one pixel: %w", moduleSize, zxpipe.ErrNotFound)
	}
	dimension, err := symbolDimension(info, moduleSize)
	if err != nil {
		return nil, err
	}
	version, err := decoder.VersionForDimension(dimension)
	if err != nil {
		return nil, err
	}

	var alignment *AlignmentPattern
	if len(version.AlignmentCenters) > 0 {
		alignment = d.locateAlignment(info, dimension, moduleSize)
	}
	bits, err := transform.SampleGrid(d.image, dimension, dimension, gridTransform(info, alignment, dimension))
	if err != nil {
		return nil, err
	}

	points := []zxpipe.ResultPoint{info.BottomLeft.point(), info.TopLeft.point(), info.TopRight.point()}
	if alignment != nil {
		points = append(points, zxpipe.ResultPoint{X: alignment.X, Y: alignment.Y})
	}
	return internal.NewDetectorResult(bits, points), nil
}

// symbolDimension converts the finder spacing to modules and snaps it to
// the nearest side length of the form 4k+1.
func symbolDimension(info *FinderPatternInfo, moduleSize float64) (int, error) {
	across := distanceFP(info.TopLeft, info.TopRight) / moduleSize
	down := distanceFP(info.TopLeft, info.BottomLeft) / moduleSize
	dimension := int(math.Round((across+down)/2)) + 7
	switch dimension & 3 {
	case 0:
		dimension++
	case 2:
		dimension--
	case 3:
		return 0, fmt.Errorf("implausible dimension %d: %w", dimension, zxpipe.ErrNotFound)
	}
	return dimension, nil
}

// locateAlignment searches ever wider regions around where the bottom-right
// alignment pattern should be, three modules in from the implied corner.
func (d *Detector) locateAlignment(info *FinderPatternInfo, dimension int, moduleSize float64) *AlignmentPattern {
	tl := info.TopLeft
	cornerX := info.TopRight.X - tl.X + info.BottomLeft.X
	cornerY := info.TopRight.Y - tl.Y + info.BottomLeft.Y
	k := 1 - 3/float64(dimension-7)
	x := int(tl.X + k*(cornerX-tl.X))
	y := int(tl.Y + k*(cornerY-tl.Y))
	for allowance := 4.0; allowance <= 16; allowance *= 2 {
		if ap := d.findAlignmentInRegion(moduleSize, x, y, allowance); ap != nil {
			return ap
		}
	}
	return nil
}

// moduleSizeAlong measures the finder pattern at a across the line to b,
// from both ends, and divides by its width of seven modules.
func (d *Detector) moduleSizeAlong(a, b *FinderPattern) float64 {
	ax, ay, bx, by := int(a.X), int(a.Y), int(b.X), int(b.Y)
	fromA := d.runBothWays(ax, ay, bx, by)
	fromB := d.runBothWays(bx, by, ax, ay)
	switch {
	case math.IsNaN(fromA):
		return fromB / 7
	case math.IsNaN(fromB):
		return fromA / 7
	}
	return (fromA + fromB) / 14
}

// runBothWays measures the dark-light-dark run through (fromX, fromY) on the
// line toward (toX, toY), adding the same walk in the opposite direction.
func (d *Detector) runBothWays(fromX, fromY, toX, toY int) float64 {
	backX, backY := d.reflect(fromX, fromY, toX, toY)
	return d.darkLightDarkRun(fromX, fromY, toX, toY) +
		d.darkLightDarkRun(fromX, fromY, backX, backY) - 1
}

// reflect mirrors (toX, toY) through (fromX, fromY), pulling the result back
// along the line until it lies inside the image.
func (d *Detector) reflect(fromX, fromY, toX, toY int) (int, int) {
	x, scale := clip(fromX, 2*fromX-toX, d.image.Width())
	y := int(float64(fromY) - float64(toY-fromY)*scale)
	y, scale = clip(fromY, y, d.image.Height())
	x = int(float64(fromX) + float64(x-fromX)*scale)
	return x, y
}

// clip bounds to into [0, size) and reports the fraction of from->to kept.
func clip(from, to, size int) (int, float64) {
	switch {
	case to < 0:
		return 0, float64(from) / float64(from-to)
	case to >= size:
		return size - 1, float64(size-1-from) / float64(to-from)
	}
	return to, 1
}

// darkLightDarkRun walks a Bresenham line from (fromX, fromY) toward
// (toX, toY) and returns the distance to the end of a dark, light, dark run
// sequence, or NaN if the line leaves it unfinished.
func (d *Detector) darkLightDarkRun(fromX, fromY, toX, toY int) float64 {
	steep := abs(toY-fromY) > abs(toX-fromX)
	if steep {
		fromX, fromY, toX, toY = fromY, fromX, toY, toX
	}
	dx, dy := abs(toX-fromX), abs(toY-fromY)
	xstep, ystep := step(fromX, toX), step(fromY, toY)

	// changes counts color changes: into light, then back into dark.
	changes := 0
	acc := -dx / 2
	y := fromY
	for x := fromX; x != toX+xstep; x += xstep {
		px, py := x, y
		if steep {
			px, py = y, x
		}
		if px < 0 || py < 0 || px >= d.image.Width() || py >= d.image.Height() {
			break
		}
		if d.image.Get(px, py) == (changes == 1) {
			if changes == 2 {
				return math.Hypot(float64(x-fromX), float64(y-fromY))
			}
			changes++
		}
		acc += dy
		if acc > 0 {
			if y == toY {
				break
			}
			y += ystep
			acc -= dx
		}
	}
	// Running off the line inside the final dark run still counts.
	if changes == 2 {
		return math.Hypot(float64(toX+xstep-fromX), float64(toY-fromY))
	}
	return math.NaN()
}

func step(from, to int) int {
	if from > to {
		return -1
	}
	return 1
}

// gridTransform maps module centers onto the image. The fourth corner is
// the alignment pattern when one was found, otherwise it is extrapolated
// from the finder patterns.
func gridTransform(info *FinderPatternInfo, alignment *AlignmentPattern, dimension int) *transform.Perspective {
	tl, tr, bl := info.TopLeft, info.TopRight, info.BottomLeft
	far := float64(dimension) - 3.5
	corner := zxpipe.ResultPoint{X: tr.X - tl.X + bl.X, Y: tr.Y - tl.Y + bl.Y}
	moduleCorner := zxpipe.ResultPoint{X: far, Y: far}
	if alignment != nil {
		corner = zxpipe.ResultPoint{X: alignment.X, Y: alignment.Y}
		moduleCorner = zxpipe.ResultPoint{X: far - 3, Y: far - 3}
	}
	return transform.QuadToQuad(
		transform.Quad{{X: 3.5, Y: 3.5}, {X: far, Y: 3.5}, moduleCorner, {X: 3.5, Y: far}},
		transform.Quad{tl.point(), tr.point(), corner, bl.point()},
	)
}
