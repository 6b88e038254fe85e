// Package transform maps sampled symbol coordinates onto image pixels.
package transform

import "github.com/ericlevine/zxpipe"

// Quad is four corners in order: top-left, top-right, bottom-right,
// bottom-left.
type Quad [4]zxpipe.ResultPoint

// Perspective is a planar homography. Points are row vectors (x, y, 1)
// multiplied on the left of m.
type Perspective struct {
	m [3][3]float64
}

// QuadToQuad returns the homography that sends from onto to.
func QuadToQuad(from, to Quad) *Perspective {
	return squareToQuad(from).adjugate().then(squareToQuad(to))
}

// squareToQuad maps the unit square onto q.
func squareToQuad(q Quad) *Perspective {
	x0, y0 := q[0].X, q[0].Y
	x1, y1 := q[1].X, q[1].Y
	x2, y2 := q[2].X, q[2].Y
	x3, y3 := q[3].X, q[3].Y
	dx3 := x0 - x1 + x2 - x3
	dy3 := y0 - y1 + y2 - y3
	if dx3 == 0 && dy3 == 0 {
		// Parallelogram: the map is affine.
		return &Perspective{m: [3][3]float64{
			{x1 - x0, y1 - y0, 0},
			{x2 - x1, y2 - y1, 0},
			{x0, y0, 1},
		}}
	}
	dx1, dx2 := x1-x2, x3-x2
	dy1, dy2 := y1-y2, y3-y2
	den := dx1*dy2 - dx2*dy1
	g := (dx3*dy2 - dx2*dy3) / den
	h := (dx1*dy3 - dx3*dy1) / den
	return &Perspective{m: [3][3]float64{
		{x1 - x0 + g*x1, y1 - y0 + g*y1, g},
		{x3 - x0 + h*x3, y3 - y0 + h*y3, h},
		{x0, y0, 1},
	}}
}

// adjugate is the inverse up to scale, which a homography ignores.
func (p *Perspective) adjugate() *Perspective {
	var out Perspective
	m := &p.m
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			j1, j2 := (j+1)%3, (j+2)%3
			i1, i2 := (i+1)%3, (i+2)%3
			out.m[i][j] = m[j1][i1]*m[j2][i2] - m[j1][i2]*m[j2][i1]
		}
	}
	return &out
}

// then returns the map that applies p and afterwards next.
func (p *Perspective) then(next *Perspective) *Perspective {
	var out Perspective
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				out.m[i][j] += p.m[i][k] * next.m[k][j]
			}
		}
	}
	return &out
}

// Apply maps (x, y) pairs stored flat in points, in place.
func (p *Perspective) Apply(points []float64) {
	m := &p.m
	for i := 0; i+1 < len(points); i += 2 {
		x, y := points[i], points[i+1]
		w := x*m[0][2] + y*m[1][2] + m[2][2]
		points[i] = (x*m[0][0] + y*m[1][0] + m[2][0]) / w
		points[i+1] = (x*m[0][1] + y*m[1][1] + m[2][1]) / w
	}
}

// Point maps a single point.
func (p *Perspective) Point(pt zxpipe.ResultPoint) zxpipe.ResultPoint {
	xy := []float64{pt.X, pt.Y}
	p.Apply(xy)
	return zxpipe.ResultPoint{X: xy[0], Y: xy[1]}
}
