// Package geom holds the small amount of plane geometry the router needs:
// points, axis-aligned boxes and segment intersection.
package geom

import (
	"math"
	"strconv"
	"strings"
)

// epsilon is the tolerance used by [SegmentsCross].
const epsilon = 1e-9

// Point is a 2D coordinate in layout space. Y grows downward.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Swap returns the point with X and Y exchanged.
func (p Point) Swap() Point { return Point{X: p.Y, Y: p.X} }

// Add translates p by (dx, dy).
func (p Point) Add(dx, dy float64) Point { return Point{X: p.X + dx, Y: p.Y + dy} }

// Rect is an axis-aligned rectangle given by its top-left corner.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Left() float64    { return r.X }
func (r Rect) Right() float64   { return r.X + r.W }
func (r Rect) Top() float64     { return r.Y }
func (r Rect) Bottom() float64  { return r.Y + r.H }
func (r Rect) CenterX() float64 { return r.X + r.W/2 }
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

// Center returns the rectangle's midpoint.
func (r Rect) Center() Point { return Point{X: r.CenterX(), Y: r.CenterY()} }

// Corners returns the four corners clockwise from the top-left.
func (r Rect) Corners() [4]Point {
	return [4]Point{
		{X: r.Left(), Y: r.Top()},
		{X: r.Right(), Y: r.Top()},
		{X: r.Right(), Y: r.Bottom()},
		{X: r.Left(), Y: r.Bottom()},
	}
}

// Contains reports whether p lies strictly inside r.
func (r Rect) Contains(p Point) bool {
	return p.X > r.Left() && p.X < r.Right() && p.Y > r.Top() && p.Y < r.Bottom()
}

// Cross returns the z component of (b-a) × (c-a).
func Cross(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (c.X-a.X)*(b.Y-a.Y)
}

// SegmentsCross reports whether segment p1p2 touches or crosses p3p4.
func SegmentsCross(p1, p2, p3, p4 Point) bool {
	return Cross(p1, p3, p4)*Cross(p2, p3, p4) <= epsilon &&
		Cross(p3, p1, p2)*Cross(p4, p1, p2) <= epsilon
}

// Intersection returns the intersection of the lines through p1p2 and p3p4.
// The caller must check [SegmentsCross] first; parallel lines yield NaN.
func Intersection(p1, p2, p3, p4 Point) Point {
	a1 := Cross(p3, p2, p1)
	a2 := Cross(p4, p1, p2)
	return Point{
		X: (p3.X*a2 + p4.X*a1) / (a2 + a1),
		Y: (p3.Y*a2 + p4.Y*a1) / (a2 + a1),
	}
}

// BoxIntersection returns where the segment from -> to leaves or enters r,
// scanning edges clockwise and keeping the last hit. ok is false when the
// segment never touches the boundary.
func BoxIntersection(r Rect, from, to Point) (p Point, ok bool) {
	c := r.Corners()
	for i := range c {
		a, b := c[i], c[(i+1)%len(c)]
		if SegmentsCross(a, b, from, to) {
			if q := Intersection(a, b, from, to); !math.IsNaN(q.X) && !math.IsNaN(q.Y) {
				p, ok = q, true
			}
		}
	}
	return p, ok
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// PathString renders points as an SVG path: "M x,y L x,y ...". When swap is
// set the coordinates are written transposed.
func PathString(points []Point, swap bool) string {
	var b strings.Builder
	for i, p := range points {
		if swap {
			p = p.Swap()
		}
		if i == 0 {
			b.WriteByte('M')
		} else {
			b.WriteString(" L")
		}
		b.WriteString(formatFloat(p.X))
		b.WriteByte(',')
		b.WriteString(formatFloat(p.Y))
	}
	return b.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
