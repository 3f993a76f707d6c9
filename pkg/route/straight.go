package route

import (
	"math"

	"github.com/matzehuels/stratum/pkg/dag"
	"github.com/matzehuels/stratum/pkg/geom"
)

const (
	arrowLength = 6.0
	// arrowSpread is the angle between the link and each barb.
	arrowSpread = math.Pi / 3
	// straightLinkRoom is the vertical padding reserved per straight link.
	straightLinkRoom = 15.0
)

// StraightLine connects node centers with a single segment, trimmed at the
// node the arrow points to.
type StraightLine struct {
	g    *dag.Graph
	opts Options
}

// NewStraightLine returns a straight-line router for g.
func NewStraightLine(g *dag.Graph, opts Options) *StraightLine {
	return &StraightLine{g: g, opts: opts.WithDefaults()}
}

var _ Strategy = (*StraightLine)(nil)

// Prepare implements [Strategy].
func (s *StraightLine) Prepare(levels [][]dag.NodeID) []float64 {
	paddings := make([]float64, len(levels))
	for lv, row := range levels {
		if lv == len(levels)-1 {
			break
		}
		count := 0
		for _, v := range row {
			count += len(s.g.Children(v))
		}
		paddings[lv] = max(float64(count)*straightLinkRoom, s.opts.LevelSpacing)
	}
	return paddings
}

// Path implements [Strategy].
func (s *StraightLine) Path(l dag.LinkID, _ []float64, isLast, isFirst bool) []geom.Point {
	lk := s.g.Link(l)
	src, dst := s.g.Node(lk.Source), s.g.Node(lk.Target)
	start, end := src.Box().Center(), dst.Box().Center()

	if lk.Reversed {
		if isFirst {
			if c, ok := geom.BoxIntersection(src.Box(), start, end); ok {
				a, b := arrowhead(c, end)
				return reversePoints([]geom.Point{start, c, a, c, b, c, end})
			}
		}
		return []geom.Point{end, start}
	}
	if isLast {
		if c, ok := geom.BoxIntersection(dst.Box(), start, end); ok {
			a, b := arrowhead(c, start)
			return []geom.Point{start, c, a, c, b, c, end}
		}
	}
	return []geom.Point{start, end}
}

// SelfLoopPath implements [Strategy].
func (s *StraightLine) SelfLoopPath(l dag.LinkID) []geom.Point {
	n := s.g.Node(s.g.Link(l).Source)
	x0 := n.X + n.Width/2
	return selfLoopPath(n, x0, x0-30, s.opts.selfLoopOffset())
}

// arrowhead returns the two barb ends of an arrow whose tip is at tip and
// whose shaft runs back toward from.
func arrowhead(tip, from geom.Point) (geom.Point, geom.Point) {
	d := geom.Distance(tip, from)
	if d == 0 {
		return tip, tip
	}
	ux, uy := (from.X-tip.X)/d, (from.Y-tip.Y)/d
	barb := func(theta float64) geom.Point {
		sin, cos := math.Sincos(theta)
		return geom.Point{
			X: tip.X + arrowLength*(cos*ux-sin*uy),
			Y: tip.Y + arrowLength*(sin*ux+cos*uy),
		}
	}
	return barb(-arrowSpread), barb(arrowSpread)
}
