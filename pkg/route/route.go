package route

import (
	"math"
	"slices"

	"github.com/matzehuels/stratum/pkg/dag"
	"github.com/matzehuels/stratum/pkg/errors"
	"github.com/matzehuels/stratum/pkg/geom"
)

// Link routing strategies accepted by [New].
const (
	KindPolyline = "polyline"
	KindStraight = "straight"
	KindCustom   = "custom"
)

// Kinds lists the built-in strategy names.
var Kinds = []string{KindPolyline, KindStraight, KindCustom}

const (
	// DefaultLevelSpacing is the minimum vertical gap between two levels.
	DefaultLevelSpacing = 80.0
	// DefaultTurningSlotSpacing is the vertical room reserved per polyline
	// turning slot.
	DefaultTurningSlotSpacing = 30.0
)

// Strategy computes link geometry for a positioned graph. Node X must hold
// the left edge and Node Y the top edge before Path or SelfLoopPath is
// called; Prepare only needs the level order and X.
//
// Path returns the points of one unit-span link (or chain segment) ordered
// from the original source toward the original target: for a link flagged
// Reversed the points run against its current orientation. isFirst marks the
// topmost segment of a chain and isLast the bottommost; a direct link is
// both. The arrowhead belongs to the segment touching the original target.
type Strategy interface {
	// Prepare computes attach offsets and turning slots and returns the
	// vertical padding below every level. The last level's padding is 0.
	Prepare(levels [][]dag.NodeID) []float64
	Path(l dag.LinkID, paddings []float64, isLast, isFirst bool) []geom.Point
	SelfLoopPath(l dag.LinkID) []geom.Point
}

// Options configure the built-in strategies.
type Options struct {
	LevelSpacing       float64
	TurningSlotSpacing float64
	// NodeSpacing is the minimum gap between neighbours on a level. Self
	// loops stay inside it. Zero means unknown.
	NodeSpacing float64
	// LinkMerge lets crossing polyline runs share a turning slot.
	LinkMerge bool
	// Custom builds the strategy for [KindCustom].
	Custom func(g *dag.Graph, opts Options) Strategy
}

// WithDefaults fills zero spacings with the package defaults.
func (o Options) WithDefaults() Options {
	if o.LevelSpacing == 0 {
		o.LevelSpacing = DefaultLevelSpacing
	}
	if o.TurningSlotSpacing == 0 {
		o.TurningSlotSpacing = DefaultTurningSlotSpacing
	}
	return o
}

// New returns the strategy registered under kind. An empty kind selects
// [KindPolyline].
func New(kind string, g *dag.Graph, opts Options) (Strategy, error) {
	opts = opts.WithDefaults()
	switch kind {
	case KindPolyline, "":
		return NewPolyline(g, opts), nil
	case KindStraight:
		return NewStraightLine(g, opts), nil
	case KindCustom:
		if opts.Custom == nil {
			return nil, errors.New(errors.ErrCodeInvalidStrategy, "custom link strategy requires a factory")
		}
		s := opts.Custom(g, opts)
		if s == nil {
			return nil, errors.New(errors.ErrCodeInvalidStrategy, "custom link strategy factory returned nil")
		}
		return s, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidStrategy, "unknown link strategy: %s (valid: polyline, straight, custom)", kind)
}

// ValidateKind reports whether kind names a built-in strategy.
func ValidateKind(kind string) error {
	switch kind {
	case "", KindPolyline, KindStraight, KindCustom:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidStrategy, "unknown link strategy: %s", kind)
}

// selfLoopReach is how far a self loop swings left of its node when the
// level gap allows it.
const selfLoopReach = 24.0

// selfLoopOffset returns the self loop reach, halving the node spacing when
// it is too narrow for [selfLoopReach].
func (o Options) selfLoopOffset() float64 {
	if o.NodeSpacing > 0 && o.NodeSpacing <= selfLoopReach {
		return o.NodeSpacing / 2
	}
	return selfLoopReach
}

// selfLoopPath leaves the node's bottom at x0, runs around its left side at
// the given offset and enters its top at x1 with an arrowhead.
func selfLoopPath(n *dag.Node, x0, x1, offset float64) []geom.Point {
	y0 := n.Y + n.Height
	y1 := n.Y
	side := n.X - offset
	pts := []geom.Point{
		{X: x0, Y: y0},
		{X: x0, Y: y0 + 12},
		{X: side, Y: y0 + 12},
		{X: side, Y: y1 - 12},
		{X: x1, Y: y1 - 12},
		{X: x1, Y: y1},
	}
	return append(pts, downArrow(x1, y1)...)
}

// downArrow draws a small arrowhead pointing down onto (x, y).
func downArrow(x, y float64) []geom.Point {
	return []geom.Point{
		{X: x - 3, Y: y - 5},
		{X: x, Y: y},
		{X: x + 3, Y: y - 5},
		{X: x, Y: y},
	}
}

// upArrow draws a small arrowhead pointing up onto (x, y).
func upArrow(x, y float64) []geom.Point {
	return []geom.Point{
		{X: x + 3, Y: y + 5},
		{X: x, Y: y},
		{X: x - 3, Y: y + 5},
		{X: x, Y: y},
	}
}

// attachRatio maps the i-th of n attachment points onto the middle 60% of an
// edge, as a fraction of its length.
func attachRatio(i, n int) float64 {
	return (float64(i+1)/float64(n+1)-0.5)*0.6 + 0.5
}

// slotRatio orders turning slots so that sources near the middle of a level
// turn closest to it and outer sources turn further down.
func slotRatio(idx, length int) float64 {
	interval := 1 / float64((length+1)/2+1)
	if length%2 == 1 {
		median := float64(length-1) / 2
		return interval * (math.Abs(median-float64(idx)) + 1)
	}
	lo, hi := float64(length/2-1), float64(length/2)
	if float64(idx) <= lo {
		return interval * (math.Abs(lo-float64(idx)) + 1)
	}
	return interval * (math.Abs(hi-float64(idx)) + 1)
}

func reversePoints(pts []geom.Point) []geom.Point {
	out := slices.Clone(pts)
	slices.Reverse(out)
	return out
}
