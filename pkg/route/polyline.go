package route

import (
	"cmp"
	"maps"
	"slices"

	"github.com/matzehuels/stratum/pkg/dag"
	"github.com/matzehuels/stratum/pkg/geom"
)

// Polyline routes links orthogonally: down from the source's bottom edge to
// a turning height inside the gap, across, and down into the target's top
// edge. Turning heights are spread over slots so parallel runs stay apart.
type Polyline struct {
	g    *dag.Graph
	opts Options
	// outCount is the number of nodes with outgoing links, per level.
	outCount []int
}

// NewPolyline returns a polyline router for g.
func NewPolyline(g *dag.Graph, opts Options) *Polyline {
	return &Polyline{g: g, opts: opts.WithDefaults()}
}

var _ Strategy = (*Polyline)(nil)

// Prepare implements [Strategy]. It numbers the nodes with outgoing links in
// each level (Node.OutIndex), sets attach offsets on every link and assigns
// turning slots gap by gap.
func (p *Polyline) Prepare(levels [][]dag.NodeID) []float64 {
	p.outCount = make([]int, len(levels))
	for lv, row := range levels {
		count := 0
		for _, v := range row {
			n := p.g.Node(v)
			n.OutIndex = dag.None
			if len(p.g.Out(v)) > 0 {
				n.OutIndex = count
				count++
			}
			p.attach(v)
		}
		p.outCount[lv] = count
	}

	for _, l := range p.g.SelfLoops() {
		lk := p.g.Link(l)
		n := p.g.Node(lk.Source)
		lk.SourceOffset = attachRatio(0, len(p.g.Children(lk.Source))+1) * n.Width
		lk.TargetOffset = attachRatio(0, len(p.g.Parents(lk.Source))+1) * n.Width
	}

	paddings := make([]float64, len(levels))
	for lv := range levels {
		if lv == len(levels)-1 {
			break
		}
		slots := p.assignSlots(levels[lv])
		paddings[lv] = max(float64(slots+1)*p.opts.TurningSlotSpacing, p.opts.LevelSpacing)
	}
	return paddings
}

// attach spreads link endpoints along v's edges. Outgoing links share one
// point unless they were reversed, in which case each gets its own; incoming
// links each get their own point, ordered by source position.
func (p *Polyline) attach(v dag.NodeID) {
	width := p.g.Node(v).Width

	out := p.unit(p.g.Out(v))
	slices.SortStableFunc(out, func(a, b dag.LinkID) int {
		return cmpBool(p.g.Link(a).Reversed, p.g.Link(b).Reversed)
	})
	reversed := 0
	for _, l := range p.g.Out(v) {
		if p.g.Link(l).Reversed {
			reversed++
		}
	}
	index := 0
	for _, l := range out {
		lk := p.g.Link(l)
		if lk.Reversed {
			index++
		}
		lk.SourceOffset = attachRatio(index, reversed+1) * width
	}

	in := p.unit(p.g.In(v))
	slices.SortStableFunc(in, func(a, b dag.LinkID) int {
		la, lb := p.g.Link(a), p.g.Link(b)
		if c := cmp.Compare(p.g.Node(la.Source).Pos, p.g.Node(lb.Source).Pos); c != 0 {
			return c
		}
		return cmpBool(la.Reversed, lb.Reversed)
	})
	for i, l := range in {
		p.g.Link(l).TargetOffset = attachRatio(i, len(in)) * width
	}
}

func (p *Polyline) unit(links []dag.LinkID) []dag.LinkID {
	out := make([]dag.LinkID, 0, len(links))
	for _, l := range links {
		if p.g.IsUnit(l) {
			out = append(out, l)
		}
	}
	return out
}

func cmpBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	}
	return -1
}

// slotGroup collects the links that landed on one turning value. Slots
// opened to resolve a crossing share the group of the slot they split from.
type slotGroup struct {
	lines   []dag.LinkID
	records []dag.LinkID
}

// assignSlots gives every unit link leaving row a turning value and converts
// the values into 1-based slot indices. It returns the number of slots.
func (p *Polyline) assignSlots(row []dag.NodeID) int {
	slots := make(map[float64]*slotGroup)
	var links []dag.LinkID
	for _, v := range row {
		src := p.g.Node(v)
		for _, l := range p.g.Out(v) {
			if !p.g.IsUnit(l) {
				continue
			}
			links = append(links, l)
			value := slotRatio(src.OutIndex, p.outCount[src.Level])
			grp, ok := slots[value]
			if !ok {
				p.g.Link(l).TurnValue = value
				slots[value] = &slotGroup{lines: []dag.LinkID{l}, records: []dag.LinkID{l}}
				continue
			}
			if !p.opts.LinkMerge && p.crossesAny(l, grp.records) {
				value = p.resolve(l, grp)
			}
			p.g.Link(l).TurnValue = value
			grp.records = append(grp.records, l)
			slots[value] = grp
		}
	}

	values := slices.Sorted(maps.Keys(slots))
	for _, l := range links {
		lk := p.g.Link(l)
		lk.TurnIndex, _ = slices.BinarySearch(values, lk.TurnValue)
		lk.TurnIndex++
		lk.TurnCount = len(values)
	}
	return len(values)
}

// resolve moves l off a slot where it would cross another run: onto the
// value of a run sharing its source or target, or else onto a fresh value
// below every run of the group.
func (p *Polyline) resolve(l dag.LinkID, grp *slotGroup) float64 {
	lk := p.g.Link(l)
	highest := 0.0
	for i, line := range grp.lines {
		other := p.g.Link(line)
		if i == 0 || other.TurnValue > highest {
			highest = other.TurnValue
		}
		if other.Source == lk.Source || other.Target == lk.Target {
			return other.TurnValue
		}
	}
	grp.lines = append(grp.lines, l)
	return highest + 0.1
}

func (p *Polyline) crossesAny(l dag.LinkID, records []dag.LinkID) bool {
	lk := p.g.Link(l)
	sx, tx := p.g.Node(lk.Source).X, p.g.Node(lk.Target).X
	for _, r := range records {
		other := p.g.Link(r)
		ox, oy := p.g.Node(other.Source).X, p.g.Node(other.Target).X
		if (ox < sx && oy > tx) || (ox > sx && oy < tx) {
			return true
		}
	}
	return false
}

// Path implements [Strategy].
func (p *Polyline) Path(l dag.LinkID, paddings []float64, isLast, isFirst bool) []geom.Point {
	lk := p.g.Link(l)
	src, dst := p.g.Node(lk.Source), p.g.Node(lk.Target)
	x0, y0 := src.X+lk.SourceOffset, src.Y+src.Height
	x1, y1 := dst.X+lk.TargetOffset, dst.Y
	turnY := y0 + paddings[src.Level]*float64(lk.TurnIndex)/float64(lk.TurnCount+1)

	if lk.Reversed {
		pts := []geom.Point{{X: x1, Y: y1}, {X: x1, Y: turnY}, {X: x0, Y: turnY}, {X: x0, Y: y0}}
		if isFirst {
			pts = append(pts, upArrow(x0, y0)...)
		}
		return pts
	}
	pts := []geom.Point{{X: x0, Y: y0}, {X: x0, Y: turnY}, {X: x1, Y: turnY}, {X: x1, Y: y1}}
	if isLast {
		pts = append(pts, downArrow(x1, y1)...)
	}
	return pts
}

// SelfLoopPath implements [Strategy].
func (p *Polyline) SelfLoopPath(l dag.LinkID) []geom.Point {
	lk := p.g.Link(l)
	n := p.g.Node(lk.Source)
	return selfLoopPath(n, n.X+lk.SourceOffset, n.X+lk.TargetOffset, p.opts.selfLoopOffset())
}
