package layout

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/stratum/pkg/dag"
	"github.com/matzehuels/stratum/pkg/dag/ordering"
	"github.com/matzehuels/stratum/pkg/dag/position"
	"github.com/matzehuels/stratum/pkg/dag/transform"
	"github.com/matzehuels/stratum/pkg/errors"
	"github.com/matzehuels/stratum/pkg/geom"
	"github.com/matzehuels/stratum/pkg/observability"
	"github.com/matzehuels/stratum/pkg/route"
)

// Stats describes what a run did to the graph.
type Stats struct {
	Nodes        int
	Links        int
	SelfLoops    int
	Reversed     []string
	VirtualNodes int
	Levels       int
	Ordering     ordering.Result
	Alignment    position.Alignment
	Elapsed      time.Duration
}

// Engine lays out one connected component. Create it with [NewEngine], call
// Run once and then Output once. An Engine is not safe for concurrent use.
type Engine struct {
	cfg  Config
	prep Prepared
	g    *dag.Graph

	strategy route.Strategy
	heights  []float64 // tallest node per level
	paddings []float64 // gap below each level
	tops     []float64 // top of each level, relative to the component
	baseX    []float64

	width, height float64
	stats         Stats
	state         engineState
}

type engineState int

const (
	stateNew engineState = iota
	stateRan
	stateDone
)

// NewEngine loads prepared input into a fresh arena. Nodes and links keep
// the order of p; self loops follow the links.
func NewEngine(p Prepared, cfg Config) (*Engine, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := dag.New(len(p.Nodes))
	for i, n := range p.Nodes {
		if _, err := g.AddNode(dag.Node{ID: n.ID, Width: n.Width, Height: n.Height, Origin: i}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "load node %q", n.ID)
		}
	}
	add := func(r InputRelation, origin int) error {
		src, _ := g.Lookup(r.SourceID)
		dst, _ := g.Lookup(r.TargetID)
		_, err := g.AddLink(dag.Link{Source: src, Target: dst, Origin: origin, CycleHint: r.IsCycleRelation})
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "load relation %s", defaultLinkKey(r))
		}
		return nil
	}
	for i, r := range p.Links {
		if err := add(r, i); err != nil {
			return nil, err
		}
	}
	for i, r := range p.SelfLoops {
		if err := add(r, len(p.Links)+i); err != nil {
			return nil, err
		}
	}

	return &Engine{
		cfg:  cfg,
		prep: p,
		g:    g,
		stats: Stats{
			Nodes:     len(p.Nodes),
			Links:     len(p.Links),
			SelfLoops: len(p.SelfLoops),
		},
	}, nil
}

// Run breaks cycles, assigns levels, inserts virtual nodes, orders levels,
// assigns coordinates and prepares link routing. Cancellation is checked
// between ordering rounds.
func (e *Engine) Run(ctx context.Context) error {
	if e.state != stateNew {
		return errors.New(errors.ErrCodeInternal, "engine already ran")
	}
	e.state = stateRan
	g := e.g
	if g.NodeCount() == 0 {
		return nil
	}
	logger := e.cfg.Logger
	start := time.Now()

	norm := transform.Normalize(g, e.cfg.VirtualNodeWidth)
	e.heights = norm.LevelHeights
	e.stats.VirtualNodes = norm.VirtualNodes
	e.stats.Levels = len(norm.LevelHeights)
	if len(norm.Reversed) > 0 {
		for _, l := range norm.Reversed {
			r := e.relation(l)
			e.stats.Reversed = append(e.stats.Reversed, fmt.Sprintf("%s -> %s", r.SourceID, r.TargetID))
		}
		logger.Warn("reversed links to break cycles", "count", len(norm.Reversed), "links", e.stats.Reversed)
		observability.Layout().OnCyclesBroken(ctx, len(norm.Reversed))
	}
	logger.Debug("normalized graph", "levels", e.stats.Levels, "virtual", norm.VirtualNodes, "elapsed", time.Since(start))

	stage := time.Now()
	ord, err := ordering.WeightedMedian{}.OrderContext(ctx, g)
	if err != nil {
		return contextError(err)
	}
	e.stats.Ordering = ord
	observability.Layout().OnOrdering(ctx, ord.Initial, ord.Final, len(ord.History))
	logger.Debug("ordered levels", "initial", ord.Initial, "final", ord.Final, "rounds", len(ord.History), "elapsed", time.Since(stage))

	stage = time.Now()
	pos, err := position.Assign(g, e.cfg.NodeSpacing)
	if err != nil {
		return err
	}
	e.stats.Alignment = pos.Narrowest
	e.baseX = make([]float64, g.NodeCount())
	for v := range e.baseX {
		e.baseX[v] = g.Node(dag.NodeID(v)).X
	}
	logger.Debug("assigned coordinates", "alignment", pos.Narrowest, "width", pos.Width, "elapsed", time.Since(stage))

	e.strategy, err = route.New(e.cfg.LinkStrategy, g, e.cfg.routeOptions())
	if err != nil {
		return err
	}
	e.paddings = e.strategy.Prepare(g.Levels())

	e.tops = make([]float64, len(e.heights))
	top := 0.0
	for lv, h := range e.heights {
		e.tops[lv] = top
		top += h + e.paddings[lv]
	}
	last := len(e.heights) - 1
	e.height = e.tops[last] + e.heights[last]
	e.width = pos.Width
	e.stats.Elapsed = time.Since(start)
	return nil
}

// Size returns the extent of the component without margins.
func (e *Engine) Size() Size { return Size{Width: e.width, Height: e.height} }

// Stats returns run diagnostics.
func (e *Engine) Stats() Stats { return e.stats }

// Levels returns node IDs per level in final order, virtual nodes included.
func (e *Engine) Levels() [][]string {
	levels := e.g.Levels()
	out := make([][]string, len(levels))
	for i, row := range levels {
		out[i] = e.g.NodeIDs(row)
	}
	return out
}

// Output places the component with its top-left corner at (offsetX,
// offsetY), routes every link, restores reversed links and returns the
// caller's nodes and relations. Nodes are vertically centered in their
// level. It may be called once, after Run.
func (e *Engine) Output(offsetX, offsetY float64) (Result, error) {
	switch e.state {
	case stateNew:
		return Result{}, errors.New(errors.ErrCodeInternal, "engine output requested before run")
	case stateDone:
		return Result{}, errors.New(errors.ErrCodeInternal, "engine output already produced")
	}
	e.state = stateDone
	g := e.g
	if g.NodeCount() == 0 {
		return emptyResult(), nil
	}

	for v := 0; v < g.NodeCount(); v++ {
		n := g.Node(dag.NodeID(v))
		n.X = e.baseX[v] + offsetX
		n.Y = offsetY + e.tops[n.Level] + (e.heights[n.Level]-n.Height)/2
	}
	for i := 0; i < g.LinkCount(); i++ {
		l := dag.LinkID(i)
		lk := g.Link(l)
		if lk.IsSegment() || lk.IsSelfLoop() {
			continue
		}
		lk.Path = e.path(l)
	}
	for _, l := range g.SelfLoops() {
		g.Link(l).Path = e.strategy.SelfLoopPath(l)
	}
	transform.RestoreCycles(g)

	res := Result{
		Nodes: make([]OutputNode, 0, len(e.prep.Nodes)),
		Links: make([]OutputRelation, 0, len(e.prep.Links)+len(e.prep.SelfLoops)),
		Size:  e.Size(),
	}
	for v := 0; v < g.NodeCount(); v++ {
		n := g.Node(dag.NodeID(v))
		if n.IsVirtual() {
			continue
		}
		res.Nodes = append(res.Nodes, OutputNode{
			ID:       n.ID,
			Position: Point{X: n.X, Y: n.Y},
			Width:    n.Width,
			Height:   n.Height,
			Info:     e.prep.Nodes[n.Origin].Info,
		})
	}
	for i := 0; i < len(e.prep.Links)+len(e.prep.SelfLoops); i++ {
		l := dag.LinkID(i)
		r := e.relation(l)
		pts := g.Link(l).Path
		res.Links = append(res.Links, OutputRelation{
			SourceID: r.SourceID,
			TargetID: r.TargetID,
			Path:     geom.PathString(pts, false),
			Points:   pts,
			Info:     r.Info,
		})
	}
	return res, nil
}

// path stitches the segment paths of a subdivided link. Segments are walked
// from the original source, so a reversed chain is walked bottom-up.
func (e *Engine) path(l dag.LinkID) []geom.Point {
	lk := e.g.Link(l)
	if len(lk.Children) == 0 {
		return e.strategy.Path(l, e.paddings, true, true)
	}
	last := len(lk.Children) - 1
	var pts []geom.Point
	for k := range lk.Children {
		i := k
		if lk.Reversed {
			i = last - k
		}
		pts = append(pts, e.strategy.Path(lk.Children[i], e.paddings, i == last, i == 0)...)
	}
	return pts
}

// relation returns the caller relation behind an original link.
func (e *Engine) relation(l dag.LinkID) InputRelation {
	origin := e.g.Link(l).Origin
	if origin < len(e.prep.Links) {
		return e.prep.Links[origin]
	}
	return e.prep.SelfLoops[origin-len(e.prep.Links)]
}

func contextError(err error) error {
	if err == context.DeadlineExceeded {
		return errors.Wrap(errors.ErrCodeTimeout, err, "layout timed out")
	}
	return errors.Wrap(errors.ErrCodeCanceled, err, "layout canceled")
}
