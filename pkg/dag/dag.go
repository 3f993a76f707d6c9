package dag

import (
	"errors"
	"fmt"

	"github.com/matzehuels/stratum/pkg/geom"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists in the graph. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddLink] when the source
	// index is outside the arena.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddLink] when the target
	// index is outside the arena.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrNonConsecutiveLevels is returned by [Graph.ValidateLayered] when an
	// attached link connects nodes that are not in adjacent levels.
	ErrNonConsecutiveLevels = errors.New("links must connect consecutive levels")

	// ErrGraphHasCycle is returned by [Graph.Validate] when a directed cycle
	// is reachable through the attached links. Cycles are detected using
	// depth-first search with white/gray/black coloring.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// NodeID indexes a node inside a [Graph] arena.
type NodeID int

// LinkID indexes a link inside a [Graph] arena.
type LinkID int

// None marks an absent arena index.
const None = -1

// NodeKind distinguishes caller nodes from nodes synthesized by the engine.
type NodeKind int

const (
	// NodeKindRegular represents a node supplied by the caller.
	NodeKindRegular NodeKind = iota
	// NodeKindVirtual represents a placeholder inserted on a long link so
	// that every attached link spans exactly one level. Virtual nodes never
	// reach layout output.
	NodeKindVirtual
)

// Node is a vertex of the arena. Fields below Kind are annotations written by
// the layout stages in order: Level (layering), Pos (ordering), X
// (coordinates), Y (output).
type Node struct {
	ID     string
	Kind   NodeKind
	Width  float64
	Height float64

	// Origin is the index of the caller's input node, or None for virtual
	// nodes.
	Origin int

	// Level is the layer index; 0 is the top.
	Level int
	// Pos is the node's index within its level.
	Pos int
	// X is the left edge after coordinate assignment, relative to the
	// component.
	X float64
	// Y is the top edge, filled in when output is produced.
	Y float64
	// OutIndex numbers, per level, the nodes that have outgoing links. It is
	// None for nodes without outgoing links.
	OutIndex int

	out []LinkID
	in  []LinkID
}

// IsVirtual reports whether the node was inserted by the engine.
func (n *Node) IsVirtual() bool { return n.Kind == NodeKindVirtual }

// Box returns the node's bounding rectangle in layout space.
func (n *Node) Box() geom.Rect { return geom.Rect{X: n.X, Y: n.Y, W: n.Width, H: n.Height} }

// Link is a directed edge of the arena. Source and Target always describe the
// current orientation; Reversed records that the link was flipped to break a
// cycle and must be flipped back before output.
type Link struct {
	Source NodeID
	Target NodeID

	// Origin is the index of the caller's relation, or None for chain
	// segments created by subdivision.
	Origin int
	// CycleHint is set when the caller marked the relation as closing a
	// known cycle.
	CycleHint bool
	// Reversed is set by cycle breaking.
	Reversed bool

	// Children lists the unit-span segments replacing a long link, from the
	// source level downward. A link with children is detached from the
	// adjacency lists.
	Children []LinkID

	// Routing annotations.
	SourceOffset float64
	TargetOffset float64
	TurnIndex    int
	TurnCount    int
	TurnValue    float64
	Path         []geom.Point

	parent   LinkID // 1-based; 0 means not a segment
	detached bool
}

// IsSelfLoop reports whether the link starts and ends at the same node.
func (l *Link) IsSelfLoop() bool { return l.Source == l.Target }

// IsSegment reports whether the link is a chain segment of a long link.
func (l *Link) IsSegment() bool { return l.parent != 0 }

// Parent returns the long link this segment belongs to.
func (l *Link) Parent() (LinkID, bool) { return l.parent - 1, l.parent != 0 }

// Graph is an arena of nodes and links referenced by integer index. Nodes
// and links are never removed; long links are detached from adjacency when
// subdivided and self loops are kept outside adjacency altogether.
//
// Pointers returned by [Graph.Node] and [Graph.Link] are invalidated by the
// next AddNode or AddLink call.
//
// Graph is not safe for concurrent use.
type Graph struct {
	nodes  []Node
	links  []Link
	selfs  []LinkID
	byID   map[string]NodeID
	levels [][]NodeID
}

// New creates an empty graph with room for n nodes.
func New(n int) *Graph {
	return &Graph{
		nodes: make([]Node, 0, n),
		byID:  make(map[string]NodeID, n),
	}
}

// AddNode appends a node and returns its index. Returns ErrInvalidNodeID if
// the ID is empty or ErrDuplicateNodeID if it is already in use.
func (g *Graph) AddNode(n Node) (NodeID, error) {
	if n.ID == "" {
		return None, ErrInvalidNodeID
	}
	if _, ok := g.byID[n.ID]; ok {
		return None, fmt.Errorf("%w: %q", ErrDuplicateNodeID, n.ID)
	}
	n.out, n.in = nil, nil
	n.OutIndex = None
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, n)
	g.byID[n.ID] = id
	return id, nil
}

// AddLink appends a link and attaches it to its endpoints. Self loops are
// recorded separately and never appear in [Graph.Out] or [Graph.In].
func (g *Graph) AddLink(l Link) (LinkID, error) {
	if !g.valid(l.Source) {
		return None, ErrUnknownSourceNode
	}
	if !g.valid(l.Target) {
		return None, ErrUnknownTargetNode
	}
	l.parent, l.detached = 0, false
	id := LinkID(len(g.links))
	g.links = append(g.links, l)
	if l.Source == l.Target {
		g.selfs = append(g.selfs, id)
		return id, nil
	}
	g.nodes[l.Source].out = append(g.nodes[l.Source].out, id)
	g.nodes[l.Target].in = append(g.nodes[l.Target].in, id)
	return id, nil
}

// AddSegment appends a unit-span chain segment of parent between src and
// dst. The segment inherits the parent's Reversed flag and is appended to
// the parent's Children.
func (g *Graph) AddSegment(parent LinkID, src, dst NodeID) (LinkID, error) {
	id, err := g.AddLink(Link{
		Source:   src,
		Target:   dst,
		Origin:   None,
		Reversed: g.links[parent].Reversed,
	})
	if err != nil {
		return None, err
	}
	g.links[id].parent = parent + 1
	g.links[parent].Children = append(g.links[parent].Children, id)
	return id, nil
}

func (g *Graph) valid(n NodeID) bool { return n >= 0 && int(n) < len(g.nodes) }

// Lookup returns the index of the node with the given ID.
func (g *Graph) Lookup(id string) (NodeID, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// Node returns the node at index n. It panics if n is out of range.
func (g *Graph) Node(n NodeID) *Node { return &g.nodes[n] }

// Link returns the link at index l. It panics if l is out of range.
func (g *Graph) Link(l LinkID) *Link { return &g.links[l] }

// NodeCount returns the number of nodes, virtual ones included.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// LinkCount returns the number of links, self loops and segments included.
func (g *Graph) LinkCount() int { return len(g.links) }

// Out returns the attached links leaving n. The slice must not be modified.
func (g *Graph) Out(n NodeID) []LinkID { return g.nodes[n].out }

// In returns the attached links entering n. The slice must not be modified.
func (g *Graph) In(n NodeID) []LinkID { return g.nodes[n].in }

// Degree returns the number of attached links touching n.
func (g *Graph) Degree(n NodeID) int { return len(g.nodes[n].out) + len(g.nodes[n].in) }

// SelfLoops returns the self-loop links in insertion order.
func (g *Graph) SelfLoops() []LinkID { return g.selfs }

// Span returns target.Level - source.Level for l.
func (g *Graph) Span(l LinkID) int {
	lk := &g.links[l]
	return g.nodes[lk.Target].Level - g.nodes[lk.Source].Level
}

// IsUnit reports whether l connects two adjacent levels downward.
func (g *Graph) IsUnit(l LinkID) bool { return g.Span(l) == 1 }

// Children returns the targets of n's unit-span outgoing links.
func (g *Graph) Children(n NodeID) []NodeID {
	var out []NodeID
	for _, l := range g.nodes[n].out {
		if g.IsUnit(l) {
			out = append(out, g.links[l].Target)
		}
	}
	return out
}

// Parents returns the sources of n's unit-span incoming links.
func (g *Graph) Parents(n NodeID) []NodeID {
	var out []NodeID
	for _, l := range g.nodes[n].in {
		if g.IsUnit(l) {
			out = append(out, g.links[l].Source)
		}
	}
	return out
}

// ReverseLink flips l in place: source and target are swapped and the link
// moves between the endpoints' adjacency lists. Reversed is not touched.
func (g *Graph) ReverseLink(l LinkID) {
	lk := &g.links[l]
	if lk.Source == lk.Target {
		return
	}
	if !lk.detached {
		src, dst := &g.nodes[lk.Source], &g.nodes[lk.Target]
		src.out = remove(src.out, l)
		dst.in = remove(dst.in, l)
		src.in = append(src.in, l)
		dst.out = append(dst.out, l)
	}
	lk.Source, lk.Target = lk.Target, lk.Source
}

// Detach removes l from its endpoints' adjacency lists. It is used when a
// long link is replaced by a chain of segments.
func (g *Graph) Detach(l LinkID) {
	lk := &g.links[l]
	if lk.detached || lk.Source == lk.Target {
		return
	}
	g.nodes[lk.Source].out = remove(g.nodes[lk.Source].out, l)
	g.nodes[lk.Target].in = remove(g.nodes[lk.Target].in, l)
	lk.detached = true
}

// IsDetached reports whether l has been removed from adjacency.
func (g *Graph) IsDetached(l LinkID) bool { return g.links[l].detached }

func remove(s []LinkID, l LinkID) []LinkID {
	for i, v := range s {
		if v == l {
			return append(s[:i:i], s[i+1:]...)
		}
	}
	return s
}

// Levels returns the nodes grouped by level in positional order. It is nil
// until [Graph.SetLevels] or [Graph.GroupLevels] is called.
func (g *Graph) Levels() [][]NodeID { return g.levels }

// SetLevels replaces the level grouping and rewrites each node's Pos to its
// index in the given order.
func (g *Graph) SetLevels(levels [][]NodeID) {
	g.levels = levels
	for _, row := range levels {
		for i, n := range row {
			g.nodes[n].Pos = i
		}
	}
}

// GroupLevels rebuilds the level grouping from each node's Level, keeping
// arena order within a level. Pos is rewritten accordingly.
func (g *Graph) GroupLevels() [][]NodeID {
	levels := make([][]NodeID, g.MaxLevel()+1)
	if len(g.nodes) == 0 {
		levels = nil
	}
	for i := range g.nodes {
		lv := g.nodes[i].Level
		levels[lv] = append(levels[lv], NodeID(i))
	}
	g.SetLevels(levels)
	return levels
}

// MaxLevel returns the highest level index, or 0 for an empty graph.
func (g *Graph) MaxLevel() int {
	maxLevel := 0
	for i := range g.nodes {
		maxLevel = max(maxLevel, g.nodes[i].Level)
	}
	return maxLevel
}

// LevelHeights returns the tallest node height of every level.
func (g *Graph) LevelHeights() []float64 {
	if len(g.nodes) == 0 {
		return nil
	}
	heights := make([]float64, g.MaxLevel()+1)
	for i := range g.nodes {
		n := &g.nodes[i]
		heights[n.Level] = max(heights[n.Level], n.Height)
	}
	return heights
}

// Validate reports ErrGraphHasCycle if the attached links contain a directed
// cycle. Detection is iterative, so arbitrarily deep graphs are safe.
func (g *Graph) Validate() error {
	if len(BackLinks(g)) > 0 {
		return ErrGraphHasCycle
	}
	return nil
}

// ValidateLayered checks that every attached link spans exactly one level.
// It is meaningful after subdivision.
func (g *Graph) ValidateLayered() error {
	for i := range g.links {
		l := LinkID(i)
		if g.links[i].detached || g.links[i].IsSelfLoop() {
			continue
		}
		if !g.IsUnit(l) {
			return fmt.Errorf("%w: %s -> %s", ErrNonConsecutiveLevels,
				g.nodes[g.links[i].Source].ID, g.nodes[g.links[i].Target].ID)
		}
	}
	return nil
}

// BackLinks returns the attached links closing a directed cycle, found by an
// iterative white/gray/black depth-first search started from every node in
// arena order.
func BackLinks(g *Graph) []LinkID {
	const (
		white = iota
		gray
		black
	)
	type frame struct {
		node NodeID
		next int
	}

	color := make([]uint8, len(g.nodes))
	var back []LinkID
	var stack []frame
	for root := range g.nodes {
		if color[root] != white {
			continue
		}
		color[root] = gray
		stack = append(stack[:0], frame{node: NodeID(root)})
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			out := g.nodes[top.node].out
			if top.next == len(out) {
				color[top.node] = black
				stack = stack[:len(stack)-1]
				continue
			}
			l := out[top.next]
			top.next++
			child := g.links[l].Target
			switch color[child] {
			case white:
				color[child] = gray
				stack = append(stack, frame{node: child})
			case gray:
				back = append(back, l)
			}
		}
	}
	return back
}

// NodeIDs maps arena indices to caller-facing IDs.
func (g *Graph) NodeIDs(ns []NodeID) []string {
	ids := make([]string, len(ns))
	for i, n := range ns {
		ids[i] = g.nodes[n].ID
	}
	return ids
}
