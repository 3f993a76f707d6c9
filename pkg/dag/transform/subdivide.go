package transform

import (
	"fmt"

	"github.com/matzehuels/stratum/pkg/dag"
)

// Subdivide replaces every attached link spanning more than one level with a
// chain of unit-span segments through virtual nodes, one per intermediate
// level:
//
//	Before: app (level 0) → core (level 3)
//	After:  app → virtual0 → virtual1 → core
//
// Virtual nodes take the given width and the tallest height of their level
// (heights as returned by [dag.Graph.LevelHeights]). The segments are
// recorded on the long link's Children in top-down order and inherit its
// Reversed flag; the long link itself is detached from adjacency but kept in
// the arena so routing can stitch the segment paths back together.
//
// # Node IDs
//
// Virtual nodes are named "virtualN" with a running counter. If a caller node
// already uses that name, a numeric suffix is appended ("virtual3__1"). All
// generated IDs are tracked to guarantee uniqueness.
//
// Subdivide returns the number of virtual nodes created.
func Subdivide(g *dag.Graph, width float64, heights []float64) int {
	gen := newIDGen(g)
	created := 0
	count := g.LinkCount()
	for i := 0; i < count; i++ {
		l := dag.LinkID(i)
		lk := g.Link(l)
		if lk.IsSelfLoop() || g.IsDetached(l) || g.Span(l) <= 1 {
			continue
		}
		src, dst := lk.Source, lk.Target
		from, to := g.Node(src).Level, g.Node(dst).Level

		prev := src
		for level := from + 1; level < to; level++ {
			v := addVirtual(g, gen, level, width, heights[level])
			created++
			mustSegment(g, l, prev, v)
			prev = v
		}
		mustSegment(g, l, prev, dst)
		g.Detach(l)
	}
	return created
}

func addVirtual(g *dag.Graph, gen *idGen, level int, width, height float64) dag.NodeID {
	v, err := g.AddNode(dag.Node{
		ID:     gen.next(),
		Kind:   dag.NodeKindVirtual,
		Width:  width,
		Height: height,
		Level:  level,
		Origin: dag.None,
	})
	if err != nil {
		panic(err)
	}
	return v
}

func mustSegment(g *dag.Graph, parent dag.LinkID, from, to dag.NodeID) {
	if _, err := g.AddSegment(parent, from, to); err != nil {
		panic(err)
	}
}

type idGen struct {
	g       *dag.Graph
	counter int
}

func newIDGen(g *dag.Graph) *idGen {
	return &idGen{g: g}
}

func (gen *idGen) next() string {
	prefix := fmt.Sprintf("virtual%d", gen.counter)
	gen.counter++
	id := prefix
	for i := 1; ; i++ {
		if _, exists := gen.g.Lookup(id); !exists {
			return id
		}
		id = fmt.Sprintf("%s__%d", prefix, i)
	}
}
