package transform

import "github.com/matzehuels/stratum/pkg/dag"

// AssignLayers assigns every node a level (row) so that each attached link
// points strictly downward. The graph must be acyclic; run [BreakCycles]
// first. Existing levels are overwritten and the minimum level is 0.
//
// # Algorithm
//
// Layering is driven by a backbone rather than by the sources alone, which
// keeps tree-like appendages close to the nodes they hang from:
//
//  1. Repeatedly strip nodes of degree 1, decrementing their neighbors'
//     degrees, until none remain. The survivors are the backbone. When
//     nothing survives, the first node in arena order is the backbone.
//  2. Propagate levels breadth-first from the whole backbone at level 0
//     along outgoing links. A backbone node without backbone parents is then
//     pulled down to just above its nearest backbone child; one with fewer
//     backbone children than parents is pulled down the same way when that
//     child is more than one level below.
//  3. Walk outward from the backbone: an unassigned child sits one level
//     below its neighbor and an unassigned parent one level above. Parts of
//     the graph the walk cannot reach are seeded at level 0.
//  4. Shift all levels so the minimum is 0.
//
// # Performance
//
// Stripping is O(V·R) for R stripping rounds; propagation is O(V·L + E) for
// L levels. All traversals are iterative.
func AssignLayers(g *dag.Graph) {
	n := g.NodeCount()
	if n == 0 {
		return
	}

	backbone := findBackbone(g)
	isBone := make([]bool, n)
	for _, v := range backbone {
		isBone[v] = true
	}

	if len(backbone) > 0 {
		propagateFromBackbone(g, backbone)
		settleBackbone(g, backbone, isBone)
	} else {
		g.Node(0).Level = 0
		backbone = []dag.NodeID{0}
	}

	set := make([]bool, n)
	for _, v := range backbone {
		set[v] = true
	}
	spread(g, backbone, set)
	for v := 0; v < n; v++ {
		if !set[v] {
			set[v] = true
			g.Node(dag.NodeID(v)).Level = 0
			spread(g, []dag.NodeID{dag.NodeID(v)}, set)
		}
	}

	minLevel := g.Node(0).Level
	for v := 1; v < n; v++ {
		minLevel = min(minLevel, g.Node(dag.NodeID(v)).Level)
	}
	for v := 0; v < n; v++ {
		g.Node(dag.NodeID(v)).Level -= minLevel
	}
}

// findBackbone strips degree-1 nodes until a fixed point and returns the
// nodes that keep a positive degree, in arena order.
func findBackbone(g *dag.Graph) []dag.NodeID {
	n := g.NodeCount()
	degree := make([]int, n)
	bone := make([]dag.NodeID, 0, n)
	for v := 0; v < n; v++ {
		degree[v] = g.Degree(dag.NodeID(v))
		bone = append(bone, dag.NodeID(v))
	}

	for shrink := true; shrink; {
		shrink = false
		for _, v := range bone {
			if degree[v] != 1 {
				continue
			}
			shrink = true
			degree[v] = 0
			for _, l := range g.Out(v) {
				degree[g.Link(l).Target]--
			}
			for _, l := range g.In(v) {
				degree[g.Link(l).Source]--
			}
		}
		kept := bone[:0]
		for _, v := range bone {
			if degree[v] > 0 {
				kept = append(kept, v)
			}
		}
		bone = kept
	}
	return bone
}

// propagateFromBackbone assigns each node reachable from the backbone the
// last breadth-first round in which it appears.
func propagateFromBackbone(g *dag.Graph, backbone []dag.NodeID) {
	stamp := make([]int, g.NodeCount())
	frontier := append([]dag.NodeID(nil), backbone...)
	for level := 0; len(frontier) > 0; level++ {
		var next []dag.NodeID
		for _, v := range frontier {
			g.Node(v).Level = level
			for _, l := range g.Out(v) {
				t := g.Link(l).Target
				if stamp[t] != level+1 {
					stamp[t] = level + 1
					next = append(next, t)
				}
			}
		}
		frontier = next
	}
}

func settleBackbone(g *dag.Graph, backbone []dag.NodeID, isBone []bool) {
	for _, v := range backbone {
		parents, children := 0, 0
		minChild, hasChild := 0, false
		for _, l := range g.In(v) {
			if isBone[g.Link(l).Source] {
				parents++
			}
		}
		for _, l := range g.Out(v) {
			t := g.Link(l).Target
			if !isBone[t] {
				continue
			}
			children++
			if lv := g.Node(t).Level; !hasChild || lv < minChild {
				minChild, hasChild = lv, true
			}
		}
		if !hasChild {
			continue
		}
		node := g.Node(v)
		if parents == 0 {
			node.Level = minChild - 1
		}
		if minChild-node.Level > 1 && children < parents {
			node.Level = minChild - 1
		}
	}
}

// spread walks outward from seeds, placing each unassigned neighbor one
// level below (child) or above (parent) the node it was reached from.
func spread(g *dag.Graph, seeds []dag.NodeID, set []bool) {
	frontier := seeds
	for len(frontier) > 0 {
		var next []dag.NodeID
		for _, v := range frontier {
			level := g.Node(v).Level
			for _, l := range g.Out(v) {
				if t := g.Link(l).Target; !set[t] {
					set[t] = true
					g.Node(t).Level = level + 1
					next = append(next, t)
				}
			}
			for _, l := range g.In(v) {
				if s := g.Link(l).Source; !set[s] {
					set[s] = true
					g.Node(s).Level = level - 1
					next = append(next, s)
				}
			}
		}
		frontier = next
	}
}
