package transform

import "github.com/matzehuels/stratum/pkg/dag"

// BreakCycles makes the attached links of g acyclic by reversing links that
// close a directed cycle. It returns the reversed links in arena order.
//
// A depth-first walk starts from every node in arena order. The first step
// from a walk root ignores links carrying [dag.Link.CycleHint], so a caller
// who knows which relation closes a cycle gets that relation reversed rather
// than a structural one. Each link is followed at most once across all walks;
// a link whose target is already on the current walk path is flagged
// Reversed and the walk continues through it.
//
// A final white/gray/black pass flips any back link the walks could not see
// (for example hinted links that were never followed), so the result is
// always acyclic. Flagged links are reversed in place with
// [dag.Graph.ReverseLink]; [RestoreCycles] undoes this after routing.
//
// The walk uses an explicit stack, so recursion depth does not grow with the
// graph.
func BreakCycles(g *dag.Graph) []dag.LinkID {
	type frame struct {
		node  dag.NodeID
		links []dag.LinkID
		next  int
	}

	visited := make([]bool, g.LinkCount())
	onPath := make([]int, g.NodeCount())
	var flagged []dag.LinkID
	var stack []frame

	push := func(n dag.NodeID, root bool) {
		links := g.Out(n)
		if root {
			links = unhinted(g, links)
		}
		onPath[n]++
		stack = append(stack, frame{node: n, links: links})
	}

	for root := 0; root < g.NodeCount(); root++ {
		push(dag.NodeID(root), true)
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next == len(top.links) {
				onPath[top.node]--
				stack = stack[:len(stack)-1]
				continue
			}
			l := top.links[top.next]
			top.next++
			if visited[l] {
				continue
			}
			visited[l] = true
			target := g.Link(l).Target
			if onPath[target] > 0 && !g.Link(l).Reversed {
				g.Link(l).Reversed = true
				flagged = append(flagged, l)
			}
			push(target, false)
		}
	}

	for _, l := range flagged {
		g.ReverseLink(l)
	}

	for range g.LinkCount() {
		back := dag.BackLinks(g)
		if len(back) == 0 {
			break
		}
		for _, l := range back {
			g.Link(l).Reversed = !g.Link(l).Reversed
			g.ReverseLink(l)
		}
	}

	flagged = flagged[:0]
	for i := 0; i < g.LinkCount(); i++ {
		if g.Link(dag.LinkID(i)).Reversed {
			flagged = append(flagged, dag.LinkID(i))
		}
	}
	return flagged
}

func unhinted(g *dag.Graph, links []dag.LinkID) []dag.LinkID {
	out := make([]dag.LinkID, 0, len(links))
	for _, l := range links {
		if !g.Link(l).CycleHint {
			out = append(out, l)
		}
	}
	return out
}

// RestoreCycles flips every link flagged Reversed back to its original
// orientation, chain segments included, and clears nothing else: the flag
// stays set so callers can still tell which links were reversed.
func RestoreCycles(g *dag.Graph) int {
	restored := 0
	for i := 0; i < g.LinkCount(); i++ {
		l := dag.LinkID(i)
		if g.Link(l).Reversed {
			g.ReverseLink(l)
			restored++
		}
	}
	return restored
}
