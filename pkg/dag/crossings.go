package dag

import "slices"

// CrossingWorkspace provides reusable buffers for crossing counts so that the
// transposition loop, which recounts after every candidate swap, does not
// allocate. Create with [NewCrossingWorkspace].
//
// The workspace is not safe for concurrent use - each goroutine should have its own.
type CrossingWorkspace struct {
	ft      []int // Fenwick tree for counting inversions
	targets []int // target positions of the current upper node
}

// NewCrossingWorkspace creates a workspace for levels of up to maxWidth nodes.
// A smaller workspace is grown on demand.
func NewCrossingWorkspace(maxWidth int) *CrossingWorkspace {
	return &CrossingWorkspace{
		ft:      make([]int, maxWidth+2),
		targets: make([]int, 0, 8),
	}
}

func (ws *CrossingWorkspace) reset(width int) {
	if cap(ws.ft) < width+1 {
		ws.ft = make([]int, width+1)
	}
	ws.ft = ws.ft[:width+1]
	clear(ws.ft)
}

// CountCrossings returns the total number of link crossings between every pair
// of consecutive levels. levels[i] lists the node indices of level i in
// left-to-right order; node Pos fields must agree with it.
//
// It runs in O(L × E log V) time where L is the number of levels, E is links
// per gap and V is nodes per level.
func CountCrossings(g *Graph, levels [][]NodeID) int {
	ws := NewCrossingWorkspace(maxWidth(levels))
	total := 0
	for i := 1; i < len(levels); i++ {
		total += CountLayerCrossingsWith(g, levels[i-1], levels[i], ws)
	}
	return total
}

// CountLayerCrossings counts unit-span link crossings between two adjacent
// levels using a Fenwick tree (binary indexed tree).
//
// Two links (u1,v1) and (u2,v2) cross if and only if:
//
//	pos(u1) < pos(u2) AND pos(v1) > pos(v2)
//
// This is equivalent to counting inversions in the sequence of target
// positions when links are visited in upper order, targets of one upper node
// sorted ascending.
//
// Returns 0 if either level is empty, as no crossings can exist without links.
func CountLayerCrossings(g *Graph, upper, lower []NodeID) int {
	return CountLayerCrossingsWith(g, upper, lower, NewCrossingWorkspace(len(lower)))
}

// CountLayerCrossingsWith is [CountLayerCrossings] using a caller-provided
// workspace. Lower-level positions are read from Node.Pos.
func CountLayerCrossingsWith(g *Graph, upper, lower []NodeID, ws *CrossingWorkspace) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}
	ws.reset(len(lower))
	limit := len(lower) + 1

	crossings, total := 0, 0
	for _, u := range upper {
		ws.targets = ws.targets[:0]
		for _, l := range g.nodes[u].out {
			if g.IsUnit(l) {
				ws.targets = append(ws.targets, g.nodes[g.links[l].Target].Pos)
			}
		}
		slices.Sort(ws.targets)
		for _, pos := range ws.targets {
			// Count links seen so far with target <= pos
			lessOrEqual := 0
			for q := pos + 1; q > 0; q -= q & (-q) {
				lessOrEqual += ws.ft[q]
			}
			crossings += total - lessOrEqual

			total++
			for idx := pos + 1; idx < limit; idx += idx & (-idx) {
				ws.ft[idx]++
			}
		}
	}
	return crossings
}

// CountPairCrossings counts crossings among links of two nodes in the same
// level against an adjacent level: pairs where left's neighbor lies to the
// right of right's neighbor. If useParents is true, incoming links are
// considered; otherwise outgoing ones.
//
// This does not modify the graph.
func CountPairCrossings(g *Graph, left, right NodeID, useParents bool) int {
	neighbors := g.Children
	if useParents {
		neighbors = g.Parents
	}
	crossings := 0
	for _, ln := range neighbors(left) {
		lp := g.nodes[ln].Pos
		for _, rn := range neighbors(right) {
			if lp > g.nodes[rn].Pos {
				crossings++
			}
		}
	}
	return crossings
}

func maxWidth(levels [][]NodeID) int {
	w := 0
	for _, row := range levels {
		w = max(w, len(row))
	}
	return w
}
